package openai

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/matching"
)

const (
	resumeSystemPrompt = "You are a recruiting assistant that reads internship applicants' resumes. Always respond with valid JSON."

	// maxResumeChars bounds the resume text sent to the model
	maxResumeChars = 12000
)

var experienceLevels = map[string]bool{
	matching.LevelEntry:        true,
	matching.LevelIntermediate: true,
	matching.LevelSenior:       true,
}

// ResumeAnalyzer asks a chat model to read a resume and falls back to
// keyword analysis when the model fails.
type ResumeAnalyzer struct {
	chat     chat
	fallback *matching.ResumeAnalyzer
	logger   *zap.Logger
}

// NewResumeAnalyzer creates a new OpenAI resume analyzer
func NewResumeAnalyzer(cfg Config, logger *zap.Logger) *ResumeAnalyzer {
	return &ResumeAnalyzer{
		chat:     newChat(cfg),
		fallback: matching.NewResumeAnalyzer(),
		logger:   logger,
	}
}

// AnalyzeResume implements port.ResumeAnalyzer
func (a *ResumeAnalyzer) AnalyzeResume(ctx context.Context, text string) (*matching.ResumeAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		fallback := a.fallback.Analyze(text)
		return &fallback, nil
	}

	result, err := a.ask(ctx, text)
	if err != nil {
		a.logger.Warn("AI resume analysis failed, using keyword analysis",
			zap.Int("chars", len(text)),
			zap.Error(err))
		fallback := a.fallback.Analyze(text)
		return &fallback, nil
	}
	return result, nil
}

func (a *ResumeAnalyzer) ask(ctx context.Context, text string) (*matching.ResumeAnalysis, error) {
	result := matching.ResumeAnalysis{YearsOfExperience: -1}
	if err := a.chat.completeJSON(ctx, resumeSystemPrompt, buildResumePrompt(text), &result); err != nil {
		return nil, err
	}
	if !experienceLevels[result.ExperienceLevel] {
		return nil, fmt.Errorf("unknown experience_level: %q", result.ExperienceLevel)
	}
	if math.IsNaN(result.Confidence) || result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %v", result.Confidence)
	}
	result.Confidence = math.Round(result.Confidence*100) / 100
	if result.ExtractedSkills == nil {
		result.ExtractedSkills = []string{}
	}
	if result.SuggestedRoles == nil {
		result.SuggestedRoles = []string{}
	}
	sort.Strings(result.ExtractedSkills)

	a.logger.Info("AI resume analysis completed",
		zap.Int("skills", len(result.ExtractedSkills)),
		zap.String("experience_level", result.ExperienceLevel))
	return &result, nil
}

func buildResumePrompt(text string) string {
	if len(text) > maxResumeChars {
		cut := maxResumeChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return fmt.Sprintf(`Resume:
"""
%s
"""

Respond with a JSON object:
{
  "extracted_skills": [technical skills named in the resume, canonical spelling],
  "experience_level": one of "%s", "%s", "%s",
  "years_of_experience": integer, -1 when not stated,
  "suggested_roles": [at most three internship roles that fit],
  "confidence": number between 0 and 1
}`, text, matching.LevelEntry, matching.LevelIntermediate, matching.LevelSenior)
}

// Verify interface compliance
var _ port.ResumeAnalyzer = (*ResumeAnalyzer)(nil)
