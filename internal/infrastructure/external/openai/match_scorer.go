package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/matching"
)

const matchSystemPrompt = "You are an internship matching assistant. Compare a student's skills with the skills an internship requires. Always respond with valid JSON."

// Config holds the chat model settings
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	// BaseURL overrides the API endpoint, e.g. for a proxy
	BaseURL string
}

// MatchScorer asks a chat model to score a student against an internship
// and falls back to the deterministic skill matcher when the model fails.
type MatchScorer struct {
	chat     chat
	fallback *matching.SkillMatcher
	logger   *zap.Logger
}

// NewMatchScorer creates a new OpenAI match scorer
func NewMatchScorer(cfg Config, logger *zap.Logger) *MatchScorer {
	return &MatchScorer{
		chat:     newChat(cfg),
		fallback: matching.NewSkillMatcher(),
		logger:   logger,
	}
}

// Score implements port.MatchScorer
func (s *MatchScorer) Score(ctx context.Context, req port.MatchRequest) (*matching.Result, error) {
	result, err := s.ask(ctx, req)
	if err != nil {
		s.logger.Warn("AI match scoring failed, using skill matcher",
			zap.Int("student_skills", len(req.StudentSkills)),
			zap.Int("internship_skills", len(req.InternshipSkills)),
			zap.Error(err))
		fallback := s.fallback.Match(req.StudentSkills, req.InternshipSkills)
		return &fallback, nil
	}
	return result, nil
}

func (s *MatchScorer) ask(ctx context.Context, req port.MatchRequest) (*matching.Result, error) {
	var result matching.Result
	if err := s.chat.completeJSON(ctx, matchSystemPrompt, buildMatchPrompt(req), &result); err != nil {
		return nil, err
	}
	if math.IsNaN(result.MatchScore) || result.MatchScore < 0 || result.MatchScore > 1 {
		return nil, fmt.Errorf("match_score out of range: %v", result.MatchScore)
	}
	result.MatchScore = math.Round(result.MatchScore*100) / 100

	s.logger.Info("AI match scoring completed",
		zap.Float64("match_score", result.MatchScore),
		zap.Int("skill_gaps", len(result.SkillGaps)))
	return &result, nil
}

func buildMatchPrompt(req port.MatchRequest) string {
	return fmt.Sprintf(`Student skills: %s
Required internship skills: %s

Respond with a JSON object:
{
  "match_score": number between 0 and 1 (share of required skills the student covers),
  "matched_skills": [required skills the student has],
  "skill_gaps": [required skills the student lacks],
  "recommendations": [at most three short suggestions for the student]
}`,
		strings.Join(req.StudentSkills, ", "),
		strings.Join(req.InternshipSkills, ", "),
	)
}

// Verify interface compliance
var _ port.MatchScorer = (*MatchScorer)(nil)
