package matching

import (
	"math"
	"sort"
	"strings"
)

const (
	strongMatchThreshold = 0.7
	goodMatchThreshold   = 0.5
	maxSuggestedSkills   = 3
)

// Result is the outcome of comparing a student's skills with an internship's
// required skills
type Result struct {
	MatchScore      float64  `json:"match_score"`
	MatchedSkills   []string `json:"matched_skills"`
	SkillGaps       []string `json:"skill_gaps"`
	Recommendations []string `json:"recommendations"`
}

// Percent converts the 0-1 score to the 0-100 scale used by application
// contexts
func (r Result) Percent() float64 {
	return math.Round(r.MatchScore*100*100) / 100
}

// SkillMatcher scores skill overlap with case-insensitive set semantics
type SkillMatcher struct{}

// NewSkillMatcher creates a new skill matcher
func NewSkillMatcher() *SkillMatcher {
	return &SkillMatcher{}
}

// Match scores the share of internship skills the student already has
func (m *SkillMatcher) Match(studentSkills, internshipSkills []string) Result {
	student := toSet(studentSkills)
	required := toSet(internshipSkills)

	matched := make([]string, 0, len(required))
	gaps := make([]string, 0, len(required))
	for skill := range required {
		if student[skill] {
			matched = append(matched, skill)
		} else {
			gaps = append(gaps, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(gaps)

	score := 0.0
	if len(required) > 0 {
		score = float64(len(matched)) / float64(len(required))
	}

	return Result{
		MatchScore:      math.Round(score*100) / 100,
		MatchedSkills:   matched,
		SkillGaps:       gaps,
		Recommendations: recommend(score, gaps),
	}
}

func recommend(score float64, gaps []string) []string {
	var recommendations []string
	if len(gaps) > 0 {
		suggested := gaps
		if len(suggested) > maxSuggestedSkills {
			suggested = suggested[:maxSuggestedSkills]
		}
		recommendations = append(recommendations, "Consider learning: "+strings.Join(suggested, ", "))
	}

	switch {
	case score > strongMatchThreshold:
		recommendations = append(recommendations, "Strong match! Apply with confidence.")
	case score > goodMatchThreshold:
		recommendations = append(recommendations, "Good match. Highlight your transferable skills.")
	default:
		recommendations = append(recommendations, "Focus on building required skills first.")
	}
	return recommendations
}

func toSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = true
		}
	}
	return set
}
