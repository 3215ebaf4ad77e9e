package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillMatcher_Match(t *testing.T) {
	tests := []struct {
		name            string
		student         []string
		internship      []string
		wantScore       float64
		wantMatched     []string
		wantGaps        []string
		wantRecommended []string
	}{
		{
			name:            "full match is case insensitive",
			student:         []string{"Go", "SQL", "Docker"},
			internship:      []string{"go", "sql"},
			wantScore:       1,
			wantMatched:     []string{"go", "sql"},
			wantGaps:        []string{},
			wantRecommended: []string{"Strong match! Apply with confidence."},
		},
		{
			name:        "partial match rounds to two places",
			student:     []string{"python", "react"},
			internship:  []string{"python", "react", "typescript"},
			wantScore:   0.67,
			wantMatched: []string{"python", "react"},
			wantGaps:    []string{"typescript"},
			wantRecommended: []string{
				"Consider learning: typescript",
				"Good match. Highlight your transferable skills.",
			},
		},
		{
			name:        "suggests at most three gaps",
			student:     []string{},
			internship:  []string{"rust", "go", "kafka", "aws"},
			wantScore:   0,
			wantMatched: []string{},
			wantGaps:    []string{"aws", "go", "kafka", "rust"},
			wantRecommended: []string{
				"Consider learning: aws, go, kafka",
				"Focus on building required skills first.",
			},
		},
		{
			name:            "no required skills scores zero",
			student:         []string{"go"},
			internship:      nil,
			wantScore:       0,
			wantMatched:     []string{},
			wantGaps:        []string{},
			wantRecommended: []string{"Focus on building required skills first."},
		},
	}

	matcher := NewSkillMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.student, tt.internship)
			assert.Equal(t, tt.wantScore, got.MatchScore)
			assert.Equal(t, tt.wantMatched, got.MatchedSkills)
			assert.Equal(t, tt.wantGaps, got.SkillGaps)
			assert.Equal(t, tt.wantRecommended, got.Recommendations)
		})
	}
}

func TestResult_Percent(t *testing.T) {
	assert.Equal(t, 67.0, Result{MatchScore: 0.67}.Percent())
	assert.Equal(t, 0.0, Result{}.Percent())
}
