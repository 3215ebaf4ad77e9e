package matching

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Experience levels reported by resume analysis
const (
	LevelEntry        = "Entry"
	LevelIntermediate = "Intermediate"
	LevelSenior       = "Senior"
)

const (
	maxSuggestedRoles = 3
	minRoleOverlap    = 2
)

// ResumeAnalysis is what a resume reveals about a student
type ResumeAnalysis struct {
	ExtractedSkills []string `json:"extracted_skills"`
	ExperienceLevel string   `json:"experience_level"`
	// YearsOfExperience is the largest "N years" figure found, -1 when none
	YearsOfExperience int      `json:"years_of_experience"`
	SuggestedRoles    []string `json:"suggested_roles"`
	Confidence        float64  `json:"confidence"`
}

// DefaultSkillVocabulary lists the skills recognised in resume text
var DefaultSkillVocabulary = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Golang", "C++", "C#", "Rust", "Ruby", "PHP", "Kotlin", "Swift",
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis",
	"React", "Vue", "Angular", "Node.js", "HTML", "CSS",
	"Docker", "Kubernetes", "AWS", "GCP", "Azure", "Terraform", "Linux", "Git",
	"Machine Learning", "TensorFlow", "PyTorch", "Pandas", "Excel", "Tableau",
}

// roleProfiles maps a role to the skills that point at it
var roleProfiles = map[string][]string{
	"Backend Developer":         {"python", "java", "golang", "rust", "ruby", "php", "node.js", "sql", "postgresql", "mysql", "mongodb", "redis"},
	"Frontend Developer":        {"javascript", "typescript", "react", "vue", "angular", "html", "css"},
	"Full Stack Developer":      {"javascript", "typescript", "react", "vue", "node.js", "sql", "postgresql", "mongodb"},
	"DevOps Engineer":           {"docker", "kubernetes", "aws", "gcp", "azure", "terraform", "linux"},
	"Data Analyst":              {"sql", "python", "excel", "tableau", "pandas"},
	"Machine Learning Engineer": {"python", "machine learning", "tensorflow", "pytorch", "pandas"},
	"Mobile Developer":          {"kotlin", "swift", "java", "react"},
}

var yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)`)

// ResumeAnalyzer extracts skills and experience from resume text by keyword
// matching against a vocabulary
type ResumeAnalyzer struct {
	vocabulary []string
}

// NewResumeAnalyzer creates an analyzer over vocabulary, or over
// DefaultSkillVocabulary when none is given
func NewResumeAnalyzer(vocabulary ...string) *ResumeAnalyzer {
	if len(vocabulary) == 0 {
		vocabulary = DefaultSkillVocabulary
	}
	return &ResumeAnalyzer{vocabulary: vocabulary}
}

// Analyze reads skills, experience level and fitting roles from text
func (a *ResumeAnalyzer) Analyze(text string) ResumeAnalysis {
	lower := strings.ToLower(text)

	skills := make([]string, 0)
	for _, skill := range a.vocabulary {
		if containsTerm(lower, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}
	sort.Strings(skills)

	years := maxYears(text)
	return ResumeAnalysis{
		ExtractedSkills:   skills,
		ExperienceLevel:   experienceLevel(years, len(skills)),
		YearsOfExperience: years,
		SuggestedRoles:    suggestRoles(skills),
		Confidence:        confidence(len(skills), years),
	}
}

// Skills returns the extracted skills in the form Match expects
func (r ResumeAnalysis) Skills() []string {
	return append([]string(nil), r.ExtractedSkills...)
}

// containsTerm reports whether term occurs in text delimited by
// non-alphanumeric characters, so "java" does not match "javascript"
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '#'
}

func maxYears(text string) int {
	years := -1
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > years {
			years = n
		}
	}
	return years
}

func experienceLevel(years, skillCount int) string {
	switch {
	case years >= 5:
		return LevelSenior
	case years >= 1:
		return LevelIntermediate
	case years < 0 && skillCount >= 8:
		return LevelIntermediate
	default:
		return LevelEntry
	}
}

func suggestRoles(skills []string) []string {
	have := toSet(skills)

	type candidate struct {
		role    string
		overlap int
	}
	var candidates []candidate
	for role, profile := range roleProfiles {
		overlap := 0
		for _, s := range profile {
			if have[s] {
				overlap++
			}
		}
		if overlap >= minRoleOverlap {
			candidates = append(candidates, candidate{role, overlap})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].role < candidates[j].role
	})

	roles := make([]string, 0, maxSuggestedRoles)
	for _, c := range candidates {
		if len(roles) == maxSuggestedRoles {
			break
		}
		roles = append(roles, c.role)
	}
	return roles
}

func confidence(skillCount, years int) float64 {
	if skillCount == 0 {
		return 0
	}
	c := 0.5 + 0.05*float64(skillCount)
	if years >= 0 {
		c += 0.1
	}
	return math.Round(math.Min(c, 0.95)*100) / 100
}
