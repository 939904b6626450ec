package models

// QuestionType tags how a question is answered and how many points it carries.
type QuestionType string

const (
	QuestionTypeText QuestionType = "text"
	QuestionTypeCode QuestionType = "code"
)

// IsValid reports whether the type is one of the two accepted tags.
func (t QuestionType) IsValid() bool {
	return t == QuestionTypeText || t == QuestionTypeCode
}

// Question is one generated interview question. Order within a session is
// fixed once the set is generated.
type Question struct {
	Text string       `json:"question"`
	Type QuestionType `json:"type"`
}

// Points returns the score value awarded when this question is answered
// correctly: 1 for text questions, 2 for code questions.
func (q Question) Points() int {
	if q.Type == QuestionTypeCode {
		return 2
	}
	return 1
}

// TotalPossible returns the maximum attainable score for a question set.
// It depends on the type distribution, not just the count.
func TotalPossible(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points()
	}
	return total
}
