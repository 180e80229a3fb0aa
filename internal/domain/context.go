package domain

// AnswerExcerpt is a truncated accepted-answer text included in
// grounding context, drawn from one of the similar questions.
type AnswerExcerpt struct {
	QuestionID string `json:"question_id"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
}

// RagContext is the bounded grounding context assembled for one
// generation request. Built fresh per request, never cached.
type RagContext struct {
	Current          QuestionInput     `json:"current"`
	SimilarQuestions []SimilarQuestion `json:"similar_questions"`
	RelevantAnswers  []AnswerExcerpt   `json:"relevant_answers"`
}
