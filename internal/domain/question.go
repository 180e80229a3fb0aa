package domain

import "time"

// QuestionRecord is the display metadata for a question, hydrated from
// the relational store for search results and grounding context. The
// question itself (body, author, votes) is owned by the platform's CRUD
// layer; this record carries only what the pipeline needs.
type QuestionRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Tags           []string  `json:"tags"`
	Category       string    `json:"category"`
	AnswerCount    int       `json:"answer_count"`
	ViewCount      int       `json:"view_count"`
	AcceptedAnswer string    `json:"accepted_answer"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuestionInput is the caller-supplied question a pipeline request runs
// against. It is never mutated by the pipeline.
type QuestionInput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
}

// AIAnswer is the persisted result of a successful generation, keyed
// uniquely by the owning question. Re-generation overwrites.
type AIAnswer struct {
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	Model      string    `json:"model"`
	Images     []string  `json:"images"`
	UpdatedAt  time.Time `json:"updated_at"`
}
