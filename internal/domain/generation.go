package domain

// GenerationResult is the outcome of a successful generation attempt.
// Images holds base64-encoded inline images for diagram-capable models;
// empty when the model returned none.
type GenerationResult struct {
	Text   string   `json:"text"`
	Model  string   `json:"model"`
	Images []string `json:"images"`
}

// ChatResult is the outcome of the single-shot chat path: the answer
// plus the similar questions folded into its prompt, returned so the
// caller can render them as suggestions.
type ChatResult struct {
	Answer  string            `json:"answer"`
	Model   string            `json:"model"`
	Related []SimilarQuestion `json:"related"`
}
