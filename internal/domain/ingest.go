package domain

import "time"

// IngestItem is one piece of content to embed and store during a bulk
// ingestion run.
type IngestItem struct {
	ContentType ContentType `json:"content_type"`
	ContentID   string      `json:"content_id"`
	Text        string      `json:"text"`
}

// IngestFailure records one item that could not be ingested, kept for
// inspection and retry.
type IngestFailure struct {
	Item  IngestItem `json:"item"`
	Error string     `json:"error"`
}

// IngestReport aggregates the outcome of a bulk ingestion run. Failed
// items are returned, never silently dropped.
type IngestReport struct {
	JobID     string          `json:"job_id"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Failures  []IngestFailure `json:"failures,omitempty"`
	Duration  time.Duration   `json:"duration"`
}
