package models

import "time"

// Strategy identifies one of the mutually-exclusive content-generation procedures.
type Strategy string

const (
	StrategyDecision         Strategy = "decision"      // respond/ignore classification
	StrategyPost             Strategy = "post"          // ambient post with no input
	StrategyReply            Strategy = "reply"         // direct reply to a source post
	StrategyGenericFUD       Strategy = "generic_fud"   // intro/reason/closing commentary
	StrategyEditorializedFUD Strategy = "editorial_fud" // commentary on a token info blob
	StrategyImage            Strategy = "image"         // image job submission + fetch
)

// Valid reports whether s names a generation strategy a task may request.
// StrategyDecision is not a generation strategy on its own.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyPost, StrategyReply, StrategyGenericFUD, StrategyEditorializedFUD, StrategyImage:
		return true
	}
	return false
}

// Result statuses.
const (
	ResultStatusSuccess = "success"
	ResultStatusIgnored = "ignored" // decision gate said Ignore
	ResultStatusSkipped = "skipped" // source post was already handled
	ResultStatusError   = "error"
)

// GenerationResult stores the output and metadata of one generation task.
type GenerationResult struct {
	ID               string    `json:"id" db:"id"` // Task ID
	Strategy         Strategy  `json:"strategy" db:"strategy"`
	SourceID         string    `json:"source_id,omitempty" db:"source_id"`
	Input            string    `json:"input,omitempty" db:"input"`
	Output           string    `json:"output,omitempty" db:"output"`
	ImageURL         string    `json:"image_url,omitempty" db:"image_url"`
	ImagePath        string    `json:"image_path,omitempty" db:"image_path"`
	Status           string    `json:"status" db:"status"`
	ProcessingTimeMs int64     `json:"processing_time_ms" db:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	CompletedAt      time.Time `json:"completed_at" db:"completed_at"`
	Error            string    `json:"error,omitempty" db:"error"`
}
