package messaging

import "persona-agent/shared/models"

// GenerationTaskPayload is the message the worker consumes from the task queue.
// Which input fields are read depends on Strategy.
type GenerationTaskPayload struct {
	TaskID   string          `json:"taskId"`
	Strategy models.Strategy `json:"strategy"`

	// reply
	SourceID         string `json:"sourceId,omitempty"` // id of the post being answered, used for dedupe
	Text             string `json:"text,omitempty"`
	GateWithDecision bool   `json:"gateWithDecision,omitempty"` // ask the decision engine before replying

	// generic_fud
	Intro   string `json:"intro,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Closing string `json:"closing,omitempty"`

	// editorial_fud
	TokenInfo string `json:"tokenInfo,omitempty"`
}

// ResultStatus mirrors models.ResultStatus* for the wire.
type ResultStatus string

const (
	ResultStatusSuccess ResultStatus = models.ResultStatusSuccess
	ResultStatusIgnored ResultStatus = models.ResultStatusIgnored
	ResultStatusSkipped ResultStatus = models.ResultStatusSkipped
	ResultStatusError   ResultStatus = models.ResultStatusError
)

// GenerationResultPayload is published to the result queue once a task finishes.
type GenerationResultPayload struct {
	TaskID       string          `json:"taskId"`
	Strategy     models.Strategy `json:"strategy"`
	SourceID     string          `json:"sourceId,omitempty"`
	Status       ResultStatus    `json:"status"`
	Text         string          `json:"text,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	ImagePath    string          `json:"imagePath,omitempty"`
	ImageBytes   int             `json:"imageBytes,omitempty"`
	ErrorDetails string          `json:"errorDetails,omitempty"`
}
