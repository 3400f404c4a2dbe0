package api

import "persona-agent/shared/models"

type decideRequest struct {
	Text string `json:"text" binding:"required"`
}

type decideResponse struct {
	Decision string `json:"decision"`
	Respond  bool   `json:"respond"`
}

type replyRequest struct {
	Text string `json:"text" binding:"required"`
	Gate bool   `json:"gate"` // consult the decision engine first
}

type genericFUDRequest struct {
	Intro   string `json:"intro"`
	Reason  string `json:"reason"`
	Closing string `json:"closing"`
}

type editorializedFUDRequest struct {
	TokenInfo string `json:"tokenInfo"`
}

// textResponse carries generated text. Decision is set only for gated replies.
type textResponse struct {
	Text     string `json:"text,omitempty"`
	Decision string `json:"decision,omitempty"`
}

type imageJobResponse struct {
	URL string `json:"url"`
}

type enqueueRequest struct {
	Strategy         models.Strategy `json:"strategy" binding:"required"`
	SourceID         string          `json:"sourceId"`
	Text             string          `json:"text"`
	GateWithDecision bool            `json:"gateWithDecision"`
	Intro            string          `json:"intro"`
	Reason           string          `json:"reason"`
	Closing          string          `json:"closing"`
	TokenInfo        string          `json:"tokenInfo"`
}

type enqueueResponse struct {
	TaskID string `json:"taskId"`
}

type resultsResponse struct {
	Data []*models.GenerationResult `json:"data"`
}
