package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"persona-agent/shared/models"
)

// Decision is the respond/ignore classification of an input post.
type Decision = models.Decision

const (
	Ignore  = models.DecisionIgnore
	Respond = models.DecisionRespond
)

// Markers the completion is asked to answer with.
const (
	RespondMarker = "[RESPOND]"
	IgnoreMarker  = "[IGNORE]"
)

// ParseDecision classifies a free-text answer. It is a case-insensitive
// substring search for RespondMarker; anything else, including an empty
// answer or one containing neither marker, is Ignore.
func ParseDecision(answer string) Decision {
	if strings.Contains(strings.ToUpper(answer), RespondMarker) {
		return Respond
	}
	return Ignore
}

// ShouldRespond asks the completion engine whether text deserves a reply.
func (a *Agent) ShouldRespond(ctx context.Context, text string) (Decision, error) {
	answer, err := a.complete(ctx, models.StrategyDecision, DecisionPrompt(text))
	if err != nil {
		return Ignore, err
	}
	decision := ParseDecision(answer)
	a.logger.Info("Decision made", zap.Stringer("decision", decision))
	return decision, nil
}
