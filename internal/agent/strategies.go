package agent

import (
	"context"

	"persona-agent/shared/models"
)

// GeneratePost writes an ambient post with no input.
func (a *Agent) GeneratePost(ctx context.Context) (string, error) {
	return a.generate(ctx, models.StrategyPost, PostPrompt())
}

// GenerateReply answers the source post in the persona's voice.
func (a *Agent) GenerateReply(ctx context.Context, source string) (string, error) {
	return a.generate(ctx, models.StrategyReply, ReplyPrompt(source))
}

// GenerateGenericFUD weaves intro, reason and closing into one cynical comment.
func (a *Agent) GenerateGenericFUD(ctx context.Context, intro, reason, closing string) (string, error) {
	return a.generate(ctx, models.StrategyGenericFUD, GenericFUDPrompt(a.persona.SystemPrompt, intro, reason, closing))
}

// GenerateEditorializedFUD comments on a token described by tokenInfo.
func (a *Agent) GenerateEditorializedFUD(ctx context.Context, tokenInfo string) (string, error) {
	return a.generate(ctx, models.StrategyEditorializedFUD, EditorializedFUDPrompt(a.persona.SystemPrompt, tokenInfo))
}
