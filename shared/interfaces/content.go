package interfaces

import (
	"context"

	"persona-agent/shared/models"
)

// ContentGenerator is the decision engine plus the text strategies.
// *agent.Agent implements it.
type ContentGenerator interface {
	ShouldRespond(ctx context.Context, text string) (models.Decision, error)
	GeneratePost(ctx context.Context) (string, error)
	GenerateReply(ctx context.Context, source string) (string, error)
	GenerateGenericFUD(ctx context.Context, intro, reason, closing string) (string, error)
	GenerateEditorializedFUD(ctx context.Context, tokenInfo string) (string, error)
}

// ImageJobService submits an image job and downloads its result.
// *imagejob.Service implements it.
type ImageJobService interface {
	Submit(ctx context.Context) (string, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}
