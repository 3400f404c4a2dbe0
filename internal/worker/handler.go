package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/internal/messaging"
	"persona-agent/shared/interfaces"
	sharedMessaging "persona-agent/shared/messaging"
	"persona-agent/shared/models"
)

// Deps are the collaborators of a TaskHandler. Seen is optional.
type Deps struct {
	Generator interfaces.ContentGenerator
	Images    interfaces.ImageJobService
	Results   interfaces.GenerationResultRepository
	Publisher interfaces.ResultPublisher
	Seen      interfaces.SeenStore
	Pusher    *MetricsPusher
}

// Settings tune a TaskHandler.
type Settings struct {
	TaskTimeout   time.Duration // zero means no per-task bound
	ImageSavePath string
}

// taskIDPattern keeps task ids usable as a single file name.
var taskIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// TaskHandler runs one generation strategy per task message.
type TaskHandler struct {
	deps     Deps
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskHandler validates deps and returns a handler.
func NewTaskHandler(deps Deps, settings Settings, logger *zap.Logger) (*TaskHandler, error) {
	switch {
	case deps.Generator == nil:
		return nil, errors.New("content generator is required")
	case deps.Images == nil:
		return nil, errors.New("image job service is required")
	case deps.Results == nil:
		return nil, errors.New("result repository is required")
	case deps.Publisher == nil:
		return nil, errors.New("result publisher is required")
	}
	return &TaskHandler{
		deps:     deps,
		settings: settings,
		logger:   logger.Named("task_handler"),
		now:      time.Now,
	}, nil
}

// HandleDelivery decodes and handles one message. Undecodable or invalid
// tasks are rejected; a result that cannot be published is requeued.
func (h *TaskHandler) HandleDelivery(ctx context.Context, msg amqp091.Delivery) messaging.Outcome {
	tasksReceived.Inc()
	defer h.deps.Pusher.Push()

	var task sharedMessaging.GenerationTaskPayload
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		h.logger.Error("Failed to unmarshal task payload",
			zap.String("correlation_id", msg.CorrelationId),
			zap.ByteString("body", msg.Body),
			zap.Error(err),
		)
		tasksRejected.WithLabelValues("error_unmarshal").Inc()
		return messaging.Reject
	}

	err := h.Handle(ctx, task)
	switch {
	case err == nil:
		return messaging.Ack
	case errors.Is(err, models.ErrUnknownStrategy):
		tasksRejected.WithLabelValues("error_unknown_strategy").Inc()
		return messaging.Reject
	case errors.Is(err, models.ErrInvalidInput):
		tasksRejected.WithLabelValues("error_invalid").Inc()
		return messaging.Reject
	default:
		return messaging.Requeue
	}
}

// Handle runs the task, stores the result and publishes it. It fails only
// for tasks that were not run or whose result could not be published;
// generation failures are reported in the published result.
func (h *TaskHandler) Handle(ctx context.Context, task sharedMessaging.GenerationTaskPayload) error {
	log := h.logger.With(zap.String("task_id", task.TaskID), zap.String("strategy", string(task.Strategy)))
	if err := validate(task); err != nil {
		log.Error("Rejecting task", zap.Error(err))
		return err
	}
	log.Info("Processing task")

	result := h.process(ctx, task, log)
	tasksProcessed.WithLabelValues(string(task.Strategy), result.Status).Inc()
	taskDuration.WithLabelValues(string(task.Strategy)).Observe(float64(result.ProcessingTimeMs) / 1000)

	// The result is still published when it cannot be stored.
	if err := h.deps.Results.Save(ctx, result); err != nil {
		log.Error("Failed to save result", zap.Error(err))
	}

	payload := sharedMessaging.GenerationResultPayload{
		TaskID:       task.TaskID,
		Strategy:     task.Strategy,
		SourceID:     task.SourceID,
		Status:       sharedMessaging.ResultStatus(result.Status),
		Text:         result.Output,
		ImageURL:     result.ImageURL,
		ImagePath:    result.ImagePath,
		ErrorDetails: result.Error,
	}
	if result.ImagePath != "" {
		if info, err := os.Stat(result.ImagePath); err == nil {
			payload.ImageBytes = int(info.Size())
		}
	}
	if err := h.deps.Publisher.PublishResult(ctx, payload, task.TaskID); err != nil {
		publishErrors.Inc()
		log.Error("Failed to publish result", zap.Error(err))
		// The task is requeued, so the redelivery must not be skipped as seen.
		if task.Strategy == models.StrategyReply && result.Status != models.ResultStatusSkipped && result.Status != models.ResultStatusError {
			h.forget(ctx, task.SourceID, log)
		}
		return fmt.Errorf("publish result: %w", err)
	}
	log.Info("Task finished", zap.String("status", result.Status), zap.Int64("processing_time_ms", result.ProcessingTimeMs))
	return nil
}

func validate(task sharedMessaging.GenerationTaskPayload) error {
	if task.TaskID == "" {
		return fmt.Errorf("%w: taskId is empty", models.ErrInvalidInput)
	}
	if !taskIDPattern.MatchString(task.TaskID) {
		return fmt.Errorf("%w: taskId %q must be 1-128 letters, digits, '.', '_' or '-'", models.ErrInvalidInput, task.TaskID)
	}
	if !task.Strategy.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownStrategy, task.Strategy)
	}
	if task.Strategy == models.StrategyReply && task.Text == "" {
		return fmt.Errorf("%w: reply task without text", models.ErrInvalidInput)
	}
	return nil
}

func (h *TaskHandler) process(ctx context.Context, task sharedMessaging.GenerationTaskPayload, log *zap.Logger) *models.GenerationResult {
	start := h.now()
	result := &models.GenerationResult{
		ID:        task.TaskID,
		Strategy:  task.Strategy,
		SourceID:  task.SourceID,
		Input:     describeInput(task),
		CreatedAt: start,
	}

	if h.settings.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.settings.TaskTimeout)
		defer cancel()
	}

	status, err := h.run(ctx, task, result, log)
	result.Status = status
	if err != nil {
		result.Status = models.ResultStatusError
		result.Error = err.Error()
		log.Error("Task failed", zap.Error(err))
	}
	result.CompletedAt = h.now()
	result.ProcessingTimeMs = result.CompletedAt.Sub(start).Milliseconds()
	return result
}

// run dispatches to exactly one strategy and fills the output fields of result.
func (h *TaskHandler) run(ctx context.Context, task sharedMessaging.GenerationTaskPayload, result *models.GenerationResult, log *zap.Logger) (string, error) {
	var (
		text string
		err  error
	)
	switch task.Strategy {
	case models.StrategyPost:
		text, err = h.deps.Generator.GeneratePost(ctx)
	case models.StrategyReply:
		return h.reply(ctx, task, result, log)
	case models.StrategyGenericFUD:
		text, err = h.deps.Generator.GenerateGenericFUD(ctx, task.Intro, task.Reason, task.Closing)
	case models.StrategyEditorializedFUD:
		text, err = h.deps.Generator.GenerateEditorializedFUD(ctx, task.TokenInfo)
	case models.StrategyImage:
		return h.image(ctx, task, result, log)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnknownStrategy, task.Strategy)
	}
	if err != nil {
		return "", err
	}
	result.Output = text
	return models.ResultStatusSuccess, nil
}

func (h *TaskHandler) reply(ctx context.Context, task sharedMessaging.GenerationTaskPayload, result *models.GenerationResult, log *zap.Logger) (string, error) {
	if h.deps.Seen != nil && task.SourceID != "" {
		first, err := h.deps.Seen.MarkSeen(ctx, task.SourceID)
		if err != nil {
			return "", err
		}
		if !first {
			log.Info("Source already handled, skipping", zap.String("source_id", task.SourceID))
			return models.ResultStatusSkipped, nil
		}
	}

	if task.GateWithDecision {
		decision, err := h.deps.Generator.ShouldRespond(ctx, task.Text)
		if err != nil {
			h.forget(ctx, task.SourceID, log)
			return "", err
		}
		if decision == agent.Ignore {
			log.Info("Decision engine chose to ignore the source")
			return models.ResultStatusIgnored, nil
		}
	}

	text, err := h.deps.Generator.GenerateReply(ctx, task.Text)
	if err != nil {
		h.forget(ctx, task.SourceID, log)
		return "", err
	}
	result.Output = text
	return models.ResultStatusSuccess, nil
}

// forget releases the seen claim on sourceID after a failed attempt.
// Cancellation of ctx is ignored so a timed-out attempt still releases it.
func (h *TaskHandler) forget(ctx context.Context, sourceID string, log *zap.Logger) {
	if h.deps.Seen == nil || sourceID == "" {
		return
	}
	if err := h.deps.Seen.Forget(context.WithoutCancel(ctx), sourceID); err != nil {
		log.Warn("Failed to release seen claim", zap.String("source_id", sourceID), zap.Error(err))
	}
}

func (h *TaskHandler) image(ctx context.Context, task sharedMessaging.GenerationTaskPayload, result *models.GenerationResult, log *zap.Logger) (string, error) {
	url, err := h.deps.Images.Submit(ctx)
	if err != nil {
		return "", err
	}
	result.ImageURL = url

	data, err := h.deps.Images.FetchImage(ctx, url)
	if err != nil {
		return "", err
	}

	dir := h.settings.ImageSavePath
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	name := task.TaskID + ".png"
	if filepath.Base(name) != name {
		return "", fmt.Errorf("%w: taskId %q is not a file name", models.ErrInvalidInput, task.TaskID)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	result.ImagePath = path
	log.Info("Image saved", zap.String("path", path), zap.Int("size_bytes", len(data)))
	return models.ResultStatusSuccess, nil
}

// describeInput renders the strategy inputs for the result history.
func describeInput(task sharedMessaging.GenerationTaskPayload) string {
	var fields map[string]string
	switch task.Strategy {
	case models.StrategyReply:
		fields = map[string]string{"text": task.Text}
	case models.StrategyGenericFUD:
		fields = map[string]string{"intro": task.Intro, "reason": task.Reason, "closing": task.Closing}
	case models.StrategyEditorializedFUD:
		fields = map[string]string{"tokenInfo": task.TokenInfo}
	default:
		return ""
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}
