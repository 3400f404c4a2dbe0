package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/internal/messaging"
	"persona-agent/internal/mocks"
	"persona-agent/internal/worker"
	sharedMessaging "persona-agent/shared/messaging"
	"persona-agent/shared/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	generator *mocks.MockContentGenerator
	images    *mocks.MockImageJobService
	results   *mocks.MockResultRepository
	publisher *mocks.MockResultPublisher
	seen      *mocks.MockSeenStore
	handler   *worker.TaskHandler
	imageDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		generator: mocks.NewMockContentGenerator(t),
		images:    mocks.NewMockImageJobService(t),
		results:   mocks.NewMockResultRepository(t),
		publisher: mocks.NewMockResultPublisher(t),
		seen:      mocks.NewMockSeenStore(t),
		imageDir:  filepath.Join(t.TempDir(), "images"),
	}
	h, err := worker.NewTaskHandler(worker.Deps{
		Generator: f.generator,
		Images:    f.images,
		Results:   f.results,
		Publisher: f.publisher,
		Seen:      f.seen,
	}, worker.Settings{TaskTimeout: 5 * time.Second, ImageSavePath: f.imageDir}, zap.NewNop())
	require.NoError(t, err)
	f.handler = h
	return f
}

// expectResult records the saved result and the published payload.
func (f *fixture) expectResult(t *testing.T) (*models.GenerationResult, *sharedMessaging.GenerationResultPayload) {
	t.Helper()
	saved := &models.GenerationResult{}
	published := &sharedMessaging.GenerationResultPayload{}
	f.results.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationResult")).
		Run(func(args mock.Arguments) { *saved = *args.Get(1).(*models.GenerationResult) }).
		Return(nil).Once()
	f.publisher.On("PublishResult", mock.Anything, mock.AnythingOfType("messaging.GenerationResultPayload"), mock.Anything).
		Run(func(args mock.Arguments) { *published = args.Get(1).(sharedMessaging.GenerationResultPayload) }).
		Return(nil).Once()
	return saved, published
}

func delivery(t *testing.T, payload any) amqp091.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return amqp091.Delivery{Body: body, CorrelationId: "corr-1"}
}

func TestHandle_Post(t *testing.T) {
	f := newFixture(t)
	f.generator.On("GeneratePost", mock.Anything).Return("quiet markets, loud wallets", nil).Once()
	saved, published := f.expectResult(t)

	err := f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: "t1", Strategy: models.StrategyPost})
	require.NoError(t, err)

	assert.Equal(t, "t1", saved.ID)
	assert.Equal(t, models.ResultStatusSuccess, saved.Status)
	assert.Equal(t, "quiet markets, loud wallets", saved.Output)
	assert.False(t, saved.CompletedAt.Before(saved.CreatedAt))
	assert.Equal(t, sharedMessaging.ResultStatusSuccess, published.Status)
	assert.Equal(t, "quiet markets, loud wallets", published.Text)
}

func TestHandle_FUDStrategies(t *testing.T) {
	t.Run("generic", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GenerateGenericFUD", mock.Anything, "ser", "dev sold", "ngmi").Return("fud", nil).Once()
		saved, _ := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{
			TaskID: "t2", Strategy: models.StrategyGenericFUD, Intro: "ser", Reason: "dev sold", Closing: "ngmi",
		}))
		assert.Equal(t, "fud", saved.Output)
		assert.JSONEq(t, `{"intro":"ser","reason":"dev sold","closing":"ngmi"}`, saved.Input)
	})

	t.Run("editorialized", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GenerateEditorializedFUD", mock.Anything, "symbol: $X").Return("x is a puddle", nil).Once()
		saved, _ := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{
			TaskID: "t3", Strategy: models.StrategyEditorializedFUD, TokenInfo: "symbol: $X",
		}))
		assert.Equal(t, "x is a puddle", saved.Output)
	})
}

func TestHandle_Reply(t *testing.T) {
	task := sharedMessaging.GenerationTaskPayload{
		TaskID: "t4", Strategy: models.StrategyReply, SourceID: "tweet-9", Text: "@persona wen moon?", GateWithDecision: true,
	}

	t.Run("respond", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Respond, nil).Once()
		f.generator.On("GenerateReply", mock.Anything, task.Text).Return("never", nil).Once()
		saved, published := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), task))
		assert.Equal(t, models.ResultStatusSuccess, saved.Status)
		assert.Equal(t, "never", published.Text)
		assert.Equal(t, "tweet-9", published.SourceID)
	})

	t.Run("ignored by decision engine", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Ignore, nil).Once()
		saved, published := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), task))
		assert.Equal(t, models.ResultStatusIgnored, saved.Status)
		assert.Empty(t, published.Text)
		f.generator.AssertNotCalled(t, "GenerateReply", mock.Anything, mock.Anything)
	})

	t.Run("already seen", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(false, nil).Once()
		_, published := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), task))
		assert.Equal(t, sharedMessaging.ResultStatusSkipped, published.Status)
	})

	t.Run("decision failure", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Ignore, models.ErrCompletion).Once()
		f.seen.On("Forget", mock.Anything, "tweet-9").Return(nil).Once()
		saved, published := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), task))
		assert.Equal(t, models.ResultStatusError, saved.Status)
		assert.Contains(t, published.ErrorDetails, models.ErrCompletion.Error())
	})

	t.Run("generation failure releases the source", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Respond, nil).Once()
		f.generator.On("GenerateReply", mock.Anything, task.Text).Return("", models.ErrCompletion).Once()
		f.seen.On("Forget", mock.Anything, "tweet-9").Return(errors.New("redis down")).Once()
		saved, _ := f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), task))
		assert.Equal(t, models.ResultStatusError, saved.Status)
	})

	t.Run("timed out generation still releases the source", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Respond, nil).Once()
		f.generator.On("GenerateReply", mock.Anything, task.Text).
			Run(func(mock.Arguments) { cancel() }).
			Return("", context.Canceled).Once()
		f.seen.On("Forget", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "tweet-9").Return(nil).Once()
		f.expectResult(t)

		require.NoError(t, f.handler.Handle(ctx, task))
	})

	t.Run("publish failure releases the source for redelivery", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(true, nil).Once()
		f.generator.On("ShouldRespond", mock.Anything, task.Text).Return(agent.Respond, nil).Once()
		f.generator.On("GenerateReply", mock.Anything, task.Text).Return("never", nil).Once()
		f.results.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		f.publisher.On("PublishResult", mock.Anything, mock.Anything, "t4").Return(errors.New("channel closed")).Once()
		f.seen.On("Forget", mock.Anything, "tweet-9").Return(nil).Once()

		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, task))
		assert.Equal(t, messaging.Requeue, outcome)
	})

	t.Run("skipped source is kept on publish failure", func(t *testing.T) {
		f := newFixture(t)
		f.seen.On("MarkSeen", mock.Anything, "tweet-9").Return(false, nil).Once()
		f.results.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		f.publisher.On("PublishResult", mock.Anything, mock.Anything, "t4").Return(errors.New("channel closed")).Once()

		assert.Error(t, f.handler.Handle(context.Background(), task))
		f.seen.AssertNotCalled(t, "Forget", mock.Anything, mock.Anything)
	})

	t.Run("ungated without source id", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GenerateReply", mock.Anything, "gm").Return("gm", nil).Once()
		f.expectResult(t)

		require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{
			TaskID: "t5", Strategy: models.StrategyReply, Text: "gm",
		}))
		f.seen.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything)
	})
}

func TestHandle_Image(t *testing.T) {
	f := newFixture(t)
	png := []byte("\x89PNG fake")
	f.images.On("Submit", mock.Anything).Return("https://x/y.png", nil).Once()
	f.images.On("FetchImage", mock.Anything, "https://x/y.png").Return(png, nil).Once()
	saved, published := f.expectResult(t)

	require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: "img-1", Strategy: models.StrategyImage}))

	assert.Equal(t, "https://x/y.png", saved.ImageURL)
	assert.Equal(t, filepath.Join(f.imageDir, "img-1.png"), saved.ImagePath)
	assert.Equal(t, len(png), published.ImageBytes)

	data, err := os.ReadFile(saved.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestHandle_RejectsUnsafeTaskID(t *testing.T) {
	for _, id := range []string{"../escaped", "..", ".", "a/b", `a\b`, "/abs", ".hidden", "with space"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t)

			err := f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: id, Strategy: models.StrategyImage})
			assert.ErrorIs(t, err, models.ErrInvalidInput)

			outcome := f.handler.HandleDelivery(context.Background(), delivery(t, sharedMessaging.GenerationTaskPayload{TaskID: id, Strategy: models.StrategyImage}))
			assert.Equal(t, messaging.Reject, outcome)

			f.images.AssertNotCalled(t, "Submit", mock.Anything)
			_, statErr := os.Stat(filepath.Join(filepath.Dir(f.imageDir), "escaped.png"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestHandle_AcceptsUUIDTaskID(t *testing.T) {
	f := newFixture(t)
	id := "7f9c2ba4-e88f-11ee-8c90-0242ac120002"
	f.images.On("Submit", mock.Anything).Return("https://x/z.png", nil).Once()
	f.images.On("FetchImage", mock.Anything, "https://x/z.png").Return([]byte("png"), nil).Once()
	saved, _ := f.expectResult(t)

	require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: id, Strategy: models.StrategyImage}))
	assert.Equal(t, filepath.Join(f.imageDir, id+".png"), saved.ImagePath)
}

func TestHandle_ImageSubmitFailure(t *testing.T) {
	f := newFixture(t)
	f.images.On("Submit", mock.Anything).Return("", models.ErrConfig).Once()
	saved, _ := f.expectResult(t)

	require.NoError(t, f.handler.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: "img-2", Strategy: models.StrategyImage}))
	assert.Equal(t, models.ResultStatusError, saved.Status)
	f.images.AssertNotCalled(t, "FetchImage", mock.Anything, mock.Anything)
}

func TestHandle_TaskTimeoutBoundsGeneration(t *testing.T) {
	f := newFixture(t)
	h, err := worker.NewTaskHandler(worker.Deps{
		Generator: f.generator, Images: f.images, Results: f.results, Publisher: f.publisher,
	}, worker.Settings{TaskTimeout: 20 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	f.generator.On("GeneratePost", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			<-ctx.Done()
		}).
		Return("", context.DeadlineExceeded).Once()
	saved, _ := f.expectResult(t)

	require.NoError(t, h.Handle(context.Background(), sharedMessaging.GenerationTaskPayload{TaskID: "slow", Strategy: models.StrategyPost}))
	assert.Equal(t, models.ResultStatusError, saved.Status)
}

func TestHandleDelivery_Outcomes(t *testing.T) {
	t.Run("bad json is rejected", func(t *testing.T) {
		f := newFixture(t)
		outcome := f.handler.HandleDelivery(context.Background(), amqp091.Delivery{Body: []byte("{not json")})
		assert.Equal(t, messaging.Reject, outcome)
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		f := newFixture(t)
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, map[string]string{"taskId": "t", "strategy": "poem"}))
		assert.Equal(t, messaging.Reject, outcome)
	})

	t.Run("decision is not a task strategy", func(t *testing.T) {
		f := newFixture(t)
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, map[string]string{"taskId": "t", "strategy": "decision"}))
		assert.Equal(t, messaging.Reject, outcome)
	})

	t.Run("missing task id is rejected", func(t *testing.T) {
		f := newFixture(t)
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, map[string]string{"strategy": "post"}))
		assert.Equal(t, messaging.Reject, outcome)
	})

	t.Run("success is acked", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GeneratePost", mock.Anything).Return("ok", nil).Once()
		f.expectResult(t)
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, sharedMessaging.GenerationTaskPayload{TaskID: "t", Strategy: models.StrategyPost}))
		assert.Equal(t, messaging.Ack, outcome)
	})

	t.Run("generation failure is still acked", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GeneratePost", mock.Anything).Return("", models.ErrCompletion).Once()
		f.expectResult(t)
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, sharedMessaging.GenerationTaskPayload{TaskID: "t", Strategy: models.StrategyPost}))
		assert.Equal(t, messaging.Ack, outcome)
	})

	t.Run("publish failure is requeued", func(t *testing.T) {
		f := newFixture(t)
		f.generator.On("GeneratePost", mock.Anything).Return("ok", nil).Once()
		f.results.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		f.publisher.On("PublishResult", mock.Anything, mock.Anything, "t").Return(errors.New("channel closed")).Once()
		outcome := f.handler.HandleDelivery(context.Background(), delivery(t, sharedMessaging.GenerationTaskPayload{TaskID: "t", Strategy: models.StrategyPost}))
		assert.Equal(t, messaging.Requeue, outcome)
	})
}

func TestNewTaskHandler_RequiresDeps(t *testing.T) {
	_, err := worker.NewTaskHandler(worker.Deps{}, worker.Settings{}, zap.NewNop())
	assert.Error(t, err)
}
