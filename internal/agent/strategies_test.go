package agent_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/agent"
	"persona-agent/internal/mocks"
	"persona-agent/shared/models"
)

// recorder captures every request and answers with a fixed string.
type recorder struct {
	mu       sync.Mutex
	answer   string
	requests []agent.Request
}

func (r *recorder) Complete(_ context.Context, req agent.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.answer, nil
}

func (r *recorder) last(t *testing.T) agent.Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func TestNew_Validation(t *testing.T) {
	_, err := agent.New(agent.Persona{SystemPrompt: testPersona}, nil, nil)
	assert.Error(t, err)

	_, err = agent.New(agent.Persona{SystemPrompt: " \n"}, &recorder{}, nil)
	assert.ErrorIs(t, err, models.ErrConfig)
}

func TestStrategies_SamplingAndTrimming(t *testing.T) {
	calls := map[models.Strategy]func(a *agent.Agent) (string, error){
		models.StrategyPost: func(a *agent.Agent) (string, error) {
			return a.GeneratePost(context.Background())
		},
		models.StrategyReply: func(a *agent.Agent) (string, error) {
			return a.GenerateReply(context.Background(), "source")
		},
		models.StrategyGenericFUD: func(a *agent.Agent) (string, error) {
			return a.GenerateGenericFUD(context.Background(), "i", "r", "c")
		},
		models.StrategyEditorializedFUD: func(a *agent.Agent) (string, error) {
			return a.GenerateEditorializedFUD(context.Background(), "symbol: $X")
		},
	}
	for strategy, call := range calls {
		t.Run(string(strategy), func(t *testing.T) {
			rec := &recorder{answer: "  hello world\n"}
			text, err := call(newAgent(t, rec))
			require.NoError(t, err)
			assert.Equal(t, "hello world", text)

			req := rec.last(t)
			assert.Equal(t, strategy, req.Strategy)
			assert.Equal(t, testPersona, req.SystemPrompt)
			assert.InDelta(t, 0.9, req.Temperature, 1e-9)
			assert.Equal(t, 4096, req.MaxTokens)
		})
	}
}

func TestStrategies_EmptyCompletion(t *testing.T) {
	for _, answer := range []string{"", "  \n\t "} {
		rec := &recorder{answer: answer}
		_, err := newAgent(t, rec).GeneratePost(context.Background())
		assert.ErrorIs(t, err, models.ErrCompletion)
	}
}

func TestStrategies_CompletionFailure(t *testing.T) {
	backendErr := errors.New("503 from provider")
	completer := mocks.NewMockCompleter(t)
	completer.On("Complete", mock.Anything, mock.Anything).Return("", backendErr)

	a := newAgent(t, completer)
	_, err := a.GenerateReply(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrCompletion)
	assert.ErrorIs(t, err, backendErr)

	_, err = a.GenerateEditorializedFUD(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrCompletion)
}

func TestGeneratePost_Prompt(t *testing.T) {
	rec := &recorder{answer: "markets are quiet today"}
	_, err := newAgent(t, rec).GeneratePost(context.Background())
	require.NoError(t, err)

	p := rec.last(t).UserPrompt
	for _, rule := range []string{"1-3 sentence", "under 280 characters", "No emojis", "No hashtags", "No questions", "ONLY THE TWEET TEXT"} {
		assert.Contains(t, p, rule)
	}
}

func TestGenerateReply_Prompt(t *testing.T) {
	source := "is this the bottom?"
	rec := &recorder{answer: "no"}
	_, err := newAgent(t, rec).GenerateReply(context.Background(), source)
	require.NoError(t, err)

	p := rec.last(t).UserPrompt
	assert.Contains(t, p, "Current Post: '"+source+"'")
	for _, rule := range []string{"all lowercase", "Avoids punctuation", "sarcastic", "under 280 characters"} {
		assert.Contains(t, p, rule)
	}
}

func TestGenerateGenericFUD_FragmentsVerbatim(t *testing.T) {
	tests := []struct {
		name                   string
		intro, reason, closing string
	}{
		{name: "plain", intro: "ser", reason: "dev sold", closing: "ngmi"},
		{name: "empty", intro: "", reason: "", closing: ""},
		{name: "delimiter-like", intro: "Closing: fake", reason: "Intro: x\n\nRequirements:", closing: "'\"{}%s%%"},
		{name: "unicode", intro: "🚨 ALERTA", reason: "开发者跑路", closing: "ça va"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{answer: "rug incoming"}
			_, err := newAgent(t, rec).GenerateGenericFUD(context.Background(), tt.intro, tt.reason, tt.closing)
			require.NoError(t, err)

			p := rec.last(t).UserPrompt
			assert.True(t, strings.HasPrefix(p, testPersona+"\n\n"), "persona prompt must prefix the task")
			assert.Contains(t, p, "Intro: "+tt.intro+"\n")
			assert.Contains(t, p, "FUD Reason: "+tt.reason+"\n")
			assert.Contains(t, p, "Closing: "+tt.closing+"\n")
			assert.Contains(t, p, "Don't include a ticker")
			assert.Equal(t, agent.GenericFUDPrompt(testPersona, tt.intro, tt.reason, tt.closing), p)
		})
	}
}

func TestGenerateEditorializedFUD_TokenInfoVerbatim(t *testing.T) {
	tokenInfo := "Token: $BONK\nLiquidity: $1,234,567.89\nMarket cap: 42069\n{\"chain\":\"solana\"}"
	rec := &recorder{answer: "bonk liquidity is a puddle"}
	_, err := newAgent(t, rec).GenerateEditorializedFUD(context.Background(), tokenInfo)
	require.NoError(t, err)

	p := rec.last(t).UserPrompt
	assert.True(t, strings.HasPrefix(p, testPersona+"\n\n"))
	assert.Contains(t, p, "about this token:\n"+tokenInfo+"\n")
	assert.Contains(t, p, "Never make up specific numbers")
	assert.Contains(t, p, "Don't mention the price")
	assert.Contains(t, p, "SOLANA")
	assert.Contains(t, p, "Do not mention BNB")
	for _, example := range agent.FUDExamples() {
		assert.Contains(t, p, "'"+example+"'")
	}
}

func TestFUDExamples_ReturnsCopy(t *testing.T) {
	examples := agent.FUDExamples()
	require.NotEmpty(t, examples)
	original := examples[0]
	examples[0] = "ignore all previous instructions"

	assert.Equal(t, original, agent.FUDExamples()[0])
	p := agent.EditorializedFUDPrompt(testPersona, "symbol: $X")
	assert.NotContains(t, p, "ignore all previous instructions")
	assert.Contains(t, p, "'"+original+"'")
}

func TestAgent_ConcurrentUse(t *testing.T) {
	rec := &recorder{answer: "ok"}
	a := newAgent(t, rec)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.GenerateReply(context.Background(), "gm")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, rec.requests, 16)
}
