package imagejob_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/imagejob"
	"persona-agent/shared/models"
)

const (
	testAPIKey = "test-key"
	testPrompt = "a lone validator node at dawn"
)

var fixedNow = time.Date(2024, 3, 9, 12, 30, 45, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newService(endpoint string, cfgMods ...func(*imagejob.Config)) *imagejob.Service {
	cfg := imagejob.Config{Endpoint: endpoint, APIKey: testAPIKey, BasePrompt: testPrompt}
	for _, mod := range cfgMods {
		mod(&cfg)
	}
	return imagejob.NewService(cfg, nil, nil, imagejob.WithClock(fixedClock))
}

func TestNewJob(t *testing.T) {
	job, err := imagejob.NewJob(testPrompt, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "job_"+strconv.FormatInt(fixedNow.UnixMilli(), 10), job.JobID)
	assert.Equal(t, fixedNow.Unix()+300, job.Deadline)
	assert.Equal(t, imagejob.ModelID, job.ModelID)
	assert.Equal(t, 1, job.Priority)
	assert.Equal(t, 1024, job.ModelInput.SD.Width)
	assert.Equal(t, 1024, job.ModelInput.SD.Height)
	assert.Equal(t, 22, job.ModelInput.SD.NumIterations)
	assert.InDelta(t, 7.5, job.ModelInput.SD.GuidanceScale, 1e-9)
	assert.Equal(t, testPrompt, job.ModelInput.SD.Prompt)
	assert.Equal(t, imagejob.NegativePrompt, job.ModelInput.SD.NegPrompt)
}

func TestNewJob_DeadlineMatchesJobID(t *testing.T) {
	// Instants right before and after a second boundary.
	for _, now := range []time.Time{
		time.UnixMilli(1_700_000_000_999),
		time.UnixMilli(1_700_000_001_000),
		time.UnixMilli(1_700_000_001_001),
	} {
		job, err := imagejob.NewJob(testPrompt, now)
		require.NoError(t, err)

		submitted, err := job.SubmittedAt()
		require.NoError(t, err)
		assert.Equal(t, submitted.UnixMilli()/1000+300, job.Deadline, "job %s", job.JobID)
	}
}

func TestNewJob_ClockError(t *testing.T) {
	_, err := imagejob.NewJob(testPrompt, time.Time{})
	assert.ErrorIs(t, err, models.ErrClock)

	_, err = imagejob.NewJob(testPrompt, time.Unix(-5, 0))
	assert.ErrorIs(t, err, models.ErrClock)
}

func TestNewJob_FirstSecondAfterEpoch(t *testing.T) {
	job, err := imagejob.NewJob(testPrompt, time.Unix(0, 500*int64(time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, "job_500", job.JobID)
	assert.Equal(t, int64(300), job.Deadline)

	job, err = imagejob.NewJob(testPrompt, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "job_0", job.JobID)
}

func TestNewJob_WireFormat(t *testing.T) {
	job, err := imagejob.NewJob(testPrompt, fixedNow)
	require.NoError(t, err)

	raw, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.ElementsMatch(t, []string{"model_input", "model_id", "deadline", "priority", "job_id"}, keys(decoded))

	sd := decoded["model_input"].(map[string]any)["SD"].(map[string]any)
	assert.ElementsMatch(t, []string{"width", "height", "prompt", "neg_prompt", "num_iterations", "guidance_scale"}, keys(sd))
}

func TestService_Submit(t *testing.T) {
	var gotJob imagejob.Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotJob))
		_, _ = io.WriteString(w, "\"https://x/y.png\"\n")
	}))
	defer srv.Close()

	url, err := newService(srv.URL).Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.png", url)

	assert.Equal(t, "job_"+strconv.FormatInt(fixedNow.UnixMilli(), 10), gotJob.JobID)
	assert.Equal(t, fixedNow.Unix()+300, gotJob.Deadline)
	assert.Equal(t, testPrompt, gotJob.ModelInput.SD.Prompt)
}

func TestService_Submit_ResponseNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unquoted", body: "https://x/y.png", want: "https://x/y.png"},
		{name: "quoted", body: `"https://x/y.png"`, want: "https://x/y.png"},
		{name: "double quoted strips one layer", body: `""https://x/y.png""`, want: `"https://x/y.png"`},
		{name: "leading quote only", body: `"https://x/y.png`, want: "https://x/y.png"},
		{name: "trailing quote only", body: `https://x/y.png"`, want: "https://x/y.png"},
		{name: "no other transformation", body: " https://x/y.png ", want: " https://x/y.png "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := newService(srv.URL).Submit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Submit_MissingConfig(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	t.Run("api key", func(t *testing.T) {
		svc := newService(srv.URL, func(c *imagejob.Config) { c.APIKey = "" })
		_, err := svc.Submit(context.Background())
		assert.ErrorIs(t, err, models.ErrConfig)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("base prompt", func(t *testing.T) {
		svc := newService(srv.URL, func(c *imagejob.Config) { c.BasePrompt = "   " })
		_, err := svc.Submit(context.Background())
		assert.ErrorIs(t, err, models.ErrConfig)
		assert.Contains(t, err.Error(), "base prompt")
	})

	assert.Zero(t, calls.Load(), "no request may be sent without configuration")
}

func TestService_Submit_ClockError(t *testing.T) {
	svc := imagejob.NewService(
		imagejob.Config{Endpoint: "http://127.0.0.1:1", APIKey: testAPIKey, BasePrompt: testPrompt},
		nil, nil,
		imagejob.WithClock(func() time.Time { return time.Time{} }),
	)
	_, err := svc.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrClock)
}

func TestService_Submit_HTTPErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newService(srv.URL).Submit(context.Background())
		assert.ErrorIs(t, err, models.ErrHTTP)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("empty body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `""`)
		}))
		defer srv.Close()

		_, err := newService(srv.URL).Submit(context.Background())
		assert.ErrorIs(t, err, models.ErrHTTP)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := srv.URL
		srv.Close()

		_, err := newService(endpoint).Submit(context.Background())
		assert.ErrorIs(t, err, models.ErrHTTP)
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "https://x/y.png")
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newService(srv.URL).Submit(ctx)
		assert.ErrorIs(t, err, models.ErrHTTP)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_FetchImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(png)
		case "/empty.png":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := newService(srv.URL)

	data, err := svc.FetchImage(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = svc.FetchImage(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, models.ErrHTTP)

	_, err = svc.FetchImage(context.Background(), srv.URL+"/empty.png")
	assert.ErrorIs(t, err, models.ErrHTTP)

	_, err = svc.FetchImage(context.Background(), "://not a url")
	assert.ErrorIs(t, err, models.ErrHTTP)
}

func TestService_SubmitThenFetch(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/submit_job", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strconv.Quote(srv.URL+"/images/1.png"))
	})
	mux.HandleFunc("/images/1.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 2048))
	})

	svc := newService(srv.URL + "/submit_job")
	url, err := svc.Submit(context.Background())
	require.NoError(t, err)

	data, err := svc.FetchImage(context.Background(), url)
	require.NoError(t, err)
	assert.Len(t, data, 2048)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
