// Package imagejob submits generative-image jobs and downloads their results.
package imagejob

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"persona-agent/shared/models"
)

// Fixed model parameters sent with every job.
const (
	DefaultEndpoint = "http://sequencer.heurist.xyz/submit_job"
	ModelID         = "BluePencilRealistic"
	NegativePrompt  = "worst quality, bad quality, umbrella, blurry face, anime, illustration"
	ImageWidth      = 1024
	ImageHeight     = 1024
	NumIterations   = 22
	GuidanceScale   = 7.5
	Priority        = 1

	// DeadlineHorizon is how long the remote service may take before the job expires.
	DeadlineHorizon = 300 * time.Second

	jobIDPrefix = "job_"
)

// Job is the JSON body posted to the image-job endpoint.
type Job struct {
	ModelInput ModelInput `json:"model_input"`
	ModelID    string     `json:"model_id"`
	Deadline   int64      `json:"deadline"` // unix seconds
	Priority   int        `json:"priority"`
	JobID      string     `json:"job_id"`
}

// ModelInput wraps the parameters of the model family.
type ModelInput struct {
	SD StableDiffusionParams `json:"SD"`
}

// StableDiffusionParams are the SD model parameters.
type StableDiffusionParams struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Prompt        string  `json:"prompt"`
	NegPrompt     string  `json:"neg_prompt"`
	NumIterations int     `json:"num_iterations"`
	GuidanceScale float64 `json:"guidance_scale"`
}

// NewJob builds a job from a single clock reading so that the id and the
// deadline never straddle a second boundary.
func NewJob(prompt string, now time.Time) (Job, error) {
	if now.IsZero() || now.Before(time.Unix(0, 0)) {
		return Job{}, fmt.Errorf("%w: clock returned %v", models.ErrClock, now)
	}
	return Job{
		ModelInput: ModelInput{SD: StableDiffusionParams{
			Width:         ImageWidth,
			Height:        ImageHeight,
			Prompt:        prompt,
			NegPrompt:     NegativePrompt,
			NumIterations: NumIterations,
			GuidanceScale: GuidanceScale,
		}},
		ModelID:  ModelID,
		Deadline: now.Unix() + int64(DeadlineHorizon/time.Second),
		Priority: Priority,
		JobID:    jobIDPrefix + strconv.FormatInt(now.UnixMilli(), 10),
	}, nil
}

// SubmittedAt recovers the submission time encoded in the job id.
func (j Job) SubmittedAt() (time.Time, error) {
	ms, err := strconv.ParseInt(strings.TrimPrefix(j.JobID, jobIDPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(j.JobID, jobIDPrefix) {
		return time.Time{}, fmt.Errorf("malformed job id %q", j.JobID)
	}
	return time.UnixMilli(ms), nil
}

// parseJobResult removes at most one leading and one trailing quote. The
// body is otherwise returned unchanged.
func parseJobResult(body []byte) string {
	s := strings.TrimPrefix(string(body), `"`)
	return strings.TrimSuffix(s, `"`)
}
