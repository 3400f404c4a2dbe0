package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/shared/interfaces"
	sharedMessaging "persona-agent/shared/messaging"
	"persona-agent/shared/models"
)

// Deps are the collaborators of a Handler. Results and Tasks are optional;
// their routes are not registered when nil.
type Deps struct {
	Generator interfaces.ContentGenerator
	Images    interfaces.ImageJobService
	Results   interfaces.GenerationResultRepository
	Tasks     interfaces.TaskPublisher
}

// issuedURLLimit bounds how many submitted image URLs stay proxiable.
const issuedURLLimit = 1024

// Handler serves the generation API.
type Handler struct {
	deps         Deps
	issued       *issuedURLs
	allowedHosts map[string]struct{}
	logger       *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithProxyAllowedHosts lets the image proxy fetch any http(s) URL on the
// given hosts, in addition to URLs issued by submitImage.
func WithProxyAllowedHosts(hosts ...string) Option {
	return func(h *Handler) {
		for _, host := range hosts {
			if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
				h.allowedHosts[host] = struct{}{}
			}
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(deps Deps, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		deps:         deps,
		issued:       newIssuedURLs(issuedURLLimit),
		allowedHosts: make(map[string]struct{}),
		logger:       logger.Named("api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the /v1 routes on router behind the given middleware.
func (h *Handler) RegisterRoutes(router gin.IRouter, middleware ...gin.HandlerFunc) {
	v1 := router.Group("/v1", middleware...)
	v1.POST("/decide", h.decide)
	v1.POST("/posts", h.generatePost)
	v1.POST("/replies", h.generateReply)
	v1.POST("/fud/generic", h.generateGenericFUD)
	v1.POST("/fud/editorialized", h.generateEditorializedFUD)
	v1.POST("/images", h.submitImage)
	v1.GET("/images/proxy", h.proxyImage)

	if h.deps.Results != nil {
		v1.GET("/results", h.listResults)
		v1.GET("/results/:taskId", h.getResult)
	}
	if h.deps.Tasks != nil {
		v1.POST("/tasks", h.enqueueTask)
	}
}

func (h *Handler) decide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "text is required")
		return
	}
	decision, err := h.deps.Generator.ShouldRespond(c.Request.Context(), req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, decideResponse{Decision: decision.String(), Respond: decision == agent.Respond})
}

func (h *Handler) generatePost(c *gin.Context) {
	text, err := h.deps.Generator.GeneratePost(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, textResponse{Text: text})
}

func (h *Handler) generateReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "text is required")
		return
	}
	ctx := c.Request.Context()

	var resp textResponse
	if req.Gate {
		decision, err := h.deps.Generator.ShouldRespond(ctx, req.Text)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		resp.Decision = decision.String()
		if decision == agent.Ignore {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	text, err := h.deps.Generator.GenerateReply(ctx, req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	resp.Text = text
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) generateGenericFUD(c *gin.Context) {
	var req genericFUDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	text, err := h.deps.Generator.GenerateGenericFUD(c.Request.Context(), req.Intro, req.Reason, req.Closing)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, textResponse{Text: text})
}

func (h *Handler) generateEditorializedFUD(c *gin.Context) {
	var req editorializedFUDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	text, err := h.deps.Generator.GenerateEditorializedFUD(c.Request.Context(), req.TokenInfo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, textResponse{Text: text})
}

func (h *Handler) submitImage(c *gin.Context) {
	imageURL, err := h.deps.Images.Submit(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.issued.add(imageURL)
	c.JSON(http.StatusOK, imageJobResponse{URL: imageURL})
}

// proxyImage downloads the image at ?url= and returns its bytes unchanged.
// Only URLs issued by submitImage or on an allowed host are fetched.
func (h *Handler) proxyImage(c *gin.Context) {
	imageURL := c.Query("url")
	if imageURL == "" {
		h.badRequest(c, "url query parameter is required")
		return
	}
	if !h.proxyAllowed(imageURL) {
		h.logger.Warn("Refusing to proxy image URL", zap.String("url", imageURL))
		h.handleServiceError(c, models.ErrForbidden)
		return
	}
	data, err := h.deps.Images.FetchImage(c.Request.Context(), imageURL)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handler) proxyAllowed(raw string) bool {
	if h.issued.contains(raw) {
		return true
	}
	if len(h.allowedHosts) == 0 {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.User != nil {
		return false
	}
	_, ok := h.allowedHosts[strings.ToLower(u.Hostname())]
	return ok
}

func (h *Handler) listResults(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	results, err := h.deps.Results.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if results == nil {
		results = []*models.GenerationResult{}
	}
	c.JSON(http.StatusOK, resultsResponse{Data: results})
}

func (h *Handler) getResult(c *gin.Context) {
	result, err := h.deps.Results.GetByTaskID(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) enqueueTask(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "strategy is required")
		return
	}
	if !req.Strategy.Valid() {
		h.badRequest(c, "unknown strategy "+strconv.Quote(string(req.Strategy)))
		return
	}
	if req.Strategy == models.StrategyReply && req.Text == "" {
		h.badRequest(c, "reply tasks require text")
		return
	}

	task := sharedMessaging.GenerationTaskPayload{
		TaskID:           uuid.NewString(),
		Strategy:         req.Strategy,
		SourceID:         req.SourceID,
		Text:             req.Text,
		GateWithDecision: req.GateWithDecision,
		Intro:            req.Intro,
		Reason:           req.Reason,
		Closing:          req.Closing,
		TokenInfo:        req.TokenInfo,
	}
	if err := h.deps.Tasks.PublishTask(c.Request.Context(), task); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.logger.Info("Task enqueued", zap.String("task_id", task.TaskID), zap.String("strategy", string(task.Strategy)))
	c.JSON(http.StatusAccepted, enqueueResponse{TaskID: task.TaskID})
}
