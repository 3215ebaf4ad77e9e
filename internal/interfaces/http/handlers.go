package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/application/orchestrator"
	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/matching"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
	"github.com/garyjia/sip-workflow/internal/infrastructure/document"
	"github.com/garyjia/sip-workflow/internal/infrastructure/export"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MaxResumeBytes bounds uploaded resume files
const MaxResumeBytes = 5 << 20

// Evaluator decides intents without side effects
type Evaluator interface {
	ExecuteIntent(ic decision.IntentContext, appCtx *workflow.ApplicationContext) decision.IntentResult
}

// StatusReader looks up the stored status of an application
type StatusReader interface {
	GetStatus(ctx context.Context, id string) (workflow.Status, error)
}

// HealthChecker reports component health
type HealthChecker interface {
	CheckHealth(ctx context.Context) (healthy bool, components interface{})
}

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	Evaluator    Evaluator
	Orchestrator orchestrator.Orchestrator
	Audit        port.AuditLogRepository
	// Applications fills in a missing current_status on workflow requests
	Applications StatusReader
	Scorer       port.MatchScorer
	Resumes      port.ResumeAnalyzer
	// Documents reads uploaded resume files; uploads are refused when nil
	Documents port.DocumentTextExtractor
	Health    HealthChecker
	// MaxRetries caps the max_retries a caller may ask for
	MaxRetries int
	// DefaultLocale applies when a request has no Accept-Language header
	DefaultLocale string
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Deps
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Deps, logger Logger) *Handlers {
	if deps.Scorer == nil {
		deps.Scorer = localScorer{matcher: matching.NewSkillMatcher()}
	}
	if deps.Resumes == nil {
		deps.Resumes = localResumeAnalyzer{analyzer: matching.NewResumeAnalyzer()}
	}
	return &Handlers{deps: deps, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// MatchResponse is the skill match result with its 0-100 score
type MatchResponse struct {
	matching.Result
	Percent float64 `json:"percent"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}
	code := http.StatusOK

	if h.deps.Health != nil {
		healthy, components := h.deps.Health.CheckHealth(c.Request.Context())
		resp.Components = components
		if !healthy {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, Response{Success: code == http.StatusOK, Data: resp})
}

// EvaluateIntent handles POST /api/intents/evaluate
func (h *Handlers) EvaluateIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ic, err := req.toIntentContext()
	if err != nil {
		h.badRequest(c, err)
		return
	}

	result := h.deps.Evaluator.ExecuteIntent(ic, req.Context)
	h.localize(&result, c)

	code := http.StatusOK
	if !result.Allowed {
		code = HTTPStatus(result.ReasonCode)
	}
	c.JSON(code, Response{Success: result.Allowed, Data: result, Error: result.Reason})
}

// AvailableIntents handles GET /api/intents/available
func (h *Handlers) AvailableIntents(c *gin.Context) {
	role, err := workflow.ParseRole(c.Query("role"))
	if err != nil {
		h.badRequest(c, err)
		return
	}

	status := workflow.StatusNone
	if raw := c.Query("status"); raw != "" {
		if status, err = workflow.ParseStatus(raw); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	intents := h.deps.Orchestrator.AvailableIntents(status, role, nil)
	c.JSON(http.StatusOK, Response{Success: true, Data: intents})
}

// ExecuteWorkflow handles POST /api/workflows/execute
func (h *Handlers) ExecuteWorkflow(c *gin.Context) {
	wc, req, ok := h.bindWorkflow(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var result *orchestrator.WorkflowResult
	if retries := h.clampRetries(req.MaxRetries); retries > 0 {
		result = h.deps.Orchestrator.ExecuteWorkflowWithRetry(ctx, wc, retries)
	} else {
		result = h.deps.Orchestrator.ExecuteWorkflow(ctx, wc)
	}
	h.writeWorkflow(c, result)
}

// ValidateWorkflow handles POST /api/workflows/validate
func (h *Handlers) ValidateWorkflow(c *gin.Context) {
	wc, _, ok := h.bindWorkflow(c)
	if !ok {
		return
	}
	h.writeWorkflow(c, h.deps.Orchestrator.ValidateWorkflow(c.Request.Context(), wc))
}

// ListAudit handles GET /api/applications/:id/audit
func (h *Handlers) ListAudit(c *gin.Context) {
	entries, err := h.deps.Audit.ListByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "failed to list audit entries", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ExportAudit handles GET /api/applications/:id/audit.xlsx
func (h *Handlers) ExportAudit(c *gin.Context) {
	id := c.Param("id")
	entries, err := h.deps.Audit.ListByApplication(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "failed to list audit entries", err)
		return
	}

	buf, err := export.AuditWorkbook(entries)
	if err != nil {
		h.internalError(c, "failed to build audit workbook", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// MatchSkills handles POST /api/match/skills
func (h *Handlers) MatchSkills(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.deps.Scorer.Score(c.Request.Context(), port.MatchRequest{
		StudentSkills:    req.StudentSkills,
		InternshipSkills: req.InternshipSkills,
	})
	if err != nil {
		h.internalError(c, "failed to score match", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: MatchResponse{Result: *result, Percent: result.Percent()}})
}

// ResumeResponse is the result of resume analysis, with a match score when
// internship skills were given
type ResumeResponse struct {
	Analysis matching.ResumeAnalysis `json:"analysis"`
	Match    *MatchResponse          `json:"match,omitempty"`
}

// AnalyzeResume handles POST /api/analyze/resume
func (h *Handlers) AnalyzeResume(c *gin.Context) {
	req, status, err := h.bindResume(c)
	if err != nil {
		c.JSON(status, Response{Success: false, Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	analysis, err := h.deps.Resumes.AnalyzeResume(ctx, req.ResumeText)
	if err != nil {
		h.internalError(c, "failed to analyze resume", err)
		return
	}

	resp := ResumeResponse{Analysis: *analysis}
	if len(req.InternshipSkills) > 0 {
		result, err := h.deps.Scorer.Score(ctx, port.MatchRequest{
			StudentSkills:    analysis.Skills(),
			InternshipSkills: req.InternshipSkills,
		})
		if err != nil {
			h.internalError(c, "failed to score match", err)
			return
		}
		resp.Match = &MatchResponse{Result: *result, Percent: result.Percent()}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// bindResume reads a JSON body or a multipart upload with a PDF resume
func (h *Handlers) bindResume(c *gin.Context) (ResumeRequest, int, error) {
	var req ResumeRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, http.StatusBadRequest, err
		}
		return req, 0, nil
	}

	if h.deps.Documents == nil {
		return req, http.StatusNotImplemented, errors.New("resume upload is not enabled")
	}
	file, err := c.FormFile("resume")
	if err != nil {
		return req, http.StatusBadRequest, fmt.Errorf("missing resume file: %w", err)
	}
	if file.Size > MaxResumeBytes {
		return req, http.StatusRequestEntityTooLarge, fmt.Errorf("resume exceeds %d bytes", MaxResumeBytes)
	}

	f, err := file.Open()
	if err != nil {
		return req, http.StatusBadRequest, fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxResumeBytes))
	if err != nil {
		return req, http.StatusBadRequest, fmt.Errorf("failed to read resume: %w", err)
	}

	text, err := h.deps.Documents.ExtractText(data)
	switch {
	case errors.Is(err, document.ErrNotPDF):
		return req, http.StatusUnsupportedMediaType, err
	case err != nil:
		h.logger.Error("Failed to extract resume text", "file", file.Filename, "error", err)
		return req, http.StatusUnprocessableEntity, errors.New("failed to read resume document")
	}

	req.ResumeText = text
	req.InternshipSkills = c.PostFormArray("internship_skills")
	return req, 0, nil
}

func (h *Handlers) bindWorkflow(c *gin.Context) (orchestrator.WorkflowContext, WorkflowRequest, bool) {
	var req WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return orchestrator.WorkflowContext{}, req, false
	}
	ic, err := req.toIntentContext()
	if err != nil {
		h.badRequest(c, err)
		return orchestrator.WorkflowContext{}, req, false
	}
	if req.Command.UserID == "" {
		h.badRequest(c, errors.New("command.user_id is required"))
		return orchestrator.WorkflowContext{}, req, false
	}

	if ic.CurrentStatus == workflow.StatusNone && ic.Intent != workflow.IntentSubmitApplication &&
		req.Command.ApplicationID != "" && h.deps.Applications != nil {
		status, err := h.deps.Applications.GetStatus(c.Request.Context(), req.Command.ApplicationID)
		if errors.Is(err, port.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "application not found"})
			return orchestrator.WorkflowContext{}, req, false
		}
		if err != nil {
			h.internalError(c, "failed to load application status", err)
			return orchestrator.WorkflowContext{}, req, false
		}
		ic.CurrentStatus = status
	}

	return orchestrator.WorkflowContext{
		Intent:      ic,
		Application: req.Context,
		Command:     req.Command,
		CommandIDs:  req.CommandIDs,
	}, req, true
}

func (h *Handlers) writeWorkflow(c *gin.Context, result *orchestrator.WorkflowResult) {
	h.localize(&result.Decision, c)

	code := http.StatusOK
	switch {
	case result.Denied():
		code = HTTPStatus(result.Decision.ReasonCode)
	case !result.Success:
		code = http.StatusInternalServerError
	}
	c.JSON(code, Response{Success: result.Success, Data: result, Error: result.Error})
}

func (h *Handlers) clampRetries(requested int) int {
	if requested <= 0 {
		return 0
	}
	if h.deps.MaxRetries > 0 && requested > h.deps.MaxRetries {
		return h.deps.MaxRetries
	}
	return requested
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}

// localize rewrites a denial reason into the caller's language. Base-locale
// callers keep the engine's message, which may be a custom policy message.
func (h *Handlers) localize(result *decision.IntentResult, c *gin.Context) {
	if result.Allowed || result.ReasonCode == "" {
		return
	}
	acceptLanguage := c.GetHeader("Accept-Language")
	if acceptLanguage == "" {
		acceptLanguage = h.deps.DefaultLocale
	}
	tag := workflow.MatchLocale(acceptLanguage)
	if tag == workflow.BaseLocale {
		return
	}
	result.Reason = workflow.Localize(result.ReasonCode, tag)
}

// localResumeAnalyzer serves resume analysis when no AI analyzer is configured
type localResumeAnalyzer struct {
	analyzer *matching.ResumeAnalyzer
}

func (a localResumeAnalyzer) AnalyzeResume(_ context.Context, text string) (*matching.ResumeAnalysis, error) {
	result := a.analyzer.Analyze(text)
	return &result, nil
}

// localScorer serves match requests when no AI scorer is configured
type localScorer struct {
	matcher *matching.SkillMatcher
}

func (s localScorer) Score(_ context.Context, req port.MatchRequest) (*matching.Result, error) {
	result := s.matcher.Match(req.StudentSkills, req.InternshipSkills)
	return &result, nil
}
