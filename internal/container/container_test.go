package container

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "sip.db")
	cfg.Workflow.RetryBackoff = 0
	return cfg
}

func startContainer(t *testing.T) *Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewContainer_RejectsBadInput(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Server.Port = 0
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_StartWiresComponents(t *testing.T) {
	c := startContainer(t)

	assert.True(t, c.Ready())
	assert.NotNil(t, c.Server())
	assert.NotNil(t, c.Engine())
	assert.NotNil(t, c.Orchestrator())
	assert.NotNil(t, c.Dispatcher())
	assert.Nil(t, c.RedisClient())
	assert.NotEmpty(t, c.Registry().Descriptors())

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	_, hasRedis := health.Components["redis"]
	assert.False(t, hasRedis, "redis is only reported when enabled")

	assert.Error(t, c.Start(context.Background()), "second start")
}

func TestContainer_WorkflowEndToEnd(t *testing.T) {
	c := startContainer(t)
	router := c.Server().Router()

	w := postJSON(t, router, "/api/workflows/execute", map[string]interface{}{
		"intent": "SUBMIT_APPLICATION",
		"role":   "STUDENT",
		"command": map[string]interface{}{
			"application_id": "app-42",
			"user_id":        "stu-1",
			"student_id":     "stu-1",
			"internship_id":  "int-7",
			"employer_id":    "emp-3",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ctx := context.Background()
	status, err := c.Repositories().Applications.GetStatus(ctx, "app-42")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusSubmitted, status)

	// current_status is looked up from the stored application
	w = postJSON(t, router, "/api/workflows/execute", map[string]interface{}{
		"intent":  "START_REVIEW",
		"role":    "EMPLOYER",
		"command": map[string]interface{}{"application_id": "app-42", "user_id": "emp-3"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	status, err = c.Repositories().Applications.GetStatus(ctx, "app-42")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusUnderReview, status)

	history, err := c.Repositories().History.ListByApplication(ctx, "app-42")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/applications/app-42/audit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool                 `json:"success"`
		Data    []*entity.AuditEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, workflow.IntentSubmitApplication, env.Data[0].Intent)
	assert.Equal(t, workflow.StatusUnderReview, env.Data[1].NewStatus)
}

func TestContainer_DeniedTransitionLeavesNoTrace(t *testing.T) {
	c := startContainer(t)
	router := c.Server().Router()

	w := postJSON(t, router, "/api/workflows/execute", map[string]interface{}{
		"intent":         "ACCEPT_CANDIDATE",
		"role":           "STUDENT",
		"current_status": "SUBMITTED",
		"command":        map[string]interface{}{"application_id": "app-9", "user_id": "stu-1"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	entries, err := c.Repositories().Audit.ListByApplication(context.Background(), "app-9")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContainer_ResumeUploads(t *testing.T) {
	upload := func(t *testing.T, h http.Handler) int {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("resume", "resume.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("plain text, not a pdf"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze/resume", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	tests := []struct {
		name    string
		enabled bool
		want    int
	}{
		{"enabled rejects non-pdf", true, http.StatusUnsupportedMediaType},
		{"disabled", false, http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			cfg := testConfig(t)
			cfg.Resume.UploadsEnabled = tt.enabled

			c, err := NewContainer(cfg, zap.NewNop())
			require.NoError(t, err)
			require.NoError(t, c.Start(context.Background()))
			t.Cleanup(func() { _ = c.Close() })

			assert.Equal(t, tt.want, upload(t, c.Server().Router()))
		})
	}
}

func TestContainer_ResumeTextUsesLocalAnalyzer(t *testing.T) {
	c := startContainer(t)

	w := postJSON(t, c.Server().Router(), "/api/analyze/resume", map[string]interface{}{
		"resume_text":       "Go intern, 1 year of Golang and Redis",
		"internship_skills": []string{"golang", "redis"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Analysis struct {
				ExtractedSkills []string `json:"extracted_skills"`
				ExperienceLevel string   `json:"experience_level"`
			} `json:"analysis"`
			Match struct {
				MatchScore float64 `json:"match_score"`
			} `json:"match"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Golang", "Redis"}, resp.Data.Analysis.ExtractedSkills)
	assert.Equal(t, "Intermediate", resp.Data.Analysis.ExperienceLevel)
	assert.Equal(t, 1.0, resp.Data.Match.MatchScore)
}

func TestContainer_CloseTwice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()), "start after close")
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("a", 1, 2, "skipped", "err", assert.AnError, "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "err", fields[1].Key)
}
