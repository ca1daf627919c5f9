package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/erpbot/server/internal/core/error"
)

type fakeAssistant struct {
	reply    string
	err      error
	resetErr error
	prompts  []string
	resets   []string
}

func (f *fakeAssistant) Respond(_ context.Context, sessionID, prompt string) (string, error) {
	f.prompts = append(f.prompts, sessionID+"|"+prompt)
	return f.reply, f.err
}

func (f *fakeAssistant) Reset(_ context.Context, sessionID string) error {
	f.resets = append(f.resets, sessionID)
	return f.resetErr
}

func do(t *testing.T, a Assistant, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(a))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestChat(t *testing.T) {
	a := &fakeAssistant{reply: "Factura creada."}
	w := do(t, a, http.MethodPost, "/api/method/chat", `{"session_id":"s1","prompt_message":"crea una factura"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Factura creada.", resp.Message)
	assert.Equal(t, []string{"s1|crea una factura"}, a.prompts)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestChat_BadRequest(t *testing.T) {
	a := &fakeAssistant{}
	for _, body := range []string{`{"session_id":"s1"}`, `not json`, `{"prompt_message":"hola"}`} {
		w := do(t, a, http.MethodPost, "/api/method/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, a.prompts)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", errx.New(errx.Validationf("session_id is required"), http.StatusBadRequest, errx.ValidationMessage), http.StatusBadRequest, "session_id is required"},
		{"redis", errx.WrapRedis(errors.New("dial tcp: refused")), http.StatusBadGateway, errx.SystemErrorMessage},
		{"plain", errors.New("agent run: boom"), http.StatusInternalServerError, errx.SystemErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, &fakeAssistant{err: tt.err}, http.MethodPost, "/api/method/chat", `{"session_id":"s1","prompt_message":"hola"}`)
			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.msg)
		})
	}
}

func TestClearSession(t *testing.T) {
	a := &fakeAssistant{}
	w := do(t, a, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"s1"}, a.resets)

	a.resetErr = errx.WrapRedis(errors.New("down"))
	w = do(t, a, http.MethodDelete, "/api/sessions/s1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealth(t *testing.T) {
	w := do(t, &fakeAssistant{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&fakeAssistant{}))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
