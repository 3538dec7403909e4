package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(h *HealthHandler, method string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, "/healthz", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/healthz", nil))
	return w
}

type healthBody struct {
	Status        string            `json:"status"`
	ActiveBackend string            `json:"activeBackend"`
	Checks        map[string]string `json:"checks"`
}

// TestHealth_Methods はメソッドごとのステータスとCache-Controlヘッダーを検証します。
func TestHealth_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method    string
		status    int
		emptyBody bool
	}{
		{http.MethodGet, http.StatusOK, false},
		{http.MethodHead, http.StatusOK, true},
		{http.MethodOptions, http.StatusNoContent, true},
		{http.MethodPost, http.StatusOK, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := serve(NewHealthHandler(nil, nil), tt.method)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.emptyBody {
				assert.Zero(t, w.Body.Len())
				return
			}

			var body healthBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body.Status)
			assert.Nil(t, body.Checks, "no checks registered")
			assert.Empty(t, body.ActiveBackend)
		})
	}
}

// TestHealth_Checks は依存先の失敗時に503とdegradedが返り、アクティブなバックエンド名が含まれることを検証します。
func TestHealth_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mongoErr   error
		wantStatus int
		wantBody   string
		wantMongo  string
	}{
		{"all healthy", nil, http.StatusOK, "ok", "ok"},
		{"document backend down", errors.New("server selection timeout"), http.StatusServiceUnavailable, "degraded", "error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(
				func() string { return "sqlite" },
				map[string]Check{
					"sqlite": func(context.Context) error { return nil },
					"mongo":  func(context.Context) error { return tt.mongoErr },
				},
			)
			w := serve(h, http.MethodGet)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body healthBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			assert.Equal(t, "sqlite", body.ActiveBackend)
			assert.Equal(t, map[string]string{"sqlite": "ok", "mongo": tt.wantMongo}, body.Checks)
			assert.NotContains(t, w.Body.String(), "server selection timeout")
		})
	}
}

// TestHealth_CheckDeadline はチェックにタイムアウト付きのcontextが渡されることを検証します。
func TestHealth_CheckDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := NewHealthHandler(nil, map[string]Check{
		"redis": func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	})
	w := serve(h, http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline)
}
