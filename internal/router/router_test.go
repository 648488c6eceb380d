package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/chat"
	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/handler"
	"github.com/certbible/certprep/internal/history"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/certbible/certprep/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type noSource struct{}

func (noSource) Fetch(context.Context, provider.Request) ([]quiz.Question, error) {
	return nil, quiz.ErrEmptyQuestionSet
}

type discardQueue struct{}

func (discardQueue) Push(context.Context, []byte) error { return nil }

func newRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	log := zerolog.Nop()
	results := service.NewResultService(history.NewMemoryStore(), 0, nil, log)
	sessions := service.NewSessionService(noSource{}, cat, results, log)
	tutor := chat.NewClient(chat.Config{URL: "http://127.0.0.1:0"}, log)

	h := &Handlers{
		Catalog: handler.NewCatalogHandler(cat),
		Session: handler.NewSessionHandler(sessions, log),
		Result:  handler.NewResultHandler(results, log),
		Chat:    handler.NewChatHandler(service.NewChatService(tutor, sessions, results, log), log),
		Flag:    handler.NewFlagHandler(service.NewFlagService(sessions, discardQueue{}, log), log),
		WS:      handler.NewWSHandler(sessions, log, nil),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, h, cfg)
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter(t, &config.Config{GinMode: gin.TestMode, APIKey: "secret"})
	w := serve(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestAPIKeyGuard(t *testing.T) {
	r := newRouter(t, &config.Config{GinMode: gin.TestMode, APIKey: "secret"})

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
	}{
		{"missing", "/api/v1/catalog", nil, http.StatusUnauthorized},
		{"wrong", "/api/v1/catalog", map[string]string{"x-api-key": "nope"}, http.StatusForbidden},
		{"ok", "/api/v1/catalog", map[string]string{"x-api-key": "secret"}, http.StatusOK},
		{"query key", "/api/v1/catalog?api_key=secret", nil, http.StatusOK},
		{"ws missing", "/ws/v1/sessions/x/stream", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(r, http.MethodGet, tt.path, tt.headers); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCachingHeaders(t *testing.T) {
	r := newRouter(t, &config.Config{GinMode: gin.TestMode})

	w := serve(r, http.MethodGet, "/api/v1/catalog", nil)
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("catalog Cache-Control = %q", got)
	}
	w = serve(r, http.MethodGet, "/api/v1/results", nil)
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("results Cache-Control = %q", got)
	}
}

func TestChatRateLimited(t *testing.T) {
	r := newRouter(t, &config.Config{GinMode: gin.TestMode, ChatRatePerMinute: 1})

	// Invalid bodies still consume tokens: the limiter runs first.
	first := serve(r, http.MethodPost, "/api/v1/chat", nil)
	second := serve(r, http.MethodPost, "/api/v1/chat", nil)
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first request limited")
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}
