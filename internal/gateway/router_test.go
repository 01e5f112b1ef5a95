package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/vesto-server/internal/auth"
)

func TestRouterRegistersAllEndpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandlers(nil, nil, nil, nil, nil, nil, nil, nil, nil, logger)
	stream := NewQuoteStream(nil, logger)
	jwtSvc := auth.NewJWTService("test-secret")

	router, ok := NewRouter(h, stream, jwtSvc, "http://localhost:5173").(chi.Routes)
	if !ok {
		t.Fatal("router does not expose chi.Routes")
	}

	registered := make(map[string]bool)
	walkFn := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	}
	if err := chi.Walk(router, walkFn); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	want := []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/companies/all-data",
		"GET /api/portfolio",
		"POST /api/portfolio/invest",
		"POST /api/simulator/pitch",
		"GET /api/simulator/pitches",
		"GET /api/simulator/pitches/{id}",
		"GET /api/progress",
		"POST /api/progress/{moduleId}",
		"POST /api/modules/{moduleId}/grade-mcq",
		"POST /api/modules/{moduleId}/grade-written",
		"GET /ws",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}
