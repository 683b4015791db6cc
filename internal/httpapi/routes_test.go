package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/demostack/usersapi/internal/db"
	"github.com/demostack/usersapi/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

func TestEngineWiresDefensesAndRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open test db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return now }
	standard := ratelimit.NewManager(ratelimit.Config{Window: time.Minute, MaxRequests: 100}, nowFn, nil)
	strict := ratelimit.NewManager(ratelimit.Config{Window: time.Minute, MaxRequests: 1}, nowFn, nil)
	engine := NewEngine(conn, standard, strict, []string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 banner, got %d", w.Code)
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers missing on banner response")
	}

	// Cross-origin frontend requests carry the CORS grant.
	frontend := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	engine.ServeHTTP(frontend, req)
	if got := frontend.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	// Strict tier guards writes end to end.
	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first write should reach the handler")
	}
	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second write, got %d", second.Code)
	}
}
