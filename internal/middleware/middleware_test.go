package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	scoped := r.Group("", TeamScope())
	scoped.GET("/ping", handler)
	return r
}

func serve(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

func TestTeamScope(t *testing.T) {
	const teamID = "0190c6a2-7d4e-7b1a-9c3f-2a1b3c4d5e6f"

	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"team_id": c.GetString(TeamIDKey)})
	}

	t.Run("missing_header", func(t *testing.T) {
		rec := serve(newRouter(ok), nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %s", code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec := serve(newRouter(ok), map[string]string{TeamHeader: "42"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("scoped", func(t *testing.T) {
		rec := serve(newRouter(ok), map[string]string{TeamHeader: teamID})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["team_id"] != teamID {
			t.Errorf("expected team id in context, got %v", body)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected request id header")
		}
	})
}

func TestErrorHandler(t *testing.T) {
	headers := map[string]string{TeamHeader: "0190c6a2-7d4e-7b1a-9c3f-2a1b3c4d5e6f"}

	t.Run("retryable_conflict", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			_ = c.Error(apperrors.Wrap(apperrors.ErrConcurrencyConflict, errors.New("deadlock detected")))
		})
		rec := serve(r, headers)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
		if code := errorCode(t, rec); code != "CONCURRENCY_CONFLICT" {
			t.Errorf("expected CONCURRENCY_CONFLICT, got %s", code)
		}
	})

	t.Run("unexpected_error", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			_ = c.Error(errors.New("boom"))
		})
		rec := serve(r, headers)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %s", code)
		}
	})

	t.Run("reuses_request_id", func(t *testing.T) {
		const requestID = "0190c6a2-0000-7000-8000-000000000001"
		r := newRouter(func(c *gin.Context) { c.Status(http.StatusNoContent) })
		rec := serve(r, map[string]string{TeamHeader: headers[TeamHeader], "X-Request-ID": requestID})
		if got := rec.Header().Get("X-Request-ID"); got != requestID {
			t.Errorf("expected request id %s, got %s", requestID, got)
		}
	})
}
