package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Option-Ledger-Backend/internal/api/middleware"
)

func requestWithID(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestValidateIDMiddleware(t *testing.T) {
	t.Run("passes through valid IDs", func(t *testing.T) {
		for _, id := range []string{"550e8400-e29b-41d4-a716-446655440000", "contract-1702300000000"} {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			middleware.ValidateIDMiddleware(next).ServeHTTP(w, requestWithID(id))

			if !handlerCalled {
				t.Errorf("Expected next handler to be called for %s", id)
			}
			if w.Code != http.StatusOK {
				t.Errorf("Expected 200, got %d", w.Code)
			}
		}
	})

	t.Run("returns 400 for invalid ID", func(t *testing.T) {
		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		w := httptest.NewRecorder()
		middleware.ValidateIDMiddleware(next).ServeHTTP(w, requestWithID("has space"))

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("returns 400 for empty ID", func(t *testing.T) {
		handlerCalled := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		w := httptest.NewRecorder()
		middleware.ValidateIDMiddleware(next).ServeHTTP(w, requestWithID(""))

		if handlerCalled {
			t.Error("Expected next handler NOT to be called")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
