// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newCheckMethodRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Post("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))
	return router
}

func TestCheckHTTPMethod_TableTest(t *testing.T) {
	router := newCheckMethodRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "registered method passes through",
			method:     http.MethodGet,
			path:       "/api/tasks",
			wantStatus: http.StatusOK,
		},
		{
			name:       "second registered method passes through",
			method:     http.MethodPost,
			path:       "/api/tasks",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unregistered method on existing route → 404",
			method:     http.MethodPut,
			path:       "/api/tasks",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unregistered method on GET-only route → 404",
			method:     http.MethodDelete,
			path:       "/api/health",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			// 405 наружу не отдаём
			assert.NotEqual(t, http.StatusMethodNotAllowed, rr.Code)
		})
	}
}

func TestCheckHTTPMethod_NeverReturns405(t *testing.T) {
	router := newCheckMethodRouter()

	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions,
	}

	for _, method := range methods {
		req := httptest.NewRequest(method, "/api/tasks", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.NotEqual(t, http.StatusMethodNotAllowed, rr.Code,
			"method %s must not produce 405", method)
	}
}
