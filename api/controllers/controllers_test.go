package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sajith213/fuelstation-backend/api/middleware"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type requestOpts struct {
	body     string
	operator uuid.UUID
	role     string
	params   map[string]string
}

func serve(t *testing.T, h http.HandlerFunc, method, target string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if opts.body != "" {
		body = strings.NewReader(opts.body)
	}
	req := httptest.NewRequest(method, target, body)

	ctx := req.Context()
	if opts.operator != uuid.Nil {
		role := opts.role
		if role == "" {
			role = "supervisor"
		}
		ctx = middleware.WithOperator(ctx, opts.operator.String(), role)
	}
	routeCtx := chi.NewRouteContext()
	for k, v := range opts.params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

var fixedDay = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
