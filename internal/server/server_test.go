package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelens/hirelens/internal/recommend"
)

type stubService struct {
	result *recommend.Result
	err    error
}

func (s *stubService) Recommend(_ context.Context, query string, topK int) (*recommend.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &recommend.Result{Query: query, RewrittenQuery: query, TotalResults: topK}, nil
}

func testServer(svc *stubService) *Server {
	return New(Config{}, svc, nil)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRecommendEndpoint(t *testing.T) {
	svc := &stubService{result: &recommend.Result{
		Query:          "java developer",
		RewrittenQuery: "java developer rewritten",
		Assessments: []recommend.AssessmentView{
			{URL: "https://example.com/java-8", Name: "Java 8", RelevanceScore: 0.9},
		},
		TotalResults: 1,
	}}
	srv := testServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/recommend",
		strings.NewReader(`{"query": "java developer", "top_k": 5}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result recommend.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "java developer", result.Query)
	require.Len(t, result.Assessments, 1)
	assert.Equal(t, "Java 8", result.Assessments[0].Name)
}

func TestRecommendRejectsMalformedBody(t *testing.T) {
	srv := testServer(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEmptyQueryIsBadRequest(t *testing.T) {
	srv := testServer(&stubService{err: recommend.ErrEmptyQuery})

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"query": ""}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, recommend.ErrEmptyQuery.Error(), body.Error)
}

func TestRecommendInternalErrorIsOpaque(t *testing.T) {
	srv := testServer(&stubService{err: errors.New("catalog went sideways: secret detail")})

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"query": "q"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestRecommendMethodNotAllowed(t *testing.T) {
	srv := testServer(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/recommend", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
