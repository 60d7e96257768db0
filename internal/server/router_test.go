package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/snowbot/internal/api/handlers"
	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAskService struct {
	mock.Mock
}

func (m *MockAskService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(domain.Answer), args.Error(1)
}

func (m *MockAskService) Ready() bool {
	return m.Called().Bool(0)
}

func (m *MockAskService) IndexSize() int {
	return m.Called().Int(0)
}

type MockReindexer struct {
	mock.Mock
}

func (m *MockReindexer) Reindex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newTestRouter(svc *MockAskService, reindexer *MockReindexer) http.Handler {
	cfg := RouterConfig{
		AskHandler: handlers.NewAskHandler(svc),
	}
	if reindexer != nil {
		cfg.AdminHandler = handlers.NewAdminHandler(reindexer)
		cfg.AdminToken = "admin-token"
	}
	return NewRouter(cfg)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockAskService), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Ask(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, "What is the VPN issue?").
		Return(domain.GeneratedAnswer("The VPN gateway is down."), nil)

	router := newTestRouter(svc, nil)

	body, _ := json.Marshal(map[string]string{"question": "What is the VPN issue?"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"The VPN gateway is down."}`, rec.Body.String())
}

func TestRouter_Ready_NotReady(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(false)

	router := newTestRouter(svc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_AdminReindex_RequiresToken(t *testing.T) {
	reindexer := new(MockReindexer)
	router := newTestRouter(new(MockAskService), reindexer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reindex", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reindexer.AssertNotCalled(t, "Reindex")
}

func TestRouter_AdminReindex_WithToken(t *testing.T) {
	reindexer := new(MockReindexer)
	reindexer.On("Reindex", mock.Anything).Return(3, nil)

	router := newTestRouter(new(MockAskService), reindexer)

	req := httptest.NewRequest(http.MethodPost, "/admin/reindex", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRouter_AdminRoutesAbsentWithoutHandler(t *testing.T) {
	router := newTestRouter(new(MockAskService), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reindex", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	svc := new(MockAskService)
	router := newTestRouter(svc, nil)

	huge := bytes.Repeat([]byte("a"), 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(huge))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
