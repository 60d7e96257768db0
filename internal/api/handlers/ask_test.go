package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func askRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(payload))
}

func TestAskHandler_Ask_Success(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, "What is the VPN issue?").
		Return(domain.GeneratedAnswer("The VPN gateway is down."), nil)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "What is the VPN issue?"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The VPN gateway is down.", resp.Answer)
}

func TestAskHandler_Ask_EmptyQuestion(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, "   ").
		Return(domain.FailedAnswer(domain.AnswerKindEmptyQuestion, domain.MsgEmptyQuestion), nil)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "   "}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please enter your question."}`, rec.Body.String())
}

func TestAskHandler_Ask_GenerationFailureIsAnAnswer(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, mock.Anything).
		Return(domain.FailedAnswer(domain.AnswerKindGenerationFailed, domain.MsgGenerationFailed), nil)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "What broke?"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Unable to get an answer."}`, rec.Body.String())
}

func TestAskHandler_Ask_NotReady(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(false)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "anything"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	svc.AssertNotCalled(t, "Ask")
}

func TestAskHandler_Ask_NotReadyRace(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{}, domain.ErrIndexNotReady)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "anything"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAskHandler_Ask_InvalidBody(t *testing.T) {
	svc := new(MockAskService)

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Ask")
}

func TestAskHandler_Ask_UnknownError(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("Ask", mock.Anything, mock.Anything).Return(domain.Answer{}, assert.AnError)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ask(rec, askRequest(t, AskRequest{Question: "anything"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An error occurred while processing your question."}`, rec.Body.String())
}

func TestAskHandler_Ready(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(true)
	svc.On("IndexSize").Return(42)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"status":"ready","documents":42}}`, rec.Body.String())
}

func TestAskHandler_Ready_NotReady(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ready").Return(false)

	rec := httptest.NewRecorder()
	NewAskHandler(svc).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
