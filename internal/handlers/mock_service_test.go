package handlers

import (
	"context"
	"net/http"
	"time"

	"windguard/internal/models"
	"windguard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockHistory struct {
	resp       []models.HistoryRecord
	err        error
	lastFilter service.HistoryFilter
	listCalls  int
}

func (m *mockHistory) List(ctx context.Context, f service.HistoryFilter) ([]models.HistoryRecord, error) {
	m.listCalls++
	m.lastFilter = f
	return m.resp, m.err
}
func (m *mockHistory) Latest(ctx context.Context) (models.HistoryRecord, bool, error) {
	if len(m.resp) == 0 {
		return models.HistoryRecord{}, false, m.err
	}
	return m.resp[0], true, m.err
}

type mockStatus struct {
	report service.StatusReport
	err    error
}

func (m *mockStatus) GetStatus(ctx context.Context) (service.StatusReport, error) {
	return m.report, m.err
}

type mockPoller struct {
	result    service.PollResult
	err       error
	pollCalls int
}

func (m *mockPoller) Poll(ctx context.Context) (service.PollResult, error) {
	m.pollCalls++
	return m.result, m.err
}
func (m *mockPoller) SetUp(ctx context.Context) error             { return nil }
func (m *mockPoller) Run(ctx context.Context, tick time.Duration) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
