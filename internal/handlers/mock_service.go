package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"autopost/internal/models"
	"autopost/internal/service"

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

type mockScheduler struct {
	startErr    error
	stopErr     error
	status      models.RunnerStatus
	startCalled int
	stopCalled  int
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.startCalled++
	return m.startErr
}
func (m *mockScheduler) Stop(ctx context.Context) error {
	m.stopCalled++
	return m.stopErr
}
func (m *mockScheduler) Status(ctx context.Context) models.RunnerStatus {
	return m.status
}

type mockComposer struct {
	generateText string
	generateErr  error
	publishRes   models.DispatchResult
	publishErr   error

	lastGenerate service.ComposeParams
	lastPublish  service.PublishParams
}

func (m *mockComposer) Generate(ctx context.Context, p service.ComposeParams) (string, error) {
	m.lastGenerate = p
	return m.generateText, m.generateErr
}
func (m *mockComposer) Publish(ctx context.Context, p service.PublishParams) (models.DispatchResult, error) {
	m.lastPublish = p
	return m.publishRes, m.publishErr
}

type mockSettings struct {
	cfg       models.ScheduleConfig
	getErr    error
	updateErr error

	lastUpdate models.ScheduleConfig
}

func (m *mockSettings) Get(ctx context.Context) (models.ScheduleConfig, error) {
	return m.cfg, m.getErr
}
func (m *mockSettings) Update(ctx context.Context, c models.ScheduleConfig) (models.ScheduleConfig, error) {
	m.lastUpdate = c
	if m.updateErr != nil {
		return models.ScheduleConfig{}, m.updateErr
	}
	return c, nil
}

type mockExecutionLog struct {
	resp      []models.ExecutionLogEntry
	err       error
	lastCount int
}

func (m *mockExecutionLog) Recent(ctx context.Context, count int) ([]models.ExecutionLogEntry, error) {
	m.lastCount = count
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

var errBoom = errors.New("boom")

func jsonBody(s string) *bytes.Buffer {
	return bytes.NewBufferString(s)
}

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
