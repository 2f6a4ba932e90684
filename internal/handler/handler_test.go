package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/dto"
)

const (
	testTimestamp int64 = 1766702551
)

// MockAnalyticsService is a mock implementation of service.AnalyticsServicer
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) ComputeUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSnapshot), args.Error(1)
}

func (m *MockAnalyticsService) GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSnapshot), args.Error(1)
}

func (m *MockAnalyticsService) GetUserInsights(ctx context.Context, userID string) ([]domain.Insight, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Insight), args.Error(1)
}

func (m *MockAnalyticsService) ListChurnRiskUsers(ctx context.Context, level string, limit int) ([]domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, level, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalyticsSnapshot), args.Error(1)
}

func (m *MockAnalyticsService) ListTopPerformers(ctx context.Context, metric string, limit int) ([]domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalyticsSnapshot), args.Error(1)
}

func (m *MockAnalyticsService) ComputeNetworkForecast(ctx context.Context, forecastType string, daysAhead int) ([]domain.NetworkForecast, error) {
	args := m.Called(ctx, forecastType, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NetworkForecast), args.Error(1)
}

func (m *MockAnalyticsService) GetNetworkForecast(ctx context.Context, forecastType string, limit int) ([]domain.NetworkForecast, error) {
	args := m.Called(ctx, forecastType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NetworkForecast), args.Error(1)
}

func (m *MockAnalyticsService) TestSignificance(conversionsA, usersA, conversionsB, usersB int64) domain.SignificanceResult {
	args := m.Called(conversionsA, usersA, conversionsB, usersB)
	return args.Get(0).(domain.SignificanceResult)
}

func (m *MockAnalyticsService) PublishRawEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func TestHandler_HealthCheck(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_PublishEvent_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	eventReq := dto.PublishEventRequest{
		Kind:      "earning",
		UserID:    "user123",
		Amount:    25.5,
		Timestamp: testTimestamp,
	}

	mockService.On("PublishRawEvent", mock.Anything, &eventReq).Return("event-id-123", nil)

	body, _ := json.Marshal(eventReq)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response dto.PublishEventResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "event-id-123", response.EventID)
	assert.Equal(t, "accepted", response.Status)
	mockService.AssertExpectations(t)
}

func TestHandler_PublishEvent_InvalidJSON(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	invalidJSON := []byte(`{"kind": "earning", invalid}`)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(invalidJSON))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_error", response.Error)
	mockService.AssertNotCalled(t, "PublishRawEvent")
}

func TestHandler_PublishEvent_UnknownKindRejectedByBinding(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	eventReq := dto.PublishEventRequest{
		Kind:      "refund",
		UserID:    "user123",
		Timestamp: testTimestamp,
	}

	body, _ := json.Marshal(eventReq)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "PublishRawEvent")
}

func TestHandler_GetUserAnalytics_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	snapshot := &domain.AnalyticsSnapshot{
		UserID: "user123",
		ChurnAssessment: domain.ChurnAssessment{
			ChurnRiskScore: 0.3,
			ChurnRiskLevel: domain.ChurnRiskMedium,
		},
		UpdatedAt: time.Unix(testTimestamp, 0).UTC(),
	}

	mockService.On("GetUserAnalytics", mock.Anything, "user123").Return(snapshot, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/user123/analytics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.AnalyticsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "user123", response.Analytics.UserID)
	assert.Equal(t, domain.ChurnRiskMedium, response.Analytics.ChurnRiskLevel)
	mockService.AssertExpectations(t)
}

func TestHandler_GetUserAnalytics_NotFound(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	mockService.On("GetUserAnalytics", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/users/ghost/analytics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "not_found", response.Error)
}

func TestHandler_RefreshUserAnalytics_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	snapshot := &domain.AnalyticsSnapshot{UserID: "user123"}
	mockService.On("ComputeUserAnalytics", mock.Anything, "user123").Return(snapshot, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/user123/analytics/refresh", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_GetUserInsights_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	insights := []domain.Insight{
		{Type: "warning", Category: "engagement", Title: "Stay Active", Priority: "medium"},
	}

	mockService.On("GetUserInsights", mock.Anything, "user123").Return(insights, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/user123/insights", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.InsightsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Insights, 1)
	assert.Equal(t, "Stay Active", response.Insights[0].Title)
	mockService.AssertExpectations(t)
}

func TestHandler_ListChurnRiskUsers_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	users := []domain.AnalyticsSnapshot{
		{UserID: "user1", ChurnAssessment: domain.ChurnAssessment{ChurnRiskScore: 0.9, ChurnRiskLevel: domain.ChurnRiskCritical}},
		{UserID: "user2", ChurnAssessment: domain.ChurnAssessment{ChurnRiskScore: 0.8, ChurnRiskLevel: domain.ChurnRiskCritical}},
	}

	mockService.On("ListChurnRiskUsers", mock.Anything, "critical", 10).Return(users, nil)

	req := httptest.NewRequest(http.MethodGet, "/analytics/churn-risk?level=critical&limit=10", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SnapshotListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "user1", response.Users[0].UserID)
	mockService.AssertExpectations(t)
}

func TestHandler_ListChurnRiskUsers_InvalidLevel(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	mockService.On("ListChurnRiskUsers", mock.Anything, "extreme", 0).
		Return(nil, fmt.Errorf("%w: risk level %q", domain.ErrInvalidInput, "extreme"))

	req := httptest.NewRequest(http.MethodGet, "/analytics/churn-risk?level=extreme", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_error", response.Error)
}

func TestHandler_ListTopPerformers_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	users := []domain.AnalyticsSnapshot{
		{UserID: "user1", MetricBundle: domain.MetricBundle{TotalEarnings: 5000}},
	}

	mockService.On("ListTopPerformers", mock.Anything, "earnings", 5).Return(users, nil)

	req := httptest.NewRequest(http.MethodGet, "/analytics/top-performers?metric=earnings&limit=5", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SnapshotListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 1, response.Count)
	mockService.AssertExpectations(t)
}

func TestHandler_ComputeNetworkForecast_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	forecasts := []domain.NetworkForecast{
		{ForecastType: "daily", PredictedNewUsers: 10, ConfidenceLevel: 0.8},
	}

	mockService.On("ComputeNetworkForecast", mock.Anything, "daily", 30).Return(forecasts, nil)

	body, _ := json.Marshal(dto.ComputeForecastRequest{Type: "daily", DaysAhead: 30})
	req := httptest.NewRequest(http.MethodPost, "/forecasts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ForecastsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "daily", response.Forecasts[0].ForecastType)
	mockService.AssertExpectations(t)
}

func TestHandler_ComputeNetworkForecast_InvalidDaysAhead(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	body, _ := json.Marshal(dto.ComputeForecastRequest{Type: "daily", DaysAhead: 0})
	req := httptest.NewRequest(http.MethodPost, "/forecasts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ComputeNetworkForecast")
}

func TestHandler_GetNetworkForecast_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	forecasts := []domain.NetworkForecast{
		{ForecastType: "daily", PredictedNewUsers: 12},
		{ForecastType: "daily", PredictedNewUsers: 12},
	}

	mockService.On("GetNetworkForecast", mock.Anything, "daily", 0).Return(forecasts, nil)

	req := httptest.NewRequest(http.MethodGet, "/forecasts?type=daily", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ForecastsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 2, response.Count)
	mockService.AssertExpectations(t)
}

func TestHandler_TestSignificance_Success(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	result := domain.SignificanceResult{
		ChiSquare:       8.333,
		PValue:          0.01,
		IsSignificant:   true,
		ConfidenceLevel: 99,
	}

	mockService.On("TestSignificance", int64(50), int64(100), int64(70), int64(100)).Return(result)

	body, _ := json.Marshal(dto.SignificanceRequest{
		ConversionsA: 50,
		UsersA:       100,
		ConversionsB: 70,
		UsersB:       100,
	})
	req := httptest.NewRequest(http.MethodPost, "/experiments/significance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SignificanceResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Result.IsSignificant)
	assert.Equal(t, 99.0, response.Result.ConfidenceLevel)
	mockService.AssertExpectations(t)
}

func TestHandler_TestSignificance_ConversionsExceedUsers(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	body, _ := json.Marshal(dto.SignificanceRequest{
		ConversionsA: 150,
		UsersA:       100,
		ConversionsB: 70,
		UsersB:       100,
	})
	req := httptest.NewRequest(http.MethodPost, "/experiments/significance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "TestSignificance")
}

func TestHandler_GetUserAnalytics_InternalError(t *testing.T) {
	mockService := new(MockAnalyticsService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	mockService.On("GetUserAnalytics", mock.Anything, "user123").
		Return(nil, errors.New("database connection error"))

	req := httptest.NewRequest(http.MethodGet, "/users/user123/analytics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "internal_error", response.Error)
}
