package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/referral-analytics-service/docs"
	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/dto"
	"github.com/BarkinBalci/referral-analytics-service/internal/service"
)

type Handler struct {
	analyticsService service.AnalyticsServicer
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(analyticsService service.AnalyticsServicer, log *zap.Logger) *Handler {
	h := &Handler{
		analyticsService: analyticsService,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.publishEvent)
	h.router.GET("/users/:user_id/analytics", h.getUserAnalytics)
	h.router.POST("/users/:user_id/analytics/refresh", h.refreshUserAnalytics)
	h.router.GET("/users/:user_id/insights", h.getUserInsights)
	h.router.GET("/analytics/churn-risk", h.listChurnRiskUsers)
	h.router.GET("/analytics/top-performers", h.listTopPerformers)
	h.router.GET("/forecasts", h.getNetworkForecast)
	h.router.POST("/forecasts", h.computeNetworkForecast)
	h.router.POST("/experiments/significance", h.testSignificance)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// publishEvent handles POST /events
// @Summary Publish a raw platform event
// @Description Publish a signup or earning event to the ingestion queue
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.PublishEventRequest true "Event data"
// @Success 202 {object} dto.PublishEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) publishEvent(c *gin.Context) {
	var req dto.PublishEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request",
			zap.Error(err),
			zap.String("kind", req.Kind))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.analyticsService.PublishRawEvent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to publish event",
			zap.Error(err),
			zap.String("kind", req.Kind),
			zap.String("user_id", req.UserID))
		h.respondError(c, err)
		return
	}

	h.log.Info("Event accepted",
		zap.String("event_id", eventID),
		zap.String("kind", req.Kind))

	c.JSON(http.StatusAccepted, dto.PublishEventResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// getUserAnalytics handles GET /users/:user_id/analytics
// @Summary Get user analytics
// @Description Retrieve the analytics snapshot for a user, recomputing it if stale
// @Tags analytics
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{user_id}/analytics [get]
func (h *Handler) getUserAnalytics(c *gin.Context) {
	userID := c.Param("user_id")

	snapshot, err := h.analyticsService.GetUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to get user analytics",
			zap.Error(err),
			zap.String("user_id", userID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnalyticsResponse{Analytics: snapshot})
}

// refreshUserAnalytics handles POST /users/:user_id/analytics/refresh
// @Summary Recompute user analytics
// @Description Force a recomputation of the user's analytics snapshot from raw history
// @Tags analytics
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{user_id}/analytics/refresh [post]
func (h *Handler) refreshUserAnalytics(c *gin.Context) {
	userID := c.Param("user_id")

	snapshot, err := h.analyticsService.ComputeUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to recompute user analytics",
			zap.Error(err),
			zap.String("user_id", userID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnalyticsResponse{Analytics: snapshot})
}

// getUserInsights handles GET /users/:user_id/insights
// @Summary Get user insights
// @Description Retrieve prioritized recommendations derived from the user's analytics
// @Tags analytics
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.InsightsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{user_id}/insights [get]
func (h *Handler) getUserInsights(c *gin.Context) {
	userID := c.Param("user_id")

	insights, err := h.analyticsService.GetUserInsights(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to get user insights",
			zap.Error(err),
			zap.String("user_id", userID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InsightsResponse{Insights: insights})
}

// listChurnRiskUsers handles GET /analytics/churn-risk
// @Summary List users by churn risk
// @Description List cached snapshots at the given churn risk level, highest score first
// @Tags analytics
// @Produce json
// @Param level query string false "Risk level (all, medium, high, critical)" Enums(all, medium, high, critical)
// @Param limit query int false "Maximum number of rows"
// @Success 200 {object} dto.SnapshotListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analytics/churn-risk [get]
func (h *Handler) listChurnRiskUsers(c *gin.Context) {
	var query dto.ChurnRiskQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	users, err := h.analyticsService.ListChurnRiskUsers(c.Request.Context(), query.Level, query.Limit)
	if err != nil {
		h.log.Error("Failed to list churn risk users",
			zap.Error(err),
			zap.String("level", query.Level))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnapshotListResponse{Users: users, Count: len(users)})
}

// listTopPerformers handles GET /analytics/top-performers
// @Summary List top performers
// @Description List cached snapshots ordered by the given metric
// @Tags analytics
// @Produce json
// @Param metric query string false "Ordering metric (earnings, growth, recruits)" Enums(earnings, growth, recruits)
// @Param limit query int false "Maximum number of rows"
// @Success 200 {object} dto.SnapshotListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analytics/top-performers [get]
func (h *Handler) listTopPerformers(c *gin.Context) {
	var query dto.TopPerformersQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	users, err := h.analyticsService.ListTopPerformers(c.Request.Context(), query.Metric, query.Limit)
	if err != nil {
		h.log.Error("Failed to list top performers",
			zap.Error(err),
			zap.String("metric", query.Metric))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnapshotListResponse{Users: users, Count: len(users)})
}

// getNetworkForecast handles GET /forecasts
// @Summary Get stored network forecasts
// @Description Retrieve stored forecasts of the given type from today onward
// @Tags forecasts
// @Produce json
// @Param type query string false "Forecast type (daily, weekly, monthly)" Enums(daily, weekly, monthly)
// @Param limit query int false "Maximum number of rows"
// @Success 200 {object} dto.ForecastsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /forecasts [get]
func (h *Handler) getNetworkForecast(c *gin.Context) {
	var query dto.ForecastQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	forecasts, err := h.analyticsService.GetNetworkForecast(c.Request.Context(), query.Type, query.Limit)
	if err != nil {
		h.log.Error("Failed to get network forecast",
			zap.Error(err),
			zap.String("type", query.Type))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ForecastsResponse{Forecasts: forecasts, Count: len(forecasts)})
}

// computeNetworkForecast handles POST /forecasts
// @Summary Compute a network forecast
// @Description Build and store a platform-wide forecast from historical activity
// @Tags forecasts
// @Accept json
// @Produce json
// @Param forecast body dto.ComputeForecastRequest true "Forecast parameters"
// @Success 200 {object} dto.ForecastsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /forecasts [post]
func (h *Handler) computeNetworkForecast(c *gin.Context) {
	var req dto.ComputeForecastRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	forecasts, err := h.analyticsService.ComputeNetworkForecast(c.Request.Context(), req.Type, req.DaysAhead)
	if err != nil {
		h.log.Error("Failed to compute network forecast",
			zap.Error(err),
			zap.String("type", req.Type),
			zap.Int("days_ahead", req.DaysAhead))
		h.respondError(c, err)
		return
	}

	h.log.Info("Network forecast computed",
		zap.String("type", req.Type),
		zap.Int("days_ahead", req.DaysAhead))

	c.JSON(http.StatusOK, dto.ForecastsResponse{Forecasts: forecasts, Count: len(forecasts)})
}

// testSignificance handles POST /experiments/significance
// @Summary Test conversion significance
// @Description Run a chi-square test comparing two experiment variants' conversion rates
// @Tags experiments
// @Accept json
// @Produce json
// @Param experiment body dto.SignificanceRequest true "Variant conversion counts"
// @Success 200 {object} dto.SignificanceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /experiments/significance [post]
func (h *Handler) testSignificance(c *gin.Context) {
	var req dto.SignificanceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if req.ConversionsA > req.UsersA || req.ConversionsB > req.UsersB {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "conversions cannot exceed users",
		})
		return
	}

	result := h.analyticsService.TestSignificance(req.ConversionsA, req.UsersA, req.ConversionsB, req.UsersB)

	c.JSON(http.StatusOK, dto.SignificanceResponse{Result: result})
}
