package dto

// PublishEventRequest represents a raw platform event to ingest
type PublishEventRequest struct {
	Kind       string  `json:"kind" binding:"required,oneof=signup earning" example:"earning"`
	UserID     string  `json:"user_id" binding:"required" example:"user_123"`
	ReferrerID string  `json:"referrer_id" example:"user_045"`
	Amount     float64 `json:"amount" binding:"gte=0" example:"12.50"`
	Timestamp  int64   `json:"timestamp" binding:"required" example:"1723475612"`
}

// ChurnRiskQuery represents a churn-risk listing request
type ChurnRiskQuery struct {
	Level string `form:"level" example:"high"`
	Limit int    `form:"limit" example:"50"`
}

// TopPerformersQuery represents a top-performer listing request
type TopPerformersQuery struct {
	Metric string `form:"metric" example:"earnings"`
	Limit  int    `form:"limit" example:"10"`
}

// ForecastQuery represents a stored-forecast listing request
type ForecastQuery struct {
	Type  string `form:"type" example:"daily"`
	Limit int    `form:"limit" example:"30"`
}

// ComputeForecastRequest represents a forecast computation request
type ComputeForecastRequest struct {
	Type      string `json:"type" example:"daily"`
	DaysAhead int    `json:"days_ahead" binding:"required" example:"30"`
}

// SignificanceRequest represents an A/B significance test request
type SignificanceRequest struct {
	ConversionsA int64 `json:"conversions_a" binding:"gte=0" example:"50"`
	UsersA       int64 `json:"users_a" binding:"gte=0" example:"100"`
	ConversionsB int64 `json:"conversions_b" binding:"gte=0" example:"70"`
	UsersB       int64 `json:"users_b" binding:"gte=0" example:"100"`
}
