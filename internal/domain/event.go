package domain

import "time"

// Raw event kinds stored in the ledger.
const (
	EventKindSignup  = "signup"
	EventKindEarning = "earning"
)

// RawEvent represents a raw referral-platform event stored in ClickHouse.
// A signup event records a new user (ReferrerID links the recruit to the
// user who referred them); an earning event records a bonus or commission
// credited to UserID.
type RawEvent struct {
	EventID     string    `ch:"event_id"`
	Kind        string    `ch:"kind"`
	UserID      string    `ch:"user_id"`
	ReferrerID  string    `ch:"referrer_id"`
	Amount      float64   `ch:"amount"`
	Timestamp   int64     `ch:"timestamp"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}

// Transaction is a single earnings transaction read back from the ledger.
type Transaction struct {
	Amount     float64
	OccurredAt time.Time
}

// Recruit is a single recruitment event read back from the ledger.
type Recruit struct {
	OccurredAt time.Time
}
