package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Usage is one (user, date, engine) ledger entry. Counters are additive and
// only ever increase; updates go through an atomic in-place ADD at the store
// layer, never a read-modify-write, so concurrent turns cannot lose an
// increment. DateKey is the composite sort key "YYYY-MM-DD#<engine>".
type Usage struct {
	UserID        string          `gorm:"primaryKey;column:user_id" json:"userId"`
	DateKey       string          `gorm:"primaryKey;column:date_key" json:"-"`
	UsageDate     string          `json:"usageDate"`
	EngineType    string          `json:"engineType"`
	RequestCount  int64           `json:"requestCount"`
	InputTokens   int64           `json:"totalInputTokens"`
	OutputTokens  int64           `json:"totalOutputTokens"`
	TotalTokens   int64           `json:"totalTokens"`
	EstimatedCost decimal.Decimal `gorm:"type:numeric(12,4)" json:"estimatedCost"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// UsageDateKey builds the composite sort key for a ledger entry.
func UsageDateKey(usageDate, engineType string) string {
	return usageDate + "#" + engineType
}
