package services

import (
	"errors"
	"time"

	"pressroom_ai_go_backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUsageStore implements UsageStore over gorm
type DefaultUsageStore struct {
	db *gorm.DB
}

// NewUsageStore creates a new DefaultUsageStore
func NewUsageStore(db *gorm.DB) UsageStore {
	return &DefaultUsageStore{db: db}
}

// GetOrCreate returns the day's ledger entry for (user, engine), inserting a
// zero-valued record when absent
func (s *DefaultUsageStore) GetOrCreate(userID, usageDate, engineType string) (*models.Usage, error) {
	usage := models.Usage{
		UserID:        userID,
		DateKey:       models.UsageDateKey(usageDate, engineType),
		UsageDate:     usageDate,
		EngineType:    engineType,
		EstimatedCost: decimal.Zero,
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&usage)
	if result.Error != nil {
		return nil, result.Error
	}
	return s.find(userID, models.UsageDateKey(usageDate, engineType))
}

// AddUsage increments the ledger counters in a single UPDATE with column
// arithmetic. Counters never go through a read-then-write cycle, so two
// concurrent turns both land their increments.
func (s *DefaultUsageStore) AddUsage(userID, usageDate, engineType string, inputTokens, outputTokens int64, cost decimal.Decimal) (*models.Usage, error) {
	dateKey := models.UsageDateKey(usageDate, engineType)
	result := s.db.Model(&models.Usage{}).
		Where("user_id = ? AND date_key = ?", userID, dateKey).
		Updates(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"input_tokens":   gorm.Expr("input_tokens + ?", inputTokens),
			"output_tokens":  gorm.Expr("output_tokens + ?", outputTokens),
			"total_tokens":   gorm.Expr("total_tokens + ?", inputTokens+outputTokens),
			"estimated_cost": gorm.Expr("estimated_cost + ?", cost),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.find(userID, dateKey)
}

// Find retrieves one ledger entry; (nil, nil) when absent
func (s *DefaultUsageStore) Find(userID, usageDate, engineType string) (*models.Usage, error) {
	usage, err := s.find(userID, models.UsageDateKey(usageDate, engineType))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return usage, nil
}

// FindByUser retrieves every ledger entry for a user, newest date first
func (s *DefaultUsageStore) FindByUser(userID string) ([]models.Usage, error) {
	var usages []models.Usage
	result := s.db.Where("user_id = ?", userID).
		Order("usage_date desc").
		Find(&usages)
	if result.Error != nil {
		return nil, result.Error
	}
	return usages, nil
}

func (s *DefaultUsageStore) find(userID, dateKey string) (*models.Usage, error) {
	var usage models.Usage
	result := s.db.Where("user_id = ? AND date_key = ?", userID, dateKey).First(&usage)
	if result.Error != nil {
		return nil, result.Error
	}
	return &usage, nil
}
