package services

import (
	"math"
	"sort"
	"time"
	"unicode"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UsageUpdate is the accounting outcome of one turn: the post-increment
// ledger entry plus quota figures derived from the user's plan.
type UsageUpdate struct {
	Usage      *models.Usage `json:"usage"`
	TokensUsed int64         `json:"tokensUsed"`
	Percentage float64       `json:"percentage"`
	Remaining  int64         `json:"remaining"`
}

// UsageService meters token consumption per (user, day, engine).
type UsageService struct {
	store UsageStore
	cfg   *config.Config
	log   zerolog.Logger
}

// NewUsageService creates a new UsageService
func NewUsageService(store UsageStore, cfg *config.Config, log zerolog.Logger) *UsageService {
	return &UsageService{store: store, cfg: cfg, log: log}
}

// EstimateTokens approximates the token count of a text without calling a
// tokenizer. Characters are counted per class, each class count is divided
// by its ratio, the quotients are summed and floored, and non-empty text
// always counts at least one token. The division happens once per class,
// not per character, so exact quotients are not lost to rounding drift.
func (s *UsageService) EstimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	var hangul, asciiAlpha, digit, space, other float64
	for _, r := range text {
		switch {
		case r >= '가' && r <= '힣':
			hangul++
		case r < 128 && unicode.IsLetter(r):
			asciiAlpha++
		case unicode.IsDigit(r):
			digit++
		case unicode.IsSpace(r):
			space++
		default:
			other++
		}
	}
	ratios := s.cfg.TokenRatios
	estimate := hangul/ratios.Hangul +
		asciiAlpha/ratios.ASCIIAlpha +
		digit/ratios.Digit +
		space/ratios.Space +
		other/ratios.Other
	tokens := int64(math.Floor(estimate))
	if tokens < 1 {
		return 1
	}
	return tokens
}

// RecordTurn adds one turn's estimated input and output tokens to today's
// ledger entry for (user, engine) and returns the updated quota picture.
func (s *UsageService) RecordTurn(userID, engineType, inputText, outputText, userPlan string) (*UsageUpdate, error) {
	if userID == "" {
		return nil, errors.New400Error("userId is required")
	}
	if engineType == "" {
		return nil, errors.New400Error("engineType is required")
	}

	inputTokens := s.EstimateTokens(inputText)
	outputTokens := s.EstimateTokens(outputText)
	cost := s.estimateCost(engineType, inputTokens, outputTokens)

	usageDate := time.Now().UTC().Format("2006-01-02")
	if _, err := s.store.GetOrCreate(userID, usageDate, engineType); err != nil {
		return nil, errors.New500Error(err)
	}
	usage, err := s.store.AddUsage(userID, usageDate, engineType, inputTokens, outputTokens, cost)
	if err != nil {
		return nil, errors.New500Error(err)
	}

	update := s.quotaFor(usage, userPlan)
	update.TokensUsed = inputTokens + outputTokens
	s.log.Debug().
		Str("userId", userID).
		Str("engineType", engineType).
		Int64("tokensUsed", update.TokensUsed).
		Float64("percentage", update.Percentage).
		Msg("usage recorded")
	return update, nil
}

// GetUsage returns today's ledger entry for (user, engine); absent entries
// come back as an all-zero record rather than an error.
func (s *UsageService) GetUsage(userID, engineType, userPlan string) (*UsageUpdate, error) {
	if userID == "" {
		return nil, errors.New400Error("userId is required")
	}
	usageDate := time.Now().UTC().Format("2006-01-02")
	usage, err := s.store.Find(userID, usageDate, engineType)
	if err != nil {
		return nil, errors.New500Error(err)
	}
	if usage == nil {
		usage = &models.Usage{
			UserID:        userID,
			DateKey:       models.UsageDateKey(usageDate, engineType),
			UsageDate:     usageDate,
			EngineType:    engineType,
			EstimatedCost: decimal.Zero,
		}
	}
	return s.quotaFor(usage, userPlan), nil
}

// GetAllUsage returns the user's full ledger grouped by engine, newest
// date first within each group.
func (s *UsageService) GetAllUsage(userID string) (map[string][]models.Usage, error) {
	if userID == "" {
		return nil, errors.New400Error("userId is required")
	}
	usages, err := s.store.FindByUser(userID)
	if err != nil {
		return nil, errors.New500Error(err)
	}
	grouped := make(map[string][]models.Usage)
	for _, usage := range usages {
		grouped[usage.EngineType] = append(grouped[usage.EngineType], usage)
	}
	for engine := range grouped {
		entries := grouped[engine]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].UsageDate > entries[j].UsageDate
		})
		grouped[engine] = entries
	}
	return grouped, nil
}

func (s *UsageService) estimateCost(engineType string, inputTokens, outputTokens int64) decimal.Decimal {
	cost := s.cfg.EngineCostFor(engineType)
	thousand := decimal.NewFromInt(1000)
	input := decimal.NewFromInt(inputTokens).Div(thousand).Mul(cost.InputPer1K)
	output := decimal.NewFromInt(outputTokens).Div(thousand).Mul(cost.OutputPer1K)
	return input.Add(output).Round(4)
}

func (s *UsageService) quotaFor(usage *models.Usage, userPlan string) *UsageUpdate {
	limit := s.cfg.MonthlyTokenLimit(userPlan)
	percentage := 0.0
	if limit > 0 {
		percentage = float64(usage.TotalTokens) / float64(limit) * 100
	}
	percentage = math.Round(percentage*10) / 10
	if percentage > 100 {
		percentage = 100
	}
	remaining := limit - usage.TotalTokens
	if remaining < 0 {
		remaining = 0
	}
	return &UsageUpdate{
		Usage:      usage,
		Percentage: percentage,
		Remaining:  remaining,
	}
}
