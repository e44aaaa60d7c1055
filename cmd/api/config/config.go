package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenRatios holds the chars-per-token divisor for each character class of
// the estimator.
type TokenRatios struct {
	Hangul     float64
	ASCIIAlpha float64
	Digit      float64
	Space      float64
	Other      float64
}

// EngineCost is the per-1K-token pricing of one engine.
type EngineCost struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

type Config struct {
	// Conversation limits
	MaxConversationMessages  int
	DefaultHistoryLimit      int
	MaxMergedMessages        int
	MaxContextMessages       int
	MaxTitleLength           int
	DefaultConversationTitle string
	DefaultEngineType        string

	// Roles and plans
	AdminEmails        []string
	PlanMonthlyTokens  map[string]int64

	// Token estimation and pricing
	TokenRatios       TokenRatios
	EngineCosts       map[string]EngineCost
	DefaultEngineCost EngineCost

	// Directive template values
	KnowledgeCutoffDate string
	DefaultUserLocation string
	DefaultTimezone     string
	TimezoneOffsetHours int
}

func NewConfig() *Config {
	cfg := &Config{
		MaxConversationMessages:  envInt("MAX_CONVERSATION_MESSAGES", 50),
		DefaultHistoryLimit:      envInt("DEFAULT_HISTORY_LIMIT", 20),
		MaxMergedMessages:        envInt("MAX_MERGED_MESSAGES", 30),
		MaxContextMessages:       envInt("MAX_CONTEXT_MESSAGES", 10),
		MaxTitleLength:           envInt("MAX_TITLE_LENGTH", 50),
		DefaultConversationTitle: envString("DEFAULT_CONVERSATION_TITLE", "새 대화"),
		DefaultEngineType:        envString("DEFAULT_ENGINE_TYPE", "one"),
		AdminEmails:              envList("ADMIN_EMAILS", nil),
		PlanMonthlyTokens: map[string]int64{
			"free":    envInt64("FREE_TIER_TOKENS", 10000),
			"basic":   envInt64("BASIC_TIER_TOKENS", 100000),
			"premium": envInt64("PREMIUM_TIER_TOKENS", 500000),
		},
		TokenRatios: TokenRatios{
			Hangul:     envFloat("HANGUL_CHARS_PER_TOKEN", 2.5),
			ASCIIAlpha: envFloat("ASCII_CHARS_PER_TOKEN", 4),
			Digit:      envFloat("DIGIT_CHARS_PER_TOKEN", 3.5),
			Space:      envFloat("SPACE_CHARS_PER_TOKEN", 4),
			Other:      envFloat("OTHER_CHARS_PER_TOKEN", 3),
		},
		DefaultEngineCost: EngineCost{
			InputPer1K:  envDecimal("DEFAULT_INPUT_COST_PER_1K", "0.003"),
			OutputPer1K: envDecimal("DEFAULT_OUTPUT_COST_PER_1K", "0.015"),
		},
		KnowledgeCutoffDate: envString("KNOWLEDGE_CUTOFF_DATE", "2025년 1월 31일"),
		DefaultUserLocation: envString("DEFAULT_USER_LOCATION", "대한민국"),
		DefaultTimezone:     envString("DEFAULT_TIMEZONE", "Asia/Seoul (KST)"),
		TimezoneOffsetHours: envInt("DEFAULT_TIMEZONE_OFFSET", 9),
	}
	cfg.EngineCosts = loadEngineCosts(cfg.DefaultEngineCost)
	return cfg
}

// EngineCostFor returns the pricing for an engine selector, falling back to
// the default pair for engines missing from the cost table.
func (c *Config) EngineCostFor(engineType string) EngineCost {
	if cost, ok := c.EngineCosts[engineType]; ok {
		return cost
	}
	return c.DefaultEngineCost
}

// MonthlyTokenLimit returns the plan's token ceiling; unknown plans fall
// back to the free tier.
func (c *Config) MonthlyTokenLimit(plan string) int64 {
	if limit, ok := c.PlanMonthlyTokens[strings.ToLower(plan)]; ok {
		return limit
	}
	return c.PlanMonthlyTokens["free"]
}

// IsAdminUser reports whether the user ID matches the configured admin list.
func (c *Config) IsAdminUser(userID string) bool {
	candidate := strings.ToLower(strings.TrimSpace(userID))
	if candidate == "" {
		return false
	}
	for _, email := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(email)) == candidate {
			return true
		}
	}
	return false
}

// loadEngineCosts reads AVAILABLE_ENGINES plus per-engine cost overrides,
// e.g. ENGINE_ONE_INPUT_COST / ENGINE_ONE_OUTPUT_COST for engine "one".
func loadEngineCosts(fallback EngineCost) map[string]EngineCost {
	engines := envList("AVAILABLE_ENGINES", []string{"one", "two"})
	costs := make(map[string]EngineCost, len(engines))
	for _, engine := range engines {
		key := strings.ToUpper(engine)
		costs[engine] = EngineCost{
			InputPer1K:  envDecimal("ENGINE_"+key+"_INPUT_COST", fallback.InputPer1K.String()),
			OutputPer1K: envDecimal("ENGINE_"+key+"_OUTPUT_COST", fallback.OutputPer1K.String()),
		}
	}
	return costs
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
