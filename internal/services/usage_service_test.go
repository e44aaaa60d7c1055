package services

import (
	"strings"
	"sync"
	"testing"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUsageStore is an in-memory UsageStore whose AddUsage is atomic under
// a mutex, mirroring the single-UPDATE semantics of the real store.
type memoryUsageStore struct {
	mu      sync.Mutex
	entries map[string]*models.Usage
}

func newMemoryUsageStore() *memoryUsageStore {
	return &memoryUsageStore{entries: make(map[string]*models.Usage)}
}

func (s *memoryUsageStore) key(userID, usageDate, engineType string) string {
	return userID + "|" + models.UsageDateKey(usageDate, engineType)
}

func (s *memoryUsageStore) GetOrCreate(userID, usageDate, engineType string) (*models.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(userID, usageDate, engineType)
	if entry, ok := s.entries[key]; ok {
		copied := *entry
		return &copied, nil
	}
	entry := &models.Usage{
		UserID:        userID,
		DateKey:       models.UsageDateKey(usageDate, engineType),
		UsageDate:     usageDate,
		EngineType:    engineType,
		EstimatedCost: decimal.Zero,
	}
	s.entries[key] = entry
	copied := *entry
	return &copied, nil
}

func (s *memoryUsageStore) AddUsage(userID, usageDate, engineType string, inputTokens, outputTokens int64, cost decimal.Decimal) (*models.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[s.key(userID, usageDate, engineType)]
	entry.RequestCount++
	entry.InputTokens += inputTokens
	entry.OutputTokens += outputTokens
	entry.TotalTokens += inputTokens + outputTokens
	entry.EstimatedCost = entry.EstimatedCost.Add(cost)
	copied := *entry
	return &copied, nil
}

func (s *memoryUsageStore) Find(userID, usageDate, engineType string) (*models.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[s.key(userID, usageDate, engineType)]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, nil
}

func (s *memoryUsageStore) FindByUser(userID string) ([]models.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var usages []models.Usage
	for _, entry := range s.entries {
		if entry.UserID == userID {
			usages = append(usages, *entry)
		}
	}
	return usages, nil
}

func newTestUsageService(store UsageStore) *UsageService {
	return NewUsageService(store, config.NewConfig(), zerolog.Nop())
}

func TestEstimateTokensEmptyText(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())
	assert.Equal(t, int64(0), svc.EstimateTokens(""))
}

func TestEstimateTokensNonEmptyIsAtLeastOne(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())
	// Two Hangul syllables contribute 0.8, floored to 0, clamped to 1.
	assert.Equal(t, int64(1), svc.EstimateTokens("안녕"))
}

func TestEstimateTokensASCIILetters(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())
	assert.Equal(t, int64(10), svc.EstimateTokens(strings.Repeat("a", 40)))
}

func TestEstimateTokensMixedClasses(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())
	// "hello world": 10 letters at 1/4 plus 1 space at 1/4 is 2.75, floored.
	assert.Equal(t, int64(2), svc.EstimateTokens("hello world"))
}

func TestEstimateTokensDigits(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())
	// 7 digits divided by 3.5 is exactly 2. The class count is divided once,
	// so the exact quotient must survive; summing 1/3.5 seven times would
	// drift below 2 and floor to 1.
	assert.Equal(t, int64(2), svc.EstimateTokens("1234567"))
	assert.Equal(t, int64(4), svc.EstimateTokens(strings.Repeat("9", 14)))
}

func TestRecordTurnRequiresUserAndEngine(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())

	_, err := svc.RecordTurn("", "one", "hi", "ho", "free")
	assert.Error(t, err)

	_, err = svc.RecordTurn("user-1", "", "hi", "ho", "free")
	assert.Error(t, err)
}

func TestRecordTurnAccumulates(t *testing.T) {
	store := newMemoryUsageStore()
	svc := newTestUsageService(store)

	input := strings.Repeat("a", 40)  // 10 tokens
	output := strings.Repeat("b", 80) // 20 tokens

	update, err := svc.RecordTurn("user-1", "one", input, output, "free")
	require.NoError(t, err)

	assert.Equal(t, int64(30), update.TokensUsed)
	assert.Equal(t, int64(30), update.Usage.TotalTokens)
	assert.Equal(t, int64(1), update.Usage.RequestCount)
	assert.Equal(t, 0.3, update.Percentage)
	assert.Equal(t, int64(9970), update.Remaining)
}

func TestRecordTurnConcurrentIncrementsAllLand(t *testing.T) {
	store := newMemoryUsageStore()
	svc := newTestUsageService(store)

	const turns = 50
	input := strings.Repeat("a", 40)  // 10 tokens
	output := strings.Repeat("b", 40) // 10 tokens

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordTurn("user-1", "one", input, output, "free")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	update, err := svc.GetUsage("user-1", "one", "free")
	require.NoError(t, err)
	assert.Equal(t, int64(turns), update.Usage.RequestCount)
	assert.Equal(t, int64(turns*20), update.Usage.TotalTokens)
}

func TestGetUsageAbsentReturnsZeroRecord(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())

	update, err := svc.GetUsage("nobody", "one", "free")
	require.NoError(t, err)

	assert.Equal(t, int64(0), update.Usage.TotalTokens)
	assert.Equal(t, 0.0, update.Percentage)
	assert.Equal(t, int64(10000), update.Remaining)
}

func TestQuotaPercentageIsCapped(t *testing.T) {
	svc := newTestUsageService(newMemoryUsageStore())

	usage := &models.Usage{TotalTokens: 25000}
	update := svc.quotaFor(usage, "free")

	assert.Equal(t, 100.0, update.Percentage)
	assert.Equal(t, int64(0), update.Remaining)
}
