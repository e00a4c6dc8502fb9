package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning and lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// Unlimited is reported as the remaining budget when no cap is configured.
const Unlimited int64 = -1

// BudgetStore persists budget counters between restarts.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetConfig configures a BudgetTracker. Zero limits mean unlimited.
type BudgetConfig struct {
	Provider     string
	KeyPrefix    string // e.g. "catalog:"
	DailyLimit   int64
	MonthlyLimit int64
	Action       BudgetAction
}

// BudgetStatus is a point-in-time view of token consumption.
type BudgetStatus struct {
	DailyUsed        int64
	DailyLimit       int64
	DailyRemaining   int64
	MonthlyUsed      int64
	MonthlyLimit     int64
	MonthlyRemaining int64
}

// BudgetTracker counts embedding tokens per UTC day and month.
// Check is served from memory; Record writes through to the store when one is attached.
type BudgetTracker struct {
	cfg    BudgetConfig
	store  BudgetStore
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	dailyUsed   int64
	monthlyUsed int64
	day         time.Time
	month       time.Time
}

// NewBudgetTracker creates a tracker with empty counters.
func NewBudgetTracker(cfg BudgetConfig, logger *zap.Logger) *BudgetTracker {
	if cfg.Action == "" {
		cfg.Action = BudgetActionWarn
	}
	b := &BudgetTracker{cfg: cfg, logger: logger, now: time.Now}
	b.day, b.month = b.buckets()
	return b
}

// WithStore attaches persistence and loads the counters of the current buckets.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollover()

	if val, err := store.Get(ctx, b.key("daily", b.day)); err == nil {
		b.dailyUsed = val
	} else {
		b.logger.Warn("Failed to load daily budget", zap.Error(err))
	}
	if val, err := store.Get(ctx, b.key("monthly", b.month)); err == nil {
		b.monthlyUsed = val
	} else {
		b.logger.Warn("Failed to load monthly budget", zap.Error(err))
	}

	b.logger.Info("Embedding budget loaded",
		zap.String("provider", b.cfg.Provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
	return b
}

// Check reports whether another request fits into the budget.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()
	if !exceeded(b.dailyUsed, b.cfg.DailyLimit) && !exceeded(b.monthlyUsed, b.cfg.MonthlyLimit) {
		return nil
	}

	if b.cfg.Action == BudgetActionReject {
		return fmt.Errorf("%s budget: %w", b.cfg.Provider, domain.ErrEmbeddingQuotaExceeded)
	}

	b.logger.Warn("Embedding token budget exceeded",
		zap.String("provider", b.cfg.Provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.cfg.DailyLimit),
		zap.Int64("monthly_used", b.monthlyUsed),
		zap.Int64("monthly_limit", b.cfg.MonthlyLimit),
	)
	return nil
}

// Record adds consumed tokens to both buckets.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.rollover()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	store := b.store
	dailyKey, monthlyKey := b.key("daily", b.day), b.key("monthly", b.month)
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request: a cancelled caller still pays for the tokens it used.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist monthly budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// Status returns current usage, limits and remaining tokens (Unlimited when uncapped).
func (b *BudgetTracker) Status() BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()
	return BudgetStatus{
		DailyUsed:        b.dailyUsed,
		DailyLimit:       b.cfg.DailyLimit,
		DailyRemaining:   remaining(b.dailyUsed, b.cfg.DailyLimit),
		MonthlyUsed:      b.monthlyUsed,
		MonthlyLimit:     b.cfg.MonthlyLimit,
		MonthlyRemaining: remaining(b.monthlyUsed, b.cfg.MonthlyLimit),
	}
}

// rollover zeroes a counter once its bucket has passed. Caller holds mu.
func (b *BudgetTracker) rollover() {
	day, month := b.buckets()
	if day.After(b.day) {
		b.dailyUsed = 0
		b.day = day
	}
	if month.After(b.month) {
		b.monthlyUsed = 0
		b.month = month
	}
}

func (b *BudgetTracker) buckets() (day, month time.Time) {
	t := b.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// key renders {prefix}budget:{provider}:{period}:{bucket}.
func (b *BudgetTracker) key(period string, bucket time.Time) string {
	layout := "2006-01-02"
	if period == "monthly" {
		layout = "2006-01"
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s", b.cfg.KeyPrefix, b.cfg.Provider, period, bucket.Format(layout))
}

func exceeded(used, limit int64) bool {
	return limit > 0 && used >= limit
}

func remaining(used, limit int64) int64 {
	if limit <= 0 {
		return Unlimited
	}
	return max(0, limit-used)
}
