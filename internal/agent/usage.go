package agent

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// UsageGate is consulted once per meaningful save before synthesis.
type UsageGate interface {
	Allow() bool
}

type AlwaysAllow struct{}

func (AlwaysAllow) Allow() bool { return true }

// DailyQuota allows up to limit saves per calendar day (local time).
type DailyQuota struct {
	limit  int
	counts *cache.Cache
	now    func() time.Time
	mu     sync.Mutex
}

// NewUsageGate returns AlwaysAllow for limit <= 0.
func NewUsageGate(limit int) UsageGate {
	if limit <= 0 {
		return AlwaysAllow{}
	}
	return NewDailyQuota(limit, time.Now)
}

func NewDailyQuota(limit int, now func() time.Time) *DailyQuota {
	return &DailyQuota{
		limit:  limit,
		counts: cache.New(48*time.Hour, time.Hour),
		now:    now,
	}
}

func (q *DailyQuota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := q.day()
	used, found := q.counts.Get(key)
	if found && used.(int) >= q.limit {
		return false
	}
	if !found {
		q.counts.SetDefault(key, 1)
		return true
	}
	if _, err := q.counts.IncrementInt(key, 1); err != nil {
		return false
	}
	return true
}

// Remaining is how many saves today's quota still allows.
func (q *DailyQuota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	used, found := q.counts.Get(q.day())
	if !found {
		return q.limit
	}
	return max(q.limit-used.(int), 0)
}

func (q *DailyQuota) day() string {
	return q.now().Format("2006-01-02")
}
