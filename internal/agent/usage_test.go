package agent

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUsageGate_Unlimited(t *testing.T) {
	gate := NewUsageGate(0)
	assert.IsType(t, AlwaysAllow{}, gate)
	for i := 0; i < 100; i++ {
		assert.True(t, gate.Allow())
	}
}

func TestDailyQuota(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	q := NewDailyQuota(2, func() time.Time { return now })

	assert.Equal(t, 2, q.Remaining())
	assert.True(t, q.Allow())
	assert.True(t, q.Allow())
	assert.False(t, q.Allow())
	assert.Equal(t, 0, q.Remaining())

	now = now.Add(24 * time.Hour)
	assert.True(t, q.Allow(), "a new day resets the quota")
	assert.Equal(t, 1, q.Remaining())
}

func TestDailyQuota_Concurrent(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	q := NewDailyQuota(10, func() time.Time { return now })

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
