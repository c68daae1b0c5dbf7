package health

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a fixed start time advanced by step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func TestNewReporter_DefaultServiceName(t *testing.T) {
	r := NewReporter(Identity{})
	assert.Equal(t, DefaultServiceName, r.Identity().ServiceName)
	assert.Equal(t, "agent_service", r.GetHealth().Service)
}

func TestGetHealth_Fields(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewReporter(Identity{ServiceName: "agent_service"}, WithClock(func() time.Time { return fixed }))

	got := r.GetHealth()

	assert.Equal(t, HealthStatus{
		Status:    "ok",
		Service:   "agent_service",
		Timestamp: "2024-01-01T00:00:00.000000Z",
	}, got)
}

func TestGetHealth_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 6, 15, 14, 30, 45, 123456789, loc)
	r := NewReporter(Identity{ServiceName: "svc"}, WithClock(func() time.Time { return local }))

	assert.Equal(t, "2024-06-15T12:30:45.123456Z", r.GetHealth().Timestamp)
}

func TestGetHealth_ReadsClockEveryCall(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Millisecond}
	r := NewReporter(Identity{ServiceName: "svc"}, WithClock(clock.Now))

	first := r.GetHealth()
	second := r.GetHealth()

	assert.NotEqual(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Service, second.Service)
}

func TestGetHealth_TimestampNonDecreasing(t *testing.T) {
	r := NewReporter(Identity{})

	var prev time.Time
	for i := 0; i < 50; i++ {
		ts, err := ParseTimestamp(r.GetHealth().Timestamp)
		require.NoError(t, err)
		assert.False(t, ts.Before(prev), "timestamp went backwards: %s before %s", ts, prev)
		prev = ts
	}
}

func TestWithClock_NilKeepsWallClock(t *testing.T) {
	r := NewReporter(Identity{}, WithClock(nil))

	before := time.Now().UTC().Truncate(time.Microsecond)
	ts, err := ParseTimestamp(r.GetHealth().Timestamp)
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(after))
}

func TestHealthStatus_JSONKeys(t *testing.T) {
	buf, err := json.Marshal(NewReporter(Identity{}).GetHealth())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf, &doc))

	assert.Len(t, doc, 3)
	assert.Contains(t, doc, "status")
	assert.Contains(t, doc, "service")
	assert.Contains(t, doc, "timestamp")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "microseconds with Z", input: "2024-01-01T00:00:00.000000Z"},
		{name: "missing zone marker", input: "2024-01-01T00:00:00.000000", wantErr: true},
		{name: "not a timestamp", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, ts.Location())
		})
	}
}

func TestGetHealth_Concurrent(t *testing.T) {
	r := NewReporter(Identity{ServiceName: "agent_service"})

	var wg sync.WaitGroup
	results := make(chan HealthStatus, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.GetHealth()
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for status := range results {
		count++
		assert.Equal(t, StatusOK, status.Status)
		assert.Equal(t, "agent_service", status.Service)
		_, err := ParseTimestamp(status.Timestamp)
		assert.NoError(t, err)
	}
	assert.Equal(t, 100, count)
}
