package health

import (
	"time"
)

// StatusOK is the only status this service reports.
const StatusOK = "ok"

// DefaultServiceName identifies the instance when no name is configured.
const DefaultServiceName = "agent_service"

// TimestampLayout is ISO-8601 in UTC with microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// HealthStatus is the document returned by the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Reporter produces the current health of the process.
type Reporter interface {
	GetHealth() HealthStatus
}

// Identity holds the configuration-time identity of this instance.
type Identity struct {
	ServiceName string
}

// Clock returns the current time.
type Clock func() time.Time

// Option configures a StaticReporter.
type Option func(*StaticReporter)

// WithClock replaces the wall clock used for timestamps.
func WithClock(clock Clock) Option {
	return func(r *StaticReporter) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// StaticReporter always reports StatusOK for a fixed identity.
// It holds no mutable state and is safe for concurrent use.
type StaticReporter struct {
	identity Identity
	clock    Clock
}

// NewReporter creates a reporter for the given identity.
// An empty service name falls back to DefaultServiceName.
func NewReporter(identity Identity, opts ...Option) *StaticReporter {
	if identity.ServiceName == "" {
		identity.ServiceName = DefaultServiceName
	}

	r := &StaticReporter{
		identity: identity,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetHealth reads the clock and builds a fresh HealthStatus.
func (r *StaticReporter) GetHealth() HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Service:   r.identity.ServiceName,
		Timestamp: FormatTimestamp(r.clock()),
	}
}

// Identity returns the identity the reporter was built with.
func (r *StaticReporter) Identity() Identity {
	return r.identity
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp produced by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
