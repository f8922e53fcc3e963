package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a single transaction
// against the device (a fetch or a set).
type LogContext struct {
	TraceID     string    // OpenTelemetry trace ID
	SpanID      string    // OpenTelemetry span ID
	Correlation string    // transaction correlation ID
	Category    string    // effect category being touched
	Address     string    // formatted device address
	DeviceID    uint8     // Roland device ID in use
	StartTime   time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext carrying the given correlation ID, with StartTime set to now
func NewLogContext(correlation string) *LogContext {
	return &LogContext{
		Correlation: correlation,
		StartTime:   time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:     lc.TraceID,
		SpanID:      lc.SpanID,
		Correlation: lc.Correlation,
		Category:    lc.Category,
		Address:     lc.Address,
		DeviceID:    lc.DeviceID,
		StartTime:   lc.StartTime,
	}
}

// WithCategory returns a copy with the effect category set
func (lc *LogContext) WithCategory(category string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Category = category
	}
	return clone
}

// WithAddress returns a copy with the device address set
func (lc *LogContext) WithAddress(addr string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Address = addr
	}
	return clone
}

// WithDevice returns a copy with the device ID set
func (lc *LogContext) WithDevice(deviceID uint8) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.DeviceID = deviceID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
