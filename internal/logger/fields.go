package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// MIDI Transport
	// ========================================================================
	KeyPortName  = "port_name" // MIDI port name (in or out)
	KeyDeviceID  = "device_id" // Roland device ID (0x00-0x1F, or 0x7F broadcast)
	KeyModel     = "model"     // Resolved device model string
	KeyDirection = "direction" // "in" or "out"

	// ========================================================================
	// SysEx Frame / Transaction
	// ========================================================================
	KeyCommand     = "command"     // DT1 or RQ1
	KeyAddress     = "address"     // 4-byte address, formatted as hex
	KeyChecksum    = "checksum"    // computed checksum byte
	KeyOverride    = "override"    // override checksum byte, if any
	KeyBodyLen     = "body_len"    // length of the SysEx body
	KeyCorrelation = "correlation" // correlation/transaction ID
	KeyAttempt     = "attempt"     // retry attempt number
	KeyMaxRetries  = "max_retries" // maximum retry attempts
	KeyTimeoutMs   = "timeout_ms"  // transaction timeout in milliseconds

	// ========================================================================
	// Handshake
	// ========================================================================
	KeyHandshakeState = "handshake_state" // current handshake state machine state
	KeyProbe          = "probe"           // which probe (1, 2 or 3)

	// ========================================================================
	// Effect Model
	// ========================================================================
	KeyCategory = "category" // effect category: comp, dist, preamp, ns, eq, delay, ...
	KeyIndex    = "index"    // fx slot index (1..N) for indexed categories
	KeyField    = "field"    // field name within a category (switch, type, slider name)
	KeyValue    = "value"    // resolved/raw integer value
	KeySymbol   = "symbol"   // symbolic value name, when applicable
	KeyFxType   = "fx_type"  // selected fx type for an fx/pedalFx slot

	// ========================================================================
	// State Mirror & Scheduler
	// ========================================================================
	KeyLastActionTS = "last_action_ts" // monotonic timestamp of last optimistic write
	KeyLastSyncTS   = "last_sync_ts"   // monotonic timestamp of last successful refresh
	KeyCycle        = "cycle"          // refresh cycle counter

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeyOperation  = "operation"   // Sub-operation type for complex operations

	// ========================================================================
	// HTTP Facade API
	// ========================================================================
	KeyRequestID = "request_id" // chi request ID
	KeyMethod    = "method"     // HTTP method
	KeyPath      = "path"       // HTTP request path
	KeyStatus    = "status"     // HTTP response status code
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// PortName returns a slog.Attr for a MIDI port name
func PortName(name string) slog.Attr {
	return slog.String(KeyPortName, name)
}

// DeviceID returns a slog.Attr for a Roland device ID
func DeviceID(id uint8) slog.Attr {
	return slog.String(KeyDeviceID, fmt.Sprintf("0x%02X", id))
}

// Model returns a slog.Attr for a resolved device model
func Model(model string) slog.Attr {
	return slog.String(KeyModel, model)
}

// Direction returns a slog.Attr for transport direction
func Direction(dir string) slog.Attr {
	return slog.String(KeyDirection, dir)
}

// Command returns a slog.Attr for the SysEx command (DT1/RQ1)
func Command(cmd string) slog.Attr {
	return slog.String(KeyCommand, cmd)
}

// Address returns a slog.Attr for a 4-byte device address
func Address(addr [4]byte) slog.Attr {
	return slog.String(KeyAddress, fmt.Sprintf("%02X%02X%02X%02X", addr[0], addr[1], addr[2], addr[3]))
}

// Checksum returns a slog.Attr for a computed checksum byte
func Checksum(cksum byte) slog.Attr {
	return slog.String(KeyChecksum, fmt.Sprintf("0x%02X", cksum))
}

// Override returns a slog.Attr for an override checksum byte
func Override(override byte) slog.Attr {
	return slog.String(KeyOverride, fmt.Sprintf("0x%02X", override))
}

// BodyLen returns a slog.Attr for SysEx body length
func BodyLen(n int) slog.Attr {
	return slog.Int(KeyBodyLen, n)
}

// Correlation returns a slog.Attr for a transaction correlation ID
func Correlation(id string) slog.Attr {
	return slog.String(KeyCorrelation, id)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// TimeoutMs returns a slog.Attr for a transaction timeout
func TimeoutMs(ms int64) slog.Attr {
	return slog.Int64(KeyTimeoutMs, ms)
}

// HandshakeState returns a slog.Attr for the handshake state machine state
func HandshakeState(state string) slog.Attr {
	return slog.String(KeyHandshakeState, state)
}

// Probe returns a slog.Attr for the probe number
func Probe(n int) slog.Attr {
	return slog.Int(KeyProbe, n)
}

// Category returns a slog.Attr for an effect category
func Category(cat string) slog.Attr {
	return slog.String(KeyCategory, cat)
}

// Index returns a slog.Attr for an fx slot index
func Index(idx int) slog.Attr {
	return slog.Int(KeyIndex, idx)
}

// Field returns a slog.Attr for a field name
func Field(name string) slog.Attr {
	return slog.String(KeyField, name)
}

// Value returns a slog.Attr for a resolved integer value
func Value(v int) slog.Attr {
	return slog.Int(KeyValue, v)
}

// Symbol returns a slog.Attr for a symbolic value name
func Symbol(sym string) slog.Attr {
	return slog.String(KeySymbol, sym)
}

// FxType returns a slog.Attr for a selected fx type
func FxType(t string) slog.Attr {
	return slog.String(KeyFxType, t)
}

// LastActionTS returns a slog.Attr for the last optimistic-write timestamp
func LastActionTS(ts int64) slog.Attr {
	return slog.Int64(KeyLastActionTS, ts)
}

// LastSyncTS returns a slog.Attr for the last successful refresh timestamp
func LastSyncTS(ts int64) slog.Attr {
	return slog.Int64(KeyLastSyncTS, ts)
}

// Cycle returns a slog.Attr for the refresh cycle counter
func Cycle(n int) slog.Attr {
	return slog.Int(KeyCycle, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Operation returns a slog.Attr for a sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// RequestID returns a slog.Attr for a chi request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Method returns a slog.Attr for an HTTP method
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Path returns a slog.Attr for an HTTP request path
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Status returns a slog.Attr for an HTTP response status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}
