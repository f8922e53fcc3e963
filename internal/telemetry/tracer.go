package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for protocol engine operations, following
// OpenTelemetry semantic-convention style namespacing.
const (
	// ========================================================================
	// Transport attributes
	// ========================================================================
	AttrPortName  = "midi.port_name"
	AttrDirection = "midi.direction"
	AttrDeviceID  = "device.id"
	AttrModel     = "device.model"

	// ========================================================================
	// Frame / transaction attributes
	// ========================================================================
	AttrCommand     = "frame.command" // DT1 or RQ1
	AttrAddress     = "frame.address"
	AttrBodyLen     = "frame.body_len"
	AttrChecksum    = "frame.checksum"
	AttrCorrelation = "transaction.correlation_id"
	AttrAttempt     = "transaction.attempt"
	AttrMaxRetries  = "transaction.max_retries"

	// ========================================================================
	// Handshake attributes
	// ========================================================================
	AttrHandshakeState = "handshake.state"
	AttrProbe          = "handshake.probe"

	// ========================================================================
	// Effect model attributes
	// ========================================================================
	AttrCategory = "effect.category"
	AttrIndex    = "effect.index"
	AttrField    = "effect.field"
	AttrValue    = "effect.value"
	AttrFxType   = "effect.fx_type"

	// ========================================================================
	// Mirror / scheduler attributes
	// ========================================================================
	AttrCycle        = "mirror.cycle"
	AttrLastActionTS = "mirror.last_action_ts"
	AttrLastSyncTS   = "mirror.last_sync_ts"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	SpanTransportOpen    = "transport.open"
	SpanTransportSend    = "transport.send"
	SpanTransportReceive = "transport.receive"

	SpanFrameBuildDT1 = "frame.build_dt1"
	SpanFrameBuildRQ1 = "frame.build_rq1"
	SpanFrameParse    = "frame.parse"

	SpanTransactionFetch = "transaction.fetch"
	SpanTransactionSet   = "transaction.set"

	SpanHandshakeIdentity = "handshake.identity"
	SpanHandshakeProbe1   = "handshake.probe1"
	SpanHandshakeProbe2   = "handshake.probe2"
	SpanHandshakeProbe3   = "handshake.probe3"

	SpanMirrorRefresh   = "mirror.refresh"
	SpanMirrorReconcile = "mirror.reconcile"

	SpanFacadeGetState = "facade.get_state"
	SpanFacadeToggle   = "facade.toggle"
	SpanFacadeSetValue = "facade.set_value"
	SpanFacadeSetType  = "facade.set_type"
	SpanFacadeListType = "facade.list_types"
)

// PortName returns an attribute for a MIDI port name
func PortName(name string) attribute.KeyValue {
	return attribute.String(AttrPortName, name)
}

// Direction returns an attribute for transport direction ("in"/"out")
func Direction(dir string) attribute.KeyValue {
	return attribute.String(AttrDirection, dir)
}

// DeviceID returns an attribute for the Roland device ID
func DeviceID(id uint8) attribute.KeyValue {
	return attribute.Int64(AttrDeviceID, int64(id))
}

// Model returns an attribute for the resolved device model
func Model(model string) attribute.KeyValue {
	return attribute.String(AttrModel, model)
}

// Command returns an attribute for the SysEx command (DT1/RQ1)
func Command(cmd string) attribute.KeyValue {
	return attribute.String(AttrCommand, cmd)
}

// Address returns an attribute for a formatted 4-byte device address
func Address(addr string) attribute.KeyValue {
	return attribute.String(AttrAddress, addr)
}

// BodyLen returns an attribute for SysEx body length
func BodyLen(n int) attribute.KeyValue {
	return attribute.Int(AttrBodyLen, n)
}

// Checksum returns an attribute for a computed checksum byte
func Checksum(cksum byte) attribute.KeyValue {
	return attribute.Int64(AttrChecksum, int64(cksum))
}

// Correlation returns an attribute for the transaction correlation ID
func Correlation(id string) attribute.KeyValue {
	return attribute.String(AttrCorrelation, id)
}

// Attempt returns an attribute for the retry attempt number
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// MaxRetries returns an attribute for the maximum retry attempts
func MaxRetries(n int) attribute.KeyValue {
	return attribute.Int(AttrMaxRetries, n)
}

// HandshakeState returns an attribute for the handshake state machine state
func HandshakeState(state string) attribute.KeyValue {
	return attribute.String(AttrHandshakeState, state)
}

// Probe returns an attribute for the probe number
func Probe(n int) attribute.KeyValue {
	return attribute.Int(AttrProbe, n)
}

// Category returns an attribute for an effect category
func Category(cat string) attribute.KeyValue {
	return attribute.String(AttrCategory, cat)
}

// Index returns an attribute for an fx slot index
func Index(idx int) attribute.KeyValue {
	return attribute.Int(AttrIndex, idx)
}

// Field returns an attribute for a field name
func Field(name string) attribute.KeyValue {
	return attribute.String(AttrField, name)
}

// Value returns an attribute for a resolved integer value
func Value(v int) attribute.KeyValue {
	return attribute.Int(AttrValue, v)
}

// FxType returns an attribute for a selected fx type
func FxType(t string) attribute.KeyValue {
	return attribute.String(AttrFxType, t)
}

// Cycle returns an attribute for the refresh cycle counter
func Cycle(n int) attribute.KeyValue {
	return attribute.Int(AttrCycle, n)
}

// LastActionTS returns an attribute for the last optimistic-write timestamp
func LastActionTS(ts int64) attribute.KeyValue {
	return attribute.Int64(AttrLastActionTS, ts)
}

// LastSyncTS returns an attribute for the last successful refresh timestamp
func LastSyncTS(ts int64) attribute.KeyValue {
	return attribute.Int64(AttrLastSyncTS, ts)
}

// StartTransactionSpan starts a span for a fetch/set transaction against a
// device address, tagging it with the correlation ID and category up front.
func StartTransactionSpan(ctx context.Context, name, correlationID, category string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Correlation(correlationID),
		Category(category),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartTransportSpan starts a span for a transport-level send/receive.
func StartTransportSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartHandshakeSpan starts a span for a handshake state transition.
func StartHandshakeSpan(ctx context.Context, name, state string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		HandshakeState(state),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartMirrorSpan starts a span for a background mirror refresh cycle.
func StartMirrorSpan(ctx context.Context, name string, cycle int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Cycle(cycle),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartFacadeSpan starts a span for a facade-level operation (get_state,
// toggle, set_value, set_type, list_types).
func StartFacadeSpan(ctx context.Context, name, category string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Category(category),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}
