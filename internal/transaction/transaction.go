// Package transaction implements the request/reply correlation layer on top
// of internal/transport and internal/protocol: Fetch and SetAndWait block
// until the Device's reply for that address has arrived (or ErrTimeout),
// while Set returns as soon as the write is on the wire.
//
// Only one write to the wire happens at a time (M_wire); only one reply is
// awaited per address at a time (M_pending). Both are enforced here so
// every other package can treat Fetch/SetAndWait as an ordinary blocking
// call.
package transaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/internal/metrics"
	"github.com/jdesfossez/gt1000ctl/internal/protocol"
	"github.com/jdesfossez/gt1000ctl/internal/telemetry"
)

// Sender is the subset of *transport.Transport the transaction layer
// depends on, so it can be unit tested against a fake.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

// Manager correlates outbound RQ1/DT1 frames with their inbound DT1 replies
// by echoed address, and exposes blocking Fetch/SetAndWait calls alongside
// the fire-and-forget Set.
type Manager struct {
	sender       Sender
	pollInterval time.Duration
	maxRetries   int

	deviceID byte

	wireMu sync.Mutex // M_wire: only one frame in flight on the bus at a time

	pendingMu sync.Mutex
	pending   map[string]chan protocol.ParsedFrame // M_pending, keyed by FormatAddress

	metrics metrics.Recorder // optional; nil disables collection
}

// New builds a Manager that writes through sender and expects replies within
// pollInterval * maxRetries. deviceID is the Roland device ID to address
// frames to; it is updated in place by SetDeviceID once the Handshake learns
// the real one from an Identity Reply.
func New(sender Sender, deviceID byte, pollInterval time.Duration, maxRetries int) *Manager {
	return &Manager{
		sender:       sender,
		pollInterval: pollInterval,
		maxRetries:   maxRetries,
		deviceID:     deviceID,
		pending:      make(map[string]chan protocol.ParsedFrame),
	}
}

// SetDeviceID updates the device ID every subsequent frame is addressed to.
func (m *Manager) SetDeviceID(id byte) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	m.deviceID = id
}

// SetMetrics attaches a Recorder every subsequent Fetch/Set round trip
// reports through. Passing nil disables collection.
func (m *Manager) SetMetrics(r metrics.Recorder) {
	m.metrics = r
}

// OnInbound is the transport.InboundFunc to register with the Transport:
// it hands a parsed data reply to whichever Fetch/Set call is waiting on
// that address, and silently drops everything else (identity replies are
// the Handshake's concern; unmatched data replies mean nobody is waiting,
// which is normal for unsolicited device traffic).
func (m *Manager) OnInbound(frame []byte) {
	parsed := protocol.Parse(frame)
	if parsed.Kind != protocol.KindDataReply {
		return
	}

	key := protocol.FormatAddress(parsed.Address)

	m.pendingMu.Lock()
	ch, ok := m.pending[key]
	m.pendingMu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- parsed:
	default:
		// A reply already arrived for this address; the waiter drained it.
	}
}

// Fetch issues an RQ1 read of length bytes at addr and blocks until the
// echoed DT1 reply arrives, ctx is cancelled, or the retry budget is spent.
// overrideChecksum, when non-nil, is used verbatim in the RQ1 request
// instead of the computed checksum; the Handshake's first probe is the one
// known caller that needs this.
func (m *Manager) Fetch(ctx context.Context, addr [4]byte, length int, overrideChecksum *byte) ([]byte, error) {
	category := categoryFromContext(ctx)
	ctx, span := telemetry.StartTransactionSpan(ctx, telemetry.SpanTransactionFetch, protocol.FormatAddress(addr), category,
		telemetry.Address(protocol.FormatAddress(addr)), telemetry.BodyLen(length))
	defer span.End()

	frame := protocol.BuildRQ1(m.deviceID, addr, protocol.LengthToAddr(length), overrideChecksum)
	reply, err := m.roundTrip(ctx, category, addr, frame)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	return reply.Body, nil
}

// Set issues a DT1 write of value at addr and returns as soon as the
// frame is on the wire: user edits are fire-and-forget, the mirror is
// updated optimistically and the next refresh confirms the write. The
// device's echo, if any, arrives with no waiter registered and is
// dropped by OnInbound like any other unsolicited traffic.
// overrideChecksum, when non-nil, is used verbatim instead of the
// computed checksum.
func (m *Manager) Set(ctx context.Context, addr [4]byte, value byte, overrideChecksum *byte) error {
	category := categoryFromContext(ctx)
	ctx, span := telemetry.StartTransactionSpan(ctx, telemetry.SpanTransactionSet, protocol.FormatAddress(addr), category,
		telemetry.Address(protocol.FormatAddress(addr)), telemetry.Value(int(value)))
	defer span.End()

	frame := protocol.BuildDT1(m.deviceID, addr, []byte{value}, overrideChecksum)
	start := time.Now()

	m.wireMu.Lock()
	err := m.sender.Send(ctx, frame)
	m.wireMu.Unlock()
	if err != nil {
		wrapped := fmt.Errorf("transaction: send to %s: %w", protocol.FormatAddress(addr), err)
		telemetry.RecordError(ctx, wrapped)
		m.observe(category, start, 0, wrapped)
		return wrapped
	}
	m.observe(category, start, 0, nil)
	return nil
}

// SetAndWait issues a DT1 write of value at addr and blocks until the
// device echoes a data reply at that address, confirming the write
// landed. The echoed body is returned so a caller that needs to verify
// its contents (the Handshake's second probe) can do so.
func (m *Manager) SetAndWait(ctx context.Context, addr [4]byte, value byte, overrideChecksum *byte) ([]byte, error) {
	category := categoryFromContext(ctx)
	ctx, span := telemetry.StartTransactionSpan(ctx, telemetry.SpanTransactionSet, protocol.FormatAddress(addr), category,
		telemetry.Address(protocol.FormatAddress(addr)), telemetry.Value(int(value)))
	defer span.End()

	frame := protocol.BuildDT1(m.deviceID, addr, []byte{value}, overrideChecksum)
	reply, err := m.roundTrip(ctx, category, addr, frame)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	return reply.Body, nil
}

// roundTrip sends frame and blocks for the echoed reply at addr, tagging
// the attempt with a correlation ID (surfaced in logs so a single
// Fetch/Set's poll attempts can be grepped out of an otherwise interleaved
// log stream) and reporting the outcome through m.metrics when attached.
func (m *Manager) roundTrip(ctx context.Context, category string, addr [4]byte, frame []byte) (protocol.ParsedFrame, error) {
	key := protocol.FormatAddress(addr)
	corrID := uuid.NewString()
	start := time.Now()

	ch := make(chan protocol.ParsedFrame, 1)
	m.pendingMu.Lock()
	m.pending[key] = ch
	m.pendingMu.Unlock()
	defer func() {
		m.pendingMu.Lock()
		delete(m.pending, key)
		m.pendingMu.Unlock()
	}()

	m.wireMu.Lock()
	err := m.sender.Send(ctx, frame)
	m.wireMu.Unlock()
	if err != nil {
		wrapped := fmt.Errorf("transaction: send to %s: %w", key, err)
		m.observe(category, start, 0, wrapped)
		return protocol.ParsedFrame{}, wrapped
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			m.observe(category, start, attempt, ctx.Err())
			return protocol.ParsedFrame{}, ctx.Err()
		case reply := <-ch:
			m.observe(category, start, attempt, nil)
			return reply, nil
		case <-ticker.C:
			logger.DebugCtx(ctx, "transaction poll", logger.Address(addr), logger.Attempt(attempt), logger.Correlation(corrID))
		}
	}

	logger.WarnCtx(ctx, "transaction timed out", logger.Address(addr), logger.Attempt(m.maxRetries), logger.Correlation(corrID))
	err = fmt.Errorf("%w: address %s after %d attempts", ErrTimeout, key, m.maxRetries)
	m.observe(category, start, m.maxRetries, err)
	return protocol.ParsedFrame{}, err
}

// observe reports one completed round trip through m.metrics, a no-op
// when no Recorder is attached.
func (m *Manager) observe(category string, start time.Time, attempts int, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveRoundTrip(category, time.Since(start), attempts, err)
}

// categoryKey is an unexported context key type so the Effect Model can
// attach a category name to Fetch/Set spans without Manager needing to
// know about effect categories.
type categoryKey struct{}

// WithCategory returns a context carrying category for span tagging; the
// Effect Model calls this before every Fetch/Set it issues.
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKey{}, category)
}

func categoryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(categoryKey{}).(string); ok {
		return v
	}
	return "unknown"
}
