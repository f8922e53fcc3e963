// Package facade implements the narrow surface the UI consumes: the only
// API a UI (or, in this repo, the CLI and HTTP handlers) needs in order
// to drive the Device. It owns the full stack underneath it (Transport,
// Transaction Manager, Handshake, Effect Model, and the State Mirror &
// Scheduler) and is the one place that knows how to assemble them into a
// running session.
package facade

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/effect"
	"github.com/jdesfossez/gt1000ctl/internal/handshake"
	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/internal/metrics"
	"github.com/jdesfossez/gt1000ctl/internal/mirror"
	"github.com/jdesfossez/gt1000ctl/internal/protocol"
	"github.com/jdesfossez/gt1000ctl/internal/schema"
	"github.com/jdesfossez/gt1000ctl/internal/telemetry"
	"github.com/jdesfossez/gt1000ctl/internal/transaction"
	"github.com/jdesfossez/gt1000ctl/internal/transport"
)

// Facade is the process's single entry point to the Device: open it once,
// then drive it entirely through GetState/Toggle/SetValue/SetType/
// ListTypes until Close.
type Facade struct {
	transport *transport.Transport
	tx        *transaction.Manager
	model     *effect.Model
	mirror    *mirror.Mirror
	scheduler *mirror.Scheduler

	identity handshake.Identity

	// lastActionTS is the single, process-wide "most recent optimistic
	// write" timestamp: stamped before every write this Facade issues, and
	// consulted by the Scheduler before it lets a refresh pass overwrite
	// the mirror.
	lastActionTS atomic.Int64

	// registry is non-nil when cfg.Metrics.Enabled was set at Open time;
	// the daemon command pulls it out via Registry() to serve /metrics
	// without constructing a second, disconnected recorder of its own.
	registry *prometheus.Registry
}

// transportSender lets the Transaction Manager be constructed before the
// Transport exists, since Transport.Open itself needs a callback that
// feeds the Transaction Manager's correlation map. t is set once Open
// succeeds; Fetch/Set are never called before that point.
type transportSender struct {
	t *transport.Transport
}

func (s *transportSender) Send(ctx context.Context, frame []byte) error {
	return s.t.Send(ctx, frame)
}

// Open brings the Device from silence to a running, mirrored session:
// it opens the MIDI transport, runs the identity + editor-mode handshake,
// builds the Effect Model against the learned fx slot count, performs one
// synchronous full refresh, and starts the background scheduler.
func Open(ctx context.Context, cfg *config.Config) (*Facade, error) {
	store, err := schema.LoadFromConfig(cfg.Schema.OverridePath)
	if err != nil {
		return nil, fmt.Errorf("facade: load schema: %w", err)
	}

	var registry *prometheus.Registry
	var recorder metrics.Recorder
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		recorder = metrics.New(registry)
	}

	sender := &transportSender{}
	tx := transaction.New(sender, cfg.Transport.DeviceID, cfg.Transaction.PollInterval, cfg.Transaction.MaxRetries)
	tx.SetMetrics(recorder)

	identityCh := make(chan protocol.ParsedFrame, 1)
	onInbound := func(frame []byte) {
		if parsed := protocol.Parse(frame); parsed.Kind == protocol.KindIdentityReply {
			select {
			case identityCh <- parsed:
			default:
			}
		}
		tx.OnInbound(frame)
	}

	inPrefix, outPrefix := resolvePortNames(cfg.Transport)
	t, err := transport.Open(inPrefix, outPrefix, onInbound)
	if err != nil {
		return nil, fmt.Errorf("facade: open transport: %w", err)
	}
	sender.t = t

	hs := handshake.New(t, tx, cfg.Handshake.IdentityTimeout, !cfg.Handshake.ProbeComputedChecksum)
	hs.SetMetrics(recorder)
	if err := hs.Run(ctx, identityCh); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("facade: handshake: %w", err)
	}

	identity := hs.Identity()
	fxSlots := protocol.FxSlotCount(identity.Model)
	model := effect.New(store, tx, fxSlots)

	f := &Facade{
		transport: t,
		tx:        tx,
		model:     model,
		mirror:    mirror.New(),
		identity:  identity,
		registry:  registry,
	}
	f.scheduler = mirror.NewScheduler(model, f.mirror, cfg.Mirror.RefreshInterval, cfg.Mirror.ShutdownPollInterval, f.categoryLastActionTS)
	f.scheduler.SetMetrics(recorder)

	logger.InfoCtx(ctx, "facade open: performing initial refresh", logger.Model(identity.Model), logger.DeviceID(identity.DeviceID))
	f.scheduler.RefreshOnce(ctx)
	f.scheduler.Start(ctx)

	return f, nil
}

// resolvePortNames derives the input/output port prefixes from config: an
// explicit InPort/OutPort always wins; otherwise both directions use the
// shared PortNamePrefix.
func resolvePortNames(cfg config.TransportConfig) (in, out string) {
	in, out = cfg.PortNamePrefix, cfg.PortNamePrefix
	if cfg.InPort != "" {
		in = cfg.InPort
	}
	if cfg.OutPort != "" {
		out = cfg.OutPort
	}
	return in, out
}

func (f *Facade) categoryLastActionTS(_ string) int64 {
	return f.lastActionTS.Load()
}

// Identity returns the Device identity learned during the handshake.
func (f *Facade) Identity() handshake.Identity { return f.identity }

// Registry returns the Prometheus registry Open built when
// cfg.Metrics.Enabled was set, already wired to every collector the
// Transaction Manager, Scheduler and Handshake report through. Returns nil
// when metrics collection is disabled.
func (f *Facade) Registry() *prometheus.Registry {
	return f.registry
}

// Close stops the background scheduler and releases the MIDI transport.
func (f *Facade) Close() error {
	f.scheduler.Stop()
	return f.transport.Close()
}

// GetState returns a consistent snapshot of every category's mirrored
// state.
func (f *Facade) GetState(ctx context.Context) mirror.Snapshot {
	_, span := telemetry.StartFacadeSpan(ctx, telemetry.SpanFacadeGetState, "")
	defer span.End()
	return f.mirror.GetState()
}

// markOptimistic stamps the shared last_action_ts ahead of a write: the
// Scheduler will discard any refresh pass for any category that began
// before this instant, so the mirror doesn't flicker back to the pre-edit
// value on the refresh that races this write.
func (f *Facade) markOptimistic() int64 {
	ts := time.Now().UnixNano()
	f.lastActionTS.Store(ts)
	return ts
}

// Toggle writes the SW field of (category, index) and optimistically
// updates the mirror; it does not wait for the write to be acknowledged.
func (f *Facade) Toggle(ctx context.Context, category, index string, on bool) error {
	ctx, span := telemetry.StartFacadeSpan(ctx, telemetry.SpanFacadeToggle, category, telemetry.Index(indexAsInt(index)))
	defer span.End()

	f.markOptimistic()
	if err := f.model.Toggle(ctx, category, index, on); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	f.mirror.ApplyOptimistic(category, index, func(s *effect.State) { s.Switch = on })
	return nil
}

// SetValue writes field of (category, index) to value and optimistically
// updates whichever of the mirrored instance's two sliders carries that
// field label.
func (f *Facade) SetValue(ctx context.Context, category, index, field string, value int) error {
	ctx, span := telemetry.StartFacadeSpan(ctx, telemetry.SpanFacadeSetValue, category, telemetry.Field(field), telemetry.Value(value))
	defer span.End()

	f.markOptimistic()
	if err := f.model.SetValue(ctx, category, index, field, value); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	f.mirror.ApplyOptimistic(category, index, func(s *effect.State) {
		if s.Slider1 != nil && s.Slider1.Label == field {
			s.Slider1.Value = value
		}
		if s.Slider2 != nil && s.Slider2.Label == field {
			s.Slider2.Value = value
		}
	})
	return nil
}

// SetType writes the TYPE field of (category, index). The mirror's type
// name updates optimistically; its slider pair is cleared rather than
// guessed, since the new type's slider identity depends on the schema and
// the next refresh repopulates it correctly.
func (f *Facade) SetType(ctx context.Context, category, index, typeSymbol string) error {
	ctx, span := telemetry.StartFacadeSpan(ctx, telemetry.SpanFacadeSetType, category, telemetry.FxType(typeSymbol))
	defer span.End()

	f.markOptimistic()
	if err := f.model.SetType(ctx, category, index, typeSymbol); err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	f.mirror.ApplyOptimistic(category, index, func(s *effect.State) {
		s.TypeName = typeSymbol
		s.Slider1 = nil
		s.Slider2 = nil
	})
	return nil
}

// ListTypes returns the known type names for category, sorted for a
// stable listing.
func (f *Facade) ListTypes(ctx context.Context, category string) ([]string, error) {
	_, span := telemetry.StartFacadeSpan(ctx, telemetry.SpanFacadeListType, category)
	defer span.End()

	names, err := f.model.ListTypes(category)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func indexAsInt(index string) int {
	if index == "" {
		return 0
	}
	n := 0
	for _, r := range index {
		if r < '0' || r > '9' {
			return int(index[0])
		}
		n = n*10 + int(r-'0')
	}
	return n
}
