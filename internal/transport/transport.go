// Package transport opens the MIDI input/output port pair addressed to the
// Device and ferries raw SysEx frames in both directions. It is the only
// package that imports the gomidi driver; everything above it speaks in
// plain []byte frames.
//
// The transport does not interpret frames: classification and parsing live
// in internal/protocol, correlation lives in internal/transaction.
package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the rtmidi driver

	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/internal/telemetry"
)

// InboundFunc is the single subscriber callback invoked once per inbound
// SysEx frame. It must never block on locks held by a Send or mirror
// refresh in progress.
type InboundFunc func(frame []byte)

// Transport owns one open MIDI input port and one open MIDI output port.
type Transport struct {
	inPort  drivers.In
	outPort drivers.Out
	send    func(msg midi.Message) error
	stop    func()

	mu     sync.Mutex
	closed bool
}

// Open enumerates available MIDI ports and opens the first input and first
// output port whose display name begins with inPrefix / outPrefix
// respectively. SysEx reception is enabled on the listener; active-sense
// traffic never reaches onInbound since it carries no SysEx payload.
func Open(inPrefix, outPrefix string, onInbound InboundFunc) (*Transport, error) {
	inPort, err := findInPort(inPrefix)
	if err != nil {
		return nil, err
	}
	outPort, err := findOutPort(outPrefix)
	if err != nil {
		return nil, err
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortOpenFailed, err)
	}

	t := &Transport{
		inPort:  inPort,
		outPort: outPort,
		send:    send,
	}

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, _ int32) {
		var raw []byte
		if !msg.GetSysEx(&raw) {
			return
		}
		frame := make([]byte, 0, len(raw)+2)
		frame = append(frame, protocolSysExStart)
		frame = append(frame, raw...)
		frame = append(frame, protocolSysExEnd)
		if onInbound != nil {
			onInbound(frame)
		}
	}, midi.UseSysEx())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortOpenFailed, err)
	}
	t.stop = stop

	logger.Info("transport opened", logger.PortName(inPort.String()))
	return t, nil
}

// gomidi's midi.SysEx() constructor strips the F0/F7 delimiters; GetSysEx
// hands back the payload without them too. The codec in internal/protocol
// works on complete frames, so the delimiters are re-added/stripped at this
// single boundary.
const (
	protocolSysExStart = 0xF0
	protocolSysExEnd   = 0xF7
)

func findInPort(prefix string) (drivers.In, error) {
	for _, p := range midi.GetInPorts() {
		if strings.HasPrefix(p.String(), prefix) {
			in, err := midi.FindInPort(p.String())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPortOpenFailed, err)
			}
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: no input port starting with %q (have %s)", ErrPortNotFound, prefix, midi.GetInPorts())
}

func findOutPort(prefix string) (drivers.Out, error) {
	for _, p := range midi.GetOutPorts() {
		if strings.HasPrefix(p.String(), prefix) {
			out, err := midi.FindOutPort(p.String())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPortOpenFailed, err)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: no output port starting with %q (have %s)", ErrPortNotFound, prefix, midi.GetOutPorts())
}

// Send pushes a complete SysEx frame (including F0/F7 delimiters)
// atomically to the output port.
func (t *Transport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	_, span := telemetry.StartTransportSpan(ctx, telemetry.SpanTransportSend, telemetry.BodyLen(len(frame)))
	defer span.End()

	if len(frame) < 2 || frame[0] != protocolSysExStart || frame[len(frame)-1] != protocolSysExEnd {
		err := fmt.Errorf("%w: frame missing SysEx delimiters", ErrWriteFailed)
		telemetry.RecordError(ctx, err)
		return err
	}

	payload := frame[1 : len(frame)-1]
	if err := t.send(midi.SysEx(payload)); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrWriteFailed, err)
		telemetry.RecordError(ctx, wrapped)
		return wrapped
	}
	return nil
}

// Close stops the inbound listener and releases both ports.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.stop != nil {
		t.stop()
	}
	if err := t.inPort.Close(); err != nil {
		logger.Warn("transport input port close error", logger.Err(err))
	}
	if err := t.outPort.Close(); err != nil {
		logger.Warn("transport output port close error", logger.Err(err))
	}
	return nil
}

// InPortName and OutPortName report the resolved (exact) port names, for
// logging and diagnostics.
func (t *Transport) InPortName() string  { return t.inPort.String() }
func (t *Transport) OutPortName() string { return t.outPort.String() }

// ListPorts returns the display names of every MIDI input and output port
// currently visible to the driver, used by the "list-ports" CLI command.
func ListPorts() (in []string, out []string) {
	for _, p := range midi.GetInPorts() {
		in = append(in, p.String())
	}
	for _, p := range midi.GetOutPorts() {
		out = append(out, p.String())
	}
	return in, out
}
