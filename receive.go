package main

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ErrNoDump = errors.New("timed out waiting for bulk dump")

// BulkDumpRequest asks a DX7 on the given channel (1-16) to send its
// 32 voices.
func BulkDumpRequest(channel uint8) []byte {
	return []byte{sysexStart, yamahaID, 0x20 | (channel-1)&0x0F, format32, sysexEnd}
}

// IsBulkDump reports whether msg is a complete 32-voice bulk dump frame.
// The sub-status byte carries the sending channel and is not checked here.
func IsBulkDump(msg []byte) bool {
	return len(msg) == BankSize &&
		msg[startIdx] == sysexStart &&
		msg[vendorIdx] == yamahaID &&
		msg[formatIdx] == format32 &&
		msg[endIdx] == sysexEnd
}

// clearChannel returns a copy of a captured dump with the channel nibble
// of the sub-status byte cleared, the form a bank file is stored in.
func clearChannel(data []byte) []byte {
	out := append([]byte(nil), data...)
	if len(out) > subStatusIdx {
		out[subStatusIdx] &^= 0x0F
	}
	return out
}

// DX7Port is an output port used only to send dump requests.
type DX7Port struct {
	channel uint8
	out     drivers.Out
}

func OpenDX7Port(channel uint8, portIndex int) (*DX7Port, func(), error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	if portIndex < 0 || portIndex >= len(outs) {
		return nil, nil, errors.Errorf("output port index %d out of range", portIndex)
	}

	out := outs[portIndex]
	if err := out.Open(); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	closer := func() {
		_ = out.Close()
	}
	log.Println("Opened MIDI output port", out.String())
	return &DX7Port{channel: channel, out: out}, closer, nil
}

// RequestBank sends the bulk dump request.
func (p *DX7Port) RequestBank() error {
	req := midi.Message(BulkDumpRequest(p.channel))
	log.Printf("Requesting bulk dump on channel %d", p.channel)
	if !p.out.IsOpen() {
		if err := p.out.Open(); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.Wrap(p.out.Send(req.Bytes()), "failed to request bulk dump")
}

// ReceiveBank waits on inPort for a bulk dump. If request is non-nil it is
// called once the listener is running. Other sysex traffic is ignored.
func ReceiveBank(ctx context.Context, inPort drivers.In, request func() error) ([]byte, error) {
	msgCh := make(chan []byte, 1)

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, _ int32) {
		if !IsBulkDump(msg) {
			if len(msg) > 0 && msg[0] == sysexStart {
				log.Printf("Ignoring %d byte sysex message", len(msg))
			}
			return
		}
		data := make([]byte, len(msg))
		copy(data, msg)
		select {
		case msgCh <- data:
		default:
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(BankSize+64))
	if err != nil {
		return nil, errors.Wrap(err, "failed to listen for bulk dump")
	}
	defer stop()

	if request != nil {
		if err := request(); err != nil {
			return nil, err
		}
	}

	log.Println("Waiting for bulk dump on", inPort.String())
	select {
	case data := <-msgCh:
		log.Println("Received bulk dump")
		return data, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.WithStack(ErrNoDump)
		}
		return nil, errors.WithStack(ctx.Err())
	}
}
