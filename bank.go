package main

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	BankSize      = 4104 // Complete 32-voice bulk dump including F0 ... F7
	PayloadSize   = 4096 // Packed voice data covered by the checksum
	VoiceCount    = 32
	VoiceSize     = 128
	OperatorSize  = 17
	OperatorCount = 6
	NameSize      = 10
)

// Envelope offsets within the bulk dump.
const (
	startIdx     = 0
	vendorIdx    = 1
	subStatusIdx = 2
	formatIdx    = 3
	sizeMSBIdx   = 4
	sizeLSBIdx   = 5
	payloadIdx   = 6
	checksumIdx  = payloadIdx + PayloadSize
	endIdx       = checksumIdx + 1
)

// Voice tail offsets, relative to the start of a voice record.
const (
	pitchEGIdx    = OperatorCount * OperatorSize // 102
	algorithmIdx  = pitchEGIdx + 8               // 110
	lfoSpeedIdx   = algorithmIdx + 2             // 112
	lfoDelayIdx   = lfoSpeedIdx + 1
	lfoPMDIdx     = lfoSpeedIdx + 2
	lfoAMDIdx     = lfoSpeedIdx + 3
	transposeIdx  = lfoSpeedIdx + 5 // 117
	nameIdx       = transposeIdx + 1
	nameOffsetEnd = nameIdx + NameSize
)

var ErrTruncatedInput = errors.New("not enough bytes")

// bitField locates a packed value: width bits starting at bit shift of byte offset.
type bitField struct {
	offset int
	shift  uint
	width  uint
}

func (f bitField) get(rec []byte) byte {
	return (rec[f.offset] >> f.shift) & (1<<f.width - 1)
}

// Operator record, 17 bytes.
//
//	    | 7 | 6 | 5 | 4 | 3 | 2 | 1 | 0 |
//	+11 | - | - | - | - |  RC   |  LC   |
//	+12 | - |    detune     |    RS     |
//	+13 | - | - | - |    KVS    |  AMS  |
//	+15 | - | - |       coarse      | M |
var (
	opLeftCurve  = bitField{11, 0, 2}
	opRightCurve = bitField{11, 2, 2}
	opRateScale  = bitField{12, 0, 3}
	opDetune     = bitField{12, 3, 4}
	opAMS        = bitField{13, 0, 2}
	opKVS        = bitField{13, 2, 3}
	opMode       = bitField{15, 0, 1}
	opCoarse     = bitField{15, 1, 5}
)

// Voice tail.
//
//	     | 7 | 6 | 5 | 4 | 3 | 2 | 1 | 0 |
//	+110 | - | - | - |     algorithm     |
//	+111 | - | - | - | - |OKS| feedback  |
//	+116 |      PMS      |   wave    | S |
var (
	voiceAlgorithm = bitField{algorithmIdx, 0, 5}
	voiceFeedback  = bitField{algorithmIdx + 1, 0, 3}
	voiceOscSync   = bitField{algorithmIdx + 1, 3, 1}
	voiceLFOSync   = bitField{lfoSpeedIdx + 4, 0, 1}
	voiceLFOWave   = bitField{lfoSpeedIdx + 4, 1, 3}
	voiceLFOPMS    = bitField{lfoSpeedIdx + 4, 4, 4}
)

type Operator struct {
	EGRates                [4]byte
	EGLevels               [4]byte
	LevelScalingBreakpoint byte
	ScaleLeftDepth         byte
	ScaleRightDepth        byte
	ScaleLeftCurve         byte
	ScaleRightCurve        byte
	RateScale              byte
	Detune                 byte // 0-14, centre 7
	AMSensitivity          byte
	KeyVelocitySensitivity byte
	OutputLevel            byte
	OscillatorMode         byte // 0 ratio, 1 fixed
	FrequencyCoarse        byte
	FrequencyFine          byte
}

type Voice struct {
	// Operators in storage order: Operators[0] is operator 6.
	Operators [OperatorCount]Operator

	PitchEGRates  [4]byte
	PitchEGLevels [4]byte

	Algorithm  byte // 0-based
	Feedback   byte
	OscKeySync byte

	LFOSpeed               byte
	LFODelay               byte
	LFOPitchModDepth       byte
	LFOAMDepth             byte
	LFOSync                byte
	LFOWave                byte
	LFOPitchModSensitivity byte

	Transpose byte
	Name      [NameSize]byte

	raw [VoiceSize]byte
}

// Bank is a decoded view of a bulk dump. It is never mutated after ParseBank.
type Bank struct {
	raw    [BankSize]byte
	voices [VoiceCount]Voice
}

func decodeOperator(rec []byte) Operator {
	var op Operator
	copy(op.EGRates[:], rec[0:4])
	copy(op.EGLevels[:], rec[4:8])
	op.LevelScalingBreakpoint = rec[8]
	op.ScaleLeftDepth = rec[9]
	op.ScaleRightDepth = rec[10]
	op.ScaleLeftCurve = opLeftCurve.get(rec)
	op.ScaleRightCurve = opRightCurve.get(rec)
	op.RateScale = opRateScale.get(rec)
	op.Detune = opDetune.get(rec)
	op.AMSensitivity = opAMS.get(rec)
	op.KeyVelocitySensitivity = opKVS.get(rec)
	op.OutputLevel = rec[14]
	op.OscillatorMode = opMode.get(rec)
	op.FrequencyCoarse = opCoarse.get(rec)
	op.FrequencyFine = rec[16]
	return op
}

func decodeVoice(rec []byte) Voice {
	var v Voice
	copy(v.raw[:], rec)

	for i := range v.Operators {
		start := i * OperatorSize
		v.Operators[i] = decodeOperator(rec[start : start+OperatorSize])
	}

	copy(v.PitchEGRates[:], rec[pitchEGIdx:pitchEGIdx+4])
	copy(v.PitchEGLevels[:], rec[pitchEGIdx+4:pitchEGIdx+8])

	v.Algorithm = voiceAlgorithm.get(rec)
	v.Feedback = voiceFeedback.get(rec)
	v.OscKeySync = voiceOscSync.get(rec)

	v.LFOSpeed = rec[lfoSpeedIdx]
	v.LFODelay = rec[lfoDelayIdx]
	v.LFOPitchModDepth = rec[lfoPMDIdx]
	v.LFOAMDepth = rec[lfoAMDIdx]
	v.LFOSync = voiceLFOSync.get(rec)
	v.LFOWave = voiceLFOWave.get(rec)
	v.LFOPitchModSensitivity = voiceLFOPMS.get(rec)

	v.Transpose = rec[transposeIdx]
	copy(v.Name[:], rec[nameIdx:nameOffsetEnd])
	return v
}

// ParseBank builds the typed view of a bulk dump. Only the first BankSize
// bytes are used; nothing is validated here, see Verify.
func ParseBank(data []byte) (*Bank, error) {
	if len(data) < BankSize {
		return nil, errors.WithStack(ErrTruncatedInput)
	}

	b := &Bank{}
	copy(b.raw[:], data[:BankSize])

	for i := range b.voices {
		start := payloadIdx + i*VoiceSize
		b.voices[i] = decodeVoice(b.raw[start : start+VoiceSize])
	}
	return b, nil
}

// ReadBankFile reads one bulk dump from disk.
func ReadBankFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open the file")
	}
	defer f.Close()

	buf := make([]byte, BankSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrapf(ErrTruncatedInput, "%s", path)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ParseBank(buf)
}

// Payload returns the 4096 bytes of packed voice data.
func (b *Bank) Payload() []byte {
	return b.raw[payloadIdx:checksumIdx]
}

func (b *Bank) StoredChecksum() byte {
	return b.raw[checksumIdx]
}

// Voice returns voice n, 1-based.
func (b *Bank) Voice(n int) *Voice {
	return &b.voices[n-1]
}

func (b *Bank) Voices() []Voice {
	return b.voices[:]
}

// Operator returns logical operator n (1-6). Operators are stored
// backwards, so operator 1 is the last record.
func (v *Voice) Operator(n int) *Operator {
	return &v.Operators[OperatorCount-n]
}

// Raw returns the voice record exactly as stored.
func (v *Voice) Raw() []byte {
	return v.raw[:]
}

// DisplayName returns the name up to the first NUL.
func (v *Voice) DisplayName() string {
	name := v.Name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}
