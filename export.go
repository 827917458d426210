package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type EnvelopeDoc struct {
	Rate1  byte `json:"rate1" yaml:"rate1"`
	Rate2  byte `json:"rate2" yaml:"rate2"`
	Rate3  byte `json:"rate3" yaml:"rate3"`
	Rate4  byte `json:"rate4" yaml:"rate4"`
	Level1 byte `json:"level1" yaml:"level1"`
	Level2 byte `json:"level2" yaml:"level2"`
	Level3 byte `json:"level3" yaml:"level3"`
	Level4 byte `json:"level4" yaml:"level4"`
}

type LFODoc struct {
	Wave                string `json:"wave" yaml:"wave"`
	Speed               byte   `json:"speed" yaml:"speed"`
	Delay               byte   `json:"delay" yaml:"delay"`
	PitchModDepth       byte   `json:"pitchModDepth" yaml:"pitchModDepth"`
	AMDepth             byte   `json:"amDepth" yaml:"amDepth"`
	Sync                string `json:"sync" yaml:"sync"`
	PitchModSensitivity byte   `json:"pitchModSensitivity" yaml:"pitchModSensitivity"`
}

type LevelScalingDoc struct {
	Breakpoint string `json:"breakpoint" yaml:"breakpoint"`
	LeftCurve  string `json:"leftCurve" yaml:"leftCurve"`
	RightCurve string `json:"rightCurve" yaml:"rightCurve"`
	LeftDepth  byte   `json:"leftDepth" yaml:"leftDepth"`
	RightDepth byte   `json:"rightDepth" yaml:"rightDepth"`
}

type OperatorDoc struct {
	Operator               int             `json:"operator" yaml:"operator"`
	AMSensitivity          byte            `json:"amSensitivity" yaml:"amSensitivity"`
	OscillatorMode         string          `json:"oscillatorMode" yaml:"oscillatorMode" jsonschema:"enum=ratio,enum=fixed"`
	Frequency              float64         `json:"frequency" yaml:"frequency"`
	FrequencyText          string          `json:"frequencyText" yaml:"frequencyText"`
	Detune                 int             `json:"detune" yaml:"detune"`
	EG                     EnvelopeDoc     `json:"eg" yaml:"eg"`
	KeyboardLevelScaling   LevelScalingDoc `json:"keyboardLevelScaling" yaml:"keyboardLevelScaling"`
	KeyboardRateScaling    byte            `json:"keyboardRateScaling" yaml:"keyboardRateScaling"`
	OutputLevel            byte            `json:"outputLevel" yaml:"outputLevel"`
	KeyVelocitySensitivity byte            `json:"keyVelocitySensitivity" yaml:"keyVelocitySensitivity"`
}

// VoiceDoc is the structured form of one voice, with operators in
// logical order.
type VoiceDoc struct {
	Number            int           `json:"number" yaml:"number"`
	Name              string        `json:"name" yaml:"name"`
	Algorithm         int           `json:"algorithm" yaml:"algorithm"`
	Feedback          byte          `json:"feedback" yaml:"feedback"`
	LFO               LFODoc        `json:"lfo" yaml:"lfo"`
	OscillatorKeySync string        `json:"oscillatorKeySync" yaml:"oscillatorKeySync"`
	PitchEG           EnvelopeDoc   `json:"pitchEG" yaml:"pitchEG"`
	Transpose         string        `json:"transpose" yaml:"transpose"`
	Operators         []OperatorDoc `json:"operators" yaml:"operators"`
}

type BankDoc struct {
	File       string     `json:"file,omitempty" yaml:"file,omitempty"`
	Voices     []VoiceDoc `json:"voices" yaml:"voices"`
	Duplicates []DupePair `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

func newEnvelopeDoc(rates, levels [4]byte) EnvelopeDoc {
	return EnvelopeDoc{
		Rate1: rates[0], Rate2: rates[1], Rate3: rates[2], Rate4: rates[3],
		Level1: levels[0], Level2: levels[1], Level3: levels[2], Level4: levels[3],
	}
}

func modeKey(mode byte) string {
	switch mode {
	case 0:
		return "ratio"
	case 1:
		return "fixed"
	}
	return OutOfRange
}

// lowerKnown lowercases an interpreted value but leaves OutOfRange as is.
func lowerKnown(s string) string {
	if s == OutOfRange {
		return s
	}
	return strings.ToLower(s)
}

// textName maps each name byte to the rune of the same value, so bytes
// outside ASCII survive as Latin-1 characters in every output format.
func textName(raw string) string {
	runes := make([]rune, len(raw))
	for i := 0; i < len(raw); i++ {
		runes[i] = rune(raw[i])
	}
	return string(runes)
}

func NewVoiceDoc(n int, v *Voice) VoiceDoc {
	doc := VoiceDoc{
		Number:    n,
		Name:      textName(v.DisplayName()),
		Algorithm: int(v.Algorithm) + 1,
		Feedback:  v.Feedback,
		LFO: LFODoc{
			Wave:                lowerKnown(LFOWave(v.LFOWave)),
			Speed:               v.LFOSpeed,
			Delay:               v.LFODelay,
			PitchModDepth:       v.LFOPitchModDepth,
			AMDepth:             v.LFOAMDepth,
			Sync:                lowerKnown(OnOff(v.LFOSync)),
			PitchModSensitivity: v.LFOPitchModSensitivity,
		},
		OscillatorKeySync: OnOff(v.OscKeySync),
		PitchEG:           newEnvelopeDoc(v.PitchEGRates, v.PitchEGLevels),
		Transpose:         Transpose(v.Transpose),
	}

	for i := 1; i <= OperatorCount; i++ {
		op := v.Operator(i)
		freq := RatioFrequency(op.FrequencyCoarse, op.FrequencyFine)
		if op.OscillatorMode != 0 {
			freq = FixedFrequency(op.FrequencyCoarse, op.FrequencyFine)
		}
		doc.Operators = append(doc.Operators, OperatorDoc{
			Operator:       i,
			AMSensitivity:  op.AMSensitivity,
			OscillatorMode: modeKey(op.OscillatorMode),
			Frequency:      freq,
			FrequencyText:  FormatFrequency(op.OscillatorMode, op.FrequencyCoarse, op.FrequencyFine),
			Detune:         Detune(op.Detune),
			EG:             newEnvelopeDoc(op.EGRates, op.EGLevels),
			KeyboardLevelScaling: LevelScalingDoc{
				Breakpoint: Breakpoint(op.LevelScalingBreakpoint),
				LeftCurve:  Curve(op.ScaleLeftCurve),
				RightCurve: Curve(op.ScaleRightCurve),
				LeftDepth:  op.ScaleLeftDepth,
				RightDepth: op.ScaleRightDepth,
			},
			KeyboardRateScaling:    op.RateScale,
			OutputLevel:            op.OutputLevel,
			KeyVelocitySensitivity: op.KeyVelocitySensitivity,
		})
	}
	return doc
}

func NewBankDoc(filename string, b *Bank, opts Options) BankDoc {
	doc := BankDoc{File: filename}
	for n := 1; n <= VoiceCount; n++ {
		doc.Voices = append(doc.Voices, NewVoiceDoc(n, b.Voice(n)))
	}
	if opts.FindDupes {
		doc.Duplicates = FindDupes(b)
	}
	return doc
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding JSON")
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding YAML")
	}
	return errors.Wrap(enc.Close(), "encoding YAML")
}

// Slug turns a voice name into a file name fragment. Accented letters are
// transliterated; a name with nothing usable becomes "voice".
func Slug(name string) string {
	s := strings.Trim(slug.Make(name), "-_")
	if s == "" {
		return "voice"
	}
	return s
}

// ExportVoices writes one document per voice into dir, named
// NN-<slug>.<format>. The number prefix keeps voices with equal names apart.
func ExportVoices(dir string, b *Bank, format string) ([]string, error) {
	write := WriteJSON
	ext := "json"
	switch format {
	case "", FormatText, FormatJSON:
	case FormatYAML:
		write = WriteYAML
		ext = "yaml"
	default:
		return nil, errors.Errorf("unknown export format %q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}

	var written []string
	for n := 1; n <= VoiceCount; n++ {
		doc := NewVoiceDoc(n, b.Voice(n))
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.%s", n, Slug(doc.Name), ext))
		f, err := os.Create(path)
		if err != nil {
			return written, errors.Wrapf(err, "creating %s", path)
		}
		err = write(f, doc)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, errors.Wrapf(err, "writing %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}

// VoiceSchema returns the JSON schema of VoiceDoc.
func VoiceSchema() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&VoiceDoc{})
	out, err := json.MarshalIndent(s, "", "  ")
	return out, errors.Wrap(err, "marshalling voice schema")
}
