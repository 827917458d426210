package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const separator = "-------------------------------------------------"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options is built once from the command line and passed down by value.
type Options struct {
	Long      bool
	FindDupes bool
	// Patch is the patch selected with -p, or -1. It only forces the long
	// listing; every voice is still rendered.
	Patch     int
	Format    string
	ExportDir string
}

func DefaultOptions() Options {
	return Options{Patch: -1, Format: FormatText}
}

// Render writes the bank in the format selected by opts. Duplicate pairs
// follow the listing in text mode and are embedded in structured formats.
func Render(w io.Writer, filename string, b *Bank, opts Options) error {
	switch opts.Format {
	case "", FormatText:
		var err error
		if opts.Long {
			err = WriteLong(w, filename, b)
		} else {
			err = WriteShort(w, b)
		}
		if err != nil {
			return err
		}
		if opts.FindDupes {
			return WriteDupes(w, FindDupes(b))
		}
		return nil
	case FormatJSON:
		return WriteJSON(w, NewBankDoc(filename, b, opts))
	case FormatYAML:
		return WriteYAML(w, NewBankDoc(filename, b, opts))
	}
	return errors.Errorf("unknown output format %q", opts.Format)
}

// WriteShort lists one voice per line.
func WriteShort(w io.Writer, b *Bank) error {
	var sb strings.Builder
	for i := range b.Voices() {
		fmt.Fprintf(&sb, "%2d %s\n", i+1, b.Voice(i+1).DisplayName())
	}
	_, err := io.WriteString(w, sb.String())
	return errors.WithStack(err)
}

// WriteLong dumps every parameter of every voice.
func WriteLong(w io.Writer, filename string, b *Bank) error {
	for n := 1; n <= VoiceCount; n++ {
		if _, err := io.WriteString(w, FormatVoice(filename, n, b.Voice(n))); err != nil {
			return errors.Wrapf(err, "writing voice %d", n)
		}
	}
	return nil
}

// FormatVoice renders the long listing of voice n, separator included.
func FormatVoice(filename string, n int, v *Voice) string {
	var sb strings.Builder
	p := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	p("Filename: %s", filename)
	p("Voice #: %d", n)
	p("Name: %s", v.DisplayName())
	p("Algorithm: %d", int(v.Algorithm)+1)
	p("Feedback: %d", v.Feedback)

	p("LFO")
	p("  Wave: %s", LFOWave(v.LFOWave))
	p("  Speed: %d", v.LFOSpeed)
	p("  Delay: %d", v.LFODelay)
	p("  Pitch Mod Depth: %d", v.LFOPitchModDepth)
	p("  AM Depth: %d", v.LFOAMDepth)
	p("  Sync: %s", OnOff(v.LFOSync))
	p("  Pitch Modulation Sensitivity: %d", v.LFOPitchModSensitivity)

	p("Oscillator Key Sync: %s", OnOff(v.OscKeySync))

	p("Pitch Envelope Generator")
	for i, r := range v.PitchEGRates {
		p("  Rate %d: %d", i+1, r)
	}
	for i, l := range v.PitchEGLevels {
		p("  Level %d: %d", i+1, l)
	}

	p("Transpose: %s", Transpose(v.Transpose))

	for i := 1; i <= OperatorCount; i++ {
		op := v.Operator(i)
		p("")
		p("Operator: %d", i)
		p("  AM Sensitivity: %d", op.AMSensitivity)
		p("  Oscillator Mode: %s", Mode(op.OscillatorMode))
		p("  Frequency: %s", FormatFrequency(op.OscillatorMode, op.FrequencyCoarse, op.FrequencyFine))
		p("  Detune: %d", Detune(op.Detune))
		p("  Envelope Generator")
		for j, r := range op.EGRates {
			p("    Rate %d: %d", j+1, r)
		}
		for j, l := range op.EGLevels {
			p("    Level %d: %d", j+1, l)
		}
		p("  Keyboard Level Scaling")
		p("    Breakpoint: %s", Breakpoint(op.LevelScalingBreakpoint))
		p("    Left Curve: %s", Curve(op.ScaleLeftCurve))
		p("    Right Curve: %s", Curve(op.ScaleRightCurve))
		p("    Left Depth: %d", op.ScaleLeftDepth)
		p("    Right Depth: %d", op.ScaleRightDepth)
		p("  Keyboard Rate Scaling: %d", op.RateScale)
		p("  Output Level: %d", op.OutputLevel)
		p("  Key Velocity Sensitivity: %d", op.KeyVelocitySensitivity)
	}
	p(separator)

	return sb.String()
}

func WriteDupes(w io.Writer, pairs []DupePair) error {
	var sb strings.Builder
	for _, d := range pairs {
		fmt.Fprintf(&sb, "Found dupe: %d and %d\n", d.I, d.J)
	}
	_, err := io.WriteString(w, sb.String())
	return errors.WithStack(err)
}
