package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestWriteShort(t *testing.T) {
	var sb strings.Builder
	if err := WriteShort(&sb, mustParse(t, testBankBytes())); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if len(lines) != VoiceCount {
		t.Fatalf("got %d lines, want %d", len(lines), VoiceCount)
	}
	if lines[0] != " 1 VOICE A" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[31] != "32 VOICE "+string(rune('A'+31)) {
		t.Errorf("line 32 = %q", lines[31])
	}
}

func TestFormatVoiceSections(t *testing.T) {
	b := mustParse(t, testBankBytes())
	out := FormatVoice("bank.syx", 2, b.Voice(2))

	want := []string{
		"Filename: bank.syx",
		"Voice #: 2",
		"Name: VOICE B",
		"Algorithm: 5",
		"Feedback: 6",
		"LFO",
		"  Wave: Sine",
		"  Speed: 35",
		"  Delay: 1",
		"  Pitch Mod Depth: 3",
		"  AM Depth: 2",
		"  Sync: On",
		"  Pitch Modulation Sensitivity: 3",
		"Oscillator Key Sync: On",
		"Pitch Envelope Generator",
		"  Rate 1: 99",
		"  Rate 4: 96",
		"  Level 1: 50",
		"  Level 4: 53",
		"Transpose: C3",
		"",
		"Operator: 1",
		"  AM Sensitivity: 1",
		"  Oscillator Mode: Frequency (Ratio)",
		"  Frequency: 9",
		"  Detune: 5",
		"  Envelope Generator",
		"    Rate 1: 15",
		"    Level 4: 0",
		"  Keyboard Level Scaling",
		"    Breakpoint: C3",
		"    Left Curve: -EXP",
		"    Right Curve: +EXP",
		"    Left Depth: 5",
		"    Right Depth: 10",
		"  Keyboard Rate Scaling: 5",
		"  Output Level: 94",
		"  Key Velocity Sensitivity: 5",
		"Operator: 2",
		"Operator: 6",
		"  Oscillator Mode: Fixed Frequency (Hz)",
		"  Frequency: 10Hz",
		"  Detune: 0",
		"    Left Curve: -LIN",
		"    Right Curve: +LIN",
		"  Output Level: 99",
		separator,
	}

	lines := strings.Split(out, "\n")
	pos := 0
	for _, w := range want {
		for pos < len(lines) && lines[pos] != w {
			pos++
		}
		if pos == len(lines) {
			t.Fatalf("line %q missing or out of order in:\n%s", w, out)
		}
		pos++
	}
	if !strings.HasSuffix(out, separator+"\n") {
		t.Errorf("voice does not end with the separator")
	}
}

func TestFormatVoiceOutOfRange(t *testing.T) {
	rec := testVoice("BROKEN")
	rec[117] = 60 // transpose
	rec[116] = 7 << 1
	rec[5*OperatorSize+8] = 120 // operator 1 breakpoint
	v := decodeVoice(rec)

	out := FormatVoice("x.syx", 1, &v)
	for _, w := range []string{
		"Transpose: " + OutOfRange,
		"  Wave: " + OutOfRange,
		"    Breakpoint: " + OutOfRange,
	} {
		if !strings.Contains(out, w+"\n") {
			t.Errorf("missing %q", w)
		}
	}
	// The rest of the voice is still rendered.
	if !strings.Contains(out, "Operator: 6\n") {
		t.Error("rendering stopped at the first out of range value")
	}
}

func TestRenderLongWithDupes(t *testing.T) {
	var sb strings.Builder
	opts := DefaultOptions()
	opts.Long = true
	opts.FindDupes = true
	if err := Render(&sb, "bank.syx", mustParse(t, testBankBytes()), opts); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	if n := strings.Count(out, separator+"\n"); n != VoiceCount {
		t.Errorf("found %d separators, want %d", n, VoiceCount)
	}
	if n := strings.Count(out, "Found dupe: "); n != 496 {
		t.Errorf("found %d dupe lines, want 496", n)
	}
	last := strings.LastIndex(out, separator)
	first := strings.Index(out, "Found dupe: 1 and 2\n")
	if first < last {
		t.Error("dupes must follow the listing")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = "xml"
	if err := Render(&strings.Builder{}, "", mustParse(t, testBankBytes()), opts); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestWriteDupes(t *testing.T) {
	var sb strings.Builder
	if err := WriteDupes(&sb, []DupePair{{1, 2}, {3, 30}}); err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("Found dupe: %d and %d\nFound dupe: %d and %d\n", 1, 2, 3, 30)
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
