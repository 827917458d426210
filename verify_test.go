package main

import (
	"errors"
	"strings"
	"testing"
)

func TestVerifyAcceptsValidBank(t *testing.T) {
	if err := Verify(mustParse(t, testBankBytes())); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(data []byte)
		want   ValidationKind
	}{
		{"start", func(d []byte) { d[0] = 0xF1 }, BadStartMarker},
		{"vendor", func(d []byte) { d[1] = 0x41 }, BadVendorID},
		{"substatus", func(d []byte) { d[2] = 0x01 }, BadSubStatus},
		{"format", func(d []byte) { d[3] = 0x00 }, BadFormat},
		{"size msb", func(d []byte) { d[4] = 0x01 }, BadSize},
		{"size lsb", func(d []byte) { d[5] = 0x1B }, BadSize},
		{"end", func(d []byte) { d[4103] = 0x00 }, BadEndMarker},
		{"checksum", func(d []byte) { d[4102] ^= 0x01 }, ChecksumMismatch},
		// Structural checks run before the checksum and in a fixed order.
		{"start before end", func(d []byte) { d[0] = 0; d[4103] = 0 }, BadStartMarker},
		{"format before checksum", func(d []byte) { d[3] = 1; d[100] ^= 1 }, BadFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testBankBytes()
			tt.mutate(data)

			err := Verify(mustParse(t, data))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Kind != tt.want {
				t.Errorf("kind = %d (%v), want %d", verr.Kind, verr, tt.want)
			}
			if verr.IsStructural() == (tt.want == ChecksumMismatch) {
				t.Errorf("IsStructural = %v for kind %d", verr.IsStructural(), verr.Kind)
			}
		})
	}
}

func TestChecksumMismatchReportsExpected(t *testing.T) {
	data := testBankBytes()
	good := data[4102]
	data[4102] = (good + 1) & 0x7F

	var verr *ValidationError
	if !errors.As(Verify(mustParse(t, data)), &verr) {
		t.Fatal("expected a validation error")
	}
	if verr.Expected != good || verr.Actual != (good+1)&0x7F {
		t.Errorf("expected/actual = %#x/%#x, want %#x/%#x", verr.Expected, verr.Actual, good, (good+1)&0x7F)
	}
	if !strings.Contains(verr.Error(), "0x") {
		t.Errorf("message %q should carry the expected value in hex", verr.Error())
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		payload []byte
		want    byte
	}{
		{[]byte{}, 0},
		{[]byte{0x01}, 0x7F},
		{[]byte{0x40, 0x40}, 0x00},
		{[]byte{0x7F, 0x7F, 0x02}, 0x00},
		// High bits are not part of the sum.
		{[]byte{0x81}, 0x7F},
	}
	for _, tt := range tests {
		if got := Checksum(tt.payload); got != tt.want {
			t.Errorf("Checksum(% X) = %#x, want %#x", tt.payload, got, tt.want)
		}
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	voices := make([][]byte, VoiceCount)
	for i := range voices {
		rec := make([]byte, VoiceSize)
		for j := range rec {
			rec[j] = byte((i*VoiceSize + j*7) & 0x7F)
		}
		voices[i] = rec
	}
	data := buildBank(voices)
	if err := Verify(mustParse(t, data)); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	for _, idx := range []int{6, 7, 500, 2048, 4101} {
		for bit := 0; bit < 7; bit++ {
			flipped := append([]byte(nil), data...)
			flipped[idx] ^= 1 << bit

			var verr *ValidationError
			if !errors.As(Verify(mustParse(t, flipped)), &verr) || verr.Kind != ChecksumMismatch {
				t.Errorf("byte %d bit %d: flip not detected", idx, bit)
			}
		}
	}
}
