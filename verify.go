package main

import "fmt"

const (
	sysexStart  = 0xF0
	sysexEnd    = 0xF7
	yamahaID    = 0x43
	format32    = 0x09 // 32-voice bulk
	sizeMSB4096 = 0x20 // 4096 = 0x20<<7 | 0x00
	sizeLSB4096 = 0x00
)

type ValidationKind int

const (
	BadStartMarker ValidationKind = iota + 1
	BadVendorID
	BadSubStatus
	BadFormat
	BadSize
	BadEndMarker
	ChecksumMismatch
)

// ValidationError reports the first check a bank failed.
type ValidationError struct {
	Kind ValidationKind

	// Checksum values, set for ChecksumMismatch only.
	Expected byte
	Actual   byte
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case BadStartMarker:
		return "did not find sysex start F0"
	case BadVendorID:
		return "did not find Yamaha 0x43"
	case BadSubStatus:
		return "did not find substatus 0 and channel 1"
	case BadFormat:
		return "did not find format 9 (32 voices)"
	case BadSize:
		return "did not find size 4096"
	case BadEndMarker:
		return "did not find sysex end F7"
	case ChecksumMismatch:
		return fmt.Sprintf("checksum failed: should have been 0x%X, found 0x%X", e.Expected, e.Actual)
	}
	return fmt.Sprintf("validation failed (kind %d)", int(e.Kind))
}

// IsStructural reports whether the error concerns the envelope rather
// than the checksum.
func (e *ValidationError) IsStructural() bool {
	return e.Kind != ChecksumMismatch
}

// Checksum is the two's complement of the 7-bit sum of payload, masked
// to 7 bits.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b & 0x7F
	}
	return (^sum + 1) & 0x7F
}

// Verify checks the envelope, then the checksum. The first failure is
// returned as a *ValidationError.
func Verify(b *Bank) error {
	checks := []struct {
		kind ValidationKind
		ok   bool
	}{
		{BadStartMarker, b.raw[startIdx] == sysexStart},
		{BadVendorID, b.raw[vendorIdx] == yamahaID},
		{BadSubStatus, b.raw[subStatusIdx] == 0},
		{BadFormat, b.raw[formatIdx] == format32},
		{BadSize, b.raw[sizeMSBIdx] == sizeMSB4096 && b.raw[sizeLSBIdx] == sizeLSB4096},
		{BadEndMarker, b.raw[endIdx] == sysexEnd},
	}
	for _, c := range checks {
		if !c.ok {
			return &ValidationError{Kind: c.kind}
		}
	}

	sum := Checksum(b.Payload())
	stored := b.StoredChecksum() & 0x7F
	if sum != stored {
		return &ValidationError{Kind: ChecksumMismatch, Expected: sum, Actual: stored}
	}
	return nil
}
