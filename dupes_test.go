package main

import "testing"

func distinctVoices() [][]byte {
	voices := make([][]byte, VoiceCount)
	for i := range voices {
		rec := testVoice("VOICE")
		rec[112] = byte(i) // LFO speed
		voices[i] = rec
	}
	return voices
}

func TestFindDupesAllIdentical(t *testing.T) {
	b := mustParse(t, testBankBytes())
	pairs := FindDupes(b)

	if len(pairs) != 496 {
		t.Fatalf("found %d pairs, want 496", len(pairs))
	}
	if pairs[0] != (DupePair{1, 2}) || pairs[1] != (DupePair{1, 3}) || pairs[len(pairs)-1] != (DupePair{31, 32}) {
		t.Errorf("unexpected ordering: first %v %v, last %v", pairs[0], pairs[1], pairs[len(pairs)-1])
	}
	for k := 1; k < len(pairs); k++ {
		p, q := pairs[k-1], pairs[k]
		if p.I > q.I || (p.I == q.I && p.J >= q.J) {
			t.Fatalf("pairs out of order at %d: %v then %v", k, p, q)
		}
	}
}

func TestFindDupesNamesIgnored(t *testing.T) {
	voices := distinctVoices()
	voices[4] = append([]byte(nil), voices[9]...)
	copy(voices[4][nameIdx:], "OTHER NAME")

	pairs := FindDupes(mustParse(t, buildBank(voices)))
	if len(pairs) != 1 || pairs[0] != (DupePair{5, 10}) {
		t.Errorf("pairs = %v, want [{5 10}]", pairs)
	}
}

func TestFindDupesSingleByteDiffers(t *testing.T) {
	for _, idx := range []int{0, 11, 16, 101, 110, 116, 117} {
		voices := distinctVoices()
		voices[1] = append([]byte(nil), voices[0]...)
		voices[1][idx] ^= 0x01

		if pairs := FindDupes(mustParse(t, buildBank(voices))); len(pairs) != 0 {
			t.Errorf("byte %d differs but pairs = %v", idx, pairs)
		}
	}
}

func TestFindDupesComparesPaddingBits(t *testing.T) {
	voices := distinctVoices()
	voices[1] = append([]byte(nil), voices[0]...)
	voices[1][11] |= 0x80

	b := mustParse(t, buildBank(voices))
	if b.Voice(1).Operators[0] != b.Voice(2).Operators[0] {
		t.Fatal("decoded operators should be equal")
	}
	if pairs := FindDupes(b); len(pairs) != 0 {
		t.Errorf("unused bits differ but pairs = %v", pairs)
	}
}
