package main

import "bytes"

// DupePair holds two 1-based voice numbers with I < J.
type DupePair struct {
	I int `json:"i" yaml:"i"`
	J int `json:"j" yaml:"j"`
}

// FindDupes reports every pair of voices whose stored records match byte
// for byte, name excluded. Unused bits take part in the comparison.
func FindDupes(b *Bank) []DupePair {
	var pairs []DupePair
	voices := b.Voices()
	for i := 0; i < len(voices)-1; i++ {
		for j := i + 1; j < len(voices); j++ {
			if bytes.Equal(voices[i].Raw()[:nameIdx], voices[j].Raw()[:nameIdx]) {
				pairs = append(pairs, DupePair{I: i + 1, J: j + 1})
			}
		}
	}
	return pairs
}
