package main

import (
	"fmt"
	"math"
	"strconv"
)

// OutOfRange is shown for stored values the format does not define.
const OutOfRange = "*out of range*"

var (
	onOffNames = []string{"Off", "On"}
	curveNames = []string{"-LIN", "-EXP", "+EXP", "+LIN"}
	waveNames  = []string{"Triangle", "Sawtooth Down", "Sawtooth Up", "Square", "Sine", "Sample and Hold"}
	modeNames  = []string{"Frequency (Ratio)", "Fixed Frequency (Hz)"}
	noteNames  = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
)

func lookup(names []string, x byte) string {
	if int(x) >= len(names) {
		return OutOfRange
	}
	return names[x]
}

func OnOff(x byte) string   { return lookup(onOffNames, x) }
func Curve(x byte) string   { return lookup(curveNames, x) }
func LFOWave(x byte) string { return lookup(waveNames, x) }
func Mode(x byte) string    { return lookup(modeNames, x) }

// Note names the pitch class of x.
func Note(x uint) string {
	return noteNames[x%12]
}

// Transpose renders the transpose setting; 24 is C3, the unshifted keyboard.
func Transpose(x byte) string {
	if x > 48 {
		return OutOfRange
	}
	return Note(uint(x)) + strconv.Itoa(int(x)/12+1)
}

// Breakpoint renders a level scaling breakpoint; 0 is A-1 and 99 is C8.
// The octave is computed one octave up and then lowered so that values
// below 3 do not truncate towards zero.
func Breakpoint(x byte) string {
	if x > 99 {
		return OutOfRange
	}
	octave := (int(x)-3+12)/12 - 1
	return Note(uint(x)+9) + strconv.Itoa(octave)
}

// RatioFrequency is the frequency multiplier of an operator in ratio mode.
func RatioFrequency(coarse, fine byte) float64 {
	c := float64(coarse)
	if coarse == 0 {
		c = 0.5
	}
	return c + float64(fine)*c/100
}

// FixedFrequency is the frequency in Hz of an operator in fixed mode.
func FixedFrequency(coarse, fine byte) float64 {
	power := float64(coarse%4) + float64(fine)/100
	return math.Pow(10, power)
}

// Detune maps the stored 0-14 value onto -7..+7.
func Detune(x byte) int {
	return int(x) - 7
}

// FormatFrequency renders the frequency line of an operator. Any mode
// other than 0 uses the fixed formula, as the hardware only looks at bit 0.
func FormatFrequency(mode, coarse, fine byte) string {
	if mode == 0 {
		return formatFloat(RatioFrequency(coarse, fine))
	}
	return formatFloat(FixedFrequency(coarse, fine)) + "Hz"
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6g", f)
}
