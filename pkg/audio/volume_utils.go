package audio

import "math"

// volumeToPower maps a 0.0-1.0 volume to beep's base-2 exponent scale.
// 1.0 is unity gain; values near zero flip the Silent flag instead.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10 // Silent
	}
	return math.Log2(vol)
}
