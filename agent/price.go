package agent

import "math"

// Round2 rounds v to two decimal places, matching the currency precision
// every price in the catalogue and wire payloads is expressed in.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
