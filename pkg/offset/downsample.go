package offset

import (
	"math"
)

// Downsample collapses the signal into an energy envelope: value i is the
// mean absolute amplitude of samples [i*factor, (i+1)*factor).
//
// The trailing samples that do not fill a whole block are dropped.
func Downsample(signal []float64, factor int) []float64 {
	if factor < 1 {
		factor = 1
	}
	envelope := make([]float64, len(signal)/factor)
	for i := range envelope {
		block := signal[i*factor : (i+1)*factor]
		var sum float64
		for _, v := range block {
			sum += math.Abs(v)
		}
		envelope[i] = sum / float64(factor)
	}
	return envelope
}
