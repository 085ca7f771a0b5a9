package offset

import (
	"context"
	"math"
	"sync"

	"github.com/xaionaro-go/observability"
)

// Score returns the similarity of e1 and e2 with e2 shifted by k envelope
// samples: the dot product over the overlapping region divided by the amount
// of summed elements. At most maxSampleLength elements are summed.
//
// Indices outside of either envelope are read as zero. A candidate without
// any overlap scores zero.
func Score(e1, e2 []float64, k int, maxSampleLength int) float64 {
	overlap := min(len(e1), len(e2)) - abs(k)
	sampleLength := min(overlap, maxSampleLength)
	if sampleLength <= 0 {
		return 0
	}

	start1, start2 := -k, 0
	if k > 0 {
		start1, start2 = 0, k
	}

	var sum float64
	for i := 0; i < sampleLength; i++ {
		sum += at(e1, start1+i) * at(e2, start2+i)
	}
	return sum / float64(sampleLength)
}

func at(s []float64, idx int) float64 {
	if idx < 0 || idx >= len(s) {
		return 0
	}
	return s[idx]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type candidate struct {
	K     int
	Score float64
}

// isBetterThan reports whether c should replace the current best.
// Equal scores are resolved in favor of the smaller offset, which is what a
// serial scan from the negative bound with a strict comparison yields.
func (c candidate) isBetterThan(best candidate) bool {
	if c.Score > best.Score {
		return true
	}
	return c.Score == best.Score && c.K < best.K
}

// Correlate scans candidate offsets k = -rangeSamples, -rangeSamples+step, ...
// up to +rangeSamples and returns the one with the maximal Score.
//
// With parallelism > 1 the candidates are split between goroutines; the
// result is identical to the serial scan.
func Correlate(
	ctx context.Context,
	e1, e2 []float64,
	rangeSamples int,
	stepSamples int,
	maxSampleLength int,
	parallelism int,
) (int, float64) {
	if stepSamples < 1 {
		stepSamples = 1
	}
	if rangeSamples < 0 {
		rangeSamples = 0
	}
	count := 2*rangeSamples/stepSamples + 1

	if parallelism <= 1 || count < 2*parallelism {
		best := scanCandidates(e1, e2, -rangeSamples, stepSamples, 0, count, maxSampleLength)
		return best.K, best.Score
	}

	chunkSize := (count + parallelism - 1) / parallelism
	results := make([]candidate, 0, parallelism)
	var (
		wg     sync.WaitGroup
		locker sync.Mutex
	)
	for from := 0; from < count; from += chunkSize {
		to := min(from+chunkSize, count)
		wg.Add(1)
		observability.Go(ctx, func() {
			defer wg.Done()
			best := scanCandidates(e1, e2, -rangeSamples, stepSamples, from, to, maxSampleLength)
			locker.Lock()
			defer locker.Unlock()
			results = append(results, best)
		})
	}
	wg.Wait()

	best := candidate{Score: math.Inf(-1)}
	for idx, c := range results {
		if idx == 0 || c.isBetterThan(best) {
			best = c
		}
	}
	return best.K, best.Score
}

// scanCandidates evaluates the candidates with indexes [from, to), where the
// candidate with index j is the offset origin+j*step.
func scanCandidates(
	e1, e2 []float64,
	origin int,
	step int,
	from, to int,
	maxSampleLength int,
) candidate {
	best := candidate{K: origin + from*step, Score: math.Inf(-1)}
	for j := from; j < to; j++ {
		k := origin + j*step
		score := Score(e1, e2, k, maxSampleLength)
		if score > best.Score {
			best = candidate{K: k, Score: score}
		}
	}
	return best
}
