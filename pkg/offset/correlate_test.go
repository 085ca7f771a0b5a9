package offset

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	e1 := []float64{1, 2, 3, 4}
	e2 := []float64{4, 3, 2, 1}

	t.Run("zero shift", func(t *testing.T) {
		assert.Equal(t, (4.0+6+6+4)/4, Score(e1, e2, 0, DefaultMaxSampleLength))
	})

	t.Run("positive shift reads e2 ahead", func(t *testing.T) {
		// e1[0..3) * e2[1..4)
		assert.Equal(t, (1.0*3+2*2+3*1)/3, Score(e1, e2, 1, DefaultMaxSampleLength))
	})

	t.Run("negative shift reads e1 ahead", func(t *testing.T) {
		// e1[2..4) * e2[0..2)
		assert.Equal(t, (3.0*4+4*3)/2, Score(e1, e2, -2, DefaultMaxSampleLength))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Zero(t, Score(e1, e2, 4, DefaultMaxSampleLength))
		assert.Zero(t, Score(e1, e2, -7, DefaultMaxSampleLength))
		assert.Zero(t, Score(nil, e2, 0, DefaultMaxSampleLength))
	})

	t.Run("sample length cap", func(t *testing.T) {
		assert.Equal(t, (4.0+6)/2, Score(e1, e2, 0, 2))
	})

	t.Run("overlap of the shorter envelope", func(t *testing.T) {
		// overlap is min(len)-|k| = 2-1, so only e1[0]*e2[1] counts.
		assert.Equal(t, 3.0, Score([]float64{1, 2}, e2, 1, DefaultMaxSampleLength))
	})

	t.Run("different lengths", func(t *testing.T) {
		// overlap is 3-1=2: e1[1]*e2[0] and e1[2]*e2[1].
		assert.Equal(t, (5.0*1+7*2)/2, Score([]float64{0, 5, 7}, []float64{1, 2, 3, 4, 5}, -1, DefaultMaxSampleLength))
		assert.Zero(t, Score([]float64{9}, []float64{1, 1, 1}, -1, DefaultMaxSampleLength))
	})
}

func TestCorrelate(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the shift", func(t *testing.T) {
		e1 := make([]float64, 50)
		e2 := make([]float64, 50)
		e1[10] = 1
		e2[17] = 1
		k, score := Correlate(ctx, e1, e2, 20, 1, DefaultMaxSampleLength, 1)
		assert.Equal(t, 7, k)
		assert.Equal(t, 1.0/43, score)
	})

	t.Run("ties resolve to the smallest shift", func(t *testing.T) {
		ones := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
		for _, parallelism := range []int{1, 2, 3, 8} {
			k, score := Correlate(ctx, ones, ones, 6, 1, DefaultMaxSampleLength, parallelism)
			assert.Equal(t, -6, k, "parallelism: %d", parallelism)
			assert.Equal(t, 1.0, score, "parallelism: %d", parallelism)
		}
	})

	t.Run("step skips candidates", func(t *testing.T) {
		e1 := make([]float64, 50)
		e2 := make([]float64, 50)
		e1[10] = 1
		e2[17] = 1
		// candidates are -20, -17, ..., 7, ...
		k, _ := Correlate(ctx, e1, e2, 20, 3, DefaultMaxSampleLength, 1)
		assert.Equal(t, 7, k)
		// candidates are -20, -16, ..., 4, 8, ...; none of them matches
		// so the first (all-zero) candidate wins.
		k, score := Correlate(ctx, e1, e2, 20, 4, DefaultMaxSampleLength, 1)
		assert.Equal(t, -20, k)
		assert.Zero(t, score)
	})

	t.Run("zero range", func(t *testing.T) {
		k, score := Correlate(ctx, []float64{1, 2}, []float64{3, 4}, 0, 1, DefaultMaxSampleLength, 4)
		assert.Zero(t, k)
		assert.Equal(t, (3.0+8)/2, score)
	})

	t.Run("non-positive step behaves like 1", func(t *testing.T) {
		e1 := []float64{0, 0, 1, 0}
		e2 := []float64{0, 0, 0, 1}
		k, _ := Correlate(ctx, e1, e2, 2, 0, DefaultMaxSampleLength, 1)
		assert.Equal(t, 1, k)
	})

	t.Run("parallel equals serial", func(t *testing.T) {
		rng := rand.New(rand.NewSource(0))
		for iteration := 0; iteration < 20; iteration++ {
			e1 := make([]float64, 100+rng.Intn(200))
			e2 := make([]float64, 100+rng.Intn(200))
			for i := range e1 {
				e1[i] = rng.Float64()
			}
			for i := range e2 {
				e2[i] = rng.Float64()
			}
			rangeSamples := 1 + rng.Intn(150)
			step := 1 + rng.Intn(3)

			serialK, serialScore := Correlate(ctx, e1, e2, rangeSamples, step, 64, 1)
			for _, parallelism := range []int{2, 3, 7, 16} {
				k, score := Correlate(ctx, e1, e2, rangeSamples, step, 64, parallelism)
				require.Equal(t, serialK, k, "iteration %d, parallelism %d", iteration, parallelism)
				require.Equal(t, serialScore, score)
			}
		}
	})
}

func BenchmarkCorrelate(b *testing.B) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(0))
	// one hour of audio at 48kHz downsampled by 100
	e1 := make([]float64, 3600*480)
	e2 := make([]float64, 3600*480)
	for i := range e1 {
		e1[i] = rng.Float64()
		e2[i] = rng.Float64()
	}
	for _, parallelism := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallelism%d", parallelism), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Correlate(ctx, e1, e2, 30*480, 1, DefaultMaxSampleLength, parallelism)
			}
		})
	}
}
