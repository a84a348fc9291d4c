package hydrology

import (
	"hash/fnv"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const noiseAmplitude = 0.1

// NoiseSource yields multiplicative jitter for the progression simulator.
// Next must return a value in [-0.1, 0.1]. Implementations are not required
// to be safe for concurrent use; give each goroutine its own source.
type NoiseSource interface {
	Next() float64
}

// UniformNoise draws jitter uniformly from [-0.1, 0.1).
type UniformNoise struct {
	dist distuv.Uniform
}

// NewUniformNoise returns a source whose sequence is fully determined by seed.
func NewUniformNoise(seed uint64) *UniformNoise {
	return &UniformNoise{
		dist: distuv.Uniform{
			Min: -noiseAmplitude,
			Max: noiseAmplitude,
			Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		},
	}
}

// NewEntropyNoise returns a randomly seeded source for production runs.
func NewEntropyNoise() *UniformNoise {
	return NewUniformNoise(rand.Uint64())
}

// Next implements NoiseSource.
func (n *UniformNoise) Next() float64 {
	return n.dist.Rand()
}

// NoNoise always returns zero, producing the unperturbed curve.
type NoNoise struct{}

// Next implements NoiseSource.
func (NoNoise) Next() float64 { return 0 }

// DeriveSeed mixes a run seed with a record key so each record gets an
// independent, reproducible stream regardless of processing order.
func DeriveSeed(base uint64, key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return base ^ h.Sum64()
}
