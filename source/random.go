package source

import (
	"math/rand"

	"github.com/vle-forge/irritator-sub000/status"
)

// Distribution enumerates the PRNG distributions a RandomProvider can
// sample from.
type Distribution uint8

const (
	DistUniform Distribution = iota
	DistNormal
	DistExponential
	DistBernoulli
)

// RandomProvider samples its configured Distribution independently per
// client: each client gets its own generator, seeded Seed+client on first
// use. The distribution parameters are the A and B fields; neither they nor
// the generator state are written to a Source's ChunkID or ChunkReal.
//
// Parameters by distribution:
//
//	Uniform:     A = min, B = max
//	Normal:      A = mean, B = stddev
//	Exponential: A = lambda
//	Bernoulli:   A = P(1)
type RandomProvider struct {
	Distribution Distribution
	A, B         float64
	Seed         int64

	rngs []*rand.Rand
}

func (p *RandomProvider) Initialize() *status.Error {
	p.rngs = nil
	return nil
}

func (p *RandomProvider) clientRNG(client int) *rand.Rand {
	for len(p.rngs) <= client {
		seed := p.Seed + int64(len(p.rngs))
		p.rngs = append(p.rngs, rand.New(rand.NewSource(seed)))
	}
	return p.rngs[client]
}

func (p *RandomProvider) sample(r *rand.Rand) float64 {
	switch p.Distribution {
	case DistUniform:
		return p.A + r.Float64()*(p.B-p.A)
	case DistNormal:
		return p.A + r.NormFloat64()*p.B
	case DistExponential:
		if p.A == 0 {
			return 0
		}
		return r.ExpFloat64() / p.A
	case DistBernoulli:
		if r.Float64() < p.A {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (p *RandomProvider) Update(client int, buf []float64) (int, *status.Error) {
	r := p.clientRNG(client)
	for i := range buf {
		buf[i] = p.sample(r)
	}
	return len(buf), nil
}

// Restore reseeds the client's generator from the archived seed. Only the
// seed, not the full internal generator state, survives a round trip
// (documented limitation: replay after dearchive resumes the distribution,
// not the exact byte-for-byte stream).
func (p *RandomProvider) Restore(client int, chunkID [6]int64, chunkReal [2]float64) *status.Error {
	for len(p.rngs) <= client {
		p.rngs = append(p.rngs, nil)
	}
	p.rngs[client] = rand.New(rand.NewSource(chunkID[0]))
	return nil
}

func (p *RandomProvider) Finalize() *status.Error { return nil }
