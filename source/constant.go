package source

import "github.com/vle-forge/irritator-sub000/status"

// ConstantProvider's buffer is the data: Update re-exposes Values in full
// each refill, wrapping next_index back to zero (per spec.md §4.7).
type ConstantProvider struct {
	Values []float64
}

func (p *ConstantProvider) Initialize() *status.Error { return nil }

func (p *ConstantProvider) Update(client int, buf []float64) (int, *status.Error) {
	return copy(buf, p.Values), nil
}

func (p *ConstantProvider) Restore(client int, chunkID [6]int64, chunkReal [2]float64) *status.Error {
	return nil
}

func (p *ConstantProvider) Finalize() *status.Error { return nil }
