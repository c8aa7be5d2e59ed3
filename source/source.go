// Package source implements the external-source driver: a unified pull
// interface over constant vectors, binary files, text files, and PRNG
// distributions, each exposed through per-client chunked buffers. Grounded
// on spec.md §4.7 and the source/source_type enums in
// original_source/core.hpp.
package source

import "github.com/vle-forge/irritator-sub000/status"

// Kind tags which provider flavor a Source is mounted on.
type Kind uint8

const (
	KindConstant Kind = iota
	KindBinaryFile
	KindTextFile
	KindRandom
)

// ChunkSize is the default number of values a provider refills per Update,
// matching the original implementation's 512-double chunk constant.
const ChunkSize = 512

// Provider is implemented by each of the four data providers. Update
// refills buf (up to ChunkSize long) for the given client index and
// returns how many values it actually wrote (less than len(buf) signals
// end-of-data, not an error). Restore re-establishes a provider's
// per-client cursor from the archived (chunkID, chunkReal) pair, used when
// dearchiving a simulation.
type Provider interface {
	Initialize() *status.Error
	Update(client int, buf []float64) (int, *status.Error)
	Restore(client int, chunkID [6]int64, chunkReal [2]float64) *status.Error
	Finalize() *status.Error
}

// Source is the per-model handle into a provider: a view of the
// provider's current chunk plus a next_index cursor. ChunkID and ChunkReal
// hold the restore state last passed to Restore; refill does not update
// them, so they do not follow the read position.
type Source struct {
	Kind     Kind
	Client   int
	provider Provider

	chunk     []float64
	nextIndex int

	ChunkID   [6]int64
	ChunkReal [2]float64
}

// Provider returns the underlying provider this source was mounted on, so
// callers outside this package (the archiver) can inspect its concrete
// config without this package needing to know about archival.
func (s *Source) Provider() Provider { return s.provider }

// IsEmpty reports whether every value in the current chunk has been
// consumed; per the driver's invariant, a refill must happen before the
// next Next() call once this is true, which Next() does automatically.
func (s *Source) IsEmpty() bool {
	return s.nextIndex >= len(s.chunk)
}

// Next returns the next value from the source, refilling from the
// provider first if the current chunk is exhausted.
func (s *Source) Next() (float64, *status.Error) {
	if s.IsEmpty() {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	if s.IsEmpty() {
		return 0, status.New(status.ErrSourceExhausted, "")
	}
	v := s.chunk[s.nextIndex]
	s.nextIndex++
	return v, nil
}

func (s *Source) refill() *status.Error {
	if cap(s.chunk) < ChunkSize {
		s.chunk = make([]float64, ChunkSize)
	}
	n, err := s.provider.Update(s.Client, s.chunk[:cap(s.chunk)])
	if err != nil {
		return err
	}
	s.chunk = s.chunk[:n]
	s.nextIndex = 0
	return nil
}

// Restore re-establishes the source's cursor state from an archived
// snapshot, delegating the provider-specific part to the provider.
func (s *Source) Restore(chunkID [6]int64, chunkReal [2]float64) *status.Error {
	s.ChunkID = chunkID
	s.ChunkReal = chunkReal
	s.chunk = s.chunk[:0]
	s.nextIndex = 0
	return s.provider.Restore(s.Client, chunkID, chunkReal)
}
