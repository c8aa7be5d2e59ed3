package archive

import (
	"github.com/rs/xid"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/simulation"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

// Magic and Version identify the on-disk stream, per spec.md §6. Mode is
// reserved for a future partial-archive selector; this implementation only
// ever writes/reads ModeAll.
const (
	Magic   uint32 = 0x11223344
	Version uint16 = 1
)

// Mode selects which part of a simulation an archive covers. Only ModeAll
// is implemented; the field is carried in the header so a future partial
// mode (e.g. connections-only) can be added without breaking the layout.
type Mode uint8

const ModeAll Mode = 0

// Header is the fixed-size preamble every archive stream opens with.
type Header struct {
	Magic   uint32
	Length  uint32
	Version uint16
	Mode    Mode
	RunID   xid.ID
}

func (h Header) marshal(w *writer) {
	w.u32(h.Magic)
	w.u32(h.Length)
	w.u16(h.Version)
	w.u8(uint8(h.Mode))
	w.raw(h.RunID.Bytes())
}

func unmarshalHeader(r *reader) Header {
	var h Header
	h.Magic = r.u32()
	h.Length = r.u32()
	h.Version = r.u16()
	h.Mode = Mode(r.u8())
	copy(h.RunID[:], r.raw(12))
	return h
}

const headerSize = 4 + 4 + 2 + 1 + 12

// Archive serializes sim's mounted sources, every model's dynamics, and the
// full connection graph into a tagged byte stream: header, current
// simulation time, source count, model count, then each source's fields, each model's (tl, tn, kind,
// dynamics) record, then every connection tuple back to back until the end
// of the stream (spec.md §6).
func Archive(sim *simulation.Simulation) (Header, []byte, error) {
	body := &writer{}

	type sourceRecord struct {
		kind      source.Kind
		client    int
		chunkID   [6]int64
		chunkReal [2]float64
		provider  source.Provider
	}
	var sources []sourceRecord
	sim.IterateSources(func(id kernel.ID, src *source.Source) bool {
		sources = append(sources, sourceRecord{
			kind:      src.Kind,
			client:    src.Client,
			chunkID:   src.ChunkID,
			chunkReal: src.ChunkReal,
			provider:  src.Provider(),
		})
		return true
	})

	type modelRecord struct {
		kind Kind
		tl, tn kernel.Time
		payload []byte
	}
	var models []modelRecord
	var marshalErr *status.Error
	sim.IterateModels(func(id kernel.ID, m *simulation.Model) bool {
		kind, ok := kindOf(m.Dynamics)
		if !ok {
			marshalErr = status.New(status.ErrArchiveUnknownKind, "")
			return false
		}
		payload, err := m.Dynamics.(binaryCodec).MarshalBinary()
		if err != nil {
			marshalErr = status.New(status.ErrArchiveUnknownKind, err.Error())
			return false
		}
		models = append(models, modelRecord{kind: kind, tl: m.Tl(), tn: m.Tn(), payload: payload})
		return true
	})
	if marshalErr != nil {
		return Header{}, nil, marshalErr
	}

	body.f64(sim.T())
	body.int_(len(sources))
	body.int_(len(models))

	for _, s := range sources {
		body.u8(uint8(s.kind))
		body.int_(s.client)
		for _, v := range s.chunkID {
			body.i64(v)
		}
		for _, v := range s.chunkReal {
			body.f64(v)
		}
		if err := marshalProvider(body, s.provider); err != nil {
			return Header{}, nil, err
		}
	}

	for _, m := range models {
		body.u8(uint8(m.kind))
		body.f64(m.tl)
		body.f64(m.tn)
		body.int_(len(m.payload))
		body.raw(m.payload)
	}

	// Connection tuples, positional index (not arena id), until the body
	// ends — mirrors the original archiver's "read/write until EOF" loop.
	indexOf := make(map[kernel.ID]int)
	pos := 0
	sim.IterateModels(func(id kernel.ID, m *simulation.Model) bool {
		indexOf[id] = pos
		pos++
		return true
	})
	sim.IterateConnections(func(srcModel kernel.ID, srcPort int, dstModel kernel.ID, dstPort int) {
		body.int_(indexOf[srcModel])
		body.int_(srcPort)
		body.int_(indexOf[dstModel])
		body.int_(dstPort)
	})

	payload := body.bytes()

	h := Header{
		Magic:   Magic,
		Version: Version,
		Mode:    ModeAll,
		RunID:   xid.New(),
		Length:  uint32(headerSize + len(payload)),
	}

	out := &writer{}
	h.marshal(out)
	out.raw(payload)
	return h, out.bytes(), nil
}

// Dearchive rebuilds a fresh Simulation from a stream produced by Archive.
// limits/reserve/sourceCapacity size the new Simulation exactly as New
// would; the archived sources, models, and connections are then replayed
// into it in the same order they were written, so model/source arena
// indices line up without needing the original ids.
func Dearchive(data []byte, limits simulation.Limits, reserve simulation.Reserve, sourceCapacity int) (*simulation.Simulation, *status.Error) {
	r := newReader(data)
	h := unmarshalHeader(r)
	if h.Magic != Magic {
		return nil, status.New(status.ErrArchiveMagic, "")
	}
	if h.Version != Version {
		return nil, status.New(status.ErrArchiveVersion, "")
	}
	if int(h.Length) != len(data) {
		return nil, status.New(status.ErrArchiveTruncated, "")
	}

	sim := simulation.New(limits, reserve, sourceCapacity)

	t := r.f64()
	if r.error() != nil {
		return nil, status.New(status.ErrArchiveTruncated, r.error().Error())
	}
	numSources := r.int_()
	numModels := r.int_()

	type pendingSource struct {
		id        kernel.ID
		chunkID   [6]int64
		chunkReal [2]float64
	}
	pending := make([]pendingSource, 0, numSources)
	for i := 0; i < numSources; i++ {
		kind := source.Kind(r.u8())
		client := r.int_()
		var chunkID [6]int64
		for j := range chunkID {
			chunkID[j] = r.i64()
		}
		var chunkReal [2]float64
		for j := range chunkReal {
			chunkReal[j] = r.f64()
		}
		provider, err := unmarshalProvider(r)
		if err != nil {
			return nil, err
		}
		if r.error() != nil {
			return nil, status.New(status.ErrArchiveTruncated, r.error().Error())
		}

		providerID := sim.SourceDriver().Register(provider)
		id, mountErr := sim.MountSource(kind, providerID, client)
		if mountErr != nil {
			return nil, mountErr
		}
		pending = append(pending, pendingSource{id: id, chunkID: chunkID, chunkReal: chunkReal})
	}

	// Providers must open their resources (files, RNGs) before any Restore
	// call can re-establish a per-client cursor into them.
	if err := sim.SourceDriver().Prepare(); err != nil {
		return nil, err
	}

	for _, ps := range pending {
		src, srcErr := sim.Source(ps.id)
		if srcErr != nil {
			return nil, srcErr
		}
		if restoreErr := src.Restore(ps.chunkID, ps.chunkReal); restoreErr != nil {
			return nil, restoreErr
		}
	}

	sim.RestoreTime(t)

	modelIDs := make([]kernel.ID, 0, numModels)
	for i := 0; i < numModels; i++ {
		kind := Kind(r.u8())
		tl := r.f64()
		tn := r.f64()
		n := r.int_()
		payload := r.raw(n)
		if r.error() != nil {
			return nil, status.New(status.ErrArchiveTruncated, r.error().Error())
		}

		dyn, ok := newByKind(kind)
		if !ok {
			return nil, status.New(status.ErrArchiveUnknownKind, "")
		}
		if err := dyn.(binaryCodec).UnmarshalBinary(payload); err != nil {
			return nil, status.New(status.ErrArchiveTruncated, err.Error())
		}

		id := sim.AddModel(dyn)
		mdl := sim.Model(id)
		mdl.SetTimes(tl, tn)
		if restoreErr := sim.RestoreModel(id); restoreErr != nil {
			return nil, restoreErr
		}
		modelIDs = append(modelIDs, id)
	}

	for {
		srcIdx := r.int_()
		if r.error() != nil {
			break
		}
		srcPort := r.int_()
		dstIdx := r.int_()
		dstPort := r.int_()
		if r.error() != nil {
			break
		}
		if srcIdx < 0 || srcIdx >= len(modelIDs) || dstIdx < 0 || dstIdx >= len(modelIDs) {
			return nil, status.New(status.ErrArchiveTruncated, "connection tuple out of range")
		}
		if err := sim.Connect(modelIDs[srcIdx], srcPort, modelIDs[dstIdx], dstPort); err != nil {
			return nil, err
		}
	}

	return sim, nil
}
