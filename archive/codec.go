package archive

import (
	"bytes"
	"encoding/binary"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) f64(v float64) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) i64(v int64)   { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u64(v uint64)  { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u32(v uint32)  { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u16(v uint16)  { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) int_(v int)    { w.i64(int64(v)) }
func (w *writer) id(v kernel.ID) { w.u64(uint64(v)) }

func (w *writer) u8(v uint8) { w.buf.WriteByte(v) }

func (w *writer) str(s string) {
	w.int_(len(s))
	w.buf.WriteString(s)
}

func (w *writer) raw(b []byte) { w.buf.Write(b) }

func (w *writer) bytes() []byte { return w.buf.Bytes() }

type reader struct {
	r   *bytes.Reader
	err error
}

func newReader(data []byte) *reader {
	return &reader{r: bytes.NewReader(data)}
}

func (r *reader) read(v interface{}) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

func (r *reader) f64() float64 {
	var v float64
	r.read(&v)
	return v
}

func (r *reader) i64() int64 {
	var v int64
	r.read(&v)
	return v
}

func (r *reader) u64() uint64 {
	var v uint64
	r.read(&v)
	return v
}

func (r *reader) u32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

func (r *reader) u16() uint16 {
	var v uint16
	r.read(&v)
	return v
}

func (r *reader) int_() int      { return int(r.i64()) }
func (r *reader) id() kernel.ID  { return kernel.ID(r.u64()) }

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = err
		return 0
	}
	return b
}

func (r *reader) str() string {
	n := r.int_()
	if n <= 0 || r.err != nil {
		return ""
	}
	buf := make([]byte, n)
	if _, err := r.r.Read(buf); err != nil {
		r.err = err
		return ""
	}
	return string(buf)
}

func (r *reader) raw(n int) []byte {
	buf := make([]byte, n)
	if r.err != nil {
		return buf
	}
	if _, err := r.r.Read(buf); err != nil {
		r.err = err
	}
	return buf
}

func (r *reader) error() error { return r.err }

// providerKind mirrors source.Kind but is owned by this package so the
// four provider Go types each get a stable on-disk tag independent of how
// source.Kind is used for per-mount bookkeeping.
type providerKind uint8

const (
	providerConstant providerKind = iota
	providerBinaryFile
	providerTextFile
	providerRandom
)

func providerKindOf(p source.Provider) (providerKind, bool) {
	switch p.(type) {
	case *source.ConstantProvider:
		return providerConstant, true
	case *source.BinaryFileProvider:
		return providerBinaryFile, true
	case *source.TextFileProvider:
		return providerTextFile, true
	case *source.RandomProvider:
		return providerRandom, true
	default:
		return 0, false
	}
}

func marshalProvider(w *writer, p source.Provider) *status.Error {
	kind, ok := providerKindOf(p)
	if !ok {
		return status.New(status.ErrArchiveUnknownKind, "")
	}
	w.u8(uint8(kind))
	switch v := p.(type) {
	case *source.ConstantProvider:
		w.int_(len(v.Values))
		for _, f := range v.Values {
			w.f64(f)
		}
	case *source.BinaryFileProvider:
		w.str(v.Path)
		w.int_(v.MaxClients)
	case *source.TextFileProvider:
		w.str(v.Path)
	case *source.RandomProvider:
		w.u8(uint8(v.Distribution))
		w.f64(v.A)
		w.f64(v.B)
		w.i64(v.Seed)
	}
	return nil
}

func unmarshalProvider(r *reader) (source.Provider, *status.Error) {
	kind := providerKind(r.u8())
	switch kind {
	case providerConstant:
		n := r.int_()
		values := make([]float64, n)
		for i := range values {
			values[i] = r.f64()
		}
		return &source.ConstantProvider{Values: values}, nil
	case providerBinaryFile:
		path := r.str()
		maxClients := r.int_()
		return &source.BinaryFileProvider{Path: path, MaxClients: maxClients}, nil
	case providerTextFile:
		path := r.str()
		return &source.TextFileProvider{Path: path}, nil
	case providerRandom:
		dist := source.Distribution(r.u8())
		a := r.f64()
		b := r.f64()
		seed := r.i64()
		return &source.RandomProvider{Distribution: dist, A: a, B: b, Seed: seed}, nil
	default:
		return nil, status.New(status.ErrArchiveUnknownKind, "")
	}
}
