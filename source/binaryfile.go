package source

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/tebeka/atexit"
	"github.com/vle-forge/irritator-sub000/status"
)

// BinaryFileProvider reads pre-allocated per-client chunks (512
// little-endian doubles each) from a shared file, one client offset per
// slot up to MaxClients, per spec.md §4.7.
type BinaryFileProvider struct {
	Path       string
	MaxClients int

	file    *os.File
	offsets []int64
}

func (p *BinaryFileProvider) Initialize() *status.Error {
	f, err := os.Open(p.Path)
	if err != nil {
		return status.New(status.ErrUnknownSource, err.Error())
	}
	p.file = f
	p.offsets = make([]int64, p.MaxClients)
	atexit.Register(func() { _ = p.file.Close() })
	return nil
}

func (p *BinaryFileProvider) Update(client int, buf []float64) (int, *status.Error) {
	if client < 0 || client >= p.MaxClients {
		return 0, status.New(status.ErrUnknownSource, "binary file client out of range")
	}

	raw := make([]byte, len(buf)*8)
	n, err := p.file.ReadAt(raw, p.offsets[client])
	if err != nil && err != io.EOF {
		return 0, status.New(status.ErrUnknownSource, err.Error())
	}

	count := n / 8
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		buf[i] = math.Float64frombits(bits)
	}
	p.offsets[client] += int64(count * 8)
	return count, nil
}

func (p *BinaryFileProvider) Restore(client int, chunkID [6]int64, chunkReal [2]float64) *status.Error {
	if client < 0 || client >= p.MaxClients {
		return status.New(status.ErrUnknownSource, "binary file client out of range")
	}
	p.offsets[client] = chunkID[0]
	return nil
}

func (p *BinaryFileProvider) Finalize() *status.Error {
	if p.file == nil {
		return nil
	}
	if err := p.file.Close(); err != nil {
		return status.New(status.ErrUnknownSource, err.Error())
	}
	return nil
}
