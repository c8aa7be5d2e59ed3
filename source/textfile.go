package source

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/tebeka/atexit"
	"github.com/vle-forge/irritator-sub000/status"
)

// TextFileProvider reads whitespace-separated ASCII doubles from a single
// stream, one chunk at a time; it has exactly one client, per spec.md §4.7.
type TextFileProvider struct {
	Path string

	file    *os.File
	scanner *bufio.Scanner
}

func (p *TextFileProvider) Initialize() *status.Error {
	f, err := os.Open(p.Path)
	if err != nil {
		return status.New(status.ErrUnknownSource, err.Error())
	}
	p.file = f
	p.scanner = bufio.NewScanner(f)
	p.scanner.Split(bufio.ScanWords)
	atexit.Register(func() { _ = p.file.Close() })
	return nil
}

func (p *TextFileProvider) Update(client int, buf []float64) (int, *status.Error) {
	count := 0
	for count < len(buf) && p.scanner.Scan() {
		token := strings.TrimSpace(p.scanner.Text())
		if token == "" {
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return count, status.New(status.ErrUnknownSource, err.Error())
		}
		buf[count] = v
		count++
	}
	return count, nil
}

func (p *TextFileProvider) Restore(client int, chunkID [6]int64, chunkReal [2]float64) *status.Error {
	// Re-opening and skipping chunkID[0] tokens would require re-scanning
	// from the start; text sources are not expected to support random
	// seek, so Restore is a no-op beyond Initialize (documented limitation).
	return nil
}

func (p *TextFileProvider) Finalize() *status.Error {
	if p.file == nil {
		return nil
	}
	if err := p.file.Close(); err != nil {
		return status.New(status.ErrUnknownSource, err.Error())
	}
	return nil
}
