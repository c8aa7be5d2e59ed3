package source_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vle-forge/irritator-sub000/source"
)

func TestConstantProviderCyclesValues(t *testing.T) {
	p := &source.ConstantProvider{Values: []float64{1, 2, 3}}
	d := source.NewDriver(1)
	id := d.Register(p)
	if err := d.Prepare(); err != nil {
		t.Fatalf("Prepare() = %v", err)
	}

	src, err := d.Mount(source.KindConstant, id, 0)
	if err != nil {
		t.Fatalf("Mount() = %v", err)
	}

	for round := 0; round < 2; round++ {
		for _, want := range []float64{1, 2, 3} {
			got, err := src.Next()
			if err != nil {
				t.Fatalf("Next() = %v", err)
			}
			if got != want {
				t.Fatalf("Next() = %v, want %v", got, want)
			}
		}
	}
}

func TestSourceIsEmptyBeforeFirstNext(t *testing.T) {
	p := &source.ConstantProvider{Values: []float64{7, 8}}
	d := source.NewDriver(1)
	id := d.Register(p)
	d.Prepare()
	src, _ := d.Mount(source.KindConstant, id, 0)

	if !src.IsEmpty() {
		t.Fatal("freshly mounted source should report empty before any Next()")
	}
	if _, err := src.Next(); err != nil {
		t.Fatalf("Next() = %v", err)
	}
	if src.IsEmpty() {
		t.Fatal("source should not be empty right after a refill with more data pending")
	}
}

func TestTextFileProviderReadsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.txt")
	if err := os.WriteFile(path, []byte("1.5 2.5 3.5\n4.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &source.TextFileProvider{Path: path}
	d := source.NewDriver(1)
	id := d.Register(p)
	if err := d.Prepare(); err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	defer d.Finalize()

	src, err := d.Mount(source.KindTextFile, id, 0)
	if err != nil {
		t.Fatalf("Mount() = %v", err)
	}

	want := []float64{1.5, 2.5, 3.5, 4.5}
	for _, w := range want {
		got, err := src.Next()
		if err != nil {
			t.Fatalf("Next() = %v", err)
		}
		if got != w {
			t.Fatalf("Next() = %v, want %v", got, w)
		}
	}

	if _, err := src.Next(); err == nil {
		t.Fatal("expected exhaustion error after reading all values")
	}
}

func TestRandomProviderDistinctClientsIndependentStreams(t *testing.T) {
	p := &source.RandomProvider{Distribution: source.DistUniform, A: 0, B: 1, Seed: 42}
	d := source.NewDriver(1)
	id := d.Register(p)
	d.Prepare()

	src0, _ := d.Mount(source.KindRandom, id, 0)
	src1, _ := d.Mount(source.KindRandom, id, 1)

	v0, _ := src0.Next()
	v1, _ := src1.Next()
	if v0 == v1 {
		t.Fatalf("expected independent client streams to diverge, both gave %v", v0)
	}
	if v0 < 0 || v0 >= 1 || v1 < 0 || v1 >= 1 {
		t.Fatalf("uniform(0,1) samples out of range: %v %v", v0, v1)
	}
}

func TestBinaryFileProviderRoundTripsDoubles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.bin")

	// Build a tiny little-endian double stream by hand.
	want := []float64{1, -2.5, 3.25}
	buf := make([]byte, 0, len(want)*8)
	for _, v := range want {
		var b [8]byte
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			b[i] = byte(bits >> (8 * i))
		}
		buf = append(buf, b[:]...)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	p := &source.BinaryFileProvider{Path: path, MaxClients: 1}
	d := source.NewDriver(1)
	id := d.Register(p)
	if err := d.Prepare(); err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	defer d.Finalize()

	src, err := d.Mount(source.KindBinaryFile, id, 0)
	if err != nil {
		t.Fatalf("Mount() = %v", err)
	}

	for _, w := range want {
		got, err := src.Next()
		if err != nil {
			t.Fatalf("Next() = %v", err)
		}
		if got != w {
			t.Fatalf("Next() = %v, want %v", got, w)
		}
	}
}
