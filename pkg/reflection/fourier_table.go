package reflection

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/df07/go-scatter/pkg/core"
)

// FourierMagic opens every tabulated BSDF file
const FourierMagic = "SCATFUN\x01"

var (
	// ErrBadMagic reports a file that does not start with FourierMagic
	ErrBadMagic = errors.New("fourier: bad magic")
	// ErrUnsupported reports a header with flags, channels or bases this reader does not handle
	ErrUnsupported = errors.New("fourier: unsupported table layout")
	// ErrCorrupt reports header sizes beyond the reader's limits or
	// coefficient offsets outside the coefficient pool
	ErrCorrupt = errors.New("fourier: corrupt coefficient table")
)

// Header sizes beyond these limits are rejected before anything is allocated
const (
	MaxFourierMu     = 1024
	MaxFourierCoeffs = 1 << 26
	MaxFourierOrder  = 1 << 14
)

// readChunk bounds each binary read so allocation follows the bytes
// actually present rather than the sizes a header claims
const readChunk = 1 << 16

// fourierHeader is the fixed-size binary header following the magic.
// All fields are little-endian.
type fourierHeader struct {
	Flags     int32
	NMu       int32
	NCoeffs   int32
	MMax      int32
	NChannels int32
	NBases    int32
	_         [3]int32
	Eta       float32
	_         [4]int32
}

// FourierBSDFTable holds a measured BSDF as Fourier series in the azimuthal
// difference angle, tabulated over pairs of incident and outgoing polar
// cosines. It is read-only once loaded.
type FourierBSDFTable struct {
	Eta       float64
	MMax      int
	NChannels int
	Mu        []float64 // Sorted polar cosine nodes
	CDF       []float64 // Per (muO, muI) running integral over muI
	A0        []float64 // Per (muO, muI) constant Fourier term
	A         []float64 // Coefficient pool
	Order     []int     // Per (muO, muI) series order
	AOffset   []int     // Per (muO, muI) offset into A
	Recip     []float64 // 1/k for the azimuthal sampler
}

// ReadFourierBSDFTable loads a table from a file
func ReadFourierBSDFTable(filename string) (*FourierBSDFTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fourier: failed to open %q: %w", filename, err)
	}
	defer f.Close()

	t := &FourierBSDFTable{}
	if err := t.Decode(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("fourier: failed to read %q: %w", filename, err)
	}
	return t, nil
}

// Read loads filename into t and reports success. On failure the error is
// logged and t is left empty (zero channels), which lobes treat as
// contributing nothing.
func (t *FourierBSDFTable) Read(filename string) bool {
	loaded, err := ReadFourierBSDFTable(filename)
	if err != nil {
		core.Logger().Error("tabulated BSDF unavailable", "file", filename, "err", err)
		*t = FourierBSDFTable{}
		return false
	}
	*t = *loaded
	return true
}

// Empty reports whether the table carries no data
func (t *FourierBSDFTable) Empty() bool {
	return t == nil || t.NChannels == 0
}

// NMu returns the number of polar cosine nodes
func (t *FourierBSDFTable) NMu() int {
	return len(t.Mu)
}

// Decode parses the binary layout from r
func (t *FourierBSDFTable) Decode(r io.Reader) error {
	var magic [len(FourierMagic)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if string(magic[:]) != FourierMagic {
		return ErrBadMagic
	}

	var h fourierHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if h.Flags != 1 || (h.NChannels != 1 && h.NChannels != 3) || h.NBases != 1 {
		return fmt.Errorf("%w: flags=%d channels=%d bases=%d", ErrUnsupported, h.Flags, h.NChannels, h.NBases)
	}
	if h.NMu < 2 || h.NCoeffs < 0 || h.MMax < 1 ||
		h.NMu > MaxFourierMu || h.NCoeffs > MaxFourierCoeffs || h.MMax > MaxFourierOrder {
		return fmt.Errorf("%w: nMu=%d nCoeffs=%d mMax=%d", ErrCorrupt, h.NMu, h.NCoeffs, h.MMax)
	}

	nMu := int(h.NMu)
	mu, err := readFloats(r, nMu)
	if err != nil {
		return fmt.Errorf("reading mu: %w", err)
	}
	cdf, err := readFloats(r, nMu*nMu)
	if err != nil {
		return fmt.Errorf("reading cdf: %w", err)
	}
	offsetAndLength, err := readInt32s(r, nMu*nMu*2)
	if err != nil {
		return fmt.Errorf("reading offsets: %w", err)
	}
	a, err := readFloats(r, int(h.NCoeffs))
	if err != nil {
		return fmt.Errorf("reading coefficients: %w", err)
	}

	nChannels := int(h.NChannels)
	order := make([]int, nMu*nMu)
	aOffset := make([]int, nMu*nMu)
	a0 := make([]float64, nMu*nMu)
	for i := range order {
		offset, length := int(offsetAndLength[2*i]), int(offsetAndLength[2*i+1])
		if offset < 0 || length < 0 || length > int(h.MMax) || offset+length*nChannels > len(a) {
			return fmt.Errorf("%w: entry %d offset=%d length=%d", ErrCorrupt, i, offset, length)
		}
		order[i] = length
		aOffset[i] = offset
		if length > 0 {
			a0[i] = a[offset]
		}
	}

	recip := make([]float64, h.MMax)
	for i := 1; i < len(recip); i++ {
		recip[i] = 1 / float64(i)
	}

	*t = FourierBSDFTable{
		Eta:       float64(h.Eta),
		MMax:      int(h.MMax),
		NChannels: nChannels,
		Mu:        mu,
		CDF:       cdf,
		A0:        a0,
		A:         a,
		Order:     order,
		AOffset:   aOffset,
		Recip:     recip,
	}
	return nil
}

// Encode writes the table in the layout Decode reads
func (t *FourierBSDFTable) Encode(w io.Writer) error {
	if t.Empty() {
		return errors.New("fourier: cannot encode an empty table")
	}
	nMu := t.NMu()
	h := fourierHeader{
		Flags:     1,
		NMu:       int32(nMu),
		NCoeffs:   int32(len(t.A)),
		MMax:      int32(t.MMax),
		NChannels: int32(t.NChannels),
		NBases:    1,
		Eta:       float32(t.Eta),
	}
	if _, err := io.WriteString(w, FourierMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, values := range [][]float64{t.Mu, t.CDF} {
		if err := writeFloats(w, values); err != nil {
			return err
		}
	}
	offsetAndLength := make([]int32, 2*nMu*nMu)
	for i := range t.Order {
		offsetAndLength[2*i] = int32(t.AOffset[i])
		offsetAndLength[2*i+1] = int32(t.Order[i])
	}
	if err := binary.Write(w, binary.LittleEndian, offsetAndLength); err != nil {
		return err
	}
	return writeFloats(w, t.A)
}

// NewLambertianFourierTable builds a single-channel table describing an
// ideal diffuse reflector of the given albedo, tabulated on nMu evenly
// spaced polar cosines. It serves as reference data for tools and tests.
func NewLambertianFourierTable(nMu int, albedo float64) *FourierBSDFTable {
	if nMu < 2 {
		nMu = 2
	}
	mu := make([]float64, nMu)
	for i := range mu {
		mu[i] = -1 + 2*float64(i)/float64(nMu-1)
	}

	n := nMu * nMu
	t := &FourierBSDFTable{
		Eta:       1,
		MMax:      1,
		NChannels: 1,
		Mu:        mu,
		CDF:       make([]float64, n),
		A0:        make([]float64, n),
		Order:     make([]int, n),
		AOffset:   make([]int, n),
		Recip:     []float64{0},
	}
	for o := 0; o < nMu; o++ {
		for i := 0; i < nMu; i++ {
			idx := o*nMu + i
			t.AOffset[idx] = len(t.A)
			// Reflection pairs an incident cosine with an outgoing one of
			// opposite sign; the stored value carries the |muI| factor
			if mu[i]*mu[o] < 0 {
				a0 := albedo / math.Pi * math.Abs(mu[i])
				t.A = append(t.A, a0)
				t.A0[idx] = a0
				t.Order[idx] = 1
			}
		}
		core.IntegrateCatmullRom(mu, t.A0[o*nMu:(o+1)*nMu], t.CDF[o*nMu:(o+1)*nMu])
	}
	return t
}

// GetWeightsAndOffset returns the spline weights for polar cosine cosTheta
func (t *FourierBSDFTable) GetWeightsAndOffset(cosTheta float64) (int, [4]float64, bool) {
	return core.CatmullRomWeights(t.Mu, cosTheta)
}

// GetAk returns the coefficients of the (offsetI, offsetO) cell, all
// channels back to back, and the series order
func (t *FourierBSDFTable) GetAk(offsetI, offsetO int) ([]float64, int) {
	idx := offsetO*t.NMu() + offsetI
	m := t.Order[idx]
	start := t.AOffset[idx]
	return t.A[start : start+m*t.NChannels], m
}

func readFloats(r io.Reader, n int) ([]float64, error) {
	raw := make([]float32, min(n, readChunk))
	out := make([]float64, 0, len(raw))
	for len(out) < n {
		chunk := raw[:min(n-len(out), len(raw))]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		for _, v := range chunk {
			out = append(out, float64(v))
		}
	}
	return out, nil
}

func readInt32s(r io.Reader, n int) ([]int32, error) {
	out := make([]int32, 0, min(n, readChunk))
	chunk := make([]int32, min(n, readChunk))
	for len(out) < n {
		next := chunk[:min(n-len(out), len(chunk))]
		if err := binary.Read(r, binary.LittleEndian, next); err != nil {
			return nil, err
		}
		out = append(out, next...)
	}
	return out, nil
}

func writeFloats(w io.Writer, values []float64) error {
	raw := make([]float32, len(values))
	for i, v := range values {
		raw[i] = float32(v)
	}
	return binary.Write(w, binary.LittleEndian, raw)
}
