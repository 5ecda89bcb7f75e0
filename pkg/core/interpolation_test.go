package core

import (
	"math"
	"testing"
)

func TestCatmullRomWeights(t *testing.T) {
	nodes := []float64{0, 0.5, 1.5, 2, 3}
	linear := func(x float64) float64 { return 2*x + 1 }

	tests := []struct {
		name string
		x    float64
	}{
		{"first node", 0},
		{"first segment", 0.2},
		{"interior node", 1.5},
		{"interior segment", 1.7},
		{"last segment", 2.6},
		{"last node", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, weights, ok := CatmullRomWeights(nodes, tt.x)
			if !ok {
				t.Fatalf("Expected %f to be in range", tt.x)
			}

			sum, value := 0.0, 0.0
			for i, w := range weights {
				sum += w
				if w != 0 {
					value += w * linear(nodes[offset+i])
				}
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("Expected weights to sum to 1, got %f", sum)
			}
			// The spline reproduces linear data exactly
			if math.Abs(value-linear(tt.x)) > 1e-12 {
				t.Errorf("Expected %f, got %f", linear(tt.x), value)
			}
		})
	}
}

func TestCatmullRomWeights_OutOfRange(t *testing.T) {
	nodes := []float64{0, 1, 2}
	for _, x := range []float64{-0.1, 2.1, math.NaN()} {
		if _, _, ok := CatmullRomWeights(nodes, x); ok {
			t.Errorf("Expected %f to be out of range", x)
		}
	}
}

func TestIntegrateCatmullRom(t *testing.T) {
	nodes := []float64{0, 0.5, 1.5, 2, 3}
	values := make([]float64, len(nodes))
	for i, x := range nodes {
		values[i] = 2*x + 1
	}
	cdf := make([]float64, len(nodes))

	// Integral of 2x+1 is x^2+x
	total := IntegrateCatmullRom(nodes, values, cdf)
	if math.Abs(total-12) > 1e-12 {
		t.Errorf("Expected total 12, got %f", total)
	}
	for i, x := range nodes {
		if math.Abs(cdf[i]-(x*x+x)) > 1e-12 {
			t.Errorf("Expected cdf[%d] = %f, got %f", i, x*x+x, cdf[i])
		}
	}
}

func TestInvertCatmullRom(t *testing.T) {
	nodes := []float64{0, 0.5, 1.5, 2, 3}
	values := make([]float64, len(nodes))
	for i, x := range nodes {
		values[i] = 2*x + 1
	}

	tests := []struct {
		name     string
		u        float64
		expected float64
	}{
		{"below range clamps", 0, 0},
		{"interior", 2.5, 0.75},
		{"another interior", 5.4, 2.2},
		{"above range clamps", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InvertCatmullRom(nodes, values, tt.u)
			if math.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestSampleCatmullRom2D(t *testing.T) {
	// Two identical rows holding f(x) = x on [0, 1]
	nodes1 := []float64{0, 1}
	nodes2 := []float64{0, 0.5, 1}
	values := []float64{0, 0.5, 1, 0, 0.5, 1}
	cdf := []float64{0, 0.125, 0.5, 0, 0.125, 0.5}

	tests := []struct {
		name string
		u    float64
	}{
		{"node boundary", 0.25},
		{"interior", 0.5},
		{"upper segment", 0.81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, fval, pdf := SampleCatmullRom2D(nodes1, nodes2, values, cdf, 0.3, tt.u)
			// The density is 2x, so x = sqrt(u)
			expected := math.Sqrt(tt.u)
			if math.Abs(x-expected) > 1e-4 {
				t.Errorf("Expected x=%f, got %f", expected, x)
			}
			if math.Abs(fval-x) > 1e-4 {
				t.Errorf("Expected f=%f, got %f", x, fval)
			}
			if math.Abs(pdf-2*x) > 1e-4 {
				t.Errorf("Expected pdf=%f, got %f", 2*x, pdf)
			}
		})
	}

	if _, _, pdf := SampleCatmullRom2D(nodes1, nodes2, values, cdf, 1.5, 0.5); pdf != 0 {
		t.Errorf("Expected zero pdf outside the first dimension, got %f", pdf)
	}
}

func TestFourier(t *testing.T) {
	a := []float64{1, 0.5, 0.25}
	cosPhi := 0.3

	tests := []struct {
		m        int
		expected float64
	}{
		{0, 0},
		{1, 1},
		{2, 1 + 0.5*cosPhi},
		{3, 1 + 0.5*cosPhi + 0.25*(2*cosPhi*cosPhi-1)},
	}

	for _, tt := range tests {
		if got := Fourier(a, tt.m, cosPhi); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Fourier with m=%d: expected %f, got %f", tt.m, tt.expected, got)
		}
	}
}

func TestSampleFourier(t *testing.T) {
	ak := []float64{1, 0.5}
	recip := []float64{0, 1}
	cdf := func(phi float64) float64 { return (phi + 0.5*math.Sin(phi)) / (2 * math.Pi) }

	for _, u := range []float64{0.05, 0.3, 0.5, 0.7, 0.95} {
		f, pdf, phi := SampleFourier(ak, recip, 2, u)
		if phi < 0 || phi >= 2*math.Pi {
			t.Fatalf("Expected phi in [0, 2pi), got %f", phi)
		}
		if math.Abs(cdf(phi)-u) > 1e-5 {
			t.Errorf("u=%f: expected cdf(phi)=u, got %f", u, cdf(phi))
		}
		if math.Abs(f-Fourier(ak, 2, math.Cos(phi))) > 1e-6 {
			t.Errorf("u=%f: expected f to match the series, got %f", u, f)
		}
		if math.Abs(pdf-f/(2*math.Pi)) > 1e-9 {
			t.Errorf("u=%f: expected pdf f/2pi, got %f", u, pdf)
		}
	}
}
