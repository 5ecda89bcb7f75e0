package core

import "math"

// CatmullRomWeights computes the four spline weights for evaluating a
// Catmull-Rom interpolant over nodes at x. The weights apply to the samples
// starting at offset; entries referring to samples outside the table are zero.
// It reports false when x lies outside the node range.
func CatmullRomWeights(nodes []float64, x float64) (offset int, weights [4]float64, ok bool) {
	size := len(nodes)
	if size < 2 || !(x >= nodes[0] && x <= nodes[size-1]) {
		return 0, weights, false
	}

	idx := FindInterval(size, func(i int) bool { return nodes[i] <= x })
	offset = idx - 1
	x0, x1 := nodes[idx], nodes[idx+1]

	t := (x - x0) / (x1 - x0)
	t2 := t * t
	t3 := t2 * t

	weights[1] = 2*t3 - 3*t2 + 1
	weights[2] = -2*t3 + 3*t2

	if idx > 0 {
		w0 := (t3 - 2*t2 + t) * (x1 - x0) / (x1 - nodes[idx-1])
		weights[0] = -w0
		weights[2] += w0
	} else {
		w0 := t3 - 2*t2 + t
		weights[0] = 0
		weights[1] -= w0
		weights[2] += w0
	}

	if idx+2 < size {
		w3 := (t3 - t2) * (x1 - x0) / (nodes[idx+2] - x0)
		weights[1] -= w3
		weights[3] = w3
	} else {
		w3 := t3 - t2
		weights[1] -= w3
		weights[2] += w3
		weights[3] = 0
	}
	return offset, weights, true
}

// splineDerivatives estimates the endpoint derivatives of segment i, scaled
// by the segment width
func splineDerivatives(x []float64, at func(int) float64, i int) (d0, d1 float64) {
	n := len(x)
	x0, x1 := x[i], x[i+1]
	f0, f1 := at(i), at(i+1)
	width := x1 - x0
	if i > 0 {
		d0 = width * (f1 - at(i-1)) / (x1 - x[i-1])
	} else {
		d0 = f1 - f0
	}
	if i+2 < n {
		d1 = width * (at(i+2) - f0) / (x[i+2] - x0)
	} else {
		d1 = f1 - f0
	}
	return d0, d1
}

// IntegrateCatmullRom integrates the spline through (x, values), writing
// the running integral at every node into cdf, and returns the total.
func IntegrateCatmullRom(x, values, cdf []float64) float64 {
	n := len(x)
	at := func(i int) float64 { return values[i] }
	sum := 0.0
	cdf[0] = 0
	for i := 0; i < n-1; i++ {
		f0, f1 := values[i], values[i+1]
		width := x[i+1] - x[i]
		d0, d1 := splineDerivatives(x, at, i)
		sum += ((d0-d1)*(1.0/12.0) + (f0+f1)*0.5) * width
		cdf[i+1] = sum
	}
	return sum
}

// InvertCatmullRom finds x such that the monotonic spline through
// (x, values) equals u. Values outside the range clamp to the end nodes.
func InvertCatmullRom(x, values []float64, u float64) float64 {
	n := len(x)
	if !(u > values[0]) {
		return x[0]
	}
	if !(u < values[n-1]) {
		return x[n-1]
	}

	i := FindInterval(n, func(i int) bool { return values[i] <= u })
	x0, x1 := x[i], x[i+1]
	f0, f1 := values[i], values[i+1]
	width := x1 - x0
	d0, d1 := splineDerivatives(x, func(j int) float64 { return values[j] }, i)

	// Newton-bisection on the Hermite segment
	a, b, t := 0.0, 1.0, 0.5
	for {
		if !(t > a && t < b) {
			t = 0.5 * (a + b)
		}
		t2 := t * t
		t3 := t2 * t

		fhatInt := (2*t3-3*t2+1)*f0 + (-2*t3+3*t2)*f1 + (t3-2*t2+t)*d0 + (t3-t2)*d1
		fhat := (6*t2-6*t)*f0 + (-6*t2+6*t)*f1 + (3*t2-4*t+1)*d0 + (3*t2-2*t)*d1

		if math.Abs(fhatInt-u) < 1e-6 || b-a < 1e-6 {
			break
		}
		if fhatInt-u < 0 {
			a = t
		} else {
			b = t
		}
		t -= (fhatInt - u) / fhat
	}
	return x0 + t*width
}

// SampleCatmullRom2D samples the second dimension of a 2D spline table at
// the first-dimension parameter alpha. values and cdf are size1 x size2,
// row-major over nodes1. It returns the sampled position, the spline value
// there and the density of the sample; a zero density means alpha was out
// of range.
func SampleCatmullRom2D(nodes1, nodes2, values, cdf []float64, alpha, u float64) (x, fval, pdf float64) {
	size2 := len(nodes2)
	offset, weights, ok := CatmullRomWeights(nodes1, alpha)
	if !ok {
		return 0, 0, 0
	}

	interpolate := func(array []float64, idx int) float64 {
		value := 0.0
		for i := 0; i < 4; i++ {
			if weights[i] != 0 {
				value += array[(offset+i)*size2+idx] * weights[i]
			}
		}
		return value
	}

	maximum := interpolate(cdf, size2-1)
	if maximum <= 0 {
		return 0, 0, 0
	}
	u *= maximum
	idx := FindInterval(size2, func(i int) bool { return interpolate(cdf, i) <= u })

	f0, f1 := interpolate(values, idx), interpolate(values, idx+1)
	x0, x1 := nodes2[idx], nodes2[idx+1]
	width := x1 - x0
	d0, d1 := splineDerivatives(nodes2, func(i int) float64 { return interpolate(values, i) }, idx)

	u = (u - interpolate(cdf, idx)) / width

	var t float64
	if f0 != f1 {
		t = (f0 - SafeSqrt(f0*f0+2*u*(f1-f0))) / (f0 - f1)
	} else {
		t = u / f0
	}

	a, b := 0.0, 1.0
	var fhatInt, fhat float64
	for {
		if !(t >= a && t <= b) {
			t = 0.5 * (a + b)
		}
		fhatInt = t * (f0 + t*(0.5*d0+t*((1.0/3.0)*(-2*d0-d1)+f1-f0+t*(0.25*(d0+d1)+0.5*(f0-f1)))))
		fhat = f0 + t*(d0+t*(-2*d0-d1+3*(f1-f0)+t*(d0+d1+2*(f0-f1))))

		if math.Abs(fhatInt-u) < 1e-6 || b-a < 1e-6 {
			break
		}
		if fhatInt-u < 0 {
			a = t
		} else {
			b = t
		}
		t -= (fhatInt - u) / fhat
	}

	return x0 + width*t, fhat, fhat / maximum
}

// Fourier evaluates the cosine series sum a[k] cos(k phi) for k < m
func Fourier(a []float64, m int, cosPhi float64) float64 {
	value := 0.0
	cosKMinusOnePhi := cosPhi
	cosKPhi := 1.0
	for k := 0; k < m; k++ {
		value += a[k] * cosKPhi
		cosKPlusOnePhi := 2*cosPhi*cosKPhi - cosKMinusOnePhi
		cosKMinusOnePhi = cosKPhi
		cosKPhi = cosKPlusOnePhi
	}
	return value
}

// SampleFourier importance-samples phi in [0, 2pi) proportionally to the
// cosine series ak. recip holds 1/k. It returns the series value at phi,
// the density of the sample and phi itself.
func SampleFourier(ak, recip []float64, m int, u float64) (f, pdf, phi float64) {
	flip := u >= 0.5
	if flip {
		u = 1 - 2*(u-0.5)
	} else {
		u *= 2
	}

	a, b := 0.0, math.Pi
	phi = 0.5 * math.Pi
	var fInt float64
	for {
		cosPhi := math.Cos(phi)
		sinPhi := SafeSqrt(1 - cosPhi*cosPhi)
		cosPhiPrev, cosPhiCur := cosPhi, 1.0
		sinPhiPrev, sinPhiCur := -sinPhi, 0.0

		fInt = ak[0] * phi
		f = ak[0]
		for k := 1; k < m; k++ {
			sinPhiNext := 2*cosPhi*sinPhiCur - sinPhiPrev
			cosPhiNext := 2*cosPhi*cosPhiCur - cosPhiPrev
			sinPhiPrev, sinPhiCur = sinPhiCur, sinPhiNext
			cosPhiPrev, cosPhiCur = cosPhiCur, cosPhiNext

			fInt += ak[k] * recip[k] * sinPhiNext
			f += ak[k] * cosPhiNext
		}
		fInt -= u * ak[0] * math.Pi

		if fInt > 0 {
			b = phi
		} else {
			a = phi
		}
		if math.Abs(fInt) < 1e-6 || b-a < 1e-6 {
			break
		}

		phi -= fInt / f
		if !(phi > a && phi < b) {
			phi = 0.5 * (a + b)
		}
	}

	if flip {
		phi = 2*math.Pi - phi
	}
	return f, Inv2Pi * f / ak[0], phi
}
