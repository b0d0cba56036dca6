package basin

import (
	"errors"
	"math"
)

// ErrShapeMismatch is returned when two vectors of different lengths are
// compared with a measure that requires equal dimensions.
var ErrShapeMismatch = errors.New("basin vectors must have the same shape")

const defaultEps = 1e-8

// Distance is the angular distance between two basin vectors: the
// arccosine of their clipped cosine similarity. It is symmetric and
// non-negative. Returns +Inf if either vector has zero norm.
func Distance(a, b []float32) float64 {
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return math.Inf(1)
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}

	c := dot / (na * nb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// toSimplex projects a (possibly signed) basin vector onto the probability
// simplex via squared magnitude. Falls back to a uniform distribution when
// the total energy is non-finite or non-positive.
func toSimplex(v []float32, eps float64) []float64 {
	if len(v) == 0 {
		return nil
	}

	p := make([]float64, len(v))
	var s float64
	for i, x := range v {
		p[i] = float64(x) * float64(x)
		s += p[i]
	}
	if !isFinite(s) || s <= 0 {
		uniform := 1 / float64(len(v))
		for i := range p {
			p[i] = uniform
		}
		return p
	}

	for i := range p {
		p[i] /= s + eps
		if p[i] < eps {
			p[i] = eps
		} else if p[i] > 1 {
			p[i] = 1
		}
	}
	return p
}

// FisherRao is the Fisher-Rao distance between two basin vectors on the
// probability simplex:
//
//	d_FR(p, q) = 2 arccos( sum_i sqrt(p_i q_i) )
//
// where p and q are the simplex projections of a and b. Empty vectors are
// infinitely far apart; vectors of different lengths are a shape error.
func FisherRao(a, b []float32) (float64, error) {
	p := toSimplex(a, defaultEps)
	q := toSimplex(b, defaultEps)
	if len(p) == 0 || len(q) == 0 {
		return math.Inf(1), nil
	}
	if len(p) != len(q) {
		return 0, ErrShapeMismatch
	}

	var inner float64
	for i := range p {
		inner += math.Sqrt(p[i]*q[i] + defaultEps)
	}
	// Rounding can push the sum just past the arccos domain.
	if inner > 1-1e-6 {
		inner = 1 - 1e-6
	} else if inner < -1+1e-6 {
		inner = -1 + 1e-6
	}
	return 2 * math.Acos(inner), nil
}

// Phi is the integration score of a basin vector: one minus the normalized
// Shannon entropy of its simplex projection, clipped into [0, 1].
//
//   - Phi ~ 0: energy spread uniformly across dimensions
//   - Phi ~ 1: energy concentrated in fewer dimensions
func Phi(v []float32) float64 {
	p := toSimplex(v, defaultEps)
	if len(p) == 0 {
		return 0
	}

	var h float64
	for _, pi := range p {
		h -= pi * math.Log(pi+defaultEps)
	}
	hMax := math.Log(float64(len(p)))
	if hMax <= 0 {
		return 0
	}

	phi := 1 - h/hMax
	if phi < 0 {
		return 0
	}
	if phi > 1 {
		return 1
	}
	return phi
}

// Kappa is the coupling score of a basin vector, proportional to its
// magnitude: kappa = KappaStar * ||v||. Returns 0 for non-finite norms.
func Kappa(v []float32) float64 {
	n := Norm(v)
	if !isFinite(n) {
		return 0
	}
	return KappaStar * n
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
