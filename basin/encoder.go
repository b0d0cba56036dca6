// Package basin implements the text-to-vector encoder and the geometric
// measures computed over basin vectors.
//
// A basin vector is a fixed-dimension feature-hashed projection of a piece
// of text: each token is hashed with BLAKE2b, the low 32 bits select a
// bucket and one hash byte selects a sign, and the accumulated vector is
// L2-normalized. The encoding is deterministic and requires no external
// state; hash collisions are accepted and not corrected.
package basin

import (
	"encoding/binary"
	"math"
	"strings"
	"unicode"

	"github.com/go-crypt/x/blake2b"
)

const (
	// Dim is the default basin vector dimension.
	Dim = 64

	// KappaStar is the coupling constant: kappa = KappaStar * ||b||.
	KappaStar = 64.0
)

// tokenize lowercases text and splits it on non-alphanumeric boundaries.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Encode maps text to a basin vector of the given dimension.
// Empty or token-free text yields the all-zero vector; anything else is
// L2-normalized to unit length.
func Encode(text string, dim int) []float32 {
	vec := make([]float32, dim)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	for _, tok := range tokens {
		h, _ := blake2b.New(16, nil)
		h.Write([]byte(tok))
		sum := h.Sum(nil)

		i := binary.LittleEndian.Uint32(sum[:4]) % uint32(dim)
		if sum[4]&1 == 0 {
			vec[i] += 1
		} else {
			vec[i] -= 1
		}
	}

	n := Norm(vec)
	if n > 0 {
		inv := float32(1 / n)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// EncodeBatch encodes each text independently, preserving order.
func EncodeBatch(texts []string, dim int) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Encode(t, dim)
	}
	return out
}

// Norm returns the Euclidean norm of a vector.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
