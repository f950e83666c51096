// Package vector builds sparse TF-IDF vectors and ranks stored records by
// cosine similarity with a recency boost.
package vector

import (
	"math"
	"sort"
)

// Vector is a sparse term -> weight map.
type Vector = map[string]float64

// terms returns the keys of v in sorted order. Sums run in this order so
// identical vectors always produce bit-identical results.
func terms(v Vector) []string {
	keys := make([]string, 0, len(v))
	for t := range v {
		keys = append(keys, t)
	}
	sort.Strings(keys)
	return keys
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, t := range terms(v) {
		sum += v[t] * v[t]
	}
	return math.Sqrt(sum)
}

// Normalize divides every weight by the norm. A zero-norm vector is returned unchanged.
func Normalize(v Vector) Vector {
	n := Norm(v)
	if n == 0 {
		return v
	}
	out := make(Vector, len(v))
	for t, w := range v {
		out[t] = w / n
	}
	return out
}

// CosineSimilarity computes the cosine of the angle between a and b.
// Terms missing on one side contribute zero. Returns 0 if either side has zero magnitude.
func CosineSimilarity(a, b Vector) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for _, t := range terms(small) {
		dot += small[t] * large[t]
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (na * nb)
	// Guard against rounding just outside [-1, 1].
	return math.Max(-1, math.Min(1, sim))
}

// TopTerms returns up to n terms with the highest weight, ties broken by term.
func TopTerms(v Vector, n int) []string {
	top := terms(v)
	sort.SliceStable(top, func(i, j int) bool {
		return v[top[i]] > v[top[j]]
	})
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
