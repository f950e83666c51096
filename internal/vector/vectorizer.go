package vector

import (
	"context"

	"github.com/rcliao/agent-recall/internal/lang"
)

// IDFSource supplies inverse document frequencies.
type IDFSource interface {
	IDF(ctx context.Context, term string) (float64, error)
}

// Vectorizer turns text into L2-normalized TF-IDF vectors.
type Vectorizer struct {
	langs *lang.Source
	idf   IDFSource
}

// NewVectorizer creates a Vectorizer.
func NewVectorizer(langs *lang.Source, idf IDFSource) *Vectorizer {
	return &Vectorizer{langs: langs, idf: idf}
}

// Tokens returns the tokens Vectorize would weigh.
func (v *Vectorizer) Tokens(text string) []string {
	return v.langs.Current().Tokenize(text, "")
}

// Vectorize returns tf*idf weights, normalized to unit length. Text without
// usable tokens yields an empty vector.
func (v *Vectorizer) Vectorize(ctx context.Context, text string) (Vector, error) {
	tokens := v.Tokens(text)
	if len(tokens) == 0 {
		return Vector{}, nil
	}

	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	total := float64(len(tokens))
	vec := make(Vector, len(counts))
	for term, n := range counts {
		idf, err := v.idf.IDF(ctx, term)
		if err != nil {
			return nil, err
		}
		vec[term] = float64(n) / total * idf
	}
	return Normalize(vec), nil
}
