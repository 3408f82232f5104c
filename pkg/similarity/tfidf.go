package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// vector is a sparse L2-normalized TF-IDF vector sorted by term id.
type vector struct {
	terms   []int
	weights []float64
}

func (v vector) empty() bool {
	return len(v.terms) == 0
}

// vectorizer holds a character n-gram vocabulary with smoothed inverse
// document frequencies.
type vectorizer struct {
	minN, maxN int
	vocab      map[string]int
	idf        []float64
}

// fitVectorizer builds the vocabulary and idf over docs. Every document
// counts once per distinct n-gram.
func fitVectorizer(docs []string, minN, maxN int) *vectorizer {
	v := &vectorizer{minN: minN, maxN: maxN, vocab: make(map[string]int)}

	var df []int
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, g := range v.ngrams(doc) {
			id, ok := v.vocab[g]
			if !ok {
				id = len(df)
				v.vocab[g] = id
				df = append(df, 0)
			}
			if !seen[id] {
				seen[id] = true
				df[id]++
			}
		}
	}

	n := float64(len(docs))
	v.idf = make([]float64, len(df))
	for id, f := range df {
		v.idf[id] = math.Log((1+n)/(1+float64(f))) + 1
	}
	return v
}

// transform vectorizes doc. N-grams outside the vocabulary are ignored.
func (v *vectorizer) transform(doc string) vector {
	counts := make(map[int]float64)
	for _, g := range v.ngrams(doc) {
		if id, ok := v.vocab[g]; ok {
			counts[id]++
		}
	}
	if len(counts) == 0 {
		return vector{}
	}

	out := vector{terms: make([]int, 0, len(counts))}
	for id := range counts {
		out.terms = append(out.terms, id)
	}
	sort.Ints(out.terms)

	out.weights = make([]float64, len(out.terms))
	var norm float64
	for i, id := range out.terms {
		w := counts[id] * v.idf[id]
		out.weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range out.weights {
		out.weights[i] /= norm
	}
	return out
}

// ngrams returns the character n-grams of doc after lower-casing and
// collapsing whitespace runs to one space.
func (v *vectorizer) ngrams(doc string) []string {
	runes := []rune(strings.Join(strings.FieldsFunc(strings.ToLower(doc), unicode.IsSpace), " "))
	var grams []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, string(runes[i:i+n]))
		}
	}
	return grams
}

// dot returns the dot product of two sparse vectors.
func dot(a, b vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			sum += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
