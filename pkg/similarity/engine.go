// Package similarity scores normalized peak names against each other.
//
// An Engine is fitted once on a source and a target corpus. It builds a
// character n-gram TF-IDF vocabulary over both corpora, then for any source
// name produces the target names whose cosine similarity reaches the floor,
// each scored by a blend of cosine, Jaro-Winkler and title similarity.
package similarity

import (
	"context"
	"sort"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/names"
)

// Candidate is a scored pairing of a source name with a target name.
type Candidate struct {
	SourceID   string  `json:"source_id" yaml:"source_id"`
	SourceSeq  int     `json:"source_seq" yaml:"source_seq"`
	SourceName string  `json:"source_name" yaml:"source_name"`
	TargetID   string  `json:"target_id" yaml:"target_id"`
	TargetSeq  int     `json:"target_seq" yaml:"target_seq"`
	TargetName string  `json:"target_name" yaml:"target_name"`
	CosSim     float64 `json:"cos_sim" yaml:"cos_sim"`
	EditSim    float64 `json:"edit_sim" yaml:"edit_sim"`
	TitleSim   float64 `json:"title_sim" yaml:"title_sim"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// Options tunes scoring.
type Options struct {
	// CosineFloor is the lowest cosine similarity a candidate may have.
	CosineFloor float64

	// MinN and MaxN bound the character n-gram lengths.
	MinN, MaxN int

	// TitleWeightPerToken and MaxTitleTokens set the title weight.
	TitleWeightPerToken float64
	MaxTitleTokens      int
}

// DefaultOptions returns the standard scoring parameters.
func DefaultOptions() Options {
	return Options{
		CosineFloor:         constants.CosineFloor,
		MinN:                constants.MinNGram,
		MaxN:                constants.MaxNGram,
		TitleWeightPerToken: constants.TitleWeightPerToken,
		MaxTitleTokens:      constants.MaxTitleTokens,
	}
}

// Option configures an Engine.
type Option func(*Options)

// WithOptions replaces all options.
func WithOptions(o Options) Option {
	return func(opts *Options) { *opts = o }
}

// WithCosineFloor sets the cosine floor.
func WithCosineFloor(floor float64) Option {
	return func(o *Options) { o.CosineFloor = floor }
}

// WithNGramRange sets the n-gram lengths.
func WithNGramRange(minN, maxN int) Option {
	return func(o *Options) { o.MinN, o.MaxN = minN, maxN }
}

// WithTitleWeight sets the title weight per source title token and the
// number of tokens that count.
func WithTitleWeight(perToken float64, maxTokens int) Option {
	return func(o *Options) { o.TitleWeightPerToken, o.MaxTitleTokens = perToken, maxTokens }
}

// Engine scores source names against a fixed target corpus. It is
// read-only after New and safe for concurrent use.
type Engine struct {
	opts     Options
	vec      *vectorizer
	targets  []names.Record
	postings map[int][]posting
}

// posting is one target containing a term, with the term's weight.
type posting struct {
	target int
	weight float64
}

// New fits an Engine on the union of the source and target corpora.
func New(sources, targets []names.Record, opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MinN < 1 {
		o.MinN = 1
	}
	if o.MaxN < o.MinN {
		o.MaxN = o.MinN
	}

	docs := make([]string, 0, len(sources)+len(targets))
	for _, r := range sources {
		docs = append(docs, r.Name)
	}
	for _, r := range targets {
		docs = append(docs, r.Name)
	}

	e := &Engine{
		opts:     o,
		vec:      fitVectorizer(docs, o.MinN, o.MaxN),
		targets:  targets,
		postings: make(map[int][]posting),
	}
	for i, r := range targets {
		v := e.vec.transform(r.Name)
		for j, term := range v.terms {
			e.postings[term] = append(e.postings[term], posting{target: i, weight: v.weights[j]})
		}
	}
	return e
}

// Options returns the options the Engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Candidates returns every target name scoring at least the cosine floor
// against src, in target corpus order. A name with no n-grams has no
// candidates.
func (e *Engine) Candidates(src names.Record) []Candidate {
	sv := e.vec.transform(src.Name)
	if sv.empty() {
		return nil
	}

	dots := make(map[int]float64)
	for i, term := range sv.terms {
		for _, p := range e.postings[term] {
			dots[p.target] += sv.weights[i] * p.weight
		}
	}

	hits := make([]int, 0, len(dots))
	for ti := range dots {
		hits = append(hits, ti)
	}
	sort.Ints(hits)

	var out []Candidate
	for _, ti := range hits {
		tgt := e.targets[ti]
		cos := clamp(dots[ti])
		if src.Name == tgt.Name {
			cos = 1
		}
		if cos <= 0 || cos < e.opts.CosineFloor {
			continue
		}
		out = append(out, e.score(src, tgt, cos))
	}
	return out
}

// Score scores a single pair regardless of the cosine floor. ok is false
// when the names share no n-gram.
func (e *Engine) Score(src, tgt names.Record) (Candidate, bool) {
	sv, tv := e.vec.transform(src.Name), e.vec.transform(tgt.Name)
	cos := clamp(dot(sv, tv))
	if src.Name == tgt.Name && !sv.empty() {
		cos = 1
	}
	if cos <= 0 {
		return Candidate{}, false
	}
	return e.score(src, tgt, cos), true
}

// Match returns the candidates of every source name grouped by source id.
func (e *Engine) Match(ctx context.Context, sources []names.Record) (map[string][]Candidate, error) {
	out := make(map[string][]Candidate)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[src.SourceID] = append(out[src.SourceID], e.Candidates(src)...)
	}
	return out, nil
}

func (e *Engine) score(src, tgt names.Record, cos float64) Candidate {
	edit := JaroWinkler(src.Name, tgt.Name)
	titleSim, blended := Blend(cos, edit, src.Title, tgt.Title, e.opts.TitleWeightPerToken, e.opts.MaxTitleTokens)
	return Candidate{
		SourceID:   src.SourceID,
		SourceSeq:  src.Sequence,
		SourceName: src.FullName,
		TargetID:   tgt.SourceID,
		TargetSeq:  tgt.Sequence,
		TargetName: tgt.FullName,
		CosSim:     cos,
		EditSim:    edit,
		TitleSim:   titleSim,
		Similarity: blended,
	}
}

// Blend combines cosine and edit similarity, then mixes in title
// similarity when either title is non-empty. The result is a convex
// combination of values in [0,1].
func Blend(cos, edit float64, sourceTitle, targetTitle string, perToken float64, maxTokens int) (titleSim, blended float64) {
	blended = (cos + edit) / 2
	if sourceTitle == "" && targetTitle == "" {
		return 0, clamp(blended)
	}

	titleSim = Jaccard(sourceTitle, targetTitle)
	w := clamp(TitleWeight(sourceTitle, perToken, maxTokens))
	return titleSim, clamp(w*titleSim + (1-w)*blended)
}
