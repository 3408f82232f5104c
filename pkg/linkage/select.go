package linkage

import (
	"github.com/agentstation/peakmap/pkg/similarity"
)

// Select picks the winning candidate among the candidates of one source
// record. The best candidate overall wins unless the best candidate of the
// primary name (sequence 1) scores above primaryOverride, in which case it
// wins instead. ok is false when cands is empty.
//
// Ties go to the lower source sequence, then the lower target id, then the
// lower target sequence.
func Select(cands []similarity.Candidate, primaryOverride float64) (winner similarity.Candidate, ok bool) {
	var best, bestPrimary *similarity.Candidate
	for i := range cands {
		c := &cands[i]
		if best == nil || better(c, best) {
			best = c
		}
		if c.SourceSeq == 1 && (bestPrimary == nil || better(c, bestPrimary)) {
			bestPrimary = c
		}
	}
	if best == nil {
		return similarity.Candidate{}, false
	}
	if bestPrimary != nil && bestPrimary.Similarity > primaryOverride {
		return *bestPrimary, true
	}
	return *best, true
}

// better reports whether a ranks ahead of b.
func better(a, b *similarity.Candidate) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	if a.SourceSeq != b.SourceSeq {
		return a.SourceSeq < b.SourceSeq
	}
	if a.TargetID != b.TargetID {
		return a.TargetID < b.TargetID
	}
	return a.TargetSeq < b.TargetSeq
}
