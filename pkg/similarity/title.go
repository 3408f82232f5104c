package similarity

import "strings"

// Jaccard returns the Jaccard similarity of the space-separated token sets
// of a and b. Two empty sets score 0.
func Jaccard(a, b string) float64 {
	sa := tokenSet(a)
	sb := tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}

	inter := 0
	for t := range sa {
		if sb[t] {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// TitleWeight returns the weight given to title similarity for a source
// title: perToken for each title token, counting at most maxTokens.
func TitleWeight(sourceTitle string, perToken float64, maxTokens int) float64 {
	return float64(min(len(strings.Fields(sourceTitle)), maxTokens)) * perToken
}
