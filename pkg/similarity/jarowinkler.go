package similarity

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1],
// comparing code points. The common prefix bonus uses weight 0.1 over at
// most four characters.
func JaroWinkler(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	s1, s2 := []rune(a), []rune(b)
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	m1 := make([]bool, len1)
	m2 := make([]bool, len2)
	matches := 0
	for i := range s1 {
		lo := max(0, i-window)
		hi := min(len2, i+window+1)
		for j := lo; j < hi; j++ {
			if m2[j] || s1[i] != s2[j] {
				continue
			}
			m1[i], m2[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range s1 {
		if !m1[i] {
			continue
		}
		for !m2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(len1, len2, 4); i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return clamp(jaro + 0.1*float64(prefix)*(1-jaro))
}

func clamp(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
