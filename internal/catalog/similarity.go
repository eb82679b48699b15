package catalog

// similarity scores how close two strings are on a [0,1] scale: twice the
// total matched length over the combined length. Identical strings score
// 1, strings sharing no characters score 0, and the score shrinks as the
// strings diverge.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	m := matchedLen([]byte(a), []byte(b))
	return 2 * float64(m) / float64(len(a)+len(b))
}

// matchedLen sums matching blocks greedily: take the longest common
// substring, then recurse into the unmatched pieces on either side of it.
func matchedLen(a, b []byte) int {
	ai, bi, n := longestCommonSubstring(a, b)
	if n == 0 {
		return 0
	}
	return n + matchedLen(a[:ai], b[:bi]) + matchedLen(a[ai+n:], b[bi+n:])
}

// longestCommonSubstring returns the start offsets and length of the
// longest run of bytes common to a and b. Ties go to the earliest
// position in a.
func longestCommonSubstring(a, b []byte) (ai, bi, n int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > n {
				n = cur[j]
				ai = i - n
				bi = j - n
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}

	return ai, bi, n
}
