package vtree

// longestIncreasing returns the positions of one longest strictly
// increasing subsequence of seq, in ascending order. Patience sorting
// with binary search, O(n log n).
func longestIncreasing(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}
	// tails[k] is the index into seq of the smallest tail of any
	// increasing subsequence of length k+1 seen so far.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}
	out := make([]int, len(tails))
	at := tails[len(tails)-1]
	for k := len(tails) - 1; k >= 0; k-- {
		out[k] = at
		at = prev[at]
	}
	return out
}
