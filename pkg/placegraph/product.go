package placegraph

// UniqueProduct enumerates combinations picking one value per choice list
// such that the chosen values are pairwise distinct across positions.
// Values for which skip returns true (placeholder "give it up" entries) may
// repeat freely. Combinations come out in preference order: earlier lists'
// earlier options first. Enumeration stops early when yield returns false.
func UniqueProduct[T comparable](choices [][]T, skip func(T) bool, yield func([]T) bool) {
	if len(choices) == 0 {
		return
	}
	if skip == nil {
		skip = func(T) bool { return false }
	}

	indices := make([]int, len(choices))
	product := make([]T, 0, len(choices))

	contains := func(v T) bool {
		for _, p := range product {
			if p == v {
				return true
			}
		}
		return false
	}

	for {
		level := len(product)

		// Find the next usable option at this level.
		picked := false
		var value T
		for indices[level] < len(choices[level]) {
			v := choices[level][indices[level]]
			if skip(v) || !contains(v) {
				value = v
				picked = true
				break
			}
			indices[level]++
		}

		if !picked {
			// Level exhausted; backtrack.
			if len(product) == 0 {
				return
			}
			product = product[:len(product)-1]
			indices[level] = 0
			indices[level-1]++
			continue
		}

		product = append(product, value)

		if len(product) == len(choices) {
			if !yield(append([]T(nil), product...)) {
				return
			}
			product = product[:len(product)-1]
			indices[level]++
		}
	}
}
