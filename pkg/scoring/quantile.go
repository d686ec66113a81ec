package scoring

import (
	"sort"
)

// Bins is the number of ordinal score levels.
const Bins = 5

// StableRank returns the 1-based ascending rank of every value. Ties keep their input order,
// so the first occurrence of a repeated value gets the lower rank.
func StableRank(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]int, len(values))
	for r, idx := range order {
		ranks[idx] = r + 1
	}
	return ranks
}

// QuintileOfRank maps rank r of a population of n (n >= 2) to a bin in 1..5.
// Cut points sit at 1 + (n-1)*k/5 with right-closed bins, the same edges qcut puts on ranks 1..n,
// so bin = ceil(5(r-1)/(n-1)) clamped to 1.
func QuintileOfRank(r, n int) int {
	num := Bins * (r - 1)
	den := n - 1
	bin := (num + den - 1) / den
	if bin < 1 {
		return 1
	}
	if bin > Bins {
		return Bins
	}
	return bin
}

// Quintiles bins values into 5 near-equal groups by stable rank; 1 holds the smallest values.
// The caller guarantees len(values) >= Bins.
func Quintiles(values []float64) []int {
	ranks := StableRank(values)
	bins := make([]int, len(values))
	for i, r := range ranks {
		bins[i] = QuintileOfRank(r, len(values))
	}
	return bins
}

func distinctCount(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
		if len(seen) > 1 {
			return len(seen)
		}
	}
	return len(seen)
}
