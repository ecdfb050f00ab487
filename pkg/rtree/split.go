package rtree

import "math"

// quadraticSplit divides an overflowing node's entries into two nodes,
// both at n's level, using Guttman's quadratic-cost algorithm: pick the
// pair of entries wasting the most area as seeds, then repeatedly
// assign the entry with the greatest preference for one group over the
// other to whichever group enlarges least.
func quadraticSplit(n *node, m int) (*node, *node) {
	entries := n.entries
	i, j := pickSeeds(entries)

	g1 := &node{level: n.level, entries: []entry{entries[i]}}
	g2 := &node{level: n.level, entries: []entry{entries[j]}}
	g1.mbr = entries[i].bbox
	g2.mbr = entries[j].bbox

	remaining := make([]entry, 0, len(entries)-2)
	for k, e := range entries {
		if k != i && k != j {
			remaining = append(remaining, e)
		}
	}

	for len(remaining) > 0 {
		if len(g1.entries)+len(remaining) <= m {
			g1.entries = append(g1.entries, remaining...)
			g1.mbr = tightenMBR(g1.entries)
			break
		}
		if len(g2.entries)+len(remaining) <= m {
			g2.entries = append(g2.entries, remaining...)
			g2.mbr = tightenMBR(g2.entries)
			break
		}

		pickIdx, toG1 := pickNext(g1, g2, remaining)
		e := remaining[pickIdx]
		remaining = append(remaining[:pickIdx], remaining[pickIdx+1:]...)
		if toG1 {
			g1.entries = append(g1.entries, e)
			g1.mbr = g1.mbr.Union(e.bbox)
		} else {
			g2.entries = append(g2.entries, e)
			g2.mbr = g2.mbr.Union(e.bbox)
		}
	}

	return g1, g2
}

// pickSeeds returns the indices of the two entries whose combined bbox
// wastes the most area: area(union) - area(a) - area(b).
func pickSeeds(entries []entry) (int, int) {
	bestWaste := math.Inf(-1)
	bi, bj := 0, 1
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			waste := entries[i].bbox.Union(entries[j].bbox).Area() -
				entries[i].bbox.Area() - entries[j].bbox.Area()
			if waste > bestWaste {
				bestWaste = waste
				bi, bj = i, j
			}
		}
	}
	return bi, bj
}

// pickNext returns the index (within remaining) of the entry with the
// greatest preference for one group over the other, and which group it
// prefers.
func pickNext(g1, g2 *node, remaining []entry) (int, bool) {
	bestIdx := 0
	bestDiff := math.Inf(-1)
	bestToG1 := true

	for k, e := range remaining {
		d1 := g1.mbr.Enlargement(e.bbox)
		d2 := g2.mbr.Enlargement(e.bbox)
		diff := math.Abs(d1 - d2)
		if diff > bestDiff {
			bestDiff = diff
			bestIdx = k
			bestToG1 = preferGroup1(d1, d2, g1, g2)
		}
	}
	return bestIdx, bestToG1
}

// preferGroup1 implements the tie-break chain: least enlargement, then
// smaller existing area, then fewer entries, then group one.
func preferGroup1(d1, d2 float64, g1, g2 *node) bool {
	if d1 != d2 {
		return d1 < d2
	}
	a1, a2 := g1.mbr.Area(), g2.mbr.Area()
	if a1 != a2 {
		return a1 < a2
	}
	if len(g1.entries) != len(g2.entries) {
		return len(g1.entries) < len(g2.entries)
	}
	return true
}
