// Package rtree implements a Guttman-style dynamic R-tree over
// (bbox, payload) entries: insert, delete with node condensation,
// window search, and best-first k-NN.
package rtree

import "github.com/kass/spatio/pkg/geometry"

// entry is either a leaf entry (bbox + opaque payload key) or an
// internal entry (bbox + exclusively-owned child node).
type entry struct {
	bbox    geometry.BBox
	payload string
	child   *node
}

// node is one R-tree node. All entries in a node share level; leaves
// sit at level 0. Parent linkage is never stored on the node itself;
// callers track the descent path explicitly (see Design Notes).
type node struct {
	mbr     geometry.BBox
	level   int
	entries []entry
}

func (n *node) isLeaf() bool { return n.level == 0 }

func tightenMBR(entries []entry) geometry.BBox {
	b := geometry.EmptyBBox()
	for _, e := range entries {
		b = b.Union(e.bbox)
	}
	return b
}

const epsilon = 1e-9

func bboxEqual(a, b geometry.BBox) bool {
	const e = epsilon
	diff := func(x, y float64) bool {
		d := x - y
		return d > -e && d < e
	}
	return diff(a.MinX, b.MinX) && diff(a.MinY, b.MinY) && diff(a.MaxX, b.MaxX) && diff(a.MaxY, b.MaxY)
}
