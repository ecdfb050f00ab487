package rtree

import "github.com/kass/spatio/pkg/geometry"

// DefaultM and Defaultm are the canonical server-side branching factors.
const (
	DefaultM = 8
	Defaultm = 4
)

// RTree is a Guttman-style dynamic R-tree mapping bboxes to opaque
// string payload keys. It is not safe for concurrent use; callers
// needing that guarantee should wrap it (see pkg/index).
type RTree struct {
	root *node
	m    int
	size int
}

// New creates an R-tree with the given minimum fill m; the maximum
// fill M is fixed at DefaultM, per spec.md's canonical settings.
func New(m int) *RTree {
	return &RTree{
		root: &node{level: 0},
		m:    m,
	}
}

// NewDefault creates an R-tree using the canonical M=8, m=4 settings.
func NewDefault() *RTree {
	return New(Defaultm)
}

// Len returns the number of entries currently stored.
func (t *RTree) Len() int { return t.size }

// Clear empties the tree.
func (t *RTree) Clear() {
	t.root = &node{level: 0}
	t.size = 0
}

// Insert adds (bbox, payload) to the tree.
func (t *RTree) Insert(bbox geometry.BBox, payload string) {
	t.insertAtLevel(entry{bbox: bbox, payload: payload}, 0)
	t.size++
}

// pathFrame records, during a descent, the ancestor node visited and
// the index of the entry chosen to continue the descent.
type pathFrame struct {
	n   *node
	idx int
}

// insertAtLevel inserts e so that it lands in a node at the given
// level (0 = leaf level), used both by Insert and by delete's
// level-aware reinsertion of detached subtrees.
func (t *RTree) insertAtLevel(e entry, level int) {
	var path []pathFrame
	n := t.root
	for n.level > level {
		idx := pickBestChild(n, e.bbox)
		path = append(path, pathFrame{n, idx})
		n = n.entries[idx].child
	}

	n.entries = append(n.entries, e)
	n.mbr = n.mbr.Union(e.bbox)

	child := n
	var split *node
	if len(n.entries) > DefaultM {
		child, split = quadraticSplit(n, t.m)
	}

	for i := len(path) - 1; i >= 0; i-- {
		p := path[i].n
		idx := path[i].idx
		p.entries[idx].child = child
		p.entries[idx].bbox = child.mbr

		if split != nil {
			p.entries = append(p.entries, entry{bbox: split.mbr, child: split})
			p.mbr = tightenMBR(p.entries)
			if len(p.entries) > DefaultM {
				child, split = quadraticSplit(p, t.m)
			} else {
				child, split = p, nil
			}
		} else {
			p.mbr = tightenMBR(p.entries)
			child = p
		}
	}

	if split != nil {
		newRoot := &node{
			level: child.level + 1,
			entries: []entry{
				{bbox: child.mbr, child: child},
				{bbox: split.mbr, child: split},
			},
		}
		newRoot.mbr = tightenMBR(newRoot.entries)
		t.root = newRoot
	} else {
		t.root = child
	}
}

// pickBestChild chooses the child entry needing least enlargement to
// include bbox, breaking ties toward the smaller existing area.
func pickBestChild(n *node, bbox geometry.BBox) int {
	bestIdx := 0
	bestEnl := n.entries[0].bbox.Enlargement(bbox)
	bestArea := n.entries[0].bbox.Area()
	for i := 1; i < len(n.entries); i++ {
		enl := n.entries[i].bbox.Enlargement(bbox)
		area := n.entries[i].bbox.Area()
		if enl < bestEnl || (enl == bestEnl && area < bestArea) {
			bestIdx, bestEnl, bestArea = i, enl, area
		}
	}
	return bestIdx
}

// Delete removes the entry matching (bbox, payload) exactly. It
// returns false, changing nothing, if no such entry exists.
func (t *RTree) Delete(bbox geometry.BBox, payload string) bool {
	leaf, path, idx := findLeaf(t.root, bbox, payload, nil)
	if leaf == nil {
		return false
	}
	leaf.entries = append(leaf.entries[:idx], leaf.entries[idx+1:]...)
	t.size--
	t.condenseTree(leaf, path)

	for t.root.level > 0 && len(t.root.entries) == 1 {
		t.root = t.root.entries[0].child
	}
	if t.size == 0 {
		t.root = &node{level: 0}
	}
	return true
}

// findLeaf descends through every subtree whose mbr contains bbox
// (there may be several, per spec.md's delete algorithm) looking for
// the leaf entry with an exactly matching bbox and payload.
func findLeaf(n *node, bbox geometry.BBox, payload string, path []pathFrame) (*node, []pathFrame, int) {
	if n.isLeaf() {
		for i, e := range n.entries {
			if e.payload == payload && bboxEqual(e.bbox, bbox) {
				return n, path, i
			}
		}
		return nil, nil, -1
	}
	for i, e := range n.entries {
		if !e.bbox.ContainsBBox(bbox) {
			continue
		}
		childPath := make([]pathFrame, len(path), len(path)+1)
		copy(childPath, path)
		childPath = append(childPath, pathFrame{n, i})
		if leaf, p, idx := findLeaf(e.child, bbox, payload, childPath); leaf != nil {
			return leaf, p, idx
		}
	}
	return nil, nil, -1
}

// condenseTree walks from leaf up to the root, detaching any
// underflowing node from its parent and stashing it for re-insertion,
// tightening MBRs along the way, per spec.md's delete algorithm.
func (t *RTree) condenseTree(leaf *node, path []pathFrame) {
	leaf.mbr = tightenMBR(leaf.entries)

	var stashed []*node
	n := leaf
	for i := len(path) - 1; i >= 0; i-- {
		parent := path[i].n
		idx := path[i].idx

		if len(n.entries) < t.m {
			parent.entries = append(parent.entries[:idx], parent.entries[idx+1:]...)
			if len(n.entries) > 0 {
				stashed = append(stashed, n)
			}
		} else {
			parent.entries[idx].bbox = n.mbr
		}
		parent.mbr = tightenMBR(parent.entries)
		n = parent
	}

	for _, sn := range stashed {
		for _, e := range sn.entries {
			t.insertAtLevel(e, sn.level)
		}
	}
}

// Search returns the payloads of every entry whose bbox intersects
// window. Emission order is unspecified.
func (t *RTree) Search(window geometry.BBox) []string {
	var results []string
	var walk func(n *node)
	walk = func(n *node) {
		if n.isLeaf() {
			for _, e := range n.entries {
				if e.bbox.Intersects(window) {
					results = append(results, e.payload)
				}
			}
			return
		}
		for _, e := range n.entries {
			if e.bbox.Intersects(window) {
				walk(e.child)
			}
		}
	}
	walk(t.root)
	return results
}
