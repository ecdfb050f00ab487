package rtree

import (
	"container/heap"

	"github.com/kass/spatio/pkg/geometry"
)

// Result is one k-NN hit: a payload key and its haversine distance in
// meters from the query point.
type Result struct {
	Payload   string
	DistanceM float64
}

// candidate is a priority-queue item: either an unexpanded node
// (isLeafEntry == false) or an already-emittable leaf entry.
type candidate struct {
	dist        float64
	isLeafEntry bool
	payload     string
	child       *node
}

type candidateQueue []*candidate

func (q candidateQueue) Len() int            { return len(q) }
func (q candidateQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q candidateQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *candidateQueue) Push(x any)         { *q = append(*q, x.(*candidate)) }
func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Nearest runs a best-first k-NN search from query. At least one of k
// or radiusM must be non-nil; when both are given, whichever bound is
// hit first stops emission. Results are ordered by non-decreasing
// haversine distance.
func (t *RTree) Nearest(query geometry.Point, k *int, radiusM *float64) []Result {
	if t.size == 0 {
		return nil
	}

	pq := &candidateQueue{}
	heap.Init(pq)
	heap.Push(pq, &candidate{
		dist:  geometry.BBoxDistance(query, t.root.mbr),
		child: t.root,
	})

	var results []Result
	for pq.Len() > 0 {
		top := heap.Pop(pq).(*candidate)
		if radiusM != nil && top.dist > *radiusM {
			break
		}
		if top.isLeafEntry {
			results = append(results, Result{Payload: top.payload, DistanceM: top.dist})
			if k != nil && len(results) >= *k {
				break
			}
			continue
		}

		n := top.child
		if n.isLeaf() {
			for _, e := range n.entries {
				heap.Push(pq, &candidate{
					dist:        geometry.BBoxDistance(query, e.bbox),
					isLeafEntry: true,
					payload:     e.payload,
				})
			}
		} else {
			for _, e := range n.entries {
				heap.Push(pq, &candidate{
					dist:  geometry.BBoxDistance(query, e.bbox),
					child: e.child,
				})
			}
		}
	}
	return results
}
