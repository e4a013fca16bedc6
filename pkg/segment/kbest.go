package segment

import (
	"container/heap"
	"fmt"
	"strings"
)

// K-best search: forward A* over the lattice with the exact cost-to-finish
// as heuristic. bwd[i] is the best achievable score from node i to N, so the
// priority g+bwd[i] is exact and paths pop in true total-score order; the
// first completion carries the DP best score. Ties order by fewer edges, then
// by discovery order, keeping the result sequence deterministic. This is not
// the edgePreferred rule bestPath uses, so when several paths share the best
// score the first completion can be a different one of them.

type kbestItem struct {
	node  int
	g     float64
	f     float64
	edges *pathNode
	depth int
	seq   int
}

// pathNode is an immutable backward-linked path so pushes share tails
// instead of copying edge slices.
type pathNode struct {
	edge Edge
	prev *pathNode
}

type kbestHeap []*kbestItem

func (h kbestHeap) Len() int { return len(h) }

func (h kbestHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f > h[j].f
	}
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].seq < h[j].seq
}

func (h kbestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *kbestHeap) Push(x any) { *h = append(*h, x.(*kbestItem)) }

func (h *kbestHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

type scoredPath struct {
	edges []Edge
	score float64
}

// kBest returns up to k complete paths in non-increasing score order.
func (l *lattice) kBest(k int) []scoredPath {
	n := len(l.runes)
	if n == 0 || k < 1 {
		return nil
	}

	// exact cost-to-finish per node
	bwd := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		bwd[i] = negInf
		for _, e := range l.edges[i] {
			if s := e.Score + bwd[e.End]; s > bwd[i] {
				bwd[i] = s
			}
		}
	}
	if bwd[0] == negInf {
		return nil
	}

	h := &kbestHeap{}
	heap.Init(h)
	seq := 0
	heap.Push(h, &kbestItem{node: 0, g: 0, f: bwd[0]})

	var results []scoredPath
	seen := make(map[string]bool)
	for h.Len() > 0 && len(results) < k {
		it := heap.Pop(h).(*kbestItem)
		if it.node == n {
			edges := unwind(it.edges, it.depth)
			sig := pathSignature(edges)
			if seen[sig] {
				continue
			}
			seen[sig] = true
			results = append(results, scoredPath{edges: edges, score: it.g})
			continue
		}
		for _, e := range l.edges[it.node] {
			if bwd[e.End] == negInf {
				continue
			}
			seq++
			heap.Push(h, &kbestItem{
				node:  e.End,
				g:     it.g + e.Score,
				f:     it.g + e.Score + bwd[e.End],
				edges: &pathNode{edge: e, prev: it.edges},
				depth: it.depth + 1,
				seq:   seq,
			})
		}
	}
	return results
}

func unwind(p *pathNode, depth int) []Edge {
	edges := make([]Edge, depth)
	for i := depth - 1; i >= 0; i-- {
		edges[i] = p.edge
		p = p.prev
	}
	return edges
}

// pathSignature identifies an edge sequence for duplicate suppression;
// distinct records over the same span count as distinct analyses.
func pathSignature(edges []Edge) string {
	var b strings.Builder
	for _, e := range edges {
		fmt.Fprintf(&b, "%d:%d:%d:%d;", e.Start, e.End, e.Entry.Seq, e.Entry.ConjType)
	}
	return b.String()
}
