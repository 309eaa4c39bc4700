package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/spacers/spacers/internal/core/ecs"
)

// Point is a universe-absolute 2-D coordinate.
type Point struct {
	X float32
	Y float32
}

func (p Point) coords() [2]float64 {
	return [2]float64{float64(p.X), float64(p.Y)}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := float64(p.X) - float64(q.X)
	dy := float64(p.Y) - float64(q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Hit is one query result.
type Hit struct {
	ID   ecs.EntityID
	Pos  Point
	Dist float64
}

type item struct {
	id  ecs.EntityID
	seq int
}

// Index is an R-tree over the positions of root-anchored entities.
// Every id is indexed at most once. Results with equal keys are ordered by
// insertion order so identical inputs always yield identical outputs.
// Not safe for concurrent use.
type Index struct {
	tree  rtree.RTreeG[item]
	pos   map[ecs.EntityID]Point
	order []ecs.EntityID
}

func NewIndex() *Index {
	return &Index{
		pos:   make(map[ecs.EntityID]Point, 64),
		order: make([]ecs.EntityID, 0, 64),
	}
}

// Insert adds id at p. Returns false (and changes nothing) when id is
// already indexed.
func (ix *Index) Insert(p Point, id ecs.EntityID) bool {
	if _, ok := ix.pos[id]; ok {
		return false
	}
	c := p.coords()
	ix.tree.Insert(c, c, item{id: id, seq: len(ix.order)})
	ix.pos[id] = p
	ix.order = append(ix.order, id)
	return true
}

// Len returns the number of indexed entities.
func (ix *Index) Len() int {
	return len(ix.order)
}

func (ix *Index) Contains(id ecs.EntityID) bool {
	_, ok := ix.pos[id]
	return ok
}

// Position returns the indexed position of id.
func (ix *Index) Position(id ecs.EntityID) (Point, bool) {
	p, ok := ix.pos[id]
	return p, ok
}

// Each visits indexed entities in insertion order until fn returns false.
func (ix *Index) Each(fn func(ecs.EntityID, Point) bool) {
	for _, id := range ix.order {
		if !fn(id, ix.pos[id]) {
			return
		}
	}
}

// Nearest returns up to k entities ordered by distance from p.
func (ix *Index) Nearest(p Point, k int) []Hit {
	if k <= 0 || ix.Len() == 0 {
		return nil
	}
	target := p.coords()
	type cand struct {
		item
		dist float64
	}
	var cands []cand
	ix.tree.Nearby(
		func(min, max [2]float64, _ item, _ bool) float64 {
			return boxDistSq(target, min, max)
		},
		func(_, _ [2]float64, it item, dist float64) bool {
			// Keep collecting past k while distances tie so the tie-break
			// below sees every equidistant candidate.
			if len(cands) >= k && dist > cands[len(cands)-1].dist {
				return false
			}
			cands = append(cands, cand{item: it, dist: dist})
			return true
		},
	)
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].seq < cands[j].seq
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	hits := make([]Hit, len(cands))
	for i, c := range cands {
		hits[i] = Hit{ID: c.id, Pos: ix.pos[c.id], Dist: math.Sqrt(c.dist)}
	}
	return hits
}

// Within returns every entity inside the box [min, max], bounds inclusive,
// in insertion order.
func (ix *Index) Within(min, max Point) []ecs.EntityID {
	var items []item
	ix.tree.Search(min.coords(), max.coords(), func(_, _ [2]float64, it item) bool {
		items = append(items, it)
		return true
	})
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	ids := make([]ecs.EntityID, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids
}

// Radius returns every entity within distance r of p, nearest first.
func (ix *Index) Radius(p Point, r float64) []Hit {
	if r < 0 {
		return nil
	}
	min := Point{X: float32(float64(p.X) - r), Y: float32(float64(p.Y) - r)}
	max := Point{X: float32(float64(p.X) + r), Y: float32(float64(p.Y) + r)}
	var hits []Hit
	for _, id := range ix.Within(min, max) {
		q := ix.pos[id]
		if d := p.Dist(q); d <= r {
			hits = append(hits, Hit{ID: id, Pos: q, Dist: d})
		}
	}
	// Within already yields insertion order; a stable sort keeps it for ties.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })
	return hits
}

// boxDistSq is the squared distance from pt to the nearest point of a box.
func boxDistSq(pt, min, max [2]float64) float64 {
	var d float64
	for i := 0; i < 2; i++ {
		switch {
		case pt[i] < min[i]:
			d += (min[i] - pt[i]) * (min[i] - pt[i])
		case pt[i] > max[i]:
			d += (pt[i] - max[i]) * (pt[i] - max[i])
		}
	}
	return d
}
