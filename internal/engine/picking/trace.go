package picking

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Hit is a single ray intersection reported by a Tracer.
type Hit struct {
	ID       uuid.UUID // Entity that was hit
	Inside   bool      // Ray origin started inside the hit volume
	Distance float32   // Distance along the ray
}

// Tracer traces a ray against world geometry. Hits may come back in any order.
type Tracer interface {
	Trace(ray Ray) []Hit
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ray Ray) []Hit

// Trace calls f(ray).
func (f TracerFunc) Trace(ray Ray) []Hit {
	return f(ray)
}

// SortHits orders hits by ascending distance. Equal distances keep trace order.
func SortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}

// Closest returns the nearest hit whose ray did not start inside the volume.
func Closest(hits []Hit) (Hit, bool) {
	sorted := slices.Clone(hits)
	SortHits(sorted)
	for _, h := range sorted {
		if h.Inside {
			continue
		}
		return h, true
	}
	return Hit{}, false
}

// Target is a pickable volume.
type Target struct {
	ID     uuid.UUID
	Bounds math.AABB
}

// BoundsTracer traces rays against world-space boxes.
type BoundsTracer struct {
	Targets []Target
}

// Trace returns a hit for every box in front of or around the ray origin, in target order.
func (t *BoundsTracer) Trace(ray Ray) []Hit {
	var hits []Hit
	for _, target := range t.Targets {
		dist, inside, ok := ray.IntersectAABB(target.Bounds)
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: target.ID, Inside: inside, Distance: dist})
	}
	return hits
}
