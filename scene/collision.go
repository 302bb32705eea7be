package scene

import (
	"slices"
	"sync"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/broadphase"
	"github.com/akmonengine/bvh/mesh"
	"github.com/akmonengine/bvh/volume"
)

// Contact lists the intersecting faces of two bodies, or of a body with itself
type Contact struct {
	BodyA *Body
	BodyB *Body
	Faces []mesh.FacePair

	a, b int
}

func (c Contact) IsSelf() bool {
	return c.BodyA == c.BodyB
}

// Hit lists the faces of a body overlapping a probe box
type Hit struct {
	Body  *Body
	Faces []int
}

// BroadPhase returns the pairs of bodies whose root boxes overlap
func BroadPhase(spatialGrid *broadphase.SpatialGrid, boxes []volume.AABB, workersCount int) <-chan broadphase.Pair {
	spatialGrid.Rebuild(boxes)
	return spatialGrid.FindPairsParallel(boxes, workersCount)
}

// NarrowPhase runs a world query per candidate pair and returns the pairs with intersecting
// faces, ordered by body indices
func NarrowPhase(bodies []*Body, pairs <-chan broadphase.Pair, workersCount int) []Contact {
	contactsChan := make(chan Contact, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(contactsChan)

		for range max(1, workersCount) {
			wg.Add(1)
			go func() {
				defer wg.Done()

				var faces []mesh.FacePair
				for p := range pairs {
					bodyA, bodyB := bodies[p.A], bodies[p.B]
					query := bvh.WorldQuery[volume.AABB, int, mesh.FacePair]{
						Policy: mesh.WorldCollider{A: bodyA.Mesh, B: bodyB.Mesh},
					}
					query.Run(bodyA.Tree, bodyB.Tree, &faces)
					if len(faces) == 0 {
						continue
					}

					contactsChan <- Contact{
						BodyA: bodyA,
						BodyB: bodyB,
						Faces: slices.Clone(faces),
						a:     p.A,
						b:     p.B,
					}
				}
			}()
		}
		wg.Wait()
	}()

	contacts := make([]Contact, 0)
	for c := range contactsChan {
		contacts = append(contacts, c)
	}
	sortContacts(contacts)
	return contacts
}

// SelfPhase runs a self query on every body with self collision enabled
func SelfPhase(bodies []*Body, workersCount int) []Contact {
	indices := make([]int, 0, len(bodies))
	for i, body := range bodies {
		if body.SelfCollision {
			indices = append(indices, i)
		}
	}

	found := make([][]mesh.FacePair, len(bodies))
	task(workersCount, indices, func(i int) {
		body := bodies[i]
		collider := mesh.NewSelfCollider(body.Mesh)
		collider.MaxAngle = body.MaxAngle

		query := bvh.SelfQuery[volume.AABB, int, mesh.FacePair]{Policy: collider}
		query.Run(body.Tree, &found[i])
	})

	var contacts []Contact
	for _, i := range indices {
		if len(found[i]) > 0 {
			contacts = append(contacts, Contact{BodyA: bodies[i], BodyB: bodies[i], Faces: found[i], a: i, b: i})
		}
	}
	return contacts
}

// ProbePhase returns the faces of every body overlapping box.
// frame maps world space into the frame box is expressed in.
func ProbePhase(bodies []*Body, box volume.AABB, frame volume.Transform, workersCount int) []Hit {
	found := make([][]int, len(bodies))
	indices := make([]int, len(bodies))
	for i := range indices {
		indices[i] = i
	}

	task(workersCount, indices, func(i int) {
		query := bvh.SingleQuery[volume.AABB, int, volume.Transform, volume.AABB, int]{
			Policy: mesh.BoxQuery{Mesh: bodies[i].Mesh},
		}
		query.Run(frame, bodies[i].Tree, box, &found[i])
	})

	var hits []Hit
	for i, faces := range found {
		if len(faces) > 0 {
			slices.Sort(faces)
			hits = append(hits, Hit{Body: bodies[i], Faces: faces})
		}
	}
	return hits
}

func sortContacts(contacts []Contact) {
	slices.SortFunc(contacts, func(x, y Contact) int {
		if x.a != y.a {
			return x.a - y.a
		}
		return x.b - y.b
	})
}
