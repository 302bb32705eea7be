// Package scene runs the collision pass of a set of deformable surfaces: a broad phase
// over the body boxes, a world query per candidate pair and a self query per body.
package scene

import (
	"context"

	"github.com/akmonengine/bvh/broadphase"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_WORKERS = 1

type World struct {
	// List of all bodies in the world
	Bodies []*Body
	// SpatialGrid is the broad phase, a box tree over the bodies is used when nil
	SpatialGrid *broadphase.SpatialGrid
	Workers     int
	// Config is used for the box tree broad phase
	Config construct.Config
	// Logger defaults to log.Default()
	Logger *log.Logger

	Events Events

	stamped *broadphase.StampedPolicy
}

// AddBody adds a body to the world
func (w *World) AddBody(body *Body) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a body from the world
func (w *World) RemoveBody(body *Body) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
		// Indices moved, pair stamps are stale
		w.stamped = nil
	}

	w.Events.forget(body)
}

// Rebuild constructs the hierarchy of every body again, at most Workers at a time.
// It stops at the first failure and returns its error.
func (w *World) Rebuild(ctx context.Context, cfg construct.Config) error {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	logger := w.logger()

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.Workers)
	for _, body := range w.Bodies {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
				return body.Rebuild(cfg, logger)
			}
		})
	}
	return eg.Wait()
}

// Step runs a collision pass and dispatches the contact events
func (w *World) Step() []Contact {
	contacts := w.Detect()

	w.Events.recordContacts(contacts)
	w.Events.flush()

	return contacts
}

// Detect runs a collision pass: pairs of bodies first, ordered by body index, then self
// contacts in body order
func (w *World) Detect() []Contact {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	logger := w.logger()

	boxes := make([]volume.AABB, len(w.Bodies))
	for i, body := range w.Bodies {
		boxes[i] = body.AABB()
	}

	contacts := NarrowPhase(w.Bodies, w.broadPhase(boxes), w.Workers)
	pairs := len(contacts)
	contacts = append(contacts, SelfPhase(w.Bodies, w.Workers)...)

	logger.Debug("collision pass", "bodies", len(w.Bodies), "pair_contacts", pairs, "self_contacts", len(contacts)-pairs)
	return contacts
}

// Probe returns the faces overlapping box, frame mapping world space into the frame of box
func (w *World) Probe(box volume.AABB, frame volume.Transform) []Hit {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	return ProbePhase(w.Bodies, box, frame, w.Workers)
}

func (w *World) broadPhase(boxes []volume.AABB) <-chan broadphase.Pair {
	if w.SpatialGrid != nil {
		return BroadPhase(w.SpatialGrid, boxes, w.Workers)
	}

	if w.stamped == nil {
		w.stamped = broadphase.NewStampedPolicy()
	}
	var pairs []broadphase.Pair

	cfg := w.Config
	if cfg.Degree == 0 {
		cfg = construct.DefaultConfig()
	}
	tree, err := broadphase.BuildTree(boxes, cfg, w.logger())
	if err != nil {
		w.logger().Error("broad phase skipped", "err", err)
	} else {
		broadphase.FindPairsTree(tree, boxes, w.stamped, &pairs)
	}

	pairsChan := make(chan broadphase.Pair, len(pairs))
	for _, p := range pairs {
		pairsChan <- p
	}
	close(pairsChan)
	return pairsChan
}

func (w *World) logger() *log.Logger {
	if w.Logger == nil {
		return log.Default()
	}
	return w.Logger
}
