package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/bvh/broadphase"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/mesh"
	"github.com/akmonengine/bvh/scene"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a cloth lying on a floor, the part beyond x = 2 ready to be folded over
func SetupScene(cfg construct.Config, logger *log.Logger) (*scene.World, *scene.Body, error) {
	world := &scene.World{
		SpatialGrid: broadphase.NewSpatialGrid(2, 256),
		Workers:     4,
		Config:      cfg,
		Logger:      logger,
	}

	floor, err := scene.NewBody(mesh.Translate(mesh.Grid(8, 8, 1), mgl64.Vec3{-2, 0, -2}), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	floor.Id = "floor"
	world.AddBody(floor)

	cloth, err := scene.NewBody(mesh.Grid(16, 4, 0.25), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cloth.Id = "cloth"
	cloth.SelfCollision = true
	world.AddBody(cloth)

	return world, cloth, nil
}

func subscribe(world *scene.World) {
	world.Events.Subscribe(scene.COLLISION_ENTER, func(e scene.Event) {
		event := e.(scene.CollisionEnterEvent)
		fmt.Printf("  enter: %v / %v, %d face pairs\n", event.BodyA.Id, event.BodyB.Id, len(event.Faces))
	})
	world.Events.Subscribe(scene.COLLISION_EXIT, func(e scene.Event) {
		event := e.(scene.CollisionExitEvent)
		fmt.Printf("  exit: %v / %v\n", event.BodyA.Id, event.BodyB.Id)
	})
	world.Events.Subscribe(scene.SELF_COLLISION_ENTER, func(e scene.Event) {
		event := e.(scene.SelfCollisionEnterEvent)
		fmt.Printf("  self enter: %v, %d face pairs\n", event.Body.Id, len(event.Faces))
	})
	world.Events.Subscribe(scene.SELF_COLLISION_STAY, func(e scene.Event) {
		event := e.(scene.SelfCollisionStayEvent)
		fmt.Printf("  self stay: %v, %d face pairs\n", event.Body.Id, len(event.Faces))
	})
}

func main() {
	configPath := flag.String("config", "", "YAML construction config")
	steps := flag.Int("steps", 8, "number of fold steps")
	debug := flag.Bool("debug", false, "log construction details")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "clothFold"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := construct.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = construct.LoadConfigFile(*configPath); err != nil {
			logger.Fatal("cannot load config", "err", err)
		}
	}

	world, cloth, err := SetupScene(cfg, logger)
	if err != nil {
		logger.Fatal("cannot setup scene", "err", err)
	}
	subscribe(world)
	flat := cloth.Mesh

	for step := 0; step <= *steps; step++ {
		angle := math.Pi * float64(step) / float64(*steps)
		cloth.Mesh = mesh.Fold(flat, 2, angle)
		if err := world.Rebuild(context.Background(), cfg); err != nil {
			logger.Fatal("cannot rebuild bodies", "err", err)
		}

		fmt.Printf("--- step %d, fold %.0f° ---\n", step, mgl64.RadToDeg(angle))
		contacts := world.Step()
		for _, c := range contacts {
			fmt.Printf("  contact %v / %v: %d face pairs\n", c.BodyA.Id, c.BodyB.Id, len(c.Faces))
		}
	}

	// Which faces lie under a probe held at the fold line
	probe := volume.AABB{Min: mgl64.Vec3{-0.1, -0.1, -0.1}, Max: mgl64.Vec3{0.1, 0.1, 1.1}}
	frame := volume.NewTransform()
	frame.Position = mgl64.Vec3{-2, 0, 0}
	for _, hit := range world.Probe(probe, frame) {
		fmt.Printf("probe: %v faces %v\n", hit.Body.Id, hit.Faces)
	}
}
