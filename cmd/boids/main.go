package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/simulation"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/viewer"
)

func main() {
	configFile := flag.String("config", "config/boids.json", "JSON or YAML configuration file, empty for defaults")
	schemaFile := flag.String("schema", "config/boids.schema.json", "JSON schema the configuration is validated against")
	verbose := flag.Bool("v", false, "log the actor system to stdout")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, *schemaFile); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	var logger golog.Logger = golog.DiscardLogger
	if *verbose {
		logger = golog.DefaultLogger
	}
	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		log.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := viewer.GetNewGame(ctx, cfg, system)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Boids (quadtree buckets)")
	if cfg.TicksPerSecond > 0 {
		ebiten.SetTPS(int(cfg.TicksPerSecond))
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
