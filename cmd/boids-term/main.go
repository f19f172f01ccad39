package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/simulation"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/termview"
)

func main() {
	configFile := flag.String("config", "config/boids.json", "JSON or YAML configuration file, empty for defaults")
	schemaFile := flag.String("schema", "config/boids.schema.json", "JSON schema the configuration is validated against")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, *schemaFile); err != nil {
			log.Fatal(err)
		}
	}

	// the terminal is the display, logs would tear it
	engine, err := simulation.NewEngine(cfg, golog.DiscardLogger)
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := termview.New(screen, engine).Run(ctx, cfg.TicksPerSecond)
	screen.Fini()
	if runErr != nil {
		log.Fatal(runErr)
	}
}
