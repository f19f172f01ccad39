package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/simulation"
)

// the pacer waits for the world every syncEvery ticks so its mailbox stays short
const syncEvery = 100

func main() {
	configFile := flag.String("config", "config/boids.json", "JSON or YAML configuration file, empty for defaults")
	schemaFile := flag.String("schema", "config/boids.schema.json", "JSON schema the configuration is validated against")
	ticks := flag.Int("ticks", 0, "number of ticks to run, 0 runs until interrupted")
	quiet := flag.Bool("quiet", false, "discard the actor system logs")
	writeConfig := flag.String("write-config", "", "save the effective configuration as YAML to this file")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, *schemaFile); err != nil {
			log.Fatalf("💥 %v", err)
		}
	}
	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			log.Fatalf("💥 %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var logger golog.Logger = golog.DefaultLogger
	if *quiet {
		logger = golog.DiscardLogger
	}
	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		log.Fatalf("💥 failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("💥 failed to start actor system: %v", err)
	}
	defer func() { _ = system.Stop(context.Background()) }()

	world, err := system.Spawn(ctx, "world", simulation.NewWorldActor(nil, cfg))
	if err != nil {
		log.Fatalf("💥 failed to spawn world: %v", err)
	}

	limit := rate.Inf
	var budget time.Duration
	if cfg.TicksPerSecond > 0 {
		limit = rate.Limit(cfg.TicksPerSecond)
		budget = time.Duration(float64(time.Second) / cfg.TicksPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	start := time.Now()
	for sent := 0; *ticks == 0 || sent < *ticks; sent++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		if err := actor.Tell(ctx, world, simulation.TickMessage(budget)); err != nil {
			logger.Errorf("tick not sent: %v", err)
			break
		}
		if sent%syncEvery == syncEvery-1 {
			if _, err := actor.Ask(ctx, world, simulation.StatsRequest(), 10*time.Second); err != nil {
				logger.Errorf("world not responding: %v", err)
				break
			}
		}
	}

	resp, err := actor.Ask(context.Background(), world, simulation.StatsRequest(), 10*time.Second)
	if err != nil {
		log.Fatalf("💥 failed to read world stats: %v", err)
	}
	stats, ok := resp.(*structpb.Struct)
	if !ok {
		log.Fatalf("💥 unexpected stats response %T", resp)
	}
	f := stats.GetFields()
	elapsed := time.Since(start)
	done := f[simulation.KeyTick].GetNumberValue()
	log.Printf("✅ %.0f ticks of %.0f boids in %s (%.1f ticks/sec), last tick: %.0f leaves, largest %.0f, depth %.0f",
		done, f[simulation.KeyBoids].GetNumberValue(), elapsed.Round(time.Millisecond), done/elapsed.Seconds(),
		f[simulation.KeyLeaves].GetNumberValue(), f[simulation.KeyLargestLeaf].GetNumberValue(), f[simulation.KeyMaxDepth].GetNumberValue())
}
