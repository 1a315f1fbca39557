package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsboard-dev/opsd/internal/config"
	"github.com/opsboard-dev/opsd/internal/monitor"
	"github.com/opsboard-dev/opsd/internal/server"
	"github.com/opsboard-dev/opsd/internal/sources"
	"github.com/opsboard-dev/opsd/internal/version"
)

func main() {
	var (
		dev          = flag.Bool("dev", false, "run in dev mode")
		token        = flag.String("token", "", "auth token (overrides config)")
		listen       = flag.String("listen", "", "override listen address")
		configPath   = flag.String("config", "", "path to config.toml")
		manifestPath = flag.String("sources", "", "override sources manifest path")
		showVer      = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("opsd %s (%s) built %s\n", version.Version, version.Commit, version.BuildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, *dev)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *token != "" {
		cfg.Auth.Token = *token
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *manifestPath != "" {
		cfg.Paths.SourcesManifest = *manifestPath
	}
	if cfg.Auth.Token == "" {
		log.Fatalf("auth: no token configured (set auth.token or pass -token)")
	}

	manifest, err := sources.Parse(cfg.Paths.SourcesManifest)
	if err != nil {
		log.Fatalf("sources: %v", err)
	}
	if manifest.Len() == 0 {
		log.Printf("sources: manifest %s declares no sources", cfg.Paths.SourcesManifest)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(manifest, 30*time.Second)
	mon.Start()

	srv := server.New(cfg, manifest, mon)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("server: %v", err)
		}
	}()

	log.Printf("opsd %s started (pid=%d)", version.Version, os.Getpid())

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	mon.Stop()
	log.Println("opsd stopped")
}
