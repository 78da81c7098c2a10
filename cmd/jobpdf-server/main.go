// Command jobpdf-server serves the intake and quote reports over HTTP.
//
// Settings come from the -config YAML file, overridden by JOBPDF_*
// environment variables. Setting JOBPDF_REDIS_ADDR enables the render
// cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/revuapp/jobpdf/cache"
	"github.com/revuapp/jobpdf/config"
	"github.com/revuapp/jobpdf/server"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults when empty or missing)")
	initConfig := flag.String("init", "", "write the default config to this path and exit")
	debug := flag.Bool("debug", false, "run gin in debug mode")
	flag.Parse()

	if *initConfig != "" {
		if err := config.Default().Save(*initConfig); err != nil {
			fmt.Fprintf(os.Stderr, "jobpdf-server: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *initConfig)
		return
	}

	logger := config.NewLogger(os.Stderr, "server")
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Fatal(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.Fatal(err)
	}
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c *cache.Cache
	if cfg.Cache.Enabled {
		store := cache.NewRedisStore(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			logger.Printf("cache unavailable, rendering every request: %v", err)
		}
		c = cache.New(store, cfg.Cache.TTL, config.NewLogger(os.Stderr, "cache"))
	}

	srv, err := server.New(cfg, c, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal(err)
	}
	logger.Println("shut down")
}
