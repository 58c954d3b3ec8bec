package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/gophishfree/risk-engine/internal/adapters/deepscan"
	"github.com/gophishfree/risk-engine/internal/adapters/dnsscan"
	"github.com/gophishfree/risk-engine/internal/adapters/storage"
	"github.com/gophishfree/risk-engine/internal/api"
	"github.com/gophishfree/risk-engine/internal/application"
	"github.com/gophishfree/risk-engine/internal/config"
	"github.com/gophishfree/risk-engine/internal/domain/model"
	"github.com/gophishfree/risk-engine/internal/domain/scoring"
	"github.com/gophishfree/risk-engine/internal/ports"
	"github.com/gophishfree/risk-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
	})
	log.Info().
		Str("name", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("starting")

	// A missing or malformed artifact degrades to the neutral probability
	// rather than refusing to start
	forest, err := model.Load(cfg.Model.Path)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrModelUnavailable):
			log.Warn().Str("path", cfg.Model.Path).
				Msg("model artifact not found, scoring at neutral probability")
		case errors.Is(err, model.ErrMalformedModel):
			log.Warn().Err(err).Str("path", cfg.Model.Path).
				Msg("model artifact rejected, scoring at neutral probability")
		default:
			log.Fatal().Err(err).Msg("failed to load model artifact")
		}
		forest = nil
	} else {
		log.Info().Str("path", cfg.Model.Path).Int("trees", len(forest.Trees)).
			Msg("model artifact loaded")
	}

	engine := scoring.NewEngine(forest, cfg.App.Strict)
	prov := scoring.NewProvenanceSets(
		cfg.Provenance.TrustedDomains, cfg.Provenance.BlockedDomains)

	var resolver ports.DomainResolver
	if cfg.DNS.Enabled {
		resolver = buildDNSScanner(cfg, log)
	}

	var pages ports.PageScanner
	if cfg.DeepScan.Enabled {
		pages = deepscan.NewScanner(
			&http.Client{Timeout: cfg.DeepScan.RequestTimeout},
			log, cfg.DeepScan.MaxPages, cfg.DeepScan.RequestTimeout)
	}

	var store ports.Storage
	if cfg.Database.Enabled {
		pg, err := storage.NewPostgresStore(cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := pg.InitSchema(); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database schema")
		}
		defer pg.Close()
		store = pg
	}

	service := application.NewScanService(engine, prov, resolver, pages, store, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(service, registry, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildDNSScanner assembles the DNS stage: DoH transport, in-memory LRU
// cache and, when configured, a shared Redis layer behind it
func buildDNSScanner(cfg *config.Config, log *logger.Logger) *dnsscan.Scanner {
	client := dnsscan.NewDoHClient(cfg.DNS.DoHURL, &http.Client{Timeout: cfg.DNS.Timeout})

	var cache dnsscan.Cache = dnsscan.NewLRUCache(cfg.DNS.CacheSize)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, using in-memory dns cache only")
		} else {
			cache = dnsscan.NewTieredCache(cache,
				dnsscan.NewRedisCache(rdb, cfg.DNS.CacheTTL))
		}
	}

	return dnsscan.NewScanner(client, cache, log, 10)
}
