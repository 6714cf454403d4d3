// Command normalizer-server runs the node normalization HTTP API described
// in spec.md: it loads the service config, wires a Redis-backed MultiStore,
// category ontology, and label policy into a Resolver, and serves the
// normalization, setid, TRAPI message, and metadata endpoints until an OS
// signal requests a graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nodenorm/node-normalizer/internal/application/message"
	"github.com/nodenorm/node-normalizer/internal/application/resolver"
	"github.com/nodenorm/node-normalizer/internal/application/setid"
	"github.com/nodenorm/node-normalizer/internal/config"
	"github.com/nodenorm/node-normalizer/internal/domain/category"
	"github.com/nodenorm/node-normalizer/internal/domain/labelpolicy"
	redisclient "github.com/nodenorm/node-normalizer/internal/infrastructure/database/redis"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store/redisstore"
	httpserver "github.com/nodenorm/node-normalizer/internal/interfaces/http"
	"github.com/nodenorm/node-normalizer/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the service config file")
	ontologyPath := flag.String("ontology", "configs/category-ontology.json", "path to the biolink category ancestor table (JSON)")
	labelPolicyPath := flag.String("label-policy", "configs/label-policy.json", "path to the label selection policy file")
	flag.Parse()

	if err := run(*configPath, *ontologyPath, *labelPolicyPath); err != nil {
		fmt.Fprintln(os.Stderr, "normalizer-server:", err)
		os.Exit(1)
	}
}

func run(configPath, ontologyPath, labelPolicyPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	log.Info("starting normalizer-server",
		logging.String("version", version),
		logging.String("commit", gitCommit),
		logging.String("built", buildDate),
	)

	ontologyFile, err := os.Open(ontologyPath)
	if err != nil {
		return fmt.Errorf("opening category ontology %s: %w", ontologyPath, err)
	}
	defer ontologyFile.Close()
	staticOntology, err := category.LoadStaticOntology(ontologyFile)
	if err != nil {
		return fmt.Errorf("loading category ontology: %w", err)
	}
	ontology := category.NewCachedOntology(staticOntology)

	policyFile, err := os.Open(labelPolicyPath)
	if err != nil {
		return fmt.Errorf("opening label policy %s: %w", labelPolicyPath, err)
	}
	defer policyFile.Close()
	policy, err := labelpolicy.Load(policyFile)
	if err != nil {
		return fmt.Errorf("loading label policy: %w", err)
	}

	redisClient, err := redisclient.NewClient(cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}

	multiStore := redisstore.New(redisClient, nil, cfg.Resolver.EQBatchSize, cfg.Resolver.PipelineBlockSize, log)

	var metricsCollector prometheus.MetricsCollector
	var appMetrics *prometheus.AppMetrics
	if cfg.Metrics.Enabled {
		metricsCollector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return fmt.Errorf("initializing metrics collector: %w", err)
		}
		appMetrics = prometheus.NewAppMetrics(metricsCollector)
	}

	r := resolver.New(multiStore, ontology, policy, log)
	h := httpserver.Handlers{
		Health:    handlers.NewHealthHandler(multiStore, cfg.BabelVersion),
		Normalize: handlers.NewNormalizeHandler(r),
		SetID:     handlers.NewSetIDHandler(setid.New(r)),
		Message:   handlers.NewMessageHandler(message.New(r, log), log),
		Metadata:  handlers.NewMetadataHandler(r),
	}
	router := httpserver.NewRouter(h, log, cfg.Server.Mode, metricsCollector, appMetrics)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		MaxHeaderBytes:  int(cfg.Server.MaxBodySize),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
