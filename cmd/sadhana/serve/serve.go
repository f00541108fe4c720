// Package servecmder provides the serve command that runs the practice API
// server with its storage, event stream, and adaptation wiring.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dhvanilabs/sadhana/api"
	"github.com/dhvanilabs/sadhana/pkg/adapt"
	"github.com/dhvanilabs/sadhana/pkg/bhav"
	"github.com/dhvanilabs/sadhana/pkg/config"
	"github.com/dhvanilabs/sadhana/pkg/dotdir"
	"github.com/dhvanilabs/sadhana/pkg/eventlog"
	"github.com/dhvanilabs/sadhana/pkg/eventlog/inmemory"
	"github.com/dhvanilabs/sadhana/pkg/eventlog/postgres"
	"github.com/dhvanilabs/sadhana/pkg/eventlog/sqlite"
	"github.com/dhvanilabs/sadhana/pkg/eventstream"
	"github.com/dhvanilabs/sadhana/pkg/eventstream/kafka"
	"github.com/dhvanilabs/sadhana/pkg/eventstream/nop"
	"github.com/dhvanilabs/sadhana/pkg/logger"
	"github.com/dhvanilabs/sadhana/pkg/projection"
	"github.com/dhvanilabs/sadhana/pkg/session"
	"github.com/dhvanilabs/sadhana/pkg/worker"
)

// serveFlags is the registry of flags the serve command exposes. Each entry
// maps a flag to its viper key so flag > env > config file > default
// precedence holds.
var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l", ViperKey: "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagStorageProvider: {
		Name: "storage-provider", ViperKey: "storage.provider",
		Description: "Event log backend (inmemory, sqlite, postgres)",
	},
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to the SQLite event log database",
	},
	config.FlagPostgresDSN: {
		Name: "postgres-dsn", ViperKey: "storage.postgres_dsn",
		Description: "Postgres connection string for the event log",
	},
	config.FlagStreamProvider: {
		Name: "stream-provider", ViperKey: "event_stream.provider",
		Description: "Event stream backend (nop, kafka)",
	},
	config.FlagStreamBrokers: {
		Name: "stream-brokers", ViperKey: "event_stream.brokers",
		Description: "Comma-separated Kafka broker addresses",
	},
	config.FlagStreamTopic: {
		Name: "stream-topic", ViperKey: "event_stream.topic",
		Description: "Topic practice events are published to",
	},
	config.FlagEnrichmentTarget: {
		Name: "enrichment-target", ViperKey: "enrichment.target",
		Description: "URL of the adaptation enrichment service",
	},
	config.FlagEnrichmentModel: {
		Name: "enrichment-model", ViperKey: "enrichment.model",
		Description: "Model name sent to the enrichment service",
	},
}

var boundFlags = []string{
	config.FlagAPIListen,
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagStreamProvider,
	config.FlagStreamBrokers,
	config.FlagStreamTopic,
	config.FlagEnrichmentTarget,
	config.FlagEnrichmentModel,
}

type ServeCommander struct {
	listen           string
	storageProvider  string
	sqlitePath       string
	postgresDSN      string
	streamProvider   string
	streamBrokers    string
	streamTopic      string
	enrichmentTarget string
	enrichmentModel  string

	debug     bool
	configDir string
	viper     *viper.Viper
	logger    *slog.Logger
}

const serveLongDesc string = `Run the sadhana practice API server.

The server drives practice sessions end to end: stage gating, bhav scoring
against lineage golden profiles, context-fused adaptation decisions, the
append-only session event log, and the summary and progress projections.

Storage, event stream, and enrichment wiring come from flags, SADHANA_
environment variables, or config.toml, in that order of precedence.`

const serveShortDesc string = "Run the sadhana practice API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.configDir = configDir

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, boundFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamProvider, &cmder.streamProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamBrokers, &cmder.streamBrokers)
	config.AddStringFlag(cmd, serveFlags, config.FlagStreamTopic, &cmder.streamTopic)
	config.AddStringFlag(cmd, serveFlags, config.FlagEnrichmentTarget, &cmder.enrichmentTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagEnrichmentModel, &cmder.enrichmentModel)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
	)
	slog.SetDefault(c.logger)

	ctx := context.Background()

	store, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := projection.NewEngine(store, projection.WithLogger(c.logger))
	if err := engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding projections: %w", err)
	}

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	policy := c.newPolicy()

	registry, err := c.newRegistry()
	if err != nil {
		return err
	}

	manager, err := session.NewManager(&session.Config{
		Store:    store,
		Engine:   engine,
		Registry: registry,
		Policy:   policy,
		Pool:     pool,
		Source: eventstream.EventSource{
			Service:  "sadhana",
			Instance: hostname(),
		},
		Lineage:       c.viper.GetString("scoring.lineage"),
		GoldenProfile: c.viper.GetString("scoring.golden_profile"),
		Logger:        c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	server := api.NewServer(api.Config{ListenAddr: c.viper.GetString("api.listen")}, manager, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		pool.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	// Shutdown order: stop accepting requests, drain pending publishes,
	// then release the store in the deferred close.
	if err := server.Shutdown(); err != nil {
		c.logger.Error("shutting down API server", "error", err)
	}
	pool.Close()

	return nil
}

func (c *ServeCommander) newStore(ctx context.Context) (eventlog.Store, error) {
	provider := c.viper.GetString("storage.provider")

	switch provider {
	case "sqlite":
		path := c.viper.GetString("storage.sqlite_path")
		store, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("creating SQLite event log: %w", err)
		}
		c.logger.Info("using SQLite event log", "path", path)
		return store, nil

	case "postgres":
		dsn := c.viper.GetString("storage.postgres_dsn")
		store, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("creating Postgres event log: %w", err)
		}
		c.logger.Info("using Postgres event log")
		return store, nil

	case "inmemory":
		c.logger.Info("using in-memory event log")
		return inmemory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", provider)
	}
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	provider := c.viper.GetString("event_stream.provider")

	switch provider {
	case "kafka":
		brokers := strings.Split(c.viper.GetString("event_stream.brokers"), ",")
		topic := c.viper.GetString("event_stream.topic")
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating Kafka publisher: %w", err)
		}
		c.logger.Info("publishing practice events to Kafka", "brokers", brokers, "topic", topic)
		return publisher, nil

	case "nop":
		c.logger.Info("event stream publishing disabled")
		return nop.NewPublisher(), nil

	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", provider)
	}
}

func (c *ServeCommander) newPolicy() *adapt.Policy {
	opts := []adapt.PolicyOption{adapt.WithLogger(c.logger)}

	if c.viper.GetBool("enrichment.enabled") {
		target := c.viper.GetString("enrichment.target")
		model := c.viper.GetString("enrichment.model")
		timeout := time.Duration(c.viper.GetUint("enrichment.timeout_ms")) * time.Millisecond

		opts = append(opts,
			adapt.WithEnricher(adapt.NewHTTPEnricher(target, model)),
			adapt.WithEnrichTimeout(timeout),
		)
		c.logger.Info("adaptation enrichment enabled", "target", target, "model", model)
	}

	return adapt.NewPolicy(opts...)
}

// newRegistry builds the lineage registry, applying any local threshold
// overrides persisted in .sadhana/profiles.json.
func (c *ServeCommander) newRegistry() (*bhav.Registry, error) {
	registry := bhav.DefaultRegistry()

	overrides, err := dotdir.NewManager().LoadProfileOverrides(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading profile overrides: %w", err)
	}
	if overrides == nil {
		return registry, nil
	}

	for lineageID, o := range overrides.Lineages {
		registry.OverrideThresholds(lineageID, bhav.Thresholds{
			Discipline: o.Discipline,
			Resonance:  o.Resonance,
			Coherence:  o.Coherence,
			Composite:  o.Composite,
		})
	}
	c.logger.Info("applied lineage threshold overrides",
		"golden_profile", overrides.GoldenProfile,
		"lineages", len(overrides.Lineages))

	return registry, nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}
