// Package main implements the feastserve CLI, grounded on
// original_source/cli/src/main.rs and cli_options.rs, with flag handling in
// the style of Pieczasz-smf/cmd/smf/main.go's cobra usage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/feast-serving/engine/internal/config"
	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/internal/grpcapi"
	"github.com/feast-serving/engine/internal/health"
	"github.com/feast-serving/engine/internal/httpapi"
	"github.com/feast-serving/engine/internal/metrics"
	"github.com/feast-serving/engine/internal/onlinestore"
	"github.com/feast-serving/engine/internal/onlinestore/redis"
	"github.com/feast-serving/engine/internal/onlinestore/relational"
	"github.com/feast-serving/engine/internal/registry"
	"github.com/feast-serving/engine/internal/registry/blob"
	"github.com/feast-serving/engine/internal/registry/cache"
	"github.com/feast-serving/engine/internal/registry/file"
	"github.com/feast-serving/engine/internal/registry/sql"
	loggerPkg "github.com/feast-serving/engine/pkg/logger"
)

// Build information, set via -ldflags at release build time.
var (
	version   string = "dev"
	commit    string = "none"
	buildDate string = "unknown"
)

const (
	featureRepoDirEnvVar       = "FEATURE_REPO_DIR_ENV_VAR"
	featureStoreYAMLPathEnvVar = "FEAST_FS_YAML_FILE_PATH"
	defaultFeatureStoreYAML    = "feature_store.yaml"
)

// rootFlags holds persistent flags shared by every subcommand.
type rootFlags struct {
	chdir            string
	logLevel         string
	featureStoreYAML string
}

// serveFlags holds the serve subcommand's own flags.
type serveFlags struct {
	host           string
	port           int
	serveType      string
	key            string
	cert           string
	metricsEnabled bool
}

func main() {
	root := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "feastserve",
		Short:   "Serve a feature repository's online features over HTTP or gRPC",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
	}
	rootCmd.PersistentFlags().StringVarP(&root.chdir, "chdir", "c", "", "switch to a different feature repository directory before executing the given subcommand (or FEATURE_REPO_DIR_ENV_VAR)")
	rootCmd.PersistentFlags().StringVar(&root.logLevel, "log-level", "info", "logging level: debug, info, warning, error, critical")
	rootCmd.PersistentFlags().StringVarP(&root.featureStoreYAML, "feature-store-yaml", "f", "", "override the directory where the CLI should look for the feature_store.yaml file (or FEAST_FS_YAML_FILE_PATH)")

	rootCmd.AddCommand(serveCmd(root))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(root *rootFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a feature server locally on a given port",
		RunE: func(*cobra.Command, []string) error {
			return runServe(root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.host, "host", "n", "127.0.0.1", "host to bind the server to")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 6566, "port to bind the server to")
	cmd.Flags().StringVarP(&flags.serveType, "type", "t", "http", "server type: http or grpc")
	cmd.Flags().StringVarP(&flags.key, "key", "k", "", "path to TLS certificate private key (requires --cert)")
	cmd.Flags().StringVar(&flags.cert, "cert", "", "path to TLS certificate public key (requires --key)")
	cmd.Flags().BoolVarP(&flags.metricsEnabled, "metrics", "m", false, "enable the metrics server (HTTP only)")

	return cmd
}

func runServe(root *rootFlags, flags *serveFlags) error {
	if (flags.key != "") != (flags.cert != "") {
		return fmt.Errorf("both --key and --cert must be provided to enable TLS")
	}
	if flags.serveType != "http" && flags.serveType != "grpc" {
		return fmt.Errorf("unsupported server type %q: must be http or grpc", flags.serveType)
	}

	cwd, err := resolveRepoDir(root.chdir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cwd, root.featureStoreYAML)
	if err != nil {
		return err
	}
	if err := applyLogLevelOverride(cfg, root.logLevel); err != nil {
		return err
	}
	if cfg.Provider != "" && !cfg.Provider.Known() {
		return fmt.Errorf("unsupported provider: %s, available providers: [local, aws, gcp]", cfg.Provider)
	}

	log, err := loggerPkg.NewZapLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	log.Info("starting feastserve",
		loggerPkg.String("version", version),
		loggerPkg.String("commit", commit),
		loggerPkg.String("project", cfg.Project),
		loggerPkg.String("repo_dir", cwd))

	ctx := context.Background()

	catalogSource, err := openRegistrySource(cfg.Registry, cfg.Project, cwd)
	if err != nil {
		return fmt.Errorf("opening registry source: %w", err)
	}
	ttl := time.Duration(cfg.Registry.CacheTTLSeconds) * time.Second
	cachedSource, err := cache.NewCachedSource(ctx, catalogSource, ttl, log)
	if err != nil {
		return fmt.Errorf("loading initial registry snapshot: %w", err)
	}
	catalog := registry.NewSnapshotCatalog(cachedSource)

	store, err := openOnlineStore(cfg.OnlineStore, cfg.Project)
	if err != nil {
		return fmt.Errorf("opening online store: %w", err)
	}

	metricsImpl := "noop"
	if flags.metricsEnabled {
		metricsImpl = "prometheus"
	}
	collector := metrics.NewCollector(metricsImpl)

	fstore := featurestore.New(catalog, store, collector)

	checker := health.NewChecker(version, buildDate)
	checker.AddCheck(health.NewRegistryLoadedCheck(cachedSource))
	checker.AddCheck(health.NewOnlineStoreReachableCheck(string(cfg.OnlineStore.Type), store))

	serverCfg := config.ServerConfig{
		Host: flags.host,
		Port: flags.port,
		Type: flags.serveType,
		TLS: config.TLSConfig{
			Enabled:  flags.key != "" && flags.cert != "",
			CertFile: flags.cert,
			KeyFile:  flags.key,
		},
	}

	log.Info("start serving", loggerPkg.String("address", fmt.Sprintf("%s:%d", flags.host, flags.port)), loggerPkg.String("type", flags.serveType))

	switch flags.serveType {
	case "grpc":
		if flags.metricsEnabled {
			log.Warn("metrics server is only available for HTTP; ignoring --metrics for gRPC")
		}
		return serveGRPC(serverCfg, fstore, log)
	default:
		return serveHTTP(serverCfg, fstore, checker, flags.metricsEnabled, log)
	}
}

func resolveRepoDir(chdir string) (string, error) {
	if chdir == "" {
		chdir = os.Getenv(featureRepoDirEnvVar)
	}
	if chdir != "" {
		return filepath.Abs(chdir)
	}
	return os.Getwd()
}

func loadConfig(cwd, featureStoreYAML string) (*config.Config, error) {
	if featureStoreYAML == "" {
		featureStoreYAML = os.Getenv(featureStoreYAMLPathEnvVar)
	}
	if featureStoreYAML == "" {
		featureStoreYAML = defaultFeatureStoreYAML
	}
	configPath := filepath.Join(cwd, featureStoreYAML)

	loader := config.NewYAMLLoader(configPath)
	cfg := &config.Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyLogLevelOverride maps the CLI's --log-level (debug/info/warning/
// error/critical) onto the zap level names cfg.Logging.Level expects,
// mirroring cli_options.rs's LogLevel -> tracing::Level conversion
// (Critical also maps to ERROR, matching the original).
func applyLogLevelOverride(cfg *config.Config, level string) error {
	switch strings.ToLower(level) {
	case "debug":
		cfg.Logging.Level = "debug"
	case "info":
		cfg.Logging.Level = "info"
	case "warning", "warn":
		cfg.Logging.Level = "warn"
	case "error", "critical":
		cfg.Logging.Level = "error"
	default:
		return fmt.Errorf("unsupported log level %q", level)
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	return nil
}

func openRegistrySource(cfg config.RegistryConfig, project, cwd string) (cache.Source, error) {
	switch cfg.RegistryType {
	case config.RegistryTypeSQL:
		return sql.Open("postgres", cfg.Path, project)
	case config.RegistryTypeBlob:
		return blob.Open(context.Background(), cfg.Path)
	default:
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		return file.NewSource(path), nil
	}
}

func openOnlineStore(cfg config.OnlineStoreConfig, project string) (onlinestore.Store, error) {
	switch cfg.Type {
	case config.OnlineStoreRedis:
		return redis.Open(cfg, project)
	default:
		return relational.Open("sqlite", cfg.Path, project)
	}
}

func serveHTTP(cfg config.ServerConfig, fstore *featurestore.FeatureStore, checker *health.Checker, metricsEnabled bool, log loggerPkg.Logger) error {
	srv := httpapi.NewServer(cfg, log)

	routerCfg := httpapi.DefaultRouterConfig()
	routerCfg.EnableMetrics = metricsEnabled
	httpapi.SetupRouter(srv.Router(), log, routerCfg, fstore, checker)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	return waitForShutdown(errCh, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}, log)
}

func serveGRPC(cfg config.ServerConfig, fstore *featurestore.FeatureStore, log loggerPkg.Logger) error {
	srv, err := grpcapi.NewServer(cfg, fstore, log)
	if err != nil {
		return fmt.Errorf("building gRPC server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	return waitForShutdown(errCh, func() error {
		srv.Stop()
		return nil
	}, log)
}

// waitForShutdown blocks until either the server reports a terminal error
// or a shutdown signal arrives, then runs stop. Modeled on
// cmd/server/main.go's setupSignalHandler, adapted to return an error
// instead of a bare channel close.
func waitForShutdown(errCh <-chan error, stop func() error, log loggerPkg.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("received shutdown signal")
		if err := stop(); err != nil {
			log.Error("error during shutdown", loggerPkg.Error(err))
			return err
		}
		return nil
	}
}
