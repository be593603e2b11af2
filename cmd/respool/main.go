package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	resourcepool "github.com/cohmetrix/resource-pool"
	"github.com/cohmetrix/resource-pool/batch"
	"github.com/cohmetrix/resource-pool/config"
	"github.com/cohmetrix/resource-pool/defaultpool"
	"github.com/cohmetrix/resource-pool/logger"
	"github.com/cohmetrix/resource-pool/metrics"
	"github.com/cohmetrix/resource-pool/text"
)

var version = "0.1.0"

var defaultWarmResources = []string{
	defaultpool.Tokens,
	defaultpool.TaggedWords,
	defaultpool.ContentWords,
	defaultpool.TokenTypes,
}

func main() {
	v := viper.New()
	v.SetEnvPrefix("RESPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "respool",
		Short: "respool - shared resource pool for linguistic metrics",
		Long: `respool builds the default resource pool (tokenization, tagging, parsing,
database lookups, LSA and language models) and runs it over batches of texts.

Configuration comes from a YAML file, RESPOOL_* environment variables
(RESPOOL_POOL_CAPACITY, RESPOOL_LOGGING_LEVEL, ...) and flags, in increasing
order of precedence.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to YAML configuration file")
	root.PersistentFlags().Int("capacity", config.DefaultCapacity, "Unpinned cache capacity")
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("pool.capacity", root.PersistentFlags().Lookup("capacity"))
	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("respool v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "resources",
		Short: "List the resources of the default pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			tk, err := defaultpool.FromConfig(cfg.Tools, cfg.Database)
			if err != nil {
				return err
			}
			p, err := defaultpool.New(tk, cfg.Pool.Capacity)
			if err != nil {
				return err
			}
			defer p.Close()

			for _, name := range p.Names() {
				kind := "unpinned"
				if p.Pinned(name) {
					kind = "pinned"
				}
				fmt.Printf("  %-28s %s\n", name, kind)
			}
			return nil
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write a configuration file with the current settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "respool.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := initConfig(v, path, force); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(initCmd)
	root.AddCommand(configCmd)

	var resources []string
	warmCmd := &cobra.Command{
		Use:   "warm FILE...",
		Short: "Resolve resources for a batch of text files",
		Long: `Resolve resources for every text file with a shared pool and report
which resources could not be computed.

Example:
  respool warm --resource tokens --resource cw_freq texts/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if v.GetBool("tracing.enabled") {
				shutdown, err := initTracing(os.Stderr)
				if err != nil {
					return err
				}
				defer func() { _ = shutdown(context.Background()) }()
			}
			return runWarm(cmd.Context(), cfg, resources, args)
		},
	}
	warmCmd.Flags().StringSliceVarP(&resources, "resource", "r", defaultWarmResources, "Resources to resolve for each text")
	warmCmd.Flags().Int("workers", 4, "Texts processed in parallel")
	warmCmd.Flags().Bool("enable-metrics", false, "Serve Prometheus metrics while running")
	warmCmd.Flags().String("metrics-address", ":9090", "Metrics listen address")
	warmCmd.Flags().Bool("trace", false, "Write hook spans to stderr")
	_ = v.BindPFlag("tracing.enabled", warmCmd.Flags().Lookup("trace"))
	_ = v.BindPFlag("batch.workers", warmCmd.Flags().Lookup("workers"))
	_ = v.BindPFlag("metrics.enabled", warmCmd.Flags().Lookup("enable-metrics"))
	_ = v.BindPFlag("metrics.address", warmCmd.Flags().Lookup("metrics-address"))
	root.AddCommand(warmCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, then applies environment and
// flag overrides through viper.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	overrideInt(v, "pool.capacity", &cfg.Pool.Capacity)
	overrideInt(v, "batch.workers", &cfg.Batch.Workers)
	overrideString(v, "logging.level", &cfg.Logging.Level)
	overrideString(v, "logging.encoding", &cfg.Logging.Encoding)
	overrideString(v, "metrics.address", &cfg.Metrics.Address)
	overrideString(v, "database.host", &cfg.Database.Host)
	overrideInt(v, "database.port", &cfg.Database.Port)
	overrideString(v, "database.user", &cfg.Database.User)
	overrideString(v, "database.password", &cfg.Database.Password)
	overrideString(v, "database.name", &cfg.Database.DBName)
	overrideString(v, "tools.lexicon_path", &cfg.Tools.LexiconPath)
	overrideString(v, "tools.lsa_vectors_path", &cfg.Tools.LsaVectorsPath)
	overrideString(v, "tools.language_model_path", &cfg.Tools.LanguageModelPath)
	if v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	}

	return cfg, cfg.Validate()
}

// initConfig writes the effective configuration to path.
func initConfig(v *viper.Viper, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	return config.Save(path, cfg)
}

// A flag only overrides the file when it was passed explicitly; IsSet
// reports bound flags as set only in that case.
func overrideInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func runWarm(ctx context.Context, cfg config.Config, resources, files []string) error {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tk, err := defaultpool.FromConfig(cfg.Tools, cfg.Database)
	if err != nil {
		return err
	}
	p, err := defaultpool.New(tk, cfg.Pool.Capacity,
		resourcepool.WithLogger(log),
		resourcepool.WithMetrics(metrics.NewPrometheus(reg, cfg.Metrics.Namespace)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn("closing pool", zap.Error(err))
		}
	}()

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("address", cfg.Metrics.Address))
	}

	texts := make([]*text.Text, 0, len(files))
	for _, f := range files {
		t, err := text.ReadFile(f)
		if err != nil {
			return err
		}
		texts = append(texts, t)
	}

	start := time.Now()
	results, err := batch.Runner{
		Pool:      p,
		Resources: resources,
		Workers:   cfg.Batch.Workers,
		Logger:    log,
	}.Run(ctx, texts)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%s\t%s\tERROR %v\n", r.Text, r.Resource, r.Err)
		}
	}

	st := p.Stats()
	fmt.Println("\n==================== POOL ====================")
	fmt.Printf("TEXTS      : %d\n", len(texts))
	fmt.Printf("RESOURCES  : %d (%d failed)\n", len(results), failed)
	fmt.Printf("HITS       : %d\n", st.Hits)
	fmt.Printf("MISSES     : %d\n", st.Misses)
	fmt.Printf("EVICTIONS  : %d\n", st.Evictions)
	fmt.Printf("PINNED     : %d\n", st.Pinned)
	fmt.Printf("UNPINNED   : %d/%d\n", st.Unpinned, st.Capacity)
	fmt.Printf("ELAPSED    : %v\n", time.Since(start))
	return nil
}
