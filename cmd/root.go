package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/ai/gemini"
	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/query"
	"github.com/hirelens/hirelens/internal/ranking"
	"github.com/hirelens/hirelens/internal/recommend"
	"github.com/hirelens/hirelens/internal/rerank"
	"github.com/hirelens/hirelens/internal/secrets"
	"github.com/hirelens/hirelens/internal/server"
)

const (
	app = "hirelens"
)

type Config struct {
	Catalog       string         `mapstructure:"catalog"`
	CandidatePool int            `mapstructure:"candidate-pool"`
	Server        server.Config  `mapstructure:"server"`
	Ranking       ranking.Params `mapstructure:"ranking"`
	AI            *AIConfig      `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api-key"`
	APIKeyFile     string        `mapstructure:"api-key-file"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding-model"`
	RewriteTimeout time.Duration `mapstructure:"rewrite-timeout"`
	RerankTimeout  time.Duration `mapstructure:"rerank-timeout"`
	MaxLogLength   int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hirelens recommends pre-built job assessments for a role description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hirelens.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine, the defaults cover local use. A broken
	// one is not.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{
		Catalog: "data/catalog.json",
		Ranking: ranking.DefaultParams(),
	}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Ranking.AlphaVector == 0 && config.Ranking.AlphaLexical == 0 {
		config.Ranking = ranking.DefaultParams()
	}

	return config, nil
}

// newGeminiClient resolves the API key and builds the shared Gemini client,
// or returns (nil, nil) when AI is disabled so that the pipeline runs in
// fully degraded mode.
func newGeminiClient(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Client, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.Provider != "" && cfg.Provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.APIKey(cfg.Gemini.APIKey, cfg.Gemini.APIKeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key, ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	logger.Info("gemini client ready", zap.String("model", client.Model()))
	return client, nil
}

// buildService loads the catalog and wires the full recommendation pipeline.
func buildService(ctx context.Context, config *Config, logger *zap.Logger) (*recommend.Service, error) {
	store, err := catalog.Load(config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	logger.Info("catalog loaded",
		zap.String("path", config.Catalog),
		zap.Int("records", store.Len()),
		zap.Int("embedding_dims", store.Dimensions()),
	)

	client, err := newGeminiClient(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}
	if client == nil {
		logger.Warn("ai is disabled; queries degrade to offline parsing and hybrid order")
	}

	var (
		rewriteTimeout time.Duration
		rerankTimeout  time.Duration
		maxLogLength   int
	)
	if config.AI != nil && config.AI.Gemini != nil {
		rewriteTimeout = config.AI.Gemini.RewriteTimeout
		rerankTimeout = config.AI.Gemini.RerankTimeout
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	// The typed nil matters here: the pipeline packages check their
	// injected dependencies against nil interfaces.
	var (
		understander *query.Understander
		reranker     *rerank.Reranker
		ranker       *ranking.Ranker
	)
	if client != nil {
		understander = query.NewUnderstander(client, logger, rewriteTimeout, maxLogLength)
		reranker = rerank.NewReranker(client, logger, rerankTimeout, maxLogLength)
		ranker = ranking.NewRanker(store, client, config.Ranking, logger)
	} else {
		understander = query.NewUnderstander(nil, logger, rewriteTimeout, maxLogLength)
		reranker = rerank.NewReranker(nil, logger, rerankTimeout, maxLogLength)
		ranker = ranking.NewRanker(store, nil, config.Ranking, logger)
	}

	return recommend.NewService(understander, ranker, reranker, config.CandidatePool, logger), nil
}
