package cmd

import (
	"context"
	"log"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/logger"
)

var (
	embedIn          string
	embedOut         string
	embedConcurrency int
	embedBatchSize   int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog build tooling",
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed a scraped catalog into the runnable artifact",
	Long: `Reads a scraped catalog JSON (records without embeddings), derives categories,
embeds every record's searchable text through the configured embedding model
and writes the artifact the serve command loads at startup.`,
	Run: func(_ *cobra.Command, _ []string) {
		embedCatalog()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVar(&embedIn, "in", "data/scraped.json", "scraped catalog file")
	embedCmd.Flags().StringVar(&embedOut, "out", "data/catalog.json", "artifact output file")
	embedCmd.Flags().IntVar(&embedConcurrency, "concurrency", 4, "number of concurrent embedding workers")
	embedCmd.Flags().IntVar(&embedBatchSize, "batch-size", 16, "records per embedding batch")
}

func embedCatalog() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newGeminiClient(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building gemini client", zap.Error(err))
	}
	if client == nil {
		logger.Fatal("embedding the catalog requires ai.enabled: true")
	}

	records, err := catalog.ReadScraped(embedIn)
	if err != nil {
		logger.Fatal("reading scraped catalog", zap.Error(err))
	}

	logger.Info("embedding catalog",
		zap.Int("records", len(records)),
		zap.Int("concurrency", embedConcurrency),
		zap.Int("batch_size", embedBatchSize),
	)

	// Categories feed into the searchable text, derive them before encoding.
	for _, r := range records {
		r.Category = catalog.Classify(r)
	}

	if err := embedAll(ctx, client.EmbedTexts, records, embedConcurrency, embedBatchSize); err != nil {
		logger.Fatal("embedding failed", zap.Error(err))
	}

	// Validates ids and dimensionality the same way the serve path will.
	if _, err := catalog.New(records); err != nil {
		logger.Fatal("built catalog failed validation", zap.Error(err))
	}

	if err := catalog.WriteArtifact(embedOut, records); err != nil {
		logger.Fatal("writing artifact", zap.Error(err))
	}

	logger.Info("catalog artifact written",
		zap.String("path", embedOut),
		zap.Int("records", len(records)),
	)
}

type embedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// embedAll encodes every record's searchable text in fixed-size batches
// spread over a bounded worker pool.
func embedAll(ctx context.Context, embed embedBatchFunc, records []*catalog.AssessmentRecord, concurrency, batchSize int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	if batchSize <= 0 {
		batchSize = 16
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, r := range batch {
				texts[i] = r.SearchableText()
			}

			vectors, err := embed(ctx, texts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for i, vec := range vectors {
				batch[i].Embedding = vec
			}
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
	}

	wg.Wait()
	return firstErr
}
