package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/logger"
	"github.com/hirelens/hirelens/internal/recommend"
)

const (
	PromptNewQuery = "New query"
	PromptExit     = "exit"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Recommend assessments for a role description from the terminal",
	Run: func(_ *cobra.Command, args []string) {
		runQuery(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 10, "number of results to return")
}

func runQuery(text string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	service, err := buildService(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the recommendation service", zap.Error(err))
	}

	// One-shot mode when the query is given as an argument.
	if strings.TrimSpace(text) != "" {
		result, err := service.Recommend(ctx, text, queryTopK)
		if err != nil {
			logger.Fatal("recommendation failed", zap.Error(err))
		}
		printResult(result)
		return
	}

	for {
		prompt := promptui.Prompt{Label: "Role description"}
		text, err := prompt.Run()
		if err != nil {
			return
		}

		result, err := service.Recommend(ctx, text, queryTopK)
		if err != nil {
			if errors.Is(err, recommend.ErrEmptyQuery) {
				continue
			}
			logger.Fatal("recommendation failed", zap.Error(err))
		}

		if err := browseResult(result); err != nil {
			return
		}
	}
}

func printResult(result *recommend.Result) {
	fmt.Printf("query: %s\n", result.Query)
	for i, a := range result.Assessments {
		fmt.Printf("%2d. [%.2f] %s\n", i+1, a.RelevanceScore, a.Name)
		if a.RelevanceReason != "" {
			fmt.Printf("      %s\n", a.RelevanceReason)
		}
		fmt.Printf("      %s\n", a.URL)
	}
}

// browseResult lets the user drill into single results until they move on.
func browseResult(result *recommend.Result) error {
	for {
		items := make([]string, 0, len(result.Assessments)+2)
		for _, a := range result.Assessments {
			items = append(items, fmt.Sprintf("[%.2f] %s", a.RelevanceScore, a.Name))
		}
		items = append(items, PromptNewQuery, PromptExit)

		selection := promptui.Select{
			Label: "Recommended assessments",
			Items: items,
			Size:  len(items),
		}

		idx, chosen, err := selection.Run()
		if err != nil {
			return err
		}

		switch chosen {
		case PromptNewQuery:
			return nil
		case PromptExit:
			return errors.New("exit requested")
		default:
			printAssessment(result.Assessments[idx])
		}
	}
}

func printAssessment(a recommend.AssessmentView) {
	fmt.Printf("\n%s\n%s\n", a.Name, a.URL)
	if a.Desc != "" {
		fmt.Printf("%s\n", a.Desc)
	}
	if a.DurationMax > 0 {
		fmt.Printf("duration: %d-%d minutes\n", a.DurationMin, a.DurationMax)
	}
	if a.JobLevels != "" {
		fmt.Printf("job levels: %s\n", a.JobLevels)
	}
	if len(a.TestTypes) > 0 {
		fmt.Printf("test types: %s\n", strings.Join(a.TestTypes, ", "))
	}
	if len(a.Languages) > 0 {
		fmt.Printf("languages: %s\n", strings.Join(a.Languages, ", "))
	}
	if a.RelevanceReason != "" {
		fmt.Printf("why: %s\n", a.RelevanceReason)
	}
	fmt.Println()
}
