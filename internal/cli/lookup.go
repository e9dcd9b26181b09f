package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/spf13/cobra"
)

var (
	lookupTimeout time.Duration
	oracleName    string
	oracleModel   string
	noCache       bool
	useAlpha      bool
	useSearch     bool
	noYahoo       bool
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <ticker> <attribute...>",
	Short: "Resolve one attribute phrase for a ticker",
	Long: `Lookup maps a free-text attribute phrase to a canonical metric and
fetches its formatted value from the first data provider that has it.

Example:
  finfact lookup GOOGL "stock price"
  finfact lookup TSLA "price in 2022"
  finfact lookup AAPL "how much cash do they have" --oracle openai
  finfact lookup MSFT "annual revenue" --alphavantage --websearch`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 60*time.Second, "overall lookup timeout")
	lookupCmd.Flags().StringVar(&oracleName, "oracle", "rules", "classification oracle (rules, openai, anthropic, ollama)")
	lookupCmd.Flags().StringVar(&oracleModel, "model", "", "oracle model name (backend default when empty)")
	lookupCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	lookupCmd.Flags().BoolVar(&noYahoo, "no-yahoo", false, "disable the Yahoo Finance provider")
	lookupCmd.Flags().BoolVar(&useAlpha, "alphavantage", false, "enable the Alpha Vantage provider (needs ALPHAVANTAGE_API_KEY)")
	lookupCmd.Flags().BoolVar(&useSearch, "websearch", false, "enable the web search fallback (needs TAVILY_API_KEY)")
}

// lookupConfig builds the config shared by lookup, verify and batch from
// the common flags
func lookupConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Classifier.Oracle = oracleName
	cfg.Classifier.Model = oracleModel
	cfg.Cache.Enabled = !noCache
	cfg.Sources.Yahoo.Enabled = !noYahoo
	cfg.Sources.Alpha.Enabled = useAlpha
	cfg.Search.Enabled = useSearch
	cfg.Output.Verbose = verbose
	return cfg
}

func runLookup(cmd *cobra.Command, args []string) error {
	ticker := strings.ToUpper(args[0])
	attribute := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	cfg := lookupConfig()

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Ticker:    %s\n", ticker)
		fmt.Fprintf(os.Stderr, "Attribute: %s\n", attribute)
		fmt.Fprintf(os.Stderr, "Providers: %s\n", strings.Join(reg.Names(), ", "))
		fmt.Fprintln(os.Stderr)
	}

	val, err := reg.Lookup(ctx, ticker, attribute)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			fmt.Println("data not found in any connected provider")
			return nil
		}
		return fmt.Errorf("lookup failed: %w", err)
	}

	fmt.Println(val)
	return nil
}
