package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/classify"
	"github.com/ppiankov/finfact/internal/decompose"
	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/registry"
	"github.com/ppiankov/finfact/internal/temporal"
	"github.com/spf13/cobra"
)

var (
	verifyTimeout time.Duration
	withTemporal  bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <statement>",
	Short: "Decompose a statement into claims and look each one up",
	Long: `Verify breaks a free-text statement into atomic claims, then resolves
each claim's attribute against the data providers. Claims without a ticker
go to web search when it is enabled.

The output pairs every claimed value with the retrieved one. Judging the
pair is left to the reader.

Example:
  finfact verify "Tesla's revenue grew 20% last year while Apple paid a 0.5% dividend"
  finfact verify "Google traded at \$150 in 2022" --temporal`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 3*time.Minute, "overall verify timeout")
	verifyCmd.Flags().BoolVar(&withTemporal, "temporal", false, "resolve relative time references before lookup")
	verifyCmd.Flags().StringVar(&oracleName, "oracle", "rules", "classification oracle (rules, openai, anthropic, ollama)")
	verifyCmd.Flags().StringVar(&oracleModel, "model", "", "oracle model name (backend default when empty)")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	verifyCmd.Flags().BoolVar(&noYahoo, "no-yahoo", false, "disable the Yahoo Finance provider")
	verifyCmd.Flags().BoolVar(&useAlpha, "alphavantage", false, "enable the Alpha Vantage provider (needs ALPHAVANTAGE_API_KEY)")
	verifyCmd.Flags().BoolVar(&useSearch, "websearch", false, "enable the web search fallback (needs TAVILY_API_KEY)")
}

// verifier bundles everything one statement needs: the claim decomposer,
// the optional temporal resolver and the provider registry.
type verifier struct {
	decomposer *decompose.Decomposer
	resolver   *temporal.Resolver // nil when --temporal is off
	registry   *registry.Registry
}

func newVerifier(cfg *model.Config) (*verifier, error) {
	// Decomposition always needs OpenAI regardless of the chosen oracle
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set (required for claim decomposition)")
	}

	dec, err := decompose.NewDecomposer(decompose.Config{
		APIKey:  apiKey,
		Timeout: cfg.Classifier.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create decomposer: %w", err)
	}

	var res *temporal.Resolver
	if withTemporal {
		res, err = temporal.NewResolver(temporal.Config{
			APIKey:  apiKey,
			Timeout: cfg.Classifier.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create temporal resolver: %w", err)
		}
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return &verifier{decomposer: dec, resolver: res, registry: reg}, nil
}

// claimResult pairs a claim with what the providers returned for it
type claimResult struct {
	Claim     model.Claim
	Retrieved string
	Err       error
}

// verifyStatement decomposes the statement and looks up every claim.
// Lookup failures stay per-claim; only decomposition failure aborts the
// whole statement.
func (v *verifier) verifyStatement(ctx context.Context, statement string) ([]claimResult, error) {
	claims, err := v.decomposer.Decompose(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("decompose statement: %w", err)
	}

	var analysis *model.TemporalAnalysis
	if v.resolver != nil {
		analysis, err = v.resolver.Resolve(ctx, statement)
		if err != nil {
			// Temporal resolution is advisory; the lookup still works from
			// whatever markers the attribute text carries
			fmt.Fprintf(os.Stderr, "temporal resolution failed: %v\n", err)
			analysis = nil
		}
	}

	results := make([]claimResult, 0, len(claims))
	for _, claim := range claims {
		attribute := claim.Attribute
		if analysis != nil && !classify.HasTemporalMarker(attribute) {
			if tf := temporal.TimeframeFor(analysis, claim.Target); tf != "" {
				attribute = attribute + " in " + tf
			}
		}

		ticker := ""
		if claim.HasTicker() {
			ticker = strings.ToUpper(claim.Ticker)
		}

		val, err := v.registry.Lookup(ctx, ticker, attribute)
		results = append(results, claimResult{Claim: claim, Retrieved: val, Err: err})
	}

	return results, nil
}

// printResults writes one block per claim. No verdict is printed.
func printResults(statement string, results []claimResult) {
	fmt.Printf("Statement: %s\n\n", statement)
	for i, r := range results {
		fmt.Printf("Claim %d: %s / %s\n", i+1, r.Claim.Target, r.Claim.Attribute)
		if r.Claim.ClaimedValue != "" {
			fmt.Printf("  Claimed:   %s\n", r.Claim.ClaimedValue)
		}
		switch {
		case r.Err == nil:
			fmt.Printf("  Retrieved: %s\n", r.Retrieved)
		case errors.Is(r.Err, model.ErrNotFound):
			fmt.Printf("  Retrieved: data not found in any connected provider\n")
		default:
			fmt.Printf("  Retrieved: lookup failed: %v\n", r.Err)
		}
		fmt.Println()
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	statement := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg := lookupConfig()

	v, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Providers: %s\n\n", strings.Join(v.registry.Names(), ", "))
	}

	results, err := v.verifyStatement(ctx, statement)
	if err != nil {
		return err
	}

	printResults(statement, results)
	return nil
}
