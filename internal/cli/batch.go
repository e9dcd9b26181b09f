package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple statements from a file in parallel",
	Long: `Batch verifies many statements concurrently:
- Read statements from input file (one per line)
- Decompose each into claims and look the claims up
- Process statements in parallel with configurable worker count

Within one statement the providers are still tried strictly in order.

Example:
  finfact batch statements.txt
  finfact batch statements.txt --concurrency 8 --websearch
  finfact batch statements.txt --oracle openai --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 3*time.Minute, "timeout per statement")

	// Inherit flags from verify command
	batchCmd.Flags().BoolVar(&withTemporal, "temporal", false, "resolve relative time references before lookup")
	batchCmd.Flags().StringVar(&oracleName, "oracle", "rules", "classification oracle (rules, openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&oracleModel, "model", "", "oracle model name (backend default when empty)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noYahoo, "no-yahoo", false, "disable the Yahoo Finance provider")
	batchCmd.Flags().BoolVar(&useAlpha, "alphavantage", false, "enable the Alpha Vantage provider (needs ALPHAVANTAGE_API_KEY)")
	batchCmd.Flags().BoolVar(&useSearch, "websearch", false, "enable the web search fallback (needs TAVILY_API_KEY)")
}

// statementJob verifies one statement on the worker pool
type statementJob struct {
	Statement string
	Verifier  *verifier
	Timeout   time.Duration
}

// statementResult is the outcome of one statement
type statementResult struct {
	Statement string
	Results   []claimResult
	Error     error
}

// GetError returns the error from the statement result
func (r *statementResult) GetError() error {
	return r.Error
}

// Execute executes the verify job
func (j *statementJob) Execute(ctx context.Context) worker.Result {
	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	results, err := j.Verifier.verifyStatement(ctx, j.Statement)
	return &statementResult{
		Statement: j.Statement,
		Results:   results,
		Error:     err,
	}
}

// readStatements reads statements from a file (one per line), skipping
// blanks and # comments
func readStatements(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var statements []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		statements = append(statements, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return statements, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	statements, err := readStatements(file)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		return fmt.Errorf("no statements in %s", file)
	}

	cfg := lookupConfig()
	cfg.Concurrency.Workers = concurrency

	v, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Verifying %d statements with %d workers\n\n", len(statements), cfg.Concurrency.Workers)

	pool := worker.NewPool(cfg.Concurrency.Workers)
	pool.Start()

	for _, s := range statements {
		pool.Submit(&statementJob{Statement: s, Verifier: v, Timeout: batchTimeout})
	}

	results := pool.Wait()

	successCount := 0
	failureCount := 0
	for _, r := range results {
		sr := r.(*statementResult)
		if sr.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", sr.Statement, sr.Error)
			continue
		}
		successCount++
		printResults(sr.Statement, sr.Results)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d statements\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)

	return nil
}
