// kontra-bench builds a synthetic in-memory dataset, runs it through the
// three-tier validation pipeline, and prints the resulting ValidationResult
// as JSON. Mirrors the teacher's cmd/benchmark: flag parsing with env-var
// defaults, a seeded random generator, log.Fatalf on setup failure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/factory"
)

type options struct {
	rows         int
	sample       int
	sampleBudget int
	seed         int64
	projection   bool
}

func main() {
	log.SetFlags(0)

	opts := parseFlags()

	rng := rand.New(rand.NewSource(opts.seed))
	frame, schema := buildFrame(rng, opts.rows)

	cfg := kontra.DefaultConfig()
	eng, err := factory.NewEngine(cfg)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}

	contract, err := buildContract()
	if err != nil {
		log.Fatalf("failed to build contract: %v", err)
	}

	handle := factory.NewInMemoryDataset(frame, schema)
	defer handle.Close()

	validateOpts := kontra.DefaultOptions()
	validateOpts.Projection = opts.projection
	validateOpts.Sample = opts.sample
	validateOpts.SampleBudget = opts.sampleBudget

	start := time.Now()
	result, err := eng.Validate(context.Background(), contract, handle, validateOpts)
	if err != nil {
		log.Fatalf("validate failed: %v", err)
	}
	log.Printf("validated %d rows across %d rules in %s", opts.rows, len(contract.Rules), time.Since(start))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
}

func parseFlags() options {
	var opts options
	flag.IntVar(&opts.rows, "rows", getenvDefaultInt("KONTRA_BENCH_ROWS", 100_000), "number of synthetic rows to generate")
	flag.IntVar(&opts.sample, "sample", getenvDefaultInt("KONTRA_BENCH_SAMPLE", 10), "per-rule failing-row sample cap")
	flag.IntVar(&opts.sampleBudget, "sample-budget", getenvDefaultInt("KONTRA_BENCH_SAMPLE_BUDGET", 100), "cross-rule failing-row sample cap")
	flag.BoolVar(&opts.projection, "projection", true, "restrict materialization to columns the contract's rules need")
	seed := flag.Int64("seed", 0, "random seed (0 uses current time)")
	flag.Parse()

	opts.seed = *seed
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}
	return opts
}

// buildFrame generates a synthetic "listings" dataset: an id column (always
// present), a price column (occasionally out of range or null), and a status
// column (occasionally an unexpected value) - enough variety to exercise
// not_null, range and allowed_values across every tier.
func buildFrame(rng *rand.Rand, rows int) (*kontra.Frame, kontra.Schema) {
	order := []string{"id", "price", "status", "updated_at"}
	frame := kontra.NewFrame(order)
	frame.NumRows = rows

	ids := make([]int64, rows)
	idValid := make([]bool, rows)
	prices := make([]float64, rows)
	priceValid := make([]bool, rows)
	statuses := make([]string, rows)
	statusValid := make([]bool, rows)
	updated := make([]time.Time, rows)
	updatedValid := make([]bool, rows)

	statusValues := []string{"active", "sold", "withdrawn"}
	now := time.Now()

	for i := 0; i < rows; i++ {
		ids[i] = int64(i + 1)
		idValid[i] = true

		if rng.Intn(200) == 0 {
			priceValid[i] = false
		} else {
			priceValid[i] = true
			prices[i] = rng.Float64() * 1_000_000
			if rng.Intn(500) == 0 {
				prices[i] = -1 // out of range
			}
		}

		statusValid[i] = true
		if rng.Intn(1000) == 0 {
			statuses[i] = "unknown" // disallowed value
		} else {
			statuses[i] = statusValues[rng.Intn(len(statusValues))]
		}

		updatedValid[i] = true
		updated[i] = now.Add(-time.Duration(rng.Intn(72)) * time.Hour)
	}

	frame.Columns["id"] = &kontra.Vector{Kind: kontra.VectorInt64, Int64s: ids, Valid: idValid}
	frame.Columns["price"] = &kontra.Vector{Kind: kontra.VectorFloat64, Float64s: prices, Valid: priceValid}
	frame.Columns["status"] = &kontra.Vector{Kind: kontra.VectorString, Strings: statuses, Valid: statusValid}
	frame.Columns["updated_at"] = &kontra.Vector{Kind: kontra.VectorTime, Times: updated, Valid: updatedValid}

	schema := kontra.Schema{Columns: []kontra.ColumnInfo{
		{Name: "id", DType: "int", Nullable: false},
		{Name: "price", DType: "float", Nullable: true},
		{Name: "status", DType: "string", Nullable: false},
		{Name: "updated_at", DType: "timestamp", Nullable: false},
	}}
	return frame, schema
}

func buildContract() (*kontra.Contract, error) {
	zero := 0.0
	idNotNull, err := kontra.NewRule(kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"}, kontra.WithSeverity(kontra.SeverityBlocking))
	if err != nil {
		return nil, err
	}
	priceRange, err := kontra.NewRule(kontra.RuleRange, &kontra.RangeParams{Column: "price", Min: &zero}, kontra.WithSeverity(kontra.SeverityBlocking))
	if err != nil {
		return nil, err
	}
	statusAllowed, err := kontra.NewRule(kontra.RuleAllowedValues, &kontra.AllowedValuesParams{Column: "status", Values: []any{"active", "sold", "withdrawn"}}, kontra.WithSeverity(kontra.SeverityWarning))
	if err != nil {
		return nil, err
	}
	freshness, err := kontra.NewRule(kontra.RuleFreshness, &kontra.FreshnessParams{Column: "updated_at", MaxAge: 96 * time.Hour}, kontra.WithSeverity(kontra.SeverityWarning))
	if err != nil {
		return nil, err
	}
	minRows, err := kontra.NewRule(kontra.RuleMinRows, &kontra.MinRowsParams{Min: 1}, kontra.WithSeverity(kontra.SeverityBlocking))
	if err != nil {
		return nil, err
	}

	return &kontra.Contract{
		Name:    "kontra-bench-listings",
		Dataset: "listings",
		Rules:   []*kontra.Rule{idNotNull, priceRange, statusAllowed, freshness, minRows},
		SeverityWeights: map[kontra.Severity]float64{
			kontra.SeverityBlocking: 1.0,
			kontra.SeverityWarning:  0.5,
		},
	}, nil
}

func getenvDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
