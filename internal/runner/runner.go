// Package runner fetches every registrar listing and builds the comparison table.
package runner

import (
	"context"
	"fmt"

	"github.com/law-makers/cheapreg/internal/compare"
	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/internal/reqctx"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
)

// Policy decides what a failing source does to the run
type Policy string

const (
	// PolicySkip drops failing sources with a warning
	PolicySkip Policy = "skip"
	// PolicyStrict aborts the run on the first failing source
	PolicyStrict Policy = "strict"
)

// Outcome is everything the report needs
type Outcome struct {
	RunID   string
	Table   *compare.Table
	Results []Result
	Failed  []Result
}

// Records returns the total number of records collected
func (o *Outcome) Records() int {
	n := 0
	for _, r := range o.Results {
		n += len(r.Records)
	}
	return n
}

// Runner ties the worker pool and the comparator together
type Runner struct {
	pool   *WorkerPool
	conv   compare.Converter
	policy Policy
}

// New creates a Runner
func New(pool *WorkerPool, conv compare.Converter, policy Policy) *Runner {
	if policy == "" {
		policy = PolicySkip
	}
	return &Runner{pool: pool, conv: conv, policy: policy}
}

// Run fetches all sources, applies the failure policy and compares what is left
func (r *Runner) Run(ctx context.Context, sources []registrar.Source) (*Outcome, error) {
	ctx = reqctx.WithRun(ctx)
	rc := reqctx.FromContext(ctx)

	log.Info().
		Str("run_id", rc.RunID).
		Int("sources", len(sources)).
		Str("policy", string(r.policy)).
		Msg("Fetching price listings")

	results := r.pool.FetchAll(ctx, sources)

	outcome := &Outcome{RunID: rc.RunID, Results: results}
	var batches [][]models.PriceRecord
	for _, res := range results {
		if res.Err != nil {
			if r.policy == PolicyStrict {
				return nil, reqctx.NewRunError(ctx, fmt.Errorf("source %s: %w", res.Source.Name, res.Err))
			}
			log.Warn().
				Str("run_id", rc.RunID).
				Str("source", res.Source.Name).
				Err(res.Err).
				Msg("Skipping source")
			outcome.Failed = append(outcome.Failed, res)
			continue
		}

		log.Info().
			Str("source", res.Source.Name).
			Int("records", len(res.Records)).
			Dur("duration", res.Duration).
			Msg("Source fetched")
		batches = append(batches, res.Records)
	}

	if len(sources) > 0 && len(outcome.Failed) == len(sources) {
		return nil, reqctx.NewRunError(ctx, fmt.Errorf("all %d sources failed", len(sources)))
	}

	table, err := compare.Compare(r.conv, batches...)
	if err != nil {
		return nil, reqctx.NewRunError(ctx, err)
	}
	outcome.Table = table

	log.Info().
		Str("run_id", rc.RunID).
		Int("tlds", table.Len()).
		Int("failed", len(outcome.Failed)).
		Dur("elapsed", rc.Elapsed()).
		Msg("Comparison complete")

	return outcome, nil
}
