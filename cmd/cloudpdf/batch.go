package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rackerlabs/cloudpdf"
)

// ConversionResult holds the outcome of a single job.
type ConversionResult struct {
	Job      cloudpdf.Job
	Pages    int
	Err      error
	Duration time.Duration
}

// convertBatch runs jobs concurrently, one worker per pooled converter.
// Results are returned in job order.
func convertBatch(ctx context.Context, pool Pool, jobs []cloudpdf.Job) []ConversionResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]ConversionResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	done := make(chan struct{})
	for range concurrency {
		go func() {
			defer func() { done <- struct{}{} }()

			runner, err := pool.Acquire(ctx)
			if err != nil {
				// No converter for this worker: fail what it would have taken
				for idx := range queue {
					results[idx] = ConversionResult{Job: jobs[idx], Err: err}
				}
				return
			}
			defer pool.Release(runner)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{Job: jobs[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = convertJob(ctx, runner, jobs[idx])
			}
		}()
	}
	for range concurrency {
		<-done
	}

	return results
}

// convertJob runs a single job and returns its result.
func convertJob(ctx context.Context, runner jobRunner, job cloudpdf.Job) ConversionResult {
	start := time.Now()
	res, err := runner.Run(ctx, job)
	if err != nil {
		return ConversionResult{Job: job, Err: err, Duration: time.Since(start)}
	}
	return ConversionResult{Job: res.Job, Pages: res.Pages, Duration: time.Since(start)}
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults writes one line per result and returns the first error.
func printResults(results []ConversionResult, quiet, verbose bool, stdout, stderr io.Writer) error {
	var first error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "FAILED %s: %v%s\n", r.Job.Source, r.Err, hintFor(r.Err))
			if first == nil {
				first = r.Err
			}
			continue
		}

		if quiet {
			continue
		}

		pages := ""
		if r.Pages > 0 {
			pages = fmt.Sprintf(", %d pages", r.Pages)
		}
		if verbose {
			fmt.Fprintf(stdout, "%s -> %s (%v%s)\n", r.Job.Source, r.Job.Output, r.Duration.Round(time.Millisecond), pages)
		} else {
			fmt.Fprintf(stdout, "Created %s%s\n", r.Job.Output, pages)
		}
	}

	if !quiet && len(results) > 1 {
		summary := countResults(results)
		fmt.Fprintf(stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return first
}
