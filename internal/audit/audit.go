// Package audit evaluates many site-years concurrently with a fixed pool of
// workers and aggregates the results.
package audit

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/pkg/logger"
	"github.com/okian/profilemeta/pkg/metrics"
)

// Evaluator evaluates one site-year over [t0, t1].
type Evaluator interface {
	Evaluate(ctx context.Context, site string, year int, t0, t1 time.Time) (evaluation.Report, error)
}

// Job is one site-year to evaluate.
type Job struct {
	Site string    `json:"site"`
	Year int       `json:"year"`
	T0   time.Time `json:"t0"`
	T1   time.Time `json:"t1"`
}

// YearJob covers the whole calendar year, from January 1st to January 1st
// of the following year inclusive.
func YearJob(site string, year int) Job {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Job{Site: site, Year: year, T0: start, T1: start.AddDate(1, 0, 0)}
}

// YearJobs returns one YearJob per year in [from, to].
func YearJobs(site string, from, to int) []Job {
	if to < from {
		return nil
	}
	jobs := make([]Job, 0, to-from+1)
	for y := from; y <= to; y++ {
		jobs = append(jobs, YearJob(site, y))
	}
	return jobs
}

// Result pairs a job with its report or the error that stopped it.
type Result struct {
	Job    Job               `json:"job"`
	Report evaluation.Report `json:"report"`
	Err    error             `json:"-"`
	Error  string            `json:"error,omitempty"`
}

// Totals sums the reports of successful jobs.
type Totals struct {
	Jobs           int `json:"jobs"`
	Failed         int `json:"failed"`
	Cycles         int `json:"cycles"`
	ExpectedCycles int `json:"expected_cycles"`
	LongDescents   int `json:"long_descents"`
	Midnight       int `json:"midnight"`
	Noon           int `json:"noon"`
	Anomalies      int `json:"anomalies"`
}

// Summarize aggregates results.
func Summarize(results []Result) Totals {
	t := Totals{Jobs: len(results)}
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			t.Failed++
			continue
		}
		t.Cycles += r.Report.Total
		t.ExpectedCycles += r.Report.ExpectedCycles
		t.LongDescents += r.Report.LongDescents
		t.Midnight += r.Report.Midnight
		t.Noon += r.Report.Noon
		t.Anomalies += len(r.Report.Anomalies)
	}
	return t
}

// Pool runs jobs against an Evaluator.
type Pool struct {
	evaluator Evaluator
	workers   int
	logger    logger.Logger
}

// NewPool creates a pool. The worker count defaults to the CPU count.
func NewPool(ev Evaluator, opts ...Option) *Pool {
	p := &Pool{
		evaluator: ev,
		workers:   runtime.NumCPU(),
		logger:    logger.Get().Named("audit"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run evaluates every job and returns the results in job order. A failed
// job does not stop the others; jobs not started before ctx is done fail
// with the context error.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	n := p.workers
	if n > len(jobs) {
		n = len(jobs)
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p.work(ctx, name, jobs, results, queue)
		}("worker-" + strconv.Itoa(i))
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case queue <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i] = failed(jobs[i], ctx.Err())
	}
	return results
}

func (p *Pool) work(ctx context.Context, name string, jobs []Job, results []Result, queue <-chan int) {
	metrics.AddAuditWorkers(1)
	defer metrics.AddAuditWorkers(-1)
	log := p.logger.Named(name)

	for i := range queue {
		job := jobs[i]
		if err := ctx.Err(); err != nil {
			results[i] = failed(job, err)
			continue
		}

		start := time.Now()
		report, err := p.evaluator.Evaluate(ctx, job.Site, job.Year, job.T0, job.T1)
		latency := float64(time.Since(start).Milliseconds())
		if err != nil {
			metrics.RecordAuditJob("error", latency)
			log.Warn(ctx, "audit job failed",
				logger.String("site", job.Site),
				logger.Int("year", job.Year),
				logger.Error(err),
			)
			results[i] = failed(job, err)
			continue
		}
		metrics.RecordAuditJob("ok", latency)
		log.Debug(ctx, "audit job done",
			logger.String("site", job.Site),
			logger.Int("year", job.Year),
			logger.Int("cycles", report.Total),
		)
		results[i] = Result{Job: job, Report: report}
	}
}

func failed(job Job, err error) Result {
	return Result{
		Job:   job,
		Err:   fmt.Errorf("audit %s%d: %w", job.Site, job.Year, err),
		Error: err.Error(),
	}
}
