package kaiord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/lucasjlepore/kaiord/internal/logging"
)

const defaultWorkers = 4

// Job converts one file. Formats come from the extensions.
type Job struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type BatchOptions struct {
	Options
	// Workers bounds the number of concurrent conversions.
	Workers int
}

// JobResult records the outcome of one job.
type JobResult struct {
	Job      Job           `json:"job"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// BatchResult holds per-job results in the order the jobs were given.
type BatchResult struct {
	RunID   string      `json:"run_id"`
	Results []JobResult `json:"results"`
	Failed  int         `json:"failed"`
}

// ConvertBatch runs jobs concurrently. A failing job never stops the others;
// every failure is recorded on its result and joined into the returned
// error. Cancelling ctx stops new jobs from starting.
func ConvertBatch(ctx context.Context, jobs []Job, opts BatchOptions) (*BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	res := &BatchResult{
		RunID:   uuid.NewString(),
		Results: make([]JobResult, len(jobs)),
	}
	log := logging.OrDiscard(opts.Logger).WithField("run_id", res.RunID)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job // per-iteration copies (go directive < 1.22)
		res.Results[i].Job = job
		if err := gctx.Err(); err != nil {
			res.Results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Results[i].Err = err
				return nil
			}
			jobOpts := opts.Options
			jobOpts.Logger = log.WithField("input", job.Input)

			start := time.Now()
			err := ConvertFile(job.Input, job.Output, jobOpts)
			res.Results[i].Duration = time.Since(start)
			res.Results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for i := range res.Results {
		r := &res.Results[i]
		if r.Err == nil {
			continue
		}
		r.Error = r.Err.Error()
		res.Failed++
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
	}
	log.WithFields(logrus.Fields{
		"jobs":   len(jobs),
		"failed": res.Failed,
	}).Info("batch finished")
	return res, errs
}

// PlanBatch builds one job per convertible file directly inside inputDir,
// writing each to outDir with the extension of to. Files already in format
// to are skipped.
func PlanBatch(inputDir, outDir string, to Format) ([]Job, error) {
	if _, err := lookup(to); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		from, err := DetectFormat(e.Name())
		if err != nil || from == to {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		jobs = append(jobs, Job{
			Input:  filepath.Join(inputDir, e.Name()),
			Output: filepath.Join(outDir, base+to.Ext()),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}
