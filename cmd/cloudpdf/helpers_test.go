package main

import (
	"context"
	"errors"
	"sync"

	"github.com/rackerlabs/cloudpdf"
)

// fakeRunner records jobs and fails those whose source is in failures.
type fakeRunner struct {
	mu       sync.Mutex
	jobs     []cloudpdf.Job
	failures map[string]error
	pages    int
}

func (f *fakeRunner) Run(_ context.Context, job cloudpdf.Job) (*cloudpdf.Result, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if err := f.failures[job.Source]; err != nil {
		return nil, err
	}
	return &cloudpdf.Result{Job: job, Pages: f.pages}, nil
}

func (f *fakeRunner) ran() []cloudpdf.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cloudpdf.Job(nil), f.jobs...)
}

// fakePool hands out the same runner to every worker.
type fakePool struct {
	size       int
	runner     jobRunner
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
	closed   bool
}

func (p *fakePool) Acquire(context.Context) (jobRunner, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.runner, nil
}

func (p *fakePool) Release(jobRunner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

var errFakeRender = &cloudpdf.BuildError{Kind: cloudpdf.ErrRender, Msg: "failed to convert to PDF", Err: errors.New("page crashed")}
