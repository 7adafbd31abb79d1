package main

import (
	"context"
	"fmt"

	"github.com/rackerlabs/cloudpdf"
)

// jobRunner runs one conversion job.
type jobRunner interface {
	Run(ctx context.Context, job cloudpdf.Job) (*cloudpdf.Result, error)
}

// Compile-time interface implementation check.
var _ jobRunner = (*cloudpdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (jobRunner, error)
	Release(jobRunner)
	Size() int
	Close() error
}

// poolAdapter exposes a *cloudpdf.ConverterPool as a Pool.
type poolAdapter struct {
	pool *cloudpdf.ConverterPool
}

// newConverterPool builds the production pool.
func newConverterPool(size int, factory cloudpdf.ConverterFactory) Pool {
	return &poolAdapter{pool: cloudpdf.NewConverterPool(size, factory)}
}

func (a *poolAdapter) Acquire(ctx context.Context) (jobRunner, error) {
	c, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release panics when given a runner the pool did not hand out.
func (a *poolAdapter) Release(r jobRunner) {
	c, ok := r.(*cloudpdf.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", r))
	}
	a.pool.Release(c)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
