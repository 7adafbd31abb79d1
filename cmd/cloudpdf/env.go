package main

import (
	"io"
	"os"

	"github.com/rackerlabs/cloudpdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// NewPool builds the converter pool for a batch.
	NewPool func(size int, factory cloudpdf.ConverterFactory) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		NewPool: newConverterPool,
	}
}
