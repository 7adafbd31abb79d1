package cloudpdf

import (
	"errors"
	"os"
	"testing"
)

func TestBuildError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     *BuildError
		wantMsg string
		is      []error
		isNot   []error
	}{
		{
			name:    "with cause",
			err:     buildError(ErrIO, "failed to open a.md for input", os.ErrNotExist),
			wantMsg: "failed to open a.md for input: file does not exist",
			is:      []error{ErrIO, os.ErrNotExist},
			isNot:   []error{ErrRender, ErrTransform},
		},
		{
			name:    "without cause",
			err:     buildError(ErrRender, "failed to convert to PDF", nil),
			wantMsg: "failed to convert to PDF",
			is:      []error{ErrRender},
			isNot:   []error{ErrIO},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			for _, target := range tt.is {
				if !errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v) = false, want true", target)
				}
			}
			for _, target := range tt.isNot {
				if errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v) = true, want false", target)
				}
			}
		})
	}
}

func TestBuildError_As(t *testing.T) {
	t.Parallel()

	var err error = buildError(ErrConfigLoad, "failed to load font configuration", errors.New("boom"))

	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatal("errors.As failed")
	}
	if be.Kind != ErrConfigLoad {
		t.Errorf("Kind = %v, want ErrConfigLoad", be.Kind)
	}
}
