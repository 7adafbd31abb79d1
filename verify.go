package cloudpdf

import (
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// pageCount reads back a written PDF and returns its number of pages.
func pageCount(path string) (int, error) {
	return pdfapi.PageCountFile(path)
}
