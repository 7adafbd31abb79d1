package cloudpdf

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rackerlabs/cloudpdf/internal/fileutil"
)

// render streams the formatting document from in through prepareDocument and
// hands the result to the renderer, which writes the PDF to out.
func (c *Converter) render(ctx context.Context, in io.Reader, out io.Writer, fontCSS string) error {
	var doc bytes.Buffer
	if err := prepareDocument(in, &doc, c.paths.TargetDir, fontCSS); err != nil {
		return buildError(ErrRender, "failed to convert to PDF", err)
	}

	if err := c.renderer.Render(ctx, &doc, out, c.cfg.page); err != nil {
		return buildError(ErrRender, "failed to convert to PDF", err)
	}
	return nil
}

// prepareDocument copies the XML document from src to dst token by token and
// adds the renderer setup at the end of <head>: a <base> pointing at baseDir
// and a <style> with fontCSS. Element namespaces are dropped so the xmlns
// attribute of the root element is written once.
func prepareDocument(src io.Reader, dst io.Writer, baseDir, fontCSS string) error {
	dec := xml.NewDecoder(src)
	enc := xml.NewEncoder(dst)

	injected := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading formatting document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			t.Name.Space = ""
			tok = t
		case xml.EndElement:
			t.Name.Space = ""
			if t.Name.Local == "head" && !injected {
				if err := encodeSetup(enc, baseDir, fontCSS); err != nil {
					return err
				}
				injected = true
			}
			tok = t
		}

		if err := enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("writing formatting document: %w", err)
		}
	}

	if !injected {
		return errors.New("formatting document has no head element")
	}
	return enc.Flush()
}

func encodeSetup(enc *xml.Encoder, baseDir, fontCSS string) error {
	base := xml.StartElement{
		Name: xml.Name{Local: "base"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "href"}, Value: dirURL(baseDir)}},
	}
	style := xml.StartElement{Name: xml.Name{Local: "style"}}

	tokens := []xml.Token{base, base.End()}
	if fontCSS != "" {
		tokens = append(tokens, style, xml.CharData(fontCSS), style.End())
	}
	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("writing renderer setup: %w", err)
		}
	}
	return nil
}

// dirURL returns the file:// URL of dir with a trailing slash, so relative
// references resolve inside it.
func dirURL(dir string) string {
	u := fileutil.FileURL(dir)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// bufferedFile flushes its buffer before closing the file.
type bufferedFile struct {
	*bufio.Writer
	f *os.File
}

func (b *bufferedFile) Close() error {
	flushErr := b.Flush()
	closeErr := b.f.Close()
	return errors.Join(flushErr, closeErr)
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path) // #nosec G304 -- paths come from the build
}

func createFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path) // #nosec G304 -- paths come from the build
	if err != nil {
		return nil, err
	}
	return &bufferedFile{Writer: bufio.NewWriter(f), f: f}, nil
}
