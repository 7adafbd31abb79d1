package cloudpdf

// Notes:
// - Converter phases are tested with injected fakes (extractor, transformer,
//   renderer, stream openers) so no browser is needed.
// - End-to-end tests use the real bundle, font configuration builder and
//   transformer with a fake renderer; browser rendering is covered by the
//   integration tests.

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rackerlabs/cloudpdf/internal/fileutil"
	"github.com/rackerlabs/cloudpdf/internal/fontconfig"
	"github.com/rackerlabs/cloudpdf/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type mockExtractor struct {
	mu    sync.Mutex
	trees []string
	err   error
}

func (m *mockExtractor) Extract(name, destParent string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees = append(m.trees, name)
	if m.err != nil {
		return "", m.err
	}
	return filepath.Join(destParent, name), nil
}

type mockTransformer struct {
	params pipeline.Params
	output string
	err    error
}

func (m *mockTransformer) Transform(ctx context.Context, tc *pipeline.TransformContext, src io.Reader, dst io.Writer) error {
	m.params = tc.Params
	if m.err != nil {
		return m.err
	}
	if _, err := io.Copy(io.Discard, src); err != nil {
		return err
	}
	out := m.output
	if out == "" {
		out = minimalDocument
	}
	_, err := io.WriteString(dst, out)
	return err
}

type mockRenderer struct {
	mu     sync.Mutex
	doc    string
	page   *PageSettings
	output []byte
	err    error
	closed bool
}

func (m *mockRenderer) Render(ctx context.Context, doc io.Reader, dst io.Writer, page *PageSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := io.ReadAll(doc)
	if err != nil {
		return err
	}
	m.doc = string(data)
	m.page = page
	if m.err != nil {
		return m.err
	}
	out := m.output
	if out == nil {
		out = []byte("%PDF-1.4 mock")
	}
	_, err = dst.Write(out)
	return err
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

// trackingReader and trackingWriter record whether they were closed.
type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

type trackingWriter struct {
	bytes.Buffer
	closed bool
}

func (w *trackingWriter) Close() error {
	w.closed = true
	return nil
}

const minimalDocument = `<!DOCTYPE html><html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head><body><p>hi</p></body></html>`

// emptyFontConfig is a valid configuration declaring no fonts.
const emptyFontConfig = `<fop version="1.0"><renderers><renderer mime="application/pdf"><fonts/></renderer></renderers></fop>`

// ---------------------------------------------------------------------------
// Internal test options
// ---------------------------------------------------------------------------

func withExtractor(e extractor) Option {
	return func(c *Converter) { c.extractor = e }
}

func withTransformer(t pipeline.Transformer) Option {
	return func(c *Converter) { c.transformer = t }
}

func withRenderer(r pdfRenderer) Option {
	return func(c *Converter) { c.renderer = r }
}

func withPageCounter(f func(string) (int, error)) Option {
	return func(c *Converter) { c.countPages = f }
}

func staticConfig(t *testing.T, doc string) ConfigLoader {
	t.Helper()
	return ConfigLoaderFunc(func(string) (*fontconfig.Config, error) {
		return fontconfig.Parse(strings.NewReader(doc))
	})
}

func newTestConverter(t *testing.T, opts ...Option) (*Converter, string) {
	t.Helper()

	target := filepath.Join(t.TempDir(), "target")
	conv, err := NewConverter(target, opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv, target
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestNewConverter - Construction and validation
// ---------------------------------------------------------------------------

func TestNewConverter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		opts    []Option
		wantErr error
	}{
		{
			name:    "empty target",
			target:  "",
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "invalid page size",
			target:  "out",
			opts:    []Option{WithPage(&PageSettings{Size: "tabloid", Orientation: "portrait", Margin: 0.5})},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unknown style",
			target:  "out",
			opts:    []Option{WithStyle("nope")},
			wantErr: ErrStyleNotFound,
		},
		{
			name:    "missing asset path",
			target:  "out",
			opts:    []Option{WithAssetPath("/nonexistent/assets/dir")},
			wantErr: ErrInvalidAssetPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConverter(tt.target, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewConverter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewConverter_DoesNotTouchFilesystem(t *testing.T) {
	t.Parallel()

	_, target := newTestConverter(t, withRenderer(&mockRenderer{}))

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("target directory should not exist before PreProcess, stat error = %v", err)
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithTimeout(%v) did not panic", d)
				}
			}()
			WithTimeout(d)
		}()
	}
}

// ---------------------------------------------------------------------------
// TestConverter_PreProcess - Setup phase
// ---------------------------------------------------------------------------

func TestConverter_PreProcess_ExtractsBundledResources(t *testing.T) {
	t.Parallel()

	conv, target := newTestConverter(t, withRenderer(&mockRenderer{}))

	if err := conv.PreProcess(context.Background()); err != nil {
		t.Fatalf("PreProcess() error = %v", err)
	}

	paths := conv.Paths()
	wantFiles := []string{
		filepath.Join(paths.ImageDir, "note.svg"),
		filepath.Join(paths.CalloutDir, "1.svg"),
		paths.CoverImage,
		filepath.Join(paths.FontDir, "fontconfig.tpl"),
	}
	for _, f := range wantFiles {
		if !fileutil.FileExists(f) {
			t.Errorf("missing extracted file %s", f)
		}
	}

	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Errorf("target directory not created: %v", err)
	}
}

func TestConverter_PreProcess_RunsOnce(t *testing.T) {
	t.Parallel()

	ext := &mockExtractor{}
	conv, _ := newTestConverter(t, withExtractor(ext), withRenderer(&mockRenderer{}))

	for range 3 {
		if err := conv.PreProcess(context.Background()); err != nil {
			t.Fatalf("PreProcess() error = %v", err)
		}
	}

	want := []string{"images", "fonts"}
	if strings.Join(ext.trees, ",") != strings.Join(want, ",") {
		t.Errorf("extracted trees = %v, want %v", ext.trees, want)
	}
}

func TestConverter_PreProcess_ExtractionFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	conv, _ := newTestConverter(t, withExtractor(&mockExtractor{err: cause}), withRenderer(&mockRenderer{}))

	err := conv.PreProcess(context.Background())
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("PreProcess() error = %v, want ErrExtraction", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("PreProcess() error = %v, want cause %v", err, cause)
	}

	var be *BuildError
	if !errors.As(err, &be) || !strings.Contains(be.Msg, "images") {
		t.Errorf("error should name the failing tree, got %v", err)
	}

	// The build is aborted: later phases report the same failure.
	src := writeSource(t, t.TempDir(), "doc.md", "# x")
	if _, err := conv.Convert(context.Background(), src); !errors.Is(err, ErrExtraction) {
		t.Errorf("Convert() after failed setup error = %v, want ErrExtraction", err)
	}
}

func TestConverter_PreProcess_TargetNotCreatable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	conv, err := NewConverter(filepath.Join(blocker, "target"), withExtractor(&mockExtractor{}), withRenderer(&mockRenderer{}))
	if err != nil {
		t.Fatal(err)
	}

	if err := conv.PreProcess(context.Background()); !errors.Is(err, ErrIO) {
		t.Errorf("PreProcess() error = %v, want ErrIO", err)
	}
}

func TestConverter_PreProcess_PreparedPathsSkipsExtraction(t *testing.T) {
	t.Parallel()

	paths, err := NewBuildPaths(filepath.Join(t.TempDir(), "target"))
	if err != nil {
		t.Fatal(err)
	}

	ext := &mockExtractor{}
	conv, _ := newTestConverter(t, WithPreparedPaths(paths), withExtractor(ext), withRenderer(&mockRenderer{}))

	if err := conv.PreProcess(context.Background()); err != nil {
		t.Fatalf("PreProcess() error = %v", err)
	}
	if len(ext.trees) != 0 {
		t.Errorf("extractor called for prepared paths: %v", ext.trees)
	}
	if conv.Paths() != paths {
		t.Errorf("Paths() = %+v, want %+v", conv.Paths(), paths)
	}
}

// ---------------------------------------------------------------------------
// TestConverter_AdjustTransformer - Parameter injection
// ---------------------------------------------------------------------------

func TestConverter_AdjustTransformer(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(t,
		withRenderer(&mockRenderer{}),
		WithParams(map[string]string{
			pipeline.ParamSubtitle:          "API Guide",
			pipeline.ParamAdmonGraphicsPath: "/elsewhere/",
		}),
	)
	paths := conv.Paths()
	sep := string(filepath.Separator)

	tc := &pipeline.TransformContext{}
	conv.AdjustTransformer(tc)

	want := map[string]string{
		pipeline.ParamAdmonGraphicsPath:   paths.ImageDir + sep,
		pipeline.ParamCalloutGraphicsPath: paths.CalloutDir + sep,
		pipeline.ParamBackgroundImage:     paths.CoverImage,
		pipeline.ParamSubtitle:            "API Guide",
	}
	for name, value := range want {
		if got := tc.Params.Get(name); got != value {
			t.Errorf("param %s = %q, want %q", name, got, value)
		}
	}

	if !strings.HasSuffix(tc.Params.Get(pipeline.ParamBackgroundImage), filepath.Join("images", "cloud", "cover.svg")) {
		t.Errorf("background image = %q", tc.Params.Get(pipeline.ParamBackgroundImage))
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Transform - Transform phase
// ---------------------------------------------------------------------------

func TestConverter_Transform(t *testing.T) {
	t.Parallel()

	tr := &mockTransformer{output: "<fo/>"}
	conv, _ := newTestConverter(t, withExtractor(&mockExtractor{}), withTransformer(tr), withRenderer(&mockRenderer{}))

	src := writeSource(t, t.TempDir(), "guide.md", "# Guide")
	job := NewJob(conv.Paths(), src, "nested")

	if err := conv.Transform(context.Background(), job); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	data, err := os.ReadFile(job.Intermediate)
	if err != nil {
		t.Fatalf("reading intermediate: %v", err)
	}
	if string(data) != "<fo/>" {
		t.Errorf("intermediate = %q, want %q", data, "<fo/>")
	}
	if tr.params.Get(pipeline.ParamCalloutGraphicsPath) != conv.Paths().CalloutGraphicsPath() {
		t.Errorf("transformer did not receive callout path, params = %v", tr.params)
	}
}

func TestConverter_Transform_Errors(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad markup")

	tests := []struct {
		name     string
		tr       *mockTransformer
		missing  bool
		wantKind error
		wantMsg  string
	}{
		{
			name:     "missing source",
			tr:       &mockTransformer{},
			missing:  true,
			wantKind: ErrIO,
			wantMsg:  "for input",
		},
		{
			name:     "transformer failure",
			tr:       &mockTransformer{err: cause},
			wantKind: ErrTransform,
			wantMsg:  "failed to transform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, _ := newTestConverter(t, withExtractor(&mockExtractor{}), withTransformer(tt.tr), withRenderer(&mockRenderer{}))

			dir := t.TempDir()
			src := filepath.Join(dir, "doc.md")
			if !tt.missing {
				src = writeSource(t, dir, "doc.md", "# x")
			}

			err := conv.Transform(context.Background(), NewJob(conv.Paths(), src, ""))
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Transform() error = %v, want %v", err, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Transform() error = %q, want message containing %q", err, tt.wantMsg)
			}
			if tt.tr.err != nil && !errors.Is(err, tt.tr.err) {
				t.Errorf("Transform() error = %v, want cause %v", err, tt.tr.err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConverter_PostProcessResult - Render phase
// ---------------------------------------------------------------------------

func TestConverter_PostProcessResult(t *testing.T) {
	t.Parallel()

	fontDir := t.TempDir()
	woff := append([]byte("wOFF"), make([]byte, 60)...)
	if err := os.WriteFile(filepath.Join(fontDir, "Brand-Bold.woff"), woff, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := `<fop version="1.0"><renderers><renderer mime="application/pdf"><fonts><directory>` +
		fontDir + `</directory></fonts></renderer></renderers></fop>`

	rend := &mockRenderer{}
	page := &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape, Margin: 1}
	conv, _ := newTestConverter(t,
		withExtractor(&mockExtractor{}),
		withRenderer(rend),
		WithConfigLoader(staticConfig(t, cfg)),
		WithPage(page),
	)
	if err := conv.PreProcess(context.Background()); err != nil {
		t.Fatal(err)
	}

	foPath := filepath.Join(conv.Paths().TargetDir, "chapter1.fo")
	if err := os.WriteFile(foPath, []byte(minimalDocument), 0o600); err != nil {
		t.Fatal(err)
	}

	result, err := conv.PostProcessResult(context.Background(), foPath)
	if err != nil {
		t.Fatalf("PostProcessResult() error = %v", err)
	}

	wantOutput := filepath.Join(conv.Paths().TargetDir, "chapter1.pdf")
	if result.Job.Output != wantOutput {
		t.Errorf("Output = %q, want %q", result.Job.Output, wantOutput)
	}
	data, err := os.ReadFile(wantOutput)
	if err != nil || len(data) == 0 {
		t.Fatalf("PDF not written: %v", err)
	}

	wants := []string{
		`<base href="` + dirURL(conv.Paths().TargetDir) + `"></base>`,
		`@font-face`,
		`Brand`,
		`format(&#34;woff&#34;)`,
	}
	for _, want := range wants {
		if !strings.Contains(rend.doc, want) {
			t.Errorf("renderer document missing %q\n%s", want, rend.doc)
		}
	}
	if strings.Index(rend.doc, "<base") > strings.Index(rend.doc, "</head>") {
		t.Error("renderer setup should be inside <head>")
	}
	if rend.page != page {
		t.Error("page settings not passed to renderer")
	}
}

func TestConverter_PostProcessResult_ClosesStreamsOnRenderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("renderer exploded")
	conv, _ := newTestConverter(t,
		withExtractor(&mockExtractor{}),
		withRenderer(&mockRenderer{err: cause}),
		WithConfigLoader(staticConfig(t, emptyFontConfig)),
	)

	in := &trackingReader{Reader: strings.NewReader(minimalDocument)}
	out := &trackingWriter{}
	conv.openInput = func(string) (io.ReadCloser, error) { return in, nil }
	conv.openOutput = func(string) (io.WriteCloser, error) { return out, nil }

	_, err := conv.PostProcessResult(context.Background(), "chapter1.fo")
	if !errors.Is(err, ErrRender) {
		t.Fatalf("PostProcessResult() error = %v, want ErrRender", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("PostProcessResult() error = %v, want cause", err)
	}
	if !strings.Contains(err.Error(), "failed to convert to PDF") {
		t.Errorf("error message = %q", err)
	}
	if !in.closed || !out.closed {
		t.Errorf("streams closed: input=%v output=%v, want both", in.closed, out.closed)
	}
}

func TestConverter_PostProcessResult_ClosesInputWhenOutputFails(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(t,
		withExtractor(&mockExtractor{}),
		withRenderer(&mockRenderer{}),
		WithConfigLoader(staticConfig(t, emptyFontConfig)),
	)

	in := &trackingReader{Reader: strings.NewReader(minimalDocument)}
	conv.openInput = func(string) (io.ReadCloser, error) { return in, nil }
	conv.openOutput = func(string) (io.WriteCloser, error) { return nil, os.ErrPermission }

	_, err := conv.PostProcessResult(context.Background(), "chapter1.fo")
	if !errors.Is(err, ErrIO) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("PostProcessResult() error = %v, want ErrIO wrapping ErrPermission", err)
	}
	if !strings.Contains(err.Error(), "chapter1.pdf for output") {
		t.Errorf("error message = %q", err)
	}
	if !in.closed {
		t.Error("input stream not closed")
	}
}

func TestConverter_PostProcessResult_Errors(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("template missing")

	tests := []struct {
		name     string
		loader   ConfigLoader
		foExists bool
		renderer *mockRenderer
		wantKind error
		wantMsg  string
	}{
		{
			name: "config loader failure",
			loader: ConfigLoaderFunc(func(string) (*fontconfig.Config, error) {
				return nil, loadErr
			}),
			foExists: true,
			renderer: &mockRenderer{},
			wantKind: ErrConfigLoad,
			wantMsg:  "failed to load font configuration",
		},
		{
			name:     "missing intermediate",
			loader:   staticConfig(t, emptyFontConfig),
			renderer: &mockRenderer{},
			wantKind: ErrIO,
			wantMsg:  "for input",
		},
		{
			name:     "malformed intermediate",
			loader:   staticConfig(t, emptyFontConfig),
			foExists: true,
			renderer: &mockRenderer{},
			wantKind: ErrRender,
			wantMsg:  "failed to convert to PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, _ := newTestConverter(t, withExtractor(&mockExtractor{}), withRenderer(tt.renderer), WithConfigLoader(tt.loader))
			if err := conv.PreProcess(context.Background()); err != nil {
				t.Fatal(err)
			}

			foPath := filepath.Join(conv.Paths().TargetDir, "doc.fo")
			if tt.foExists {
				content := minimalDocument
				if tt.wantKind == ErrRender {
					content = "<html><head></html>"
				}
				if err := os.WriteFile(foPath, []byte(content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			_, err := conv.PostProcessResult(context.Background(), foPath)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("PostProcessResult() error = %v, want %v", err, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestConverter_PostProcessResult_Verify(t *testing.T) {
	t.Parallel()

	t.Run("reports page count", func(t *testing.T) {
		t.Parallel()

		conv, _ := newTestConverter(t,
			withExtractor(&mockExtractor{}),
			withRenderer(&mockRenderer{}),
			WithConfigLoader(staticConfig(t, emptyFontConfig)),
			WithVerify(true),
			withPageCounter(func(string) (int, error) { return 3, nil }),
		)
		conv.openInput = func(string) (io.ReadCloser, error) {
			return &trackingReader{Reader: strings.NewReader(minimalDocument)}, nil
		}
		conv.openOutput = func(string) (io.WriteCloser, error) { return &trackingWriter{}, nil }

		result, err := conv.PostProcessResult(context.Background(), "doc.fo")
		if err != nil {
			t.Fatalf("PostProcessResult() error = %v", err)
		}
		if result.Pages != 3 {
			t.Errorf("Pages = %d, want 3", result.Pages)
		}
	})

	t.Run("invalid PDF is a render error", func(t *testing.T) {
		t.Parallel()

		conv, _ := newTestConverter(t,
			withExtractor(&mockExtractor{}),
			withRenderer(&mockRenderer{output: []byte("not a pdf")}),
			WithConfigLoader(staticConfig(t, emptyFontConfig)),
			WithVerify(true),
		)
		if err := conv.PreProcess(context.Background()); err != nil {
			t.Fatal(err)
		}
		foPath := filepath.Join(conv.Paths().TargetDir, "doc.fo")
		if err := os.WriteFile(foPath, []byte(minimalDocument), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := conv.PostProcessResult(context.Background(), foPath)
		if !errors.Is(err, ErrRender) {
			t.Errorf("PostProcessResult() error = %v, want ErrRender", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - Full build with the real bundle and transformer
// ---------------------------------------------------------------------------

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	rend := &mockRenderer{}
	conv, target := newTestConverter(t, withRenderer(rend))

	src := writeSource(t, t.TempDir(), "guide.md",
		"# Guide\n\n> [!WARNING]\n> Back up first.\n\n```sh\nmake deploy <1>\n```\n")

	result, err := conv.Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if result.Job.Intermediate != filepath.Join(target, "guide.fo") {
		t.Errorf("Intermediate = %q", result.Job.Intermediate)
	}
	if result.Job.Output != filepath.Join(target, "guide.pdf") {
		t.Errorf("Output = %q", result.Job.Output)
	}
	if result.Duration <= 0 {
		t.Error("Duration not recorded")
	}

	pdf, err := os.ReadFile(result.Job.Output)
	if err != nil || len(pdf) == 0 {
		t.Fatalf("PDF not written: %v", err)
	}

	// The renderer receives a well-formed document referencing the
	// extracted graphics.
	dec := xml.NewDecoder(strings.NewReader(rend.doc))
	for {
		if _, err := dec.Token(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("renderer document is not well-formed: %v", err)
			}
			break
		}
	}

	paths := conv.Paths()
	wants := []string{
		fileutil.FileURL(filepath.Join(paths.ImageDir, "warning.svg")),
		fileutil.FileURL(filepath.Join(paths.CalloutDir, "1.svg")),
		fileutil.FileURL(paths.CoverImage),
	}
	for _, want := range wants {
		if !strings.Contains(rend.doc, want) {
			t.Errorf("renderer document missing %q", want)
		}
	}
	if strings.Count(rend.doc, "xmlns=") != 1 {
		t.Errorf("xmlns should appear once, got %d", strings.Count(rend.doc, "xmlns="))
	}
}

func TestConverter_Convert_CustomStylesheetWithMarkup(t *testing.T) {
	t.Parallel()

	assetDir := t.TempDir()
	css := "/* a <b> & c */\n.admonition { &:hover { color: red; } }\np::before { content: \"<\"; }\n"
	if err := os.MkdirAll(filepath.Join(assetDir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeSource(t, filepath.Join(assetDir, "styles"), "mine.css", css)

	rend := &mockRenderer{}
	conv, _ := newTestConverter(t, WithAssetPath(assetDir), WithStyle("mine"), withRenderer(rend))

	src := writeSource(t, t.TempDir(), "guide.md", "# Guide\n\nBody.\n")
	if _, err := conv.Convert(context.Background(), src); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	dec := xml.NewDecoder(strings.NewReader(rend.doc))
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("renderer document is not well-formed: %v", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			text.Write(cd)
		}
	}
	for _, rule := range []string{"/* a <b> & c */", "&:hover", `content: "<"`} {
		if !strings.Contains(text.String(), rule) {
			t.Errorf("renderer document lost %q", rule)
		}
	}
}

func TestConverter_Convert_Cancelled(t *testing.T) {
	t.Parallel()

	conv, _ := newTestConverter(t, withExtractor(&mockExtractor{}), withRenderer(&mockRenderer{}))
	if err := conv.PreProcess(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := writeSource(t, t.TempDir(), "doc.md", "# x")
	_, err := conv.Convert(ctx, src)
	if !errors.Is(err, ErrTransform) || !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want ErrTransform wrapping context.Canceled", err)
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	rend := &mockRenderer{}
	conv, err := NewConverter(filepath.Join(t.TempDir(), "target"), withRenderer(rend))
	if err != nil {
		t.Fatal(err)
	}

	if err := conv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !rend.closed {
		t.Error("renderer not closed")
	}
}
