// Package fontconfig builds the renderer font configuration from a template
// shipped in the fonts resource tree.
//
// The template is a pongo2 (Django syntax) file named fontconfig.tpl living in
// the font directory itself. It receives a single variable, fontPath, holding
// the absolute font directory, and renders a FOP-style configuration:
//
//	<fop version="1.0">
//	  <renderers>
//	    <renderer mime="application/pdf">
//	      <fonts>
//	        <directory recursive="true">{{ fontPath }}</directory>
//	        <font embed-url="{{ fontPath }}/Sans.ttf">
//	          <font-triplet name="Sans" style="normal" weight="normal"/>
//	        </font>
//	      </fonts>
//	    </renderer>
//	  </renderers>
//	</fop>
package fontconfig

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// DefaultTemplateName is the template looked up in the font directory.
const DefaultTemplateName = "fontconfig"

const templateExt = ".tpl"

// Builder renders and parses font configurations.
type Builder struct {
	templateName string
	logger       *slog.Logger
}

// NewBuilder creates a Builder for the named template (without extension).
// An empty name selects DefaultTemplateName; a nil logger discards logs.
func NewBuilder(templateName string, logger *slog.Logger) *Builder {
	if templateName == "" {
		templateName = DefaultTemplateName
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{templateName: templateName, logger: logger}
}

// Render loads the template from fontDir and renders it with fontPath set to
// the absolute form of fontDir.
func (b *Builder) Render(fontDir string) (string, error) {
	fontPath, err := filepath.Abs(fontDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	loader, err := pongo2.NewLocalFileSystemLoader(fontPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	set := pongo2.NewSet("fonts", loader)
	tpl, err := set.FromFile(b.templateName + templateExt)
	if err != nil {
		return "", fmt.Errorf("%w: loading %q from %s: %v", ErrTemplate, b.templateName, fontPath, err)
	}

	out, err := tpl.Execute(pongo2.Context{"fontPath": fontPath})
	if err != nil {
		return "", fmt.Errorf("%w: rendering %q: %v", ErrTemplate, b.templateName, err)
	}
	return out, nil
}

// Build renders the template for fontDir and parses the result.
// The rendered document is logged at debug level before parsing.
func (b *Builder) Build(fontDir string) (*Config, error) {
	text, err := b.Render(fontDir)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("rendered font configuration", "template", b.templateName, "config", text)

	cfg, err := Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	cfg.source = text
	return cfg, nil
}
