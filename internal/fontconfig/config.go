package fontconfig

import (
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// PDFMime is the renderer section consumed by the PDF renderer.
const PDFMime = "application/pdf"

// Config is a parsed font configuration. It is immutable: accessors return copies.
type Config struct {
	version     string
	fonts       []Font
	directories []Directory
	autoDetect  bool
	source      string
}

// Font is an explicitly declared font file.
type Font struct {
	URL      string // file path or file: URL
	Kerning  bool
	Triplets []Triplet
}

// Triplet maps a font file to a family, style and weight.
type Triplet struct {
	Name   string
	Style  string
	Weight string
}

// Directory is a font directory to scan.
type Directory struct {
	Path      string
	Recursive bool
}

// Version returns the configuration version attribute.
func (c *Config) Version() string { return c.version }

// Fonts returns the explicitly declared fonts of the PDF renderer.
func (c *Config) Fonts() []Font {
	out := make([]Font, len(c.fonts))
	for i, f := range c.fonts {
		f.Triplets = slices.Clone(f.Triplets)
		out[i] = f
	}
	return out
}

// Directories returns the font directories of the PDF renderer.
func (c *Config) Directories() []Directory { return slices.Clone(c.directories) }

// AutoDetect reports whether system font auto-detection was requested.
func (c *Config) AutoDetect() bool { return c.autoDetect }

// Source returns the rendered document the configuration was parsed from,
// or "" when it was parsed directly from a reader.
func (c *Config) Source() string { return c.source }

type fopXML struct {
	XMLName   xml.Name
	Version   string        `xml:"version,attr"`
	Renderers []rendererXML `xml:"renderers>renderer"`
}

type rendererXML struct {
	MIME  string    `xml:"mime,attr"`
	Fonts *fontsXML `xml:"fonts"`
}

type fontsXML struct {
	Directories []directoryXML `xml:"directory"`
	Fonts       []fontXML      `xml:"font"`
	AutoDetect  *struct{}      `xml:"auto-detect"`
}

type directoryXML struct {
	Recursive string `xml:"recursive,attr"`
	Path      string `xml:",chardata"`
}

type fontXML struct {
	EmbedURL string       `xml:"embed-url,attr"`
	Kerning  string       `xml:"kerning,attr"`
	Triplets []tripletXML `xml:"font-triplet"`
}

type tripletXML struct {
	Name   string `xml:"name,attr"`
	Style  string `xml:"style,attr"`
	Weight string `xml:"weight,attr"`
}

// Parse decodes and validates a font configuration document.
func Parse(r io.Reader) (*Config, error) {
	var doc fopXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if doc.XMLName.Local != "fop" {
		return nil, fmt.Errorf("%w: root element is <%s>, want <fop>", ErrInvalidConfig, doc.XMLName.Local)
	}

	idx := slices.IndexFunc(doc.Renderers, func(r rendererXML) bool { return r.MIME == PDFMime })
	if idx < 0 {
		return nil, fmt.Errorf("%w: no renderer for %s", ErrInvalidConfig, PDFMime)
	}

	cfg := &Config{version: doc.Version}
	fonts := doc.Renderers[idx].Fonts
	if fonts == nil {
		return cfg, nil
	}

	for i, d := range fonts.Directories {
		p := strings.TrimSpace(d.Path)
		if p == "" {
			return nil, fmt.Errorf("%w: directory[%d] is empty", ErrInvalidConfig, i)
		}
		cfg.directories = append(cfg.directories, Directory{Path: p, Recursive: isTrue(d.Recursive)})
	}

	for i, f := range fonts.Fonts {
		font, err := toFont(f)
		if err != nil {
			return nil, fmt.Errorf("%w: font[%d]: %v", ErrInvalidConfig, i, err)
		}
		cfg.fonts = append(cfg.fonts, font)
	}

	cfg.autoDetect = fonts.AutoDetect != nil
	return cfg, nil
}

func toFont(f fontXML) (Font, error) {
	if strings.TrimSpace(f.EmbedURL) == "" {
		return Font{}, fmt.Errorf("missing embed-url")
	}
	if len(f.Triplets) == 0 {
		return Font{}, fmt.Errorf("%s has no font-triplet", f.EmbedURL)
	}

	font := Font{URL: strings.TrimSpace(f.EmbedURL), Kerning: isTrue(f.Kerning)}
	for _, t := range f.Triplets {
		if t.Name == "" {
			return Font{}, fmt.Errorf("%s: font-triplet without name", f.EmbedURL)
		}
		style := defaultString(t.Style, "normal")
		if !validStyle(style) {
			return Font{}, fmt.Errorf("%s: invalid style %q", f.EmbedURL, t.Style)
		}
		weight := defaultString(t.Weight, "normal")
		if !validWeight(weight) {
			return Font{}, fmt.Errorf("%s: invalid weight %q", f.EmbedURL, t.Weight)
		}
		font.Triplets = append(font.Triplets, Triplet{Name: t.Name, Style: style, Weight: weight})
	}
	return font, nil
}

func validStyle(s string) bool {
	switch s {
	case "normal", "italic", "oblique":
		return true
	}
	return false
}

func validWeight(w string) bool {
	switch w {
	case "normal", "bold":
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 100 && n <= 900 && n%100 == 0
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true
	}
	return false
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
