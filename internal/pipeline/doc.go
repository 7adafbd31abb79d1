// Package pipeline implements the transform stage: it turns a Markdown source
// document into the intermediate formatting document consumed by the renderer.
//
// The formatting document is a well-formed XHTML print layout:
//   - Markdown to HTML via Goldmark (GFM, footnotes, chroma highlighting)
//   - document references resolved to file:// URLs by a Resolver
//   - GFM alerts (> [!NOTE]) laid out as admonitions with bundled icons
//   - trailing <N> markers in code blocks replaced by callout graphics
//   - an optional cover page carrying the background image
//
// Graphics locations reach the transformer as named string parameters on the
// TransformContext, set by the orchestrator before each document.
//
// PDF generation is handled separately by the root package using headless
// Chrome (go-rod).
package pipeline
