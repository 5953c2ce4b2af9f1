// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package richtext converts stored CMS text fields into Markdown. The stored
// format tag of a field selects one of a closed set of conversion kinds.
package richtext

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Format is the conversion kind for a stored text field.
type Format int

const (
	// Passthrough text is already Markdown (or unknown) and is left alone.
	Passthrough Format = iota
	// Plain text is left alone.
	Plain
	// LineBreakHTML is HTML whose bare newlines are meaningful line breaks.
	LineBreakHTML
	// HTML is raw HTML converted directly.
	HTML
)

var formatNames = map[Format]string{
	Passthrough:   "passthrough",
	Plain:         "plain",
	LineBreakHTML: "linebreak_html",
	HTML:          "html",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormatName resolves a kind name as written in configuration.
func ParseFormatName(name string) (Format, error) {
	for f, n := range formatNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return Passthrough, fmt.Errorf("unknown format kind %q: use plain, linebreak_html, html, or passthrough", name)
}

// ParseFormat maps a stored format tag to its conversion kind.
// "filtered_html" keeps its newlines as line breaks; any other tag
// mentioning html is converted as raw HTML.
func ParseFormat(tag string) Format {
	switch {
	case tag == "filtered_html":
		return LineBreakHTML
	case strings.Contains(tag, "html"):
		return HTML
	case tag == "plain_text":
		return Plain
	default:
		return Passthrough
	}
}

// Options configures a Converter.
type Options struct {
	// SiteURL resolves relative links and images in HTML bodies.
	SiteURL string

	// Formats maps additional stored tags to kind names. Entries here win
	// over the built-in tag mapping.
	Formats map[string]string
}

// Converter turns tagged text into Markdown. A Converter is safe to reuse
// across rows.
type Converter struct {
	html      *md.Converter
	overrides map[string]Format
}

// NewConverter builds a Converter. It fails only on an unknown kind name
// in opts.Formats.
func NewConverter(opts Options) (*Converter, error) {
	overrides := make(map[string]Format, len(opts.Formats))
	for tag, name := range opts.Formats {
		f, err := ParseFormatName(name)
		if err != nil {
			return nil, fmt.Errorf("format %q: %w", tag, err)
		}
		overrides[tag] = f
	}

	domain := ""
	if opts.SiteURL != "" {
		u, err := url.Parse(opts.SiteURL)
		if err != nil {
			return nil, fmt.Errorf("parsing site URL: %w", err)
		}
		domain = u.Host
		if domain == "" {
			domain = opts.SiteURL
		}
	}

	conv := md.NewConverter(domain, true, nil)
	conv.Use(plugin.GitHubFlavored())
	// A <br> is a hard line break inside the paragraph, not a new paragraph.
	conv.AddRules(md.Rule{
		Filter: []string{"br"},
		Replacement: func(string, *goquery.Selection, *md.Options) *string {
			return md.String("  \n")
		},
	})

	return &Converter{html: conv, overrides: overrides}, nil
}

// Kind returns the conversion kind for a stored tag, honouring overrides.
func (c *Converter) Kind(tag string) Format {
	if f, ok := c.overrides[tag]; ok {
		return f
	}
	return ParseFormat(tag)
}

// ConvertTagged converts text stored with the given format tag.
func (c *Converter) ConvertTagged(text, tag string) (string, error) {
	return c.Convert(text, c.Kind(tag))
}

// Convert converts text of the given kind to Markdown. Plain and
// passthrough text come back byte-identical. Empty HTML yields "".
func (c *Converter) Convert(text string, kind Format) (string, error) {
	if kind != LineBreakHTML && kind != HTML {
		return text, nil
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if kind == LineBreakHTML {
		text = strings.ReplaceAll(text, "\n", "<br>")
	}
	return c.fromHTML(text)
}

func (c *Converter) fromHTML(html string) (string, error) {
	out, err := c.html.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
