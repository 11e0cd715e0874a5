// SPDX-License-Identifier: MIT

// Package metadata reads optional display metadata from page meta tags.
package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Open Graph properties read from the page.
const (
	PropertyTitle       = "og:title"
	PropertyDescription = "og:description"
	PropertyImage       = "og:image"
)

// Metadata holds the optional fields of a page. An empty string means the
// property was absent; fallbacks are applied by the guide builder.
type Metadata struct {
	Title       string
	Description string
	ImageURL    string
}

// Extract parses text as HTML and returns whatever Open Graph properties it
// carries. It never fails: unparseable input yields an empty Metadata.
func Extract(text string) Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return Metadata{}
	}
	return FromDocument(doc)
}

// FromDocument reads the properties from an already parsed document.
func FromDocument(doc *goquery.Document) Metadata {
	if doc == nil {
		return Metadata{}
	}
	return Metadata{
		Title:       property(doc, PropertyTitle),
		Description: property(doc, PropertyDescription),
		ImageURL:    property(doc, PropertyImage),
	}
}

// property returns the content of the first meta tag carrying prop, matched
// on either the property or the name attribute.
func property(doc *goquery.Document, prop string) string {
	sel := doc.Find(`meta[property="` + prop + `"]`).First()
	if sel.Length() == 0 {
		sel = doc.Find(`meta[name="` + prop + `"]`).First()
	}
	content, ok := sel.Attr("content")
	if !ok {
		return ""
	}
	return strings.TrimSpace(content)
}
