// Package i18n formats user-facing error messages per locale.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Catalog holds the translated messages for one locale.
type Catalog struct {
	locale   string
	tag      language.Tag
	messages map[string]string
}

// Locale returns the catalog's BCP 47 locale string.
func (c *Catalog) Locale() string {
	if c == nil {
		return ""
	}
	return c.locale
}

// Format renders the message for a code, substituting metadata values.
// Unknown codes fall back to the code itself so callers always get text.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	if c == nil {
		return code
	}
	msg, ok := c.messages[code]
	if !ok {
		return code
	}
	if len(metadata) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return msg
	}
	return sb.String()
}

var catalogs = []*Catalog{enUSCatalog}

var matcher = language.NewMatcher(catalogTags())

func catalogTags() []language.Tag {
	tags := make([]language.Tag, 0, len(catalogs))
	for _, c := range catalogs {
		tags = append(tags, c.tag)
	}
	return tags
}

// GetCatalog returns the catalog best matching the requested locale.
// Unrecognized locales fall back to en-US.
func GetCatalog(locale string) *Catalog {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return enUSCatalog
	}
	_, index, _ := matcher.Match(tag)
	if index < 0 || index >= len(catalogs) {
		return enUSCatalog
	}
	return catalogs[index]
}
