package blocks

import (
	"strings"
	"time"
)

// RichText is a styled text span. At most one of Text, Equation and Mention is set.
type RichText struct {
	PlainText   string
	Href        string
	Annotations Annotations
	Text        *Text
	Equation    *InlineEquation
	Mention     *Mention
}

type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Color         string
}

// Text is literal content with an optional link.
type Text struct {
	Content string
	Link    *Link
}

type Link struct {
	URL string
}

// InlineEquation is a TeX expression rendered inline.
type InlineEquation struct {
	Expression string
}

// Mention references another object. Page is set when Type is "page".
type Mention struct {
	Type string
	Page *PageRef
}

type PageRef struct {
	ID string
}

// Plain joins the plain text of spans.
func Plain(spans []RichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// FileSource locates media. Exactly one of External and File is set for a
// well-formed source.
type FileSource struct {
	External *ExternalFile
	File     *HostedFile
}

type ExternalFile struct {
	URL string
}

// HostedFile is served through a signed URL valid until ExpiryTime.
type HostedFile struct {
	URL        string
	ExpiryTime time.Time
}

// URL returns whichever URL the source carries.
func (f FileSource) URL() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

// Expired reports whether a hosted URL is past its expiry at now. External URLs
// never expire.
func (f FileSource) Expired(now time.Time) bool {
	return f.File != nil && !f.File.ExpiryTime.IsZero() && !now.Before(f.File.ExpiryTime)
}

// Icon is an emoji or an image.
type Icon struct {
	Emoji string
	Image *FileSource
}
