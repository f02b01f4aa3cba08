// Package posts maps database pages onto blog posts and provides the pure,
// in-memory views the site is built from.
package posts

import (
	"math"
	"strings"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/notion"
)

// Database property names.
const (
	PropTitle         = "Page"
	PropSlug          = "Slug"
	PropDate          = "Date"
	PropTags          = "Tags"
	PropExcerpt       = "Excerpt"
	PropFeaturedImage = "FeaturedImage"
	PropRank          = "Rank"
	PropMeta          = "Meta"
	PropLang          = "Lang"
	PropPublished     = "Published"
)

// Tag is a multi-select option.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Post is one database row.
type Post struct {
	PageID        string
	Title         string
	Icon          *blocks.Icon
	Cover         *blocks.FileSource
	Slug          string
	Date          string
	Tags          []Tag
	Excerpt       string
	FeaturedImage *blocks.FileSource
	Rank          int
	Meta          bool
	Lang          string
	LastEdited    time.Time
}

// PublishedAt parses Date. It returns the zero time when the date is missing or malformed.
func (p Post) PublishedAt() time.Time {
	if p.Date == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasTag reports whether the post carries a tag named name.
func (p Post) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Valid reports whether the post has a title, a slug, and either a date or the meta flag.
func (p Post) Valid() bool {
	return p.Title != "" && p.Slug != "" && (p.Date != "" || p.Meta)
}

// FromPage maps a database page.
func FromPage(page notion.Page) Post {
	props := page.Properties
	p := Post{
		PageID:     page.ID,
		Title:      strings.TrimSpace(notion.PlainText(props[PropTitle].Title)),
		Icon:       blocks.BuildIcon(page.Icon),
		Slug:       strings.TrimSpace(notion.PlainText(props[PropSlug].RichText)),
		Excerpt:    notion.PlainText(props[PropExcerpt].RichText),
		Meta:       props[PropMeta].Checkbox,
		LastEdited: page.LastEditedTime,
	}
	if page.Cover != nil {
		src := blocks.BuildFileSource(page.Cover)
		if src.URL() != "" {
			p.Cover = &src
		}
	}
	if d := props[PropDate].Date; d != nil {
		p.Date = d.Start
	}
	for _, opt := range props[PropTags].MultiSelect {
		p.Tags = append(p.Tags, Tag{Name: opt.Name, Color: opt.Color})
	}
	if files := props[PropFeaturedImage].Files; len(files) > 0 {
		src := blocks.BuildFileSource(&files[0])
		if src.URL() != "" {
			p.FeaturedImage = &src
		}
	}
	if n := props[PropRank].Number; n != nil && !math.IsNaN(*n) {
		p.Rank = clampRank(*n)
	}
	if s := props[PropLang].Select; s != nil {
		p.Lang = s.Name
	}
	return p
}

// FromPages maps pages in order and drops archived pages, invalid posts and,
// when lang is set, posts in another language.
func FromPages(pages []notion.Page, lang string) []Post {
	out := make([]Post, 0, len(pages))
	for _, page := range pages {
		if page.Archived {
			continue
		}
		p := FromPage(page)
		if !p.Valid() {
			continue
		}
		if lang != "" && p.Lang != lang {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Query selects published posts dated on or before today, plus meta records,
// newest first. A non-empty lang restricts results to that language.
func Query(lang string, today time.Time) notion.DatabaseQuery {
	visible := notion.And(
		notion.CheckboxEquals(PropPublished, true),
		notion.Or(
			notion.DateOnOrBefore(PropDate, today.Format(time.DateOnly)),
			notion.CheckboxEquals(PropMeta, true),
		),
	)
	filter := visible
	if lang != "" {
		filter = notion.And(visible, notion.SelectEquals(PropLang, lang))
	}
	return notion.DatabaseQuery{
		Filter: &filter,
		Sorts:  []notion.Sort{{Property: PropDate, Direction: notion.Descending}},
	}
}

// Database is the site-level metadata.
type Database struct {
	Title       string
	Description string
	Icon        *blocks.Icon
	Cover       *blocks.FileSource
}

// DatabaseFrom maps collection metadata, letting a meta post override title
// and description.
func DatabaseFrom(db *notion.Database, meta *Post) Database {
	out := Database{}
	if db != nil {
		out.Title = notion.PlainText(db.Title)
		out.Description = notion.PlainText(db.Description)
		out.Icon = blocks.BuildIcon(db.Icon)
		if db.Cover != nil {
			src := blocks.BuildFileSource(db.Cover)
			if src.URL() != "" {
				out.Cover = &src
			}
		}
	}
	if meta != nil {
		if meta.Title != "" {
			out.Title = meta.Title
		}
		if meta.Excerpt != "" {
			out.Description = meta.Excerpt
		}
	}
	return out
}

// MetaQuery selects the meta records only.
func MetaQuery() notion.DatabaseQuery {
	f := notion.CheckboxEquals(PropMeta, true)
	return notion.DatabaseQuery{Filter: &f}
}

// clampRank truncates a number property into the int32 range.
func clampRank(n float64) int {
	switch {
	case n >= math.MaxInt32:
		return math.MaxInt32
	case n <= math.MinInt32:
		return math.MinInt32
	default:
		return int(n)
	}
}
