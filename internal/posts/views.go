package posts

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// Visible drops meta records.
func Visible(all []Post) []Post {
	out := make([]Post, 0, len(all))
	for _, p := range all {
		if !p.Meta {
			out = append(out, p)
		}
	}
	return out
}

// Meta returns the first meta record, if any.
func Meta(all []Post) (*Post, bool) {
	for i := range all {
		if all[i].Meta {
			p := all[i]
			return &p, true
		}
	}
	return nil, false
}

// Latest returns the first n visible posts; n <= 0 returns all of them.
func Latest(all []Post, n int) []Post {
	return limit(Visible(all), n)
}

// Ranked returns visible posts with a positive rank, highest first. Equal ranks
// keep their order in all.
func Ranked(all []Post, n int) []Post {
	var ranked []Post
	for _, p := range Visible(all) {
		if p.Rank > 0 {
			ranked = append(ranked, p)
		}
	}
	slices.SortStableFunc(ranked, func(a, b Post) int { return cmp.Compare(b.Rank, a.Rank) })
	return limit(ranked, n)
}

// BySlug finds a visible post.
func BySlug(all []Post, slug string) (Post, error) {
	for _, p := range all {
		if !p.Meta && p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, errors.NotFoundError("post not found").
		WithContext("slug", slug).
		Build()
}

// ByTag returns the first n visible posts carrying tag; n <= 0 returns all.
func ByTag(all []Post, tag string, n int) []Post {
	var out []Post
	for _, p := range Visible(all) {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return limit(out, n)
}

// Page returns 1-based page number page of visible posts. Out-of-range pages are empty.
func Page(all []Post, page, perPage int) []Post {
	return paginate(Visible(all), page, perPage)
}

// TagPage returns page number page of the posts carrying tag.
func TagPage(all []Post, tag string, page, perPage int) []Post {
	return paginate(ByTag(all, tag, 0), page, perPage)
}

// NumberOfPages is the number of pages needed for the visible posts.
func NumberOfPages(all []Post, perPage int) int {
	return PageCount(len(Visible(all)), perPage)
}

// NumberOfPagesByTag is the number of pages needed for the posts carrying tag.
func NumberOfPagesByTag(all []Post, tag string, perPage int) int {
	return PageCount(len(ByTag(all, tag, 0)), perPage)
}

// AllTags returns every tag used by a visible post, unique by name and sorted by
// name. The color of the first occurrence wins.
func AllTags(all []Post) []Tag {
	seen := make(map[string]bool)
	var tags []Tag
	for _, p := range Visible(all) {
		for _, t := range p.Tags {
			if t.Name == "" || seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(a, b Tag) int { return strings.Compare(a.Name, b.Name) })
	return tags
}

func limit(ps []Post, n int) []Post {
	if n > 0 && len(ps) > n {
		return ps[:n]
	}
	return ps
}

func paginate(ps []Post, page, perPage int) []Post {
	if page < 1 || perPage <= 0 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(ps) {
		return nil
	}
	end := min(start+perPage, len(ps))
	return ps[start:end]
}

// PageCount is the number of pages of perPage items needed for count items.
func PageCount(count, perPage int) int {
	if perPage <= 0 || count == 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}
