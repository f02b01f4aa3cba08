package site

import (
	"path"
	"strconv"
	"strings"
	"unicode"
)

// Routes builds the URL paths of one language. Every path ends in a slash and
// is served from <path>/index.html.
type Routes struct {
	Lang string
}

func (r Routes) prefix() string {
	if r.Lang == "" {
		return "/"
	}
	return "/" + r.Lang + "/"
}

// Home is the first index page.
func (r Routes) Home() string { return r.prefix() }

// Post is the page of one post.
func (r Routes) Post(slug string) string {
	return r.prefix() + "posts/" + Segment(slug) + "/"
}

// Page is the n-th index page; page 1 is Home.
func (r Routes) Page(n int) string {
	if n <= 1 {
		return r.Home()
	}
	return r.prefix() + "posts/page/" + strconv.Itoa(n) + "/"
}

// Tag is the n-th page of posts carrying tag.
func (r Routes) Tag(tag string, n int) string {
	base := r.prefix() + "posts/tag/" + Segment(tag) + "/"
	if n <= 1 {
		return base
	}
	return base + "page/" + strconv.Itoa(n) + "/"
}

// File maps a route onto the relative file that serves it.
func File(route string) string {
	return path.Join(strings.TrimPrefix(route, "/"), "index.html")
}

// Segment turns a slug or tag name into a single lowercase path element.
func Segment(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "untitled"
	}
	return out
}
