package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutes(t *testing.T) {
	en := Routes{Lang: "en"}
	assert.Equal(t, "/en/", en.Home())
	assert.Equal(t, "/en/", en.Page(1))
	assert.Equal(t, "/en/posts/page/3/", en.Page(3))
	assert.Equal(t, "/en/posts/hello-world/", en.Post("Hello World"))
	assert.Equal(t, "/en/posts/tag/machine-learning/", en.Tag("Machine Learning", 1))
	assert.Equal(t, "/en/posts/tag/go/page/2/", en.Tag("Go", 2))

	none := Routes{}
	assert.Equal(t, "/", none.Home())
	assert.Equal(t, "/posts/x/", none.Post("x"))

	assert.Equal(t, "index.html", File("/"))
	assert.Equal(t, "en/posts/x/index.html", File("/en/posts/x/"))
}

func TestSegment(t *testing.T) {
	cases := map[string]string{
		"hello-world":    "hello-world",
		"  Hello, World": "hello-world",
		"../etc/passwd":  "etc-passwd",
		"C++":            "c",
		"":               "untitled",
		"---":            "untitled",
	}
	for in, want := range cases {
		assert.Equal(t, want, Segment(in), in)
	}
}
