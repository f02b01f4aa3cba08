package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAttribute(),
		parser.WithASTTransformers(util.Prioritized(listMarkers{}, 100)),
	),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// HTML converts rendered markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to convert markdown").Build()
	}
	return buf.String(), nil
}

// Body renders an assembled tree straight to HTML.
func Body(doc Document) (string, error) {
	return HTML(doc.Markdown)
}

// listMarkers sets the type attribute of ordered lists from their nesting depth
// among ordered lists.
type listMarkers struct{}

func (listMarkers) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	depth := map[ast.Node]int{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		list, ok := n.(*ast.List)
		if !ok || !list.IsOrdered() {
			return ast.WalkContinue, nil
		}
		level := 1
		for p := n.Parent(); p != nil; p = p.Parent() {
			if d, ok := depth[p]; ok {
				level = d + 1
				break
			}
		}
		depth[n] = level
		list.SetAttributeString("type", []byte(MarkerStyle(level)))
		return ast.WalkContinue, nil
	})
}
