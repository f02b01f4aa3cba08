// Package blocks defines the closed set of content block variants and the
// normalizer that maps raw API blocks onto them.
//
// Blocks are values. Container variants receive their children through Attach,
// WithRows and WithColumns, which return a filled copy; nothing outside this
// package can change a block after it has been built.
package blocks

// Kind is the block type tag. It matches the API discriminant for every known type.
type Kind string

const (
	KindParagraph        Kind = "paragraph"
	KindHeading1         Kind = "heading_1"
	KindHeading2         Kind = "heading_2"
	KindHeading3         Kind = "heading_3"
	KindBulletedListItem Kind = "bulleted_list_item"
	KindNumberedListItem Kind = "numbered_list_item"
	KindToDo             Kind = "to_do"
	KindImage            Kind = "image"
	KindVideo            Kind = "video"
	KindFile             Kind = "file"
	KindCode             Kind = "code"
	KindQuote            Kind = "quote"
	KindEquation         Kind = "equation"
	KindCallout          Kind = "callout"
	KindEmbed            Kind = "embed"
	KindBookmark         Kind = "bookmark"
	KindLinkPreview      Kind = "link_preview"
	KindTable            Kind = "table"
	KindTableRow         Kind = "table_row"
	KindColumnList       Kind = "column_list"
	KindColumn           Kind = "column"
	KindTableOfContents  Kind = "table_of_contents"
	KindLinkToPage       Kind = "link_to_page"
	KindSyncedBlock      Kind = "synced_block"
	KindToggle           Kind = "toggle"
	KindDivider          Kind = "divider"
	KindUnsupported      Kind = "unsupported"
)

// IsHeading reports whether k is one of the three heading kinds.
func (k Kind) IsHeading() bool {
	return k == KindHeading1 || k == KindHeading2 || k == KindHeading3
}

// IsListItem reports whether k is grouped into a list when rendered.
func (k Kind) IsListItem() bool {
	return k == KindBulletedListItem || k == KindNumberedListItem || k == KindToDo
}

// ExpandsWhenFlagged reports whether children are fetched for k only when the
// block reports has_children.
func (k Kind) ExpandsWhenFlagged() bool {
	switch k {
	case KindParagraph, KindHeading1, KindHeading2, KindHeading3,
		KindBulletedListItem, KindNumberedListItem, KindToDo,
		KindQuote, KindCallout, KindToggle:
		return true
	}
	return false
}

// Block is implemented by every variant in this package and by nothing else.
type Block interface {
	ID() string
	Kind() Kind
	HasChildren() bool
	Children() []Block
	sealed()
}

// Base is the envelope shared by all variants.
type Base struct {
	id          string
	kind        Kind
	hasChildren bool
	children    []Block
}

func newBase(id string, kind Kind, hasChildren bool) Base {
	return Base{id: id, kind: kind, hasChildren: hasChildren}
}

func (b Base) ID() string        { return b.id }
func (b Base) Kind() Kind        { return b.kind }
func (b Base) HasChildren() bool { return b.hasChildren }

// Children returns the assembled children. The slice must not be modified.
func (b Base) Children() []Block { return b.children }

func (Base) sealed() {}

// container is implemented by variants whose child slot is filled by Attach.
type container interface {
	Block
	withChildren(children []Block) Block
}

// Attach returns a copy of b holding children. Blocks that cannot hold children
// are returned unchanged.
func Attach(b Block, children []Block) Block {
	if c, ok := b.(container); ok {
		return c.withChildren(children)
	}
	return b
}

// AcceptsChildren reports whether Attach has an effect on b.
func AcceptsChildren(b Block) bool {
	_, ok := b.(container)
	return ok
}
