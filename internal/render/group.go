package render

import "git.home.luguber.info/inful/notionblog/internal/blocks"

// Node is an element of the render tree: a block or a synthetic List.
type Node interface {
	Kind() blocks.Kind
}

// List kinds. They never appear in API data.
const (
	KindBulletedList blocks.Kind = "bulleted_list"
	KindNumberedList blocks.Kind = "numbered_list"
	KindToDoList     blocks.Kind = "to_do_list"
)

// List groups consecutive list items of one kind.
type List struct {
	ListKind blocks.Kind
	Items    []blocks.Block
}

func (l *List) Kind() blocks.Kind { return l.ListKind }

// ListKindFor returns the list kind an item kind groups into, or "" for kinds
// that are not list items.
func ListKindFor(k blocks.Kind) blocks.Kind {
	switch k {
	case blocks.KindBulletedListItem:
		return KindBulletedList
	case blocks.KindNumberedListItem:
		return KindNumberedList
	case blocks.KindToDo:
		return KindToDoList
	}
	return ""
}

// Nodes converts blocks into render nodes without grouping.
func Nodes(bs []blocks.Block) []Node {
	out := make([]Node, len(bs))
	for i, b := range bs {
		out[i] = b
	}
	return out
}

// Group makes one forward pass over nodes, merging each run of adjacent list
// items of the same kind into a List. Every other node, including an existing
// List, is emitted unchanged and never receives items, so Group(Group(x))
// equals Group(x). Children are not visited.
func Group(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	var open *List
	for _, n := range nodes {
		b, ok := n.(blocks.Block)
		if !ok {
			out = append(out, n)
			open = nil
			continue
		}
		lk := ListKindFor(b.Kind())
		if lk == "" {
			out = append(out, n)
			open = nil
			continue
		}
		if open != nil && open.ListKind == lk {
			open.Items = append(open.Items, b)
			continue
		}
		open = &List{ListKind: lk, Items: []blocks.Block{b}}
		out = append(out, open)
	}
	return out
}

// GroupBlocks is Group over a block sequence.
func GroupBlocks(bs []blocks.Block) []Node {
	return Group(Nodes(bs))
}
