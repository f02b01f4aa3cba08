package blocks

import "git.home.luguber.info/inful/notionblog/internal/notion"

// Normalize maps a raw block onto its variant. Unknown types, missing payloads
// and link_to_page blocks without a page id become Unsupported. It never fails.
func Normalize(raw notion.Block) Block {
	kind := Kind(raw.Type)
	base := newBase(raw.ID, kind, raw.HasChildren)

	switch kind {
	case KindParagraph:
		if p := raw.Paragraph; p != nil {
			return Paragraph{Base: base, RichText: BuildRichText(p.RichText), Color: p.Color}
		}
	case KindHeading1:
		if h := raw.Heading1; h != nil {
			return heading(base, 1, h)
		}
	case KindHeading2:
		if h := raw.Heading2; h != nil {
			return heading(base, 2, h)
		}
	case KindHeading3:
		if h := raw.Heading3; h != nil {
			return heading(base, 3, h)
		}
	case KindBulletedListItem:
		if p := raw.BulletedListItem; p != nil {
			return BulletedListItem{Base: base, RichText: BuildRichText(p.RichText), Color: p.Color}
		}
	case KindNumberedListItem:
		if p := raw.NumberedListItem; p != nil {
			return NumberedListItem{Base: base, RichText: BuildRichText(p.RichText), Color: p.Color}
		}
	case KindToDo:
		if p := raw.ToDo; p != nil {
			return ToDo{Base: base, RichText: BuildRichText(p.RichText), Checked: p.Checked, Color: p.Color}
		}
	case KindImage:
		if p := raw.Image; p != nil {
			return Image{Base: base, Caption: BuildRichText(p.Caption), Source: BuildFileSource(p)}
		}
	case KindVideo:
		if p := raw.Video; p != nil {
			return Video{Base: base, Caption: BuildRichText(p.Caption), Source: BuildFileSource(p)}
		}
	case KindFile:
		if p := raw.File; p != nil {
			return File{Base: base, Name: p.Name, Caption: BuildRichText(p.Caption), Source: BuildFileSource(p)}
		}
	case KindCode:
		if p := raw.Code; p != nil {
			return Code{Base: base, RichText: BuildRichText(p.RichText), Caption: BuildRichText(p.Caption), Language: p.Language}
		}
	case KindQuote:
		if p := raw.Quote; p != nil {
			return Quote{Base: base, RichText: BuildRichText(p.RichText), Color: p.Color}
		}
	case KindEquation:
		if p := raw.Equation; p != nil {
			return Equation{Base: base, Expression: p.Expression}
		}
	case KindCallout:
		if p := raw.Callout; p != nil {
			return Callout{Base: base, RichText: BuildRichText(p.RichText), Icon: BuildIcon(p.Icon), Color: p.Color}
		}
	case KindEmbed:
		if p := raw.Embed; p != nil {
			return Embed{Base: base, URL: p.URL, Caption: BuildRichText(p.Caption)}
		}
	case KindBookmark:
		if p := raw.Bookmark; p != nil {
			return Bookmark{Base: base, URL: p.URL, Caption: BuildRichText(p.Caption)}
		}
	case KindLinkPreview:
		if p := raw.LinkPreview; p != nil {
			return LinkPreview{Base: base, URL: p.URL}
		}
	case KindTable:
		if p := raw.Table; p != nil {
			return Table{Base: base, Width: p.TableWidth, HasColumnHeader: p.HasColumnHeader, HasRowHeader: p.HasRowHeader}
		}
	case KindTableRow:
		if p := raw.TableRow; p != nil {
			return TableRow{Base: base, Cells: buildCells(p.Cells)}
		}
	case KindColumnList:
		if raw.ColumnList != nil {
			return ColumnList{Base: base}
		}
	case KindColumn:
		if raw.Column != nil {
			return Column{Base: base}
		}
	case KindTableOfContents:
		if p := raw.TableOfContents; p != nil {
			return TableOfContents{Base: base, Color: p.Color}
		}
	case KindLinkToPage:
		if p := raw.LinkToPage; p != nil && p.PageID != "" {
			return LinkToPage{Base: base, PageID: p.PageID}
		}
	case KindSyncedBlock:
		if p := raw.SyncedBlock; p != nil {
			s := SyncedBlock{Base: base}
			if p.SyncedFrom != nil {
				s.SyncedFrom = p.SyncedFrom.BlockID
			}
			return s
		}
	case KindToggle:
		if p := raw.Toggle; p != nil {
			return Toggle{Base: base, RichText: BuildRichText(p.RichText), Color: p.Color}
		}
	case KindDivider:
		return Divider{Base: base}
	}
	return unsupported(raw)
}

// NormalizeAll maps every raw block, preserving order.
func NormalizeAll(raws []notion.Block) []Block {
	out := make([]Block, len(raws))
	for i, r := range raws {
		out[i] = Normalize(r)
	}
	return out
}

func unsupported(raw notion.Block) Unsupported {
	return Unsupported{Base: newBase(raw.ID, KindUnsupported, raw.HasChildren), Type: raw.Type}
}

func heading(base Base, level int, h *notion.HeadingBlock) Heading {
	return Heading{
		Base:         base,
		Level:        level,
		RichText:     BuildRichText(h.RichText),
		Color:        h.Color,
		IsToggleable: h.IsToggleable,
	}
}

func buildCells(cells [][]notion.RichText) [][]RichText {
	out := make([][]RichText, len(cells))
	for i, c := range cells {
		out[i] = BuildRichText(c)
	}
	return out
}

// BuildRichText maps raw spans. Annotations are copied verbatim and exactly one
// of text, equation or mention is populated, or none for a span of another type.
func BuildRichText(spans []notion.RichText) []RichText {
	if len(spans) == 0 {
		return nil
	}
	out := make([]RichText, len(spans))
	for i, s := range spans {
		rt := RichText{
			PlainText: s.PlainText,
			Annotations: Annotations{
				Bold:          s.Annotations.Bold,
				Italic:        s.Annotations.Italic,
				Strikethrough: s.Annotations.Strikethrough,
				Underline:     s.Annotations.Underline,
				Code:          s.Annotations.Code,
				Color:         s.Annotations.Color,
			},
		}
		if s.Href != nil {
			rt.Href = *s.Href
		}
		switch {
		case s.Text != nil:
			rt.Text = &Text{Content: s.Text.Content}
			if s.Text.Link != nil {
				rt.Text.Link = &Link{URL: s.Text.Link.URL}
			}
		case s.Equation != nil:
			rt.Equation = &InlineEquation{Expression: s.Equation.Expression}
		case s.Mention != nil:
			rt.Mention = &Mention{Type: s.Mention.Type}
			if s.Mention.Type == "page" && s.Mention.Page != nil {
				rt.Mention.Page = &PageRef{ID: s.Mention.Page.ID}
			}
		}
		out[i] = rt
	}
	return out
}

// BuildFileSource maps a raw file object. External sources carry only the URL;
// hosted sources carry the URL and its expiry.
func BuildFileSource(f *notion.FileObject) FileSource {
	if f == nil {
		return FileSource{}
	}
	switch f.Type {
	case "external":
		if f.External != nil {
			return FileSource{External: &ExternalFile{URL: f.External.URL}}
		}
	case "file":
		if f.File != nil {
			return FileSource{File: &HostedFile{URL: f.File.URL, ExpiryTime: f.File.ExpiryTime}}
		}
	}
	return FileSource{}
}

// BuildIcon maps a page, database or callout icon.
func BuildIcon(i *notion.Icon) *Icon {
	if i == nil {
		return nil
	}
	switch i.Type {
	case "emoji":
		return &Icon{Emoji: i.Emoji}
	case "external":
		if i.External != nil {
			return &Icon{Image: &FileSource{External: &ExternalFile{URL: i.External.URL}}}
		}
	case "file":
		if i.File != nil {
			return &Icon{Image: &FileSource{File: &HostedFile{URL: i.File.URL, ExpiryTime: i.File.ExpiryTime}}}
		}
	}
	return nil
}
