package notion

import (
	"strings"
	"time"
)

// List is the paginated envelope returned by every listing endpoint.
type List[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// Cursor returns the continuation cursor, or "" when the list is complete.
func (l *List[T]) Cursor() string {
	if l == nil || !l.HasMore || l.NextCursor == nil {
		return ""
	}
	return *l.NextCursor
}

// Block is a raw content block as serialized by the API. Exactly one payload
// pointer, the one named by Type, is populated.
type Block struct {
	Object         string    `json:"object"`
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	HasChildren    bool      `json:"has_children"`
	Archived       bool      `json:"archived,omitempty"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`

	Paragraph        *TextBlock        `json:"paragraph,omitempty"`
	Heading1         *HeadingBlock     `json:"heading_1,omitempty"`
	Heading2         *HeadingBlock     `json:"heading_2,omitempty"`
	Heading3         *HeadingBlock     `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock        `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock        `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoBlock        `json:"to_do,omitempty"`
	Toggle           *TextBlock        `json:"toggle,omitempty"`
	Quote            *TextBlock        `json:"quote,omitempty"`
	Callout          *CalloutBlock     `json:"callout,omitempty"`
	Code             *CodeBlock        `json:"code,omitempty"`
	Equation         *EquationBlock    `json:"equation,omitempty"`
	Image            *FileObject       `json:"image,omitempty"`
	Video            *FileObject       `json:"video,omitempty"`
	File             *FileObject       `json:"file,omitempty"`
	Embed            *URLBlock         `json:"embed,omitempty"`
	Bookmark         *URLBlock         `json:"bookmark,omitempty"`
	LinkPreview      *URLBlock         `json:"link_preview,omitempty"`
	Table            *TableBlock       `json:"table,omitempty"`
	TableRow         *TableRowBlock    `json:"table_row,omitempty"`
	ColumnList       *EmptyBlock       `json:"column_list,omitempty"`
	Column           *EmptyBlock       `json:"column,omitempty"`
	TableOfContents  *ColorBlock       `json:"table_of_contents,omitempty"`
	LinkToPage       *LinkToPageBlock  `json:"link_to_page,omitempty"`
	SyncedBlock      *SyncedBlockBlock `json:"synced_block,omitempty"`
}

// TextBlock is the payload shared by paragraphs, list items, toggles and quotes.
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type HeadingBlock struct {
	RichText     []RichText `json:"rich_text"`
	Color        string     `json:"color,omitempty"`
	IsToggleable bool       `json:"is_toggleable,omitempty"`
}

type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Color    string     `json:"color,omitempty"`
}

type CalloutBlock struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language"`
}

type EquationBlock struct {
	Expression string `json:"expression"`
}

// URLBlock is the payload of embeds, bookmarks and link previews.
type URLBlock struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type TableBlock struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

type TableRowBlock struct {
	Cells [][]RichText `json:"cells"`
}

// EmptyBlock is the payload of types that carry no fields (column_list, column).
type EmptyBlock struct{}

type ColorBlock struct {
	Color string `json:"color,omitempty"`
}

type LinkToPageBlock struct {
	Type       string `json:"type"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// SyncedBlockBlock has a nil SyncedFrom for an original synced block and a
// reference for a duplicate.
type SyncedBlockBlock struct {
	SyncedFrom *SyncedFrom `json:"synced_from"`
}

type SyncedFrom struct {
	Type    string `json:"type"`
	BlockID string `json:"block_id"`
}

// RichText is one styled span.
type RichText struct {
	Type        string      `json:"type"`
	PlainText   string      `json:"plain_text"`
	Href        *string     `json:"href"`
	Annotations Annotations `json:"annotations"`
	Text        *Text       `json:"text,omitempty"`
	Equation    *InlineMath `json:"equation,omitempty"`
	Mention     *Mention    `json:"mention,omitempty"`
}

type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link"`
}

type Link struct {
	URL string `json:"url"`
}

type InlineMath struct {
	Expression string `json:"expression"`
}

type Mention struct {
	Type string         `json:"type"`
	Page *PageReference `json:"page,omitempty"`
}

type PageReference struct {
	ID string `json:"id"`
}

// FileObject describes media: Type is "external" or "file" (hosted, expiring).
type FileObject struct {
	Type     string        `json:"type"`
	Name     string        `json:"name,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
}

type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile is a file served by the content service through a signed URL that
// stops working at ExpiryTime.
type HostedFile struct {
	URL        string    `json:"url"`
	ExpiryTime time.Time `json:"expiry_time"`
}

// Icon is an emoji or an image.
type Icon struct {
	Type     string        `json:"type"`
	Emoji    string        `json:"emoji,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
}

// Page is a database row.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	URL            string              `json:"url"`
	Icon           *Icon               `json:"icon"`
	Cover          *FileObject         `json:"cover"`
	Properties     map[string]Property `json:"properties"`
}

// Property is a typed page property value. Only the field named by Type is set.
type Property struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	Files       []FileObject   `json:"files,omitempty"`
	URL         *string        `json:"url,omitempty"`
}

type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Database is the collection metadata.
type Database struct {
	Object      string      `json:"object"`
	ID          string      `json:"id"`
	Title       []RichText  `json:"title"`
	Description []RichText  `json:"description"`
	Icon        *Icon       `json:"icon"`
	Cover       *FileObject `json:"cover"`
	URL         string      `json:"url"`
}

// APIError is the error body returned with non-2xx responses.
type APIError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlainText concatenates the plain text of spans.
func PlainText(spans []RichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}
