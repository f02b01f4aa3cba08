package blocks

type Paragraph struct {
	Base
	RichText []RichText
	Color    string
}

func (p Paragraph) withChildren(c []Block) Block { p.children = c; return p }

// Heading covers heading_1 to heading_3.
type Heading struct {
	Base
	Level        int
	RichText     []RichText
	Color        string
	IsToggleable bool
}

func (h Heading) withChildren(c []Block) Block { h.children = c; return h }

type BulletedListItem struct {
	Base
	RichText []RichText
	Color    string
}

func (b BulletedListItem) withChildren(c []Block) Block { b.children = c; return b }

type NumberedListItem struct {
	Base
	RichText []RichText
	Color    string
}

func (n NumberedListItem) withChildren(c []Block) Block { n.children = c; return n }

type ToDo struct {
	Base
	RichText []RichText
	Checked  bool
	Color    string
}

func (t ToDo) withChildren(c []Block) Block { t.children = c; return t }

type Quote struct {
	Base
	RichText []RichText
	Color    string
}

func (q Quote) withChildren(c []Block) Block { q.children = c; return q }

type Callout struct {
	Base
	RichText []RichText
	Icon     *Icon
	Color    string
}

func (co Callout) withChildren(c []Block) Block { co.children = c; return co }

type Toggle struct {
	Base
	RichText []RichText
	Color    string
}

func (t Toggle) withChildren(c []Block) Block { t.children = c; return t }

type Image struct {
	Base
	Caption []RichText
	Source  FileSource
}

type Video struct {
	Base
	Caption []RichText
	Source  FileSource
}

type File struct {
	Base
	Name    string
	Caption []RichText
	Source  FileSource
}

// Media is implemented by Image, Video and File.
type Media interface {
	Block
	MediaSource() FileSource
	WithSource(src FileSource) Block
}

func (i Image) MediaSource() FileSource { return i.Source }
func (v Video) MediaSource() FileSource { return v.Source }
func (f File) MediaSource() FileSource  { return f.Source }

// WithSource returns a copy pointing at src.
func (i Image) WithSource(src FileSource) Block { i.Source = src; return i }
func (v Video) WithSource(src FileSource) Block { v.Source = src; return v }
func (f File) WithSource(src FileSource) Block  { f.Source = src; return f }

type Code struct {
	Base
	RichText []RichText
	Caption  []RichText
	Language string
}

type Equation struct {
	Base
	Expression string
}

type Embed struct {
	Base
	URL     string
	Caption []RichText
}

type Bookmark struct {
	Base
	URL     string
	Caption []RichText
}

type LinkPreview struct {
	Base
	URL string
}

// Table holds its rows once assembled.
type Table struct {
	Base
	Width           int
	HasColumnHeader bool
	HasRowHeader    bool
	rows            []TableRow
}

// Rows returns the assembled rows. The slice must not be modified.
func (t Table) Rows() []TableRow { return t.rows }

// WithRows returns a copy of t holding rows.
func (t Table) WithRows(rows []TableRow) Table {
	t.rows = rows
	t.children = make([]Block, len(rows))
	for i, r := range rows {
		t.children[i] = r
	}
	return t
}

// TableRow has one rich-text array per cell.
type TableRow struct {
	Base
	Cells [][]RichText
}

// ColumnList holds its columns once assembled.
type ColumnList struct {
	Base
	columns []Column
}

// Columns returns the assembled columns. The slice must not be modified.
func (cl ColumnList) Columns() []Column { return cl.columns }

// WithColumns returns a copy of cl holding columns.
func (cl ColumnList) WithColumns(columns []Column) ColumnList {
	cl.columns = columns
	cl.children = make([]Block, len(columns))
	for i, col := range columns {
		cl.children[i] = col
	}
	return cl
}

type Column struct {
	Base
}

func (col Column) withChildren(c []Block) Block { col.children = c; return col }

type TableOfContents struct {
	Base
	Color string
}

// LinkToPage always carries a page id; links without one normalize to Unsupported.
type LinkToPage struct {
	Base
	PageID string
}

// SyncedBlock mirrors another block when SyncedFrom is set. An original synced
// block has an empty SyncedFrom and owns its children.
type SyncedBlock struct {
	Base
	SyncedFrom string
}

func (s SyncedBlock) withChildren(c []Block) Block { s.children = c; return s }

type Divider struct {
	Base
}

// Unsupported is any block whose type is unknown or whose payload is unusable.
// Type keeps the raw discriminant for diagnostics.
type Unsupported struct {
	Base
	Type string
}
