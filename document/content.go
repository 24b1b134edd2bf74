package document

// ContentTree is the ordered list of sections making up a document's body.
type ContentTree struct {
	Sections []Section `cbor:"1,keyasint" json:"sections"`
}

// Section groups an ordered list of blocks under an optional title.
type Section struct {
	ID     string  `cbor:"1,keyasint" json:"id"`
	Title  string  `cbor:"2,keyasint,omitempty" json:"title,omitempty"`
	Blocks []Block `cbor:"3,keyasint" json:"blocks"`
}

// BlockKind discriminates the Block tagged union.
type BlockKind string

const (
	BlockHeading  BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList     BlockKind = "list"
	BlockTable    BlockKind = "table"
	BlockDiagram  BlockKind = "diagram"
	BlockFigure   BlockKind = "figure"
	BlockFootnote BlockKind = "footnote"
)

// Block is a tagged union over the seven content block variants (§3). Only
// the field(s) relevant to Kind are populated; the others are left at their
// zero value. This mirrors a plain sum type better than an interface would
// for a format that must round-trip through CBOR without per-variant
// registration.
type Block struct {
	Kind BlockKind `cbor:"1,keyasint" json:"kind"`
	ID   string    `cbor:"2,keyasint,omitempty" json:"id,omitempty"`

	// Heading
	Level int    `cbor:"3,keyasint,omitempty" json:"level,omitempty"`
	Text  string `cbor:"4,keyasint,omitempty" json:"text,omitempty"`

	// List
	Ordered bool     `cbor:"5,keyasint,omitempty" json:"ordered,omitempty"`
	Items   []string `cbor:"6,keyasint,omitempty" json:"items,omitempty"`

	// Table
	Caption string        `cbor:"7,keyasint,omitempty" json:"caption,omitempty"`
	Columns []TableColumn `cbor:"8,keyasint,omitempty" json:"columns,omitempty"`
	Rows    []TableRow    `cbor:"9,keyasint,omitempty" json:"rows,omitempty"`
	Footer  string        `cbor:"10,keyasint,omitempty" json:"footer,omitempty"`

	// Diagram
	DiagramType string   `cbor:"11,keyasint,omitempty" json:"diagram_type,omitempty"`
	Nodes       []string `cbor:"12,keyasint,omitempty" json:"nodes,omitempty"`
	Edges       []string `cbor:"13,keyasint,omitempty" json:"edges,omitempty"`
	Layout      string   `cbor:"14,keyasint,omitempty" json:"layout,omitempty"`

	// Figure
	AssetPath string `cbor:"15,keyasint,omitempty" json:"asset_path,omitempty"`
	Alt       string `cbor:"16,keyasint,omitempty" json:"alt,omitempty"`
	Width     int    `cbor:"17,keyasint,omitempty" json:"width,omitempty"`

	// Footnote reuses Text above.
}

// TableCellType discriminates how a table column's raw value should be
// interpreted and displayed.
type TableCellType string

const (
	CellText       TableCellType = "text"
	CellNumber     TableCellType = "number"
	CellCurrency   TableCellType = "currency"
	CellPercentage TableCellType = "percentage"
	CellDate       TableCellType = "date"
	CellFormula    TableCellType = "formula"
)

// TableColumn describes one column of a Table block.
type TableColumn struct {
	ID       string        `cbor:"1,keyasint" json:"id"`
	Header   string        `cbor:"2,keyasint" json:"header"`
	CellType TableCellType `cbor:"3,keyasint" json:"cell_type"`
	Currency string        `cbor:"4,keyasint,omitempty" json:"currency,omitempty"`
}

// TableRow is a map from column id to that row's cell value.
type TableRow struct {
	Cells map[string]CellValue `cbor:"1,keyasint" json:"cells"`
}

// CellValueKind discriminates the CellValue tagged union.
type CellValueKind string

const (
	CellValueText       CellValueKind = "text"
	CellValueNumber     CellValueKind = "number"
	CellValueCurrency   CellValueKind = "currency"
	CellValuePercentage CellValueKind = "percentage"
	CellValueDate       CellValueKind = "date"
)

// CellValue is a tagged union over Text/Number/Currency/Percentage/Date.
type CellValue struct {
	Kind     CellValueKind `cbor:"1,keyasint" json:"kind"`
	Text     string        `cbor:"2,keyasint,omitempty" json:"text,omitempty"`
	Raw      float64       `cbor:"3,keyasint,omitempty" json:"raw,omitempty"`
	Display  string        `cbor:"4,keyasint,omitempty" json:"display,omitempty"`
	Currency string        `cbor:"5,keyasint,omitempty" json:"currency,omitempty"`
}
