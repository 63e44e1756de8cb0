// Package categories holds the in-memory data model of a lead workbook:
// categories of rows sharing one typed schema, with one category
// distinguished as the accepted roster.
package categories

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/cofina/leads/pkg/identity"
)

// NoOrigin marks a row that was created in-session and has no source index.
const NoOrigin = -1

var lastID atomic.Uint64

// NextID returns a process-unique row handle.
func NextID() uint64 {
	return lastID.Add(1)
}

// Row is one record. Origin is the row's index in its source table at load
// time and is the key under which persisted state is stored. ID is a
// process-local handle that stays fixed while the row moves.
type Row struct {
	ID     uint64   `json:"-" yaml:"-"`
	Origin int      `json:"origin" yaml:"origin"`
	Cells  []string `json:"cells" yaml:"cells"`
}

// NewRow returns a row with a fresh ID.
func NewRow(origin int, cells []string) Row {
	return Row{ID: NextID(), Origin: origin, Cells: cells}
}

// Clone returns a deep copy of the row, keeping its ID.
func (r Row) Clone() Row {
	return Row{ID: r.ID, Origin: r.Origin, Cells: slices.Clone(r.Cells)}
}

// Cell returns the value at col, or "" when out of range.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

// Column is one schema entry.
type Column struct {
	Name string        `json:"name" yaml:"name"`
	Role identity.Role `json:"role" yaml:"role"`
}

// Schema is the ordered column list of a category.
type Schema []Column

// NewSchema classifies each header and returns the resulting schema.
func NewSchema(headers ...string) Schema {
	s := make(Schema, len(headers))
	for i, h := range headers {
		s[i] = Column{Name: h, Role: identity.Classify(h)}
	}
	return s
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the column named name, or -1.
// Comparison ignores surrounding whitespace but not case.
func (s Schema) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range s {
		if strings.TrimSpace(c.Name) == name {
			return i
		}
	}
	return -1
}

// Indices returns every column position with the given role, in column order.
func (s Schema) Indices(role identity.Role) []int {
	var out []int
	for i, c := range s {
		if c.Role == role {
			out = append(out, i)
		}
	}
	return out
}

// First returns the first column position with the given role, or -1.
func (s Schema) First(role identity.Role) int {
	for i, c := range s {
		if c.Role == role {
			return i
		}
	}
	return -1
}

// Identities returns the identity column positions.
func (s Schema) Identities() []int {
	return s.Indices(identity.RoleIdentity)
}

// Category is a named collection of rows sharing one schema.
type Category struct {
	Name   string `json:"name" yaml:"name"`
	Roster bool   `json:"roster" yaml:"roster"`
	Schema Schema `json:"schema" yaml:"schema"`
	Rows   []Row  `json:"rows" yaml:"rows"`
}

// New returns an empty category with the given schema.
func New(name string, roster bool, schema Schema) *Category {
	return &Category{Name: name, Roster: roster, Schema: schema}
}

// Width returns the number of columns.
func (c *Category) Width() int {
	return len(c.Schema)
}

// Len returns the number of rows.
func (c *Category) Len() int {
	return len(c.Rows)
}

// InRange reports whether row is a valid row index.
func (c *Category) InRange(row int) bool {
	return row >= 0 && row < len(c.Rows)
}

// Cell returns the value at (row, col), or "" when out of range.
func (c *Category) Cell(row, col int) string {
	if !c.InRange(row) {
		return ""
	}
	return c.Rows[row].Cell(col)
}

// SetCell writes value at (row, col), extending a short row if needed.
// It reports false when the position is outside the schema or row range.
func (c *Category) SetCell(row, col int, value string) bool {
	if !c.InRange(row) || col < 0 || col >= c.Width() {
		return false
	}
	r := &c.Rows[row]
	if len(r.Cells) < c.Width() {
		r.Cells = append(r.Cells, make([]string, c.Width()-len(r.Cells))...)
	}
	r.Cells[col] = value
	return true
}

// BlankRow returns a new row of empty cells sized to the schema.
func (c *Category) BlankRow() Row {
	return NewRow(NoOrigin, make([]string, c.Width()))
}

// Fit pads or truncates cells to the schema width.
func (c *Category) Fit(cells []string) []string {
	out := make([]string, c.Width())
	copy(out, cells)
	return out
}

// IndexOf returns the position of the row with the given ID, or -1.
func (c *Category) IndexOf(id uint64) int {
	for i, r := range c.Rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// EnsureIDs assigns a fresh ID to every row that has none.
func (c *Category) EnsureIDs() {
	for i := range c.Rows {
		if c.Rows[i].ID == 0 {
			c.Rows[i].ID = NextID()
		}
	}
}

// DerivedColumn returns the derived-acceptance column, or -1.
func (c *Category) DerivedColumn() int {
	return c.Schema.First(identity.RoleDerivedAcceptance)
}

// AcceptanceColumn returns the user acceptance column, or -1.
func (c *Category) AcceptanceColumn() int {
	return c.Schema.First(identity.RoleAcceptance)
}

// Accepted reports whether the row's derived-acceptance flag is affirmative.
// Roster rows are accepted by membership.
func (c *Category) Accepted(row int) bool {
	if c.Roster {
		return c.InRange(row)
	}
	col := c.DerivedColumn()
	return col >= 0 && IsAffirmative(c.Cell(row, col))
}

// IdentityValues returns the non-empty raw identity values of a row in column order.
func (c *Category) IdentityValues(row int) []string {
	var out []string
	for _, col := range c.Schema.Identities() {
		if v := strings.TrimSpace(c.Cell(row, col)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// IdentityKey returns the first non-empty identity key of a row.
func (c *Category) IdentityKey(row int) string {
	return identity.Key(c.IdentityValues(row)...)
}

// Find returns the first row holding an identity value whose key equals key, or -1.
func (c *Category) Find(key string) int {
	if key == "" {
		return -1
	}
	ids := c.Schema.Identities()
	for i := range c.Rows {
		for _, col := range ids {
			if identity.Normalize(c.Cell(i, col)) == key {
				return i
			}
		}
	}
	return -1
}

// Clone returns a deep copy of the category.
func (c *Category) Clone() *Category {
	out := &Category{
		Name:   c.Name,
		Roster: c.Roster,
		Schema: slices.Clone(c.Schema),
		Rows:   make([]Row, len(c.Rows)),
	}
	for i, r := range c.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}
