package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type FieldType string

const (
	TypeString    FieldType = "string"
	TypeText      FieldType = "text"
	TypeReference FieldType = "reference"
)

// Field is a named, typed column of an entity. Column defaults to the
// snake_case form of Name.
type Field struct {
	Name       string
	Column     string
	Type       FieldType
	Required   bool
	Unique     bool
	Hidden     bool
	References string
}

type Entity struct {
	Name   string
	Table  string
	Fields []Field
}

// Join is a many-to-many association table holding (LeftKey, RightKey) pairs.
type Join struct {
	Name        string
	Table       string
	Left        string
	LeftKey     string
	LeftColumn  string
	Right       string
	RightKey    string
	RightColumn string
}

// Schema owns entity and join definitions. It is built once at startup and
// only read afterwards.
type Schema struct {
	entities  map[string]*Entity
	joins     map[string]*Join
	order     []string
	joinOrder []string
}

func NewSchema() *Schema {
	return &Schema{
		entities: make(map[string]*Entity),
		joins:    make(map[string]*Join),
	}
}

func (s *Schema) Define(name string, fields ...Field) (*Entity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: entity name is required", ErrSchema)
	}
	if _, ok := s.entities[name]; ok {
		return nil, fmt.Errorf("%w: entity %q already defined", ErrSchema, name)
	}
	if _, ok := s.joins[name]; ok {
		return nil, fmt.Errorf("%w: %q already defined as a join", ErrSchema, name)
	}

	e := &Entity{Name: name, Table: ColumnName(name)}
	seen := map[string]bool{FieldID: true, FieldCreatedAt: true, FieldUpdatedAt: true}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s: field name is required", ErrSchema, name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", ErrSchema, name, f.Name)
		}
		seen[f.Name] = true
		if f.Type == "" {
			f.Type = TypeString
		}
		if f.Column == "" {
			f.Column = ColumnName(f.Name)
		}
		if f.Type == TypeReference {
			if f.References == "" {
				return nil, fmt.Errorf("%w: %s.%s: reference target is required", ErrSchema, name, f.Name)
			}
			if _, ok := s.entities[f.References]; !ok && f.References != name {
				return nil, fmt.Errorf("%w: %s.%s references unknown entity %q", ErrSchema, name, f.Name, f.References)
			}
		}
		e.Fields = append(e.Fields, f)
	}

	s.entities[name] = e
	s.order = append(s.order, name)
	return e, nil
}

func (s *Schema) DefineJoin(name, left, leftKey, right, rightKey string) (*Join, error) {
	if _, ok := s.entities[name]; ok {
		return nil, fmt.Errorf("%w: %q already defined as an entity", ErrSchema, name)
	}
	if _, ok := s.joins[name]; ok {
		return nil, fmt.Errorf("%w: join %q already defined", ErrSchema, name)
	}
	if _, ok := s.entities[left]; !ok {
		return nil, fmt.Errorf("%w: join %s: unknown entity %q", ErrSchema, name, left)
	}
	if _, ok := s.entities[right]; !ok {
		return nil, fmt.Errorf("%w: join %s: unknown entity %q", ErrSchema, name, right)
	}
	if leftKey == rightKey {
		return nil, fmt.Errorf("%w: join %s: keys must differ", ErrSchema, name)
	}

	j := &Join{
		Name:        name,
		Table:       ColumnName(name),
		Left:        left,
		LeftKey:     leftKey,
		LeftColumn:  ColumnName(leftKey),
		Right:       right,
		RightKey:    rightKey,
		RightColumn: ColumnName(rightKey),
	}
	s.joins[name] = j
	s.joinOrder = append(s.joinOrder, name)
	return j, nil
}

func (s *Schema) Entity(name string) (*Entity, error) {
	e, ok := s.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %q", ErrNotFound, name)
	}
	return e, nil
}

func (s *Schema) Join(name string) (*Join, error) {
	j, ok := s.joins[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown join %q", ErrNotFound, name)
	}
	return j, nil
}

// Entities returns definitions in the order they were defined, so referenced
// entities always come before the entities referencing them.
func (s *Schema) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entities[name])
	}
	return out
}

func (s *Schema) Joins() []*Join {
	out := make([]*Join, 0, len(s.joinOrder))
	for _, name := range s.joinOrder {
		out = append(out, s.joins[name])
	}
	return out
}

func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Prepare builds the row to insert: unknown keys are dropped, id and
// timestamps are generated.
func (e *Entity) Prepare(data Record, now time.Time) (Record, error) {
	row, err := e.Assign(Record{}, data)
	if err != nil {
		return nil, err
	}
	row[FieldID] = uuid.New().String()
	row[FieldCreatedAt] = now
	row[FieldUpdatedAt] = now
	return row, nil
}

// Assign copies the declared fields of data onto base and returns the result.
// Fields absent from data keep their value in base.
func (e *Entity) Assign(base, data Record) (Record, error) {
	out := base.Clone()
	if out == nil {
		out = Record{}
	}
	for _, f := range e.Fields {
		v, ok := data[f.Name]
		if !ok {
			continue
		}
		if v != nil {
			if _, isString := v.(string); !isString {
				return nil, fmt.Errorf("%w: field %s must be a string", ErrValidation, f.Name)
			}
		}
		out[f.Name] = v
	}
	return out, nil
}

// Columns maps a filter onto column names, ignoring unknown and hidden fields.
func (e *Entity) Columns(filter Filter) map[string]string {
	out := make(map[string]string, len(filter))
	for k, v := range filter {
		if k == FieldID {
			out["id"] = v
			continue
		}
		if f, ok := e.Field(k); ok && !f.Hidden {
			out[f.Column] = v
		}
	}
	return out
}

// Matches reports whether rec satisfies every filterable key of filter.
func (e *Entity) Matches(rec Record, filter Filter) bool {
	for k, v := range filter {
		if !e.filterable(k) {
			continue
		}
		if rec.String(k) != v {
			return false
		}
	}
	return true
}

func (e *Entity) filterable(name string) bool {
	if name == FieldID {
		return true
	}
	f, ok := e.Field(name)
	return ok && !f.Hidden
}

// ColumnName converts a camelCase name to snake_case.
func ColumnName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ColumnList returns every column of the table in a stable order.
func (e *Entity) ColumnList() []string {
	cols := make([]string, 0, len(e.Fields)+3)
	cols = append(cols, "id")
	for _, f := range e.Fields {
		cols = append(cols, f.Column)
	}
	return append(cols, "created_at", "updated_at")
}

// ToRow maps a record onto column names, keeping only declared columns.
func (e *Entity) ToRow(rec Record) map[string]any {
	row := make(map[string]any, len(e.Fields)+3)
	if v, ok := rec[FieldID]; ok {
		row["id"] = v
	}
	for _, f := range e.Fields {
		if v, ok := rec[f.Name]; ok {
			row[f.Column] = v
		}
	}
	if v, ok := rec[FieldCreatedAt]; ok {
		row["created_at"] = v
	}
	if v, ok := rec[FieldUpdatedAt]; ok {
		row["updated_at"] = v
	}
	return row
}

// FromRow maps a column-keyed row back onto field names.
func (e *Entity) FromRow(row map[string]any) Record {
	rec := make(Record, len(row))
	for col, v := range row {
		switch col {
		case "id":
			rec[FieldID] = v
		case "created_at":
			rec[FieldCreatedAt] = v
		case "updated_at":
			rec[FieldUpdatedAt] = v
		default:
			for _, f := range e.Fields {
				if f.Column == col {
					rec[f.Name] = v
					break
				}
			}
		}
	}
	return rec
}

type JoinSide int

const (
	LeftSide JoinSide = iota
	RightSide
)

// Public returns a copy of rec without hidden fields.
func (e *Entity) Public(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := rec.Clone()
	for _, f := range e.Fields {
		if f.Hidden {
			delete(out, f.Name)
		}
	}
	return out
}
