package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidIdentifier 标识符不合法
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrDuplicateColumn 表内列名重复
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrEmptyTableRef 表引用为空
	ErrEmptyTableRef = errors.New("empty table reference")
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// DefaultSchema 未指定 schema 时使用
const DefaultSchema = "public"

// NormalizeIdentifier 标识符统一小写并校验
func NormalizeIdentifier(s string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	if !identifierPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return id, nil
}

// TableRef 表引用（schema.table）
type TableRef struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// ParseTableRef 解析 "schema.table" 或 "table"
func ParseTableRef(s string) (TableRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TableRef{}, ErrEmptyTableRef
	}
	schema, table := DefaultSchema, s
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		schema, table = s[:idx], s[idx+1:]
	}
	if schema == "" || table == "" {
		return TableRef{}, fmt.Errorf("%w: %q", ErrEmptyTableRef, s)
	}
	var err error
	if schema, err = NormalizeIdentifier(schema); err != nil {
		return TableRef{}, err
	}
	if table, err = NormalizeIdentifier(table); err != nil {
		return TableRef{}, err
	}
	return TableRef{Schema: schema, Table: table}, nil
}

// MustParseTableRef 解析失败时 panic（测试与字面量使用）
func MustParseTableRef(s string) TableRef {
	ref, err := ParseTableRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// IsZero 是否为空引用
func (r TableRef) IsZero() bool {
	return r.Schema == "" || r.Table == ""
}

// String 返回 schema.table
func (r TableRef) String() string {
	return r.Schema + "." + r.Table
}

// Field 表中的一列
type Field struct {
	Name   string
	Column Column
}

// ColumnField 列的模式描述
type ColumnField struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// NewField 创建 Field
func NewField(name string, column Column) Field {
	return Field{Name: name, Column: column}
}

// Table 有序的命名列集合，所有列行数相同
type Table struct {
	fields []Field
	index  map[string]int
	length int
}

// NewTable 创建表，校验列名与长度（行数取第一列的长度）
func NewTable(fields ...Field) (*Table, error) {
	rows := 0
	if len(fields) > 0 {
		rows = fields[0].Column.Len()
	}
	return NewTableWithRows(rows, fields...)
}

// NewTableWithRows 创建指定行数的表，没有列时也保留行数
func NewTableWithRows(rows int, fields ...Field) (*Table, error) {
	t := &Table{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		length: rows,
	}
	for _, f := range fields {
		name, err := NormalizeIdentifier(f.Name)
		if err != nil {
			return nil, err
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		if err := f.Column.Validate(); err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if f.Column.Len() != t.length {
			return nil, fmt.Errorf("%w: column=%s len=%d want=%d", ErrColumnLengthMismatch, name, f.Column.Len(), t.length)
		}
		t.index[name] = len(t.fields)
		t.fields = append(t.fields, Field{Name: name, Column: f.Column})
	}
	return t, nil
}

// MustNewTable 创建失败时 panic
func MustNewTable(fields ...Field) *Table {
	t, err := NewTable(fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len 行数
func (t *Table) Len() int {
	return t.length
}

// NumColumns 列数
func (t *Table) NumColumns() int {
	return len(t.fields)
}

// Fields 返回列的副本切片
func (t *Table) Fields() []Field {
	return append([]Field{}, t.fields...)
}

// Column 按名称取列
func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.index[strings.ToLower(name)]
	if !ok {
		return Column{}, false
	}
	return t.fields[idx].Column, true
}

// Names 列名（按定义顺序）
func (t *Table) Names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// Schema 列模式
func (t *Table) Schema() []ColumnField {
	out := make([]ColumnField, len(t.fields))
	for i, f := range t.fields {
		out[i] = ColumnField{Name: f.Name, Type: f.Column.Type}
	}
	return out
}

// Equal 列名、顺序、类型与取值完全相同
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.length != o.length || len(t.fields) != len(o.fields) {
		return false
	}
	for i := range t.fields {
		if t.fields[i].Name != o.fields[i].Name || !t.fields[i].Column.Equal(o.fields[i].Column) {
			return false
		}
	}
	return true
}

// Row 第 i 行的文本表示
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.fields))
	for k, f := range t.fields {
		row[k] = f.Column.Format(i)
	}
	return row
}
