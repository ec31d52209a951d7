package manifest

import (
	"reflect"
	"slices"

	"github.com/lixenwraith/scape/content"
)

// TypeTable maps manifest type names to resource types
type TypeTable struct {
	types map[string]reflect.Type
}

// NewTypeTable creates an empty table
func NewTypeTable() *TypeTable {
	return &TypeTable{types: make(map[string]reflect.Type)}
}

// Bind registers T under name, replacing any previous binding
func Bind[T any](tt *TypeTable, name string) {
	tt.types[name] = reflect.TypeFor[T]()
}

// Lookup returns the type bound to name
func (tt *TypeTable) Lookup(name string) (reflect.Type, bool) {
	t, ok := tt.types[name]
	return t, ok
}

// Names returns the bound names sorted
func (tt *TypeTable) Names() []string {
	names := make([]string, 0, len(tt.types))
	for name := range tt.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultTypes binds the content asset types
func DefaultTypes() *TypeTable {
	tt := NewTypeTable()
	Bind[content.Text](tt, "text")
	Bind[content.Sound](tt, "sound")
	Bind[content.Table](tt, "table")
	return tt
}
