package content

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

const TableExt = ".toml"

// Table is a decoded TOML document
type Table map[string]any

// DecodeTable parses a TOML document
func DecodeTable(r io.Reader) (Table, error) {
	t := make(Table)
	if err := toml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return t, nil
}

// String returns the string at key
func (t Table) String(key string) (string, bool) {
	s, ok := t[key].(string)
	return s, ok
}

// Int returns the integer at key
func (t Table) Int(key string) (int64, bool) {
	i, ok := t[key].(int64)
	return i, ok
}

// Sub returns the nested table at key
func (t Table) Sub(key string) (Table, bool) {
	m, ok := t[key].(map[string]any)
	return Table(m), ok
}
