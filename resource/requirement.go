package resource

import "reflect"

// Requirement declares that a consumer needs every name in Names loaded as Type
type Requirement struct {
	Names []string
	Type  reflect.Type
}

// Require builds a requirement for names loaded as T
func Require[T any](names ...string) Requirement {
	return Requirement{
		Names: names,
		Type:  reflect.TypeFor[T](),
	}
}

// Universe enumerates the known consumer types and their declared requirements
type Universe interface {
	Consumers() []Consumer
	Requirements(c Consumer) []Requirement
}
