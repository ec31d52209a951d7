package resource

import (
	"reflect"
	"sort"
)

// Consumer names a consumer type that declares resource requirements
type Consumer string

// Identity is the (name, target type) key of a loadable resource
// Two requests for the same name with different types are distinct entries
type Identity struct {
	Name string
	Type reflect.Type
}

// IdentityOf builds the identity of name loaded as T
func IdentityOf[T any](name string) Identity {
	return Identity{Name: name, Type: reflect.TypeFor[T]()}
}

func (id Identity) String() string {
	if id.Type == nil {
		return id.Name + " <nil>"
	}
	return id.Name + " <" + id.Type.String() + ">"
}

// sortIdentities orders identities by name, then by type string
func sortIdentities(ids []Identity) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].String() < ids[j].String()
	})
}
