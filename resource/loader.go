package resource

// Loader resolves an identity into a freshly loaded value
// Missing content is reported with ErrContentNotFound (or a nil value); any other
// error is treated as fatal for the discovery pass
type Loader interface {
	Load(id Identity) (any, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(id Identity) (any, error)

func (f LoaderFunc) Load(id Identity) (any, error) {
	return f(id)
}
