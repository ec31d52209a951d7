package content

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"

	"github.com/lixenwraith/scape/resource"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

// ErrInvalidName is returned for names that escape the content root
var ErrInvalidName = errors.New("invalid content name")

// Format decodes one resource type from a file
type Format struct {
	// Ext is appended to names without an extension
	Ext    string
	Decode func(r io.Reader) (any, error)
}

// Loader resolves resource identities to files under a root directory
// The identity type selects the Format
type Loader struct {
	root    string
	formats map[reflect.Type]Format
	log     zerolog.Logger

	statLoads  *atomic.Int64
	statMisses *atomic.Int64
}

// NewLoader creates a loader with no formats registered
func NewLoader(root string, log zerolog.Logger, reg *status.Registry) *Loader {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Loader{
		root:       root,
		formats:    make(map[reflect.Type]Format),
		log:        log.With().Str("component", "content").Str("root", root).Logger(),
		statLoads:  reg.Ints.Get("content.loads"),
		statMisses: reg.Ints.Get("content.misses"),
	}
}

// NewDefaultLoader registers Text, Sound and Table formats
func NewDefaultLoader(root string, maxLineLength int, log zerolog.Logger, reg *status.Registry) *Loader {
	l := NewLoader(root, log, reg)
	Register(l, TextExt, func(r io.Reader) (Text, error) { return DecodeText(r, maxLineLength) })
	Register(l, SoundExt, DecodeSound)
	Register(l, TableExt, DecodeTable)
	return l
}

// Register binds a typed decoder to T
func Register[T any](l *Loader, ext string, decode func(io.Reader) (T, error)) {
	l.formats[reflect.TypeFor[T]()] = Format{
		Ext: ext,
		Decode: func(r io.Reader) (any, error) {
			return decode(r)
		},
	}
}

// Root returns the content directory
func (l *Loader) Root() string {
	return l.root
}

// Path resolves a content name to a file path
func (l *Loader) Path(name, ext string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(l.root, filepath.FromSlash(name))
	if filepath.Ext(path) == "" {
		path += ext
	}
	return path, nil
}

// Load implements resource.Loader
// Missing files, unknown types and invalid names report resource.ErrContentNotFound
func (l *Loader) Load(id resource.Identity) (any, error) {
	format, ok := l.formats[id.Type]
	if !ok {
		l.statMisses.Add(1)
		return nil, fmt.Errorf("%w: no format for %s", resource.ErrContentNotFound, id)
	}

	path, err := l.Path(id.Name, format.Ext)
	if err != nil {
		l.statMisses.Add(1)
		return nil, fmt.Errorf("%w: %w", resource.ErrContentNotFound, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.statMisses.Add(1)
			return nil, fmt.Errorf("%w: %s", resource.ErrContentNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := format.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	l.statLoads.Add(1)
	l.log.Debug().Str("path", path).Stringer("identity", id).Msg("content loaded")
	return v, nil
}
