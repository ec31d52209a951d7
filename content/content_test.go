package content

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/lixenwraith/scape/resource"
	"github.com/lixenwraith/scape/status"
	"github.com/rs/zerolog"
)

var testFormat = beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}

// ramp streams n samples with increasing amplitude
func ramp(n int) beep.Streamer {
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		c := 0
		for c < len(samples) && i < n {
			v := float64(i) / float64(n)
			samples[c] = [2]float64{v, -v}
			c++
			i++
		}
		return c, true
	})
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeWav(t *testing.T, dir, name string, samples int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.Encode(f, ramp(samples), testFormat); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
}

// loadAs loads name through l and asserts the result is a T
func loadAs[T any](t *testing.T, l resource.Loader, name string) T {
	t.Helper()
	v, err := l.Load(resource.IdentityOf[T](name))
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	typed, ok := v.(T)
	if !ok {
		t.Fatalf("load %s: got %T", name, v)
	}
	return typed
}

func TestProcessLines(t *testing.T) {
	lines := []string{
		"  first  ",
		"",
		"// comment",
		"   # also comment",
		"\t",
		strings.Repeat("x", 100),
		"héllo wörld",
	}

	got := ProcessLines(lines, 10)
	want := []string{"first", strings.Repeat("x", 10), "héllo wörl"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	untruncated := ProcessLines(lines, 0)
	if len(untruncated[1]) != 100 {
		t.Errorf("untruncated line length = %d", len(untruncated[1]))
	}
}

func TestDecodeText(t *testing.T) {
	text, err := DecodeText(strings.NewReader("a\n# skip\n\nb  \n"), DefaultMaxLineLength)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text.Len() != 2 {
		t.Errorf("len = %d, want 2", text.Len())
	}
	if text.Line(1) != "b" {
		t.Errorf("line 1 = %q", text.Line(1))
	}
	if text.Line(5) != "" {
		t.Errorf("out of range line = %q", text.Line(5))
	}
}

func TestDecodeTable(t *testing.T) {
	table, err := DecodeTable(strings.NewReader("title = \"scape\"\ncount = 3\n[window]\nwidth = 80\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if s, ok := table.String("title"); !ok || s != "scape" {
		t.Errorf("title = %q, %v", s, ok)
	}
	if n, ok := table.Int("count"); !ok || n != 3 {
		t.Errorf("count = %d, %v", n, ok)
	}

	w, ok := table.Sub("window")
	if !ok {
		t.Fatal("window table missing")
	}
	if width, _ := w.Int("width"); width != 80 {
		t.Errorf("width = %d, want 80", width)
	}

	if _, err := DecodeTable(strings.NewReader("= broken")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestSound_Clone(t *testing.T) {
	s := NewSound(testFormat, ramp(100))
	if s.Len() != 100 {
		t.Fatalf("len = %d, want 100", s.Len())
	}

	c := s.Clone()
	if c.Len() != s.Len() || c.Format() != s.Format() {
		t.Errorf("clone = %d samples %+v", c.Len(), c.Format())
	}
	if c.buf == s.buf {
		t.Error("clone shares the buffer")
	}

	copied := resource.DeepCopy(s)
	if copied.buf == s.buf {
		t.Error("deep copy shares the buffer")
	}
	if copied.Len() != 100 {
		t.Errorf("copied len = %d", copied.Len())
	}

	var empty Sound
	if empty.Clone().Len() != 0 {
		t.Error("empty clone should have no samples")
	}
	if empty.Streamer() != nil {
		t.Error("empty sound should have no streamer")
	}
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "banner.txt", "# header\nwelcome\n")
	writeFile(t, root, "levels/one.toml", "name = \"one\"\n")
	writeWav(t, root, "beep.wav", 400)

	reg := status.NewRegistry()
	l := NewDefaultLoader(root, DefaultMaxLineLength, zerolog.Nop(), reg)

	text := loadAs[Text](t, l, "banner")
	if !reflect.DeepEqual(text.Lines, []string{"welcome"}) {
		t.Errorf("banner = %q", text.Lines)
	}

	table := loadAs[Table](t, l, "levels/one")
	if name, _ := table.String("name"); name != "one" {
		t.Errorf("name = %q", name)
	}

	sound := loadAs[Sound](t, l, "beep.wav")
	if sound.Len() != 400 {
		t.Errorf("sound len = %d, want 400", sound.Len())
	}
	if sound.Format().SampleRate != testFormat.SampleRate {
		t.Errorf("sample rate = %v", sound.Format().SampleRate)
	}

	if n := reg.Ints.Get("content.loads").Load(); n != 3 {
		t.Errorf("content.loads = %d, want 3", n)
	}
}

func TestLoader_NotFound(t *testing.T) {
	root := t.TempDir()
	reg := status.NewRegistry()
	l := NewDefaultLoader(root, DefaultMaxLineLength, zerolog.Nop(), reg)

	if _, err := l.Load(resource.IdentityOf[Text]("missing")); !errors.Is(err, resource.ErrContentNotFound) {
		t.Errorf("missing file: expected ErrContentNotFound, got %v", err)
	}
	if _, err := l.Load(resource.IdentityOf[int]("anything")); !errors.Is(err, resource.ErrContentNotFound) {
		t.Errorf("unsupported type: expected ErrContentNotFound, got %v", err)
	}

	_, err := l.Load(resource.IdentityOf[Text]("../outside"))
	if !errors.Is(err, resource.ErrContentNotFound) || !errors.Is(err, ErrInvalidName) {
		t.Errorf("escaping name: expected ErrContentNotFound and ErrInvalidName, got %v", err)
	}

	if n := reg.Ints.Get("content.misses").Load(); n != 3 {
		t.Errorf("content.misses = %d, want 3", n)
	}
}

func TestLoader_DecodeErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.wav", "not a wav file")
	l := NewDefaultLoader(root, DefaultMaxLineLength, zerolog.Nop(), nil)

	_, err := l.Load(resource.IdentityOf[Sound]("bad"))
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if errors.Is(err, resource.ErrContentNotFound) {
		t.Errorf("decode error should not read as missing content: %v", err)
	}
}

func TestLoader_Discovery(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "banner.txt", "hello\n")

	tree := resource.NewTree()
	universe := universeFunc(func() map[resource.Consumer][]resource.Requirement {
		return map[resource.Consumer][]resource.Requirement{
			"scene": {
				resource.Require[Text]("banner", "credits"),
			},
		}
	})
	l := NewDefaultLoader(root, DefaultMaxLineLength, zerolog.Nop(), nil)

	report, err := resource.NewDiscovery(tree, universe, l, zerolog.Nop()).Run()
	if err != nil {
		t.Fatalf("discovery: %v", err)
	}
	if report.Loaded != 1 {
		t.Errorf("loaded = %d, want 1", report.Loaded)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Identity.Name != "credits" {
		t.Fatalf("skipped = %v, want credits", report.Skipped)
	}

	banner, err := resource.Get[Text](tree, "banner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(banner.Lines, []string{"hello"}) {
		t.Errorf("banner = %q", banner.Lines)
	}
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file1.txt", "x")
	writeFile(t, root, "sub/file2.txt", "x")
	writeFile(t, root, ".hidden.txt", "x")
	writeFile(t, root, ".git/config.txt", "x")
	writeFile(t, root, "notes.go", "x")

	names, err := DiscoverFiles(root, zerolog.Nop(), TextExt)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(names)
	if want := []string{"file1.txt", "sub/file2.txt"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	all, err := DiscoverFiles(root, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all = %v, want 3 files", all)
	}

	none, err := DiscoverFiles(filepath.Join(root, "absent"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("absent dir = %v", none)
	}
}

type universeFunc func() map[resource.Consumer][]resource.Requirement

func (f universeFunc) Consumers() []resource.Consumer {
	var out []resource.Consumer
	for c := range f() {
		out = append(out, c)
	}
	return out
}

func (f universeFunc) Requirements(c resource.Consumer) []resource.Requirement {
	return f()[c]
}
