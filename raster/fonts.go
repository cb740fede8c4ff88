package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	defaultFamily   = "go"
	monospaceFamily = "monospace"
)

// FontSpec selects a face. Family may be a CSS style list such as
// "Impact, sans-serif"; the first registered name wins.
type FontSpec struct {
	Family        string
	Size          float64
	Bold          bool
	Italic        bool
	LetterSpacing float64
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

// FontRegistry holds parsed fonts by family and style. Parsed fonts are safe
// to share; faces are created per canvas since they are not.
type FontRegistry struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

// NewFontRegistry registers the bundled Go fonts as the default family and as
// the monospace family.
func NewFontRegistry() (*FontRegistry, error) {
	r := &FontRegistry{fonts: make(map[fontKey]*opentype.Font)}
	bundled := []struct {
		key  fontKey
		data []byte
	}{
		{fontKey{defaultFamily, false, false}, goregular.TTF},
		{fontKey{defaultFamily, true, false}, gobold.TTF},
		{fontKey{defaultFamily, false, true}, goitalic.TTF},
		{fontKey{defaultFamily, true, true}, gobolditalic.TTF},
		{fontKey{monospaceFamily, false, false}, gomono.TTF},
		{fontKey{monospaceFamily, true, false}, gomonobold.TTF},
		{fontKey{monospaceFamily, false, true}, gomonoitalic.TTF},
		{fontKey{monospaceFamily, true, true}, gomonobolditalic.TTF},
	}
	for _, b := range bundled {
		f, err := opentype.Parse(b.data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bundled font %s: %w", b.key.family, err)
		}
		r.fonts[b.key] = f
	}
	r.alias("courier new", monospaceFamily)
	return r, nil
}

func (r *FontRegistry) alias(name, family string) {
	for _, bold := range []bool{false, true} {
		for _, italic := range []bool{false, true} {
			if f, ok := r.fonts[fontKey{family, bold, italic}]; ok {
				r.fonts[fontKey{name, bold, italic}] = f
			}
		}
	}
}

// Register adds a font under family with the given style.
func (r *FontRegistry) Register(family string, bold, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", family, err)
	}
	r.mu.Lock()
	r.fonts[fontKey{normalizeFamily(family), bold, italic}] = f
	r.mu.Unlock()
	return nil
}

// LoadDir registers every .ttf and .otf file in dir. The family is the file
// name up to an optional -Bold, -Italic or -BoldItalic suffix.
func (r *FontRegistry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read font directory: %w", err)
	}
	loaded := 0
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, fmt.Errorf("failed to read font %s: %w", entry.Name(), err)
		}
		family, bold, italic := styleFromName(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if err := r.Register(family, bold, italic, data); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func styleFromName(name string) (family string, bold, italic bool) {
	lower := strings.ToLower(name)
	for _, suffix := range []struct {
		text         string
		bold, italic bool
	}{
		{"-bolditalic", true, true},
		{"-bold", true, false},
		{"-italic", false, true},
		{"-regular", false, false},
	} {
		if strings.HasSuffix(lower, suffix.text) {
			return name[:len(name)-len(suffix.text)], suffix.bold, suffix.italic
		}
	}
	return name, false, false
}

func normalizeFamily(family string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}

// Face builds a new face for spec. Unknown families fall back to monospace
// for the monospace generic and to the default family otherwise.
func (r *FontRegistry) Face(spec FontSpec) (font.Face, error) {
	f := r.lookup(spec)
	if f == nil {
		return nil, fmt.Errorf("no font registered for %q", spec.Family)
	}
	size := spec.Size
	if size <= 0 {
		size = 16
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
}

func (r *FontRegistry) lookup(spec FontSpec) *opentype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []string{}
	for _, name := range strings.Split(spec.Family, ",") {
		if name = normalizeFamily(name); name != "" {
			candidates = append(candidates, name)
		}
	}
	candidates = append(candidates, defaultFamily)

	for _, family := range candidates {
		if family == monospaceFamily || family == "courier" {
			family = monospaceFamily
		}
		if f, ok := r.fonts[fontKey{family, spec.Bold, spec.Italic}]; ok {
			return f
		}
		if f, ok := r.fonts[fontKey{family, false, false}]; ok {
			return f
		}
	}
	return nil
}
