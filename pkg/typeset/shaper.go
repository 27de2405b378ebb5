package typeset

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/harfbuzz"
	meta "github.com/go-text/typesetting/opentype/api/metadata"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Options configures a Shaper.
type Options struct {
	// CacheDir stores the font index built by the first system scan.
	// Empty selects the platform default.
	CacheDir string

	// Fonts lists extra font files (.ttf, .otf, .ttc) added on top of
	// the system fonts. They win over system fonts for equal matches.
	Fonts []string

	// Bold and Italic select the face aspect within a family.
	Bold   bool
	Italic bool

	// Logger records non-fatal problems found while scanning fonts.
	Logger *log.Logger
}

// Shaper resolves font faces and shapes text with them. It is safe
// for concurrent use.
type Shaper struct {
	mu     sync.Mutex
	fm     *fontscan.FontMap
	aspect meta.Aspect
}

// NewShaper scans the system fonts (cached across runs) and prepares
// a shaper. This is the expensive constructor; reuse the result.
func NewShaper(opts Options) (*Shaper, error) {
	var logger fontscan.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	fm := fontscan.NewFontMap(logger)
	if err := fm.UseSystemFonts(opts.CacheDir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "loading system fonts")
	}

	for _, path := range opts.Fonts {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening font file %s", path)
		}
		err = fm.AddFont(f, path, "")
		f.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "loading font file %s", path)
		}
	}

	aspect := meta.Aspect{}
	if opts.Bold {
		aspect.Weight = meta.WeightBold
	}
	if opts.Italic {
		aspect.Style = meta.StyleItalic
	}
	aspect.SetDefaults()

	return &Shaper{fm: fm, aspect: aspect}, nil
}

// Face is a resolved font face: the file that backs it plus the
// family fontscan matched it under.
type Face struct {
	// Family is the normalized family name of the matched face, which
	// may differ from the requested pattern (e.g. "sans-serif").
	Family string
	// File is the path of the backing font file.
	File string
	// Index is the face index inside a collection file, 0 otherwise.
	Index int

	font *harfbuzz.Font
	upem float64
}

// Upem returns the face's units per em, the unit all run metrics are
// expressed in.
func (f *Face) Upem() float64 { return f.upem }

// Face resolves a family pattern to a concrete face, applying the
// shaper's aspect (bold, italic). Generic families like "sans-serif"
// and "monospace" follow the usual substitution rules.
func (s *Shaper) Face(family string) (*Face, error) {
	if err := errors.ValidateFontFamily(family); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fm.SetQuery(fontscan.Query{Families: []string{family}, Aspect: s.aspect})
	face := s.fm.ResolveFace(' ')
	if face == nil {
		return nil, errors.New(errors.ErrCodeFontNotFound,
			"no font found for family %q (try: fc-match %s file family)", family, family)
	}

	matched, _ := s.fm.FontMetadata(face.Font)
	location := s.fm.FontLocation(face.Font)

	return &Face{
		Family: matched,
		File:   location.File,
		Index:  int(location.Index),
		font:   harfbuzz.NewFont(face),
		upem:   float64(face.Upem()),
	}, nil
}

// Glyph is one shaped glyph in font units. Advances and offsets come
// from positioning, the bearing and ink box from the glyph outline.
// The y axis points up and ink Height is negative, as HarfBuzz
// reports it.
type Glyph struct {
	GID     uint32
	Cluster int

	XAdvance float64
	YAdvance float64
	XOffset  float64
	YOffset  float64

	XBearing float64
	YBearing float64
	Width    float64
	Height   float64
}

// Run is a shaped string: its glyphs in visual order plus the face
// that produced them.
type Run struct {
	Text   string
	Face   *Face
	Glyphs []Glyph
}

// Shape shapes text with the given face. Script, language, and
// direction are guessed from the text itself. The whole string is
// shaped with the one face; runes the face does not cover come back
// as glyph 0 (see [Run.Missing]).
func (s *Shaper) Shape(face *Face, text string) (*Run, error) {
	if face == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "shape needs a resolved face")
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot shape empty text")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := harfbuzz.NewBuffer()
	buf.AddRunes(runes, 0, len(runes))
	buf.GuessSegmentProperties()
	buf.Shape(face.font, nil)

	glyphs := make([]Glyph, 0, len(buf.Info))
	for i, info := range buf.Info {
		pos := buf.Pos[i]
		g := Glyph{
			GID:      uint32(info.Glyph),
			Cluster:  info.Cluster,
			XAdvance: float64(pos.XAdvance),
			YAdvance: float64(pos.YAdvance),
			XOffset:  float64(pos.XOffset),
			YOffset:  float64(pos.YOffset),
		}
		if ext, ok := face.font.GlyphExtents(info.Glyph); ok {
			g.XBearing = float64(ext.XBearing)
			g.YBearing = float64(ext.YBearing)
			g.Width = float64(ext.Width)
			g.Height = float64(ext.Height)
		}
		glyphs = append(glyphs, g)
	}

	return &Run{Text: text, Face: face, Glyphs: glyphs}, nil
}

// Missing returns the runes that shaped to the face's missing-glyph
// placeholder, in text order. A non-empty result means the rendered
// output would show tofu boxes.
func (r *Run) Missing() []rune {
	runes := []rune(r.Text)
	var missing []rune
	for _, g := range r.Glyphs {
		if g.GID != 0 {
			continue
		}
		if g.Cluster >= 0 && g.Cluster < len(runes) {
			missing = append(missing, runes[g.Cluster])
		}
	}
	return missing
}
