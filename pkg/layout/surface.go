package layout

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Surface lays a panel out at the slide's fixed content width.
// Implementations are not required to be safe for concurrent use.
type Surface interface {
	Layout(p Panel) PanelLayout
}

// FaceKind names the typefaces used inside a panel
type FaceKind int

const (
	FaceTitle FaceKind = iota
	FaceGenre
	FaceBody
	FaceTime
	numFaces
)

// Role says which panel field a run shows; renderers colour by role
type Role int

const (
	RoleTitle Role = iota
	RoleGenre
	RoleVenue
	RoleSuburb
	RoleTime
	RolePrice
)

// TextRun is one line of text placed inside a panel, in device pixels
// relative to the panel's top-left corner.
type TextRun struct {
	Text     string
	Face     FaceKind
	Role     Role
	X        int
	Baseline int
}

// PanelLayout is the measured geometry of one panel
type PanelLayout struct {
	Width  int
	Height int
	Scale  float64
	Runs   []TextRun
}

// CSSHeight converts the device-pixel height back to slide pixels
func (l PanelLayout) CSSHeight() int {
	if l.Scale <= 0 {
		return l.Height
	}
	return int(math.Ceil(float64(l.Height) / l.Scale))
}

// Metrics are the panel's typographic constants in slide pixels
type Metrics struct {
	ContentWidth int
	PanelPadding int
	ColumnGap    int
	GenreGap     int

	TitleSize float64
	GenreSize float64
	BodySize  float64
	TimeSize  float64

	TitleLineHeight int
	BodyLineHeight  int
	TimeLineHeight  int
}

// SidePadding is the gap between the slide edge and its panels
const SidePadding = 12

// DefaultMetrics matches a 540px slide
func DefaultMetrics() Metrics {
	return MetricsForWidth(540)
}

// MetricsForWidth returns the default typography for a slide of the given width
func MetricsForWidth(slideWidth int) Metrics {
	return Metrics{
		ContentWidth:    slideWidth - 2*SidePadding,
		PanelPadding:    6,
		ColumnGap:       8,
		GenreGap:        20,
		TitleSize:       18,
		GenreSize:       14,
		BodySize:        14,
		TimeSize:        16,
		TitleLineHeight: 22,
		BodyLineHeight:  18,
		TimeLineHeight:  20,
	}
}

// FontSurface lays panels out with Go font metrics. Its faces cache glyphs
// and must not be shared between goroutines; create one surface per worker.
type FontSurface struct {
	metrics Metrics
	scale   float64
	faces   [numFaces]font.Face
}

// NewFontSurface parses the embedded Go fonts at the given scale (1 for measuring, 2 for retina PNGs)
func NewFontSurface(m Metrics, scale float64) (*FontSurface, error) {
	if scale <= 0 {
		scale = 1
	}
	if m.ContentWidth <= 0 {
		return nil, fmt.Errorf("content width must be positive, got %d", m.ContentWidth)
	}

	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	s := &FontSurface{metrics: m, scale: scale}
	specs := [numFaces]struct {
		f    *opentype.Font
		size float64
	}{
		FaceTitle: {bold, m.TitleSize},
		FaceGenre: {regular, m.GenreSize},
		FaceBody:  {regular, m.BodySize},
		FaceTime:  {bold, m.TimeSize},
	}
	for kind, spec := range specs {
		face, err := opentype.NewFace(spec.f, &opentype.FaceOptions{
			Size:    spec.size * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create face %d: %w", kind, err)
		}
		s.faces[kind] = face
	}
	return s, nil
}

// Face returns the font face for a run kind
func (s *FontSurface) Face(kind FaceKind) font.Face {
	return s.faces[kind]
}

// Scale returns the device pixel ratio
func (s *FontSurface) Scale() float64 {
	return s.scale
}

// Metrics returns the slide-pixel metrics the surface was built with
func (s *FontSurface) Metrics() Metrics {
	return s.metrics
}

// Px converts slide pixels to device pixels
func (s *FontSurface) Px(v int) int {
	return int(math.Round(float64(v) * s.scale))
}

// Close releases the font faces
func (s *FontSurface) Close() error {
	for i, f := range s.faces {
		if f != nil {
			f.Close()
			s.faces[i] = nil
		}
	}
	return nil
}

// Layout implements Surface
func (s *FontSurface) Layout(p Panel) PanelLayout {
	m := s.metrics
	pad := s.Px(m.PanelPadding)
	width := s.Px(m.ContentWidth)
	inner := width - 2*pad

	timeW := Advance(s.faces[FaceTime], p.StartTime)
	priceW := Advance(s.faces[FaceBody], p.Price)
	rightW := max(timeW, priceW)
	if rightW > 0 {
		rightW += s.Px(m.ColumnGap)
	}
	leftW := inner - rightW
	if leftW <= 0 {
		leftW = inner
	}

	var runs []TextRun
	titleLH := s.Px(m.TitleLineHeight)
	bodyLH := s.Px(m.BodyLineHeight)
	timeLH := s.Px(m.TimeLineHeight)

	y := pad
	title := WrapText(s.faces[FaceTitle], p.Title, leftW)
	for _, line := range title {
		runs = append(runs, TextRun{Text: line, Face: FaceTitle, Role: RoleTitle, X: pad, Baseline: baseline(s.faces[FaceTitle], y, titleLH)})
		y += titleLH
	}

	if p.Genre != "" && len(title) == 1 {
		titleW := Advance(s.faces[FaceTitle], title[0])
		gap := s.Px(m.GenreGap)
		if room := leftW - titleW - gap; room > 0 {
			genre := Truncate(s.faces[FaceGenre], p.Genre, room)
			if Advance(s.faces[FaceGenre], genre) <= room {
				runs = append(runs, TextRun{Text: genre, Face: FaceGenre, Role: RoleGenre, X: pad + titleW + gap/2, Baseline: baseline(s.faces[FaceTitle], pad, titleLH)})
			}
		}
	}

	for _, field := range []struct {
		text string
		role Role
	}{{p.Venue, RoleVenue}, {p.Suburb, RoleSuburb}} {
		if field.text == "" {
			continue
		}
		runs = append(runs, TextRun{Text: Truncate(s.faces[FaceBody], field.text, leftW), Face: FaceBody, Role: field.role, X: pad, Baseline: baseline(s.faces[FaceBody], y, bodyLH)})
		y += bodyLH
	}
	leftH := y - pad

	ry := pad
	if p.StartTime != "" {
		runs = append(runs, TextRun{Text: p.StartTime, Face: FaceTime, Role: RoleTime, X: pad + inner - timeW, Baseline: baseline(s.faces[FaceTime], ry, timeLH)})
		ry += timeLH
	}
	if p.Price != "" {
		runs = append(runs, TextRun{Text: p.Price, Face: FaceBody, Role: RolePrice, X: pad + inner - priceW, Baseline: baseline(s.faces[FaceBody], ry, bodyLH)})
		ry += bodyLH
	}
	rightH := ry - pad

	return PanelLayout{
		Width:  width,
		Height: max(leftH, rightH) + 2*pad,
		Scale:  s.scale,
		Runs:   runs,
	}
}

// baseline centres a face's ascent+descent inside a line box starting at top
func baseline(face font.Face, top, lineHeight int) int {
	fm := face.Metrics()
	ascent, descent := fm.Ascent.Ceil(), fm.Descent.Ceil()
	return top + ascent + (lineHeight-(ascent+descent))/2
}

// Advance returns the rendered width of s in pixels
func Advance(face font.Face, s string) int {
	if s == "" {
		return 0
	}
	return font.MeasureString(face, s).Ceil()
}

// WrapText breaks text into lines no wider than maxWidth, splitting on spaces
// and breaking words that are wider than a line on their own. It always
// returns at least one line.
func WrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if Advance(face, candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		if Advance(face, w) <= maxWidth {
			line = w
			continue
		}
		pieces := breakWord(face, w, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	return append(lines, line)
}

func breakWord(face font.Face, word string, maxWidth int) []string {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && Advance(face, string(next)) > maxWidth {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(pieces, string(cur))
}

// Truncate shortens text with an ellipsis until it fits maxWidth
func Truncate(face font.Face, text string, maxWidth int) string {
	if Advance(face, text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + "…"
		if Advance(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return "…"
}
