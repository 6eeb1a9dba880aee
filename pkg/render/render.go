package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"gigslides/pkg/config"
	"gigslides/pkg/layout"
)

// Brand colours
var (
	Background  = color.RGBA{0x11, 0x18, 0x27, 0xff}
	PanelFill   = color.RGBA{0x09, 0x0c, 0x14, 0xff}
	BrandBlue   = color.RGBA{0x00, 0xb2, 0xe3, 0xff}
	BrandOrange = color.RGBA{0xff, 0x5c, 0x35, 0xff}
	TextWhite   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	TextMuted   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
)

// Renderer draws title and content slides
type Renderer struct {
	geom    config.LayoutConfig
	surface *layout.FontSurface
	// title slide faces
	heading font.Face
	sub     font.Face
	small   font.Face
}

// New creates a renderer for the slide geometry at cfg.RenderScale
func New(cfg config.LayoutConfig) (*Renderer, error) {
	if cfg.SlideWidth <= 0 || cfg.SlideHeight <= 0 {
		return nil, fmt.Errorf("invalid slide size %dx%d", cfg.SlideWidth, cfg.SlideHeight)
	}
	scale := cfg.RenderScale
	if scale <= 0 {
		scale = 1
	}
	surface, err := layout.NewFontSurface(layout.MetricsForWidth(cfg.SlideWidth), scale)
	if err != nil {
		return nil, err
	}

	r := &Renderer{geom: cfg, surface: surface}
	faces := []struct {
		dst  *font.Face
		ttf  []byte
		size float64
	}{
		{&r.heading, gobold.TTF, 48},
		{&r.sub, goregular.TTF, 32},
		{&r.small, goregular.TTF, 24},
	}
	for _, f := range faces {
		face, err := newFace(f.ttf, f.size*scale)
		if err != nil {
			r.Close()
			return nil, err
		}
		*f.dst = face
	}
	return r, nil
}

func newFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return face, nil
}

// Surface exposes the renderer's font surface
func (r *Renderer) Surface() *layout.FontSurface {
	return r.surface
}

// Bounds is the device-pixel size of a rendered slide
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.surface.Px(r.geom.SlideWidth), r.surface.Px(r.geom.SlideHeight))
}

// Close releases all font faces
func (r *Renderer) Close() error {
	for _, f := range []font.Face{r.heading, r.sub, r.small} {
		if f != nil {
			f.Close()
		}
	}
	return r.surface.Close()
}

func (r *Renderer) canvas() *image.RGBA {
	img := image.NewRGBA(r.Bounds())
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	return img
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, baseline int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func (r *Renderer) centred(dst draw.Image, face font.Face, c color.Color, baseline int, text string) {
	w := layout.Advance(face, text)
	drawText(dst, face, c, (dst.Bounds().Dx()-w)/2, baseline, text)
}

// TitleSlide draws the region title slide. Region titles containing "/"
// are stacked one name per line.
func (r *Renderer) TitleSlide(w io.Writer, regionTitle string, date time.Time) error {
	img := r.canvas()
	px := r.surface.Px

	y := px(320)
	for _, part := range strings.Split(regionTitle, "/") {
		r.centred(img, r.heading, TextWhite, y, strings.TrimSpace(part))
		y += px(56)
	}
	y += px(8)
	r.centred(img, r.sub, TextWhite, y, "Gig Guide")
	y += px(48)
	r.centred(img, r.small, BrandBlue, y, date.Format("Monday, January 2, 2006"))

	r.footer(img)
	return encode(w, img)
}

// ContentSlide draws one content slide; page is 0-based
func (r *Renderer) ContentSlide(w io.Writer, slide layout.Slide, page, total int, date time.Time) error {
	img := r.canvas()
	px := r.surface.Px
	side := px(layout.SidePadding)

	// header
	drawText(img, r.surface.Face(layout.FaceTitle), TextWhite, side, px(22), strings.ToUpper(date.Format("Monday")))
	drawText(img, r.surface.Face(layout.FaceBody), TextWhite, side, px(42), strings.ToUpper(date.Format("2 January")))
	pageLabel := fmt.Sprintf("%d / %d", page+1, total)
	timeFace := r.surface.Face(layout.FaceTime)
	drawText(img, timeFace, BrandBlue, img.Bounds().Dx()-side-layout.Advance(timeFace, pageLabel), px(30), pageLabel)

	y := px(r.geom.HeaderHeight + r.geom.VerticalPadding/2)
	for _, g := range slide.Gigs {
		pl := r.surface.Layout(layout.BuildPanel(g, r.geom.MaxGenreTags))
		r.panel(img, pl, side, y)
		y += pl.Height + px(layout.ItemMargin)
	}

	r.footer(img)
	return encode(w, img)
}

func (r *Renderer) panel(img *image.RGBA, pl layout.PanelLayout, x, y int) {
	rect := image.Rect(x, y, x+pl.Width, y+pl.Height).Intersect(img.Bounds())
	draw.Draw(img, rect, image.NewUniform(PanelFill), image.Point{}, draw.Src)

	for _, run := range pl.Runs {
		drawText(img, r.surface.Face(run.Face), runColor(run.Role), x+run.X, y+run.Baseline, run.Text)
	}
}

func runColor(role layout.Role) color.Color {
	switch role {
	case layout.RoleGenre, layout.RoleVenue:
		return BrandBlue
	case layout.RoleSuburb:
		return TextMuted
	case layout.RolePrice:
		return BrandOrange
	default:
		return TextWhite
	}
}

func (r *Renderer) footer(img *image.RGBA) {
	px := r.surface.Px
	baseline := px(r.geom.SlideHeight) - px(r.geom.FooterHeight)/4
	r.centred(img, r.surface.Face(layout.FaceTime), BrandBlue, baseline, "lml.live")
}

func encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
