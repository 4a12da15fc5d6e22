package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/chart"
	"github.com/vanderheijden86/widgetboard/pkg/metrics"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

// SnapshotOptions controls a single card's chart image.
type SnapshotOptions struct {
	Path     string // Output path; format inferred from extension when Format empty
	Format   string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Category model.CategoryID
	Card     model.Card
}

// SaveCardSnapshot renders a card's chart to an SVG or PNG file.
func SaveCardSnapshot(opts SnapshotOptions) error {
	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("%w: %q (want svg or png)", ErrUnsupportedFormat, format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	defer metrics.Timer(metrics.SnapshotRender)()
	layout := buildLayout(opts.Category, chart.Derive(opts.Card))

	if format == "png" {
		return renderPNG(opts.Path, layout)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := renderSVGToWriter(f, layout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- layout ----------------------------------------------------------------

const (
	snapshotWidth = 640
	headerHeight  = 72.0
	padding       = 28.0
	pieRadius     = 120.0
	barRowHeight  = 30.0
	barLabelWidth = 150.0
)

type wedge struct {
	From, To float64 // radians, clockwise from 12 o'clock
	Color    color.Color
}

type barRow struct {
	Y, Len float64
	Color  color.Color
}

type legendRow struct {
	Label string
	Text  string
	Color color.Color
}

type layoutResult struct {
	Data     chart.Data
	Title    string
	Subtitle string
	Width    int
	Height   int

	// pie
	CX, CY float64
	Wedges []wedge

	// bar
	BarX, BarW float64
	Bars       []barRow

	Legend  []legendRow
	LegendX float64
	LegendY float64
}

func buildLayout(category model.CategoryID, d chart.Data) layoutResult {
	l := layoutResult{
		Data:     d,
		Title:    d.Title,
		Subtitle: fmt.Sprintf("%s · %s", category, d.Kind.Label()),
		Width:    snapshotWidth,
	}
	if strings.TrimSpace(l.Title) == "" {
		l.Title = "Untitled"
	}

	switch d.Kind {
	case model.ChartBar:
		l.BarX = padding + barLabelWidth
		l.BarW = float64(l.Width) - l.BarX - padding - 60
		top := headerHeight + padding
		for i, v := range d.Values {
			span := d.Axis.Max - d.Axis.Min
			frac := 0.0
			if span > 0 {
				frac = (d.ClampToAxis(v) - d.Axis.Min) / span
			}
			l.Bars = append(l.Bars, barRow{
				Y:     top + float64(i)*barRowHeight,
				Len:   frac * l.BarW,
				Color: parseColor(d.ColorAt(i)),
			})
			l.Legend = append(l.Legend, legendRow{Label: d.Labels[i], Text: strconv.FormatFloat(v, 'f', -1, 64)})
		}
		l.Height = int(top + float64(max(len(d.Values), 1))*barRowHeight + padding + 24)
	default:
		l.CX = padding + pieRadius
		l.CY = headerHeight + padding + pieRadius
		shares := d.Shares()
		start := 0.0
		for i, s := range shares {
			c := parseColor(d.ColorAt(i))
			if s > 0 {
				end := start + s*2*math.Pi
				l.Wedges = append(l.Wedges, wedge{From: start, To: end, Color: c})
				start = end
			}
			l.Legend = append(l.Legend, legendRow{
				Label: d.Labels[i],
				Text:  fmt.Sprintf("%s (%.0f%%)", strconv.FormatFloat(d.Values[i], 'f', -1, 64), s*100),
				Color: c,
			})
		}
		l.LegendX = l.CX + pieRadius + 40
		l.LegendY = headerHeight + padding + 10
		l.Height = int(l.CY + pieRadius + padding)
		if h := int(l.LegendY + float64(len(l.Legend))*22 + padding); h > l.Height {
			l.Height = h
		}
	}
	return l
}

// point returns the circle point at angle a, measured clockwise from the top.
func (l layoutResult) point(a float64) (float64, float64) {
	return l.CX + pieRadius*math.Sin(a), l.CY - pieRadius*math.Cos(a)
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorTrack    = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
)

func parseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(chart.FallbackColor)
	}
	return c
}

func renderPNG(path string, l layoutResult) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(l.Width)-24, headerHeight-16, 8)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 28, 34, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Subtitle, 28, 54, 0, 0.5)

	if l.Data.Len() == 0 {
		dc.DrawStringAnchored("(no data)", 28, headerHeight+padding, 0, 0.5)
		return dc.SavePNG(path)
	}

	if l.Data.Kind == model.ChartBar {
		drawBarsPNG(dc, l)
	} else {
		drawPiePNG(dc, l)
	}
	return dc.SavePNG(path)
}

func drawPiePNG(dc *gg.Context, l layoutResult) {
	if len(l.Wedges) == 0 {
		dc.SetColor(colorTrack)
		dc.DrawCircle(l.CX, l.CY, pieRadius)
		dc.Fill()
	}
	for _, w := range l.Wedges {
		dc.SetColor(w.Color)
		dc.MoveTo(l.CX, l.CY)
		// gg measures angles from 3 o'clock.
		dc.DrawArc(l.CX, l.CY, pieRadius, w.From-math.Pi/2, w.To-math.Pi/2)
		dc.ClosePath()
		dc.Fill()
	}
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawCircle(l.CX, l.CY, pieRadius)
	dc.Stroke()

	for i, row := range l.Legend {
		y := l.LegendY + float64(i)*22
		dc.SetColor(row.Color)
		dc.DrawRoundedRectangle(l.LegendX, y-7, 14, 14, 3)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(truncate(row.Label, 24)+"  "+row.Text, l.LegendX+22, y, 0, 0.5)
	}
}

func drawBarsPNG(dc *gg.Context, l layoutResult) {
	for i, b := range l.Bars {
		mid := b.Y + barRowHeight/2
		dc.SetColor(colorText)
		dc.DrawStringAnchored(truncate(l.Legend[i].Label, 20), padding, mid, 0, 0.5)
		dc.SetColor(colorTrack)
		dc.DrawRectangle(l.BarX, b.Y+6, l.BarW, barRowHeight-12)
		dc.Fill()
		dc.SetColor(b.Color)
		dc.DrawRectangle(l.BarX, b.Y+6, b.Len, barRowHeight-12)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(l.Legend[i].Text, l.BarX+l.BarW+8, mid, 0, 0.5)
	}
	axisY := l.Bars[len(l.Bars)-1].Y + barRowHeight + 12
	dc.SetColor(colorSubtle)
	for _, tick := range axisTicks(l.Data.Axis) {
		x := l.BarX + tick.frac*l.BarW
		dc.DrawStringAnchored(tick.label, x, axisY, 0.5, 0.5)
	}
}

func renderSVGToWriter(w io.Writer, l layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(12, 12, l.Width-24, int(headerHeight-16), 8, 8, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(28, 38, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(28, 58, l.Subtitle, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	switch {
	case l.Data.Len() == 0:
		canvas.Text(28, int(headerHeight+padding), "(no data)", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	case l.Data.Kind == model.ChartBar:
		drawBarsSVG(canvas, l)
	default:
		drawPieSVG(canvas, l)
	}

	canvas.End()
	return nil
}

func drawPieSVG(canvas *svg.SVG, l layoutResult) {
	cx, cy, r := int(l.CX), int(l.CY), int(pieRadius)
	switch {
	case len(l.Wedges) == 0:
		canvas.Circle(cx, cy, r, fmt.Sprintf("fill:%s", css(colorTrack)))
	case len(l.Wedges) == 1:
		canvas.Circle(cx, cy, r, fmt.Sprintf("fill:%s", css(l.Wedges[0].Color)))
	default:
		for _, w := range l.Wedges {
			x1, y1 := l.point(w.From)
			x2, y2 := l.point(w.To)
			large := 0
			if w.To-w.From > math.Pi {
				large = 1
			}
			d := fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%d,%d 0 %d 1 %.2f,%.2f Z",
				l.CX, l.CY, x1, y1, r, r, large, x2, y2)
			canvas.Path(d, fmt.Sprintf("fill:%s", css(w.Color)))
		}
	}
	canvas.Circle(cx, cy, r, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorStroke)))

	x := int(l.LegendX)
	for i, row := range l.Legend {
		y := int(l.LegendY) + i*22
		canvas.Roundrect(x, y-7, 14, 14, 3, 3, fmt.Sprintf("fill:%s", css(row.Color)))
		canvas.Text(x+22, y+5, truncate(row.Label, 24)+"  "+row.Text, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
	}
}

func drawBarsSVG(canvas *svg.SVG, l layoutResult) {
	barX, barW := int(l.BarX), int(l.BarW)
	for i, b := range l.Bars {
		y := int(b.Y)
		canvas.Text(int(padding), y+19, truncate(l.Legend[i].Label, 20), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
		canvas.Rect(barX, y+6, barW, int(barRowHeight-12), fmt.Sprintf("fill:%s", css(colorTrack)))
		if n := int(math.Round(b.Len)); n > 0 {
			canvas.Rect(barX, y+6, n, int(barRowHeight-12), fmt.Sprintf("fill:%s", css(b.Color)))
		}
		canvas.Text(barX+barW+8, y+19, l.Legend[i].Text, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}
	axisY := int(l.Bars[len(l.Bars)-1].Y+barRowHeight) + 16
	for _, tick := range axisTicks(l.Data.Axis) {
		x := barX + int(tick.frac*float64(barW))
		canvas.Text(x, axisY, tick.label, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorSubtle)))
	}
}

type tick struct {
	frac  float64
	label string
}

func axisTicks(axis *chart.Axis) []tick {
	if axis == nil || axis.Max <= axis.Min {
		return nil
	}
	const steps = 4
	ticks := make([]tick, 0, steps+1)
	for i := 0; i <= steps; i++ {
		frac := float64(i) / steps
		v := axis.Min + frac*(axis.Max-axis.Min)
		ticks = append(ticks, tick{frac: frac, label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ticks
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
