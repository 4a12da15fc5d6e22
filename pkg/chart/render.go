package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/metrics"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	blockFull  = "█"
	blockEmpty = "░"
	legendMark = "■"
)

// Options controls terminal rendering.
type Options struct {
	Width    int                // total width in cells; minimum 12
	Renderer *lipgloss.Renderer // nil uses the default renderer
	Muted    lipgloss.TerminalColor
}

func (o Options) renderer() *lipgloss.Renderer {
	if o.Renderer != nil {
		return o.Renderer
	}
	return lipgloss.DefaultRenderer()
}

func (o Options) width() int {
	if o.Width < 12 {
		return 12
	}
	return o.Width
}

// Render draws d for the terminal, dispatching on its kind.
func Render(d Data, opts Options) string {
	defer metrics.Timer(metrics.ChartRender)()

	if d.Len() == 0 {
		return placeholder(opts)
	}
	switch d.Kind {
	case model.ChartPie:
		return renderPie(d, opts)
	case model.ChartBar:
		return renderBar(d, opts)
	default:
		return ""
	}
}

func placeholder(opts Options) string {
	style := opts.renderer().NewStyle().Italic(true)
	if opts.Muted != nil {
		style = style.Foreground(opts.Muted)
	}
	return style.Render("(no data)")
}

// renderPie draws the pie as a proportional strip followed by a legend.
func renderPie(d Data, opts Options) string {
	r := opts.renderer()
	width := opts.width()
	shares := d.Shares()

	cells := allocate(shares, width)
	var strip strings.Builder
	drawn := 0
	for i, n := range cells {
		if n == 0 {
			continue
		}
		strip.WriteString(r.NewStyle().Foreground(lipgloss.Color(d.ColorAt(i))).Render(strings.Repeat(blockFull, n)))
		drawn += n
	}
	if drawn == 0 {
		return placeholder(opts)
	}

	labelW := labelWidth(d.Labels, width/2)
	lines := []string{strip.String()}
	for i, label := range d.Labels {
		mark := r.NewStyle().Foreground(lipgloss.Color(d.ColorAt(i))).Render(legendMark)
		lines = append(lines, fmt.Sprintf("%s %s %s (%s%%)",
			mark,
			fit(label, labelW),
			formatValue(d.Values[i]),
			formatValue(roundTo(shares[i]*100, 1)),
		))
	}
	return strings.Join(lines, "\n")
}

// renderBar draws one horizontal bar per point on the fixed value axis.
func renderBar(d Data, opts Options) string {
	r := opts.renderer()
	width := opts.width()
	axis := Axis{Min: BarAxisMin, Max: BarAxisMax}
	if d.Axis != nil {
		axis = *d.Axis
	}

	labelW := labelWidth(d.Labels, width/3)
	valueW := 0
	for _, v := range d.Values {
		if w := len(formatValue(v)); w > valueW {
			valueW = w
		}
	}
	barW := width - labelW - valueW - 2
	if barW < 4 {
		barW = 4
	}

	span := axis.Max - axis.Min
	lines := make([]string, 0, len(d.Values)+1)
	for i, v := range d.Values {
		n := 0
		if span > 0 {
			n = int(math.Round((d.ClampToAxis(v) - axis.Min) / span * float64(barW)))
		}
		if n < 0 {
			n = 0
		}
		if n > barW {
			n = barW
		}
		bar := r.NewStyle().Foreground(lipgloss.Color(d.ColorAt(i))).Render(strings.Repeat(blockFull, n))
		rest := strings.Repeat(blockEmpty, barW-n)
		if opts.Muted != nil {
			rest = r.NewStyle().Foreground(opts.Muted).Render(rest)
		}
		lines = append(lines, fmt.Sprintf("%s %s%s %*s", fit(d.Labels[i], labelW), bar, rest, valueW, formatValue(v)))
	}
	gap := barW - len(formatValue(axis.Max))
	if gap < 0 {
		gap = 0
	}
	scale := fmt.Sprintf("%s %-*s%s", strings.Repeat(" ", labelW), gap, formatValue(axis.Min), formatValue(axis.Max))
	if opts.Muted != nil {
		scale = r.NewStyle().Foreground(opts.Muted).Render(scale)
	}
	lines = append(lines, scale)
	return strings.Join(lines, "\n")
}

// allocate splits width cells across shares with the largest-remainder
// method. The result sums to width unless every share is zero.
func allocate(shares []float64, width int) []int {
	cells := make([]int, len(shares))
	type rem struct {
		idx  int
		frac float64
	}
	var rems []rem
	used := 0
	positive := false
	for i, s := range shares {
		if s <= 0 {
			continue
		}
		positive = true
		exact := s * float64(width)
		cells[i] = int(math.Floor(exact))
		used += cells[i]
		rems = append(rems, rem{idx: i, frac: exact - math.Floor(exact)})
	}
	if !positive {
		return cells
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; used < width && len(rems) > 0; i = (i + 1) % len(rems) {
		cells[rems[i].idx]++
		used++
	}
	return cells
}

func labelWidth(labels []string, limit int) int {
	w := 1
	for _, l := range labels {
		if lw := runewidth.StringWidth(l); lw > w {
			w = lw
		}
	}
	if limit > 0 && w > limit {
		w = limit
	}
	return w
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
