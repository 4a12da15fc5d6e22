package chart

import (
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/widgetboard/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

func sampleCard(kind model.ChartType) model.Card {
	return model.Card{
		ID:        1,
		Name:      "Risk",
		ChartType: kind,
		Fields: []model.Field{
			{Name: "High", Color: "#ff0000", Percentage: 30},
			{Name: "Low", Color: "#00ff00", Percentage: 90},
		},
	}
}

func testOpts(width int) Options {
	return Options{Width: width, Renderer: lipgloss.NewRenderer(os.Stdout)}
}

func TestDerive_ParallelSlices(t *testing.T) {
	d := Derive(sampleCard(model.ChartPie))
	if !reflect.DeepEqual(d.Labels, []string{"High", "Low"}) {
		t.Errorf("labels = %v", d.Labels)
	}
	if !reflect.DeepEqual(d.Values, []float64{30, 90}) {
		t.Errorf("values = %v", d.Values)
	}
	if !reflect.DeepEqual(d.Colors, []string{"#ff0000", "#00ff00"}) {
		t.Errorf("colors = %v", d.Colors)
	}
	if d.Kind != model.ChartPie || d.Title != "Risk" {
		t.Errorf("kind/title = %q/%q", d.Kind, d.Title)
	}
}

func TestDerive_AxisByKind(t *testing.T) {
	if Derive(sampleCard(model.ChartPie)).Axis != nil {
		t.Error("pie chart must not have a value axis")
	}
	axis := Derive(sampleCard(model.ChartBar)).Axis
	if axis == nil || axis.Min != 0 || axis.Max != 100 {
		t.Errorf("bar axis = %+v, want [0,100]", axis)
	}
}

func TestDerive_NoNormalization(t *testing.T) {
	d := Derive(sampleCard(model.ChartPie))
	if d.Total() != 120 {
		t.Errorf("Total() = %v, want raw sum 120", d.Total())
	}
}

func TestDerive_Empty(t *testing.T) {
	d := Derive(model.Card{Name: "empty", ChartType: model.ChartBar})
	if d.Len() != 0 || d.Total() != 0 {
		t.Errorf("unexpected data: %+v", d)
	}
}

func TestShares(t *testing.T) {
	d := Data{Values: []float64{30, 90, -5, 0}}
	got := d.Shares()
	want := []float64{0.25, 0.75, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("share[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	zero := Data{Values: []float64{0, -1}}.Shares()
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("non-positive data should have zero shares: %v", zero)
	}
}

func TestColorAt_Fallback(t *testing.T) {
	d := Data{Colors: []string{"#abcdef", "blue"}}
	if d.ColorAt(0) != "#abcdef" {
		t.Errorf("ColorAt(0) = %q", d.ColorAt(0))
	}
	if d.ColorAt(1) != FallbackColor || d.ColorAt(5) != FallbackColor {
		t.Error("invalid colors should fall back")
	}
	if d.Colors[1] != "blue" {
		t.Error("fallback must not rewrite the data")
	}
}

func TestClampToAxis(t *testing.T) {
	bar := Derive(sampleCard(model.ChartBar))
	if bar.ClampToAxis(150) != 100 || bar.ClampToAxis(-2) != 0 || bar.ClampToAxis(42) != 42 {
		t.Error("bar values should clamp to [0,100]")
	}
	pie := Derive(sampleCard(model.ChartPie))
	if pie.ClampToAxis(150) != 150 {
		t.Error("pie values must not clamp")
	}
}

func TestAllocate_SumsToWidth(t *testing.T) {
	tests := []struct {
		shares []float64
		width  int
	}{
		{[]float64{0.25, 0.75}, 20},
		{[]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, 10},
		{[]float64{0.5, 0, 0.5}, 7},
	}
	for _, tt := range tests {
		cells := allocate(tt.shares, tt.width)
		sum := 0
		for _, c := range cells {
			sum += c
		}
		if sum != tt.width {
			t.Errorf("allocate(%v, %d) = %v, sums to %d", tt.shares, tt.width, cells, sum)
		}
	}
	if cells := allocate([]float64{0, 0}, 10); cells[0] != 0 || cells[1] != 0 {
		t.Errorf("zero shares should get no cells: %v", cells)
	}
}

func TestRender_Pie(t *testing.T) {
	out := Render(Derive(sampleCard(model.ChartPie)), testOpts(40))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("want strip + 2 legend lines, got %d:\n%s", len(lines), out)
	}
	if got := strings.Count(lines[0], blockFull); got != 40 {
		t.Errorf("strip has %d cells, want 40", got)
	}
	if !strings.Contains(out, "High") || !strings.Contains(out, "(25%)") || !strings.Contains(out, "(75%)") {
		t.Errorf("legend missing labels or shares:\n%s", out)
	}
}

func TestRender_PieAllZero(t *testing.T) {
	card := model.Card{ChartType: model.ChartPie, Fields: []model.Field{{Name: "a"}}}
	if out := Render(Derive(card), testOpts(30)); !strings.Contains(out, "no data") {
		t.Errorf("expected placeholder, got %q", out)
	}
}

func TestRender_BarClipsAtAxis(t *testing.T) {
	card := model.Card{ChartType: model.ChartBar, Fields: []model.Field{
		{Name: "over", Color: "#ff0000", Percentage: 250},
		{Name: "half", Color: "#00ff00", Percentage: 50},
		{Name: "neg", Color: "#0000ff", Percentage: -10},
	}}
	out := Render(Derive(card), testOpts(40))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("want 3 bars + scale, got %d:\n%s", len(lines), out)
	}
	full := strings.Count(lines[0], blockFull)
	half := strings.Count(lines[1], blockFull)
	neg := strings.Count(lines[2], blockFull)
	if full == 0 || strings.Count(lines[0], blockEmpty) != 0 {
		t.Errorf("over-range bar should fill the axis: %q", lines[0])
	}
	if half*2 < full-1 || half*2 > full+1 {
		t.Errorf("50%% bar should be half of full: full=%d half=%d", full, half)
	}
	if neg != 0 {
		t.Errorf("negative value drew %d cells", neg)
	}
	if !strings.Contains(lines[0], "250") {
		t.Errorf("raw value should be printed: %q", lines[0])
	}
	if !strings.Contains(lines[3], "100") {
		t.Errorf("scale line should show the axis max: %q", lines[3])
	}
}

func TestRender_EmptyCard(t *testing.T) {
	out := Render(Derive(model.Card{ChartType: model.ChartBar}), testOpts(20))
	if !strings.Contains(out, "no data") {
		t.Errorf("expected placeholder, got %q", out)
	}
}

func TestFit(t *testing.T) {
	if got := fit("abc", 5); got != "abc  " {
		t.Errorf("fit pad = %q", got)
	}
	if got := fit("abcdefgh", 4); got != "abc…" {
		t.Errorf("fit truncate = %q", got)
	}
}
