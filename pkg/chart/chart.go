// Package chart turns cards into chart data and draws them in the terminal.
//
// Derive is the contract shared by every renderer: three parallel slices
// (labels, values, colors) plus the chart kind. Values are the raw field
// percentages; nothing is normalized. Bar charts carry a fixed [0,100] value
// axis, pie charts carry none and are drawn proportionally to their values.
package chart

import (
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"gonum.org/v1/gonum/floats"
)

// Fixed value axis of bar charts.
const (
	BarAxisMin = 0.0
	BarAxisMax = 100.0
)

// FallbackColor is drawn for fields whose color is not a valid hex string.
const FallbackColor = "#888888"

// Axis is a closed value range.
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Data is the renderer-independent chart description of one card.
type Data struct {
	Kind   model.ChartType `json:"kind"`
	Title  string          `json:"title"`
	Labels []string        `json:"labels"`
	Values []float64       `json:"values"`
	Colors []string        `json:"colors"`
	Axis   *Axis           `json:"axis,omitempty"`
}

// Derive builds chart data from a card's fields.
func Derive(card model.Card) Data {
	d := Data{
		Kind:   card.ChartType,
		Title:  card.Name,
		Labels: make([]string, len(card.Fields)),
		Values: make([]float64, len(card.Fields)),
		Colors: make([]string, len(card.Fields)),
	}
	for i, f := range card.Fields {
		d.Labels[i] = f.Name
		d.Values[i] = f.Percentage
		d.Colors[i] = f.Color
	}
	if card.ChartType == model.ChartBar {
		d.Axis = &Axis{Min: BarAxisMin, Max: BarAxisMax}
	}
	return d
}

// Len returns the number of data points.
func (d Data) Len() int { return len(d.Values) }

// Total returns the sum of the raw values.
func (d Data) Total() float64 {
	if len(d.Values) == 0 {
		return 0
	}
	return floats.Sum(d.Values)
}

// Shares returns each value's fraction of the sum of positive values, as a
// pie chart slices them. Non-positive values get a zero share. When no value
// is positive every share is zero.
func (d Data) Shares() []float64 {
	shares := make([]float64, len(d.Values))
	for i, v := range d.Values {
		if v > 0 {
			shares[i] = v
		}
	}
	if len(shares) == 0 {
		return shares
	}
	total := floats.Sum(shares)
	if total <= 0 {
		return shares
	}
	floats.Scale(1/total, shares)
	return shares
}

// ColorAt returns the drawable color of point i.
func (d Data) ColorAt(i int) string {
	if i < 0 || i >= len(d.Colors) || !model.IsHexColor(d.Colors[i]) {
		return FallbackColor
	}
	return d.Colors[i]
}

// ClampToAxis limits v to the chart's value axis. Without an axis v is
// returned unchanged.
func (d Data) ClampToAxis(v float64) float64 {
	if d.Axis == nil {
		return v
	}
	if v < d.Axis.Min {
		return d.Axis.Min
	}
	if v > d.Axis.Max {
		return d.Axis.Max
	}
	return v
}
