// Package inspector draws struct fields as an on-screen panel, driven by
// `inspect` struct tags.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Panel dimensions
const (
	PanelWidth   = 240
	PanelPadding = 10
	HeaderHeight = 30
	rowHeight    = 20
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
)

// Inspector is a titled panel listing the fields of one or more components.
type Inspector struct {
	X, Y  int32
	Title string

	// Limits overrides the bar maximum of a field by its display name.
	Limits map[string]float32
}

// New creates an inspector anchored to the top right of the screen.
func New(screenWidth int32, title string) *Inspector {
	return &Inspector{
		X:      screenWidth - PanelWidth - 10,
		Y:      10,
		Title:  title,
		Limits: make(map[string]float32),
	}
}

// Anchor moves the panel to the top right of a resized screen.
func (ins *Inspector) Anchor(screenWidth int32) {
	ins.X = screenWidth - PanelWidth - 10
}

// Rows returns the fields of every component in order.
func Rows(components ...any) []Field {
	var rows []Field
	for _, c := range components {
		rows = append(rows, ExtractFields(c)...)
	}
	return rows
}

// Height returns the panel height needed for the given rows.
func Height(rows []Field) int32 {
	return HeaderHeight + 2*PanelPadding + int32(len(rows))*rowHeight
}

// Bounds returns the panel rectangle for the given rows.
func (ins *Inspector) Bounds(rows []Field) rl.Rectangle {
	return rl.NewRectangle(float32(ins.X), float32(ins.Y), PanelWidth, float32(Height(rows)))
}

// Draw renders the panel with one row per field.
func (ins *Inspector) Draw(components ...any) {
	rows := Rows(components...)
	bounds := ins.Bounds(rows)

	rl.DrawRectangleRec(bounds, ColorPanelBg)
	rl.DrawRectangleLinesEx(bounds, 1, ColorPanelBorder)

	rl.DrawRectangle(ins.X, ins.Y, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(ins.Title, ins.X+PanelPadding, ins.Y+7, 16, ColorHeaderText)

	x := ins.X + PanelPadding
	y := ins.Y + HeaderHeight + PanelPadding
	for _, f := range rows {
		DrawField(x, y, f, ins.Limits)
		y += rowHeight
	}
}
