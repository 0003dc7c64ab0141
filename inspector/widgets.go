package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg   = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarHigh = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText    = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim = rl.Color{R: 150, G: 150, B: 150, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	text := FormatValue(value, options["fmt"])
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 16, ColorText)
	return 20
}

// DrawBar renders a horizontal progress bar that reddens as it fills.
func DrawBar(x, y int32, name string, value, maxVal float32) int32 {
	ratio := min(max(value/maxVal, 0), 1)

	barWidth := int32(110)
	barHeight := int32(14)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	fillColor := ColorBarFill
	if ratio > 0.8 {
		fillColor = ColorBarHigh
	}
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), barHeight, fillColor)

	rl.DrawText(fmt.Sprintf("%.0f", value), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawField renders one field with its widget.
func DrawField(x, y int32, f Field, limits map[string]float32) int32 {
	if f.Widget == WidgetBar {
		if v, ok := GetFloatValue(f.Value); ok {
			maxVal, ok := limits[f.Name]
			if !ok || maxVal <= 0 {
				maxVal = GetMax(f.Options)
			}
			return DrawBar(x, y, f.Name, v, maxVal)
		}
	}
	return DrawLabel(x, y, f.Name, f.Value, f.Options)
}
