// Package palette derives a word's highlight colour from its rank.
//
// Colours are spread evenly over the hue circle according to the number of tracked
// words, so they shift whenever that number changes. Callers recompute them on every
// pass instead of caching them per word.
package palette

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// HueOffset is added to the rank hue before presentation.
	HueOffset = 20
	// Saturation is fixed for every highlight.
	Saturation = 100
	// LightLightness is used for hues in (180, 360).
	LightLightness = 80
	// DarkLightness is used for every other hue.
	DarkLightness = 50
)

// Color is an HSL highlight colour. Hue already includes HueOffset and may exceed 360.
type Color struct {
	Hue        float64
	Saturation int
	Lightness  int
}

// Hue returns the rank hue 360 - (360/n)*rank. n below 1 is treated as 1.
func Hue(rank, n int) float64 {
	if n < 1 {
		n = 1
	}
	return 360 - (360/float64(n))*float64(rank)
}

// For returns the colour of the word at rank among n tracked words.
func For(rank, n int) Color {
	hue := Hue(rank, n)
	lightness := DarkLightness
	if 180 < hue && hue < 360 {
		lightness = LightLightness
	}
	return Color{
		Hue:        hue + HueOffset,
		Saturation: Saturation,
		Lightness:  lightness,
	}
}

// CSS returns the colour as a CSS hsl() value.
func (c Color) CSS() string {
	return fmt.Sprintf("hsl(%s, %d%%, %d%%)", formatHue(c.Hue), c.Saturation, c.Lightness)
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Lipgloss returns the colour for terminal rendering.
func (c Color) Lipgloss() lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Foreground returns a text colour that stays legible on top of c.
func (c Color) Foreground() lipgloss.Color {
	return contrast(c.colorful())
}

// Style returns a lipgloss style highlighting text with c.
func (c Color) Style() lipgloss.Style {
	return lipgloss.NewStyle().Background(c.Lipgloss()).Foreground(c.Foreground())
}

// HexStyle returns the highlight style for a #rrggbb background. Values that do not
// parse give a plain style.
func HexStyle(hex string) lipgloss.Style {
	bg, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Foreground(contrast(bg))
}

func contrast(bg colorful.Color) lipgloss.Color {
	l, _, _ := bg.Lab()
	if l > 0.6 {
		return lipgloss.Color("#1a1a1a")
	}
	return lipgloss.Color("#fafafa")
}

func (c Color) colorful() colorful.Color {
	return colorful.Hsl(math.Mod(c.Hue, 360), float64(c.Saturation)/100, float64(c.Lightness)/100)
}

// formatHue drops the fraction when the hue is whole.
func formatHue(h float64) string {
	if h == math.Trunc(h) {
		return fmt.Sprintf("%d", int(h))
	}
	return fmt.Sprintf("%.2f", h)
}
