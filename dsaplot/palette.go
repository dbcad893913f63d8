package dsaplot

import (
	"image/color"
	"math"
)

// reversedRainbow is a discretized colour ramp running from red at the low
// end of the range to violet at the high end: the reverse of the usual
// rainbow ramp (blue/violet low, red high). Built by hand rather than via a
// prebuilt colormap package, in the same spirit as carta's colorBand
// switch-on-value palette.
type reversedRainbow struct {
	steps int
}

func (p reversedRainbow) Colors() []color.Color {
	colors := make([]color.Color, p.steps)
	for i := range colors {
		t := float64(i) / float64(p.steps-1)
		colors[i] = hsv(t*300, 1, 1)
	}
	return colors
}

// hsv converts a hue in [0,360), full saturation and value, to RGB. Go's
// image/color package has no HSV model, so this is a direct transcription
// of the standard sector-based conversion.
func hsv(h, s, v float64) color.Color {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := v - c
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}
