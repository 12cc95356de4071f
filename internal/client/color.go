package client

import (
	"fmt"
	"strconv"

	"github.com/muesli/termenv"
)

// colorToX11 converts a termenv.Color to the X11 "rgb:RRRR/GGGG/BBBB"
// format OSC 10/11 replies use, matching h2's
// virtualterminal.ColorToX11.
func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if rgb, ok := c.(termenv.RGBColor); ok {
		hex := string(rgb)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
