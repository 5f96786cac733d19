package subtitle

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Position is the vertical placement of burned captions.
type Position string

const (
	PositionTop    Position = "top"
	PositionMiddle Position = "middle"
	PositionBottom Position = "bottom"
)

// alignment returns the ASS numpad alignment for a horizontally centred line.
func (p Position) alignment() int {
	switch p {
	case PositionTop:
		return 8
	case PositionMiddle:
		return 5
	default:
		return 2
	}
}

// Style describes how captions look once rendered onto video frames.
type Style struct {
	Font        string
	FontSize    int
	Color       color.RGBA
	StrokeColor color.RGBA
	StrokeWidth float64
	Shadow      bool
	ShadowColor color.RGBA
	Position    Position
	Margin      int
	Bold        bool
}

func DefaultStyle() Style {
	return Style{
		Font:        "Arial",
		FontSize:    48,
		Color:       colornames.White,
		StrokeColor: colornames.Black,
		StrokeWidth: 2,
		Shadow:      true,
		ShadowColor: colornames.Black,
		Position:    PositionBottom,
		Margin:      60,
	}
}

// ParseColor accepts CSS/SVG color names ("white", "gold"), "#RGB",
// "#RRGGBB" and "#RRGGBBAA".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}

	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// assColor renders a color as &HAABBGGRR. ASS alpha is inverted: 00 is opaque.
func assColor(c color.RGBA) string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", 255-c.A, c.B, c.G, c.R)
}

// styleLine renders the Default style definition for the V4+ Styles section.
func (s Style) styleLine() string {
	font := s.Font
	if font == "" {
		font = "Arial"
	}
	size := s.FontSize
	if size <= 0 {
		size = 48
	}

	bold := 0
	if s.Bold {
		bold = -1
	}

	// ASS draws the shadow with BackColour
	shadowDepth := 0.0
	back := color.RGBA{A: 0}
	if s.Shadow {
		shadowDepth = 2
		back = s.ShadowColor
	}

	return fmt.Sprintf(
		"Style: Default,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,1,%s,%s,%d,10,10,%d,1",
		font,
		size,
		assColor(s.Color),
		assColor(s.Color),
		assColor(s.StrokeColor),
		assColor(back),
		bold,
		formatFloat(s.StrokeWidth),
		formatFloat(shadowDepth),
		s.Position.alignment(),
		s.Margin,
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
