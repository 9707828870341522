package ansi

// ColorKind tells how a Color value should be interpreted.
type ColorKind uint8

const (
	// ColorDefault is the terminal's default color (unset).
	ColorDefault ColorKind = iota
	// ColorBasic is one of the 16 standard colors (30-37, 90-97 and friends).
	ColorBasic
	// ColorIndexed is an entry of the 256-color palette (38;5;N).
	ColorIndexed
	// ColorRGB is a 24-bit true color (38;2;R;G;B).
	ColorRGB
)

// Color is a foreground or background color produced by SGR codes.
type Color struct {
	Kind    ColorKind
	Index   uint8 // ColorBasic (0-15) and ColorIndexed (0-255)
	R, G, B uint8 // ColorRGB
}

// Basic returns one of the 16 standard colors. Values above 15 wrap.
func Basic(index uint8) Color {
	return Color{Kind: ColorBasic, Index: index % 16}
}

// Indexed returns a 256-color palette entry.
func Indexed(index uint8) Color {
	return Color{Kind: ColorIndexed, Index: index}
}

// RGB returns a true color.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// IsDefault reports whether c is the terminal default color.
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// Standard color names, in SGR order.
var (
	Black   = Basic(0)
	Red     = Basic(1)
	Green   = Basic(2)
	Yellow  = Basic(3)
	Blue    = Basic(4)
	Magenta = Basic(5)
	Cyan    = Basic(6)
	White   = Basic(7)

	BrightBlack   = Basic(8)
	BrightRed     = Basic(9)
	BrightGreen   = Basic(10)
	BrightYellow  = Basic(11)
	BrightBlue    = Basic(12)
	BrightMagenta = Basic(13)
	BrightCyan    = Basic(14)
	BrightWhite   = Basic(15)
)

// Modifier is a set of text attributes.
type Modifier uint16

const (
	Bold Modifier = 1 << iota
	Faint
	Italic
	Underline
	SlowBlink
	RapidBlink
	Reverse
	Conceal
	CrossedOut
)

// Style is the graphic state carried between spans.
// The zero value is the reset state.
type Style struct {
	Fg   Color
	Bg   Color
	Mods Modifier
}

// Has reports whether every attribute in m is set.
func (s Style) Has(m Modifier) bool {
	return s.Mods&m == m
}

// IsZero reports whether s is the reset style.
func (s Style) IsZero() bool {
	return s == Style{}
}

// applySGR applies SGR parameters to s. A malformed extended color
// (38/48 without a valid 5;N or 2;R;G;B tail) invalidates the whole
// sequence and s is returned with ok=false.
func applySGR(s Style, params []int) (Style, bool) {
	if len(params) == 0 {
		return Style{}, true
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s = Style{}
		case p == 1:
			s.Mods |= Bold
		case p == 2:
			s.Mods |= Faint
		case p == 3:
			s.Mods |= Italic
		case p == 4:
			s.Mods |= Underline
		case p == 5:
			s.Mods |= SlowBlink
		case p == 6:
			s.Mods |= RapidBlink
		case p == 7:
			s.Mods |= Reverse
		case p == 8:
			s.Mods |= Conceal
		case p == 9:
			s.Mods |= CrossedOut
		case p == 21:
			s.Mods &^= Bold
		case p == 22:
			s.Mods &^= Bold | Faint
		case p == 23:
			s.Mods &^= Italic
		case p == 24:
			s.Mods &^= Underline
		case p == 25:
			s.Mods &^= SlowBlink | RapidBlink
		case p == 27:
			s.Mods &^= Reverse
		case p == 28:
			s.Mods &^= Conceal
		case p == 29:
			s.Mods &^= CrossedOut
		case p >= 30 && p <= 37:
			s.Fg = Basic(uint8(p - 30))
		case p == 38, p == 48:
			c, n, ok := extendedColor(params[i+1:])
			if !ok {
				return s, false
			}
			if p == 38 {
				s.Fg = c
			} else {
				s.Bg = c
			}
			i += n
		case p == 39:
			s.Fg = Color{}
		case p >= 40 && p <= 47:
			s.Bg = Basic(uint8(p - 40))
		case p == 49:
			s.Bg = Color{}
		case p >= 90 && p <= 97:
			s.Fg = Basic(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.Bg = Basic(uint8(p - 100 + 8))
		}
		// Anything else (fonts, frames, overline...) is ignored.
	}
	return s, true
}

// extendedColor decodes the tail of a 38/48 code: "5;N" or "2;R;G;B".
// It returns the number of parameters consumed.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) == 0 {
		return Color{}, 0, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 || !isByte(rest[1]) {
			return Color{}, 0, false
		}
		return Indexed(uint8(rest[1])), 2, true
	case 2:
		if len(rest) < 4 || !isByte(rest[1]) || !isByte(rest[2]) || !isByte(rest[3]) {
			return Color{}, 0, false
		}
		return RGB(uint8(rest[1]), uint8(rest[2]), uint8(rest[3])), 4, true
	default:
		return Color{}, 0, false
	}
}

func isByte(v int) bool {
	return v >= 0 && v <= 255
}
