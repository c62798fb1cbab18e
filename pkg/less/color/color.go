// Package color implements the LESS color kernel: parsing the literal color
// forms, converting between RGB and HSL, the manipulation functions
// (lighten, darken, fade, overlay), and canonical CSS formatting.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGBA holds color channels in [0, 1]. Alpha is always in [0, 1] as well.
type RGBA struct {
	R, G, B, A float64
}

func (c RGBA) clamp() RGBA {
	return RGBA{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Parse recognizes `#rgb`, `#rgba`, `#rrggbb`, `#rrggbbaa`, `rgb(r,g,b)` and
// `rgba(r,g,b,a)`. It returns ok=false for anything else rather than an
// error, since callers use it to probe whether a substring is a color.
func Parse(input string) (RGBA, bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "#") {
		return parseHex(trimmed[1:])
	}
	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "rgba") {
		return parseRGBFunction(lowered, true)
	}
	if strings.HasPrefix(lowered, "rgb") {
		return parseRGBFunction(lowered, false)
	}
	return RGBA{}, false
}

func parseHex(hex string) (RGBA, bool) {
	switch len(hex) {
	case 3:
		r, ok1 := hexValue(hex[0:1])
		g, ok2 := hexValue(hex[1:2])
		b, ok3 := hexValue(hex[2:3])
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r*17) / 255, G: float64(g*17) / 255, B: float64(b*17) / 255, A: 1}, true
	case 6:
		r, ok1 := hexValue(hex[0:2])
		g, ok2 := hexValue(hex[2:4])
		b, ok3 := hexValue(hex[4:6])
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}, true
	case 8:
		r, ok1 := hexValue(hex[0:2])
		g, ok2 := hexValue(hex[2:4])
		b, ok3 := hexValue(hex[4:6])
		a, ok4 := hexValue(hex[6:8])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}, true
	default:
		return RGBA{}, false
	}
}

func hexValue(s string) (int, bool) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func parseRGBFunction(lowered string, hasAlpha bool) (RGBA, bool) {
	start := strings.IndexByte(lowered, '(')
	end := strings.LastIndexByte(lowered, ')')
	if start < 0 || end < 0 || end <= start {
		return RGBA{}, false
	}
	body := lowered[start+1 : end]
	parts := strings.Split(body, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if hasAlpha && len(parts) != 4 {
		return RGBA{}, false
	}
	if !hasAlpha && len(parts) != 3 {
		return RGBA{}, false
	}
	r, ok1 := parseByte(parts[0])
	g, ok2 := parseByte(parts[1])
	b, ok3 := parseByte(parts[2])
	if !ok1 || !ok2 || !ok3 {
		return RGBA{}, false
	}
	a := 1.0
	if hasAlpha {
		v, ok := parseAlpha(parts[3])
		if !ok {
			return RGBA{}, false
		}
		a = v
	}
	return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: a}, true
}

func parseByte(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 255 {
		return 0, false
	}
	return v, true
}

func parseAlpha(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 100), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v), true
}

// ParsePercentOrFraction parses the `N%` or `0.0-1.0` amount argument shared
// by lighten/darken/fade.
func ParsePercentOrFraction(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasSuffix(cleaned, "%") {
		num := strings.TrimSpace(cleaned[:len(cleaned)-1])
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q", raw)
		}
		return clamp01(v / 100), nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return clamp01(v), nil
}

// Lighten increases HSL lightness by amount (clamped to [0,1]), preserving alpha.
func Lighten(c RGBA, amount float64) RGBA {
	h, s, l := rgbToHSL(c)
	return hslToRGB(h, s, clamp01(l+amount), c.A)
}

// Darken decreases HSL lightness by amount (clamped to [0,1]), preserving alpha.
func Darken(c RGBA, amount float64) RGBA {
	h, s, l := rgbToHSL(c)
	return hslToRGB(h, s, clamp01(l-amount), c.A)
}

// Fade sets alpha to amount, leaving RGB channels untouched.
func Fade(c RGBA, amount float64) RGBA {
	c.A = clamp01(amount)
	return c.clamp()
}

// Overlay blends two colors using LESS's overlay blend mode. It takes the
// overlay() call's arguments in the order they were written: first, second.
func Overlay(first, second RGBA) RGBA {
	return blend(blendOverlay, first, second)
}

func blend(mode func(a, b float64) float64, bottom, top RGBA) RGBA {
	ab, at := bottom.A, top.A
	ar := at + ab*(1-at)
	bottomCh := [3]float64{bottom.R, bottom.G, bottom.B}
	topCh := [3]float64{top.R, top.G, top.B}
	var result [3]float64
	for i := 0; i < 3; i++ {
		cb, cs := bottomCh[i], topCh[i]
		cr := mode(cb, cs)
		if ar > 0 {
			cr = (at*cs + ab*(cb-at*(cb+cs-cr))) / ar
		}
		result[i] = cr
	}
	return RGBA{R: result[0], G: result[1], B: result[2], A: ar}.clamp()
}

func blendMultiply(a, b float64) float64 { return a * b }
func blendScreen(a, b float64) float64   { return a + b - a*b }

func blendOverlay(base, overlay float64) float64 {
	if base <= 0.5 {
		return blendMultiply(base*2, overlay)
	}
	return blendScreen(base*2-1, overlay)
}

// FormatHex renders a color as lowercase `#rrggbb`, ignoring alpha.
func FormatHex(c RGBA) string {
	c = c.clamp()
	return fmt.Sprintf("#%02x%02x%02x", toChannel(c.R), toChannel(c.G), toChannel(c.B))
}

// FormatRGBA renders a color as `rgba(r, g, b, a)` with a trimmed alpha.
func FormatRGBA(c RGBA) string {
	c = c.clamp()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", toChannel(c.R), toChannel(c.G), toChannel(c.B), formatFloat(c.A))
}

// Format chooses FormatHex when alpha is 1, otherwise FormatRGBA — the
// canonical serialization used whenever a color function's result is
// substituted back into a value.
func Format(c RGBA) string {
	c = c.clamp()
	if c.A == 1 {
		return FormatHex(c)
	}
	return FormatRGBA(c)
}

func toChannel(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func formatFloat(v float64) string {
	formatted := strconv.FormatFloat(v, 'f', 3, 64)
	for strings.Contains(formatted, ".") && strings.HasSuffix(formatted, "0") {
		formatted = formatted[:len(formatted)-1]
	}
	formatted = strings.TrimSuffix(formatted, ".")
	if formatted == "" {
		return "0"
	}
	return formatted
}

func rgbToHSL(c RGBA) (h, s, l float64) {
	r, g, b := c.R, c.G, c.B
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if math.Abs(max-min) < 1e-12 {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch {
	case math.Abs(max-r) < 1e-12:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case math.Abs(max-g) < 1e-12:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	return h, s, l
}

func hslToRGB(h, s, l, alpha float64) RGBA {
	if s <= 0 {
		return RGBA{R: l, G: l, B: l, A: alpha}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r := hueToRGB(p, q, h+1.0/3.0)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3.0)

	return RGBA{R: r, G: g, B: b, A: alpha}.clamp()
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
