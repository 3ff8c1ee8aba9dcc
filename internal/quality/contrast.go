package quality

import (
	"fmt"
	"math"
	"strings"
)

// WCAG contrast thresholds.
const (
	ContrastAANormal  = 4.5
	ContrastAALarge   = 3.0
	ContrastAAANormal = 7.0
	ContrastAAALarge  = 4.5
)

// RGB is an sRGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ParseHexColor parses a #RRGGBB string.
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	var c RGB
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("color %q is not #RRGGBB: %w", s, err)
	}
	return c, nil
}

// RelativeLuminance computes WCAG relative luminance for an sRGB color.
// Each channel c in [0,1] maps through c/12.92 when c <= 0.03928, otherwise
// ((c+0.055)/1.055)^2.4; luminance is 0.2126R' + 0.7152G' + 0.0722B'.
func RelativeLuminance(c RGB) float64 {
	lin := func(ch uint8) float64 {
		v := float64(ch) / 255.0
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio computes the WCAG contrast ratio between two colors.
// The ratio is symmetric and ranges from 1 (identical) to 21 (black/white).
func ContrastRatio(a, b RGB) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// ContrastRatioHex is ContrastRatio over #RRGGBB strings.
func ContrastRatioHex(a, b string) (float64, error) {
	ca, err := ParseHexColor(a)
	if err != nil {
		return 0, err
	}
	cb, err := ParseHexColor(b)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(ca, cb), nil
}
