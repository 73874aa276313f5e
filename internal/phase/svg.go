package phase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-lunar/internal/config"
)

// RenderPath returns the two <path> elements drawing lunation f in a square
// view box of side viewBoxSize.
func RenderPath(f Lunation, viewBoxSize float64) string {
	return renderHalves(f, viewBoxSize, config.ClassLight, config.ClassShadow)
}

// RenderMask returns the two <path> elements of a mask for lunation f.
// Masks are applied to an external image with objectBoundingBox units, so
// they always use the unit coordinate space.
func RenderMask(f Lunation) string {
	return renderHalves(f, config.MaskBoxSize, config.ClassLightMask, config.ClassShadowMask)
}

// renderHalves draws the left and right regions, each bounded by the
// terminator and one half of the disc outline.
func renderHalves(f Lunation, size float64, lightClass, shadowClass string) string {
	r := size / 2
	term := ComputeTerminatorArc(f, r)

	left, right := shadowClass, lightClass
	if term.Lit == Left {
		left, right = lightClass, shadowClass
	}

	sweep := 0
	if term.Side == Right {
		sweep = 1
	}

	rs, ss := num(r), num(size)
	moveToTop := fmt.Sprintf("M%s,0", rs)
	terminator := fmt.Sprintf("A %s %s 0 0 %d %s %s", num(term.ArcRadius), num(term.ArcRadius), sweep, rs, ss)
	discLeft := fmt.Sprintf("A %s %s 0 0 1 %s 0", rs, rs, rs)
	discRight := fmt.Sprintf("A %s %s 0 0 0 %s 0", rs, rs, rs)

	var b strings.Builder
	fmt.Fprintf(&b, `<path d="%s %s %s" class="%s"/>`, moveToTop, terminator, discLeft, left)
	fmt.Fprintf(&b, `<path d="%s %s %s" class="%s"/>`, moveToTop, terminator, discRight, right)
	return b.String()
}

// num formats v with the shortest representation that round-trips.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
