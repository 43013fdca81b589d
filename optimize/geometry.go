package optimize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/tdewolff/parse/v2/strconv"

	"trigo/optimize/pathdata"
)

// ErrViewBox is returned (wrapped) when svg or symbol element has viewBox
// which cannot be used to establish coordinate system.
var ErrViewBox = errors.New("invalid viewBox")

// transformContext is established by every svg and symbol element and is used
// by all geometry elements following it in document order.
type transformContext struct {
	scale   float64
	offsetX float64
	offsetY float64
}

var (
	// attributes of basic shapes affected by scaling and translation
	shapeScaled = map[string]bool{
		"width": true, "height": true, "rx": true, "ry": true, "r": true,
		"cx": true, "x": true, "x1": true, "x2": true,
		"cy": true, "y": true, "y1": true, "y2": true,
	}
	shapeOffsetX = map[string]bool{"cx": true, "x": true, "x1": true, "x2": true}
	shapeOffsetY = map[string]bool{"cy": true, "y": true, "y1": true, "y2": true}

	// translation part of matrix(a b c d e f) and translate(x y)
	transformRe = regexp.MustCompile(`(matrix\([+\-\d.]+[\s,]+[+\-\d.]+[\s,]+[+\-\d.]+[\s,]+[+\-\d.]+[\s,]+|translate\()([+\-\d.]+)([\s,]+)([+\-\d.]+)\)`)
)

func geometryPass(opts *Options) Pass {
	return Pass{
		Name: "translate",
		Kind: WholeDocument,
		Document: func(doc *etree.Document) (string, bool, error) {
			_, err := transformTree(&doc.Element, transformContext{scale: 1}, opts)
			return "", false, err
		},
	}
}

// transformTree visits descendants of parent in pre-order, context produced by
// an element is passed to everything that follows it.
func transformTree(parent *etree.Element, ctx transformContext, opts *Options) (transformContext, error) {
	var err error
	for _, el := range parent.ChildElements() {
		if ctx, err = transformElement(el, ctx, opts); err != nil {
			return ctx, err
		}
		if ctx, err = transformTree(el, ctx, opts); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func transformElement(el *etree.Element, ctx transformContext, opts *Options) (transformContext, error) {
	switch el.Tag {
	case "svg", "symbol":
		var err error
		if ctx, err = newTransformContext(el, opts); err != nil {
			return ctx, err
		}
	case "path":
		if a := el.SelectAttr("d"); a != nil {
			d, err := pathdata.Transform(a.Value, ctx.scale, ctx.offsetX, ctx.offsetY)
			if err != nil {
				return ctx, fmt.Errorf("unable to transform path: %w", err)
			}
			a.Value = d
		}
	case "rect", "line", "circle", "ellipse":
		transformShape(el, ctx)
	case "polyline", "polygon":
		transformPoints(el, ctx)
	}
	if a := el.SelectAttr("transform"); a != nil {
		a.Value = transformTranslation(a.Value, ctx.scale)
	}
	return ctx, nil
}

// newTransformContext computes scale and offsets for element establishing new
// viewport and rewrites its viewBox to "0 0 width height".
func newTransformContext(el *etree.Element, opts *Options) (transformContext, error) {
	var x, y, w, h float64
	if a := el.SelectAttr("viewBox"); a != nil {
		box, err := parseViewBox(a.Value)
		if err != nil {
			return transformContext{}, err
		}
		x, y, w, h = box[0], box[1], box[2], box[3]
	} else {
		w, h = opts.Height, opts.Height
		if v, ok := leadingNumber(el.SelectAttrValue("width", "")); ok && v != 0 {
			w = v
		}
		if v, ok := leadingNumber(el.SelectAttrValue("height", "")); ok && v != 0 {
			h = v
		}
	}

	height := opts.Height
	if height == 0 {
		// unset height keeps original size (scale 1) instead of collapsing
		// geometry with zero scale
		height = h
	}
	ctx := transformContext{
		scale:   1,
		offsetX: -x + opts.OffsetX,
		offsetY: -y + opts.OffsetY,
	}
	if h != 0 {
		ctx.scale = height / h
	}
	width := round4(w * ctx.scale)
	if width < opts.MinWidth {
		ctx.offsetX += (opts.MinWidth - width) / 2
		width = opts.MinWidth
	}
	el.CreateAttr("viewBox", "0 0 "+pathdata.FormatNumber(width)+" "+pathdata.FormatNumber(height))
	return ctx, nil
}

// transformShape scales coordinate and size attributes of basic shapes, then
// translates position attributes. Attributes which are not plain numbers are
// left alone.
func transformShape(el *etree.Element, ctx transformContext) {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space != "" || !shapeScaled[a.Key] {
			continue
		}
		v, ok := number(a.Value)
		if !ok {
			continue
		}
		v *= ctx.scale
		switch {
		case shapeOffsetX[a.Key]:
			v += ctx.offsetX
		case shapeOffsetY[a.Key]:
			v += ctx.offsetY
		}
		a.Value = pathdata.FormatNumber(v)
	}
}

// transformPoints rewrites "points" list as space separated "x,y" pairs.
func transformPoints(el *etree.Element, ctx transformContext) {
	a := el.SelectAttr("points")
	if a == nil {
		return
	}
	fields := strings.FieldsFunc(a.Value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 || len(fields)%2 != 0 {
		return
	}
	pairs := make([]string, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, okX := number(fields[i])
		y, okY := number(fields[i+1])
		if !okX || !okY {
			return
		}
		pairs = append(pairs, pathdata.FormatNumber(x*ctx.scale+ctx.offsetX)+","+pathdata.FormatNumber(y*ctx.scale+ctx.offsetY))
	}
	a.Value = strings.Join(pairs, " ")
}

// transformTranslation scales translation arguments of matrix() and
// translate() functions in transform attribute value.
func transformTranslation(value string, scale float64) string {
	if scale == 1 {
		return value
	}
	var b strings.Builder
	last := 0
	for _, m := range transformRe.FindAllStringSubmatchIndex(value, -1) {
		tx, okX := number(value[m[4]:m[5]])
		ty, okY := number(value[m[8]:m[9]])
		if !okX || !okY {
			continue
		}
		b.WriteString(value[last:m[0]])
		b.WriteString(value[m[2]:m[3]])
		b.WriteString(pathdata.FormatNumber(tx * scale))
		b.WriteString(value[m[6]:m[7]])
		b.WriteString(pathdata.FormatNumber(ty * scale))
		b.WriteByte(')')
		last = m[1]
	}
	b.WriteString(value[last:])
	return b.String()
}

// parseViewBox expects exactly 4 numbers separated by whitespace and/or comma,
// height must be positive.
func parseViewBox(s string) ([4]float64, error) {
	var box [4]float64
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return box, fmt.Errorf("%w: %q", ErrViewBox, s)
	}
	for i, f := range fields {
		v, ok := number(f)
		if !ok {
			return box, fmt.Errorf("%w: %q", ErrViewBox, s)
		}
		box[i] = v
	}
	if box[3] <= 0 {
		return box, fmt.Errorf("%w: height must be positive: %q", ErrViewBox, s)
	}
	return box, nil
}

// number parses s as a single number, surrounding whitespace is allowed.
func number(s string) (float64, bool) {
	b := []byte(strings.TrimSpace(s))
	if len(b) == 0 {
		return 0, false
	}
	v, n := strconv.ParseFloat(b)
	if n != len(b) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// leadingNumber parses number at the start of s ignoring anything after it:
// "24px" gives 24.
func leadingNumber(s string) (float64, bool) {
	b := []byte(strings.TrimSpace(s))
	if len(b) == 0 {
		return 0, false
	}
	v, n := strconv.ParseFloat(b)
	if n == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// round4 rounds half up to 4 decimal places.
func round4(v float64) float64 {
	return math.Floor(v*1e4+0.5) / 1e4
}
