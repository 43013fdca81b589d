package optimize

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"trigo/optimize/pathdata"
)

func newTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func mustOptimize(t *testing.T, src string, opts *Options) *Result {
	t.Helper()
	res, err := Optimize([]byte(src), opts, newTestLogger(t))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	return res
}

func runPasses(t *testing.T, src string, p Pipeline) (string, string, bool) {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		t.Fatalf("ReadFromString() error = %v", err)
	}
	vb, ok, err := p.Run(doc, newTestLogger(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("WriteToString() error = %v", err)
	}
	return out, vb, ok
}

func TestRemoveColor_Idempotent(t *testing.T) {
	src := `<svg><path fill="#fff" stroke="red"/><circle stroke="#000" fill="currentColor"/><rect fill="none"/></svg>`
	want := `<svg><path fill="currentColor" stroke="red"/><circle stroke="currentColor" fill="currentColor"/><rect fill="none"/></svg>`
	opts := &Options{RemoveColor: true}

	once := mustOptimize(t, src, opts)
	if once.Markup != want {
		t.Fatalf("Optimize() = %q, want %q", once.Markup, want)
	}
	twice := mustOptimize(t, once.Markup, opts)
	if twice.Markup != once.Markup {
		t.Errorf("second run = %q, want %q", twice.Markup, once.Markup)
	}
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want string
	}{
		{
			name: "scale to height",
			src:  `<svg viewBox="0 0 48 24"><path d="M0 0h48v24H0z"/></svg>`,
			opts: Options{Height: 12},
			want: `<svg viewBox="0 0 24 12"><path d="M0 0h24v12h-24z"/></svg>`,
		},
		{
			name: "min width recenters",
			src:  `<svg viewBox="0 0 10 20"><rect x="0" y="0" width="10" height="20"/></svg>`,
			opts: Options{Height: 10, MinWidth: 8},
			want: `<svg viewBox="0 0 8 10"><rect x="1.5" y="0" width="5" height="10"/></svg>`,
		},
		{
			name: "viewBox origin and offsets",
			src:  `<svg viewBox="2 4 10 10"><circle cx="7" cy="9" r="5"/></svg>`,
			opts: Options{Height: 10, OffsetY: 1},
			want: `<svg viewBox="0 0 10 10"><circle cx="5" cy="6" r="5"/></svg>`,
		},
		{
			name: "comma separated viewBox",
			src:  `<svg viewBox="0,0,10,10"><line x1="1" y1="2" x2="3" y2="4"/></svg>`,
			opts: Options{Height: 20},
			want: `<svg viewBox="0 0 20 20"><line x1="2" y1="4" x2="6" y2="8"/></svg>`,
		},
		{
			name: "points",
			src:  `<svg viewBox="0 0 10 10"><polygon points="0,0 10,0 10,10"/><polyline points="1 1 2 2"/></svg>`,
			opts: Options{Height: 20},
			want: `<svg viewBox="0 0 20 20"><polygon points="0,0 20,0 20,20"/><polyline points="2,2 4,4"/></svg>`,
		},
		{
			name: "transform translation",
			src:  `<svg viewBox="0 0 10 10"><g transform="translate(5 5) rotate(45)"/><g transform="matrix(1 0 0 1 3 4)"/></svg>`,
			opts: Options{Height: 20},
			want: `<svg viewBox="0 0 20 20"><g transform="translate(10 10) rotate(45)"/><g transform="matrix(1 0 0 1 6 8)"/></svg>`,
		},
		{
			name: "dimensions without viewBox",
			src:  `<svg width="24px" height="48"><rect width="auto" height="48"/></svg>`,
			opts: Options{Height: 12},
			want: `<svg width="24px" height="48" viewBox="0 0 6 12"><rect width="auto" height="12"/></svg>`,
		},
		{
			name: "offset only keeps size",
			src:  `<svg viewBox="0 0 16 16"><path d="M1 1h2"/></svg>`,
			opts: Options{OffsetX: 2},
			want: `<svg viewBox="0 0 16 16"><path d="M3 1h2"/></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustOptimize(t, tt.src, &tt.opts)
			if res.Markup != tt.want {
				t.Errorf("Optimize() = %q, want %q", res.Markup, tt.want)
			}
			if res.HasViewBox {
				t.Errorf("Optimize() reported viewBox %q, geometry must not report", res.ViewBox)
			}
		})
	}
}

func TestGeometry_ScaleInvariant(t *testing.T) {
	tests := []struct {
		w0, h0, height, minWidth float64
	}{
		{24, 24, 16, 0},
		{30, 7, 16, 0},
		{7, 30, 16, 10},
		{1000, 333, 1, 0},
		{3, 9, 3, 3},
	}
	for _, tt := range tests {
		el := etree.NewElement("svg")
		el.CreateAttr("viewBox", "0 0 "+pathdata.FormatNumber(tt.w0)+" "+pathdata.FormatNumber(tt.h0))
		ctx, err := newTransformContext(el, &Options{Height: tt.height, MinWidth: tt.minWidth})
		if err != nil {
			t.Fatalf("newTransformContext() error = %v", err)
		}
		box, err := parseViewBox(el.SelectAttrValue("viewBox", ""))
		if err != nil {
			t.Fatalf("parseViewBox() error = %v", err)
		}
		if box[3] != tt.height {
			t.Errorf("%v: height = %v, want %v", tt, box[3], tt.height)
		}
		width := round4(tt.w0 * (tt.height / tt.h0))
		if width < tt.minWidth {
			if box[2] != tt.minWidth {
				t.Errorf("%v: width = %v, want %v", tt, box[2], tt.minWidth)
			}
			if want := (tt.minWidth - width) / 2; ctx.offsetX != want {
				t.Errorf("%v: offsetX = %v, want %v", tt, ctx.offsetX, want)
			}
		} else if box[2] != width {
			t.Errorf("%v: width = %v, want %v", tt, box[2], width)
		}
	}
}

func TestGeometry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target error
	}{
		{"short viewBox", `<svg viewBox="0 0 10"/>`, ErrViewBox},
		{"garbage viewBox", `<svg viewBox="a b c d"/>`, ErrViewBox},
		{"zero height viewBox", `<svg viewBox="0 0 10 0"/>`, ErrViewBox},
		{"bad path", `<svg viewBox="0 0 10 10"><path d="L1 1"/></svg>`, pathdata.ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Optimize([]byte(tt.src), &Options{Height: 16}, newTestLogger(t))
			if !errors.Is(err, tt.target) {
				t.Errorf("Optimize() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRemoveRoot(t *testing.T) {
	res := mustOptimize(t, `<svg viewBox="0 0 10 10"><g/></svg>`, &Options{RemoveRoot: true})
	if res.Markup != "<g/>" {
		t.Errorf("Markup = %q, want %q", res.Markup, "<g/>")
	}
	if !res.HasViewBox || res.ViewBox != "0 0 10 10" {
		t.Errorf("ViewBox = %q (%v), want %q", res.ViewBox, res.HasViewBox, "0 0 10 10")
	}

	t.Run("without viewBox", func(t *testing.T) {
		res := mustOptimize(t, "<svg>\n<path d=\"M0 0\"/><circle/></svg>\n", &Options{RemoveRoot: true})
		if want := "\n<path d=\"M0 0\"/><circle/>\n"; res.Markup != want {
			t.Errorf("Markup = %q, want %q", res.Markup, want)
		}
		if res.HasViewBox {
			t.Errorf("unexpected viewBox %q", res.ViewBox)
		}
	})

	t.Run("not single top level element", func(t *testing.T) {
		src := `<?xml version="1.0"?><svg viewBox="0 0 10 10"><g/></svg>`
		res := mustOptimize(t, src, &Options{RemoveRoot: true})
		if res.Markup != src {
			t.Errorf("Markup = %q, want %q", res.Markup, src)
		}
		if res.HasViewBox {
			t.Errorf("unexpected viewBox %q", res.ViewBox)
		}
	})
}

func TestDimensionsToViewBox(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		viewBx string
	}{
		{"pixels", `<svg width="24px" height="24px"><path/></svg>`, `<svg viewBox="0 0 24 24"><path/></svg>`, "0 0 24 24"},
		{"fractional", `<svg height="10.5px" width="7px"/>`, `<svg viewBox="0 0 7 10.5"/>`, "0 0 7 10.5"},
		{"has viewBox", `<svg width="24px" height="24px" viewBox="0 0 1 1"/>`, `<svg width="24px" height="24px" viewBox="0 0 1 1"/>`, ""},
		{"not pixels", `<svg width="24em" height="24px"/>`, `<svg width="24em" height="24px"/>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, vb, ok := runPasses(t, tt.src, Pipeline{dimensionsToViewBoxPass()})
			if out != tt.want {
				t.Errorf("markup = %q, want %q", out, tt.want)
			}
			if ok != (tt.viewBx != "") || vb != tt.viewBx {
				t.Errorf("viewBox = %q (%v), want %q", vb, ok, tt.viewBx)
			}
		})
	}
}

func TestDimensionsToViewBox_Minified(t *testing.T) {
	res := mustOptimize(t, `<svg width="24px" height="24px"><path d="M0 0h24v24H0z"/></svg>`, &Options{Min: true})
	if !res.HasViewBox || res.ViewBox != "0 0 24 24" {
		t.Errorf("ViewBox = %q (%v), want %q", res.ViewBox, res.HasViewBox, "0 0 24 24")
	}
	if !strings.Contains(res.Markup, `viewBox="0 0 24 24"`) {
		t.Errorf("Markup = %q, missing viewBox", res.Markup)
	}
	if strings.Contains(res.Markup, "width=") || strings.Contains(res.Markup, "height=") {
		t.Errorf("Markup = %q, dimensions must be removed", res.Markup)
	}
}

func TestTitle(t *testing.T) {
	src := `<svg><title>old</title><path title="Arrow"/></svg>`
	res := mustOptimize(t, src, &Options{RemoveTitle: true})
	if want := `<svg><path><title>Arrow</title></path></svg>`; res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
}

func TestRemoveAttrs(t *testing.T) {
	src := `<svg fill="red" data-a="x" data-b="y"><path fill="blue" stroke="red"/><circle stroke="red"/></svg>`
	res := mustOptimize(t, src, &Options{RemoveAttrs: []string{"fill", "path:stroke", "*:data-.*:x"}})
	if want := `<svg data-b="y"><path/><circle stroke="red"/></svg>`; res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}

	if _, err := Optimize([]byte(src), &Options{RemoveAttrs: []string{"a:b:c:d"}}, newTestLogger(t)); err == nil {
		t.Error("Optimize() expected error for malformed pattern")
	}
	if _, err := Optimize([]byte(src), &Options{RemoveAttrs: []string{"fill("}}, newTestLogger(t)); err == nil {
		t.Error("Optimize() expected error for malformed regular expression")
	}
}

func TestMinifyPasses(t *testing.T) {
	src := `<?xml version="1.0"?>` +
		`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">` +
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd" width="10" height="10" class="">` +
		`<!-- comment --><!--! keep -->` +
		`<metadata/><desc>d</desc><sodipodi:namedview/><g><g/></g>` +
		`<path sodipodi:type="arc" style="fill:red;cursor-x:1;stroke:blue !important" d="M0 0"/>` +
		`<image href="a.png"/><text/>` +
		`</svg>`
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
		`<!--! keep -->` +
		`<path style="cursor-x:1;stroke:blue!important" d="M0 0" fill="red"/>` +
		`</svg>`

	out, _, ok := runPasses(t, src, minifyPasses(newTestLogger(t)))
	if out != want {
		t.Errorf("markup =\n%s\nwant\n%s", out, want)
	}
	if ok {
		t.Error("minification passes must not report viewBox")
	}
}

func TestCleanupAttrs(t *testing.T) {
	out, _, _ := runPasses(t, "<svg class=\"a\nb   c\n\"/>", Pipeline{{Name: "cleanupAttrs", Kind: PerNode, Node: cleanupAttrs}})
	if want := `<svg class="a b c"/>`; out != want {
		t.Errorf("markup = %q, want %q", out, want)
	}
}

func TestOptimize_Minified(t *testing.T) {
	src := "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 24 24\" width=\"24\" height=\"24\">\n" +
		"  <!-- icon -->\n  <path d=\"M 0 0 L 10 10\"/>\n</svg>\n"
	res := mustOptimize(t, src, &Options{Min: true})
	if strings.Contains(res.Markup, "\n") || strings.Contains(res.Markup, "icon") {
		t.Errorf("Markup = %q, expected compact output", res.Markup)
	}
	if strings.Contains(res.Markup, "width=") {
		t.Errorf("Markup = %q, width must be removed", res.Markup)
	}
	if !strings.Contains(res.Markup, "<path") {
		t.Errorf("Markup = %q, path is missing", res.Markup)
	}
	if res.HasViewBox {
		t.Errorf("unexpected viewBox %q", res.ViewBox)
	}

	dump := res.Dump()
	for _, want := range []string{"<svg>\n", "  @viewBox=\"0 0 24 24\"\n", "  <path>\n"} {
		if !strings.Contains(dump, want) {
			t.Errorf("Dump() = %q, missing %q", dump, want)
		}
	}
}

func TestOptimize_ParseError(t *testing.T) {
	for _, src := range []string{"", "plain text", "<svg"} {
		if _, err := Optimize([]byte(src), &Options{Min: true}, nil); err == nil {
			t.Errorf("Optimize(%q) expected error", src)
		}
	}
}

func TestBuild_Order(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		first []string
		last  string
	}{
		{
			name:  "everything",
			opts:  Options{Min: true, RemoveTitle: true, RemoveColor: true, RemoveRoot: true, RemoveAttrs: []string{"id"}, Height: 16},
			first: []string{"removeTitle", "keepTitle", "removeColor", "translate", "removeAttrs", "cleanupAttrs"},
			last:  "removeRoot",
		},
		{
			name:  "minify keeps root",
			opts:  Options{Min: true, OffsetX: 1},
			first: []string{"translate", "cleanupAttrs"},
			last:  "dimensionsToViewBox",
		},
		{
			name:  "root only",
			opts:  Options{RemoveRoot: true},
			first: []string{"removeRoot"},
			last:  "removeRoot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(&tt.opts, newTestLogger(t))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			names := p.Names()
			if len(names) < len(tt.first) || !slices.Equal(names[:len(tt.first)], tt.first) {
				t.Errorf("Build() = %v, want prefix %v", names, tt.first)
			}
			if names[len(names)-1] != tt.last {
				t.Errorf("Build() = %v, want last %q", names, tt.last)
			}
		})
	}

	p, err := Build(&Options{}, newTestLogger(t))
	if err != nil || len(p) != 0 {
		t.Errorf("Build(empty) = %v, %v, want no passes", p.Names(), err)
	}
}

func TestPipeline_FirstViewBoxWins(t *testing.T) {
	report := func(name, vb string) Pass {
		return Pass{Name: name, Kind: WholeDocument, Document: func(*etree.Document) (string, bool, error) {
			return vb, true, nil
		}}
	}
	_, vb, ok := runPasses(t, "<svg/>", Pipeline{report("a", "0 0 1 1"), report("b", "0 0 2 2")})
	if !ok || vb != "0 0 1 1" {
		t.Errorf("Run() viewBox = %q (%v), want %q", vb, ok, "0 0 1 1")
	}

	doc := etree.NewDocument()
	if _, _, err := (Pipeline{{Name: "broken", Kind: PerNode}}).Run(doc, newTestLogger(t)); err == nil {
		t.Error("Run() expected error for pass without handler")
	}
}
