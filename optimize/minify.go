package optimize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/tdewolff/minify/v2"
	mcss "github.com/tdewolff/minify/v2/css"
	msvg "github.com/tdewolff/minify/v2/svg"
	"go.uber.org/zap"

	"trigo/css"
	"trigo/optimize/pathdata"
)

var (
	newlineBetweenRe = regexp.MustCompile(`(\S)\r?\n(\S)`)
	newlineRe        = regexp.MustCompile(`\r?\n`)
	spacesRe         = regexp.MustCompile(`\s{2,}`)
	rasterHrefRe     = regexp.MustCompile(`(\.|image/)(jpe?g|png|gif)`)

	// namespaces injected by various editors
	editorNamespaces = map[string]bool{
		"http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd":     true,
		"http://inkscape.sourceforge.net/DTD/sodipodi-0.dtd":     true,
		"http://www.inkscape.org/namespaces/inkscape":            true,
		"http://www.bohemiancoding.com/sketch/ns":                true,
		"http://ns.adobe.com/AdobeIllustrator/10.0/":             true,
		"http://ns.adobe.com/Graphs/1.0/":                        true,
		"http://ns.adobe.com/AdobeSVGViewerExtensions/3.0/":      true,
		"http://ns.adobe.com/Variables/1.0/":                     true,
		"http://ns.adobe.com/SaveForWeb/1.0/":                    true,
		"http://ns.adobe.com/Extensibility/1.0/":                 true,
		"http://ns.adobe.com/Flows/1.0/":                         true,
		"http://ns.adobe.com/ImageReplacement/1.0/":              true,
		"http://ns.adobe.com/GenericCustomNamespace/1.0/":        true,
		"http://ns.adobe.com/XPath/1.0/":                         true,
		"http://schemas.microsoft.com/visio/2003/SVGExtensions/": true,
		"http://taptrix.com/vectorillusions/svg":                 true,
		"http://www.figma.com/figma/ns":                          true,
		"http://purl.org/dc/elements/1.1/":                       true,
		"http://creativecommons.org/ns#":                         true,
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#":            true,
		"http://www.serif.com/":                                  true,
		"http://www.vector.evaxdesign.sk":                        true,
	}

	// conditional processing attributes are meaningful even when empty
	conditionalAttrs = map[string]bool{
		"requiredFeatures":   true,
		"requiredExtensions": true,
		"systemLanguage":     true,
	}

	containerElems = map[string]bool{
		"a": true, "defs": true, "g": true, "marker": true, "mask": true,
		"missing-glyph": true, "pattern": true, "switch": true, "symbol": true,
	}

	presentationAttrs = map[string]bool{
		"alignment-baseline": true, "baseline-shift": true, "clip": true, "clip-path": true,
		"clip-rule": true, "color": true, "color-interpolation": true,
		"color-interpolation-filters": true, "color-profile": true, "color-rendering": true,
		"cursor": true, "direction": true, "display": true, "dominant-baseline": true,
		"enable-background": true, "fill": true, "fill-opacity": true, "fill-rule": true,
		"filter": true, "flood-color": true, "flood-opacity": true, "font-family": true,
		"font-size": true, "font-size-adjust": true, "font-stretch": true, "font-style": true,
		"font-variant": true, "font-weight": true, "glyph-orientation-horizontal": true,
		"glyph-orientation-vertical": true, "image-rendering": true, "letter-spacing": true,
		"lighting-color": true, "marker-end": true, "marker-mid": true, "marker-start": true,
		"mask": true, "opacity": true, "overflow": true, "paint-order": true,
		"pointer-events": true, "shape-rendering": true, "stop-color": true,
		"stop-opacity": true, "stroke": true, "stroke-dasharray": true,
		"stroke-dashoffset": true, "stroke-linecap": true, "stroke-linejoin": true,
		"stroke-miterlimit": true, "stroke-opacity": true, "stroke-width": true,
		"text-anchor": true, "text-decoration": true, "text-overflow": true,
		"text-rendering": true, "transform": true, "transform-origin": true,
		"unicode-bidi": true, "vector-effect": true, "visibility": true,
		"word-spacing": true, "writing-mode": true,
	}
)

// minifyPasses returns fixed ordered set of cleanup passes. Numbers, colors,
// path data and whitespace are compacted later by compact when markup is
// rendered.
func minifyPasses(log *zap.Logger) Pipeline {
	return Pipeline{
		{Name: "cleanupAttrs", Kind: PerNode, Node: cleanupAttrs},
		{Name: "removeDoctype", Kind: WholeDocument, Document: removeDoctype},
		{Name: "removeXMLProcInst", Kind: WholeDocument, Document: removeXMLProcInst},
		{Name: "removeComments", Kind: WholeDocument, Document: removeComments},
		removeElementsPass("removeMetadata", func(el *etree.Element) bool { return el.Tag == "metadata" }),
		removeElementsPass("removeDesc", func(el *etree.Element) bool { return el.Tag == "desc" }),
		{Name: "removeEditorsNSData", Kind: WholeDocument, Document: removeEditorsNSData},
		{Name: "removeEmptyAttrs", Kind: PerNode, Node: removeEmptyAttrs},
		removeElementsPass("removeEmptyText", isEmptyText),
		convertStyleToAttrsPass(css.NewParser(log)),
		removeElementsPass("removeRasterImages", isRasterImage),
		{Name: "removeEmptyContainers", Kind: WholeDocument, Document: removeEmptyContainers},
		{Name: "removeDimensions", Kind: PerNode, Match: func(el *etree.Element) bool { return el.Tag == "svg" }, Node: removeDimensions},
	}
}

func removeElementsPass(name string, match func(*etree.Element) bool) Pass {
	return Pass{
		Name:  name,
		Kind:  PerNode,
		Match: match,
		Node: func(el *etree.Element) error {
			if p := el.Parent(); p != nil {
				p.RemoveChild(el)
			}
			return nil
		},
	}
}

func cleanupAttrs(el *etree.Element) error {
	for i := range el.Attr {
		v := newlineBetweenRe.ReplaceAllString(el.Attr[i].Value, "$1 $2")
		v = newlineRe.ReplaceAllString(v, "")
		el.Attr[i].Value = spacesRe.ReplaceAllString(v, " ")
	}
	return nil
}

func removeDoctype(doc *etree.Document) (string, bool, error) {
	for _, t := range append([]etree.Token(nil), doc.Child...) {
		if d, ok := t.(*etree.Directive); ok && strings.HasPrefix(strings.ToUpper(strings.TrimSpace(d.Data)), "DOCTYPE") {
			doc.RemoveChild(d)
		}
	}
	return "", false, nil
}

func removeXMLProcInst(doc *etree.Document) (string, bool, error) {
	for _, t := range append([]etree.Token(nil), doc.Child...) {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChild(pi)
		}
	}
	return "", false, nil
}

// removeComments drops all comments except ones starting with "!".
func removeComments(doc *etree.Document) (string, bool, error) {
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, t := range append([]etree.Token(nil), el.Child...) {
			switch t := t.(type) {
			case *etree.Comment:
				if !strings.HasPrefix(t.Data, "!") {
					el.RemoveChild(t)
				}
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(&doc.Element)
	return "", false, nil
}

// removeEditorsNSData drops namespace declarations of known editors together
// with elements and attributes in those namespaces.
func removeEditorsNSData(doc *etree.Document) (string, bool, error) {
	prefixes := make(map[string]bool)
	var collect func(el *etree.Element)
	collect = func(el *etree.Element) {
		kept := el.Attr[:0]
		for _, a := range el.Attr {
			if a.Space == "xmlns" && editorNamespaces[a.Value] {
				prefixes[a.Key] = true
				continue
			}
			kept = append(kept, a)
		}
		el.Attr = kept
		for _, child := range el.ChildElements() {
			collect(child)
		}
	}
	collect(&doc.Element)
	if len(prefixes) == 0 {
		return "", false, nil
	}

	var clean func(el *etree.Element)
	clean = func(el *etree.Element) {
		kept := el.Attr[:0]
		for _, a := range el.Attr {
			if !prefixes[a.Space] {
				kept = append(kept, a)
			}
		}
		el.Attr = kept
		for _, child := range el.ChildElements() {
			if prefixes[child.Space] {
				el.RemoveChild(child)
				continue
			}
			clean(child)
		}
	}
	clean(&doc.Element)
	return "", false, nil
}

func removeEmptyAttrs(el *etree.Element) error {
	kept := el.Attr[:0]
	for _, a := range el.Attr {
		if len(a.Value) == 0 && !conditionalAttrs[a.Key] {
			continue
		}
		kept = append(kept, a)
	}
	el.Attr = kept
	return nil
}

func isEmptyText(el *etree.Element) bool {
	switch el.Tag {
	case "text", "tspan":
		return len(el.Child) == 0
	case "tref":
		return el.SelectAttr("xlink:href") == nil
	}
	return false
}

// convertStyleToAttrsPass moves presentation properties from style attribute
// to attributes, important declarations stay in style.
func convertStyleToAttrsPass(parser *css.Parser) Pass {
	return Pass{
		Name:  "convertStyleToAttrs",
		Kind:  PerNode,
		Match: func(el *etree.Element) bool { return el.SelectAttr("style") != nil },
		Node: func(el *etree.Element) error {
			var rest []css.Declaration
			for _, d := range parser.ParseInline(el.SelectAttrValue("style", "")) {
				if d.Important || !presentationAttrs[d.Property] {
					rest = append(rest, d)
					continue
				}
				el.CreateAttr(d.Property, d.Value)
			}
			if len(rest) == 0 {
				el.RemoveAttr("style")
			} else {
				el.CreateAttr("style", css.Format(rest))
			}
			return nil
		},
	}
}

func isRasterImage(el *etree.Element) bool {
	if el.Tag != "image" {
		return false
	}
	href := el.SelectAttrValue("xlink:href", el.SelectAttrValue("href", ""))
	return rasterHrefRe.MatchString(href)
}

// removeEmptyContainers removes container elements without children, deepest
// first so containers which become empty are removed as well.
func removeEmptyContainers(doc *etree.Document) (string, bool, error) {
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			walk(child)
			if isEmptyContainer(child) {
				el.RemoveChild(child)
			}
		}
	}
	walk(&doc.Element)
	return "", false, nil
}

func isEmptyContainer(el *etree.Element) bool {
	if !containerElems[el.Tag] {
		return false
	}
	for _, t := range el.Child {
		if cd, ok := t.(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		return false
	}
	switch {
	case el.Tag == "pattern" && len(el.Attr) > 0:
		// may be referenced for its attributes
		return false
	case el.Tag == "mask" && el.SelectAttr("id") != nil:
		return false
	case el.Tag == "g" && el.SelectAttr("filter") != nil:
		return false
	}
	return true
}

// removeDimensions drops width and height when viewBox is present, otherwise
// plain numeric width and height are turned into viewBox.
func removeDimensions(el *etree.Element) error {
	if el.SelectAttr("viewBox") != nil {
		el.RemoveAttr("width")
		el.RemoveAttr("height")
		return nil
	}
	w, okW := number(el.SelectAttrValue("width", ""))
	h, okH := number(el.SelectAttrValue("height", ""))
	if !okW || !okH {
		return nil
	}
	el.RemoveAttr("width")
	el.RemoveAttr("height")
	el.CreateAttr("viewBox", "0 0 "+pathdata.FormatNumber(w)+" "+pathdata.FormatNumber(h))
	return nil
}

// compact minifies rendered markup.
func compact(markup string) (string, error) {
	m := minify.New()
	m.AddFunc("text/css", mcss.Minify)
	m.Add("image/svg+xml", &msvg.Minifier{})
	out, err := m.String("image/svg+xml", markup)
	if err != nil {
		return "", fmt.Errorf("unable to minify markup: %w", err)
	}
	return out, nil
}
