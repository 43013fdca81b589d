package optimize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"trigo/optimize/pathdata"
)

func removeColorPass() Pass {
	return Pass{
		Name: "removeColor",
		Kind: PerNode,
		Node: func(el *etree.Element) error {
			for _, name := range []string{"fill", "stroke"} {
				if a := el.SelectAttr(name); a != nil && strings.HasPrefix(a.Value, "#") {
					a.Value = "currentColor"
				}
			}
			return nil
		},
	}
}

func removeTitlePass() Pass {
	return Pass{
		Name:  "removeTitle",
		Kind:  PerNode,
		Match: func(el *etree.Element) bool { return el.Tag == "title" },
		Node: func(el *etree.Element) error {
			if p := el.Parent(); p != nil {
				p.RemoveChild(el)
			}
			return nil
		},
	}
}

// keepTitlePass turns title attribute into <title> child element so title
// text survives attribute cleanup.
func keepTitlePass() Pass {
	return Pass{
		Name:  "keepTitle",
		Kind:  PerNode,
		Match: func(el *etree.Element) bool { return el.SelectAttr("title") != nil },
		Node: func(el *etree.Element) error {
			title := el.SelectAttrValue("title", "")
			el.RemoveAttr("title")
			el.CreateElement("title").SetText(title)
			return nil
		},
	}
}

type attrPattern struct {
	elem, attr, value *regexp.Regexp
}

// compileAttrPattern accepts "attr", "elem:attr" and "elem:attr:value" forms,
// every part is anchored regular expression, "*" matches anything.
func compileAttrPattern(s string) (attrPattern, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		parts = []string{".*", parts[0], ".*"}
	case 2:
		parts = append(parts, ".*")
	case 3:
	default:
		return attrPattern{}, fmt.Errorf("malformed attribute pattern %q", s)
	}
	var res attrPattern
	for i, p := range parts {
		if p == "*" {
			p = ".*"
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return attrPattern{}, fmt.Errorf("malformed attribute pattern %q: %w", s, err)
		}
		switch i {
		case 0:
			res.elem = re
		case 1:
			res.attr = re
		case 2:
			res.value = re
		}
	}
	return res, nil
}

func removeAttrsPass(patterns []string) (Pass, error) {
	compiled := make([]attrPattern, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); len(p) == 0 {
			continue
		}
		ap, err := compileAttrPattern(p)
		if err != nil {
			return Pass{}, err
		}
		compiled = append(compiled, ap)
	}
	return Pass{
		Name: "removeAttrs",
		Kind: PerNode,
		Node: func(el *etree.Element) error {
			for _, ap := range compiled {
				if !ap.elem.MatchString(el.FullTag()) {
					continue
				}
				kept := el.Attr[:0]
				for _, a := range el.Attr {
					if ap.attr.MatchString(a.FullKey()) && ap.value.MatchString(a.Value) {
						continue
					}
					kept = append(kept, a)
				}
				el.Attr = kept
			}
			return nil
		},
	}, nil
}

// removeRootPass replaces single top level svg element with its children and
// reports original viewBox, if any.
func removeRootPass() Pass {
	return Pass{
		Name: "removeRoot",
		Kind: WholeDocument,
		Document: func(doc *etree.Document) (string, bool, error) {
			tokens := topLevel(doc)
			if len(tokens) != 1 {
				return "", false, nil
			}
			svg, ok := tokens[0].(*etree.Element)
			if !ok || svg.Tag != "svg" {
				return "", false, nil
			}
			viewBox := svg.SelectAttrValue("viewBox", "")

			idx := svg.Index()
			doc.RemoveChildAt(idx)
			for len(svg.Child) > 0 {
				doc.InsertChildAt(idx, svg.Child[0])
				idx++
			}
			return viewBox, len(viewBox) > 0, nil
		},
	}
}

// dimensionsToViewBoxPass converts pixel width and height of the root svg
// element without viewBox to equivalent viewBox and reports it.
func dimensionsToViewBoxPass() Pass {
	return Pass{
		Name: "dimensionsToViewBox",
		Kind: WholeDocument,
		Document: func(doc *etree.Document) (string, bool, error) {
			root := doc.Root()
			if root == nil || root.Tag != "svg" || root.SelectAttr("viewBox") != nil {
				return "", false, nil
			}
			w, h := root.SelectAttr("width"), root.SelectAttr("height")
			if w == nil || h == nil || !strings.HasSuffix(w.Value, "px") || !strings.HasSuffix(h.Value, "px") {
				return "", false, nil
			}
			width, okW := leadingNumber(strings.TrimSuffix(w.Value, "px"))
			height, okH := leadingNumber(strings.TrimSuffix(h.Value, "px"))
			if !okW || !okH {
				return "", false, nil
			}
			root.RemoveAttr("width")
			root.RemoveAttr("height")
			viewBox := "0 0 " + pathdata.FormatNumber(width) + " " + pathdata.FormatNumber(height)
			root.CreateAttr("viewBox", viewBox)
			return viewBox, true, nil
		},
	}
}
