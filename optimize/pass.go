package optimize

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// PassKind defines how pass is applied to the document.
type PassKind int

const (
	PerNode PassKind = iota
	WholeDocument
)

// Pass is a single named document rewrite. PerNode passes have Node called for
// every element accepted by Match (nil Match accepts everything) in document
// pre-order. WholeDocument passes have Document called once and may report
// viewBox of the result.
type Pass struct {
	Name     string
	Kind     PassKind
	Match    func(el *etree.Element) bool
	Node     func(el *etree.Element) error
	Document func(doc *etree.Document) (viewBox string, ok bool, err error)
}

// Pipeline is ordered list of passes.
type Pipeline []Pass

// Names returns pass names in execution order.
func (p Pipeline) Names() []string {
	names := make([]string, 0, len(p))
	for _, pass := range p {
		names = append(names, pass.Name)
	}
	return names
}

// Run applies all passes to the document in order. First viewBox reported by
// any pass is returned, later reports are ignored.
func (p Pipeline) Run(doc *etree.Document, log *zap.Logger) (viewBox string, ok bool, err error) {
	for _, pass := range p {
		var (
			vb       string
			reported bool
		)
		switch pass.Kind {
		case PerNode:
			if pass.Node == nil {
				return "", false, fmt.Errorf("pass %s has no node handler", pass.Name)
			}
			err = walkElements(&doc.Element, pass.Match, pass.Node)
		case WholeDocument:
			if pass.Document == nil {
				return "", false, fmt.Errorf("pass %s has no document handler", pass.Name)
			}
			vb, reported, err = pass.Document(doc)
		default:
			return "", false, fmt.Errorf("pass %s has unsupported kind %d", pass.Name, pass.Kind)
		}
		if err != nil {
			return "", false, fmt.Errorf("pass %s failed: %w", pass.Name, err)
		}
		if reported {
			if !ok {
				viewBox, ok = vb, true
				log.Debug("ViewBox captured", zap.String("pass", pass.Name), zap.String("viewBox", vb))
			} else {
				log.Debug("Ignoring repeated viewBox", zap.String("pass", pass.Name), zap.String("viewBox", vb))
			}
		}
	}
	return viewBox, ok, nil
}

// walkElements visits descendants of parent in pre-order. Children of an
// element are collected after its handler returns.
func walkElements(parent *etree.Element, match func(*etree.Element) bool, fn func(*etree.Element) error) error {
	for _, el := range parent.ChildElements() {
		if match == nil || match(el) {
			if err := fn(el); err != nil {
				return err
			}
		}
		if err := walkElements(el, match, fn); err != nil {
			return err
		}
	}
	return nil
}

// topLevel returns top level tokens of the document ignoring whitespace text.
func topLevel(doc *etree.Document) []etree.Token {
	var res []etree.Token
	for _, t := range doc.Child {
		if cd, ok := t.(*etree.CharData); ok && cd.IsWhitespace() {
			continue
		}
		res = append(res, t)
	}
	return res
}
