package optimize

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"trigo/utils/debug"
)

// Result of a single document optimization.
type Result struct {
	Markup string
	// ViewBox is reported by root handling passes, HasViewBox is false when
	// none of them did.
	ViewBox    string
	HasViewBox bool

	doc *etree.Document
}

// Build assembles pipeline for given options. Order of passes is fixed:
// title handling, color removal, geometry, attribute removal, minification
// set and finally either root unwrapping or dimensions normalization.
func Build(opts *Options, log *zap.Logger) (Pipeline, error) {
	var p Pipeline
	if opts.RemoveTitle {
		p = append(p, removeTitlePass(), keepTitlePass())
	}
	if opts.RemoveColor {
		p = append(p, removeColorPass())
	}
	if opts.Resize() {
		p = append(p, geometryPass(opts))
	}
	if len(opts.RemoveAttrs) > 0 {
		pass, err := removeAttrsPass(opts.RemoveAttrs)
		if err != nil {
			return nil, err
		}
		p = append(p, pass)
	}
	if opts.Min {
		p = append(p, minifyPasses(log)...)
	}
	switch {
	case opts.RemoveRoot:
		p = append(p, removeRootPass())
	case opts.Min:
		p = append(p, dimensionsToViewBoxPass())
	}
	return p, nil
}

// Optimize parses SVG source, runs assembled pipeline and renders markup.
// Any failure aborts the document, no partial result is returned.
func Optimize(src []byte, opts *Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pipeline, err := Build(opts, log)
	if err != nil {
		return nil, fmt.Errorf("unable to build pipeline: %w", err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if _, err := doc.ReadFrom(bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("unable to parse SVG: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("unable to parse SVG: no root element")
	}

	log.Debug("Running pipeline", zap.Strings("passes", pipeline.Names()))

	res := &Result{doc: doc}
	if res.ViewBox, res.HasViewBox, err = pipeline.Run(doc, log); err != nil {
		return nil, err
	}
	if res.Markup, err = doc.WriteToString(); err != nil {
		return nil, fmt.Errorf("unable to render SVG: %w", err)
	}
	if opts.Min {
		if res.Markup, err = compact(res.Markup); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Dump returns indented listing of the resulting document tree.
func (r *Result) Dump() string {
	tw := debug.NewTreeWriter()
	if r.doc != nil {
		dumpTokens(tw, 0, r.doc.Child)
	}
	return tw.String()
}

func dumpTokens(tw *debug.TreeWriter, depth int, tokens []etree.Token) {
	for _, t := range tokens {
		switch t := t.(type) {
		case *etree.Element:
			tw.Line(depth, "<%s>", t.FullTag())
			for _, a := range t.Attr {
				tw.Attr(depth+1, a.FullKey(), a.Value)
			}
			dumpTokens(tw, depth+1, t.Child)
		case *etree.CharData:
			if !t.IsWhitespace() {
				tw.TextBlock(depth, "#text", t.Data)
			}
		case *etree.Comment:
			tw.TextBlock(depth, "#comment", t.Data)
		case *etree.ProcInst:
			tw.TextBlock(depth, "#procinst", t.Target+" "+t.Inst)
		case *etree.Directive:
			tw.TextBlock(depth, "#directive", t.Data)
		}
	}
}
