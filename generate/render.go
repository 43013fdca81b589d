// Package generate drives batch processing of SVG icons: optimizes every
// input and expands output template for it.
package generate

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"trigo/config"
	"trigo/optimize"
)

const (
	// DefaultTemplate is the template embedded configuration carries.
	DefaultTemplate       = "/** $markdown */\nexport const $name = $string"
	DefaultAccentColor    = "#D73A49"
	DefaultMarkdownHeight = "2em"
	// Separator is put between generated icons.
	Separator = "\n\n"
)

var (
	tokenRe        = regexp.MustCompile(`\$\w+`)
	quoteRe        = regexp.MustCompile("[`$]")
	nameRe         = regexp.MustCompile(`[-.](\w)`)
	currentColorRe = regexp.MustCompile(`(?i)"currentColor"`)
	rootTagRe      = regexp.MustCompile(`<svg(?:\s[^>]*)?/?>`)
	heightAttrRe   = regexp.MustCompile(`(\s)height="[^"]*"`)
)

// Input is a single icon to process.
type Input struct {
	// Path as it was specified, used for $path and $name.
	Path    string
	Content []byte
}

// Options for template rendering.
type Options struct {
	Optimize       optimize.Options
	Postfix        string
	NameStyle      config.NameStyle
	AccentColor    string
	MarkdownHeight string
}

// DefaultOptions returns options matching default configuration.
func DefaultOptions() Options {
	return Options{
		Optimize:       optimize.Options{Min: true},
		AccentColor:    DefaultAccentColor,
		MarkdownHeight: DefaultMarkdownHeight,
	}
}

// Icon is a processed input.
type Icon struct {
	Path   string
	Name   string
	Text   string
	Result *optimize.Result
	// Embed is standalone SVG used for $markdown.
	Embed string
	// Preview is Embed without forced height, suitable for rasterization.
	Preview string
}

// Render processes inputs in order and returns expanded template for each of
// them. First failure stops processing.
func Render(inputs []Input, tpl string, opts *Options, log *zap.Logger) ([]string, error) {
	icons, err := Process(inputs, tpl, opts, log)
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(icons))
	for _, icon := range icons {
		res = append(res, icon.Text)
	}
	return res, nil
}

// Process is Render keeping intermediate results.
func Process(inputs []Input, tpl string, opts *Options, log *zap.Logger) ([]*Icon, error) {
	if log == nil {
		log = zap.NewNop()
	}
	icons := make([]*Icon, 0, len(inputs))
	for _, in := range inputs {
		icon, err := ProcessOne(in, tpl, opts, log)
		if err != nil {
			return nil, fmt.Errorf("unable to process %s: %w", in.Path, err)
		}
		icons = append(icons, icon)
	}
	return icons, nil
}

// ProcessOne optimizes single input and expands template for it.
func ProcessOne(in Input, tpl string, opts *Options, log *zap.Logger) (*Icon, error) {
	res, err := optimize.Optimize(in.Content, &opts.Optimize, log.With(zap.String("icon", in.Path)))
	if err != nil {
		return nil, err
	}
	if res.HasViewBox {
		log.Debug("ViewBox captured", zap.String("icon", in.Path), zap.String("viewBox", res.ViewBox))
	}

	icon := &Icon{
		Path:    in.Path,
		Name:    Name(in.Path, opts.NameStyle) + opts.Postfix,
		Result:  res,
		Embed:   opts.embed(res),
		Preview: opts.standalone(res, ""),
	}
	icon.Text = tokenRe.ReplaceAllStringFunc(tpl, func(token string) string {
		switch token {
		case "$svg":
			return res.Markup
		case "$string":
			return Quote(res.Markup)
		case "$path":
			return in.Path
		case "$viewBox":
			return res.ViewBox
		case "$markdown":
			return "![" + stem(in.Path) + "](data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(icon.Embed)) + ")"
		case "$name":
			return icon.Name
		}
		return token
	})
	return icon, nil
}

// Quote makes template literal: backticks and dollar signs are escaped with
// backslash.
func Quote(s string) string {
	return "`" + quoteRe.ReplaceAllString(s, `\$0`) + "`"
}

// embed produces standalone SVG always carrying configured height and
// colored with accent color.
func (o *Options) embed(res *optimize.Result) string {
	height := o.MarkdownHeight
	if len(height) == 0 {
		height = DefaultMarkdownHeight
	}
	return o.standalone(res, height)
}

// standalone colors markup with accent color and wraps it into svg element
// when root was removed. Non empty height is forced on the root element.
func (o *Options) standalone(res *optimize.Result, height string) string {
	accent := o.AccentColor
	if len(accent) == 0 {
		accent = DefaultAccentColor
	}
	svg := currentColorRe.ReplaceAllLiteralString(res.Markup, `"`+accent+`"`)

	loc := rootTagRe.FindStringIndex(svg)
	if o.Optimize.RemoveRoot || loc == nil {
		var b strings.Builder
		b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
		if len(res.ViewBox) > 0 {
			b.WriteString(` viewBox="` + res.ViewBox + `"`)
		}
		if len(height) > 0 {
			b.WriteString(` height="` + height + `"`)
		}
		b.WriteString(` fill="` + accent + `">`)
		b.WriteString(svg)
		b.WriteString(`</svg>`)
		return b.String()
	}
	if len(height) == 0 {
		return svg
	}

	tag := svg[loc[0]:loc[1]]
	if m := heightAttrRe.FindStringSubmatchIndex(tag); m != nil {
		tag = tag[:m[3]] + `height="` + height + `"` + tag[m[1]:]
	} else {
		// right after element name, so self-closing slash stays last
		tag = `<svg height="` + height + `"` + tag[len("<svg"):]
	}
	return svg[:loc[0]] + tag + svg[loc[1]:]
}

// stem is base file name without extension.
func stem(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Name derives identifier from icon path using requested style. Default
// style upper-cases letter following "-" or "." and keeps everything else.
func Name(path string, style config.NameStyle) string {
	s := stem(path)
	if style == config.NameStyleDefault {
		return nameRe.ReplaceAllStringFunc(s, func(m string) string {
			return strings.ToUpper(m[1:])
		})
	}

	s = transliterate(s)
	switch style {
	case config.NameStyleCamel:
		return strcase.ToCamel(s)
	case config.NameStyleLowerCamel:
		return strcase.ToLowerCamel(s)
	case config.NameStyleSnake:
		return strcase.ToSnake(s)
	case config.NameStyleKebab:
		return strcase.ToKebab(s)
	}
	return s
}

// transliterate converts non-ASCII names to ASCII keeping capitalization,
// identifiers in generated sources are expected to be plain.
func transliterate(s string) string {
	ascii := true
	for _, r := range s {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	slug.Lowercase = false
	defer func() { slug.Lowercase = true }()
	return slug.Make(s)
}
