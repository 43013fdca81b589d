package css

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS declaration lists found in style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// ParseInline parses content of style attribute into ordered list of
// declarations. Malformed declarations are skipped, parsing stops on first
// grammar error.
func (p *Parser) ParseInline(style string) []Declaration {
	var decls []Declaration

	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.String("style", style), zap.Error(err))
			}
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := Declaration{Property: strings.ToLower(string(data))}
			if gt == css.CustomPropertyGrammar {
				// custom property names are case sensitive
				d.Property = string(data)
			}
			d.Value, d.Important = parseValue(parser.Values())
			if len(d.Value) == 0 {
				p.log.Debug("Skipping declaration without value", zap.String("property", d.Property))
				continue
			}
			decls = append(decls, d)
		}
	}
}

// parseValue joins value tokens collapsing whitespace and strips trailing
// "!important".
func parseValue(tokens []css.Token) (string, bool) {
	var (
		parts     []string
		important bool
	)
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.TokenType == css.DelimToken && string(t.Data) == "!":
			// "!" followed by (optional whitespace and) "important"
			j := i + 1
			for j < len(tokens) && tokens[j].TokenType == css.WhitespaceToken {
				j++
			}
			if j < len(tokens) && tokens[j].TokenType == css.IdentToken && strings.EqualFold(string(tokens[j].Data), "important") {
				important = true
				i = j
				continue
			}
			parts = append(parts, "!")
		case t.TokenType == css.WhitespaceToken:
			if len(parts) > 0 && parts[len(parts)-1] != " " {
				parts = append(parts, " ")
			}
		default:
			parts = append(parts, string(t.Data))
		}
	}
	return strings.TrimSpace(strings.Join(parts, "")), important
}
