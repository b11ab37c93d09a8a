package css

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// charsetPattern matches @charset rule which per CSS syntax must be the very
// first thing in the stylesheet bytes.
var charsetPattern = regexp.MustCompile(`^@charset "([^"]*)";`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser parses CSS stylesheets into mutable rule trees.
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

// Parse parses CSS text into a Stylesheet. Parsing never fails, problems are
// reported in Stylesheet.Warnings and whatever was recognized is kept.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Rules:    NewRuleList(),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	data = p.decode(bytes.TrimPrefix(data, utf8BOM), sheet)

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	p.parseList(parser, sheet.Rules, sheet)

	if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
		sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
		p.log.Debug("CSS parse error", zap.Error(err))
	}
	return sheet
}

// decode converts stylesheet to UTF-8 if it declares another charset.
func (p *Parser) decode(data []byte, sheet *Stylesheet) []byte {
	m := charsetPattern.FindSubmatch(data)
	if m == nil {
		return data
	}
	name := string(m[1])
	enc, err := htmlindex.Get(name)
	if err != nil {
		sheet.Warnings = append(sheet.Warnings, "unknown charset: "+name)
		p.log.Debug("Unknown stylesheet charset, assuming UTF-8", zap.String("charset", name), zap.Error(err))
		return data
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return data
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		sheet.Warnings = append(sheet.Warnings, "unable to decode charset: "+name)
		p.log.Debug("Unable to decode stylesheet, assuming UTF-8", zap.String("charset", name), zap.Error(err))
		return data
	}
	sheet.Charset = name
	p.log.Debug("Decoded stylesheet", zap.String("charset", name))
	return decoded
}

// parseList reads grammar units into list until the end of the current block
// or end of input.
func (p *Parser) parseList(parser *css.Parser, list *RuleList, sheet *Stylesheet) {
	var selectors []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar, css.EndRulesetGrammar:
			return

		case css.CommentGrammar:
			// comments are not preserved

		case css.AtRuleGrammar:
			node := NewAtRule(string(data), tokensText(parser.Values()), false)
			if node.Name == "charset" && sheet.Charset != "" {
				// content was converted
				node.Prelude = `"UTF-8"`
			}
			list.Append(node)

		case css.BeginAtRuleGrammar:
			node := NewAtRule(string(data), tokensText(parser.Values()), true)
			list.Append(node)
			switch node.Name {
			case "media", "supports", "font-face", "page", "document", "keyframes":
				p.parseList(parser, node.Block, sheet)
			default:
				node.Raw = p.parseUnknownBlock(parser)
				p.log.Debug("Keeping unknown @-rule verbatim", zap.String("rule", node.Name))
			}

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, tokensText(parser.Values()))

		case css.BeginRulesetGrammar:
			selectors = append(selectors, tokensText(parser.Values()))
			node := &Node{Kind: RulesetNode, Prelude: strings.Join(selectors, ", "), Block: NewRuleList()}
			selectors = nil
			list.Append(node)
			p.parseList(parser, node.Block, sheet)

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			list.Append(&Node{
				Kind:     DeclarationNode,
				Property: strings.ToLower(string(data)),
				Value:    newValue(values),
			})

		case css.TokenGrammar:
			sheet.Warnings = append(sheet.Warnings, "unexpected token: "+string(data))
			p.log.Debug("Skipping unexpected token", zap.ByteString("token", data))
		}
	}
}

// parseUnknownBlock collects block content of an unknown @-rule as text.
func (p *Parser) parseUnknownBlock(parser *css.Parser) string {
	var sb strings.Builder
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return strings.TrimSpace(sb.String())
		default:
			sb.Write(data)
			if values := parser.Values(); len(values) > 0 {
				sb.WriteString(tokensText(values))
			}
		}
	}
}
