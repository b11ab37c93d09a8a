package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var errEmptyValue = errors.New("empty value")

// importance tracks "!important" at the end of value.
type importance int

const (
	noImportance importance = iota
	bangSeen                // "!" waiting for "important"
	important               // nothing but whitespace may follow
)

// ParseValue parses text in the context of a single declaration value. It
// fails on anything that cannot be a part of the value: bad strings or urls,
// unbalanced brackets, blocks, statement terminators and "!" not forming
// trailing "!important".
func ParseValue(text string) (Value, error) {
	l := css.NewLexer(parse.NewInputString(text))

	var (
		tokens []css.Token
		nested []css.TokenType
		prio   importance
	)
	for {
		tt, data := l.Next()
		if tt != css.ErrorToken && tt != css.WhitespaceToken && tt != css.CommentToken {
			switch prio {
			case bangSeen:
				if tt != css.IdentToken || !strings.EqualFold(string(data), "important") {
					return Value{}, fmt.Errorf("unexpected %q after '!' in value %q", data, text)
				}
				prio = important
				tokens = append(tokens, css.Token{TokenType: tt, Data: parse.Copy(data)})
				continue
			case important:
				return Value{}, fmt.Errorf("unexpected %q after '!important' in value %q", data, text)
			}
		}
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return Value{}, fmt.Errorf("unable to tokenize value: %w", err)
			}
			if prio == bangSeen {
				return Value{}, fmt.Errorf("dangling '!' in value %q", text)
			}
			if len(nested) > 0 {
				return Value{}, fmt.Errorf("unclosed %d bracket(s) in value %q", len(nested), text)
			}
			v := newValue(tokens)
			if v.IsEmpty() {
				return Value{}, errEmptyValue
			}
			return v, nil
		case css.BadStringToken, css.BadURLToken:
			return Value{}, fmt.Errorf("malformed token %q in value", data)
		case css.LeftBraceToken, css.RightBraceToken, css.CDOToken, css.CDCToken:
			return Value{}, fmt.Errorf("unexpected token %q in value", data)
		case css.SemicolonToken:
			if len(nested) == 0 {
				return Value{}, fmt.Errorf("unexpected ';' in value %q", text)
			}
		case css.DelimToken:
			if len(data) == 1 && data[0] == '!' {
				if len(nested) > 0 {
					return Value{}, fmt.Errorf("unexpected '!' inside brackets in value %q", text)
				}
				prio = bangSeen
			}
		case css.FunctionToken, css.LeftParenthesisToken:
			nested = append(nested, css.RightParenthesisToken)
		case css.LeftBracketToken:
			nested = append(nested, css.RightBracketToken)
		case css.RightParenthesisToken, css.RightBracketToken:
			if len(nested) == 0 || nested[len(nested)-1] != tt {
				return Value{}, fmt.Errorf("unbalanced %q in value %q", data, text)
			}
			nested = nested[:len(nested)-1]
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: parse.Copy(data)})
	}
}
