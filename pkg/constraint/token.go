package constraint

import (
	"fmt"
	"math/big"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokIdent:
		return "coordinate"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

type token struct {
	kind tokenKind
	text string
	num  *big.Rat
	pos  int // byte offset in the full constraint string
}

// lex splits one side of a relation into tokens. base is the byte offset of
// src inside the full constraint string and is only used for positions.
func lex(src string, base int) ([]token, *SyntaxError) {
	var toks []token
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", pos: base + i})
			i++
		case ch == '-':
			toks = append(toks, token{kind: tokMinus, text: "-", pos: base + i})
			i++
		case ch == '*':
			toks = append(toks, token{kind: tokStar, text: "*", pos: base + i})
			i++
		case ch == '/':
			toks = append(toks, token{kind: tokSlash, text: "/", pos: base + i})
			i++
		case ch == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: base + i})
			i++
		case ch == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: base + i})
			i++
		case isDigit(ch) || ch == '.':
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '.' {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			text := src[start:i]
			if text == "." {
				return nil, &SyntaxError{Pos: base + start, Msg: "malformed number"}
			}
			n, ok := new(big.Rat).SetString(text)
			if !ok {
				return nil, &SyntaxError{Pos: base + start, Msg: fmt.Sprintf("malformed number %q", text)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n, pos: base + start})
		case isLetter(ch):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: base + start})
		default:
			return nil, &SyntaxError{Pos: base + i, Msg: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: base + len(src)})
	return toks, nil
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' }
