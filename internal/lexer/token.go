// Package lexer provides a lossless token/trivia lexer for Solidity source.
package lexer

import (
	"fmt"

	"github.com/kpumuk/sol-weaver/internal/text"
)

// TokenKind identifies the syntactic category of a token.
type TokenKind uint8

// TokenKind values used by the Solidity lexer.
const (
	TokenError TokenKind = iota
	TokenEOF
	TokenIdentifier
	TokenKeyword
	TokenNumber
	TokenHexNumber
	TokenString
	TokenHexString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenError:
		return "Error"
	case TokenEOF:
		return "EOF"
	case TokenIdentifier:
		return "Identifier"
	case TokenKeyword:
		return "Keyword"
	case TokenNumber:
		return "Number"
	case TokenHexNumber:
		return "HexNumber"
	case TokenString:
		return "String"
	case TokenHexString:
		return "HexString"
	case TokenPunct:
		return "Punct"
	default:
		return fmt.Sprintf("TokenKind(%d)", k)
	}
}

// TokenFlags carry metadata about the token source or origin.
type TokenFlags uint8

// TokenFlags values describe token provenance.
const (
	TokenFlagMalformed TokenFlags = 1 << iota
	TokenFlagUnicode              // unicode"..." string prefix
)

// Has reports whether all bits in mask are set.
func (f TokenFlags) Has(mask TokenFlags) bool {
	return f&mask == mask
}

// Token is a lexed token with a source span and leading trivia.
type Token struct {
	Kind    TokenKind
	Span    text.Span
	Leading []Trivia
	Flags   TokenFlags
}

// Bytes returns the token bytes referenced by Span or nil if Span is invalid for src.
func (t Token) Bytes(src []byte) []byte {
	return bytesForSpan(src, t.Span)
}

// Text returns the token source text.
func (t Token) Text(src []byte) string {
	return string(bytesForSpan(src, t.Span))
}

// reserved words can never be used as identifiers. Contextual words such as
// "from", "revert", "fallback" or "global" stay identifiers.
var keywords = map[string]struct{}{
	"abstract": {}, "anonymous": {}, "as": {}, "assembly": {}, "break": {},
	"calldata": {}, "catch": {}, "constant": {}, "constructor": {}, "continue": {},
	"contract": {}, "delete": {}, "do": {}, "else": {}, "emit": {}, "enum": {},
	"event": {}, "external": {}, "false": {}, "for": {}, "function": {}, "if": {},
	"immutable": {}, "import": {}, "indexed": {}, "interface": {}, "internal": {},
	"is": {}, "library": {}, "mapping": {}, "memory": {}, "modifier": {}, "new": {},
	"override": {}, "payable": {}, "pragma": {}, "private": {}, "public": {},
	"pure": {}, "return": {}, "returns": {}, "storage": {}, "struct": {}, "true": {},
	"try": {}, "type": {}, "unchecked": {}, "using": {}, "view": {}, "virtual": {},
	"while": {},
}

// IsKeyword reports whether word is a reserved Solidity keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// punctuators ordered longest first so the scanner can take the longest match.
var punctuators = []string{
	">>>=",
	">>>", "<<=", ">>=", "...",
	"==", "!=", "<=", ">=", "<<", ">>", "&&", "||", "++", "--", "+=", "-=", "*=", "/=",
	"%=", "|=", "&=", "^=", "**", "=>", "->", ":=",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "?", ":", "=", "<", ">", "+", "-",
	"*", "/", "%", "&", "|", "^", "~", "!", "@",
}

func bytesForSpan(src []byte, sp text.Span) []byte {
	if !sp.IsValid() {
		return nil
	}
	if sp.End > text.ByteOffset(len(src)) {
		return nil
	}
	return src[sp.Start:sp.End]
}
