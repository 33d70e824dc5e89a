// Package decl reads the raw declaration stream produced by the header front
// end. Source text is lexed into a token tree, which the normalizer rewrites in
// place, and the tree is then parsed into one Item per top-level declaration.
package decl

import "fmt"

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdent  // VkResult, sType, u32
	TokenInt    // 42, 0x7FFFFFFF, 256usize
	TokenFloat  // 1000.0, 1.0f32
	TokenString // "VK_KHR_surface\0", b"..."

	// Operators and separators
	TokenPunct // : ; , = * < > - ! | & ^ + / :: ->

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenIdent:    "IDENT",
	TokenInt:      "INT",
	TokenFloat:    "FLOAT",
	TokenString:   "STRING",
	TokenPunct:    "PUNCT",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenLBrace:   "{",
	TokenRBrace:   "}",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position is a location in declaration source.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // raw text; decoded contents for strings
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Is reports whether the token is punctuation or an identifier spelled lit.
func (t Token) Is(lit string) bool {
	return (t.Type == TokenPunct || t.Type == TokenIdent) && t.Literal == lit
}

// closers maps an opening delimiter to its closing token type.
var closers = map[TokenType]TokenType{
	TokenLParen:   TokenRParen,
	TokenLBracket: TokenRBracket,
	TokenLBrace:   TokenRBrace,
}

var closerLiterals = map[TokenType]string{
	TokenRParen:   ")",
	TokenRBracket: "]",
	TokenRBrace:   "}",
}
