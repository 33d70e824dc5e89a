package decl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for declaration text
// ---------------------------------------------------------------------------

// Lexer tokenizes declaration source.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}
	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}
	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}
	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}
	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}
	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == ':':
		l.readChar()
		if l.ch == ':' {
			l.readChar()
			return Token{Type: TokenPunct, Literal: "::", Pos: pos}
		}
		return Token{Type: TokenPunct, Literal: ":", Pos: pos}

	case l.ch == '-':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return Token{Type: TokenPunct, Literal: "->", Pos: pos}
		}
		return Token{Type: TokenPunct, Literal: "-", Pos: pos}

	case l.ch == '"':
		return l.readString(pos)

	case l.ch == 'b' && l.peekChar() == '"':
		l.readChar()
		return l.readString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdent(pos)

	case strings.ContainsRune(";,=*<>!|&^+/.'", l.ch):
		ch := l.ch
		l.readChar()
		return Token{Type: TokenPunct, Literal: string(ch), Pos: pos}

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character: %c", ch), Pos: pos}
	}
}

// skipWhitespaceAndComments skips whitespace, // line comments and /* */ blocks.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '#' && (l.peekChar() == '[' || l.peekChar() == '!') {
			l.skipAttribute()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			continue
		}
		return
	}
}

// skipAttribute skips an outer #[...] or inner #![...] attribute, including
// nested brackets and string literals.
func (l *Lexer) skipAttribute() {
	l.readChar()
	if l.ch == '!' {
		l.readChar()
	}
	if l.ch != '[' {
		return
	}
	depth := 0
	for l.ch != 0 {
		switch l.ch {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				l.readChar()
				return
			}
		case '"':
			l.readChar()
			for l.ch != 0 && l.ch != '"' {
				if l.ch == '\\' {
					l.readChar()
				}
				l.readChar()
			}
		}
		l.readChar()
	}
}

func (l *Lexer) readIdent(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: pos}
}

// readNumber reads an integer or float literal including any type suffix.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	typ := TokenInt
	hex := l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X')
	if hex {
		l.readChar()
		l.readChar()
	}
	for {
		switch {
		case isDigit(l.ch) || l.ch == '_':
			l.readChar()
		case l.ch == '.' && !hex && isDigit(l.peekChar()):
			typ = TokenFloat
			l.readChar()
		case isLetter(l.ch):
			if !hex && (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '-') {
				typ = TokenFloat
				l.readChar()
			}
			if !hex && l.ch == 'f' {
				typ = TokenFloat
			}
			l.readChar()
		default:
			return Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
		}
	}
}

// readString reads a double-quoted literal; the Literal holds decoded bytes.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '0':
				sb.WriteByte(0)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"', '\'':
				sb.WriteRune(l.ch)
			case 'x':
				l.readChar()
				hi := l.ch
				l.readChar()
				b, ok := hexByte(hi, l.ch)
				if !ok {
					return Token{Type: TokenError, Literal: "bad \\x escape", Pos: pos}
				}
				sb.WriteByte(b)
			default:
				return Token{Type: TokenError, Literal: fmt.Sprintf("unknown escape \\%c", l.ch), Pos: pos}
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
}

func hexByte(hi, lo rune) (byte, bool) {
	h, ok1 := hexVal(hi)
	v, ok2 := hexVal(lo)
	return h<<4 | v, ok1 && ok2
}

func hexVal(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	}
	return 0, false
}

func isLetter(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens of input up to, not including, EOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var out []Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			return out, nil
		case TokenError:
			return nil, &SyntaxError{Errors: []string{fmt.Sprintf("line %d: %s", tok.Pos.Line, tok.Literal)}}
		}
		out = append(out, tok)
	}
}
