package decl

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over a flattened token tree
// ---------------------------------------------------------------------------

// SyntaxError collects every error found while reading declaration text.
type SyntaxError struct {
	Errors []string
}

func (e *SyntaxError) Error() string {
	if len(e.Errors) == 1 {
		return "decl: " + e.Errors[0]
	}
	return fmt.Sprintf("decl: %d errors: %s", len(e.Errors), strings.Join(e.Errors, "; "))
}

// Parser parses declaration tokens into items.
type Parser struct {
	toks   []Token
	pos    int
	errors []string
}

// NewParser creates a parser over a flat token list.
func NewParser(toks []Token) *Parser {
	return &Parser{toks: toks}
}

// Parse lexes and parses declaration source.
func Parse(input string) ([]Item, error) {
	trees, err := LexTrees(input)
	if err != nil {
		return nil, err
	}
	return ParseTrees(trees)
}

// ParseTrees parses an (already normalized) token tree.
func ParseTrees(trees []Tree) ([]Item, error) {
	p := NewParser(Flatten(trees))
	items := p.ParseItems()
	if !p.curType(TokenEOF) {
		p.errorf("unexpected %s at top level", p.cur())
	}
	if len(p.errors) > 0 {
		return nil, &SyntaxError{Errors: p.errors}
	}
	return items, nil
}

func (p *Parser) cur() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	var pos Position
	if len(p.toks) > 0 {
		pos = p.toks[len(p.toks)-1].Pos
	}
	return Token{Type: TokenEOF, Pos: pos}
}

func (p *Parser) next() Token {
	tok := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) curIs(lit string) bool {
	return p.cur().Is(lit)
}

func (p *Parser) curType(t TokenType) bool {
	return p.cur().Type == t
}

// expect consumes a token spelled lit, otherwise records an error.
func (p *Parser) expect(lit string) bool {
	if p.curIs(lit) {
		p.next()
		return true
	}
	p.errorf("expected %q, got %s", lit, p.cur())
	return false
}

func (p *Parser) expectType(t TokenType) bool {
	if p.curType(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s", t, p.cur())
	return false
}

func (p *Parser) expectIdent() string {
	tok := p.cur()
	if tok.Type != TokenIdent {
		p.errorf("expected identifier, got %s", tok)
		return ""
	}
	p.next()
	return tok.Literal
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.cur().Pos.Line, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// recover skips to just past the next top-level ';' or closing brace.
func (p *Parser) recover() {
	depth := 0
	for !p.curType(TokenEOF) {
		tok := p.next()
		switch tok.Type {
		case TokenLBrace, TokenLParen, TokenLBracket:
			depth++
		case TokenRBrace, TokenRParen, TokenRBracket:
			depth--
			if depth < 0 || (depth == 0 && tok.Type == TokenRBrace) {
				return
			}
		case TokenPunct:
			if tok.Literal == ";" && depth == 0 {
				return
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// ParseItems parses items until EOF or an unmatched closing brace.
func (p *Parser) ParseItems() []Item {
	var items []Item
	for !p.curType(TokenEOF) && !p.curType(TokenRBrace) {
		start, errCount := p.pos, len(p.errors)
		item, ok := p.parseItem()
		if len(p.errors) > errCount {
			p.pos = start
			p.recover()
			continue
		}
		if ok {
			items = append(items, item)
		}
	}
	return items
}

func (p *Parser) parseItem() (Item, bool) {
	for p.curIs("pub") {
		p.next()
	}
	tok := p.cur()
	if tok.Type != TokenIdent {
		p.errorf("expected declaration, got %s", tok)
		return Item{}, false
	}
	p.next()
	item := Item{Pos: tok.Pos}

	switch tok.Literal {
	case "mod":
		item.Kind = ItemModule
		item.Name = p.expectIdent()
		p.expectType(TokenLBrace)
		item.Items = p.ParseItems()
		p.expectType(TokenRBrace)
		p.optionalSemicolon()

	case "const":
		item.Kind = ItemConst
		item.Name = p.expectIdent()
		p.expect(":")
		item.Type = p.parseType()
		p.expect("=")
		item.Value = p.parseExpr()
		p.expect(";")

	case "struct", "union":
		item.Kind = ItemStruct
		if tok.Literal == "union" {
			item.Kind = ItemUnion
		}
		item.Name = p.expectIdent()
		item.Fields = p.parseFields()
		p.optionalSemicolon()

	case "use":
		item.Kind = ItemUse
		item.Path = p.parsePath()
		if !p.curIs("as") {
			p.errorf("use without alias, got %s", p.cur())
			return Item{}, false
		}
		p.next()
		item.Name = p.expectIdent()
		p.expect(";")

	case "type":
		item.Kind = ItemType
		item.Name = p.expectIdent()
		p.expect("=")
		item.Type = p.parseType()
		p.expect(";")

	default:
		item.Kind = ItemOther
		item.Keyword = tok.Literal
		if p.curType(TokenIdent) {
			item.Name = p.cur().Literal
		}
		p.recover()
	}
	return item, true
}

func (p *Parser) optionalSemicolon() {
	if p.curIs(";") {
		p.next()
	}
}

func (p *Parser) parseFields() []Field {
	if !p.expectType(TokenLBrace) {
		return nil
	}
	var fields []Field
	for !p.curType(TokenRBrace) && !p.curType(TokenEOF) {
		for p.curIs("pub") {
			p.next()
		}
		name := p.expectIdent()
		p.expect(":")
		typ := p.parseType()
		if name == "" || typ == nil {
			return fields
		}
		fields = append(fields, Field{Name: name, Type: typ})
		if !p.curIs(",") {
			break
		}
		p.next()
	}
	p.expectType(TokenRBrace)
	return fields
}

func (p *Parser) parsePath() []string {
	if p.curIs("::") {
		p.next()
	}
	path := []string{p.expectIdent()}
	for p.curIs("::") {
		p.next()
		path = append(path, p.expectIdent())
	}
	return path
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func (p *Parser) parseType() Type {
	switch {
	case p.curIs("*"):
		p.next()
		mut := false
		switch {
		case p.curIs("mut"):
			mut = true
			p.next()
		case p.curIs("const"):
			p.next()
		default:
			p.errorf("expected const or mut after *, got %s", p.cur())
			return nil
		}
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		return &PointerType{Mut: mut, Elem: elem}

	case p.curIs("&"):
		p.next()
		if p.curIs("'") {
			p.next()
			p.expectIdent()
		}
		mut := false
		if p.curIs("mut") {
			mut = true
			p.next()
		}
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		return &PointerType{Mut: mut, Elem: elem}

	case p.curType(TokenLBracket):
		p.next()
		elem := p.parseType()
		p.expect(";")
		n := p.parseExpr()
		p.expectType(TokenRBracket)
		if elem == nil || n == nil {
			return nil
		}
		return &ArrayType{Elem: elem, Len: n}

	case p.curIs("fn"):
		p.next()
		return p.parseFnType()

	case p.curIs("unsafe") || p.curIs("extern"):
		// unsafe extern "C" fn(...) qualifiers carry no layout information
		p.next()
		if p.curType(TokenString) {
			p.next()
		}
		return p.parseType()

	case p.curType(TokenIdent) || p.curIs("::"):
		pt := &PathType{Segments: p.parsePath()}
		if p.curIs("<") {
			p.next()
			for {
				arg := p.parseType()
				if arg == nil {
					return nil
				}
				pt.Args = append(pt.Args, arg)
				if !p.curIs(",") {
					break
				}
				p.next()
			}
			p.expect(">")
		}
		return pt
	}
	p.errorf("expected type, got %s", p.cur())
	return nil
}

func (p *Parser) parseFnType() Type {
	if !p.expectType(TokenLParen) {
		return nil
	}
	fn := &FnType{}
	for !p.curType(TokenRParen) && !p.curType(TokenEOF) {
		var param Param
		if p.curType(TokenIdent) && p.peekAt(1).Is(":") {
			param.Name = p.next().Literal
			p.next()
		}
		param.Type = p.parseType()
		if param.Type == nil {
			return nil
		}
		fn.Params = append(fn.Params, param)
		if !p.curIs(",") {
			break
		}
		p.next()
	}
	p.expectType(TokenRParen)
	if p.curIs("->") {
		p.next()
		if p.curType(TokenLParen) && p.peekAt(1).Type == TokenRParen {
			p.next()
			p.next()
			return fn
		}
		fn.Result = p.parseType()
		if fn.Result == nil {
			return nil
		}
	}
	return fn
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryPrecedence = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4,
	">>": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
}

func (p *Parser) parseExpr() Expr {
	return p.parseBinary(1)
}

// binaryOp returns the operator at the cursor and how many tokens it spans.
// Shifts are two adjacent angle brackets.
func (p *Parser) binaryOp() (string, int) {
	tok := p.cur()
	if tok.Type != TokenPunct {
		return "", 0
	}
	if tok.Literal == "<" || tok.Literal == ">" {
		next := p.peekAt(1)
		if next.Literal == tok.Literal && next.Pos.Offset == tok.Pos.Offset+1 {
			return tok.Literal + tok.Literal, 2
		}
		return "", 0
	}
	if _, ok := binaryPrecedence[tok.Literal]; ok {
		return tok.Literal, 1
	}
	return "", 0
}

func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.parseUnary()
	for left != nil {
		op, width := p.binaryOp()
		prec, ok := binaryPrecedence[op]
		if op == "" || !ok || prec < minPrec {
			return left
		}
		p.pos += width
		right := p.parseBinary(prec + 1)
		if right == nil {
			return nil
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.curIs("-") || p.curIs("!") {
		op := p.next().Literal
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &Unary{Op: op, X: x}
	}
	e := p.parsePrimary()
	// casts carry no value information
	for e != nil && p.curIs("as") {
		p.next()
		p.parseType()
	}
	return e
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur()
	switch tok.Type {
	case TokenInt:
		p.next()
		return &IntLit{Text: trimIntSuffix(tok.Literal)}
	case TokenFloat:
		p.next()
		return &FloatLit{Text: trimFloatSuffix(tok.Literal)}
	case TokenString:
		p.next()
		return &StringLit{Value: tok.Literal}
	case TokenIdent:
		return &Ident{Path: p.parsePath()}
	case TokenLParen:
		p.next()
		x := p.parseExpr()
		p.expectType(TokenRParen)
		if x == nil {
			return nil
		}
		return &Paren{X: x}
	}
	p.errorf("expected expression, got %s", tok)
	return nil
}

var intSuffixes = []string{"usize", "isize", "u128", "i128", "u64", "i64", "u32", "i32", "u16", "i16", "u8", "i8"}

func trimIntSuffix(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	for _, suf := range intSuffixes {
		if strings.HasSuffix(s, suf) && len(s) > len(suf) {
			return s[:len(s)-len(suf)]
		}
	}
	return s
}

func trimFloatSuffix(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	for _, suf := range []string{"f32", "f64"} {
		if strings.HasSuffix(s, suf) && len(s) > len(suf) {
			return s[:len(s)-len(suf)]
		}
	}
	return s
}
