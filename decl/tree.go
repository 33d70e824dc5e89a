package decl

import "fmt"

// Tree is one node of a token tree: either a leaf token or a delimited group.
// For groups, Token is the opening delimiter and Close the matching closer.
type Tree struct {
	Token    Token
	Close    Token
	Children []Tree
}

// IsGroup reports whether the node is a delimited group.
func (t Tree) IsGroup() bool {
	_, ok := closers[t.Token.Type]
	return ok
}

// LexTrees tokenizes input and nests the tokens by delimiter.
func LexTrees(input string) ([]Tree, error) {
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return BuildTrees(toks)
}

// BuildTrees nests a flat token list by delimiter.
func BuildTrees(toks []Token) ([]Tree, error) {
	b := &treeBuilder{toks: toks}
	trees, err := b.build(TokenEOF)
	if err != nil {
		return nil, err
	}
	return trees, nil
}

type treeBuilder struct {
	toks []Token
	pos  int
}

func (b *treeBuilder) build(until TokenType) ([]Tree, error) {
	var out []Tree
	for b.pos < len(b.toks) {
		tok := b.toks[b.pos]
		b.pos++
		if tok.Type == until {
			return out, nil
		}
		if closeType, ok := closers[tok.Type]; ok {
			children, err := b.build(closeType)
			if err != nil {
				return nil, err
			}
			closeTok := b.toks[b.pos-1]
			out = append(out, Tree{Token: tok, Close: closeTok, Children: children})
			continue
		}
		if _, isCloser := closerLiterals[tok.Type]; isCloser {
			return nil, &SyntaxError{Errors: []string{
				fmt.Sprintf("line %d: unbalanced %s", tok.Pos.Line, tok.Literal),
			}}
		}
		out = append(out, Tree{Token: tok})
	}
	if until != TokenEOF {
		return nil, &SyntaxError{Errors: []string{fmt.Sprintf("unclosed group, expected %s", closerLiterals[until])}}
	}
	return out, nil
}

// Flatten is the inverse of BuildTrees.
func Flatten(trees []Tree) []Token {
	var out []Token
	var walk func([]Tree)
	walk = func(ts []Tree) {
		for _, t := range ts {
			out = append(out, t.Token)
			if t.IsGroup() {
				walk(t.Children)
				out = append(out, t.Close)
			}
		}
	}
	walk(trees)
	return out
}

// MapIdents returns a copy of trees with every identifier passed through fn.
func MapIdents(trees []Tree, fn func(string) string) []Tree {
	out := make([]Tree, len(trees))
	for i, t := range trees {
		if t.Token.Type == TokenIdent {
			t.Token.Literal = fn(t.Token.Literal)
		}
		if t.IsGroup() {
			t.Children = MapIdents(t.Children, fn)
		}
		out[i] = t
	}
	return out
}
