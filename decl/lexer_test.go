package decl

import "testing"

func TestLexerTokens(t *testing.T) {
	input := `const VK_MAX: u32 = 256usize; type PFN_vkX = Option<fn(a: *const c_void) -> VkResult>; b"ab\0"`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenIdent, "const"},
		{TokenIdent, "VK_MAX"},
		{TokenPunct, ":"},
		{TokenIdent, "u32"},
		{TokenPunct, "="},
		{TokenInt, "256usize"},
		{TokenPunct, ";"},
		{TokenIdent, "type"},
		{TokenIdent, "PFN_vkX"},
		{TokenPunct, "="},
		{TokenIdent, "Option"},
		{TokenPunct, "<"},
		{TokenIdent, "fn"},
		{TokenLParen, "("},
		{TokenIdent, "a"},
		{TokenPunct, ":"},
		{TokenPunct, "*"},
		{TokenIdent, "const"},
		{TokenIdent, "c_void"},
		{TokenRParen, ")"},
		{TokenPunct, "->"},
		{TokenIdent, "VkResult"},
		{TokenPunct, ">"},
		{TokenPunct, ";"},
		{TokenString, "ab\x00"},
	}

	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(expected), toks)
	}
	for i, exp := range expected {
		if toks[i].Type != exp.typ || toks[i].Literal != exp.lit {
			t.Errorf("token %d = %s, want %s(%q)", i, toks[i], exp.typ, exp.lit)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"42", TokenInt},
		{"0x7FFFFFFF", TokenInt},
		{"0u32", TokenInt},
		{"1000.0", TokenFloat},
		{"1.0f32", TokenFloat},
		{"1e10", TokenFloat},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			if len(toks) != 1 || toks[0].Type != tt.typ || toks[0].Literal != tt.input {
				t.Errorf("Tokenize(%q) = %v, want single %s", tt.input, toks, tt.typ)
			}
		})
	}
}

func TestLexerComments(t *testing.T) {
	toks, err := Tokenize("// line\n/* block\n */ struct")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Literal != "struct" {
		t.Fatalf("got %v", toks)
	}
	if toks[0].Pos.Line != 3 {
		t.Errorf("line = %d, want 3", toks[0].Pos.Line)
	}
}

func TestLexerSkipsAttributes(t *testing.T) {
	src := "#![allow(non_camel_case_types)]\n#[repr(C)]\n#[derive(Debug, Copy, Clone)]\n#[doc = \"a ] b\"]\nstruct"
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Literal != "struct" {
		t.Fatalf("got %v", toks)
	}
	if toks[0].Pos.Line != 5 {
		t.Errorf("line = %d, want 5", toks[0].Pos.Line)
	}
}

func TestLexerError(t *testing.T) {
	if _, err := Tokenize("const X: u32 = 1 @"); err == nil {
		t.Error("expected error for unexpected character")
	}
	if _, err := Tokenize(`"unterminated`); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestBuildTreesRoundTrip(t *testing.T) {
	toks, err := Tokenize("mod A { const X: [u8; 2] = (1); }")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	trees, err := BuildTrees(toks)
	if err != nil {
		t.Fatalf("BuildTrees: %v", err)
	}
	if len(trees) != 3 || !trees[2].IsGroup() {
		t.Fatalf("expected mod, A, {group}; got %d trees", len(trees))
	}
	flat := Flatten(trees)
	if len(flat) != len(toks) {
		t.Fatalf("Flatten returned %d tokens, want %d", len(flat), len(toks))
	}
	for i := range toks {
		if flat[i] != toks[i] {
			t.Errorf("token %d = %s, want %s", i, flat[i], toks[i])
		}
	}
}

func TestBuildTreesUnbalanced(t *testing.T) {
	for _, input := range []string{"mod A {", "struct B }", "(]"} {
		if _, err := LexTrees(input); err == nil {
			t.Errorf("LexTrees(%q): expected error", input)
		}
	}
}

func TestMapIdents(t *testing.T) {
	trees, err := LexTrees("struct VkA { b: VkB }")
	if err != nil {
		t.Fatalf("LexTrees: %v", err)
	}
	mapped := MapIdents(trees, func(s string) string { return "<" + s + ">" })
	flat := Flatten(mapped)
	if flat[1].Literal != "<VkA>" || flat[3].Literal != "<b>" || flat[5].Literal != "<VkB>" {
		t.Errorf("identifiers not mapped: %v", flat)
	}
	if Flatten(trees)[1].Literal != "VkA" {
		t.Error("MapIdents modified its input")
	}
}
