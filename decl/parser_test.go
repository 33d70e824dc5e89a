package decl

import (
	"errors"
	"testing"
)

func TestParseItems(t *testing.T) {
	src := `
mod VkResult {
    type Type = i32;
    const VK_SUCCESS: Type = 0;
    const VK_ERROR_OUT_OF_HOST_MEMORY: Type = -1;
}
const VK_MAX_EXTENSION_NAME_SIZE: u32 = 256usize;
struct VkExtent2D { width: u32, height: u32, }
union VkClearColorValue { float32: [f32; 4], int32: [i32; 4] }
use self::VkResult::Type as VkResultAlias;
type VkInstance = *mut VkInstance_T;
type PFN_vkCreateInstance = Option<unsafe extern "C" fn(pCreateInfo: *const VkInstanceCreateInfo, pInstance: *mut VkInstance) -> VkResult::Type>;
fn not_a_declaration();
`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	kinds := []ItemKind{ItemModule, ItemConst, ItemStruct, ItemUnion, ItemUse, ItemType, ItemType, ItemOther}
	if len(items) != len(kinds) {
		t.Fatalf("got %d items, want %d", len(items), len(kinds))
	}
	for i, k := range kinds {
		if items[i].Kind != k {
			t.Errorf("item %d kind = %s, want %s", i, items[i].Kind, k)
		}
	}

	mod := items[0]
	if mod.Name != "VkResult" || len(mod.Items) != 3 {
		t.Fatalf("module = %+v", mod)
	}
	if mod.Items[0].Kind != ItemType || mod.Items[0].Name != "Type" || mod.Items[0].Type.String() != "i32" {
		t.Errorf("module type item = %+v", mod.Items[0])
	}
	if got := mod.Items[2].Value.String(); got != "-1" {
		t.Errorf("negative member value = %q", got)
	}

	if got := items[1].Value.String(); got != "256" {
		t.Errorf("suffix not trimmed: %q", got)
	}
	if len(items[2].Fields) != 2 || items[2].Fields[1].Name != "height" {
		t.Errorf("struct fields = %+v", items[2].Fields)
	}
	if got := items[3].Fields[0].Type.String(); got != "[f32; 4]" {
		t.Errorf("union member type = %q", got)
	}
	if got := items[4].Path; len(got) != 3 || got[1] != "VkResult" || items[4].Name != "VkResultAlias" {
		t.Errorf("use = %+v", items[4])
	}
	if ptr, ok := items[5].Type.(*PointerType); !ok || !ptr.Mut {
		t.Errorf("handle target = %s", items[5].Type)
	}

	fn, ok := OptionFn(items[6].Type)
	if !ok {
		t.Fatalf("expected Option<fn>, got %s", items[6].Type)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "pCreateInfo" {
		t.Errorf("params = %+v", fn.Params)
	}
	if fn.Result.String() != "VkResult::Type" {
		t.Errorf("result = %s", fn.Result)
	}
	if items[7].Keyword != "fn" || items[7].Name != "not_a_declaration" {
		t.Errorf("other item = %+v", items[7])
	}
}

func TestParseBindgenOutput(t *testing.T) {
	src := `
/* automatically generated by rust-bindgen */
#![allow(non_upper_case_globals)]
pub const VK_UUID_SIZE: u32 = 16;
#[repr(C)]
#[derive(Debug, Copy, Clone)]
pub struct VkExtent2D {
    pub width: u32,
    pub height: u32,
}
#[repr(C)]
#[derive(Copy, Clone)]
pub union VkClearColorValue {
    pub float32: [f32; 4usize],
    _bindgen_union_align: [u32; 4usize],
}
pub type VkFlags = u32;
`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	kinds := []ItemKind{ItemConst, ItemStruct, ItemUnion, ItemType}
	if len(items) != len(kinds) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(kinds), items)
	}
	for i, k := range kinds {
		if items[i].Kind != k {
			t.Errorf("item %d kind = %s, want %s", i, items[i].Kind, k)
		}
	}
	if len(items[1].Fields) != 2 || len(items[2].Fields) != 2 {
		t.Errorf("fields = %+v / %+v", items[1].Fields, items[2].Fields)
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 << 4", "1 << 4"},
		{"!0u64", "!0"},
		{"A | B & C", "A | B & C"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1000.0f32", "1000.0"},
		{"X as u32", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			items, err := Parse("const C: u32 = " + tt.src + ";")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := items[0].Value.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	items, err := Parse("const C: u32 = A | B & C;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bin, ok := items[0].Value.(*Binary)
	if !ok || bin.Op != "|" {
		t.Fatalf("expected | at the root, got %#v", items[0].Value)
	}
	if inner, ok := bin.Y.(*Binary); !ok || inner.Op != "&" {
		t.Errorf("& should bind tighter than |")
	}
}

func TestParseShiftNeedsAdjacency(t *testing.T) {
	if _, err := Parse("const C: u32 = 1 < < 2;"); err == nil {
		t.Error("expected error for separated angle brackets")
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(`
const A: u32 = ;
struct B { x u32 }
const C: u32 = 1;
`)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if len(syn.Errors) < 2 {
		t.Errorf("expected an error per bad item, got %v", syn.Errors)
	}
}

func TestTrimPathSuffix(t *testing.T) {
	typ := &PointerType{Elem: &PathType{Segments: []string{"VkResult", "Type"}}}
	got := TrimPathSuffix(typ, "Type").String()
	if got != "*const VkResult" {
		t.Errorf("TrimPathSuffix = %q", got)
	}
	single := TrimPathSuffix(Named("Type"), "Type").String()
	if single != "Type" {
		t.Errorf("single segment should be kept, got %q", single)
	}
}

func TestRenameTypes(t *testing.T) {
	typ := &ArrayType{Elem: Named("PFN_vkA"), Len: &IntLit{Text: "2"}}
	got := RenameTypes(typ, func(s string) string { return "X" + s }).String()
	if got != "[XPFN_vkA; 2]" {
		t.Errorf("RenameTypes = %q", got)
	}
}
