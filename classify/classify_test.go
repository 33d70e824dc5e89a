package classify

import (
	"errors"
	"testing"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
	"github.com/chazu/vkbind/defs"
	"github.com/chazu/vkbind/normalize"
)

func classifySource(t *testing.T, src string) *defs.Model {
	t.Helper()
	m, err := tryClassify(src)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return m
}

func tryClassify(src string) (*defs.Model, error) {
	d := config.VulkanDialect()
	trees, err := decl.LexTrees(src)
	if err != nil {
		return nil, err
	}
	items, err := decl.ParseTrees(normalize.New(d).Trees(trees))
	if err != nil {
		return nil, err
	}
	return New(d).Classify(items)
}

const sample = `
mod VkImageLayout {
    type Type = i32;
    const VK_IMAGE_LAYOUT_UNDEFINED: Type = 0;
    const VK_IMAGE_LAYOUT_GENERAL: Type = 1;
}
mod VkSurfaceTransformFlagBitsKHR {
    type Type = u32;
    const VK_SURFACE_TRANSFORM_IDENTITY_BIT_KHR: Type = 1;
}
mod VkImageViewType {
    type Type = i32;
    const VK_IMAGE_VIEW_TYPE_1D: Type = 0;
}
mod VkResult {
    type Type = i32;
    const VK_SUCCESS: Type = 0;
}
const VK_MAX_EXTENSION_NAME_SIZE: u32 = 256;
struct VkExtent2D { width: u32, height: u32 }
struct VkInstance_T { _unused: [u8; 0] }
union VkClearColorValue { float32: [f32; 4], uint32: [u32; 4] }
use self::VkImageLayout::Type as VkImageLayoutAlias;
use self::VkResult::Type as VkResult;
type VkInstance = *mut VkInstance_T;
type VkBuffer = NonDispatchableHandle;
type VkFlags = u32;
type VkBufferUsageFlags = VkFlags;
type VkSurfaceTransformFlagsKHR = VkFlags;
type PFN_vkCreateInstance = Option<unsafe extern "C" fn(pInstance: *mut VkInstance) -> VkResult::Type>;
type PFN_vkGetPhysicalDeviceProperties2KHR = PFN_vkCreateInstance;
type __uint32_t = u32;
struct VkHolder { pfnCallback: PFN_vkCreateInstance, transform: VkSurfaceTransformFlagBitsKHR::Type }
`

func TestClassifyKinds(t *testing.T) {
	m := classifySource(t, sample)
	counts := m.Counts()
	want := map[defs.Kind]int{
		defs.KindEnum:      5, // four modules and one placeholder
		defs.KindConst:     1,
		defs.KindStruct:    2,
		defs.KindUnion:     1,
		defs.KindFnPointer: 2,
		defs.KindTypeAlias: 4,
		defs.KindHandle:    2,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s count = %d, want %d", k, counts[k], n)
		}
	}
}

func TestEnumMembers(t *testing.T) {
	m := classifySource(t, sample)
	tests := []struct {
		enum    string
		members []string
		bitmask bool
	}{
		{"ImageLayout", []string{"UNDEFINED", "GENERAL"}, false},
		{"SurfaceTransformFlagBitsKhr", []string{"IDENTITY_BIT_KHR"}, true},
		{"ImageViewType", []string{"_1D"}, false},
		{"Result", []string{"SUCCESS"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.enum, func(t *testing.T) {
			e, ok := m.Enum(tt.enum)
			if !ok {
				t.Fatalf("enum %s missing", tt.enum)
			}
			if e.Bitmask != tt.bitmask {
				t.Errorf("Bitmask = %v, want %v", e.Bitmask, tt.bitmask)
			}
			if len(e.Members) != len(tt.members) {
				t.Fatalf("members = %+v", e.Members)
			}
			for i, name := range tt.members {
				if e.Members[i].Name != name {
					t.Errorf("member %d = %q, want %q", i, e.Members[i].Name, name)
				}
			}
		})
	}
}

func TestPlaceholderEnum(t *testing.T) {
	m := classifySource(t, sample)
	e, ok := m.Enum("BufferUsageFlagBits")
	if !ok {
		t.Fatal("placeholder enum missing")
	}
	if !e.Placeholder || !e.Bitmask || len(e.Members) != 0 || e.Type.String() != "u32" {
		t.Errorf("placeholder = %+v", e)
	}
	if _, ok := m.Enum("SurfaceTransformFlagBitsKhr"); !ok {
		t.Fatal("declared bit enum missing")
	}
	n := 0
	for _, e := range m.Enums {
		if e.Name == "SurfaceTransformFlagBitsKhr" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("declared bit enum duplicated by a placeholder")
	}
}

func TestTypeDeclarations(t *testing.T) {
	m := classifySource(t, sample)
	aliases := map[string]string{}
	for _, a := range m.Aliases {
		aliases[a.Name] = a.Target.String()
	}
	want := map[string]string{
		"ImageLayoutAlias":         "ImageLayout",
		"Flags":                    "u32",
		"BufferUsageFlags":         "BufferUsageFlagBits",
		"SurfaceTransformFlagsKhr": "SurfaceTransformFlagBitsKhr",
	}
	for name, target := range want {
		if aliases[name] != target {
			t.Errorf("alias %s -> %q, want %q", name, aliases[name], target)
		}
	}
	if _, ok := aliases["Result"]; ok {
		t.Error("an enum re-exported under its own name is not an alias")
	}
	if _, ok := aliases["__uint32_t"]; ok {
		t.Error("compiler-internal alias should be skipped")
	}

	handles := map[string]bool{}
	for _, h := range m.Handles {
		handles[h.Name] = h.Dispatchable
	}
	if d, ok := handles["Instance"]; !ok || !d {
		t.Error("Instance should be a dispatchable handle")
	}
	if d, ok := handles["Buffer"]; !ok || d {
		t.Error("Buffer should be a non-dispatchable handle")
	}
	for _, s := range m.Structs {
		if s.Name == "InstanceT" {
			t.Error("opaque struct should be dropped")
		}
	}
}

func TestFnPointers(t *testing.T) {
	m := classifySource(t, sample)
	byBase := m.FnPointersByBase()
	create, ok := byBase["CreateInstance"]
	if !ok {
		t.Fatalf("CreateInstance missing: %v", byBase)
	}
	if create.Raw != "PFN_vkCreateInstance" {
		t.Errorf("Raw = %q", create.Raw)
	}
	if got := create.Signature.Result.String(); got != "Result" {
		t.Errorf("result type = %q, want Type suffix trimmed", got)
	}
	if got := create.Signature.Params[0].Name; got != "p_instance" {
		t.Errorf("param name = %q", got)
	}

	alias, ok := byBase["GetPhysicalDeviceProperties2Khr"]
	if !ok {
		t.Fatal("function pointer alias not promoted")
	}
	if alias.Symbol("PFN_vk", "vk") != "vkGetPhysicalDeviceProperties2KHR" {
		t.Errorf("alias symbol = %q", alias.Symbol("PFN_vk", "vk"))
	}
}

func TestDeferredRename(t *testing.T) {
	m := classifySource(t, sample)
	var holder *defs.Struct
	for _, s := range m.Structs {
		if s.Name == "Holder" {
			holder = s
		}
	}
	if holder == nil {
		t.Fatal("Holder missing")
	}
	if got := holder.Members[0].Type.String(); got != "PfnCreateInstance" {
		t.Errorf("fn pointer field type = %q", got)
	}
	if got := holder.Members[1].Type.String(); got != "SurfaceTransformFlagBitsKhr" {
		t.Errorf("enum field type = %q", got)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"other item", "fn helper();"},
		{"module without type", "mod VkBad { const VK_A: u32 = 1; }"},
		{"module with struct", "mod VkBad { type Type = u32; struct VkX { a: u32 } }"},
		{"array alias", "type VkBad = [u32; 4];"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tryClassify(tt.src)
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *Error, got %v", err)
			}
		})
	}
}
