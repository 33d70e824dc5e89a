package normalize

import (
	"reflect"
	"testing"

	"github.com/chazu/vkbind/config"
	"github.com/chazu/vkbind/decl"
)

func TestWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"sType", []string{"s", "Type"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"PhysicalDeviceIDProperties", []string{"Physical", "Device", "ID", "Properties"}},
		{"Extent2D", []string{"Extent2", "D"}},
		{"R8G8B8A8_UNORM", []string{"R8G8B8A8", "UNORM"}},
		{"_1D", []string{"1D"}},
		{"Instance_T", []string{"Instance", "T"}},
		{"float32", []string{"float32"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Words(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Words(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		input              string
		snake, camel, shty string
		lower              string
	}{
		{"pNext", "p_next", "PNext", "P_NEXT", "pNext"},
		{"CreateInstance", "create_instance", "CreateInstance", "CREATE_INSTANCE", "createInstance"},
		{"IMAGE_VIEW_TYPE_1D", "image_view_type_1d", "ImageViewType1D", "IMAGE_VIEW_TYPE_1D", "imageViewType1D"},
		{"p_create_info", "p_create_info", "PCreateInfo", "P_CREATE_INFO", "pCreateInfo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Snake(tt.input); got != tt.snake {
				t.Errorf("Snake(%q) = %q, want %q", tt.input, got, tt.snake)
			}
			if got := Camel(tt.input); got != tt.camel {
				t.Errorf("Camel(%q) = %q, want %q", tt.input, got, tt.camel)
			}
			if got := Shouty(tt.input); got != tt.shty {
				t.Errorf("Shouty(%q) = %q, want %q", tt.input, got, tt.shty)
			}
			if got := LowerCamel(tt.input); got != tt.lower {
				t.Errorf("LowerCamel(%q) = %q, want %q", tt.input, got, tt.lower)
			}
		})
	}
}

func TestIdent(t *testing.T) {
	n := New(config.VulkanDialect())
	tests := []struct {
		input    string
		expected string
	}{
		{"vkCreateInstance", "create_instance"},
		{"VkInstanceCreateInfo", "InstanceCreateInfo"},
		{"VkInstance_T", "InstanceT"},
		{"VkExtent2D", "Extent2D"},
		{"VK_STRUCTURE_TYPE_APPLICATION_INFO", "STRUCTURE_TYPE_APPLICATION_INFO"},
		{"VK_FORMAT_R8G8B8A8_UNORM", "FORMAT_R8G8B8A8_UNORM"},
		{"PFN_vkCreateInstance", "PFN_vkCreateInstance"},
		{"sType", "s_type"},
		{"pApplicationName", "p_application_name"},
		{"type_", "type_"},
		{"_unused", "_unused"},
		{"NonDispatchableHandle", "NonDispatchableHandle"},
		{"Option", "Option"},
		{"c_void", "c_void"},
		{"u32", "u32"},
		{"vk", "vk"},
		{"vkey", "vkey"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := n.Ident(tt.input); got != tt.expected {
				t.Errorf("Ident(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIdentIdempotent(t *testing.T) {
	n := New(config.VulkanDialect())
	inputs := []string{
		"vkCreateInstance", "vkGetPhysicalDeviceIDProperties", "VkPhysicalDeviceIDProperties",
		"VkImageViewType", "VK_IMAGE_VIEW_TYPE_1D", "VK_API_VERSION_1_0",
		"VK_MAX_EXTENSION_NAME_SIZE", "VkBufferUsageFlagBits", "VkSwapchainCreateInfoKHR",
		"VK_KHR_SURFACE_EXTENSION_NAME", "pfnAllocation", "ppEnabledLayerNames",
		"VkDeviceQueueCreateInfo", "VkClearColorValue", "float32", "ID", "VkOffset3D",
	}
	for _, in := range inputs {
		once := n.Ident(in)
		twice := n.Ident(once)
		if once != twice {
			t.Errorf("Ident not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDeferred(t *testing.T) {
	n := New(config.VulkanDialect())
	if got := n.Deferred("PFN_vkCreateInstance"); got != "PfnCreateInstance" {
		t.Errorf("Deferred = %q", got)
	}
	if got := n.Deferred("PfnCreateInstance"); got != "PfnCreateInstance" {
		t.Errorf("Deferred on renamed name = %q", got)
	}
	if got, ok := n.FnPointerBase("PFN_vkGetPhysicalDeviceIDProperties"); !ok || got != "GetPhysicalDeviceIdProperties" {
		t.Errorf("FnPointerBase = %q, %v", got, ok)
	}
	if got := n.CommandKey("vkGetPhysicalDeviceIDProperties"); got != "GetPhysicalDeviceIdProperties" {
		t.Errorf("CommandKey = %q", got)
	}
}

func TestCustomDialect(t *testing.T) {
	d := config.VulkanDialect()
	d.MixedPrefix, d.CamelPrefix, d.ShoutyPrefix, d.FnPointerPrefix = "wg", "Wg", "WG_", "PFN_wg"
	n := New(d)
	tests := map[string]string{
		"wgCreateWidget":             "create_widget",
		"WgWidgetUsageFlags":         "WidgetUsageFlags",
		"WG_WIDGET_USAGE_READ":       "WIDGET_USAGE_READ",
		"PFN_wgCreateWidget":         "PFN_wgCreateWidget",
		"VkLeftAlone":                "VkLeftAlone",
		"VK_STILL_SHOUTY_BUT_KEPT":   "VK_STILL_SHOUTY_BUT_KEPT",
		"vkIsJustSnakeCasedHereThen": "vk_is_just_snake_cased_here_then",
	}
	for in, want := range tests {
		if got := n.Ident(in); got != want {
			t.Errorf("Ident(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTrees(t *testing.T) {
	trees, err := decl.LexTrees("struct VkApplicationInfo { sType: VkStructureType }")
	if err != nil {
		t.Fatalf("LexTrees: %v", err)
	}
	items, err := decl.ParseTrees(New(config.VulkanDialect()).Trees(trees))
	if err != nil {
		t.Fatalf("ParseTrees: %v", err)
	}
	if items[0].Name != "ApplicationInfo" || items[0].Fields[0].Name != "s_type" ||
		items[0].Fields[0].Type.String() != "StructureType" {
		t.Errorf("unexpected item %+v", items[0])
	}
}
