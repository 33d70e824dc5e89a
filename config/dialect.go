package config

// Dialect holds every naming heuristic of one registry: namespace prefixes,
// vendor tags and the sentinel names the classifier and emitters look for.
// Zero fields fall back to VulkanDialect.
type Dialect struct {
	MixedPrefix     string `toml:"mixed-prefix"`      // vkCreateInstance
	CamelPrefix     string `toml:"camel-prefix"`      // VkInstance
	ShoutyPrefix    string `toml:"shouty-prefix"`     // VK_SUCCESS
	FnPointerPrefix string `toml:"fn-pointer-prefix"` // PFN_vkCreateInstance

	VendorTags     []string `toml:"vendor-tags"`
	FlagBitsMarker string   `toml:"flag-bits-marker"`
	FlagsSuffix    string   `toml:"flags-suffix"`

	OpaqueSuffix            string `toml:"opaque-suffix"`
	NonDispatchableSentinel string `toml:"non-dispatchable-sentinel"`
	EnumTypeName            string `toml:"enum-type-name"`

	DiscriminatorField string `toml:"discriminator-field"`
	KindEnum           string `toml:"kind-enum"`
	StatusEnum         string `toml:"status-enum"`
	StatusSuccess      string `toml:"status-success"`

	InstanceHandle   string `toml:"instance-handle"`
	DeviceHandle     string `toml:"device-handle"`
	InstanceProcAddr string `toml:"instance-proc-addr"`
	DeviceProcAddr   string `toml:"device-proc-addr"`
}

// vendorTags are the author suffixes stripped before computing enum member
// prefixes. Order matters: the first matching suffix wins.
var vendorTags = []string{
	"Img", "Amd", "Amdx", "Arm", "Fsl", "Brcm", "Nxp", "Nv", "Nvx", "Viv",
	"Vsi", "Kdab", "Android", "Chromium", "Fuchsia", "Google", "Qcom",
	"Lunarg", "Samsung", "Sec", "Tizen", "Renderdoc", "Nn", "Mvk", "Khr",
	"Khx", "Ext", "Mesa",
}

// VulkanDialect returns the naming rules of the Khronos Vulkan registry.
func VulkanDialect() Dialect {
	return Dialect{
		MixedPrefix:     "vk",
		CamelPrefix:     "Vk",
		ShoutyPrefix:    "VK_",
		FnPointerPrefix: "PFN_vk",

		VendorTags:     append([]string(nil), vendorTags...),
		FlagBitsMarker: "FlagBits",
		FlagsSuffix:    "Flags",

		OpaqueSuffix:            "T",
		NonDispatchableSentinel: "NonDispatchableHandle",
		EnumTypeName:            "Type",

		DiscriminatorField: "s_type",
		KindEnum:           "StructureType",
		StatusEnum:         "Result",
		StatusSuccess:      "SUCCESS",

		InstanceHandle:   "Instance",
		DeviceHandle:     "Device",
		InstanceProcAddr: "vkGetInstanceProcAddr",
		DeviceProcAddr:   "vkGetDeviceProcAddr",
	}
}

// WithDefaults returns d with every empty field taken from VulkanDialect.
func (d Dialect) WithDefaults() Dialect {
	v := VulkanDialect()
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&d.MixedPrefix, v.MixedPrefix)
	fill(&d.CamelPrefix, v.CamelPrefix)
	fill(&d.ShoutyPrefix, v.ShoutyPrefix)
	fill(&d.FnPointerPrefix, v.FnPointerPrefix)
	if d.VendorTags == nil {
		d.VendorTags = v.VendorTags
	}
	fill(&d.FlagBitsMarker, v.FlagBitsMarker)
	fill(&d.FlagsSuffix, v.FlagsSuffix)
	fill(&d.OpaqueSuffix, v.OpaqueSuffix)
	fill(&d.NonDispatchableSentinel, v.NonDispatchableSentinel)
	fill(&d.EnumTypeName, v.EnumTypeName)
	fill(&d.DiscriminatorField, v.DiscriminatorField)
	fill(&d.KindEnum, v.KindEnum)
	fill(&d.StatusEnum, v.StatusEnum)
	fill(&d.StatusSuccess, v.StatusSuccess)
	fill(&d.InstanceHandle, v.InstanceHandle)
	fill(&d.DeviceHandle, v.DeviceHandle)
	fill(&d.InstanceProcAddr, v.InstanceProcAddr)
	fill(&d.DeviceProcAddr, v.DeviceProcAddr)
	return d
}
