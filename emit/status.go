package emit

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/vkbind/defs"
)

// statusMessages gives readable texts for well-known status codes. Codes
// not listed here get their member name in lower case.
var statusMessages = map[string]string{
	"SUCCESS":                                            "success",
	"NOT_READY":                                          "not ready",
	"TIMEOUT":                                            "operation timed out",
	"EVENT_SET":                                          "event signaled",
	"EVENT_RESET":                                        "event unsignaled",
	"INCOMPLETE":                                         "incomplete result",
	"ERROR_OUT_OF_HOST_MEMORY":                           "out of host memory",
	"ERROR_OUT_OF_DEVICE_MEMORY":                         "out of device memory",
	"ERROR_INITIALIZATION_FAILED":                        "initialization failed",
	"ERROR_DEVICE_LOST":                                  "device lost",
	"ERROR_MEMORY_MAP_FAILED":                            "memory map failed",
	"ERROR_LAYER_NOT_PRESENT":                            "layer not present",
	"ERROR_EXTENSION_NOT_PRESENT":                        "extension not present",
	"ERROR_FEATURE_NOT_PRESENT":                          "feature not present",
	"ERROR_INCOMPATIBLE_DRIVER":                          "incompatible driver",
	"ERROR_TOO_MANY_OBJECTS":                             "too many objects",
	"ERROR_FORMAT_NOT_SUPPORTED":                         "format not supported",
	"ERROR_FRAGMENTED_POOL":                              "fragmented object pool",
	"ERROR_OUT_OF_POOL_MEMORY":                           "object pool out of memory",
	"ERROR_INVALID_EXTERNAL_HANDLE":                      "invalid external handle",
	"ERROR_SURFACE_LOST_KHR":                             "surface lost",
	"ERROR_NATIVE_WINDOW_IN_USE_KHR":                     "native window in use",
	"SUBOPTIMAL_KHR":                                     "suboptimal swapchain",
	"ERROR_OUT_OF_DATE_KHR":                              "swapchain out of date",
	"ERROR_INCOMPATIBLE_DISPLAY_KHR":                     "incompatible display",
	"ERROR_VALIDATION_FAILED_EXT":                        "validation failed",
	"ERROR_INVALID_SHADER_NV":                            "invalid shader",
	"ERROR_FRAGMENTATION_EXT":                            "memory fragmentation",
	"ERROR_NOT_PERMITTED_EXT":                            "operation not permitted",
	"ERROR_INVALID_DRM_FORMAT_MODIFIER_PLANE_LAYOUT_EXT": "invalid DRM format modifier plane layout",
}

const unrecognizedStatus = "unrecognized status code"

// StatusMessage returns the Error() text for a status member.
func StatusMessage(member string) string {
	if msg, ok := statusMessages[member]; ok {
		return msg
	}
	text := strings.TrimPrefix(member, "ERROR_")
	return strings.ToLower(strings.ReplaceAll(text, "_", " "))
}

// statusMethods gives the status enum its success tests and makes it an
// error type.
func (g *bindingsGen) statusMethods(e *defs.Enum, values []enumValue) {
	recv := func() *jen.Statement { return jen.Id("r").Id(e.Name) }

	success := jen.Lit(0)
	for _, m := range e.Members {
		if m.Name == g.x.Dialect.StatusSuccess {
			success = jen.Id(MemberName(e, m))
		}
	}

	g.f.Comment("IsSuccess reports whether r is the success code.")
	g.f.Func().Params(recv()).Id("IsSuccess").Params().Bool().Block(
		jen.Return(jen.Id("r").Op("==").Add(success.Clone())),
	)
	g.f.Comment("IsError reports whether r is an error code.")
	g.f.Func().Params(recv()).Id("IsError").Params().Bool().Block(
		jen.Return(jen.Id("r").Op("<").Lit(0)),
	)
	g.f.Comment("IsStatus reports whether r is a non-error status other than success.")
	g.f.Func().Params(recv()).Id("IsStatus").Params().Bool().Block(
		jen.Return(jen.Id("r").Op(">").Lit(0)),
	)

	var cases []jen.Code
	seen := map[int64]bool{}
	for _, v := range values {
		if seen[v.v] {
			continue
		}
		seen[v.v] = true
		cases = append(cases, jen.Case(jen.Id(v.goName)).Block(jen.Return(jen.Lit(StatusMessage(v.raw)))))
	}
	cases = append(cases, jen.Default().Block(jen.Return(jen.Lit(unrecognizedStatus))))
	g.f.Func().Params(recv()).Id("Error").Params().String().Block(jen.Switch(jen.Id("r")).Block(cases...))

	g.f.Comment("Check returns nil on success and r itself otherwise.")
	g.f.Func().Params(recv()).Id("Check").Params().Error().Block(
		jen.If(jen.Id("r").Dot("IsSuccess").Call()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Id("r")),
	)
	g.f.Comment("CheckStatus separates non-error statuses from errors.")
	g.f.Func().Params(recv()).Id("CheckStatus").Params().Params(jen.Id(e.Name), jen.Error()).Block(
		jen.Switch().Block(
			jen.Case(jen.Id("r").Dot("IsSuccess").Call()).Block(jen.Return(jen.Lit(0), jen.Nil())),
			jen.Case(jen.Id("r").Dot("IsError").Call()).Block(jen.Return(jen.Lit(0), jen.Id("r"))),
		),
		jen.Return(jen.Id("r"), jen.Nil()),
	)
	g.f.Line()
}
