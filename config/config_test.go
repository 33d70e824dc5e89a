package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[input]
declarations = "vk.decl"
registry = "vk.xml"
api-version = "1.2"

[output]
dir = "gen/vk"
loader = "dispatch.go"

[dialect]
status-enum = "StatusCode"
device-handle = "Owner"

[policy]
extensions = "strict"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Input.Declarations != "vk.decl" {
		t.Errorf("declarations = %q, want vk.decl", c.Input.Declarations)
	}
	if c.Input.APIVersion != "1.2" {
		t.Errorf("api-version = %q, want 1.2", c.Input.APIVersion)
	}
	if c.Output.Package != "vk" {
		t.Errorf("package = %q, want vk (from dir)", c.Output.Package)
	}
	if c.Output.Bindings != "bindings.go" || c.Output.Loader != "dispatch.go" {
		t.Errorf("output files = %q, %q", c.Output.Bindings, c.Output.Loader)
	}
	if c.Dialect.StatusEnum != "StatusCode" || c.Dialect.DeviceHandle != "Owner" {
		t.Errorf("dialect overrides lost: %+v", c.Dialect)
	}
	if c.Dialect.MixedPrefix != "vk" || c.Dialect.KindEnum != "StructureType" {
		t.Errorf("dialect defaults not applied: %+v", c.Dialect)
	}
	if c.Policy.Core != PolicyStrict || c.Policy.Extensions != PolicyStrict {
		t.Errorf("policy = %+v", c.Policy)
	}
	if want := filepath.Join(c.Dir, "gen/vk"); c.OutputDir() != want {
		t.Errorf("OutputDir = %q, want %q", c.OutputDir(), want)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "cannot read") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[input\n"},
		{"bad policy", "[policy]\ncore = \"sometimes\"\n"},
		{"both sources", "[input]\napis = \"a.toml\"\nregistry = \"vk.xml\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("[output]\npackage = \"vulkan\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if c == nil {
		t.Fatal("expected config to be found")
	}
	if c.Output.Package != "vulkan" {
		t.Errorf("package = %q, want vulkan", c.Output.Package)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Output.Dir != "vk" || c.Output.RuntimeImport != DefaultRuntimeImport {
		t.Errorf("unexpected defaults: %+v", c.Output)
	}
	if len(c.Dialect.VendorTags) == 0 {
		t.Error("expected vendor tags")
	}
	if c.Path("x") != "x" {
		t.Error("Path without Dir should be identity")
	}
}

func TestDialectVendorTagsCopied(t *testing.T) {
	d := VulkanDialect()
	d.VendorTags[0] = "Changed"
	if VulkanDialect().VendorTags[0] != "Img" {
		t.Error("VulkanDialect shares its vendor tag slice")
	}
}
