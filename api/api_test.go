package api

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleAPI = `
[[scope]]
name = "VK_VERSION_1_0"
level = "instance"
core = true
commands = ["vkCreateDevice", "vkEnumeratePhysicalDevices", "vkCreateDevice"]

[[scope]]
name = "VK_KHR_swapchain"
level = "device"
commands = ["vkCreateSwapchainKHR"]
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleAPI))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Scopes) != 2 {
		t.Fatalf("scopes = %d", len(d.Scopes))
	}
	core := d.Scopes[0]
	if core.Level != Instance || !core.Core {
		t.Errorf("core scope = %+v", core)
	}
	want := []string{"vkCreateDevice", "vkEnumeratePhysicalDevices"}
	if !reflect.DeepEqual(core.Commands, want) {
		t.Errorf("commands = %v, want %v", core.Commands, want)
	}
	ext, ok := d.Scope("VK_KHR_swapchain")
	if !ok || ext.Core || ext.Level != Device {
		t.Errorf("extension scope = %+v", ext)
	}
}

func TestScopePerLevel(t *testing.T) {
	src := "[[scope]]\nname = \"V\"\nlevel = \"global\"\n[[scope]]\nname = \"V\"\nlevel = \"device\"\n"
	d, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("a version split over levels should parse: %v", err)
	}
	if len(d.Scopes) != 2 {
		t.Errorf("scopes = %+v", d.Scopes)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad level", "[[scope]]\nname = \"A\"\nlevel = \"queue\"\n"},
		{"missing name", "[[scope]]\nlevel = \"global\"\n"},
		{"duplicate", "[[scope]]\nname = \"A\"\n[[scope]]\nname = \"A\"\n"},
		{"unknown key", "[[scope]]\nname = \"A\"\nextra = 1\n"},
		{"syntax", "[[scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLevelText(t *testing.T) {
	for _, l := range Levels {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", l, err)
		}
		var back Level
		if err := back.UnmarshalText(text); err != nil || back != l {
			t.Errorf("round trip of %s gave %s, %v", l, back, err)
		}
	}
	if _, err := Level(7).MarshalText(); err == nil {
		t.Error("expected error for an invalid level")
	}
}

func TestLoadAndEncode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apis.toml")
	if err := os.WriteFile(path, []byte(sampleAPI), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Encode()): %v", err)
	}
	if !reflect.DeepEqual(d, back) {
		t.Errorf("encode round trip changed the description:\n%+v\n%+v", d, back)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
