package defs

import (
	"testing"

	"github.com/chazu/vkbind/decl"
)

func sampleModel() *Model {
	m := &Model{}
	m.Add(&Enum{
		Name: "Result",
		Type: decl.Named("i32"),
		Members: []EnumMember{
			{Name: "SUCCESS", Raw: "SUCCESS", Value: &decl.IntLit{Text: "0"}},
		},
	})
	m.Add(&Struct{Name: "Extent2D", Members: []Member{
		{Name: "width", Type: decl.Named("u32")},
		{Name: "height", Type: decl.Named("u32")},
	}})
	m.Add(&FnPointer{
		BaseName:  "CreateInstance",
		Raw:       "PFN_vkCreateInstance",
		Signature: &decl.FnType{Result: decl.Named("Result")},
	})
	m.Add(&Handle{Name: "Instance", Dispatchable: true})
	return m
}

func TestModelAdd(t *testing.T) {
	m := sampleModel()
	counts := m.Counts()
	if counts[KindEnum] != 1 || counts[KindStruct] != 1 || counts[KindFnPointer] != 1 || counts[KindHandle] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := m.Enum("Result"); !ok {
		t.Error("Enum lookup failed")
	}
	if _, ok := m.FnPointersByBase()["CreateInstance"]; !ok {
		t.Error("FnPointersByBase lookup failed")
	}
}

func TestFnPointerNames(t *testing.T) {
	f := &FnPointer{BaseName: "GetPhysicalDeviceIdProperties", Raw: "PFN_vkGetPhysicalDeviceIDProperties"}
	tests := []struct {
		got, want string
	}{
		{f.FnName(), "FnGetPhysicalDeviceIdProperties"},
		{f.PfnName(), "PfnGetPhysicalDeviceIdProperties"},
		{f.SnakeName(), "get_physical_device_id_properties"},
		{f.Symbol("PFN_vk", "vk"), "vkGetPhysicalDeviceIDProperties"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}

	synthetic := &FnPointer{BaseName: "CreateWidget", Raw: "CreateWidget"}
	if got := synthetic.Symbol("PFN_wg", "wg"); got != "wgCreateWidget" {
		t.Errorf("Symbol without prefix = %q", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	data, err := MarshalSnapshot(sampleModel())
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	s, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if len(s.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(s.Entries))
	}
	first := s.Entries[0]
	if first.Kind != KindEnum || first.Name != "Result" || len(first.Detail) != 2 || first.Detail[1] != "SUCCESS = 0" {
		t.Errorf("enum entry = %+v", first)
	}
	if s.Entries[2].Detail[1] != "fn() -> Result" {
		t.Errorf("fn entry = %+v", s.Entries[2])
	}
}

func TestDigestDeterministic(t *testing.T) {
	a, err := Digest(sampleModel())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	b, err := Digest(sampleModel())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if a != b || len(a) != 64 {
		t.Errorf("digests %q and %q", a, b)
	}

	changed := sampleModel()
	changed.Handles[0].Dispatchable = false
	c, err := Digest(changed)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if c == a {
		t.Error("digest did not change with the model")
	}
}

func TestUnmarshalSnapshotErrors(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte{0xff}); err == nil {
		t.Error("expected decode error")
	}
	data, err := cborEncMode.Marshal(&Snapshot{Version: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalSnapshot(data); err == nil {
		t.Error("expected version error")
	}
}
