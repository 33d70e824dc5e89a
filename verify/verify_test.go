package verify

import (
	"strings"
	"testing"
)

func TestSourceClean(t *testing.T) {
	pkg, problems, err := Source(map[string][]byte{
		"a.go": []byte("package demo\n\nimport \"unsafe\"\n\ntype T struct{ p unsafe.Pointer }\n"),
		"b.go": []byte("package demo\n\nfunc (t T) IsNull() bool { return t.p == nil }\n"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) > 0 {
		t.Fatalf("problems: %v", problems)
	}
	if pkg.Name() != "demo" || pkg.Scope().Lookup("T") == nil {
		t.Errorf("package = %v", pkg)
	}
}

func TestSourceAttributesProblems(t *testing.T) {
	src := `package demo

type Box struct{}

func (b *Box) Open() int {
	return "no"
}
`
	_, problems, err := Source(map[string][]byte{"box.go": []byte(src)})
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != 1 {
		t.Fatalf("problems = %v", problems)
	}
	p := problems[0]
	if p.Function != "Open" || p.Receiver != "*Box" || p.Line != 6 {
		t.Errorf("problem = %+v", p)
	}
	if !strings.Contains(p.String(), "(*Box).Open: ") {
		t.Errorf("String() = %q", p.String())
	}
}

func TestSourceParseError(t *testing.T) {
	_, problems, err := Source(map[string][]byte{"bad.go": []byte("package demo\nfunc {")})
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) == 0 {
		t.Fatal("expected a parse problem")
	}
	if Error(problems) == nil {
		t.Error("Error(problems) = nil")
	}
}

func TestSourceNoFiles(t *testing.T) {
	if _, _, err := Source(nil); err == nil {
		t.Error("expected an error")
	}
}

func TestErrorNil(t *testing.T) {
	if Error(nil) != nil {
		t.Error("Error(nil) != nil")
	}
}
