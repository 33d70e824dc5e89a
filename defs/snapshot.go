package defs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// snapshotVersion is bumped whenever the entry layout changes.
const snapshotVersion = 1

// cborEncMode uses canonical mode so identical models encode to identical
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("defs: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a flattened, serializable view of a Model.
type Snapshot struct {
	Version int     `cbor:"1,keyasint"`
	Entries []Entry `cbor:"2,keyasint"`
}

// Entry describes one definition. Detail holds one rendered line per
// member, field or parameter.
type Entry struct {
	Kind   Kind     `cbor:"1,keyasint"`
	Name   string   `cbor:"2,keyasint"`
	Detail []string `cbor:"3,keyasint,omitempty"`
}

// NewSnapshot flattens m in kind order, then declaration order.
func NewSnapshot(m *Model) *Snapshot {
	s := &Snapshot{Version: snapshotVersion}
	add := func(k Kind, name string, detail ...string) {
		s.Entries = append(s.Entries, Entry{Kind: k, Name: name, Detail: detail})
	}
	for _, e := range m.Enums {
		detail := []string{"type " + e.Type.String()}
		if e.Bitmask {
			detail = append(detail, "bitmask")
		}
		for _, mem := range e.Members {
			detail = append(detail, mem.Name+" = "+mem.Value.String())
		}
		add(KindEnum, e.Name, detail...)
	}
	for _, c := range m.Consts {
		add(KindConst, c.Name, c.Type.String(), c.Value.String())
	}
	for _, st := range m.Structs {
		add(KindStruct, st.Name, membersDetail(st.Members)...)
	}
	for _, u := range m.Unions {
		add(KindUnion, u.Name, membersDetail(u.Members)...)
	}
	for _, f := range m.FnPointers {
		add(KindFnPointer, f.BaseName, f.Raw, f.Signature.String())
	}
	for _, a := range m.Aliases {
		add(KindTypeAlias, a.Name, a.Target.String())
	}
	for _, h := range m.Handles {
		add(KindHandle, h.Name, fmt.Sprintf("dispatchable=%t", h.Dispatchable))
	}
	return s
}

func membersDetail(ms []Member) []string {
	out := make([]string, len(ms))
	for i, mem := range ms {
		out[i] = mem.Name + ": " + mem.Type.String()
	}
	return out
}

// MarshalSnapshot serializes a model snapshot to canonical CBOR bytes.
func MarshalSnapshot(m *Model) ([]byte, error) {
	return cborEncMode.Marshal(NewSnapshot(m))
}

// UnmarshalSnapshot deserializes a snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("defs: unmarshal snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("defs: snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	return &s, nil
}

// Digest returns the hex SHA-256 of the model's canonical snapshot.
func Digest(m *Model) (string, error) {
	data, err := MarshalSnapshot(m)
	if err != nil {
		return "", fmt.Errorf("defs: marshal snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
