package asmctx

// StructMember is one field of a STRUCT/ENDSTRUCT block: its name, byte
// offset from the struct's base and its size (1 for "b", 2 for "w").
//
// The original Rust implementation keyed members by a HashMap, so
// emit_struct's member-by-member iteration order was whatever the hasher
// produced that run — a non-deterministic byte layout bug. Here members
// are kept as an ordered slice in declaration order instead, so emission
// order always matches the STRUCT block as written.
type StructMember struct {
	Name   string
	Offset int
	Size   int
}

// StructDef is a STRUCT declaration: its total size and ordered members.
type StructDef struct {
	Members []StructMember
	Size    int
}

// Member looks up a member by name.
func (s *StructDef) Member(name string) (StructMember, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return StructMember{}, false
}
