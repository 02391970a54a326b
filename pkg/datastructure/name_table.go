package datastructure

import "strings"

type NameID uint32

const EMPTY_NAMEID NameID = 0

// SuffixTable. street name suffixes that are dropped when deciding whether two names refer to the same street.
type SuffixTable struct {
	suffixes map[string]struct{}
}

var defaultSuffixes = []string{
	"n", "ne", "e", "se", "s", "sw", "w", "nw",
	"north", "east", "south", "west",
	"northeast", "southeast", "southwest", "northwest",
	"northbound", "eastbound", "southbound", "westbound",
	"nb", "eb", "sb", "wb",
	"inner", "outer",
	"utara", "timur", "selatan", "barat",
	"street", "st", "road", "rd", "avenue", "ave", "jalan", "jl",
}

func NewSuffixTable(suffixes []string) *SuffixTable {
	st := &SuffixTable{suffixes: make(map[string]struct{}, len(suffixes))}
	for _, s := range suffixes {
		st.suffixes[strings.ToLower(s)] = struct{}{}
	}
	return st
}

func NewDefaultSuffixTable() *SuffixTable {
	return NewSuffixTable(defaultSuffixes)
}

func (st *SuffixTable) IsSuffix(word string) bool {
	_, ok := st.suffixes[strings.ToLower(word)]
	return ok
}

func (st *SuffixTable) Suffixes() []string {
	suffixes := make([]string, 0, len(st.suffixes))
	for s := range st.suffixes {
		suffixes = append(suffixes, s)
	}
	return suffixes
}

/*
NameTable. street names interned to NameID. id 0 is always the empty name.

GetID mutates the table, it is only called while the graph is built. lookups afterwards are read only.
*/
type NameTable struct {
	names    []string
	ids      map[string]NameID
	suffixes *SuffixTable
}

func NewNameTable(suffixes *SuffixTable) *NameTable {
	return &NameTable{
		names:    []string{""},
		ids:      map[string]NameID{"": EMPTY_NAMEID},
		suffixes: suffixes,
	}
}

func (nt *NameTable) GetID(name string) NameID {
	if id, ok := nt.ids[name]; ok {
		return id
	}
	id := NameID(len(nt.names))
	nt.names = append(nt.names, name)
	nt.ids[name] = id
	return id
}

func (nt *NameTable) GetName(id NameID) string {
	if int(id) >= len(nt.names) {
		return ""
	}
	return nt.names[id]
}

func (nt *NameTable) Len() int {
	return len(nt.names)
}

func (nt *NameTable) GetSuffixTable() *SuffixTable {
	return nt.suffixes
}

/*
RequiresNameAnnounced. true if moving from lhs to rhs is a change of street.

names that only differ by a suffix from the suffix table ("Main Street North" vs "Main Street") are the same street.
moving between a named and an unnamed road is a name change.
*/
func (nt *NameTable) RequiresNameAnnounced(lhs, rhs NameID) bool {
	if lhs == rhs {
		return false
	}
	if lhs == EMPTY_NAMEID || rhs == EMPTY_NAMEID {
		return true
	}
	return nt.stripSuffixes(nt.GetName(lhs)) != nt.stripSuffixes(nt.GetName(rhs))
}

func (nt *NameTable) stripSuffixes(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for len(words) > 1 && nt.suffixes != nil && nt.suffixes.IsSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for len(words) > 1 && nt.suffixes != nil && nt.suffixes.IsSuffix(words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
