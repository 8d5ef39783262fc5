package core

// Sym is an interned word spelling. Symbol identity is per-instance:
// each Instance owns its own table, so two instances never share ids.
type Sym int32

// SymNone is the absent symbol (no spelling).
const SymNone Sym = 0

// SymbolTable interns word spellings case-insensitively (the canonical
// spelling is the first one seen).
type SymbolTable struct {
	ids      map[string]Sym
	spelling []string
}

// NewSymbolTable returns an empty table. Id 0 is reserved for SymNone.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		ids:      make(map[string]Sym),
		spelling: []string{""},
	}
}

// Intern returns the id for spelling, creating one on first use.
func (st *SymbolTable) Intern(spelling string) Sym {
	key := foldSpelling(spelling)
	if id, ok := st.ids[key]; ok {
		return id
	}
	id := Sym(len(st.spelling))
	st.spelling = append(st.spelling, spelling)
	st.ids[key] = id
	return id
}

// Lookup returns the id for spelling, or SymNone if it was never interned.
func (st *SymbolTable) Lookup(spelling string) Sym {
	return st.ids[foldSpelling(spelling)]
}

// Spelling returns the canonical spelling for id.
func (st *SymbolTable) Spelling(id Sym) string {
	if id <= 0 || int(id) >= len(st.spelling) {
		return ""
	}
	return st.spelling[id]
}

// Count returns the number of interned symbols.
func (st *SymbolTable) Count() int {
	return len(st.spelling) - 1
}

// foldSpelling normalizes a spelling for identity comparison. Words are
// case-insensitive; only ASCII letters fold, matching the scanner's idea
// of a word character.
func foldSpelling(s string) string {
	needs := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needs = true
			break
		}
	}
	if !needs {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
