// Package symtab interns short strings into dense, comparable ids scoped to
// a single owner (a Graph). Two ids compare equal iff their backing text is
// equal; ids from different interners must never be compared.
package symtab

// ID is an opaque handle into one Interner. The zero value is Invalid.
type ID int32

// Invalid is the sentinel id. It never resolves to a string and compares
// unequal to any id returned by Intern.
const Invalid ID = 0

// Interner assigns a stable, dense ID to each distinct string it sees.
// It is not safe for concurrent use; callers owning a Graph already
// serialize access to it.
type Interner struct {
	strToID map[string]ID
	idToStr []string
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		strToID: make(map[string]ID),
		idToStr: []string{""}, // index 0 reserved for Invalid
	}
}

// Intern returns the ID for s, minting one if s has not been seen before.
// Interning the empty string always fails and returns Invalid.
func (in *Interner) Intern(s string) ID {
	if s == "" {
		return Invalid
	}
	if id, ok := in.strToID[s]; ok {
		return id
	}
	id := ID(len(in.idToStr))
	in.idToStr = append(in.idToStr, s)
	in.strToID[s] = id
	return id
}

// Lookup returns the ID already assigned to s, or Invalid if s was never
// interned. Unlike Intern, it never mutates the table.
func (in *Interner) Lookup(s string) (ID, bool) {
	id, ok := in.strToID[s]
	return id, ok
}

// Text returns the string backing id, or "" for Invalid or an id that does
// not belong to this Interner.
func (in *Interner) Text(id ID) string {
	if id <= Invalid || int(id) >= len(in.idToStr) {
		return ""
	}
	return in.idToStr[id]
}

// Rename reassigns the text backing id to newText, preserving the id value.
// Fails (returns false) if newText already resolves to a different id, or
// id is out of range.
func (in *Interner) Rename(id ID, newText string) bool {
	if id <= Invalid || int(id) >= len(in.idToStr) || newText == "" {
		return false
	}
	if existing, ok := in.strToID[newText]; ok && existing != id {
		return false
	}
	oldText := in.idToStr[id]
	delete(in.strToID, oldText)
	in.idToStr[id] = newText
	in.strToID[newText] = id
	return true
}

// Len reports how many distinct strings have been interned.
func (in *Interner) Len() int {
	return len(in.idToStr) - 1
}
