package query

// Notes holds the per-article annotations of one session. It is never a
// source of truth: the text only leaves the session through an export.
type Notes struct {
	byRef map[string]string
}

func NewNotes() *Notes {
	return &Notes{byRef: make(map[string]string)}
}

// Set commits text for ref and reports whether anything changed. Unchanged
// text is not rewritten; empty text removes the note.
func (n *Notes) Set(ref, text string) bool {
	prev, had := n.byRef[ref]
	if text == "" {
		if !had {
			return false
		}
		delete(n.byRef, ref)
		return true
	}
	if had && prev == text {
		return false
	}
	n.byRef[ref] = text
	return true
}

func (n *Notes) Get(ref string) string {
	if n == nil {
		return ""
	}
	return n.byRef[ref]
}

func (n *Notes) Len() int {
	if n == nil {
		return 0
	}
	return len(n.byRef)
}

func (n *Notes) Clear() {
	n.byRef = make(map[string]string)
}
