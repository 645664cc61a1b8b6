package skematree

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code string, cause error, kv ...any) Issue
}

// Root returns the empty path.
func Root() PathRef { return pathRef{} }

// At parses a JSON Pointer into a PathRef.
func At(pointer string) PathRef {
	return pathRef{parts: splitPointer(pointer)}
}

type pathRef struct {
	parts []string
}

func (p pathRef) Field(name string) PathRef {
	return pathRef{parts: append(append([]string{}, p.parts...), name)}
}

func (p pathRef) Index(i int) PathRef {
	return p.Field(strconv.Itoa(i))
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func (p pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, part := range p.parts {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(part))
	}
	return b.String()
}

func (p pathRef) Issue(code string, cause error, kv ...any) Issue {
	return newIssue(p.Pointer(), code, cause, kv...)
}

// splitPointer returns the unescaped reference tokens of an RFC 6901 pointer.
// "" and "/" both address the root.
func splitPointer(pointer string) []string {
	if pointer == "" || pointer == "/" {
		return nil
	}
	raw := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = pointerUnescaper.Replace(r)
	}
	return out
}

// Lookup resolves a JSON Pointer against a node tree. Tokens address
// fixed keys, sequence indexes and dynamic-key ids. It returns nil when the
// path does not exist.
func Lookup(root Node, pointer string) Node {
	cur := root
	for _, tok := range splitPointer(pointer) {
		if cur == nil {
			return nil
		}
		switch c := cur.(type) {
		case *FixedKey:
			cur = c.Get(tok)
		case *DynamicKey:
			cur = c.ByID(tok)
		case *Sequence:
			i, err := strconv.Atoi(tok)
			if err != nil {
				return nil
			}
			cur = c.Get(i)
		default:
			return nil
		}
	}
	return cur
}
