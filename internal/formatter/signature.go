package formatter

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/structview/internal/value"
)

// SignatureOptions controls signature output.
type SignatureOptions struct {
	// Expanded is the number of nesting levels described under the root.
	// Deeper levels are summarized as "...".
	Expanded int
	// Path labels the root; "." when empty.
	Path string
}

// signature is the merged shape of every value seen at one position.
// Lists merge all of their elements into elems; objects merge fields by key.
type signature struct {
	kinds   []string
	occurs  int
	objects int
	keys    []string
	fields  map[string]*signature
	elems   *signature
}

func (s *signature) addKind(kind string) {
	for _, k := range s.kinds {
		if k == kind {
			return
		}
	}
	s.kinds = append(s.kinds, kind)
}

func (s *signature) merge(v any, stack map[uintptr]struct{}) {
	s.occurs++
	kind := value.KindOf(v)
	if kind != value.KindList && kind != value.KindObject {
		s.addKind(kind.String())
		return
	}
	if id, ok := value.Identity(v); ok {
		if _, seen := stack[id]; seen {
			s.addKind("circular")
			return
		}
		stack[id] = struct{}{}
		defer delete(stack, id)
	}

	s.addKind(kind.String())
	if kind == value.KindList {
		if s.elems == nil {
			s.elems = &signature{}
		}
		for _, e := range value.Entries(v) {
			s.elems.merge(e.Value, stack)
		}
		return
	}

	s.objects++
	if s.fields == nil {
		s.fields = make(map[string]*signature)
	}
	for _, e := range value.Entries(v) {
		key := e.Key.(string)
		f, ok := s.fields[key]
		if !ok {
			f = &signature{}
			s.fields[key] = f
			s.keys = append(s.keys, key)
		}
		f.merge(e.Value, stack)
	}
}

func (s *signature) label() string {
	parts := make([]string, len(s.kinds))
	for i, k := range s.kinds {
		parts[i] = k
		if k == value.KindList.String() && s.elems != nil && len(s.elems.kinds) > 0 {
			parts[i] = k + "<" + s.elems.label() + ">"
		}
	}
	if len(parts) == 0 {
		return "never"
	}
	return strings.Join(parts, " | ")
}

func (s *signature) hasChildren() bool {
	return len(s.keys) > 0 || (s.elems != nil && s.elems.hasChildren())
}

func (s *signature) addChildren(branch treeprint.Tree, depth, expanded int) {
	if depth >= expanded {
		branch.AddNode("...")
		return
	}
	for _, key := range s.keys {
		f := s.fields[key]
		name := key
		if f.occurs < s.objects {
			name += "?"
		}
		text := name + ": " + f.label()
		if !f.hasChildren() {
			branch.AddNode(text)
			continue
		}
		f.addChildren(branch.AddBranch(text), depth+1, expanded)
	}
	if s.elems != nil && s.elems.hasChildren() {
		s.elems.addChildren(branch, depth, expanded)
	}
}

// FormatSignature renders the type shape of v as a tree. Object fields are
// listed in first-seen order, list elements are merged into one shape, and
// fields missing from some of the merged objects are marked with "?".
func FormatSignature(v any, opts SignatureOptions) string {
	sig := &signature{}
	sig.merge(v, make(map[uintptr]struct{}))

	root := opts.Path
	if root == "" {
		root = "."
	}
	tree := treeprint.NewWithRoot(root + ": " + sig.label())
	if sig.hasChildren() {
		sig.addChildren(tree, 0, opts.Expanded)
	}
	return tree.String()
}
