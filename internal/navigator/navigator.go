package navigator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/structview/internal/value"
)

// EvaluateFunc evaluates a full CEL expression against root.
type EvaluateFunc func(expr string, root any) (any, error)

// NodeAtPath navigates a dotted path or CEL expression into a loaded value.
// Keys are separated by '.'; numeric segments index arrays. Expressions
// that are more than plain navigation are handed to eval.
func NodeAtPath(root any, path string, eval EvaluateFunc) (any, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == RootVariable {
		return root, nil
	}

	if !isComplexCEL(trimmed) {
		return simpleNavigate(root, trimmed)
	}
	if eval == nil {
		return nil, fmt.Errorf("expression %q needs an evaluator", trimmed)
	}
	result, err := eval(trimmed, root)
	if err != nil {
		return nil, fmt.Errorf("CEL evaluation error: %w", err)
	}
	return result, nil
}

// isComplexCEL checks if a path requires full CEL evaluation (not just simple navigation)
func isComplexCEL(path string) bool {
	if strings.HasPrefix(path, "\"") && strings.HasSuffix(path, "\"") && len(path) >= 2 {
		return true
	}
	if strings.HasPrefix(path, "{") {
		return true
	}
	// [1], [0], ["key"] are navigation; [1, 2] and [x.y] are list literals
	if strings.HasPrefix(path, "[") {
		closeBracket := strings.Index(path, "]")
		if closeBracket > 0 {
			inside := path[1:closeBracket]
			if _, err := strconv.Atoi(inside); err == nil {
				return false
			}
			if strings.HasPrefix(inside, "\"") && strings.HasSuffix(inside, "\"") {
				return false
			}
			return true
		}
	}
	if strings.Contains(path, "(") && strings.Contains(path, ")") {
		return true
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">", "&&", "||", "+", "?"} {
		if strings.Contains(path, op) {
			return true
		}
	}
	return false
}

func simpleNavigate(root any, path string) (any, error) {
	if strings.HasPrefix(path, RootVariable+".") || strings.HasPrefix(path, RootVariable+"[") {
		path = path[len(RootVariable):]
	}
	nodes := ParsePath(path)
	cur := root
	for _, n := range nodes {
		var err error
		switch step := n.(type) {
		case Field:
			cur, err = navigateKey(cur, step.Name)
		case QuotedKey:
			cur, err = navigateKey(cur, step.Name)
		case ArrayIndex:
			cur, err = navigateIndex(cur, step.Index)
		case CelExpr:
			err = fmt.Errorf("unexpected expression segment %q", step.Expr)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func navigateKey(cur any, key string) (any, error) {
	switch t := cur.(type) {
	case *value.Object:
		v, ok := t.Get(key)
		if !ok {
			return nil, fmt.Errorf("key '%s' not found", key)
		}
		return v, nil
	case map[string]any:
		v, ok := t[key]
		if !ok {
			return nil, fmt.Errorf("key '%s' not found", key)
		}
		return v, nil
	case []any:
		// dotted numeric segments index lists: items.0
		if idx, err := strconv.Atoi(key); err == nil {
			return navigateIndex(cur, idx)
		}
		return nil, fmt.Errorf("expected numeric index into array but got '%s'", key)
	}
	return nil, fmt.Errorf("cannot descend into %s at '%s'", value.KindOf(cur), key)
}

func navigateIndex(cur any, idx int) (any, error) {
	arr, ok := cur.([]any)
	if !ok {
		return navigateKey(cur, strconv.Itoa(idx))
	}
	if idx < 0 || idx >= len(arr) {
		return nil, fmt.Errorf("index %d out of range", idx)
	}
	return arr[idx], nil
}
