package cel

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/structview/internal/navigator"
	"github.com/oakwood-commons/structview/internal/value"
)

// ContextVariable is the CEL variable holding the positional context of
// the value bound to "_" (key, index, host, depth).
const ContextVariable = "ctx"

// Evaluator compiles and evaluates CEL expressions. Compiled programs are
// cached by expression text, so repeated annotation queries compile once.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// GetEnvironment returns the CEL environment for introspection
func (e *Evaluator) GetEnvironment() *cel.Env {
	return e.env
}

// newStandardCELEnv creates a standard CEL environment with common extensions.
// Additional options can be provided to extend the environment (e.g., custom functions).
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 7+len(opts))
	allOpts = append(allOpts,
		cel.CustomTypeAdapter(objectAdapter{}),
		cel.Variable(navigator.RootVariable, cel.DynType),
		cel.Variable(ContextVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.programs[expr]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	e.programs[expr] = prg
	return prg, nil
}

// Evaluate evaluates a CEL expression against data.
// The expression can reference the data with the variable name "_".
// Example: "_.items[0]" or "_.items.filter(x, x.available == true)"
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	return e.Query(expr, data, nil)
}

// Query evaluates expr with data bound to "_" and ctx bound to "ctx".
// A nil ctx is bound as an empty map.
func (e *Evaluator) Query(expr string, data any, ctx map[string]any) (any, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = map[string]any{}
	}

	result, _, err := prg.Eval(map[string]any{
		navigator.RootVariable: data,
		ContextVariable:        ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}

	converted := ToGo(result)
	if refVal, ok := converted.(ref.Val); ok {
		converted = refVal.Value()
	}
	return converted, nil
}

// PathToQuery formats slot keys as an expression that selects the same
// value, e.g. ["x", 0, "y"] becomes _.x[0].y.
func (e *Evaluator) PathToQuery(path []any) string {
	return navigator.FormatPath(path)
}

// objectAdapter exposes *value.Object to CEL as a map that iterates in
// insertion order. Lists and Go maps are wrapped with the same adapter so
// nested objects convert too.
type objectAdapter struct{}

func (a objectAdapter) NativeToValue(v any) ref.Val {
	switch t := v.(type) {
	case *value.Object:
		if t == nil {
			return types.NullValue
		}
		return orderedMap{Mapper: types.NewStringInterfaceMap(a, t.Map()), obj: t, adapter: a}
	case map[string]any:
		return types.NewStringInterfaceMap(a, t)
	case []any:
		return types.NewDynamicList(a, t)
	}
	return types.DefaultTypeAdapter.NativeToValue(v)
}

type orderedMap struct {
	traits.Mapper
	obj     *value.Object
	adapter types.Adapter
}

// Value returns the underlying object so results keep their key order.
func (m orderedMap) Value() any {
	return m.obj
}

func (m orderedMap) Iterator() traits.Iterator {
	return types.NewStringList(m.adapter, m.obj.Keys()).Iterator()
}

// ToGo converts CEL types to Go native types recursively.
// Handles both CEL primitive types and collection types (List, Map).
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	innerVal := val.Value()
	switch inner := innerVal.(type) {
	case []ref.Val:
		result := make([]any, len(inner))
		for i, elem := range inner {
			result[i] = ToGo(elem)
		}
		return result
	case []any:
		result := make([]any, len(inner))
		for i, elem := range inner {
			result[i] = convertNative(elem)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(inner))
		for k, v := range inner {
			result[k] = convertNative(v)
		}
		return result
	case map[ref.Val]ref.Val:
		result := make(map[string]any, len(inner))
		for k, v := range inner {
			result[fmt.Sprintf("%v", k.Value())] = ToGo(v)
		}
		return result
	}
	return innerVal
}

func convertNative(v any) any {
	if refVal, ok := v.(ref.Val); ok {
		return ToGo(refVal)
	}
	return v
}

// DiscoverFunctions lists the functions and macros available to queries.
// Entries keep the bare name up front and append usage after " - ".
func DiscoverFunctions() ([]string, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return DiscoverFunctionsFromEnv(env), nil
}

// isOperator filters out internal operator-style declarations.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func formatParams(params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

// usageFromOverload builds a human-readable usage string from a function overload.
func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	call := name + "(" + formatParams(params) + ")"
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name + "(" + formatParams(params[1:]) + ")"
	}
	return call + " -> " + typeLabel(o.ResultType())
}

// DiscoverFunctionsFromEnv discovers functions from the given CEL environment
// and returns sorted suggestions with usage hints (method vs global).
func DiscoverFunctionsFromEnv(env *cel.Env) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}

	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(fn.Name() + "() - " + usageFromOverload(fn.Name(), o))
		}
	}
	for _, m := range env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function() + "() - CEL macro")
	}

	sort.Strings(out)
	return out
}
