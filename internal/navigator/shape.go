package navigator

import (
	"github.com/oakwood-commons/structview/internal/value"
)

// ShapeKind describes the general structure of data.
type ShapeKind string

const (
	ShapeScalar           ShapeKind = "scalar"
	ShapeMap              ShapeKind = "map"
	ShapeArray            ShapeKind = "array"
	ShapeHomogeneousArray ShapeKind = "homogeneous_array" // Array of objects with consistent keys
)

// ShapeInfo describes the structure of data for rendering decisions.
type ShapeInfo struct {
	Kind   ShapeKind
	Fields []string // For homogeneous arrays: the common field names in first-element order
	Length int      // For arrays and maps: number of entries
}

// DetectShape analyzes data and returns its structural characteristics.
func DetectShape(data any) ShapeInfo {
	switch value.KindOf(data) {
	case value.KindObject:
		return ShapeInfo{Kind: ShapeMap, Length: value.Len(data)}

	case value.KindList:
		length := value.Len(data)
		if length == 0 {
			return ShapeInfo{Kind: ShapeArray, Length: 0}
		}
		if ok, fields := IsHomogeneousArray(data); ok {
			return ShapeInfo{
				Kind:   ShapeHomogeneousArray,
				Fields: fields,
				Length: length,
			}
		}
		return ShapeInfo{Kind: ShapeArray, Length: length}

	default:
		return ShapeInfo{Kind: ShapeScalar}
	}
}

// IsHomogeneousArray checks if data is a list where all elements are objects
// with the same set of keys. Returns true and the first element's keys if so.
func IsHomogeneousArray(data any) (bool, []string) {
	arr, ok := data.([]any)
	if !ok || len(arr) == 0 {
		return false, nil
	}

	baseKeys := objectKeys(arr[0])
	if len(baseKeys) == 0 {
		return false, nil
	}

	for _, elem := range arr[1:] {
		if !sameKeySet(baseKeys, objectKeys(elem)) {
			return false, nil
		}
	}
	return true, baseKeys
}

func objectKeys(v any) []string {
	if value.KindOf(v) != value.KindObject {
		return nil
	}
	entries := value.Entries(v)
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key.(string)
	}
	return keys
}

func sameKeySet(keys, other []string) bool {
	if len(keys) != len(other) {
		return false
	}
	set := make(map[string]struct{}, len(other))
	for _, k := range other {
		set[k] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
