package limiter

import (
	"fmt"

	"github.com/oakwood-commons/structview/internal/value"
)

// Limit is the number of entries rendered per window. NoLimit renders
// everything that remains.
type Limit int

// NoLimit disables windowing.
const NoLimit Limit = -1

// Unbounded reports whether l renders every remaining entry.
func (l Limit) Unbounded() bool {
	return l < 0
}

// Window returns the [start, end) bounds of the window of at most limit
// entries beginning at offset in a collection of total entries.
func Window(total, offset int, limit Limit) (int, int) {
	start := offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if !limit.Unbounded() && start+int(limit) < total {
		end = start + int(limit)
	}
	return start, end
}

// Config holds the record-limiting parameters applied to the root value
// before it is viewed.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations and returns an error if invalid.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--record-limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--record-offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--record-tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--record-limit and --record-tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// bounds resolves the configuration against a collection of length n.
func (c Config) bounds(n int) (int, int) {
	if c.Tail > 0 {
		start := n - c.Tail
		if start < 0 {
			start = 0
		}
		return start, n
	}
	limit := NoLimit
	if c.Limit > 0 {
		limit = Limit(c.Limit)
	}
	return Window(n, c.Offset, limit)
}

// Apply returns the limited subset of a list or object. Objects keep their
// key order; scalars are returned unchanged.
func (c Config) Apply(data any) any {
	if !c.IsActive() {
		return data
	}

	switch value.KindOf(data) {
	case value.KindList:
		arr := data.([]any)
		start, end := c.bounds(len(arr))
		return arr[start:end]
	case value.KindObject:
		entries := value.Entries(data)
		start, end := c.bounds(len(entries))
		out := value.NewObject(end - start)
		for _, e := range entries[start:end] {
			out.Set(e.Key.(string), e.Value)
		}
		return out
	default:
		return data
	}
}
