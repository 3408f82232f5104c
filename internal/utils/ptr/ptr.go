// Package ptr helps with the optional fields of catalog rows.
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Value returns *p, or nil when p is nil. It suits SQL arguments, where
// nil is stored as NULL.
func Value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Flag renders an optional bool as "Y" or "N", and nil as "".
func Flag(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "Y"
	default:
		return "N"
	}
}
