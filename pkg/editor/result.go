package editor

// Result reports the outcome of a mutation.
type Result int

const (
	// Applied means the model changed.
	Applied Result = iota
	// NotFound means a referenced row or field id does not exist.
	NotFound
	// Refused means the operation would break a model invariant, such as
	// removing the last row.
	Refused
	// Invalid means the input itself was rejected (duplicate id, value that
	// does not fit the field type, malformed path).
	Invalid
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case NotFound:
		return "not_found"
	case Refused:
		return "refused"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// OK reports whether the mutation was applied.
func (r Result) OK() bool { return r == Applied }
