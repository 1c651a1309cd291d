package validation

import (
	"slices"
	"strings"
)

// Kind classifies a field violation independently of its message.
type Kind string

const (
	KindRequired    Kind = "required_field"
	KindTooLong     Kind = "too_long"
	KindWrongFormat Kind = "wrong_format"
	KindDuplicate   Kind = "duplicate_value"
)

// FieldError is one violation on one input field. Key names the catalog entry;
// Message stays empty until the error is localized for a caller.
type FieldError struct {
	Field   string
	Kind    Kind
	Key     string
	Message string
}

// FieldErrors holds at most one violation per field, the first one detected.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+string(e.Kind))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends e unless its field already has a violation.
func (fe FieldErrors) Add(e FieldError) FieldErrors {
	if fe.HasField(e.Field) {
		return fe
	}
	return append(fe, e)
}

func (fe FieldErrors) HasField(field string) bool {
	_, ok := fe.Get(field)
	return ok
}

func (fe FieldErrors) Get(field string) (FieldError, bool) {
	for _, e := range fe {
		if e.Field == field {
			return e, true
		}
	}
	return FieldError{}, false
}

// Has reports whether field failed with the given kind.
func (fe FieldErrors) Has(field string, kind Kind) bool {
	e, ok := fe.Get(field)
	return ok && e.Kind == kind
}

// Ordered returns a copy sorted by the position of each field in order.
// Fields missing from order sort last, alphabetically.
func (fe FieldErrors) Ordered(order []string) FieldErrors {
	out := slices.Clone(fe)
	rank := func(f string) int {
		if i := slices.Index(order, f); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(out, func(a, b FieldError) int {
		if d := rank(a.Field) - rank(b.Field); d != 0 {
			return d
		}
		return strings.Compare(a.Field, b.Field)
	})
	return out
}

// Localize fills Message for every entry using render(key).
func (fe FieldErrors) Localize(render func(key string) string) FieldErrors {
	out := slices.Clone(fe)
	for i := range out {
		out[i].Message = render(out[i].Key)
	}
	return out
}

// Map renders the wire shape {field: [message, ...]}; the key stands in for an unlocalized message.
func (fe FieldErrors) Map() map[string][]string {
	m := make(map[string][]string, len(fe))
	for _, e := range fe {
		msg := e.Message
		if msg == "" {
			msg = e.Key
		}
		m[e.Field] = append(m[e.Field], msg)
	}
	return m
}

// HasKind reports whether any field failed with kind.
func (fe FieldErrors) HasKind(kind Kind) bool {
	return slices.ContainsFunc(fe, func(e FieldError) bool { return e.Kind == kind })
}
