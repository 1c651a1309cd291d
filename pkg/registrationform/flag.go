package registrationform

import "sampad/pkg/validation"

// Flag keeps the raw JSON of the optional isSampad value so a malformed value
// becomes a field error instead of a decode failure.
type Flag []byte

// BoolFlag encodes b as a JSON boolean.
func BoolFlag(b bool) Flag {
	if b {
		return Flag("true")
	}
	return Flag("false")
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}
	*f = append((*f)[:0], data...)
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if len(f) == 0 {
		return []byte("null"), nil
	}
	return []byte(f), nil
}

// Bool interprets the flag; absent is false. ok is false for values that are not booleans.
func (f Flag) Bool() (value bool, ok bool) {
	return validation.ParseJSONBool(f)
}
