package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "sampad/pkg/domain-errors"
)

// KeyInvalidType is the catalog key for a JSON value of the wrong type.
const KeyInvalidType = "invalid_type"

var mobilePattern = regexp.MustCompile(`^09\d{9}$`)

var defaultValidator = newValidator()

// tagKinds maps validator tags to the violation kind they represent. Unlisted tags are format checks.
var tagKinds = map[string]Kind{
	"required": KindRequired,
	"notblank": KindRequired,
	"max":      KindTooLong,
}

// tagKeys renames tags to the message-key suffix used by the catalog.
var tagKeys = map[string]string{
	"notblank": "required",
	"irmobile": "regex",
	"boolflag": "boolean",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return IsDigits(fl.Field().String(), n)
	})
	_ = v.RegisterValidation("irmobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("boolflag", func(fl validator.FieldLevel) bool {
		_, ok := ParseJSONBool(fl.Field().Bytes())
		return ok
	})
	return v
}

// Struct runs the declarative rules on v and reports the first violation per field.
// Non-validation failures (programming errors) come back as an internal domain error.
func Struct(v any) (FieldErrors, error) {
	err := defaultValidator.Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "validator misconfigured")
	}
	var out FieldErrors
	for _, fe := range verrs {
		out = out.Add(fromValidator(fe))
	}
	return out, nil
}

func fromValidator(fe validator.FieldError) FieldError {
	field := fe.Field()
	if field == "" {
		field = fe.StructField()
	}
	tag := fe.ActualTag()
	kind, ok := tagKinds[tag]
	if !ok {
		kind = KindWrongFormat
	}
	suffix, ok := tagKeys[tag]
	if !ok {
		suffix = tag
	}
	return FieldError{Field: field, Kind: kind, Key: field + "." + suffix}
}

// IsDigits reports whether s is exactly n ASCII digits.
func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsMobile reports whether s is an Iranian mobile number in 09XXXXXXXXX form.
func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// ParseJSONBool interprets a raw JSON value as a boolean flag. Accepted forms are
// true, false, 1, 0 and the strings "1", "0". Empty or null means false.
func ParseJSONBool(raw []byte) (value bool, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return false, true
	}
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return false, false
	}
	switch v := decoded.(type) {
	case bool:
		return v, true
	case json.Number:
		switch v.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	case string:
		switch v {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}
