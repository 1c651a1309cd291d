// Package registrationform is the shared, side-effect-free rule set for a registration
// submission. The server runs it authoritatively before its uniqueness lookup; the Go
// client runs the same rules for advisory feedback before submitting.
package registrationform

import (
	"sampad/pkg/validation"

	strutil "sampad/pkg/platform/strings"
)

// Wire field names.
const (
	FieldName         = "name"
	FieldIsSampad     = "isSampad"
	FieldNationalCode = "nationalCode"
	FieldPhone        = "phone"
)

// FieldOrder is the order errors are reported in.
var FieldOrder = []string{FieldName, FieldIsSampad, FieldNationalCode, FieldPhone}

// MaxNameLength is counted in Unicode code points.
const MaxNameLength = 100

// NationalCodeDigits is the exact length of a national code.
const NationalCodeDigits = 10

// Form is a candidate registration as submitted.
type Form struct {
	Name         string `json:"name" validate:"notblank,max=100"`
	IsSampad     Flag   `json:"isSampad,omitempty" validate:"omitempty,boolflag"`
	NationalCode string `json:"nationalCode" validate:"required,digits=10"`
	Phone        string `json:"phone" validate:"required,irmobile"`
}

// Validated is a form that passed every shared rule, normalized.
type Validated struct {
	Name         string
	IsSampad     bool
	NationalCode string
	Phone        string
}

// Normalize trims surrounding whitespace from every text field.
func (f *Form) Normalize() {
	strutil.TrimStrings(&f.Name, &f.NationalCode, &f.Phone)
}

// Check normalizes a copy of f and applies the shared rules. It never touches shared state.
func Check(f Form) (*Validated, validation.FieldErrors, error) {
	f.Normalize()
	errs, err := validation.Struct(&f)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, errs.Ordered(FieldOrder), nil
	}
	isSampad, _ := f.IsSampad.Bool()
	return &Validated{
		Name:         f.Name,
		IsSampad:     isSampad,
		NationalCode: f.NationalCode,
		Phone:        f.Phone,
	}, nil, nil
}
