package handler

import (
	"encoding/json"

	"sampad/pkg/registrationform"
	"sampad/pkg/validation"
)

// RawForm is the request body before field types are known. Decoding field by field
// lets a mistyped value surface as a field error instead of a 400.
type RawForm map[string]json.RawMessage

// ToForm extracts the registration form. Text fields that are present but not JSON
// strings are reported as wrong-format errors and left empty in the form.
func (r RawForm) ToForm() (registrationform.Form, validation.FieldErrors) {
	var (
		form registrationform.Form
		errs validation.FieldErrors
	)
	text := func(field string, dst *string) {
		raw, ok := r[field]
		if !ok || isNull(raw) {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = errs.Add(validation.FieldError{
				Field: field,
				Kind:  validation.KindWrongFormat,
				Key:   validation.KeyInvalidType,
			})
		}
	}
	text(registrationform.FieldName, &form.Name)
	text(registrationform.FieldNationalCode, &form.NationalCode)
	text(registrationform.FieldPhone, &form.Phone)

	if raw, ok := r[registrationform.FieldIsSampad]; ok && !isNull(raw) {
		form.IsSampad = registrationform.Flag(raw)
	}
	return form, errs
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
