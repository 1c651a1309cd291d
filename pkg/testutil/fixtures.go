package testutil

import (
	"fmt"

	"sampad/pkg/registrationform"
)

// FormBuilder provides a fluent interface for building registration forms.
type FormBuilder struct {
	form registrationform.Form
}

// NewFormBuilder starts from a form that passes every shared rule.
func NewFormBuilder() *FormBuilder {
	return &FormBuilder{form: registrationform.Form{
		Name:         "Ali Rezaei",
		NationalCode: "1234567890",
		Phone:        "09123456789",
	}}
}

// Unique derives national code and phone from n so forms built with distinct n never collide.
func (b *FormBuilder) Unique(n int) *FormBuilder {
	b.form.NationalCode = fmt.Sprintf("%010d", n)
	b.form.Phone = fmt.Sprintf("09%09d", n)
	return b
}

func (b *FormBuilder) WithName(name string) *FormBuilder {
	b.form.Name = name
	return b
}

func (b *FormBuilder) WithNationalCode(code string) *FormBuilder {
	b.form.NationalCode = code
	return b
}

func (b *FormBuilder) WithPhone(phone string) *FormBuilder {
	b.form.Phone = phone
	return b
}

func (b *FormBuilder) Sampad() *FormBuilder {
	b.form.IsSampad = registrationform.BoolFlag(true)
	return b
}

func (b *FormBuilder) Build() registrationform.Form {
	return b.form
}
