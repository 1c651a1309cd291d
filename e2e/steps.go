package e2e

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"sampad/internal/antiforgery"
	"sampad/pkg/registrationform"
	"sampad/pkg/validation"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the registration service is running$`, tc.serviceIsRunning)
	ctx.Step(`^I note the number of registrations$`, tc.noteRegistrationTotal)
	ctx.Step(`^responses are requested in "([^"]*)"$`, tc.useLanguage)

	// Request steps
	ctx.Step(`^I submit a registration with:$`, tc.submitRegistration)
	ctx.Step(`^I submit the same registration again$`, tc.submitSameAgain)
	ctx.Step(`^I submit a registration without an anti-forgery token$`, tc.submitWithoutToken)
	ctx.Step(`^I replay the last anti-forgery token$`, tc.replayToken)
	ctx.Step(`^the client submits a registration with:$`, tc.clientSubmit)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the payment amount should be (\d+)$`, tc.paymentAmountShouldBe)
	ctx.Step(`^the field "([^"]*)" should report "([^"]*)"$`, tc.fieldShouldReport)
	ctx.Step(`^only the fields? ((?:"[^"]*"(?:, | and )?)+) should have errors$`, tc.onlyFieldsShouldHaveErrors)
	ctx.Step(`^(\d+) new registrations? should exist$`, tc.newRegistrationsShouldExist)
	ctx.Step(`^the client should succeed with amount (\d+)$`, tc.clientShouldSucceed)
	ctx.Step(`^the client should report a duplicate on "([^"]*)"$`, tc.clientShouldReportDuplicate)
	ctx.Step(`^the client should report a format error on "([^"]*)"$`, tc.clientShouldReportFormat)
}

func (tc *TestContext) serviceIsRunning(context.Context) error {
	if err := tc.GET("/health/live", nil); err != nil {
		return err
	}
	return tc.expectStatus(200)
}

func (tc *TestContext) noteRegistrationTotal(context.Context) error {
	total, err := tc.RegistrationTotal()
	if err != nil {
		return err
	}
	tc.baselineTotal = total
	return nil
}

func (tc *TestContext) useLanguage(_ context.Context, lang string) error {
	tc.Language = lang
	return nil
}

// formFromTable reads a two-column table. true and false become JSON booleans.
func formFromTable(table *godog.Table) (map[string]any, error) {
	form := map[string]any{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return nil, fmt.Errorf("expected two columns, got %d", len(row.Cells))
		}
		key, value := row.Cells[0].Value, row.Cells[1].Value
		switch value {
		case "true":
			form[key] = true
		case "false":
			form[key] = false
		default:
			form[key] = value
		}
	}
	return form, nil
}

func (tc *TestContext) submitRegistration(_ context.Context, table *godog.Table) error {
	form, err := formFromTable(table)
	if err != nil {
		return err
	}
	tc.LastForm = form
	return tc.submit(form)
}

func (tc *TestContext) submitSameAgain(context.Context) error {
	if tc.LastForm == nil {
		return errors.New("no registration submitted yet")
	}
	return tc.submit(tc.LastForm)
}

func (tc *TestContext) submit(form map[string]any) error {
	token, err := tc.FetchToken()
	if err != nil {
		return err
	}
	tc.lastToken = token
	return tc.POSTWithHeaders("/registrations", form, map[string]string{antiforgery.HeaderName: token})
}

func (tc *TestContext) submitWithoutToken(context.Context) error {
	return tc.POSTWithHeaders("/registrations", map[string]any{
		"name": "Ali Rezaei", "nationalCode": "1234567890", "phone": "09123456789",
	}, nil)
}

func (tc *TestContext) replayToken(context.Context) error {
	if tc.lastToken == "" {
		return errors.New("no token used yet")
	}
	return tc.POSTWithHeaders("/registrations", tc.LastForm, map[string]string{antiforgery.HeaderName: tc.lastToken})
}

func (tc *TestContext) clientSubmit(ctx context.Context, table *godog.Table) error {
	raw, err := formFromTable(table)
	if err != nil {
		return err
	}
	form := registrationform.Form{}
	form.Name, _ = raw[registrationform.FieldName].(string)
	form.NationalCode, _ = raw[registrationform.FieldNationalCode].(string)
	form.Phone, _ = raw[registrationform.FieldPhone].(string)
	if b, ok := raw[registrationform.FieldIsSampad].(bool); ok {
		form.IsSampad = registrationform.BoolFlag(b)
	}
	tc.ClientResult, tc.ClientErr = tc.Client().Submit(ctx, form)
	return nil
}

func (tc *TestContext) expectStatus(expected int) error {
	if actual := tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d but got %d: %s", expected, actual, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expected int) error {
	return tc.expectStatus(expected)
}

func (tc *TestContext) paymentAmountShouldBe(_ context.Context, amount int64) error {
	v, err := tc.GetResponseField("payment.amount")
	if err != nil {
		return err
	}
	got, ok := v.(float64)
	if !ok || int64(got) != amount {
		return fmt.Errorf("expected payment amount %d but got %v", amount, v)
	}
	return nil
}

func (tc *TestContext) fieldMessages(field string) ([]string, error) {
	v, err := tc.GetResponseField("errors")
	if err != nil {
		return nil, err
	}
	errs, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("errors is %T", v)
	}
	list, _ := errs[field].([]any)
	out := make([]string, 0, len(list))
	for _, m := range list {
		if s, ok := m.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (tc *TestContext) fieldShouldReport(_ context.Context, field, message string) error {
	msgs, err := tc.fieldMessages(field)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m == message {
			return nil
		}
	}
	return fmt.Errorf("field %s reported %q, want %q", field, msgs, message)
}

func (tc *TestContext) onlyFieldsShouldHaveErrors(_ context.Context, list string) error {
	want := map[string]bool{}
	for _, part := range strings.Split(list, `"`) {
		part = strings.TrimSpace(part)
		if part == "" || part == "," || part == "and" {
			continue
		}
		want[part] = true
	}

	v, err := tc.GetResponseField("errors")
	if err != nil {
		return err
	}
	got, _ := v.(map[string]any)
	if len(got) != len(want) {
		return fmt.Errorf("expected errors on %v but got %v", want, got)
	}
	for field := range got {
		if !want[field] {
			return fmt.Errorf("unexpected error on %s", field)
		}
	}
	return nil
}

func (tc *TestContext) newRegistrationsShouldExist(_ context.Context, n int) error {
	total, err := tc.RegistrationTotal()
	if err != nil {
		return err
	}
	if total-tc.baselineTotal != n {
		return fmt.Errorf("expected %d new registrations but found %d", n, total-tc.baselineTotal)
	}
	return nil
}

func (tc *TestContext) clientShouldSucceed(_ context.Context, amount int64) error {
	if tc.ClientErr != nil {
		return fmt.Errorf("client failed: %w", tc.ClientErr)
	}
	if tc.ClientResult.Payment.Amount != amount {
		return fmt.Errorf("expected amount %d but got %d", amount, tc.ClientResult.Payment.Amount)
	}
	return nil
}

func (tc *TestContext) clientFieldErrors() (validation.FieldErrors, error) {
	var fe validation.FieldErrors
	if !errors.As(tc.ClientErr, &fe) {
		return nil, fmt.Errorf("expected field errors, got %v", tc.ClientErr)
	}
	return fe, nil
}

func (tc *TestContext) clientShouldReportDuplicate(_ context.Context, field string) error {
	fe, err := tc.clientFieldErrors()
	if err != nil {
		return err
	}
	if !fe.Has(field, validation.KindDuplicate) {
		return fmt.Errorf("no duplicate on %s: %v", field, fe)
	}
	return nil
}

func (tc *TestContext) clientShouldReportFormat(_ context.Context, field string) error {
	fe, err := tc.clientFieldErrors()
	if err != nil {
		return err
	}
	if !fe.Has(field, validation.KindWrongFormat) {
		return fmt.Errorf("no format error on %s: %v", field, fe)
	}
	return nil
}
