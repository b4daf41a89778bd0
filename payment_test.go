package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/google/go-cmp/cmp"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4242424242424242", "************4242"},
		{"4242 4242 4242 4242", "************4242"},
		{"1234", "1234"},
		{"123", "****"},
		{"", "****"},
	}

	for _, test := range tests {
		result := maskCardNumber(test.input)
		if result != test.expected {
			t.Errorf("maskCardNumber(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12 / 26", "1226"},
		{"1226", "1226"},
		{"4242 4242 4242 4242", "4242424242424242"},
		{"MM / YY", ""},
	}

	for _, test := range tests {
		result := digitsOnly(test.input)
		if result != test.expected {
			t.Errorf("digitsOnly(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestPaymentFieldDescriptors(t *testing.T) {
	if len(paymentFields) != 5 {
		t.Fatalf("Expected 5 payment field descriptors, got %d", len(paymentFields))
	}

	required := 0
	var optionalField string
	for _, field := range paymentFields {
		if field.Required {
			required++
		} else {
			optionalField = field.LogicalName
		}
		if len(field.Locators.Strategies) == 0 {
			t.Errorf("Field %s has no locator strategies", field.LogicalName)
		}
	}

	if required != 4 {
		t.Errorf("Expected 4 required fields, got %d", required)
	}
	if optionalField != "zip code" {
		t.Errorf("Expected the optional field to be zip code, got %q", optionalField)
	}
}

func TestEmailFieldCascadeDepth(t *testing.T) {
	// The email field markup is the least stable; it carries the deep
	// cascade: identifier, input type, placeholder.
	for _, field := range paymentFields {
		if field.LogicalName != "email" {
			continue
		}
		if len(field.Locators.Strategies) != 3 {
			t.Errorf("Expected 3 email strategies, got %d", len(field.Locators.Strategies))
		}
		wantOrder := []string{"email-id", "email-type", "email-placeholder"}
		if diff := cmp.Diff(wantOrder, field.Locators.strategyNames()); diff != "" {
			t.Errorf("Email cascade order mismatch (-want +got):\n%s", diff)
		}
		return
	}
	t.Fatal("No email field descriptor found")
}

func TestFieldValuesNormalization(t *testing.T) {
	p := NewPaymentFormSynthesizer(nil, DefaultConfig(), nil, nil)

	values := p.fieldValues(PaymentDetails{
		Email:      "test@weathershopper.com",
		CardNumber: "4242 4242 4242 4242",
		ExpiryDate: "12/26",
		CVC:        "123",
		ZipCode:    "  75500 ",
	})

	want := map[string]string{
		"email":       "test@weathershopper.com",
		"card number": "4242424242424242",
		"expiry date": "1226",
		"cvc":         "123",
		"zip code":    "75500",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("fieldValues mismatch (-want +got):\n%s", diff)
	}
}

func TestFillOutcomeString(t *testing.T) {
	tests := []struct {
		outcome  FillOutcome
		expected string
	}{
		{FillComplete, "complete"},
		{FillPartial, "partial"},
		{FillAborted, "aborted"},
	}

	for _, test := range tests {
		if test.outcome.String() != test.expected {
			t.Errorf("FillOutcome(%d).String() = %q, expected %q",
				test.outcome, test.outcome.String(), test.expected)
		}
	}
}

// testSynthesizer returns a synthesizer with zeroed waits and a no-op entry
// routine, so the fill loop's outcome logic runs without a browser.
func testSynthesizer() *PaymentFormSynthesizer {
	config := DefaultConfig()
	config.StrategyTimeoutMs = 0
	config.OptionalTimeoutMs = 0
	config.PollIntervalMs = 1
	p := NewPaymentFormSynthesizer(testResolver(), config, nil, nil)
	p.enter = func(*rod.Element, PaymentFieldDescriptor, string) error { return nil }
	return p
}

// markFieldsPresent makes every field's first locator strategy match, except
// the named exclusions.
func markFieldsPresent(scope *fakeScope, except ...string) {
	for _, field := range paymentFields {
		skip := false
		for _, name := range except {
			if field.LogicalName == name {
				skip = true
			}
		}
		if skip {
			continue
		}
		scope.present["css:"+field.Locators.Strategies[0].Selector] = true
	}
}

func testPaymentDetails() PaymentDetails {
	payment := DefaultConfig().Payment
	return PaymentDetails{
		Email:      payment.Email,
		CardNumber: payment.CardNumber,
		ExpiryDate: payment.ExpiryDate,
		CVC:        payment.CVC,
		ZipCode:    payment.ZipCode,
	}
}

func TestFillFieldsCompleteOutcome(t *testing.T) {
	p := testSynthesizer()
	scope := newFakeScope()
	markFieldsPresent(scope)

	outcome, err := p.fillFields(scope, testPaymentDetails())
	if err != nil {
		t.Fatalf("Expected the fill to succeed, got: %v", err)
	}
	if outcome != FillComplete {
		t.Errorf("Expected outcome %s, got %s", FillComplete, outcome)
	}
}

func TestFillFieldsEmptyZipSkipsWithoutResolving(t *testing.T) {
	p := testSynthesizer()
	scope := newFakeScope()
	markFieldsPresent(scope)

	details := testPaymentDetails()
	details.ZipCode = ""

	outcome, err := p.fillFields(scope, details)
	if err != nil {
		t.Fatalf("Expected the fill to succeed, got: %v", err)
	}
	if outcome != FillPartial {
		t.Errorf("Expected outcome %s, got %s", FillPartial, outcome)
	}

	zipSelector := "css:" + paymentFields[len(paymentFields)-1].Locators.Strategies[0].Selector
	for _, call := range scope.calls {
		if call == zipSelector {
			t.Error("An empty optional value must skip the field without resolving it")
		}
	}
}

func TestFillFieldsMissingOptionalFieldDowngrades(t *testing.T) {
	p := testSynthesizer()
	scope := newFakeScope()
	markFieldsPresent(scope, "zip code")

	outcome, err := p.fillFields(scope, testPaymentDetails())
	if err != nil {
		t.Fatalf("Expected the fill to tolerate a missing optional field, got: %v", err)
	}
	if outcome != FillPartial {
		t.Errorf("Expected outcome %s, got %s", FillPartial, outcome)
	}
}

func TestFillFieldsMissingRequiredFieldAborts(t *testing.T) {
	p := testSynthesizer()
	scope := newFakeScope()
	markFieldsPresent(scope, "cvc")

	outcome, err := p.fillFields(scope, testPaymentDetails())
	if outcome != FillAborted {
		t.Errorf("Expected outcome %s, got %s", FillAborted, outcome)
	}

	var entryErr *FieldEntryFailureError
	if !errors.As(err, &entryErr) {
		t.Fatalf("Expected FieldEntryFailureError, got %T: %v", err, err)
	}
	if entryErr.Field != "cvc" {
		t.Errorf("Expected the failing field to be cvc, got %q", entryErr.Field)
	}

	var notFound *TargetNotFoundError
	if !errors.As(err, &notFound) {
		t.Error("Expected the locator failure to stay reachable through Unwrap")
	}
}

func TestFillFieldsRequiredEntryFailureAborts(t *testing.T) {
	p := testSynthesizer()
	scope := newFakeScope()
	markFieldsPresent(scope)

	p.enter = func(_ *rod.Element, field PaymentFieldDescriptor, _ string) error {
		if field.LogicalName == "card number" {
			return fmt.Errorf("widget rejected the value")
		}
		return nil
	}

	outcome, err := p.fillFields(scope, testPaymentDetails())
	if outcome != FillAborted {
		t.Errorf("Expected outcome %s, got %s", FillAborted, outcome)
	}

	var entryErr *FieldEntryFailureError
	if !errors.As(err, &entryErr) {
		t.Fatalf("Expected FieldEntryFailureError, got %T: %v", err, err)
	}
	if entryErr.Field != "card number" {
		t.Errorf("Expected the failing field to be card number, got %q", entryErr.Field)
	}
}

func TestPaymentSubmitCascade(t *testing.T) {
	wantOrder := []string{"submit-role", "submit-id"}
	if diff := cmp.Diff(wantOrder, paymentSubmit.strategyNames()); diff != "" {
		t.Errorf("Submit cascade order mismatch (-want +got):\n%s", diff)
	}
}
