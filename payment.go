package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// FillOutcome reports how a payment form fill ended.
type FillOutcome int

const (
	// FillComplete: all five fields populated and the form submitted.
	FillComplete FillOutcome = iota
	// FillPartial: required fields populated, optional postal code absent
	// on this region's form. Submission still proceeds.
	FillPartial
	// FillAborted: a required field could not be resolved or populated.
	FillAborted
)

// clickLeft is the only mouse button this flow ever uses.
const clickLeft = proto.InputMouseButtonLeft

func (o FillOutcome) String() string {
	switch o {
	case FillComplete:
		return "complete"
	case FillPartial:
		return "partial"
	default:
		return "aborted"
	}
}

// PaymentDetails holds the values for the five logical payment fields.
type PaymentDetails struct {
	Email      string
	CardNumber string
	ExpiryDate string // MMYY; separators are stripped before typing
	CVC        string
	ZipCode    string // optional
}

// PaymentFieldDescriptor describes one logical payment field: how to find it
// and whether the fill may proceed without it.
type PaymentFieldDescriptor struct {
	LogicalName string
	Locators    LocatorSpec
	Required    bool
}

// The email field's markup is the least stable, hence its deeper cascade.
var paymentFields = []PaymentFieldDescriptor{
	{
		LogicalName: "email",
		Required:    true,
		Locators: LocatorSpec{
			Name: "email field",
			Strategies: []Strategy{
				{Name: "email-id", Kind: ByCSS, Selector: "#email"},
				{Name: "email-type", Kind: ByCSS, Selector: `input[type="email"]`},
				{Name: "email-placeholder", Kind: ByXPath, Selector: `//input[contains(@placeholder,'Email') or contains(@placeholder,'email')]`},
			},
		},
	},
	{
		LogicalName: "card number",
		Required:    true,
		Locators: LocatorSpec{
			Name: "card number field",
			Strategies: []Strategy{
				{Name: "card-placeholder", Kind: ByCSS, Selector: `input[placeholder="Card number"]`},
			},
		},
	},
	{
		LogicalName: "expiry date",
		Required:    true,
		Locators: LocatorSpec{
			Name: "expiry field",
			Strategies: []Strategy{
				{Name: "expiry-placeholder", Kind: ByCSS, Selector: `input[placeholder="MM / YY"]`},
			},
		},
	},
	{
		LogicalName: "cvc",
		Required:    true,
		Locators: LocatorSpec{
			Name: "cvc field",
			Strategies: []Strategy{
				{Name: "cvc-placeholder", Kind: ByCSS, Selector: `input[placeholder="CVC"]`},
			},
		},
	},
	{
		LogicalName: "zip code",
		Required:    false,
		Locators: LocatorSpec{
			Name: "zip field",
			Strategies: []Strategy{
				{Name: "zip-placeholder", Kind: ByCSS, Selector: `input[placeholder="ZIP Code"]`},
			},
		},
	},
}

var paymentSubmit = LocatorSpec{
	Name: "payment submit button",
	Strategies: []Strategy{
		{Name: "submit-role", Kind: ByCSS, Selector: `button[type="submit"]`},
		{Name: "submit-id", Kind: ByCSS, Selector: "#submitButton"},
	},
}

// PaymentFormSynthesizer drives the cross-origin hosted payment widget. The
// widget validates input incrementally and rejects bulk-paste assignment, so
// every field is focused, cleared, then typed one character at a time with a
// fixed pacing interval, followed by a settle delay and a read-back check.
type PaymentFormSynthesizer struct {
	resolver *Resolver
	config   *Config
	logf     func(format string, args ...interface{})
	debugf   func(format string, args ...interface{})

	// enter performs the focus, clear, type, settle, read-back routine on a
	// resolved field. Injectable so outcome logic is testable without a
	// live widget.
	enter func(el *rod.Element, field PaymentFieldDescriptor, value string) error
}

func NewPaymentFormSynthesizer(resolver *Resolver, config *Config, logf, debugf func(string, ...interface{})) *PaymentFormSynthesizer {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	p := &PaymentFormSynthesizer{resolver: resolver, config: config, logf: logf, debugf: debugf}
	p.enter = p.enterField
	return p
}

// Fill locates the payment iframe on the given page, fills the five logical
// fields inside it and activates the submit control. The caller always gets
// back control on the outer page scope, whatever happens inside the frame;
// nothing here leaves the session pointed at the widget.
func (p *PaymentFormSynthesizer) Fill(page *rod.Page, details PaymentDetails) (FillOutcome, error) {
	frameSpec := LocatorSpec{
		Name: "payment frame",
		Strategies: []Strategy{
			{Name: "frame-name", Kind: ByCSS, Selector: p.config.Selectors.PaymentFrame},
		},
	}

	frameEl, err := p.resolver.Resolve(page, frameSpec)
	if err != nil {
		return FillAborted, fmt.Errorf("payment widget frame not found: %w", err)
	}

	frame, err := frameEl.Frame()
	if err != nil {
		return FillAborted, fmt.Errorf("failed to enter payment frame: %w", err)
	}

	outcome, err := p.fillFields(frame, details)
	if err != nil {
		return outcome, err
	}

	if err := p.submit(frame); err != nil {
		return FillAborted, err
	}

	return outcome, nil
}

// fillFields runs the per-field loop against a scope. An absent or unfillable
// optional field downgrades the outcome to partial; a required field that
// cannot be resolved or populated aborts the fill.
func (p *PaymentFormSynthesizer) fillFields(scope Scope, details PaymentDetails) (FillOutcome, error) {
	outcome := FillComplete
	values := p.fieldValues(details)

	for _, field := range paymentFields {
		value := values[field.LogicalName]

		if !field.Required && value == "" {
			p.logf(T("payment_optional_skipped")+"\n", field.LogicalName)
			outcome = FillPartial
			continue
		}

		if err := p.fillField(scope, field, value); err != nil {
			if field.Required {
				return FillAborted, &FieldEntryFailureError{Field: field.LogicalName, Err: err}
			}
			p.logf(T("payment_optional_skipped")+"\n", field.LogicalName)
			outcome = FillPartial
		}
	}

	return outcome, nil
}

func (p *PaymentFormSynthesizer) fieldValues(details PaymentDetails) map[string]string {
	return map[string]string{
		"email":       details.Email,
		"card number": digitsOnly(details.CardNumber),
		"expiry date": digitsOnly(details.ExpiryDate),
		"cvc":         details.CVC,
		"zip code":    strings.TrimSpace(details.ZipCode),
	}
}

func (p *PaymentFormSynthesizer) fillField(scope Scope, field PaymentFieldDescriptor, value string) error {
	timeout := p.config.strategyTimeout()
	if !field.Required {
		// Optional fields get a short wait; absence is normal, not an error.
		timeout = p.config.optionalTimeout()
	}

	el, err := p.resolver.ResolveWithin(scope, field.Locators, timeout)
	if err != nil {
		return err
	}

	if field.LogicalName == "card number" {
		p.logf(T("payment_entering_field")+"\n", field.LogicalName, maskCardNumber(value))
	} else {
		p.logf(T("payment_entering_field")+"\n", field.LogicalName, value)
	}

	return p.enter(el, field, value)
}

func (p *PaymentFormSynthesizer) enterField(el *rod.Element, field PaymentFieldDescriptor, value string) error {
	if err := el.Click(clickLeft, 1); err != nil {
		return fmt.Errorf("failed to focus field: %w", err)
	}
	if err := clearField(el); err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}

	if err := p.typePaced(el, value); err != nil {
		return fmt.Errorf("failed to type value: %w", err)
	}

	time.Sleep(p.config.fieldSettleDelay())

	// Read-back: the widget sometimes swallows input it considered invalid.
	if field.Required {
		current, err := el.Property("value")
		if err != nil {
			return fmt.Errorf("failed to read field back: %w", err)
		}
		if current.Str() == "" {
			return fmt.Errorf("field is empty after entry")
		}
		p.debugf("field %s holds %d characters after entry", field.LogicalName, len(current.Str()))
	}

	return nil
}

// typePaced sends the value one character at a time with the configured
// inter-character delay. Pacing is a functional requirement of the widget,
// not a stylistic choice.
func (p *PaymentFormSynthesizer) typePaced(el *rod.Element, value string) error {
	delay := p.config.typingDelay()
	for _, r := range value {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

func clearField(el *rod.Element) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Type(input.Backspace)
}

func (p *PaymentFormSynthesizer) submit(frame *rod.Page) error {
	submitEl, err := p.resolver.Resolve(frame, paymentSubmit)
	if err != nil {
		return fmt.Errorf("payment submit control not found: %w", err)
	}

	if p.config.DryRun {
		p.logf(T("payment_dry_run_stop") + "\n")
		return nil
	}

	if err := submitEl.Click(clickLeft, 1); err != nil {
		return fmt.Errorf("failed to activate payment submit: %w", err)
	}
	p.logf(T("payment_submitted") + "\n")
	return nil
}

// maskCardNumber hides all but the last four digits in log output.
func maskCardNumber(cardNumber string) string {
	clean := digitsOnly(cardNumber)
	if len(clean) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(clean)-4) + clean[len(clean)-4:]
}

func digitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
