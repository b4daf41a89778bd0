package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlowState is one named point in the forward-only purchase state machine.
// Transitions only move forward; Failed is terminal and reachable from any
// state.
type FlowState string

const (
	StateHome              FlowState = "Home"
	StateCategorySelected  FlowState = "CategorySelected"
	StateProductsAdded     FlowState = "ProductsAdded"
	StateCartVerified      FlowState = "CartVerified"
	StateCheckoutReached   FlowState = "CheckoutReached"
	StatePaymentFormFilled FlowState = "PaymentFormFilled"
	StatePaymentSubmitted  FlowState = "PaymentSubmitted"
	StatePaymentConfirmed  FlowState = "PaymentConfirmed"
	StateFailed            FlowState = "Failed"
)

// Category is one of the two weather-dependent catalogs and the pair of
// product attributes that must be bought from it.
type Category struct {
	Name     string
	Keywords [2]string
	Button   LocatorSpec
}

var (
	categoryMoisturizers = Category{
		Name:     "Moisturizers",
		Keywords: [2]string{"Aloe", "Almond"},
		Button: LocatorSpec{
			Name: "buy moisturizers button",
			Strategies: []Strategy{
				{Name: "button-text", Kind: ByText, Selector: "button", Pattern: "Buy moisturizers"},
				{Name: "button-xpath", Kind: ByXPath, Selector: `//button[contains(text(),'Buy moisturizers')]`},
			},
		},
	}
	categorySunscreens = Category{
		Name:     "Sunscreens",
		Keywords: [2]string{"SPF-50", "SPF-30"},
		Button: LocatorSpec{
			Name: "buy sunscreens button",
			Strategies: []Strategy{
				{Name: "button-text", Kind: ByText, Selector: "button", Pattern: "Buy sunscreens"},
				{Name: "button-xpath", Kind: ByXPath, Selector: `//button[contains(text(),'Buy sunscreens')]`},
			},
		},
	}
)

const (
	lowTemperatureThreshold  = 19
	highTemperatureThreshold = 34
)

// chooseCategory routes a temperature to a catalog. Values in the inclusive
// band [19,34], including the boundaries themselves, route to neither; that
// is an explicit fatal condition, never a silent default.
func chooseCategory(temperature int) (Category, error) {
	switch {
	case temperature < lowTemperatureThreshold:
		return categoryMoisturizers, nil
	case temperature > highTemperatureThreshold:
		return categorySunscreens, nil
	default:
		return Category{}, &UnhandledConditionRangeError{Value: temperature}
	}
}

// parseTemperature extracts the signed numeric magnitude from a display text
// such as "25°C".
func parseTemperature(text string) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("no numeric temperature in %q", text)
	}
	return strconv.Atoi(cleaned)
}

var payWithCard = LocatorSpec{
	Name: "pay with card button",
	Strategies: []Strategy{
		{Name: "button-text", Kind: ByText, Selector: "button", Pattern: "Pay with Card"},
		{Name: "stripe-button-class", Kind: ByCSS, Selector: "button.stripe-button-el"},
		{Name: "partial-stripe-class", Kind: ByCSS, Selector: `button[class*="stripe"]`},
		{Name: "span-parent", Kind: ByXPath, Selector: `//span[contains(text(),'Pay with Card')]/parent::button`},
	},
}

var successHeading = LocatorSpec{
	Name: "payment success heading",
	Strategies: []Strategy{
		{Name: "heading-text", Kind: ByXPath, Selector: `//*[contains(text(),'PAYMENT SUCCESS')]`},
	},
}

var successBody = LocatorSpec{
	Name: "payment success body",
	Strategies: []Strategy{
		{Name: "body-text", Kind: ByXPath, Selector: `//*[contains(text(),'Your payment was successful')]`},
		{Name: "followup-text", Kind: ByXPath, Selector: `//*[contains(text(),'follow-up call from our sales team')]`},
	},
}

// FlowResult records where a run ended and why.
type FlowResult struct {
	Stage    FlowState
	Category string
	Message  string
	Err      error
}

// Succeeded reports whether the run reached a terminal success state. In dry
// run mode the flow deliberately stops after filling the payment form.
func (r *FlowResult) Succeeded(dryRun bool) bool {
	if r.Err != nil {
		return false
	}
	if dryRun {
		return r.Stage == StatePaymentFormFilled
	}
	return r.Stage == StatePaymentConfirmed
}

// FlowOrchestrator sequences Home → Category → Cart → Checkout → Payment →
// Success, delegating UI work to the other components. One run, one browser
// session, strictly sequential steps.
type FlowOrchestrator struct {
	config   *Config
	session  *Session
	resolver *Resolver
	scanner  *CatalogScanner
	payment  *PaymentFormSynthesizer
}

func NewFlowOrchestrator(config *Config, session *Session) *FlowOrchestrator {
	resolver := NewResolver(config, session.debugLog)
	return &FlowOrchestrator{
		config:   config,
		session:  session,
		resolver: resolver,
		scanner:  NewCatalogScanner(resolver, session.logf, session.debugLog),
		payment:  NewPaymentFormSynthesizer(resolver, config, session.logf, session.debugLog),
	}
}

func (o *FlowOrchestrator) fail(stage FlowState, err error) *FlowResult {
	fmt.Printf(T("flow_failed_at")+"\n", stage, err)
	return &FlowResult{Stage: stage, Err: err}
}

// failProductSelection records scan, selection and add failures. The run
// terminates at ProductsAdded, the stage the failure kept it from completing.
func (o *FlowOrchestrator) failProductSelection(err error) *FlowResult {
	return o.fail(StateProductsAdded, err)
}

// Run drives the full purchase journey once.
func (o *FlowOrchestrator) Run() *FlowResult {
	page := o.session.Page()

	fmt.Printf(T("flow_opening_home")+"\n", o.config.AppURL)
	if err := o.session.Navigate(o.config.AppURL); err != nil {
		return o.fail(StateHome, err)
	}
	if err := o.session.WaitPageReady(); err != nil {
		return o.fail(StateHome, err)
	}

	// Sanity check: both category entry points must exist before branching.
	if !o.resolver.IsPresent(page, categoryMoisturizers.Button) ||
		!o.resolver.IsPresent(page, categorySunscreens.Button) {
		return o.fail(StateHome, fmt.Errorf("homepage is missing its category buttons"))
	}

	temperature, err := o.readTemperature()
	if err != nil {
		return o.fail(StateHome, err)
	}
	fmt.Printf(T("flow_temperature")+"\n", temperature)

	category, err := chooseCategory(temperature)
	if err != nil {
		return o.fail(StateHome, err)
	}
	fmt.Printf(T("flow_category_chosen")+"\n", category.Name)

	if err := o.clickResolved(page, category.Button); err != nil {
		return o.fail(StateHome, err)
	}
	if err := o.session.WaitPageReady(); err != nil {
		return o.fail(StateCategorySelected, err)
	}

	// One scan + selection per required attribute; the page mutates after
	// each add, so each pick works on a fresh scan.
	for i, keyword := range category.Keywords {
		if err := o.addCheapestMatching(keyword, i+1); err != nil {
			return o.failProductSelection(err)
		}
	}
	fmt.Println(T("flow_products_added"))

	cartButton := LocatorSpec{
		Name: "cart button",
		Strategies: []Strategy{
			{Name: "cart-onclick", Kind: ByCSS, Selector: o.config.Selectors.CartButton},
			{Name: "cart-text", Kind: ByText, Selector: "button", Pattern: "Cart"},
		},
	}
	if err := o.clickResolved(page, cartButton); err != nil {
		return o.fail(StateProductsAdded, err)
	}
	if err := o.session.WaitPageReady(); err != nil {
		return o.fail(StateProductsAdded, err)
	}

	ledger := NewCartLedger(o.resolver, page, o.config, o.session.debugLog)
	snapshot, err := ledger.Snapshot()
	if err != nil {
		return o.fail(StateProductsAdded, err)
	}
	for i, item := range snapshot.Items {
		fmt.Printf(T("flow_cart_item")+"\n", i+1, item.Name, item.Price)
	}
	if !ledger.VerifyCount(2) {
		return o.fail(StateProductsAdded, &CartCountMismatchError{Expected: 2, Actual: snapshot.ItemCount})
	}
	if !ledger.VerifyTotalPositive() {
		return o.fail(StateProductsAdded, fmt.Errorf("cart total is not a positive amount"))
	}
	fmt.Printf(T("flow_cart_verified")+"\n", snapshot.ItemCount, snapshot.TotalPrice)

	if err := o.clickResolved(page, payWithCard); err != nil {
		return o.fail(StateCartVerified, err)
	}
	fmt.Println(T("flow_checkout_reached"))

	outcome, err := o.payment.Fill(page, PaymentDetails{
		Email:      o.config.Payment.Email,
		CardNumber: o.config.Payment.CardNumber,
		ExpiryDate: o.config.Payment.ExpiryDate,
		CVC:        o.config.Payment.CVC,
		ZipCode:    o.config.Payment.ZipCode,
	})
	if err != nil {
		return o.fail(StateCheckoutReached, err)
	}
	fmt.Printf(T("flow_payment_filled")+"\n", outcome)

	if o.config.DryRun {
		return &FlowResult{Stage: StatePaymentFormFilled, Category: category.Name}
	}

	// The widget's processing time is unobservable from outside; this is
	// the one place a fixed settle delay is justified.
	time.Sleep(o.config.submitSettleDelay())

	message, err := o.verifySuccess()
	if err != nil {
		return o.fail(StatePaymentSubmitted, err)
	}

	fmt.Println(T("flow_payment_confirmed"))
	return &FlowResult{Stage: StatePaymentConfirmed, Category: category.Name, Message: message}
}

func (o *FlowOrchestrator) readTemperature() (int, error) {
	spec := LocatorSpec{
		Name:          "temperature display",
		RequireUnique: true,
		Strategies: []Strategy{
			{Name: "temperature-id", Kind: ByCSS, Selector: o.config.Selectors.Temperature},
		},
	}
	el, err := o.resolver.Resolve(o.session.Page(), spec)
	if err != nil {
		return 0, err
	}
	text, err := el.Text()
	if err != nil {
		return 0, fmt.Errorf("failed to read temperature: %w", err)
	}
	return parseTemperature(text)
}

func (o *FlowOrchestrator) addCheapestMatching(keyword string, expectedCartCount int) error {
	records, err := o.scanner.Scan(o.session.Page())
	if err != nil {
		return err
	}

	pick, err := PickCheapest(records, keyword)
	if err != nil {
		return err
	}
	fmt.Printf(T("flow_cheapest_pick")+"\n", keyword, pick.DisplayName, pick.UnitPrice)

	o.session.ScrollIntoView(pick.AddButton)
	if err := pick.AddButton.Click(clickLeft, 1); err != nil {
		return fmt.Errorf("failed to activate add button for %q: %w", pick.DisplayName, err)
	}

	o.waitForCartBadge(expectedCartCount)
	return nil
}

// waitForCartBadge polls the cart badge until it shows the expected count or
// the bounded wait runs out. The badge is informational; the authoritative
// count check happens on the cart page.
func (o *FlowOrchestrator) waitForCartBadge(expected int) {
	badge := LocatorSpec{
		Name: "cart badge",
		Strategies: []Strategy{
			{Name: "badge-id", Kind: ByCSS, Selector: o.config.Selectors.CartBadge},
		},
	}

	deadline := time.Now().Add(o.config.strategyTimeout())
	for {
		el, err := o.resolver.ResolveWithin(o.session.Page(), badge, o.config.pollInterval())
		if err == nil {
			if text, terr := el.Text(); terr == nil {
				if count, perr := parsePrice(text); perr == nil && count == expected {
					return
				}
			}
		}
		if time.Now().After(deadline) {
			o.session.debugLog("cart badge never showed %d items", expected)
			return
		}
		time.Sleep(o.config.pollInterval())
	}
}

func (o *FlowOrchestrator) clickResolved(scope Scope, spec LocatorSpec) error {
	el, err := o.resolver.Resolve(scope, spec)
	if err != nil {
		return err
	}
	o.session.ScrollIntoView(el)
	if err := el.Click(clickLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", spec.Name, err)
	}
	return nil
}

// verifySuccess requires both success indicators independently; a heading
// without the body, or the reverse, is a verification failure.
func (o *FlowOrchestrator) verifySuccess() (string, error) {
	page := o.session.Page()

	headingEl, err := o.resolver.Resolve(page, successHeading)
	headingPresent := err == nil
	bodyPresent := o.resolver.IsPresent(page, successBody)

	if !headingPresent || !bodyPresent {
		return "", &PaymentVerificationFailureError{
			HeadingPresent: headingPresent,
			BodyPresent:    bodyPresent,
		}
	}

	message := ""
	if text, terr := headingEl.Text(); terr == nil {
		message = text
	}
	if bodyEl, berr := o.resolver.Resolve(page, successBody); berr == nil {
		if text, terr := bodyEl.Text(); terr == nil {
			if message != "" {
				message += "\n"
			}
			message += text
		}
	}
	return message, nil
}
