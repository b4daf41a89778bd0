package main

import (
	"fmt"

	"github.com/go-rod/rod"
)

// CartItem is one displayed cart row.
type CartItem struct {
	Name  string
	Price string
}

// CartSnapshot is a point-in-time read of the displayed cart. It is never
// cached; the page state can change between reads.
type CartSnapshot struct {
	ItemCount  int
	TotalPrice int
	Items      []CartItem
}

var cartRows = LocatorSpec{
	Name: "cart rows",
	Strategies: []Strategy{
		{Name: "striped-table-rows", Kind: ByCSS, Selector: "table.table-striped tbody tr"},
		{Name: "any-table-rows", Kind: ByCSS, Selector: "table tbody tr"},
	},
}

// CartLedger reads and validates the displayed cart. Read-side only.
type CartLedger struct {
	resolver  *Resolver
	page      *rod.Page
	totalSpec LocatorSpec
	debugf    func(format string, args ...interface{})
}

func NewCartLedger(resolver *Resolver, page *rod.Page, config *Config, debugf func(string, ...interface{})) *CartLedger {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	return &CartLedger{
		resolver: resolver,
		page:     page,
		totalSpec: LocatorSpec{
			Name:          "cart total",
			RequireUnique: true,
			Strategies: []Strategy{
				{Name: "total-id", Kind: ByCSS, Selector: config.Selectors.CartTotal},
			},
		},
		debugf: debugf,
	}
}

// Snapshot reads the cart fresh from the page. A missing or malformed total
// is reported as 0; downstream positivity checks treat that as invalid
// rather than raising here.
func (l *CartLedger) Snapshot() (CartSnapshot, error) {
	rows, err := l.resolver.ResolveAll(l.page, cartRows)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("failed to read cart rows: %w", err)
	}

	snapshot := CartSnapshot{ItemCount: len(rows)}

	for _, row := range rows {
		cells, err := row.Elements("td")
		if err != nil || len(cells) < 2 {
			l.debugf("cart row without name/price cells, skipping detail read")
			continue
		}
		name, err := cells[0].Text()
		if err != nil {
			continue
		}
		price, err := cells[1].Text()
		if err != nil {
			continue
		}
		snapshot.Items = append(snapshot.Items, CartItem{Name: name, Price: price})
	}

	totalEl, err := l.resolver.Resolve(l.page, l.totalSpec)
	if err != nil {
		l.debugf("cart total not resolved: %v", err)
		return snapshot, nil
	}
	totalText, err := totalEl.Text()
	if err != nil {
		l.debugf("cart total unreadable: %v", err)
		return snapshot, nil
	}
	snapshot.TotalPrice = parseCartTotal(totalText)

	return snapshot, nil
}

// VerifyCount re-reads the cart and checks the row count.
func (l *CartLedger) VerifyCount(expected int) bool {
	snapshot, err := l.Snapshot()
	if err != nil {
		l.debugf("cart snapshot failed during count verification: %v", err)
		return false
	}
	return snapshot.ItemCount == expected
}

// VerifyTotalPositive re-reads the cart and checks the displayed total is a
// positive amount. A zero from a malformed total fails this check.
func (l *CartLedger) VerifyTotalPositive() bool {
	snapshot, err := l.Snapshot()
	if err != nil {
		l.debugf("cart snapshot failed during total verification: %v", err)
		return false
	}
	return snapshot.TotalPrice > 0
}

// parseCartTotal parses a labeled total such as "Rupees 350". Empty or
// malformed text maps to 0.
func parseCartTotal(text string) int {
	total, err := parsePrice(text)
	if err != nil {
		return 0
	}
	return total
}
