package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
)

// ProductRecord is one scanned catalog entry. The add button handle is only
// valid for the page load the scan ran against; navigate and you must rescan.
type ProductRecord struct {
	DisplayName string
	UnitPrice   int
	AddButton   *rod.Element
}

var productContainers = LocatorSpec{
	Name: "product containers",
	Strategies: []Strategy{
		{Name: "parent-of-add-button", Kind: ByXPath, Selector: `//button[contains(text(),'Add')]/parent::*`},
	},
}

var productAddButtons = LocatorSpec{
	Name: "product add buttons",
	Strategies: []Strategy{
		{Name: "add-button-text", Kind: ByXPath, Selector: `//button[contains(text(),'Add')]`},
	},
}

var containerAddButton = LocatorSpec{
	Name: "container add button",
	Strategies: []Strategy{
		{Name: "add-button-text", Kind: ByText, Selector: "button", Pattern: "Add"},
	},
}

// CatalogScanner enumerates product records on a catalog page, tolerating the
// site's inconsistently structured product cards.
type CatalogScanner struct {
	resolver *Resolver
	logf     func(format string, args ...interface{})
	debugf   func(format string, args ...interface{})
}

func NewCatalogScanner(resolver *Resolver, logf, debugf func(string, ...interface{})) *CatalogScanner {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	return &CatalogScanner{resolver: resolver, logf: logf, debugf: debugf}
}

// Scan returns the product records currently on the page, in document order.
// A card whose name or price cannot be extracted is logged and skipped; it
// never aborts the scan.
func (s *CatalogScanner) Scan(page *rod.Page) ([]ProductRecord, error) {
	containers, err := s.resolver.ResolveAll(page, productContainers)
	if err != nil {
		// Fallback: find the add buttons themselves and walk up to their
		// structural parent as the container.
		s.debugf("container locator exhausted, walking up from add buttons")
		buttons, berr := s.resolver.ResolveAll(page, productAddButtons)
		if berr != nil {
			return nil, fmt.Errorf("failed to locate product containers: %w", err)
		}
		containers = nil
		for _, btn := range buttons {
			parent, perr := btn.Parent()
			if perr != nil {
				s.debugf("could not walk to container parent: %v", perr)
				continue
			}
			containers = append(containers, parent)
		}
	}

	var records []ProductRecord
	for _, container := range containers {
		html, err := container.HTML()
		if err != nil {
			s.logf(T("catalog_card_skipped")+"\n", err)
			continue
		}

		name, price, err := parseProductCard(html)
		if err != nil {
			s.logf(T("catalog_card_skipped")+"\n", err)
			continue
		}

		addButton, err := s.resolver.ResolveWithin(container, containerAddButton, time.Second)
		if err != nil {
			s.logf(T("catalog_card_skipped")+"\n", err)
			continue
		}

		records = append(records, ProductRecord{
			DisplayName: name,
			UnitPrice:   price,
			AddButton:   addButton,
		})
		s.logf(T("catalog_product_found")+"\n", name, price)
	}

	return records, nil
}

// parseProductCard extracts the display name and unit price from a product
// card's outer HTML.
func parseProductCard(html string) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", 0, fmt.Errorf("unparseable product card: %w", err)
	}

	name := extractProductName(doc)
	if name == "" {
		return "", 0, fmt.Errorf("product card has no recognizable name")
	}

	priceText := ""
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(sel.Text(), "Price:") {
			priceText = sel.Text()
			return false
		}
		return true
	})
	if priceText == "" {
		return "", 0, fmt.Errorf("product card %q has no price element", name)
	}

	price, err := parsePrice(priceText)
	if err != nil {
		return "", 0, fmt.Errorf("product card %q: %w", name, err)
	}

	return name, price, nil
}

// extractProductName runs the three-tier name cascade: exact class match,
// partial class match, then the first paragraph that is not the price line.
func extractProductName(doc *goquery.Document) string {
	if sel := doc.Find("p.font-weight-bold.top-space-10").First(); sel.Length() > 0 {
		return strings.TrimSpace(sel.Text())
	}

	if sel := doc.Find(`p[class*="font-weight-bold"]`).First(); sel.Length() > 0 {
		return strings.TrimSpace(sel.Text())
	}

	name := ""
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text != "" && !strings.Contains(text, "Price") {
			name = text
			return false
		}
		return true
	})
	return name
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// parsePrice strips every non-numeric character from a price text such as
// "Price: Rs. 150" or "Rupees 350" and parses the remainder as an integer.
func parsePrice(text string) (int, error) {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, fmt.Errorf("no numeric value in price text %q", text)
	}
	price, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid price text %q: %w", text, err)
	}
	return price, nil
}

// PickCheapest returns the lowest-priced record whose display name contains
// the keyword, case-insensitively. Ties resolve to the earliest record in
// scan order. Zero matches is a catalog/content mismatch and is fatal.
func PickCheapest(records []ProductRecord, keyword string) (ProductRecord, error) {
	var cheapest ProductRecord
	found := false

	for _, record := range records {
		if !contains(record.DisplayName, keyword) {
			continue
		}
		if !found || record.UnitPrice < cheapest.UnitPrice {
			cheapest = record
			found = true
		}
	}

	if !found {
		return ProductRecord{}, &NoMatchingProductError{Keyword: keyword}
	}
	return cheapest, nil
}
