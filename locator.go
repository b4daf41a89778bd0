package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
)

// Scope is the UI context locator cascades run against. Both *rod.Page and
// *rod.Element satisfy it, so the same cascade can search the document, a
// product container or the payment frame.
type Scope interface {
	Has(selector string) (bool, *rod.Element, error)
	HasX(selector string) (bool, *rod.Element, error)
	HasR(selector, jsRegex string) (bool, *rod.Element, error)
	Elements(selector string) (rod.Elements, error)
	ElementsX(selector string) (rod.Elements, error)
}

type StrategyKind int

const (
	ByCSS StrategyKind = iota
	ByXPath
	ByText // CSS selector narrowed by a text pattern
)

// Strategy is one independent way of finding a logical target.
type Strategy struct {
	Name     string
	Kind     StrategyKind
	Selector string
	Pattern  string // only for ByText
}

func (s Strategy) find(scope Scope) (bool, *rod.Element, error) {
	switch s.Kind {
	case ByXPath:
		return scope.HasX(s.Selector)
	case ByText:
		return scope.HasR(s.Selector, s.Pattern)
	default:
		return scope.Has(s.Selector)
	}
}

func (s Strategy) findAll(scope Scope) (rod.Elements, error) {
	switch s.Kind {
	case ByXPath:
		return scope.ElementsX(s.Selector)
	case ByText:
		els, err := scope.Elements(s.Selector)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid text pattern %q: %w", s.Pattern, err)
		}
		var matched rod.Elements
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			if re.MatchString(text) {
				matched = append(matched, el)
			}
		}
		return matched, nil
	default:
		return scope.Elements(s.Selector)
	}
}

// LocatorSpec names a logical target and lists the strategies for finding it,
// in the order they must be tried. The first strategy that yields a live,
// visible match wins; no strategy is skipped because an earlier one partially
// succeeded.
type LocatorSpec struct {
	Name          string
	Strategies    []Strategy
	RequireUnique bool
}

func (spec LocatorSpec) strategyNames() []string {
	names := make([]string, len(spec.Strategies))
	for i, s := range spec.Strategies {
		names[i] = s.Name
	}
	return names
}

// Resolver runs locator cascades with bounded per-strategy waits.
type Resolver struct {
	strategyTimeout time.Duration
	pollInterval    time.Duration

	// visible is injectable so cascade behavior is testable without a
	// live browser.
	visible func(el *rod.Element) bool

	debugf func(format string, args ...interface{})
}

func NewResolver(config *Config, debugf func(string, ...interface{})) *Resolver {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}
	return &Resolver{
		strategyTimeout: config.strategyTimeout(),
		pollInterval:    config.pollInterval(),
		visible: func(el *rod.Element) bool {
			v, err := el.Visible()
			return err == nil && v
		},
		debugf: debugf,
	}
}

// Resolve tries each strategy in declared order, polling presence and
// visibility until the per-strategy deadline. Intermediate failures are
// absorbed; only full exhaustion surfaces, as a TargetNotFoundError.
func (r *Resolver) Resolve(scope Scope, spec LocatorSpec) (*rod.Element, error) {
	return r.resolveWithin(scope, spec, r.strategyTimeout)
}

// ResolveWithin is Resolve with a caller-chosen per-strategy deadline, used
// for optional targets that must give up quickly.
func (r *Resolver) ResolveWithin(scope Scope, spec LocatorSpec, timeout time.Duration) (*rod.Element, error) {
	return r.resolveWithin(scope, spec, timeout)
}

func (r *Resolver) resolveWithin(scope Scope, spec LocatorSpec, timeout time.Duration) (*rod.Element, error) {
	sawMatch := false

	for _, strategy := range spec.Strategies {
		deadline := time.Now().Add(timeout)
		for {
			found, el, err := strategy.find(scope)
			if err != nil {
				r.debugf("locator %s: strategy %s errored: %v", spec.Name, strategy.Name, err)
			} else if found {
				sawMatch = true
				if el == nil || r.visible(el) {
					if spec.RequireUnique {
						if err := r.checkUnique(scope, strategy, spec.Name); err != nil {
							return nil, err
						}
					}
					r.debugf("locator %s: resolved via strategy %s", spec.Name, strategy.Name)
					return el, nil
				}
			}
			if time.Now().After(deadline) {
				break
			}
			time.Sleep(r.pollInterval)
		}
		r.debugf("locator %s: strategy %s exhausted, falling through", spec.Name, strategy.Name)
	}

	reason := ReasonNotFound
	if sawMatch {
		reason = ReasonTimeout
	}
	return nil, &TargetNotFoundError{
		Target:     spec.Name,
		Strategies: spec.strategyNames(),
		Reason:     reason,
	}
}

func (r *Resolver) checkUnique(scope Scope, strategy Strategy, target string) error {
	els, err := strategy.findAll(scope)
	if err != nil {
		return nil // uniqueness is best-effort; the match itself stands
	}
	if len(els) > 1 {
		return &TargetNotFoundError{
			Target:     target,
			Strategies: []string{strategy.Name},
			Reason:     ReasonAmbiguous,
		}
	}
	return nil
}

// ResolveAll runs the same cascade but returns every match of the first
// strategy that yields any.
func (r *Resolver) ResolveAll(scope Scope, spec LocatorSpec) (rod.Elements, error) {
	for _, strategy := range spec.Strategies {
		deadline := time.Now().Add(r.strategyTimeout)
		for {
			els, err := strategy.findAll(scope)
			if err != nil {
				r.debugf("locator %s: strategy %s errored: %v", spec.Name, strategy.Name, err)
			} else if len(els) > 0 {
				r.debugf("locator %s: resolved %d elements via strategy %s", spec.Name, len(els), strategy.Name)
				return els, nil
			}
			if time.Now().After(deadline) {
				break
			}
			time.Sleep(r.pollInterval)
		}
		r.debugf("locator %s: strategy %s exhausted, falling through", spec.Name, strategy.Name)
	}

	return nil, &TargetNotFoundError{
		Target:     spec.Name,
		Strategies: spec.strategyNames(),
		Reason:     ReasonNotFound,
	}
}

// IsPresent is a single non-blocking pass over the cascade. It never returns
// an error; optional-element checks must not throw.
func (r *Resolver) IsPresent(scope Scope, spec LocatorSpec) bool {
	for _, strategy := range spec.Strategies {
		found, el, err := strategy.find(scope)
		if err != nil || !found {
			continue
		}
		if el == nil || r.visible(el) {
			return true
		}
	}
	return false
}
