package main

import (
	"fmt"
	"strings"
)

// FailureReason classifies why a locator cascade came up empty.
type FailureReason string

const (
	ReasonNotFound  FailureReason = "not_found"
	ReasonTimeout   FailureReason = "timeout"
	ReasonAmbiguous FailureReason = "ambiguous_match"
)

// TargetNotFoundError is returned when every strategy in a locator cascade
// has been tried and none produced a usable element.
type TargetNotFoundError struct {
	Target     string
	Strategies []string
	Reason     FailureReason
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("target %q not found (%s) after trying strategies: %s",
		e.Target, e.Reason, strings.Join(e.Strategies, ", "))
}

// NoMatchingProductError means the catalog had zero records whose name
// contains the requested keyword. A content mismatch, never retried.
type NoMatchingProductError struct {
	Keyword string
}

func (e *NoMatchingProductError) Error() string {
	return fmt.Sprintf("no product found containing %q", e.Keyword)
}

// UnhandledConditionRangeError is raised for temperatures in the inclusive
// band [19,34], which routes to neither catalog.
type UnhandledConditionRangeError struct {
	Value int
}

func (e *UnhandledConditionRangeError) Error() string {
	return fmt.Sprintf("temperature %d°C is outside both branches (must be <19 or >34)", e.Value)
}

// CartCountMismatchError means the cart did not hold the expected number of
// rows after the add steps.
type CartCountMismatchError struct {
	Expected int
	Actual   int
}

func (e *CartCountMismatchError) Error() string {
	return fmt.Sprintf("cart count mismatch: expected %d items, found %d", e.Expected, e.Actual)
}

// FieldEntryFailureError means a required payment field could not be resolved
// or populated.
type FieldEntryFailureError struct {
	Field string
	Err   error
}

func (e *FieldEntryFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment field %q entry failed: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("payment field %q entry failed", e.Field)
}

func (e *FieldEntryFailureError) Unwrap() error { return e.Err }

// PaymentVerificationFailureError means the success screen showed at most one
// of the two required indicators. Partial presence is never success.
type PaymentVerificationFailureError struct {
	HeadingPresent bool
	BodyPresent    bool
}

func (e *PaymentVerificationFailureError) Error() string {
	return fmt.Sprintf("payment success not verified (heading present: %v, body present: %v)",
		e.HeadingPresent, e.BodyPresent)
}
