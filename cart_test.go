package main

import "testing"

func TestParseCartTotal(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"Rupees 350", 350},
		{"Rupees 1000", 1000},
		{"Rs. 280", 280},
		{"Total: Rupees 499", 499},
		// Malformed or empty totals read as 0; the positivity check
		// downstream rejects them instead of this parser raising.
		{"", 0},
		{"Rupees", 0},
		{"no numbers at all", 0},
	}

	for _, test := range tests {
		result := parseCartTotal(test.input)
		if result != test.expected {
			t.Errorf("parseCartTotal(%q) = %d, expected %d", test.input, result, test.expected)
		}
	}
}

func TestCartSnapshotZeroTotalFailsPositivity(t *testing.T) {
	// A snapshot whose total parsed to 0 must never pass verification.
	snapshot := CartSnapshot{ItemCount: 2, TotalPrice: parseCartTotal("Rupees")}
	if snapshot.TotalPrice > 0 {
		t.Error("Malformed total should parse to 0 and fail the positivity check")
	}
}
