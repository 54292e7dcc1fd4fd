package extract

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "colon with thousands", input: "₡25,500.00", want: "25500"},
		{name: "dollar plain", input: "$45.20", want: "45.2"},
		{name: "bare with thousands", input: "1,234.56", want: "1234.56"},
		{name: "european style", input: "1.234,56", want: "1234.56"},
		{name: "comma decimal marker", input: "45,20", want: "45.2"},
		{name: "comma thousands only", input: "25,500", want: "25500"},
		{name: "multiple comma groups", input: "1,234,567", want: "1234567"},
		{name: "no separators", input: "500", want: "500"},
		{name: "symbol with space", input: "₡ 25500.00", want: "25500"},
		{name: "leading whitespace", input: "  $99.99", want: "99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if !ok {
				t.Fatalf("ParseAmount(%q) not parsed", tt.input)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAmountRejectsNonNumeric(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "₡", "$-"} {
		if got, ok := ParseAmount(input); ok {
			t.Errorf("ParseAmount(%q) = %s, want rejection", input, got)
		}
	}
}

func TestCurrencyHint(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "₡25,500.00", want: "crc"},
		{input: "$45.20", want: "usd"},
		{input: "1,234.56", want: ""},
	}

	for _, tt := range tests {
		if got := currencyHint(tt.input); got != tt.want {
			t.Errorf("currencyHint(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
