package money

import "testing"

func TestParseMinor(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"100", 10000},
		{"100.5", 10050},
		{"100.55", 10055},
		{"0.01", 1},
		{".5", 50},
		{"-12.34", -1234},
		{"+3", 300},
		{" 7.00 ", 700},
	}
	for _, tt := range tests {
		got, err := ParseMinor(tt.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseMinorRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,50", "--1"} {
		if _, err := ParseMinor(input); err != ErrInvalidAmount {
			t.Fatalf("ParseMinor(%q): expected ErrInvalidAmount, got %v", input, err)
		}
	}
	if _, err := ParseMinor("1.005"); err != ErrTooManyDecimals {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{10000, "100.00"},
		{1, "0.01"},
		{-1234, "-12.34"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatMinor(tt.input); got != tt.want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
