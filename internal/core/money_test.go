package core

import "testing"

func TestParseLocaleAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"3,000.00", 300000, false},
		{"1,234,567.89", 123456789, false},
		{"12.34", 1234, false},
		{"12", 1200, false},
		{"€ 150.50", 15050, false},
		{"€99", 9900, false},
		{"0.01", 1, false},
		{"12.345", 1234, false}, // third decimal rounds down
		{"12.346", 1235, false}, // third decimal rounds up
		{"", 0, true},
		{"   ", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-100", 0, true},
		{"+100", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocaleAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLocaleAmount(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocaleAmount(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocaleAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyEuros(t *testing.T) {
	m := Money{Cents: 123456}
	if m.Euros() != 1234.56 {
		t.Errorf("Euros() = %v, want 1234.56", m.Euros())
	}
}
