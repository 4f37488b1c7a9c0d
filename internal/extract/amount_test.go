package extract

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1,210.00", "1210.00", true},
		{"1.234,56", "1234.56", true},
		{"12,50", "12.50", true},
		{"1,234,567", "1234567.00", true},
		{"1.234.567", "1234567.00", true},
		{"€ 1.250", "1250.00", true},
		{"19.9", "19.90", true},
		{"-42.10", "42.10", true},
		{"€", "", false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseAmount(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got.StringFixed(2) != tt.want {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.raw, got.StringFixed(2), tt.want)
		}
	}
}

func TestResolveDayMonth(t *testing.T) {
	tests := []struct {
		a, b       int
		day, month int
		ambiguous  bool
	}{
		{3, 4, 3, 4, true},
		{13, 4, 13, 4, false},
		{4, 13, 13, 4, false},
		{5, 5, 5, 5, false},
	}
	for _, tt := range tests {
		d, m, amb := resolveDayMonth(tt.a, tt.b)
		if d != tt.day || m != tt.month || amb != tt.ambiguous {
			t.Errorf("resolveDayMonth(%d, %d) = %d, %d, %v", tt.a, tt.b, d, m, amb)
		}
	}
}

func TestNewDocument(t *testing.T) {
	doc := newDocument("  Acme\t\tLtd  \r\n\r\nTotal    €5.00\r")
	want := []string{"Acme Ltd", "Total €5.00"}
	if len(doc.collapsed) != len(want) {
		t.Fatalf("collapsed = %q, want %q", doc.collapsed, want)
	}
	for i := range want {
		if doc.collapsed[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, doc.collapsed[i], want[i])
		}
	}
	if doc.text != "Acme Ltd\nTotal €5.00" {
		t.Errorf("text = %q", doc.text)
	}
	if doc.offsets[1] != len("Acme Ltd\n") {
		t.Errorf("offset = %d", doc.offsets[1])
	}
}
