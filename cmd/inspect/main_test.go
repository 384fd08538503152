package main

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "short", 10, "short"},
		{"exact", "exactly", 7, "exactly"},
		{"cut", "abcdefgh", 5, "abcde…"},
		{"multibyte", "मौसम की जानकारी चाहिए", 5, "मौसम …"},
		{"multibyte-fits", "मौसम", 10, "मौसम"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d): got %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
