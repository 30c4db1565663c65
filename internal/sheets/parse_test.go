package sheets

import (
	"testing"
	"time"
)

func TestParseLongDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"15 Januari 2025", "2025-01-15", false},
		{"1 agustus 2024", "2024-08-01", false},
		{"31 Desember 2025", "2025-12-31", false},
		{"  5 Mei 2025  ", "2025-05-05", false},
		{"2025-01-15", "2025-01-15", false}, // already normalized

		{"", "", true},
		{"15 Foo 2025", "", true},
		{"Januari 2025", "", true},
		{"32 Januari 2025", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLongDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLongDate(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLongDate(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLongDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9:00", "09:00:00", false},
		{"09.00", "09:00:00", false},
		{"09:00:00", "09:00:00", false},
		{"23:59", "23:59:00", false},
		{"7:5", "07:05:00", false},

		{"", "", true},
		{"24:00", "", true},
		{"12", "", true},
		{"ab:cd", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeClock(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeClock(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)

	got, err := ParseTimestamp("2/1/2025 14:30:05", wib)
	if err != nil {
		t.Fatalf("ParseTimestamp unexpected error: %v", err)
	}
	want := time.Date(2025, 1, 2, 14, 30, 5, 0, wib)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp = %v, want %v", got, want)
	}

	// zero-padded variant
	got, err = ParseTimestamp("02/01/2025 14:30:05", wib)
	if err != nil {
		t.Fatalf("ParseTimestamp(padded) unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(padded) = %v, want %v", got, want)
	}

	if _, err := ParseTimestamp("not-a-timestamp", wib); err == nil {
		t.Error("ParseTimestamp expected error for garbage input")
	}
}
