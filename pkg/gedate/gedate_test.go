package gedate

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", Earliest},
		{"   ", Earliest},
		{"1901", day(1901, time.January, 1)},
		{"850", day(850, time.January, 1)},
		{"12 MAR 1890", day(1890, time.March, 12)},
		{"3 march 1890", day(1890, time.March, 3)},
		{"1890-03-12", day(1890, time.March, 12)},
		{"12.3.1890", day(1890, time.March, 12)},
		{"MAR 1890", day(1890, time.March, 1)},
		{"ABT 1850", day(1850, time.January, 1)},
		{"abt. 1850", day(1850, time.January, 1)},
		{"circa 1850", day(1850, time.January, 1)},
		{"BEF 2 JAN 1700", day(1700, time.January, 2)},
		{"BET 1800 AND 1810", day(1800, time.January, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Key(tt.in)
			if err != nil {
				t.Fatalf("Key(%q) error = %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Key(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKey_Unparseable(t *testing.T) {
	got, err := Key("sometime in spring")
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("Key() error = %v, want ErrUnparseable", err)
	}
	if !got.Equal(Earliest) {
		t.Errorf("Key() = %v, want Earliest", got)
	}
	if !OrderKey("sometime in spring").Equal(Earliest) {
		t.Error("OrderKey() of garbage is not Earliest")
	}
}

func TestKey_YearZero(t *testing.T) {
	for _, in := range []string{"0", "0000", "ABT 0", "0000-05-01"} {
		got, err := Key(in)
		if !errors.Is(err, ErrUnparseable) {
			t.Errorf("Key(%q) error = %v, want ErrUnparseable", in, err)
		}
		if !got.Equal(Earliest) {
			t.Errorf("Key(%q) = %v, want Earliest", in, got)
		}
		if Compare(in, "") != 0 {
			t.Errorf("Compare(%q, \"\") = %d, want 0", in, Compare(in, ""))
		}
	}
}

func TestCompare(t *testing.T) {
	if Compare("", "1 JAN 1") >= 0 {
		t.Error("missing date does not sort before year 1")
	}
	if Compare("1850", "ABT 1850") != 0 {
		t.Error("qualifier changed the key")
	}
	if Compare("1900", "1890") <= 0 {
		t.Error("1900 does not sort after 1890")
	}
}
