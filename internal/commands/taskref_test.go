package commands

import (
	"errors"
	"testing"
)

func TestParseTaskRef_Valid(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"5"}, "5"},
		{[]string{"0190f3a2"}, "0190f3a2"},
		{[]string{"  12 "}, "12"},
	}
	for _, tt := range tests {
		ref, err := ParseTaskRef(tt.args)
		if err != nil {
			t.Errorf("ParseTaskRef(%q): unexpected error: %v", tt.args, err)
			continue
		}
		if ref != tt.want {
			t.Errorf("ParseTaskRef(%q) = %q, want %q", tt.args, ref, tt.want)
		}
	}
}

func TestParseTaskRef_Missing(t *testing.T) {
	for _, args := range [][]string{nil, {""}, {"   "}} {
		if _, err := ParseTaskRef(args); !errors.Is(err, ErrTaskRefRequired) {
			t.Errorf("ParseTaskRef(%q): expected ErrTaskRefRequired, got %v", args, err)
		}
	}
}

func TestParseTaskRef_TooMany(t *testing.T) {
	_, err := ParseTaskRef([]string{"1", "2"})
	if err == nil || err.Error() != "too many task references: 1 2" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseTaskRef_LooksLikeFlag(t *testing.T) {
	_, err := ParseTaskRef([]string{"-3"})
	if err == nil || err.Error() != "invalid task reference: -3" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs([]string{" Buy", "oat", "milk "}); got != "Buy oat milk" {
		t.Errorf("joinArgs = %q", got)
	}
}
