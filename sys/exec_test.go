package sys

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func TestExecRunnerCombinedOutput(t *testing.T) {
	r := NewExecRunner(zaptest.NewLogger(t))
	out, err := r.Run(Command{
		Name: "/bin/sh",
		Args: []string{"-c", "echo one; echo two 1>&2; echo three; exit 7"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", out.ExitCode)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, out.Lines); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	r := NewExecRunner(zaptest.NewLogger(t))
	out, err := r.Run(Command{Name: "/bin/sh", Args: []string{"-c", "printf 'no newline'"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", out.ExitCode)
	}
	if diff := cmp.Diff([]string{"no newline"}, out.Lines); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner(zaptest.NewLogger(t))
	if _, err := r.Run(Command{Name: "/definitely-not-exists"}); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"\n", nil},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb", []string{"a", "b"}},
		{"a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitLines(tt.in)); diff != "" {
			t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "route", Args: []string{"add", "0.0.0.0/1", "10.111.55.31"}}
	if got, want := c.String(), "route add 0.0.0.0/1 10.111.55.31"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
