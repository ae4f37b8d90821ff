package pkg

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestShell(t *testing.T) {
	var out bytes.Buffer
	sh := &Shell{Session: newTestSession(), Out: &out}
	ctx := context.Background()

	tests := []struct {
		line string
		want string
		more bool
	}{
		{"", "", true},
		{"help", "commands:", true},
		{"load " + downAQueen, "White may drop a queen on d1", true},
		{"advise", "WAIT (none)", true},
		{"place e4", "error: square is not a legal drop square", true},
		{"place d1", "reinforcement already used", true},
		{"advise", "no pending reinforcement", true},
		{"grant white", "usage: grant <side> <piece>", true},
		{"move e2e4", "Black to move", true},
		{"show", "Black to move", true},
		{"engine", "error: no evaluator configured", true},
		{"new x", `error: bad seed "x"`, true},
		{"new 7", "White to move", true},
		{"dance", `error: unknown command "dance"`, true},
		{"quit", "", false},
	}
	for _, tt := range tests {
		out.Reset()
		if more := sh.Run(ctx, tt.line); more != tt.more {
			t.Errorf("Run(%q) = %v, want %v", tt.line, more, tt.more)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("Run(%q) printed %q, want it to contain %q", tt.line, out.String(), tt.want)
		}
	}
}
