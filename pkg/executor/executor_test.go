package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "stdout is returned",
			args: []string{"-c", "echo hello"},
			want: "hello\n",
		},
		{
			name:    "stderr is included on failure",
			args:    []string{"-c", "echo broken >&2; exit 3"},
			wantErr: "stderr: broken",
		},
		{
			name:    "exit status without stderr",
			args:    []string{"-c", "exit 1"},
			wantErr: "command 'sh' failed",
		},
	}

	exec := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exec.Execute(context.Background(), "sh", tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Execute(ctx, "sh", "-c", "sleep 5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Execute() error = %v, want deadline exceeded", err)
	}
}

func TestLastBytes(t *testing.T) {
	if got := lastBytes("abc", 5); got != "abc" {
		t.Errorf("lastBytes() = %q", got)
	}
	if got := lastBytes("abcdef", 3); got != "...def" {
		t.Errorf("lastBytes() = %q, want ...def", got)
	}
}
