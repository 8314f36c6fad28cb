//go:build unix

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

type recording struct {
	pid       int
	lingerPID int
	requests  []recordedRequest
}

type recordedRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
}

func recordingClient(t *testing.T, mode string, opts ...Option) (*Client, string) {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	path := filepath.Join(t.TempDir(), "record")
	env := append(os.Environ(), helperEnv+"="+mode, recordEnv+"="+path)
	return New(exe, []string{"-test.run=^$"}, append([]Option{WithEnv(env)}, opts...)...), path
}

func readRecording(t *testing.T, path string) recording {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer f.Close()

	var rec recording
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "pid "):
			rec.pid, _ = strconv.Atoi(strings.TrimPrefix(line, "pid "))
		case strings.HasPrefix(line, "linger "):
			rec.lingerPID, _ = strconv.Atoi(strings.TrimPrefix(line, "linger "))
		default:
			var r recordedRequest
			if err := json.Unmarshal([]byte(line), &r); err != nil {
				t.Fatalf("recorded line %q: %v", line, err)
			}
			rec.requests = append(rec.requests, r)
		}
	}
	if rec.pid == 0 {
		t.Fatalf("server pid not recorded")
	}
	return rec
}

func processGone(pid int) bool {
	return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
}

func TestCall_CleanupSendsShutdownAndReaps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		method string
		check  func(t *testing.T, err error)
	}{
		{"success", "tools.list", func(t *testing.T, err error) {
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
		}},
		{"remote error", "fail", func(t *testing.T, err error) {
			var re *RemoteError
			if !errors.As(err, &re) || re.Message != "failed on purpose" {
				t.Fatalf("expected RemoteError, got %v", err)
			}
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, path := recordingClient(t, "record")
			_, err := c.Call(context.Background(), tt.method, nil)
			tt.check(t, err)

			rec := readRecording(t, path)
			want := []recordedRequest{{0, "initialize"}, {1, tt.method}, {2, "shutdown"}}
			if len(rec.requests) != len(want) {
				t.Fatalf("server received %+v, want %+v", rec.requests, want)
			}
			for i := range want {
				if rec.requests[i] != want[i] {
					t.Fatalf("request %d = %+v, want %+v", i, rec.requests[i], want[i])
				}
			}
			if !processGone(rec.pid) {
				t.Fatalf("server %d still running after Call", rec.pid)
			}
		})
	}
}

func TestCall_CleanupAfterStreamClosed(t *testing.T) {
	t.Parallel()
	c, path := recordingClient(t, "record")
	_, err := c.Call(context.Background(), "vanish", nil)
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
	rec := readRecording(t, path)
	if len(rec.requests) != 2 || rec.requests[1].Method != "vanish" {
		t.Fatalf("server received %+v", rec.requests)
	}
	if !processGone(rec.pid) {
		t.Fatalf("server %d still running after Call", rec.pid)
	}
}

func TestCall_KillsServerThatIgnoresEOF(t *testing.T) {
	t.Parallel()
	c, path := recordingClient(t, "stubborn", WithShutdownGrace(50*time.Millisecond))

	start := time.Now()
	if _, err := c.Call(context.Background(), "tools.list", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Call took %s", elapsed)
	}
	rec := readRecording(t, path)
	if !processGone(rec.pid) {
		t.Fatalf("server %d still running after Call", rec.pid)
	}
}

func TestCall_InheritedStderrDoesNotBlockCleanup(t *testing.T) {
	t.Parallel()
	c, path := recordingClient(t, "grandchild", WithWaitDelay(200*time.Millisecond))

	start := time.Now()
	raw, err := c.Call(context.Background(), "tools.list", nil)
	elapsed := time.Since(start)

	rec := readRecording(t, path)
	if rec.lingerPID != 0 {
		t.Cleanup(func() { _ = syscall.Kill(rec.lingerPID, syscall.SIGKILL) })
	}
	if err != nil || string(raw) != `{"ok":true}` {
		t.Fatalf("Call = %s, %v", raw, err)
	}
	if elapsed > 10*time.Second {
		t.Fatalf("Call took %s; cleanup waited on the lingering descendant", elapsed)
	}
	if rec.lingerPID == 0 || processGone(rec.lingerPID) {
		t.Fatalf("descendant should still be running (pid %d)", rec.lingerPID)
	}
}
