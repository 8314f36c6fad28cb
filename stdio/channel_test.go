package stdio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChannel_ReadLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024) // beyond bufio.Scanner's default token size
	ch := NewChannel(strings.NewReader("a\n"+long+"\nlast"), nil)

	want := []string{"a\n", long + "\n", "last"}
	for _, w := range want {
		line, err := ch.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if string(line) != w {
			t.Fatalf("unexpected line of length %d", len(line))
		}
	}
	if _, err := ch.ReadLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestChannel_WriteMessageFlushes(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	ch := NewChannel(nil, bw)

	if err := ch.WriteMessage(map[string]bool{"ok": true}); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if buf.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if err := ch.WriteMessage(make(chan int)); err == nil {
		t.Fatalf("expected encode error")
	}
	if _, err := NewChannel(nil, nil).ReadLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF from reader-less channel")
	}
	if err := NewChannel(nil, nil).WriteMessage(1); err == nil {
		t.Fatalf("expected error from writer-less channel")
	}
}

func TestLifecycle(t *testing.T) {
	var l Lifecycle
	if l.State() != StateUninitialized {
		t.Fatalf("zero value should be uninitialized")
	}
	if !l.MarkReady() || l.State() != StateReady {
		t.Fatalf("expected ready")
	}
	if l.MarkReady() {
		t.Fatalf("second MarkReady should not transition")
	}
	if prev := l.Terminate(); prev != StateReady {
		t.Fatalf("unexpected previous state %s", prev)
	}
	if l.MarkReady() || l.State() != StateTerminated {
		t.Fatalf("initialize after shutdown must not revive the connection")
	}
	if StateTerminated.String() != "terminated" || State(42).String() != "unknown" {
		t.Fatalf("unexpected state names")
	}
}
