package mcpservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestFSResources_ListAndRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "hello")
	writeFile(t, dir, "a.md", "# readme")
	writeFile(t, dir, "nested/c.txt", "hidden")

	r := NewFSResources(WithOSDir(dir))

	items, err := r.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "a.md" || items[0].Mime != "text/markdown" || items[0].Size != 8 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "b.txt" || items[1].Mime != "text/plain" || items[1].Description != "Resource file b.txt" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}

	text, err := r.ReadResource(ctx, "b.txt")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected content %q", text)
	}
}

func TestFSResources_UnknownAndTraversal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "nested/c.txt", "hidden")

	r := NewFSResources(WithOSDir(dir))
	for _, name := range []string{"missing.txt", "../etc/passwd", "nested/c.txt", "nested", ".."} {
		_, err := r.ReadResource(ctx, name)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%q: expected NotFoundError, got %v", name, err)
		}
		if nf.Error() != "Unknown resource: "+name {
			t.Fatalf("%q: unexpected message %q", name, nf.Error())
		}
	}
}

func TestFSResources_PathConfinement_SymlinkEscapeDenied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	secret := writeFile(t, root, "outside.txt", "nope")
	dir := t.TempDir()
	if err := os.Symlink(secret, filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	r := NewFSResources(WithOSDir(dir))
	items, err := r.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected symlink to be skipped, got %+v", items)
	}
	if _, err := r.ReadResource(ctx, "link.txt"); err == nil {
		t.Fatalf("expected error reading symlink")
	}
}

func TestFSResources_RejectsInvalidUTF8(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "bin.dat", string([]byte{0xff, 0xfe, 0x00}))

	r := NewFSResources(WithOSDir(dir))
	if _, err := r.ReadResource(context.Background(), "bin.dat"); err == nil {
		t.Fatalf("expected UTF-8 error")
	}
}

func TestFSResources_MissingRootListsEmpty(t *testing.T) {
	t.Parallel()
	r := NewFSResources(WithOSDir(filepath.Join(t.TempDir(), "nope")))
	items, err := r.ListResources(context.Background())
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected an empty list, got %#v", items)
	}
	var nf *NotFoundError
	if _, err := r.ReadResource(context.Background(), "a.txt"); !errors.As(err, &nf) {
		t.Fatalf("ReadResource err = %v", err)
	}
}

func TestFSResources_GenericFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"guide.md":  {Data: []byte("# guide")},
		"notes.txt": {Data: []byte("n")},
		"dir/x.txt": {Data: []byte("x")},
	}
	r := NewFSResources(WithFS(fsys))
	ctx := context.Background()

	items, err := r.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(items) != 2 || items[0].Name != "guide.md" || items[1].Name != "notes.txt" {
		t.Fatalf("unexpected items: %+v", items)
	}
	res, err := r.StatResource(ctx, "guide.md")
	if err != nil {
		t.Fatalf("StatResource: %v", err)
	}
	if res.Size != 7 || res.Mime != "text/markdown" {
		t.Fatalf("unexpected stat: %+v", res)
	}
	if err := r.Watch(ctx); err == nil {
		t.Fatalf("expected Watch to require an OS root")
	}
}

func TestFSResources_WatchInvalidatesListing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")

	r := NewFSResources(WithOSDir(dir))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := r.Subscriber()
	if err := r.Watch(ctx); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	items, err := r.ListResources(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("initial listing: %v %+v", err, items)
	}

	writeFile(t, dir, "b.txt", "b")

	select {
	case <-sub:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}

	items, err = r.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected refreshed listing with 2 items, got %+v", items)
	}
}
