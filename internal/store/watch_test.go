package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lazytodo/internal/model"
)

func TestWatch_NotifiesOnSave(t *testing.T) {
	dir := t.TempDir()
	f := File{Path: filepath.Join(dir, "todo.md")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	if _, err := f.Save(model.Document{model.Task{Bullet: "-", Text: "a"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before notification")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected channel to close after cancel")
		}
	}
}
