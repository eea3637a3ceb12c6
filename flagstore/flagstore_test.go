package flagstore

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_SetGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	store := NewFileAt(path)

	at := time.Now().Truncate(time.Second)
	if err := store.Set("session.active", at); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, ok, err := store.Get("session.active")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected flag to be set")
	}
	if !got.Equal(at) {
		t.Errorf("expected %v, got %v", at, got)
	}

	if err := store.Remove("session.active"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, ok, _ := store.Get("session.active"); ok {
		t.Error("expected flag to be removed")
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")

	at := time.Now().Truncate(time.Second)
	if err := NewFileAt(path).Set("session.active", at); err != nil {
		t.Fatal(err)
	}

	// A fresh store instance models a process restart.
	_, ok, err := NewFileAt(path).Get("session.active")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Error("flag must survive a process restart")
	}
}

func TestFileStore_MissingFileReadsEmpty(t *testing.T) {
	store := NewFileAt(filepath.Join(t.TempDir(), "never-written.json"))

	_, ok, err := store.Get("anything")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Error("expected no flags in a missing file")
	}
	if err := store.Remove("anything"); err != nil {
		t.Errorf("removing from a missing file should not error: %v", err)
	}
}

func TestMem_SetGetRemove(t *testing.T) {
	store := NewMem()

	if _, ok, _ := store.Get("k"); ok {
		t.Error("expected empty store")
	}

	at := time.Now()
	if err := store.Set("k", at); err != nil {
		t.Fatal(err)
	}
	got, ok, _ := store.Get("k")
	if !ok || !got.Equal(at) {
		t.Errorf("expected %v, got %v ok=%v", at, got, ok)
	}

	if err := store.Remove("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("expected flag removed")
	}
}
