package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	if err := WriteFileAtomic(path, []byte("one")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two")); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")

	for _, line := range []string{"a", "b", "c"} {
		if err := AppendLine(path, line); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 3 || lines[0] != "a" || lines[2] != "c" {
		t.Errorf("lines = %v", lines)
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("ReadLines on missing file: %v", err)
	}
	if lines != nil {
		t.Errorf("lines = %v, want nil", lines)
	}
}
