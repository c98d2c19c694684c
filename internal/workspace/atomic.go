package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrStorageConflict is returned when an atomic replace loses a rename
// race even after the bounded retry. Callers treat it as fatal.
var ErrStorageConflict = errors.New("storage conflict during atomic replace")

// WriteFileAtomic replaces path with data via write-to-temp-then-rename
// so a concurrent reader never observes a torn file and a crash leaves
// the prior complete version intact. The rename is retried once before
// surfacing ErrStorageConflict.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		// One bounded retry; rename races are transient on most filesystems.
		if err2 := os.Rename(tmpName, path); err2 != nil {
			return fmt.Errorf("%w: %s: %v", ErrStorageConflict, path, err2)
		}
	}
	return nil
}

// AppendLine appends one line to a ledger file with durability, creating
// the file if needed. The newline is added here; line must not contain one.
func AppendLine(path string, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append ledger %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger %s: %w", path, err)
	}
	return nil
}

// AppendText appends raw text to a file with durability. Used for the
// long-term summary, which only ever grows past existing content.
func AppendText(path string, text string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

// ReadLines returns all non-empty lines of a ledger file. A missing file
// yields no lines and no error.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger %s: %w", path, err)
	}
	return lines, nil
}
