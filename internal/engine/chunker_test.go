package engine

import (
	"strings"
	"testing"
)

func TestPreFilterDropsNoise(t *testing.T) {
	in := strings.Join([]string{
		"## Morning",
		"HEARTBEAT_OK",
		"- real work happened",
		"NO_REPLY",
		"12:00:01 [cron] DEBUG poll tick",
		"- more work",
	}, "\n")

	out := PreFilter(in)
	if strings.Contains(out, "HEARTBEAT_OK") || strings.Contains(out, "NO_REPLY") {
		t.Errorf("noise survives:\n%s", out)
	}
	if !strings.Contains(out, "real work happened") || !strings.Contains(out, "more work") {
		t.Errorf("signal lost:\n%s", out)
	}
}

func TestPreFilterTruncatesCodeBlocks(t *testing.T) {
	var lines []string
	lines = append(lines, "before", "```go")
	for i := 0; i < 20; i++ {
		lines = append(lines, "code line")
	}
	lines = append(lines, "```", "after")

	out := PreFilter(strings.Join(lines, "\n"))
	if strings.Count(out, "code line") != keepCodeLines {
		t.Errorf("kept %d code lines, want %d:\n%s", strings.Count(out, "code line"), keepCodeLines, out)
	}
	if !strings.Contains(out, "truncated") {
		t.Errorf("no truncation marker:\n%s", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("content after code block lost:\n%s", out)
	}
}

func TestChunkSplitsAtSections(t *testing.T) {
	content := "## One\n" + strings.Repeat("a", 100) + "\n## Two\n" + strings.Repeat("b", 100)

	chunks := Chunk(content, 150)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "## One") || !strings.HasPrefix(chunks[1], "## Two") {
		t.Errorf("section boundaries not respected: %q", chunks)
	}
}

func TestChunkSmallContentUntouched(t *testing.T) {
	chunks := Chunk("short", 1000)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestChunkFallsBackToParagraphs(t *testing.T) {
	content := strings.Repeat("x", 80) + "\n\n" + strings.Repeat("y", 80)
	chunks := Chunk(content, 100)
	if len(chunks) != 2 {
		t.Errorf("chunks = %d: %q", len(chunks), chunks)
	}
}
