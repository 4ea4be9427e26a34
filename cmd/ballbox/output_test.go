package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/sandbox"
)

func renderSandbox(t *testing.T) *sandbox.Sandbox {
	t.Helper()
	sb, err := sandbox.New(config.DefaultConfig().Sandbox, 160, 88, 1)
	if err != nil {
		t.Fatalf("new sandbox: %v", err)
	}
	sb.Populate()
	return sb
}

func TestWriteFrameText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, ".txt", renderSandbox(t)); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 22 {
		t.Fatalf("expected 22 rows, got %d", len(lines))
	}
	lit := false
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n != 80 {
			t.Errorf("row %d: expected 80 cells, got %d", i, n)
		}
		if strings.TrimLeft(line, "⠀") != "" {
			lit = true
		}
	}
	if !lit {
		t.Error("expected balls to light some braille cells")
	}
}

func TestWriteFrameFormats(t *testing.T) {
	sb := renderSandbox(t)
	var svg bytes.Buffer
	if err := writeFrame(&svg, ".svg", sb); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<circle ") {
		t.Errorf("expected circles in svg document:\n%s", svg.String())
	}
	if err := writeFrame(&bytes.Buffer{}, ".bmp", sb); err == nil {
		t.Error("expected error for unsupported format")
	}
}
