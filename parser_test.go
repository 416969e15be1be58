// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore_test

import (
	"testing"

	"code.hybscloud.com/sidecore"
)

// TestParserJSON matches spec.md's "JSON log parse" end-to-end scenario.
func TestParserJSON(t *testing.T) {
	p, err := sidecore.NewParser(sidecore.ParserConfig{})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Destroy()

	input := []byte(`{"level":"ERROR","msg":"boom"}`)
	entry, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.Level != sidecore.LevelError {
		t.Fatalf("Level: got %v, want ERROR", entry.Level)
	}
	if string(entry.Message) != "boom" || len(entry.Message) != 4 {
		t.Fatalf("Message: got %q, want \"boom\"", entry.Message)
	}
	if len(entry.Raw) != len(input) {
		t.Fatalf("Raw length: got %d, want %d", len(entry.Raw), len(input))
	}
}

func TestParserJSONMessageKey(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	entry, err := p.Parse([]byte(`{"level":"info","message":"hello world"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(entry.Message) != "hello world" {
		t.Fatalf("Message: got %q, want \"hello world\"", entry.Message)
	}
	if entry.Level != sidecore.LevelInfo {
		t.Fatalf("Level: got %v, want INFO", entry.Level)
	}
}

// TestParserTextBracket matches spec.md's second "JSON log parse"
// sub-scenario, which actually exercises the text path.
func TestParserTextBracket(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	entry, err := p.Parse([]byte("[WARN] disk full"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.Level != sidecore.LevelWarn {
		t.Fatalf("Level: got %v, want WARN", entry.Level)
	}
	if string(entry.Message) != "disk full" {
		t.Fatalf("Message: got %q, want \"disk full\"", entry.Message)
	}
}

func TestParserTextTimestampAndLevelName(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	entry, err := p.Parse([]byte("2026-07-30T10:00:00.000Z ERROR connection reset"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.Level != sidecore.LevelError {
		t.Fatalf("Level: got %v, want ERROR", entry.Level)
	}
	if string(entry.Message) != "connection reset" {
		t.Fatalf("Message: got %q, want \"connection reset\"", entry.Message)
	}
}

func TestParserTextNoLevel(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	entry, err := p.Parse([]byte("just a plain message"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.Level != sidecore.LevelInfo {
		t.Fatalf("Level: got %v, want INFO (default)", entry.Level)
	}
	if string(entry.Message) != "just a plain message" {
		t.Fatalf("Message: got %q", entry.Message)
	}
}

func TestParserSyslog(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	raw := "<34>1 2003-10-11T22:14:15.003Z host app - - - message here"
	entry, err := p.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.Level != sidecore.LevelInfo {
		t.Fatalf("Level: got %v, want INFO", entry.Level)
	}
	if string(entry.Message) != raw {
		t.Fatalf("Message: got %q, want full line", entry.Message)
	}
}

func TestParserEntryViewsSurviveNextCall(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	data := []byte("[INFO] first message")
	first, err := p.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	firstMessage := string(first.Message)

	if _, err := p.Parse([]byte("[INFO] second message")); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// first.Message aliases the caller's original data slice, which the
	// caller still owns and has not mutated, so it must still read back
	// correctly — Parser itself holds no buffer that would invalidate it.
	if string(first.Message) != firstMessage {
		t.Fatalf("Message: got %q, want %q", first.Message, firstMessage)
	}
}

// TestParserBatch matches spec.md's invariant that parsing a batch
// recovers the original entry count when every line is non-empty, and
// that a trailing line without '\n' is ignored.
func TestParserBatch(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	data := []byte("[INFO] one\n[WARN] two\n[ERROR] three\n")
	entries, err := p.ParseBatch(data, 0)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries): got %d, want 3", len(entries))
	}

	withTrailing := []byte("[INFO] one\n[WARN] incomplete")
	entries, err = p.ParseBatch(withTrailing, 0)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) with trailing unterminated line: got %d, want 1", len(entries))
	}
}

func TestParserBatchSkipsEmptyLinesAndRespectsMax(t *testing.T) {
	p, _ := sidecore.NewParser(sidecore.ParserConfig{})
	defer p.Destroy()

	data := []byte("a\n\nb\n\nc\nd\n")
	entries, err := p.ParseBatch(data, 2)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries): got %d, want 2 (max)", len(entries))
	}
}
