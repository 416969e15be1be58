// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sidecore

import (
	"bytes"

	"code.hybscloud.com/iobuf"
)

// LogFormat selects how Parser interprets a line.
type LogFormat int

const (
	FormatAuto LogFormat = iota
	FormatJSON
	FormatText
	FormatSyslog
)

// LogLevel classifies a parsed entry's severity.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "INFO"
	}
}

var levelNames = [...]struct {
	name  string
	level LogLevel
}{
	{"TRACE", LevelTrace},
	{"DEBUG", LevelDebug},
	{"INFO", LevelInfo},
	{"WARN", LevelWarn},
	{"ERROR", LevelError},
	{"FATAL", LevelFatal},
}

// Entry is a parsed log line. Message, Source, and Raw alias the input
// buffer passed to Parse/ParseBatch: they remain valid only until the
// next call to Parse on the same Parser. Callers that need an Entry to
// outlive that call must copy its byte slices (Indexer.Add does this).
type Entry struct {
	Timestamp uint64
	Level     LogLevel
	Message   []byte
	Source    []byte
	Raw       []byte
}

// ParserConfig configures a Parser.
type ParserConfig struct {
	// Format forces a format instead of auto-detecting per line.
	Format LogFormat
	// Clock stamps each Entry's Timestamp at parse time. DefaultClock() is
	// used if nil.
	Clock *Clock
}

// Parser is a stateless line parser: each call to Parse or ParseBatch is
// independent of every other, aside from the Entry aliasing rule above
// and a shared scratch buffer used to avoid allocating on the level-token
// case-fold in the hot path. Parser is not safe for concurrent use.
type Parser struct {
	format LogFormat
	clock  *Clock

	scratchPool *iobuf.MediumBufferBoundedPool
	scratchIdx  int
	scratchBuf  iobuf.MediumBuffer
}

// NewParser creates a Parser per cfg. It leases one buffer from a private
// MediumBufferPool for its scratch working area, released on Destroy.
func NewParser(cfg ParserConfig) (*Parser, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = DefaultClock()
	}

	pool := iobuf.NewMediumBufferPool(1)
	pool.Fill(iobuf.NewMediumBuffer)
	idx, err := pool.Get()
	if err != nil {
		return nil, err
	}

	return &Parser{
		format:      cfg.Format,
		clock:       clock,
		scratchPool: pool,
		scratchIdx:  idx,
		scratchBuf:  pool.Value(idx),
	}, nil
}

func (p *Parser) scratch() []byte {
	return p.scratchBuf[:]
}

// Parse parses a single line. line must not be nil.
func (p *Parser) Parse(line []byte) (Entry, error) {
	if line == nil {
		return Entry{}, ErrInvalid
	}

	format := p.format
	if format == FormatAuto {
		format = detectFormat(line)
	}

	var level LogLevel
	var message []byte

	switch format {
	case FormatJSON:
		level = LevelInfo
		if v, ok := jsonFindValue(line, "level"); ok {
			level = p.classifyLevel(v)
		}
		if v, ok := jsonFindValue(line, "message"); ok {
			message = v
		} else if v, ok := jsonFindValue(line, "msg"); ok {
			message = v
		}
	case FormatSyslog:
		level = LevelInfo
		message = line
	default:
		level, message = p.parseTextLine(line)
	}

	return Entry{
		Timestamp: p.clock.Now(),
		Level:     level,
		Message:   message,
		Raw:       line,
	}, nil
}

// ParseBatch splits data on '\n', skips empty lines, and parses up to max
// lines (max <= 0 means unbounded). A trailing chunk after the last '\n'
// is not a complete line and is ignored: input lines are expected to be
// newline-terminated.
func (p *Parser) ParseBatch(data []byte, max int) ([]Entry, error) {
	if max <= 0 {
		max = len(data)
	}

	var entries []Entry
	start := 0
	for i := 0; i < len(data) && len(entries) < max; i++ {
		if data[i] != '\n' {
			continue
		}
		line := data[start:i]
		start = i + 1
		if len(line) == 0 {
			continue
		}
		entry, err := p.Parse(line)
		if err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Destroy releases the Parser's scratch buffer. The Parser must not be
// used afterward.
func (p *Parser) Destroy() {
	_ = p.scratchPool.Put(p.scratchIdx)
}

func detectFormat(line []byte) LogFormat {
	i := 0
	for i < len(line) && isSpace(line[i]) {
		i++
	}
	if i >= len(line) {
		return FormatText
	}
	switch line[i] {
	case '{':
		return FormatJSON
	case '<':
		return FormatSyslog
	default:
		return FormatText
	}
}

// classifyLevel matches s case-insensitively against the level names,
// checking whether s starts with one of them (so "warning" matches WARN,
// "errored" matches ERROR). Uses the Parser's scratch buffer to avoid
// allocating the upper-cased copy.
func (p *Parser) classifyLevel(s []byte) LogLevel {
	level, _ := matchLevelPrefix(s, p.scratch())
	return level
}

func matchLevelPrefix(s, scratch []byte) (LogLevel, int) {
	n := len(s)
	if n > len(scratch) {
		n = len(scratch)
	}
	up := scratch[:n]
	for i := 0; i < n; i++ {
		up[i] = toUpperByte(s[i])
	}

	for _, ln := range levelNames {
		if len(ln.name) <= n && string(up[:len(ln.name)]) == ln.name {
			return ln.level, len(ln.name)
		}
	}
	return LevelInfo, 0
}

func toUpperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// isTimestampByte reports whether b belongs to the leading-timestamp
// character class [0-9:.TZ -] that parseTextLine skips.
func isTimestampByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == ':' || b == '.' || b == 'T' || b == 'Z' || b == ' ' || b == '-':
		return true
	default:
		return false
	}
}

func (p *Parser) parseTextLine(line []byte) (LogLevel, []byte) {
	i := 0
	for i < len(line) && isTimestampByte(line[i]) {
		i++
	}
	for i < len(line) && isSpace(line[i]) {
		i++
	}

	var level LogLevel
	if i < len(line) && line[i] == '[' {
		j := i + 1
		for j < len(line) && line[j] != ']' {
			j++
		}
		if j < len(line) {
			level = p.classifyLevel(line[i+1 : j])
			i = j + 1
		} else {
			level = LevelInfo
		}
	} else {
		lvl, consumed := matchLevelPrefix(line[i:], p.scratch())
		level = lvl
		i += consumed
	}

	for i < len(line) && isSpace(line[i]) {
		i++
	}

	return level, line[i:]
}

func jsonFindValue(data []byte, key string) ([]byte, bool) {
	needle := []byte(`"` + key + `"`)
	idx := bytes.Index(data, needle)
	if idx < 0 {
		return nil, false
	}
	i := idx + len(needle)

	for i < len(data) && isSpace(data[i]) {
		i++
	}
	if i >= len(data) || data[i] != ':' {
		return nil, false
	}
	i++
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	if i >= len(data) {
		return nil, false
	}

	if data[i] == '"' {
		start := i + 1
		j := start
		for j < len(data) && data[j] != '"' {
			j++
		}
		if j >= len(data) {
			return nil, false
		}
		return data[start:j], true
	}

	start := i
	j := i
	for j < len(data) && data[j] != ',' && data[j] != '}' && !isSpace(data[j]) {
		j++
	}
	return data[start:j], true
}
