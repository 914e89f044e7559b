package marks

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	nameSep      = ": "
)

// Kind classifies one physical line of a marks file.
type Kind int

const (
	// KindBlank is an empty or whitespace-only line.
	KindBlank Kind = iota
	// KindComment is a "#" line or any line of an HTML comment block.
	KindComment
	// KindInvalid is text that is not a mark. It is kept verbatim and never rewritten.
	KindInvalid
	// KindMark is a valid mark line.
	KindMark
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindInvalid:
		return "invalid"
	case KindMark:
		return "mark"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) into a line.
type Span struct {
	Start int
	End   int
}

// Of returns the text the span covers in line.
func (s Span) Of(line string) string {
	return line[s.Start:s.End]
}

// Len returns the span width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift returns the span moved right by n bytes.
func (s Span) Shift(n int) Span {
	return Span{Start: s.Start + n, End: s.End + n}
}

// LineInfo is the classification of a single line. The spans and Number are
// only meaningful for KindMark; spans are relative to the raw, untrimmed line.
type LineInfo struct {
	Kind Kind

	// Name covers the mark name. It is empty for anonymous marks.
	Name Span

	// Path covers the raw path text, before resolution.
	Path Span

	// Digits covers the line number. Rewrites replace exactly this range.
	Digits Span

	// Number is the parsed line number, always >= 1.
	Number int
}

// IsMark reports whether the line is a valid mark line.
func (l LineInfo) IsMark() bool {
	return l.Kind == KindMark
}

// Named reports whether the mark line carries a name.
func (l LineInfo) Named() bool {
	return l.Kind == KindMark && l.Name.Len() > 0
}

// Classify decides what a single physical line is. inComment is whether the
// line starts inside an HTML comment block; the returned bool is the state
// for the next line. Classify and Scan are the only place the marks-file
// grammar lives: parsing, renumbering, deletion and validation all go
// through them so they agree on which line is mark number k.
func Classify(line string, inComment bool) (LineInfo, bool) {
	lead := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
	trimmed := strings.TrimSpace(line)

	if inComment {
		return LineInfo{Kind: KindComment}, !strings.Contains(trimmed, commentClose)
	}
	if strings.HasPrefix(trimmed, commentOpen) {
		return LineInfo{Kind: KindComment}, !strings.Contains(trimmed, commentClose)
	}
	if trimmed == "" {
		return LineInfo{Kind: KindBlank}, false
	}
	if strings.HasPrefix(trimmed, "#") {
		return LineInfo{Kind: KindComment}, false
	}

	info, ok := classifyMark(trimmed)
	if !ok {
		return LineInfo{Kind: KindInvalid}, false
	}

	info.Name = info.Name.Shift(lead)
	info.Path = info.Path.Shift(lead)
	info.Digits = info.Digits.Shift(lead)

	return info, false
}

// classifyMark splits a trimmed, non-comment line. Spans are relative to trimmed.
func classifyMark(trimmed string) (LineInfo, bool) {
	colon := strings.LastIndexByte(trimmed, ':')
	if colon < 0 {
		return LineInfo{}, false
	}

	// trimmed has no trailing space, so only leading space after the colon matters.
	suffix := trimmed[colon+1:]
	digits := Span{Start: colon + 1 + len(suffix) - len(strings.TrimLeftFunc(suffix, unicode.IsSpace)), End: len(trimmed)}
	number, ok := parseLineNumber(digits.Of(trimmed))
	if !ok {
		return LineInfo{}, false
	}

	// trimmed has no leading space, so beforeLineNum starts at 0.
	before := strings.TrimRightFunc(trimmed[:colon], unicode.IsSpace)
	info := LineInfo{
		Kind:   KindMark,
		Path:   Span{Start: 0, End: len(before)},
		Digits: digits,
		Number: number,
	}

	sep := strings.Index(before, nameSep)
	if sep < 0 {
		return info, true
	}

	name := strings.TrimRightFunc(before[:sep], unicode.IsSpace)
	rest := before[sep+len(nameSep):]
	pathStart := sep + len(nameSep) + len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))

	if name == "" || strings.ContainsAny(name, `/\`) || pathStart == len(before) {
		return info, true
	}

	info.Name = Span{Start: 0, End: len(name)}
	info.Path = Span{Start: pathStart, End: len(before)}

	return info, true
}

// parseLineNumber accepts only ASCII digits forming an int >= 1.
func parseLineNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ScannedLine is one physical line of a marks file with its classification.
type ScannedLine struct {
	LineInfo

	// Row is the 0-based physical line index.
	Row int

	// Offset is the byte offset of the line start within the content.
	Offset int

	// Text is the raw line without its trailing newline.
	Text string

	// Ordinal is the 0-based mark index, or -1 for non-mark lines.
	Ordinal int
}

// Abs converts a line-relative span to an offset into the whole content.
func (l ScannedLine) Abs(s Span) Span {
	return s.Shift(l.Offset)
}

// RawName returns the name text, or "" for anonymous marks.
func (l ScannedLine) RawName() string {
	return l.Name.Of(l.Text)
}

// RawPath returns the path text as written in the file.
func (l ScannedLine) RawPath() string {
	return l.Path.Of(l.Text)
}

// Scan classifies every physical line of content, split on "\n", threading
// the HTML comment state from one line to the next.
func Scan(content string) []ScannedLine {
	rows := strings.Split(content, "\n")
	out := make([]ScannedLine, 0, len(rows))

	inComment := false
	offset := 0
	ordinal := 0

	for row, text := range rows {
		var info LineInfo
		info, inComment = Classify(text, inComment)

		sl := ScannedLine{LineInfo: info, Row: row, Offset: offset, Text: text, Ordinal: -1}
		if info.IsMark() {
			sl.Ordinal = ordinal
			ordinal++
		}
		out = append(out, sl)

		offset += len(text) + 1
	}

	return out
}

// MarkLines returns only the mark lines of content, in ordinal order.
func MarkLines(content string) []ScannedLine {
	var out []ScannedLine
	for _, l := range Scan(content) {
		if l.IsMark() {
			out = append(out, l)
		}
	}
	return out
}
