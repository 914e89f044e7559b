package marks

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a markdown heading in the marks file. Headings are ordinary "#"
// comment lines to the mark grammar; listings use them to group marks.
type Section struct {
	Title string
	Level int
	Row   int
}

// Group is a run of marks under one heading. Marks above the first heading
// form a group with an empty title.
type Group struct {
	Section
	Marks []Mark
}

// Sections returns the ATX headings of content in order. Only headings on
// lines the mark grammar treats as comments count, so text inside HTML
// comment blocks or setext underlines never produces a section.
func Sections(content string) []Section {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	lines := Scan(content)

	var out []Section
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		seg := h.Lines().At(0)
		row := bytes.Count(src[:seg.Start], []byte("\n"))
		if row >= len(lines) || lines[row].Kind != KindComment || !strings.HasPrefix(strings.TrimSpace(lines[row].Text), "#") {
			return ast.WalkSkipChildren, nil
		}

		out = append(out, Section{
			Title: strings.TrimSpace(string(seg.Value(src))),
			Level: h.Level,
			Row:   row,
		})
		return ast.WalkSkipChildren, nil
	})

	return out
}

// Groups parses content and files every mark under the nearest heading above
// it. Headings with no marks below them, such as the ones in Template, are
// left out.
func Groups(content, projectRoot string) []Group {
	sections := Sections(content)
	ms := Parse(content, projectRoot)

	groups := []Group{{}}
	next := 0
	for _, l := range MarkLines(content) {
		for next < len(sections) && sections[next].Row < l.Row {
			groups = append(groups, Group{Section: sections[next]})
			next++
		}
		last := &groups[len(groups)-1]
		last.Marks = append(last.Marks, ms[l.Ordinal])
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Marks) > 0 {
			out = append(out, g)
		}
	}
	return out
}
