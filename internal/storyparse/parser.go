package storyparse

import (
	"strings"
)

// PartialStory holds whichever sections the parser found. Missing sections are
// empty strings; completeness is judged by Validate, never here.
type PartialStory struct {
	Title              string
	Introduction       string
	EmotionalTrigger   string
	ConceptExplanation string
	Resolution         string
	MoralMessage       string
}

// Section keys as reported in validation messages.
const (
	SectionTitle              = "title"
	SectionIntroduction       = "introduction"
	SectionEmotionalTrigger   = "emotional trigger"
	SectionConceptExplanation = "concept explanation"
	SectionResolution         = "resolution"
	SectionMoralMessage       = "moral message"
)

// Parse extracts named sections from heading-delimited model output.
//
// A heading line starts with one or more '#' characters followed by a section
// name, optionally ending with a colon. Matching is case-insensitive and
// tolerant of extra whitespace. Content after the colon on the heading line
// itself is kept (models sometimes put the title inline: "# Title: ...").
// Content under an unrecognized heading is discarded, not an error.
//
// Parse never fails: malformed input yields a (possibly empty) PartialStory.
func Parse(raw string) *PartialStory {
	p := &PartialStory{}
	current := "" // active section key; empty means discard
	var body strings.Builder

	flush := func() {
		if current != "" {
			p.set(current, strings.TrimSpace(body.String()))
		}
		body.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		key, inline, isHeading := headingLine(line)
		if !isHeading {
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}
		flush()
		current = key
		if current != "" && inline != "" {
			body.WriteString(inline)
			body.WriteString("\n")
		}
	}
	flush()

	return p
}

// headingLine reports whether line is a markdown heading, and if so which
// section it opens (empty key for unrecognized headings) plus any content
// that follows a colon on the same line.
func headingLine(line string) (key, inline string, isHeading bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))

	name := rest
	if i := strings.Index(rest, ":"); i >= 0 {
		name = rest[:i]
		inline = strings.TrimSpace(rest[i+1:])
	}
	return canonicalSection(name), inline, true
}

// canonicalSection maps a heading name to its section key, or "" if the
// heading is not one of the six known sections.
func canonicalSection(name string) string {
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	switch name {
	case SectionTitle, SectionIntroduction, SectionEmotionalTrigger,
		SectionConceptExplanation, SectionResolution, SectionMoralMessage:
		return name
	default:
		return ""
	}
}

// set assigns a section body. The first non-empty value for a section wins;
// a repeated heading later in the output does not overwrite earlier content.
func (p *PartialStory) set(key, value string) {
	if value == "" {
		return
	}
	switch key {
	case SectionTitle:
		if p.Title == "" {
			p.Title = value
		}
	case SectionIntroduction:
		if p.Introduction == "" {
			p.Introduction = value
		}
	case SectionEmotionalTrigger:
		if p.EmotionalTrigger == "" {
			p.EmotionalTrigger = value
		}
	case SectionConceptExplanation:
		if p.ConceptExplanation == "" {
			p.ConceptExplanation = value
		}
	case SectionResolution:
		if p.Resolution == "" {
			p.Resolution = value
		}
	case SectionMoralMessage:
		if p.MoralMessage == "" {
			p.MoralMessage = value
		}
	}
}
