// Package codeblock pulls a single fenced code block out of free-form model output.
package codeblock

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	// An optional language tag must be followed directly by a newline.
	taggedBlock  = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")
	genericBlock = regexp.MustCompile("```([\\s\\S]*?)```")
	// Matches what follows a lone opening fence.
	openTail = regexp.MustCompile("^(\\w+)?\\n([\\s\\S]*)$")
)

// Extract returns the first fenced code block in text, rebuilt with exactly one
// pair of fences and its body trimmed. Blocks whose opening fence is followed by
// a tag and a newline are preferred; any other fenced span is returned untagged.
// A block left open by a truncated response is closed, so the result never
// carries an odd number of fences. Text without any fence is returned trimmed.
func Extract(text string) string {
	if m := taggedBlock.FindStringSubmatch(text); m != nil {
		return wrap(m[1], m[2])
	}
	if m := genericBlock.FindStringSubmatch(text); m != nil {
		return wrap("", m[1])
	}
	if i := strings.LastIndex(text, fence); i >= 0 {
		tail := text[i+len(fence):]
		if m := openTail.FindStringSubmatch(tail); m != nil {
			return wrap(m[1], m[2])
		}
		return wrap("", tail)
	}
	return strings.TrimSpace(text)
}

func wrap(lang, body string) string {
	var sb strings.Builder
	sb.Grow(len(body) + len(lang) + 2*len(fence) + 2)
	sb.WriteString(fence)
	sb.WriteString(lang)
	sb.WriteByte('\n')
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteByte('\n')
	sb.WriteString(fence)
	return sb.String()
}
