// Package context builds the LLM-facing context blocks and evidence
// checklist formatting shown in the final answer. (Named context for
// its domain meaning; it does not implement context.Context.)
package context

import (
	"fmt"
	"strings"

	"github.com/joseon-annals/rag-service/internal/model"
)

// DocCharLimit truncates a doc's body text when building a context block.
const DocCharLimit = 1200

// Truncate cuts text to at most limit runes. The corpus is Korean-language
// UTF-8 text, so this slices on code points, not bytes — a byte-length cut
// would land mid-rune and corrupt multi-byte Hangul.
func Truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) > limit {
		return string(r[:limit])
	}
	return text
}

// FormatMeta composes the " / "-joined, Korean-labeled metadata summary
// for a doc: king, date (year/month/day space-joined), book, article.
// Parts whose backing fields are all empty are omitted entirely.
func FormatMeta(d model.Doc) string {
	var parts []string
	if d.King != "" {
		parts = append(parts, "왕:"+d.King)
	}
	var date []string
	if d.Year != "" {
		date = append(date, d.Year+"년")
	}
	if d.Month != "" {
		date = append(date, d.Month+"월")
	}
	if d.Day != "" {
		date = append(date, d.Day+"일")
	}
	if len(date) > 0 {
		parts = append(parts, strings.Join(date, " "))
	}
	if d.Book != "" {
		parts = append(parts, "책/권:"+d.Book)
	}
	if d.Article != "" {
		parts = append(parts, "기사:"+d.Article)
	}
	return strings.Join(parts, " / ")
}

// BuildBlock renders one doc's context entry using its stable display
// index: "[i] {title}\nLINK: {link}\nMETA: {meta}\n{text[:limit]}" with
// the META line omitted when format_meta is empty.
func BuildBlock(displayIndex int, d model.Doc) string {
	text := Truncate(d.Text, DocCharLimit)
	metaLine := ""
	if m := FormatMeta(d); m != "" {
		metaLine = "\nMETA: " + m
	}
	return fmt.Sprintf("[%d] %s\nLINK: %s%s\n%s", displayIndex, d.Title, d.Link, metaLine, text)
}

// EvidenceBlock formats the evidence checklist appended to a final
// answer: "\n\n증거 체크리스트:\n- 근거 있음: {found}\n- 근거 부족: {missing}".
// Returns "" when both found and missing are empty.
func EvidenceBlock(found, missing []string) string {
	if len(found) == 0 && len(missing) == 0 {
		return ""
	}
	return "\n\n증거 체크리스트:\n" +
		"- 근거 있음: " + joinOrDash(found) + "\n" +
		"- 근거 부족: " + joinOrDash(missing)
}

func joinOrDash(items []string) string {
	var nonEmpty []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return "-"
	}
	return strings.Join(nonEmpty, ", ")
}
