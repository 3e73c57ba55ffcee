// Package parser reads and writes the quoted key/value front matter that
// scrap embeds at the top of note files and folder metadata files.
//
// A block is a run of `key: "value"` lines closed by a `---` line. Notes
// also carry an opening `---` line; folder metadata files do not. Parsing is
// lenient: unknown keys and malformed lines are skipped, and input without a
// closing delimiter is treated entirely as body.
package parser

import (
	"strings"

	"github.com/google/uuid"
)

const delim = "---"

// Field names.
const (
	KeyID          = "id"
	KeyTitle       = "title"
	KeyType        = "type"
	KeyDisplayName = "display-name"
)

// NoteHeader holds the note fields found in a front-matter block. Empty
// strings and an invalid ID mean the field was absent.
type NoteHeader struct {
	ID       uuid.NullUUID
	Title    string
	FileType string
}

// FolderHeader holds the folder fields found in a metadata file.
type FolderHeader struct {
	ID          uuid.NullUUID
	DisplayName string
}

// ComposeNote renders a note front-matter block, including both delimiters.
// The note body is appended directly after it.
func ComposeNote(id uuid.UUID, title, fileType string) string {
	var b strings.Builder
	b.WriteString(delim + "\n")
	writeField(&b, KeyID, id.String())
	writeField(&b, KeyTitle, title)
	writeField(&b, KeyType, fileType)
	b.WriteString(delim + "\n")
	return b.String()
}

// ComposeFolder renders a folder metadata file.
func ComposeFolder(id uuid.UUID, displayName string) string {
	var b strings.Builder
	writeField(&b, KeyID, id.String())
	writeField(&b, KeyDisplayName, displayName)
	b.WriteString(delim + "\n")
	return b.String()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize returns value as it is stored on disk. Values are single-line.
func Normalize(value string) string {
	return lineBreaks.Replace(value)
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(`: "`)
	b.WriteString(Normalize(value))
	b.WriteString("\"\n")
}

// ParseNote extracts the note header and returns the body that follows the
// closing delimiter.
func ParseNote(text string) (NoteHeader, string) {
	var h NoteHeader
	fields, body, ok := split(text)
	if !ok {
		return h, text
	}
	h.ID = parseID(fields[KeyID])
	h.Title = fields[KeyTitle]
	h.FileType = fields[KeyType]
	return h, body
}

// ParseFolder extracts the folder header from a metadata file.
func ParseFolder(text string) FolderHeader {
	var h FolderHeader
	fields, _, ok := split(text)
	if !ok {
		return h
	}
	h.ID = parseID(fields[KeyID])
	h.DisplayName = fields[KeyDisplayName]
	return h
}

func parseID(s string) uuid.NullUUID {
	if s == "" {
		return uuid.NullUUID{}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

// split locates the metadata block. It returns the non-empty quoted fields
// found inside it, the remainder after the closing delimiter line, and false
// when no closing delimiter exists.
func split(text string) (map[string]string, string, bool) {
	fields := make(map[string]string)
	rest := text
	for i := 0; ; i++ {
		line, tail, more := strings.Cut(rest, "\n")
		trimmed := strings.TrimSpace(line)
		switch {
		case i == 0 && trimmed == delim:
			// opening delimiter
		case trimmed == delim:
			return fields, tail, true
		default:
			if key, value, ok := parseLine(trimmed); ok {
				fields[key] = value
			}
		}
		if !more {
			return nil, text, false
		}
		rest = tail
	}
}

func parseLine(line string) (string, string, bool) {
	key, raw, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	value, ok := extractQuoted(raw)
	if !ok || value == "" {
		return "", "", false
	}
	return strings.TrimSpace(key), value, true
}

// extractQuoted returns the text strictly between the first and last double
// quote of s.
func extractQuoted(s string) (string, bool) {
	start := strings.IndexByte(s, '"')
	end := strings.LastIndexByte(s, '"')
	if start < 0 || start >= end {
		return "", false
	}
	return s[start+1 : end], true
}
