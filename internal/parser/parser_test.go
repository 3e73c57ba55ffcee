package parser

import (
	"testing"

	"github.com/google/uuid"
)

func TestComposeNote_Format(t *testing.T) {
	id := uuid.MustParse("0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a")
	got := ComposeNote(id, "Todo", "plain-text")
	want := "---\nid: \"0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a\"\ntitle: \"Todo\"\ntype: \"plain-text\"\n---\n"
	if got != want {
		t.Errorf("ComposeNote =\n%q\nwant\n%q", got, want)
	}
}

func TestComposeFolder_Format(t *testing.T) {
	id := uuid.MustParse("0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a")
	got := ComposeFolder(id, "Projects")
	want := "id: \"0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a\"\ndisplay-name: \"Projects\"\n---\n"
	if got != want {
		t.Errorf("ComposeFolder =\n%q\nwant\n%q", got, want)
	}
}

func TestNoteRoundTrip(t *testing.T) {
	cases := []struct{ title, fileType string }{
		{"Todo", "plain-text"},
		{"Meeting: 2025-01-20", "rich-text"},
		{`She said "hi"`, "markdown"},
		{"  padded  ", "x"},
		{"유니코드 제목", "plain-text"},
	}
	for _, tc := range cases {
		id := uuid.New()
		body := "line one\nline two\n"
		h, gotBody := ParseNote(ComposeNote(id, tc.title, tc.fileType) + body)
		if !h.ID.Valid || h.ID.UUID != id {
			t.Errorf("%q: id = %+v, want %s", tc.title, h.ID, id)
		}
		if h.Title != tc.title || h.FileType != tc.fileType {
			t.Errorf("round trip = (%q, %q), want (%q, %q)", h.Title, h.FileType, tc.title, tc.fileType)
		}
		if gotBody != body {
			t.Errorf("%q: body = %q, want %q", tc.title, gotBody, body)
		}
	}
}

func TestFolderRoundTrip(t *testing.T) {
	id := uuid.New()
	h := ParseFolder(ComposeFolder(id, "Work Stuff"))
	if !h.ID.Valid || h.ID.UUID != id || h.DisplayName != "Work Stuff" {
		t.Errorf("folder round trip = %+v", h)
	}
}

func TestParseNote_NoClosingDelimiter(t *testing.T) {
	input := "---\nid: \"0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a\"\ntitle: \"Lost\"\njust text"
	h, body := ParseNote(input)
	if h.ID.Valid || h.Title != "" || h.FileType != "" {
		t.Errorf("expected no fields, got %+v", h)
	}
	if body != input {
		t.Errorf("body = %q, want whole input", body)
	}
}

func TestParseNote_EmptyInput(t *testing.T) {
	h, body := ParseNote("")
	if h.ID.Valid || body != "" {
		t.Errorf("got %+v / %q", h, body)
	}
}

func TestParseNote_LenientFields(t *testing.T) {
	input := "---\n" +
		"id: \"not-a-uuid\"\n" +
		"title: \"\"\n" +
		"type: unquoted\n" +
		"garbage line\n" +
		"color: \"blue\"\n" +
		"---\nbody"
	h, body := ParseNote(input)
	if h.ID.Valid {
		t.Error("invalid uuid should be absent")
	}
	if h.Title != "" {
		t.Errorf("empty value should be absent, got %q", h.Title)
	}
	if h.FileType != "" {
		t.Errorf("unquoted value should be absent, got %q", h.FileType)
	}
	if body != "body" {
		t.Errorf("body = %q", body)
	}
}

func TestParseNote_WithoutOpeningDelimiter(t *testing.T) {
	h, body := ParseNote("title: \"Loose\"\n---\nrest\n")
	if h.Title != "Loose" {
		t.Errorf("title = %q", h.Title)
	}
	if body != "rest\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseNote_CRLF(t *testing.T) {
	h, body := ParseNote("---\r\ntitle: \"Windows\"\r\n---\r\nbody\r\n")
	if h.Title != "Windows" {
		t.Errorf("title = %q", h.Title)
	}
	if body != "body\r\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFolder_MissingDelimiter(t *testing.T) {
	h := ParseFolder("id: \"0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a\"\ndisplay-name: \"X\"\n")
	if h.ID.Valid || h.DisplayName != "" {
		t.Errorf("expected absent fields without closing delimiter, got %+v", h)
	}
}

func TestComposeNote_FlattensLineBreaks(t *testing.T) {
	h, _ := ParseNote(ComposeNote(uuid.New(), "two\nlines", "plain-text"))
	if h.Title != "two lines" {
		t.Errorf("title = %q", h.Title)
	}
}

func TestExtractQuoted(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{` "abc"`, "abc", true},
		{` "a"b"`, `a"b`, true},
		{` ""`, "", true},
		{` "`, "", false},
		{` abc`, "", false},
	}
	for _, tc := range cases {
		got, ok := extractQuoted(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("extractQuoted(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
