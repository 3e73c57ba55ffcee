package naming

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/apperr"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Draft":              "draft",
		"Hello World":        "hello-world",
		"snake_case_title":   "snake-case-title",
		"  spaced   out  ":   "spaced-out",
		"a - b":              "a-b",
		"Q3 Report (final)!": "q3-report-final",
		"--edge--":           "edge",
		"Ünïcödé":            "ncd",
		"日本語":                "",
		"":                   "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitize_Placeholder(t *testing.T) {
	if got := Sanitize("!!!", UntitledNote, NoteSlugLen); got != UntitledNote {
		t.Errorf("got %q", got)
	}
	if got := Sanitize("", UntitledFolder, FolderSlugLen); got != UntitledFolder {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("abc ", 30)
	got := Sanitize(long, Untitled, FolderSlugLen)
	if len(got) > FolderSlugLen {
		t.Errorf("len = %d, want <= %d", len(got), FolderSlugLen)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug ends with separator: %q", got)
	}
}

func TestCandidate(t *testing.T) {
	id := uuid.MustParse("0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a")
	if got := StyleCounter.Candidate("draft", ".txt", id, 0); got != "draft.txt" {
		t.Errorf("attempt 0 = %q", got)
	}
	if got := StyleCounter.Candidate("draft", ".txt", id, 2); got != "draft_2.txt" {
		t.Errorf("attempt 2 = %q", got)
	}
	if got := StyleCounter.Candidate("projects", "", id, 1); got != "projects_1" {
		t.Errorf("dir attempt 1 = %q", got)
	}
	want := "draft____0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a.txt"
	if got := StyleIDSuffix.Candidate("draft", ".txt", id, 0); got != want {
		t.Errorf("id suffix = %q", got)
	}
}

func TestReserve_SkipsTakenNames(t *testing.T) {
	taken := map[string]bool{"draft.txt": true, "draft_1.txt": true}
	name, err := Reserve(StyleCounter, "draft", ".txt", uuid.Nil, func(n string) error {
		if taken[n] {
			return fs.ErrExist
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if name != "draft_2.txt" {
		t.Errorf("name = %q, want draft_2.txt", name)
	}
}

func TestReserve_Exhausted(t *testing.T) {
	calls := 0
	_, err := Reserve(StyleCounter, "draft", ".txt", uuid.Nil, func(string) error {
		calls++
		return &fs.PathError{Op: "open", Path: "x", Err: fs.ErrExist}
	})
	if !errors.Is(err, apperr.ErrNameExhausted) {
		t.Fatalf("err = %v, want ErrNameExhausted", err)
	}
	if calls != MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, MaxAttempts)
	}
}

func TestReserve_AbortsOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Reserve(StyleCounter, "draft", ".txt", uuid.Nil, func(string) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}

func TestReserve_IDSuffixSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Reserve(StyleIDSuffix, "draft", ".txt", uuid.New(), func(string) error {
		calls++
		return fs.ErrExist
	})
	if !errors.Is(err, apperr.ErrNameExhausted) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}
