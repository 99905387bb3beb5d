package policy

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/zeebo/xxh3"
)

// Mode selects how aggressively edits are persisted.
type Mode string

const (
	// ModeAlways admits every byte-level change.
	ModeAlways Mode = "always"
	// ModeSignificant admits only edits that change enough lines.
	ModeSignificant Mode = "significant"
)

// DefaultChangedLines is the significant-change threshold: an edit must
// change strictly more lines than this to be admitted.
const DefaultChangedLines = 2

// Admitter decides whether a candidate content state becomes a snapshot.
type Admitter struct {
	Mode         Mode
	ChangedLines int
}

// New returns an Admitter for the given mode with the default threshold.
func New(mode Mode) *Admitter {
	return &Admitter{Mode: mode, ChangedLines: DefaultChangedLines}
}

// Admit reports whether next should be persisted. prev is the content of the
// file's latest snapshot, or nil when the file has no snapshot yet.
// Identical content never admits, in either mode.
func (a *Admitter) Admit(prev *string, next string) bool {
	if prev != nil && xxh3.HashString(*prev) == xxh3.HashString(next) && *prev == next {
		return false
	}
	if a.Mode == ModeAlways {
		return true
	}

	// Significant-change mode.
	if prev == nil {
		return lineCount(next) > 1
	}
	return changedLines(*prev, next) > a.threshold()
}

func (a *Admitter) threshold() int {
	if a.ChangedLines > 0 {
		return a.ChangedLines
	}
	return DefaultChangedLines
}

// changedLines counts insertions plus deletions between the two contents.
// Counting works on the matcher's opcodes rather than rendered diff text, so
// lines whose own content starts with "--" or "++" are never mistaken for
// file-header markers.
func changedLines(before, after string) int {
	matcher := difflib.NewMatcher(difflib.SplitLines(before), difflib.SplitLines(after))

	count := 0
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			count += (op.I2 - op.I1) + (op.J2 - op.J1)
		case 'd':
			count += op.I2 - op.I1
		case 'i':
			count += op.J2 - op.J1
		}
	}
	return count
}

// lineCount counts logical lines; a trailing newline does not open a new one.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
