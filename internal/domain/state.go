package domain

import "strings"

// Mode is the analysis the user has selected.
type Mode int

const (
	// ModeCompare scores two texts against each other.
	ModeCompare Mode = iota
	// ModeCheck scores one text against the reference corpus.
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModeCompare:
		return "compare"
	case ModeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// ParseMode accepts "compare" or "check", case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compare":
		return ModeCompare, true
	case "check":
		return ModeCheck, true
	}
	return ModeCompare, false
}

// Operation is the single in-flight request lock.
type Operation int

const (
	OpNone Operation = iota
	OpExtracting
	OpChecking
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpExtracting:
		return "extracting"
	case OpChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// Slot identifies one of the two text inputs.
type Slot int

const (
	Slot1 Slot = iota
	Slot2
)

// NumSlots is the number of text inputs.
const NumSlots = 2

func (s Slot) String() string {
	if s == Slot2 {
		return "text 2"
	}
	return "text 1"
}

// Valid reports whether s names an existing slot.
func (s Slot) Valid() bool { return s >= Slot1 && s < NumSlots }

// TextSlot holds the content of one input and the file last chosen for it.
type TextSlot struct {
	Content string
	File    string
}

// WordCount counts whitespace-separated words; blank text counts as zero.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Blank reports whether s has no content after trimming.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
