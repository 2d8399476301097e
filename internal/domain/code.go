package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Code prefixes per ledger.
const (
	PrefixYarn     = "YT"
	PrefixRaw      = "RMT"
	PrefixWarpBeam = "FWB"
	PrefixReset    = "RST"
)

// MaxCodeSequence is the largest sequence that fits the four-digit segment.
const MaxCodeSequence = 9999

const codeDateLayout = "20060102"

// PrefixFor returns the code prefix of the ledger tracking kind.
func PrefixFor(kind ItemKind) string {
	switch kind {
	case ItemKindYarn:
		return PrefixYarn
	case ItemKindRaw:
		return PrefixRaw
	case ItemKindWarpBeam:
		return PrefixWarpBeam
	}
	return ""
}

// FormatCode renders {PREFIX}-{yyyyMMdd}-{NNNN}.
func FormatCode(prefix string, day time.Time, seq int) (string, error) {
	if prefix == "" || strings.Contains(prefix, "-") {
		return "", fmt.Errorf("%w: bad prefix %q", ErrInvalidCode, prefix)
	}
	if seq < 1 || seq > MaxCodeSequence {
		return "", fmt.Errorf("%w: sequence %d out of range", ErrCodeGeneration, seq)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format(codeDateLayout), seq), nil
}

// CodeParts are the segments of a transaction code.
type CodeParts struct {
	Prefix   string
	Day      time.Time
	Sequence int
}

// ParseCode splits a transaction code into its segments.
func ParseCode(code string) (CodeParts, error) {
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] == "" || len(parts[2]) != 4 {
		return CodeParts{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	day, err := time.Parse(codeDateLayout, parts[1])
	if err != nil {
		return CodeParts{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return CodeParts{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	return CodeParts{Prefix: parts[0], Day: day, Sequence: seq}, nil
}

// CodeDayPrefix returns the "{PREFIX}-{yyyyMMdd}-" portion shared by all codes
// of one prefix on one day.
func CodeDayPrefix(prefix string, day time.Time) string {
	return prefix + "-" + day.Format(codeDateLayout) + "-"
}
