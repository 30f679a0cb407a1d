package parser

import (
	"iter"
	"strings"
	"time"
)

// OFX statement markers. OFX is SGML-flavored: tags are unclosed and a
// value runs to the end of its line.
const (
	stmtStart = "<STMTTRN>"
	stmtEnd   = "</STMTTRN>"
)

// parseOFX walks the transaction blocks of an OFX-family statement. Blocks
// that cannot be normalized are skipped.
func parseOFX(data []byte) iter.Seq[Draft] {
	return func(yield func(Draft) bool) {
		text := string(data)
		for {
			start := indexFold(text, stmtStart)
			if start < 0 {
				return
			}
			rest := text[start+len(stmtStart):]

			block := rest
			end := indexFold(rest, stmtEnd)
			if end >= 0 {
				block = rest[:end]
				text = rest[end+len(stmtEnd):]
			} else {
				// Unterminated final block: take up to the next block start.
				if next := indexFold(rest, stmtStart); next >= 0 {
					block = rest[:next]
					text = rest[next:]
				} else {
					text = ""
				}
			}

			if draft, ok := parseOFXBlock(block); ok {
				if !yield(draft) {
					return
				}
			}
		}
	}
}

func parseOFXBlock(block string) (Draft, bool) {
	date, ok := parseOFXDate(tagValue(block, "DTPOSTED"))
	if !ok {
		return Draft{}, false
	}

	desc := tagValue(block, "NAME")
	if desc == "" {
		desc = tagValue(block, "MEMO")
	}
	if desc == "" {
		return Draft{}, false
	}

	amount, ok := parseAmount(tagValue(block, "TRNAMT"))
	if !ok {
		return Draft{}, false
	}

	return Draft{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        tagValue(block, "TRNTYPE"),
		CheckNumber: tagValue(block, "CHECKNUM"),
		RefNumber:   tagValue(block, "REFNUM"),
		BankTxnID:   tagValue(block, "FITID"),
	}, true
}

// parseOFXDate reformats a compact numeric date ("YYYYMMDD" optionally
// followed by time and timezone) to a calendar date.
func parseOFXDate(s string) (time.Time, bool) {
	digits := s
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			digits = s[:i]
			break
		}
	}
	if len(digits) < 8 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", digits[:8])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// tagValue extracts the value following <TAG> on the remaining text of a
// block, case-insensitive, terminated at end of line or the next tag.
func tagValue(block, tag string) string {
	idx := indexFold(block, "<"+tag+">")
	if idx < 0 {
		return ""
	}
	v := block[idx+len(tag)+2:]
	if cut := strings.IndexAny(v, "\r\n<"); cut >= 0 {
		v = v[:cut]
	}
	return strings.TrimSpace(v)
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToUpper(s), strings.ToUpper(substr))
}
