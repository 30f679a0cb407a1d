// Package parser converts raw bank statement files into normalized
// transaction drafts. Two families are supported: delimited text with a
// header row, and the OFX markup statement format in its plain OFX, QFX
// (Quicken Web Connect) and QBO (QuickBooks Web Connect) variants.
package parser

import (
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format identifies a supported statement file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
	FormatQFX Format = "qfx"
	FormatQBO Format = "qbo"
)

// Draft is a normalized transaction parsed from a statement file, before
// it has been persisted or classified.
type Draft struct {
	Date        time.Time
	PostDate    *time.Time
	Description string
	Amount      decimal.Decimal // negative = outflow
	Type        string
	CheckNumber string
	RefNumber   string
	BankTxnID   string // external bank identifier (FITID); empty for most CSVs
}

// Detect sniffs the statement format from raw content. Anything carrying
// the OFX root tag is classified as a markup statement; the variant comes
// from the sign-on section markers. Everything else is delimited text.
func Detect(data []byte) Format {
	upper := strings.ToUpper(string(data))
	if !strings.Contains(upper, "<OFX>") {
		return FormatCSV
	}
	if strings.Contains(upper, "INTU.BID") {
		return FormatQFX
	}
	if strings.Contains(upper, "<SIGNONMSGSRSV1>") {
		return FormatOFX
	}
	return FormatQBO
}

// Parse returns a restartable sequence of drafts for the given content.
// Rows or blocks that cannot be normalized are skipped, never fatal; a
// record missing a date or description is dropped.
func Parse(data []byte, format Format) iter.Seq[Draft] {
	if format == FormatCSV {
		return parseDelimited(data)
	}
	return parseOFX(data)
}

// dateFormats are tried in order when parsing delimited dates.
var dateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/06",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
