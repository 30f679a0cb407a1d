package parser

import (
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimited_ChaseExport(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	drafts := slices.Collect(parseDelimited(data))
	require.Len(t, drafts, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", drafts[0].Description)
	assert.Equal(t, "-4.00", drafts[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", drafts[0].Type)
	assert.Equal(t, 2025, drafts[0].Date.Year())
	assert.Equal(t, 3, drafts[0].Date.Day())

	// Quoted field keeps its embedded comma.
	assert.Equal(t, "STAPLES, INC #1234", drafts[1].Description)

	assert.Equal(t, "1041", drafts[2].CheckNumber)

	assert.True(t, drafts[3].Amount.IsPositive())
	assert.Equal(t, "3500.00", drafts[3].Amount.StringFixed(2))
}

func TestParseDelimited_DebitCreditColumns(t *testing.T) {
	data, err := os.ReadFile("../../testdata/debit_credit.csv")
	require.NoError(t, err)

	drafts := slices.Collect(parseDelimited(data))
	require.Len(t, drafts, 4)

	// Debit column values become outflows regardless of sign in the file.
	assert.Equal(t, "-1200.00", drafts[0].Amount.StringFixed(2))
	assert.Equal(t, "RENT-FEB", drafts[0].RefNumber)

	// Credit column values become inflows.
	assert.Equal(t, "2750.33", drafts[1].Amount.StringFixed(2))

	// Currency symbol stripped.
	assert.Equal(t, "-89.99", drafts[2].Amount.StringFixed(2))

	// Parenthesized negative in a debit column still lands negative.
	assert.Equal(t, "-45.50", drafts[3].Amount.StringFixed(2))
}

func TestParseDelimited_HeaderSynonyms(t *testing.T) {
	csv := "Transaction Date,Payee,Transaction Amount,FITID\n" +
		"2025-03-01,COFFEE SHOP,-5.25,abc123\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	require.Len(t, drafts, 1)
	assert.Equal(t, "COFFEE SHOP", drafts[0].Description)
	assert.Equal(t, "-5.25", drafts[0].Amount.StringFixed(2))
	assert.Equal(t, "abc123", drafts[0].BankTxnID)
}

func TestParseDelimited_PostDate(t *testing.T) {
	csv := "Date,Post Date,Description,Amount\n" +
		"2025-03-01,2025-03-03,LATE SETTLING CHARGE,-10.00\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	require.Len(t, drafts, 1)
	require.NotNil(t, drafts[0].PostDate)
	assert.Equal(t, 3, drafts[0].PostDate.Day())
	assert.Equal(t, 1, drafts[0].Date.Day())
}

func TestParseDelimited_DropsRowsMissingDateOrDescription(t *testing.T) {
	csv := "Date,Description,Amount\n" +
		"NOTADATE,SOMETHING,-1.00\n" +
		"2025-03-01,,-2.00\n" +
		"2025-03-02,KEPT,-3.00\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	require.Len(t, drafts, 1)
	assert.Equal(t, "KEPT", drafts[0].Description)
}

func TestParseDelimited_UnparseableAmountDropsRow(t *testing.T) {
	csv := "Date,Description,Amount\n" +
		"2025-03-01,BROKEN,notanumber\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	assert.Empty(t, drafts)
}

func TestParseDelimited_MissingAmountDefaultsToZero(t *testing.T) {
	csv := "Date,Description,Amount\n" +
		"2025-03-01,ZERO ROW,\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].Amount.IsZero())
}

func TestParseDelimited_HeaderOnly(t *testing.T) {
	csv := "Date,Description,Amount\n"
	assert.Empty(t, slices.Collect(parseDelimited([]byte(csv))))
}

func TestParseDelimited_DuplicateHeadersFirstWins(t *testing.T) {
	csv := "Date,Description,Memo,Amount\n" +
		"2025-03-01,PRIMARY,SECONDARY,-1.00\n"
	drafts := slices.Collect(parseDelimited([]byte(csv)))
	require.Len(t, drafts, 1)
	assert.Equal(t, "PRIMARY", drafts[0].Description)
}

func TestSplitDelimited(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitDelimited("a,b,c"))
	assert.Equal(t, []string{"a", "b,c", "d"}, splitDelimited(`a,"b,c",d`))
	assert.Equal(t, []string{"", ""}, splitDelimited(","))
	// A quote after the quoted section closed is kept literally.
	assert.Equal(t, []string{`ab"c`}, splitDelimited(`"ab""c`))
}

func TestSplitLines_CRLF(t *testing.T) {
	lines := splitLines("a\r\nb\r\n")
	assert.Equal(t, []string{"a", "b"}, lines)
	assert.Nil(t, splitLines(""))
}
