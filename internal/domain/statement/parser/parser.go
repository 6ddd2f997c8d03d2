// Package parser extracts raw transaction rows from uploaded statement
// files. It handles CSV through gocsv struct unmarshaling and XLSX through
// excelize; output rows go to the normalizer untouched.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
)

// statementRow is a raw CSV row. The tags cover the column names banks
// actually use; gocsv matches by header, so unknown columns are ignored.
type statementRow struct {
	Date    string `csv:"date"`
	TxnDate string `csv:"transaction date"`
	ValDate string `csv:"value date"`

	Description string `csv:"description"`
	Narration   string `csv:"narration"`
	Details     string `csv:"details"`
	Particulars string `csv:"particulars"`
	Merchant    string `csv:"merchant"`

	Amount string `csv:"amount"`
	Value  string `csv:"value"`

	Debit  string `csv:"debit"`
	Credit string `csv:"credit"`

	Type string `csv:"type"`
	DrCr string `csv:"dr/cr"`

	CardLast4 string `csv:"card last4"`
	Card      string `csv:"card"`
}

// ParseError reports one unusable file row.
type ParseError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// ParseResult is the outcome of extracting one file.
type ParseResult struct {
	Records   []statement.RawRecord
	Errors    []ParseError
	TotalRows int
}

// Config adjusts parsing for a bank's file quirks.
type Config struct {
	Delimiter rune // 0 means comma
	SkipLines int  // preamble lines before the header row
}

// Parser extracts raw rows from CSV statements.
type Parser struct {
	config Config
}

// NewParser builds a CSV parser.
func NewParser(config Config) *Parser {
	return &Parser{config: config}
}

// Parse reads a whole CSV statement.
func (p *Parser) Parse(reader io.Reader) (*ParseResult, error) {
	if p.config.SkipLines > 0 {
		reader = skipLines(reader, p.config.SkipLines)
	}

	csvReader := csv.NewReader(reader)
	if p.config.Delimiter != 0 {
		csvReader.Comma = p.config.Delimiter
	}
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	var rows []statementRow
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	result := &ParseResult{
		Records:   make([]statement.RawRecord, 0, len(rows)),
		TotalRows: len(rows),
	}

	for i, row := range rows {
		record, perr := convertRow(row, i)
		if perr != nil {
			result.Errors = append(result.Errors, *perr)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

// convertRow folds the alternative column spellings into one RawRecord.
// Double-entry files put the amount in either a debit or a credit column;
// whichever is populated also fixes the type flag.
func convertRow(row statementRow, ordinal int) (statement.RawRecord, *ParseError) {
	record := statement.RawRecord{
		Ordinal:     ordinal,
		Date:        firstNonEmpty(row.Date, row.TxnDate, row.ValDate),
		Description: firstNonEmpty(row.Description, row.Narration, row.Details, row.Particulars, row.Merchant),
		Amount:      firstNonEmpty(row.Amount, row.Value),
		TypeFlag:    firstNonEmpty(row.Type, row.DrCr),
		CardLast4:   lastFour(firstNonEmpty(row.CardLast4, row.Card)),
	}

	if record.Amount == "" {
		switch {
		case strings.TrimSpace(row.Debit) != "":
			record.Amount = row.Debit
			record.TypeFlag = "debit"
		case strings.TrimSpace(row.Credit) != "":
			record.Amount = row.Credit
			record.TypeFlag = "credit"
		}
	}

	if record.Date == "" && record.Description == "" && record.Amount == "" {
		return statement.RawRecord{}, &ParseError{
			Row:     ordinal,
			Column:  "*",
			Message: "row is empty",
		}
	}
	return record, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// lastFour reduces a masked card number ("XXXX-XXXX-1234") to its last four
// digits.
func lastFour(card string) string {
	digits := make([]rune, 0, len(card))
	for _, r := range card {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}

// skipLines drops n leading lines from a reader.
func skipLines(reader io.Reader, n int) io.Reader {
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return strings.NewReader("")
	}
	lines := strings.SplitN(buf.String(), "\n", n+1)
	if len(lines) <= n {
		return strings.NewReader("")
	}
	return strings.NewReader(lines[n])
}
