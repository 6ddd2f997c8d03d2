package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
)

// ExcelParser extracts raw rows from XLSX statements.
type ExcelParser struct {
	config Config
}

// NewExcelParser builds an XLSX parser.
func NewExcelParser(config Config) *ExcelParser {
	return &ExcelParser{config: config}
}

// columnMap resolves header names to column indices; -1 means absent.
type columnMap struct {
	date, description, amount, debit, credit, typeFlag, card int
}

// Parse reads a whole XLSX statement. The first sheet is used unless one is
// named "Transactions".
func (p *ExcelParser) Parse(reader io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := p.pickSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	result := &ParseResult{Records: make([]statement.RawRecord, 0, len(rows))}

	headerRow := p.config.SkipLines
	if headerRow >= len(rows) {
		return result, nil
	}

	cols := mapColumns(rows[headerRow])

	for i := headerRow + 1; i < len(rows); i++ {
		result.TotalRows++
		ordinal := i - headerRow - 1

		row := statementRow{
			Date:        cellAt(rows[i], cols.date),
			Description: cellAt(rows[i], cols.description),
			Amount:      cellAt(rows[i], cols.amount),
			Debit:       cellAt(rows[i], cols.debit),
			Credit:      cellAt(rows[i], cols.credit),
			Type:        cellAt(rows[i], cols.typeFlag),
			Card:        cellAt(rows[i], cols.card),
		}

		record, perr := convertRow(row, ordinal)
		if perr != nil {
			result.Errors = append(result.Errors, *perr)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func (p *ExcelParser) pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	for _, name := range sheets {
		if strings.EqualFold(name, "transactions") {
			return name
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

// mapColumns matches header cells against the same names the CSV tags use.
func mapColumns(headers []string) columnMap {
	cols := columnMap{date: -1, description: -1, amount: -1, debit: -1, credit: -1, typeFlag: -1, card: -1}

	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "transaction date", "value date":
			if cols.date == -1 {
				cols.date = i
			}
		case "description", "narration", "details", "particulars", "merchant":
			if cols.description == -1 {
				cols.description = i
			}
		case "amount", "value":
			if cols.amount == -1 {
				cols.amount = i
			}
		case "debit":
			cols.debit = i
		case "credit":
			cols.credit = i
		case "type", "dr/cr":
			cols.typeFlag = i
		case "card", "card last4":
			cols.card = i
		}
	}
	return cols
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
