// Package spreadsheet renders ledger statements as Excel workbooks.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iho/textileledger/internal/domain"
)

// ContentType is the MIME type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetName  = "Statement"
	headerRow  = 3
	dateFormat = "2006-01-02"
)

var columns = []string{
	"Date", "Code", "Direction", "Internal Ref", "External Ref",
	"Inbound (kg)", "Outbound (kg)", "Count", "Balance (kg)", "Balance (count)",
	"Comment", "Created By",
}

// StatementWriter writes an item's transaction history to a workbook.
type StatementWriter struct{}

// NewStatementWriter creates a new StatementWriter.
func NewStatementWriter() *StatementWriter {
	return &StatementWriter{}
}

// Render writes a statement for item with txs ordered oldest first.
func (s *StatementWriter) Render(w io.Writer, item *domain.Item, txs []*domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s ledger statement: %s", item.Kind, item.Name)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styles.title); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, headerRow, header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, cell(1, headerRow), cell(len(columns), headerRow), styles.header); err != nil {
		return err
	}

	row := headerRow
	for _, t := range txs {
		row++
		values := []any{
			t.Date.UTC().Format(dateFormat),
			t.Code,
			string(t.Direction),
			t.InternalRef,
			t.ExternalRef,
			t.Inbound.InexactFloat64(),
			t.Outbound.InexactFloat64(),
			t.Count,
			t.QuantityBalance.InexactFloat64(),
			t.CountBalance,
			t.Comment,
			t.CreatedBy,
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
	}

	if len(txs) > 0 {
		if err := f.SetCellStyle(sheetName, cell(6, headerRow+1), cell(7, row), styles.quantity); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell(9, headerRow+1), cell(9, row), styles.quantity); err != nil {
			return err
		}
	}

	closing := domain.ZeroBalance
	if len(txs) > 0 {
		closing = txs[len(txs)-1].Balance()
	}
	row += 2
	if err := setRow(f, row, []any{"Closing balance", "", "", "", "", "", "", "", closing.Quantity.InexactFloat64(), closing.Count}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, cell(1, row), cell(len(columns), row), styles.header); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "K", "K", 40); err != nil {
		return err
	}

	return f.Write(w)
}

type styleSet struct {
	title    int
	header   int
	quantity int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	qtyFormat := "#,##0.000"
	if s.quantity, err = f.NewStyle(&excelize.Style{CustomNumFmt: &qtyFormat}); err != nil {
		return s, fmt.Errorf("quantity style: %w", err)
	}

	return s, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	return f.SetSheetRow(sheetName, cell(1, row), &values)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
