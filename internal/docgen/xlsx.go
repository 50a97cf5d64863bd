// Package docgen renders exports (xlsx) and proposals (docx).
package docgen

import (
	"fmt"
	"io"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX content type of the spreadsheets written here.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var CustomerExportHeader = []string{
	"Name", "AFM", "Email", "Phone", "Address", "City", "ZIP", "ERP Code", "Active", "Created",
}

var customerColumnWidths = []float64{35, 12, 30, 16, 35, 18, 8, 12, 8, 18}

var BOMHeader = []string{
	"#", "Code", "Name", "Brand", "Model", "Type", "Unit", "Quantity", "Unit Price", "Total",
}

var bomColumnWidths = []float64{5, 14, 40, 18, 18, 14, 8, 10, 12, 14}

// workbook is a single-sheet excelize file with a styled, frozen header row.
type workbook struct {
	f     *excelize.File
	sheet string
}

func newWorkbook(sheet string, headers []string, widths []float64) (*workbook, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	wb := &workbook{f: f, sheet: sheet}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}
	return wb, nil
}

func (wb *workbook) set(col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := wb.f.SetCellValue(wb.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

func (wb *workbook) setRow(row int, values ...any) error {
	for i, v := range values {
		if err := wb.set(i+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

// writeTo flushes the workbook and closes it.
func (wb *workbook) writeTo(w io.Writer) error {
	defer wb.f.Close()
	if _, err := wb.f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// money decimals are written as float cells so spreadsheet formulas work on them.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// WriteCustomers writes the customer export sheet.
func WriteCustomers(w io.Writer, customers []*domain.Customer) error {
	wb, err := newWorkbook("Customers", CustomerExportHeader, customerColumnWidths)
	if err != nil {
		return err
	}
	for i, c := range customers {
		active := "No"
		if c.IsActive {
			active = "Yes"
		}
		if err := wb.setRow(i+2,
			c.Name, str(c.AFM), str(c.Email), str(c.Phone), str(c.Address),
			str(c.City), str(c.Zip), str(c.ERPCode), active,
			c.CreatedAt.Format("2006-01-02 15:04"),
		); err != nil {
			wb.f.Close()
			return err
		}
	}
	return wb.writeTo(w)
}

// WriteBOM writes the "BOM" sheet: one row per line, then a bold totals row.
func WriteBOM(w io.Writer, bom *domain.BOM) error {
	wb, err := newWorkbook("BOM", BOMHeader, bomColumnWidths)
	if err != nil {
		return err
	}
	f := wb.f

	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create price style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 2}},
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create totals style: %w", err)
	}

	row := 2
	for i, l := range bom.Lines {
		if err := wb.setRow(row,
			i+1, l.Code, l.Name, l.Brand, l.Model, l.Type, l.Unit,
			l.Quantity, money(l.UnitPrice), money(l.Total),
		); err != nil {
			f.Close()
			return err
		}
		row++
	}
	if len(bom.Lines) > 0 {
		if err := f.SetCellStyle(wb.sheet, "I2", fmt.Sprintf("J%d", row-1), priceStyle); err != nil {
			f.Close()
			return fmt.Errorf("failed to set price style: %w", err)
		}
	}

	if err := wb.setRow(row, "", "", "Total"); err != nil {
		f.Close()
		return err
	}
	if err := wb.set(8, row, bom.TotalQty); err != nil {
		f.Close()
		return err
	}
	if err := wb.set(10, row, money(bom.GrandTotal)); err != nil {
		f.Close()
		return err
	}
	if err := f.SetCellStyle(wb.sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("J%d", row), totalStyle); err != nil {
		f.Close()
		return fmt.Errorf("failed to set totals style: %w", err)
	}
	return wb.writeTo(w)
}
