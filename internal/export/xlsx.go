// server/internal/export/xlsx.go
package export

import (
	"fmt"
	"io"

	"fleetlog-api-server/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Driver Logs"

var columnWidths = []float64{15, 24, 26, 18, 12, 14, 16, 16, 17, 16}

// WriteXLSX renders the record set as a single typed worksheet.
func WriteXLSX(w io.Writer, logs []models.LogWithDriver) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, header := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheetName, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)

	for i, l := range logs {
		row := i + 2
		values := []interface{}{
			l.Date.UTC().Format("2006-01-02"),
			l.DriverName,
			l.DriverEmail,
			l.DriverPhone,
			l.TotalKm,
			l.FuelCost,
			l.OtherExpenses,
			l.CashCollected,
			l.OnlineCollected,
			l.TotalEarnings,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
