// server/internal/export/pdf.go
package export

import (
	"fmt"
	"io"

	"fleetlog-api-server/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the record set as a paginated document: a title
// followed by one human-readable block per log. Deliberately simpler
// than the tabular formats.
func WritePDF(w io.Writer, logs []models.LogWithDriver) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Driver Daily Logs Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, l := range logs {
		if i > 0 {
			pdf.Ln(6)
		}

		pdf.SetFont("Helvetica", "BU", 14)
		pdf.CellFormat(0, 8, "Date: "+l.Date.UTC().Format("2006-01-02"), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		lines := []string{
			fmt.Sprintf("Driver: %s (%s)", l.DriverName, l.DriverEmail),
			fmt.Sprintf("Total KM: %.2f", l.TotalKm),
			fmt.Sprintf("Fuel Cost: %.2f", l.FuelCost),
			fmt.Sprintf("Other Expenses: %.2f", l.OtherExpenses),
			fmt.Sprintf("Cash Collected: %.2f", l.CashCollected),
			fmt.Sprintf("Online Collected: %.2f", l.OnlineCollected),
			fmt.Sprintf("Total Earnings: %.2f", l.TotalEarnings),
		}
		for _, line := range lines {
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}
