// server/internal/export/csv.go
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"fleetlog-api-server/internal/models"
)

var columns = []string{
	"Date",
	"Driver Name",
	"Driver Email",
	"Driver Number",
	"Total KM",
	"Fuel Cost",
	"Other Expenses",
	"Cash Collected",
	"Online Collected",
	"Total Earnings",
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func rowValues(l models.LogWithDriver) []string {
	return []string{
		l.Date.UTC().Format("2006-01-02"),
		l.DriverName,
		l.DriverEmail,
		l.DriverPhone,
		formatAmount(l.TotalKm),
		formatAmount(l.FuelCost),
		formatAmount(l.OtherExpenses),
		formatAmount(l.CashCollected),
		formatAmount(l.OnlineCollected),
		formatAmount(l.TotalEarnings),
	}
}

// WriteCSV renders the full record set as a header row plus one line
// per log.
func WriteCSV(w io.Writer, logs []models.LogWithDriver) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, l := range logs {
		if err := cw.Write(rowValues(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
