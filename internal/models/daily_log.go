// server/internal/models/daily_log.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyLog is one operational record per driver per calendar day.
// The (driverID, date) pair is guarded by a unique compound index;
// Date is always stored normalized to UTC midnight.
type DailyLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverID        primitive.ObjectID `bson:"driverId" json:"driverId"`
	Date            time.Time          `bson:"date" json:"date"`
	TotalKm         float64            `bson:"totalKm" json:"totalKm"`
	FuelCost        float64            `bson:"fuelCost" json:"fuelCost"`
	OtherExpenses   float64            `bson:"otherExpenses" json:"otherExpenses"`
	CashCollected   float64            `bson:"cashCollected" json:"cashCollected"`
	OnlineCollected float64            `bson:"onlineCollected" json:"onlineCollected"`
	TotalEarnings   float64            `bson:"totalEarnings" json:"totalEarnings"`
	ExpenseBill     string             `bson:"expenseBill" json:"expenseBill"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ComputeEarnings recomputes the derived totalEarnings from the stored
// fields. It is never accepted from the client.
func (l *DailyLog) ComputeEarnings() {
	l.TotalEarnings = (l.CashCollected + l.OnlineCollected) - (l.FuelCost + l.OtherExpenses)
}

// NormalizeDay truncates a timestamp to its UTC calendar day.
func NormalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of the UTC calendar day containing t,
// used for inclusive upper bounds on date-range filters.
func EndOfDay(t time.Time) time.Time {
	return NormalizeDay(t).Add(24*time.Hour - time.Nanosecond)
}

// LogWithDriver is a DailyLog joined with the owning driver's contact
// fields, as returned by queries and consumed by the exporters.
type LogWithDriver struct {
	DailyLog    `bson:",inline"`
	DriverName  string `bson:"driverName" json:"driverName"`
	DriverEmail string `bson:"driverEmail" json:"driverEmail"`
	DriverPhone string `bson:"driverPhone" json:"driverPhone"`
}
