// server/internal/service/stats.go
package service

import (
	"context"
	"time"

	"fleetlog-api-server/internal/apperror"
	"fleetlog-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stats are the dashboard sums over a filtered set of logs. An empty
// set yields zeros, not an error. TotalDrivers is only populated for
// the admin variant.
type Stats struct {
	TotalDrivers         int64   `bson:"-" json:"totalDrivers,omitempty"`
	TotalKm              float64 `bson:"totalKm" json:"totalKm"`
	TotalExpenses        float64 `bson:"totalExpenses" json:"totalExpenses"`
	TotalCashCollected   float64 `bson:"totalCashCollected" json:"totalCashCollected"`
	TotalOnlineCollected float64 `bson:"totalOnlineCollected" json:"totalOnlineCollected"`
	TotalEarnings        float64 `bson:"totalEarnings" json:"totalEarnings"`
}

// StatsService answers the dashboard aggregation queries.
type StatsService struct {
	db *mongo.Database
}

func NewStatsService(db *mongo.Database) *StatsService {
	return &StatsService{db: db}
}

// statsGroup sums every numeric field across the match; totalExpenses
// is fuelCost+otherExpenses summed.
var statsGroup = bson.D{{Key: "$group", Value: bson.M{
	"_id":                  nil,
	"totalKm":              bson.M{"$sum": "$totalKm"},
	"totalExpenses":        bson.M{"$sum": bson.M{"$add": bson.A{"$fuelCost", "$otherExpenses"}}},
	"totalCashCollected":   bson.M{"$sum": "$cashCollected"},
	"totalOnlineCollected": bson.M{"$sum": "$onlineCollected"},
	"totalEarnings":        bson.M{"$sum": "$totalEarnings"},
}}}

func (s *StatsService) aggregate(ctx context.Context, match bson.M) (Stats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		statsGroup,
	}

	cursor, err := s.db.Collection("daily_logs").Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, apperror.Storage("failed to aggregate logs", err)
	}
	defer cursor.Close(ctx)

	var results []Stats
	if err := cursor.All(ctx, &results); err != nil {
		return Stats{}, apperror.Storage("failed to decode aggregation", err)
	}
	if len(results) == 0 {
		return Stats{}, nil
	}
	return results[0], nil
}

// AdminStats aggregates across all logs in an optional inclusive date
// range and reports the count of non-deleted driver accounts.
func (s *StatsService) AdminStats(ctx context.Context, startDate, endDate string) (Stats, error) {
	match := bson.M{}
	dateRange := bson.M{}
	if startDate != "" {
		start, err := parseDate(startDate)
		if err != nil {
			return Stats{}, err
		}
		dateRange["$gte"] = start
	}
	if endDate != "" {
		end, err := parseDate(endDate)
		if err != nil {
			return Stats{}, err
		}
		dateRange["$lte"] = models.EndOfDay(end)
	}
	if len(dateRange) > 0 {
		match["date"] = dateRange
	}

	stats, err := s.aggregate(ctx, match)
	if err != nil {
		return Stats{}, err
	}

	count, err := s.db.Collection("drivers").CountDocuments(ctx, bson.M{"isDeleted": false})
	if err != nil {
		return Stats{}, apperror.Storage("failed to count drivers", err)
	}
	stats.TotalDrivers = count

	return stats, nil
}

// PeriodRange resolves a relative dashboard period to inclusive
// day-normalized bounds: "week" is the trailing 7 days including today,
// anything else is the trailing calendar month.
func PeriodRange(period string, now time.Time) (time.Time, time.Time) {
	end := models.EndOfDay(now)
	var start time.Time
	if period == "week" {
		start = models.NormalizeDay(now.AddDate(0, 0, -7))
	} else {
		start = models.NormalizeDay(now.AddDate(0, -1, 0))
	}
	return start, end
}

// DriverStats aggregates the caller's own logs within a relative
// period.
func (s *StatsService) DriverStats(ctx context.Context, driverID primitive.ObjectID, period string) (Stats, error) {
	start, end := PeriodRange(period, time.Now())
	match := bson.M{
		"driverId": driverID,
		"date":     bson.M{"$gte": start, "$lte": end},
	}
	return s.aggregate(ctx, match)
}
