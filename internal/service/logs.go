// server/internal/service/logs.go
package service

import (
	"context"
	"mime/multipart"
	"time"

	"fleetlog-api-server/internal/apperror"
	"fleetlog-api-server/internal/models"
	"fleetlog-api-server/internal/storage"

	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Caller identifies the authenticated principal an operation runs as.
type Caller struct {
	ID   primitive.ObjectID
	Role string
}

// LogService implements the daily-log lifecycle: validation, derived
// earnings, the one-per-driver-per-day rule and the bill file
// lifecycle. The unique index on (driverId, date) is the arbiter for
// concurrent creates; this code only translates its verdict.
type LogService struct {
	db    *mongo.Database
	bills storage.BillStore
	log   *logrus.Logger
}

func NewLogService(db *mongo.Database, bills storage.BillStore, log *logrus.Logger) *LogService {
	return &LogService{db: db, bills: bills, log: log}
}

func (s *LogService) logs() *mongo.Collection    { return s.db.Collection("daily_logs") }
func (s *LogService) drivers() *mongo.Collection { return s.db.Collection("drivers") }

// CreateLogInput is the validated contract for create. TotalEarnings is
// deliberately absent: it is derived, never client input.
type CreateLogInput struct {
	DriverID        string
	Date            string
	TotalKm         float64
	FuelCost        float64
	OtherExpenses   float64
	CashCollected   float64
	OnlineCollected float64
}

// UpdateLogInput carries the fields of a partial update; nil means
// "leave unchanged".
type UpdateLogInput struct {
	Date            *string
	TotalKm         *float64
	FuelCost        *float64
	OtherExpenses   *float64
	CashCollected   *float64
	OnlineCollected *float64
}

// QueryFilter are the caller-supplied query constraints. Driver callers
// are force-scoped to their own records regardless of DriverID.
type QueryFilter struct {
	DriverID  string
	StartDate string
	EndDate   string
}

const isoDay = "2006-01-02"

// parseDate accepts an ISO day or full RFC 3339 timestamp and
// normalizes it to the UTC calendar day.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(isoDay, value); err == nil {
		return models.NormalizeDay(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid date, expected YYYY-MM-DD")
	}
	return models.NormalizeDay(t), nil
}

func checkNonNegative(name string, v float64) error {
	if v < 0 {
		return apperror.Validation(name + " must not be negative")
	}
	return nil
}

func validateAmounts(l *models.DailyLog) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"totalKm", l.TotalKm},
		{"fuelCost", l.FuelCost},
		{"otherExpenses", l.OtherExpenses},
		{"cashCollected", l.CashCollected},
		{"onlineCollected", l.OnlineCollected},
	}
	for _, c := range checks {
		if err := checkNonNegative(c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

// resolveDriverID applies the ownership rule for writes: drivers always
// act as themselves, admins must name the driver they act for.
func resolveDriverID(caller Caller, requested string) (primitive.ObjectID, error) {
	if caller.Role != "admin" {
		return caller.ID, nil
	}
	if requested == "" {
		return primitive.NilObjectID, apperror.Validation("driverId is required")
	}
	oid, err := primitive.ObjectIDFromHex(requested)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("invalid driverId")
	}
	return oid, nil
}

// removeBill is the compensating delete of the failure paths. Failures
// are logged, never suppressed into the caller's error.
func (s *LogService) removeBill(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.bills.Remove(ctx, ref); err != nil {
		s.log.WithError(err).WithField("ref", ref).Error("failed to remove expense bill")
	}
}

// Create validates, stores the bill, then inserts the record. Any
// failure after the bill is written deletes it again so neither orphan
// files nor orphan references survive.
func (s *LogService) Create(ctx context.Context, caller Caller, in CreateLogInput, file *multipart.FileHeader) (*models.LogWithDriver, error) {
	driverID, err := resolveDriverID(caller, in.DriverID)
	if err != nil {
		return nil, err
	}

	day, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := models.DailyLog{
		DriverID:        driverID,
		Date:            day,
		TotalKm:         in.TotalKm,
		FuelCost:        in.FuelCost,
		OtherExpenses:   in.OtherExpenses,
		CashCollected:   in.CashCollected,
		OnlineCollected: in.OnlineCollected,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateAmounts(&entry); err != nil {
		return nil, err
	}
	entry.ComputeEarnings()

	var driver models.Driver
	err = s.drivers().FindOne(ctx, bson.M{"_id": driverID, "isDeleted": false}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("driver not found")
		}
		return nil, apperror.Storage("failed to look up driver", err)
	}

	billRef, err := s.bills.Save(ctx, file)
	if err != nil {
		return nil, err
	}
	entry.ExpenseBill = billRef

	result, err := s.logs().InsertOne(ctx, entry)
	if err != nil {
		s.removeBill(ctx, billRef)
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Duplicate("log entry already exists for this date")
		}
		return nil, apperror.Storage("failed to create log entry", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}

	return joinDriver(entry, driver), nil
}

// findOwned fetches a log and applies the ownership policy: a driver
// touching another driver's record gets ForbiddenError, uniformly
// across get/update/delete.
func (s *LogService) findOwned(ctx context.Context, caller Caller, logID string) (*models.DailyLog, error) {
	oid, err := primitive.ObjectIDFromHex(logID)
	if err != nil {
		return nil, apperror.Validation("invalid log id")
	}

	var entry models.DailyLog
	err = s.logs().FindOne(ctx, bson.M{"_id": oid}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("log not found")
		}
		return nil, apperror.Storage("failed to retrieve log", err)
	}

	if caller.Role != "admin" && entry.DriverID != caller.ID {
		return nil, apperror.Forbidden("access denied")
	}
	return &entry, nil
}

// Update merges the provided fields, recomputes earnings from the full
// merged set and saves. A replacement bill is written first; the old
// file is deleted only after the record is durably saved, and a failed
// save deletes the new file and leaves the old reference untouched.
func (s *LogService) Update(ctx context.Context, caller Caller, logID string, in UpdateLogInput, file *multipart.FileHeader) (*models.LogWithDriver, error) {
	entry, err := s.findOwned(ctx, caller, logID)
	if err != nil {
		return nil, err
	}

	if in.Date != nil {
		day, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		entry.Date = day
	}
	if in.TotalKm != nil {
		entry.TotalKm = *in.TotalKm
	}
	if in.FuelCost != nil {
		entry.FuelCost = *in.FuelCost
	}
	if in.OtherExpenses != nil {
		entry.OtherExpenses = *in.OtherExpenses
	}
	if in.CashCollected != nil {
		entry.CashCollected = *in.CashCollected
	}
	if in.OnlineCollected != nil {
		entry.OnlineCollected = *in.OnlineCollected
	}
	if err := validateAmounts(entry); err != nil {
		return nil, err
	}
	entry.ComputeEarnings()
	entry.UpdatedAt = time.Now().UTC()

	oldBill := entry.ExpenseBill
	newBill := ""
	if file != nil {
		newBill, err = s.bills.Save(ctx, file)
		if err != nil {
			return nil, err
		}
		entry.ExpenseBill = newBill
	}

	_, err = s.logs().ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry)
	if err != nil {
		s.removeBill(ctx, newBill)
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Duplicate("log entry already exists for this date")
		}
		return nil, apperror.Storage("failed to update log entry", err)
	}

	if newBill != "" && oldBill != newBill {
		// Record is committed; now the old file can go.
		s.removeBill(ctx, oldBill)
	}

	joined, err := s.attachDrivers(ctx, []models.DailyLog{*entry})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// Delete removes the record and its bill file. The file goes after the
// record so a failed delete never leaves a record without a file.
func (s *LogService) Delete(ctx context.Context, caller Caller, logID string) error {
	entry, err := s.findOwned(ctx, caller, logID)
	if err != nil {
		return err
	}

	if _, err := s.logs().DeleteOne(ctx, bson.M{"_id": entry.ID}); err != nil {
		return apperror.Storage("failed to delete log entry", err)
	}
	s.removeBill(ctx, entry.ExpenseBill)
	return nil
}

// GetByID returns a single record under the ownership policy.
func (s *LogService) GetByID(ctx context.Context, caller Caller, logID string) (*models.LogWithDriver, error) {
	entry, err := s.findOwned(ctx, caller, logID)
	if err != nil {
		return nil, err
	}
	joined, err := s.attachDrivers(ctx, []models.DailyLog{*entry})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// buildLogFilter translates caller scope and date bounds into the query
// document. Driver callers cannot escape their own scope by supplying a
// different driverId.
func buildLogFilter(caller Caller, f QueryFilter) (bson.M, error) {
	filter := bson.M{}

	if caller.Role != "admin" {
		filter["driverId"] = caller.ID
	} else if f.DriverID != "" {
		oid, err := primitive.ObjectIDFromHex(f.DriverID)
		if err != nil {
			return nil, apperror.Validation("invalid driverId")
		}
		filter["driverId"] = oid
	}

	dateRange := bson.M{}
	if f.StartDate != "" {
		start, err := parseDate(f.StartDate)
		if err != nil {
			return nil, err
		}
		dateRange["$gte"] = start
	}
	if f.EndDate != "" {
		end, err := parseDate(f.EndDate)
		if err != nil {
			return nil, err
		}
		dateRange["$lte"] = models.EndOfDay(end)
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	return filter, nil
}

// Query returns one page of matching logs, newest date first, plus the
// total match count.
func (s *LogService) Query(ctx context.Context, caller Caller, f QueryFilter, page, pageSize int) ([]models.LogWithDriver, int64, error) {
	filter, err := buildLogFilter(caller, f)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	skip := int64((page - 1) * pageSize)
	limit := int64(pageSize)

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.logs().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperror.Storage("failed to query logs", err)
	}
	defer cursor.Close(ctx)

	var entries []models.DailyLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, apperror.Storage("failed to decode logs", err)
	}

	total, err := s.logs().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Storage("failed to count logs", err)
	}

	joined, err := s.attachDrivers(ctx, entries)
	if err != nil {
		return nil, 0, err
	}
	return joined, total, nil
}

// QueryAll returns the full filtered set with no pagination, for
// exports and the per-driver monitoring view.
func (s *LogService) QueryAll(ctx context.Context, caller Caller, f QueryFilter) ([]models.LogWithDriver, error) {
	filter, err := buildLogFilter(caller, f)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.logs().Find(ctx, filter, opts)
	if err != nil {
		return nil, apperror.Storage("failed to query logs", err)
	}
	defer cursor.Close(ctx)

	var entries []models.DailyLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, apperror.Storage("failed to decode logs", err)
	}

	return s.attachDrivers(ctx, entries)
}

// attachDrivers joins the owning drivers' contact fields onto the logs
// with a single batched lookup.
func (s *LogService) attachDrivers(ctx context.Context, entries []models.DailyLog) ([]models.LogWithDriver, error) {
	joined := make([]models.LogWithDriver, 0, len(entries))
	if len(entries) == 0 {
		return joined, nil
	}

	idSet := map[primitive.ObjectID]struct{}{}
	for _, e := range entries {
		idSet[e.DriverID] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := s.drivers().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperror.Storage("failed to look up drivers", err)
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, apperror.Storage("failed to decode drivers", err)
	}
	byID := make(map[primitive.ObjectID]models.Driver, len(drivers))
	for _, d := range drivers {
		byID[d.ID] = d
	}

	for _, e := range entries {
		joined = append(joined, *joinDriver(e, byID[e.DriverID]))
	}
	return joined, nil
}

func joinDriver(entry models.DailyLog, driver models.Driver) *models.LogWithDriver {
	return &models.LogWithDriver{
		DailyLog:    entry,
		DriverName:  driver.Name,
		DriverEmail: driver.Email,
		DriverPhone: driver.Phone,
	}
}
