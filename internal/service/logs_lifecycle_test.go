package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"fleetlog-api-server/internal/apperror"

	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// fakeBillStore records the save/remove traffic so the compensation
// paths can be asserted without touching a filesystem.
type fakeBillStore struct {
	saved   []string
	removed []string
	n       int
}

func (f *fakeBillStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	f.n++
	ref := fmt.Sprintf("/uploads/expense-bills/new-%d.jpg", f.n)
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeBillStore) Remove(ctx context.Context, ref string) error {
	f.removed = append(f.removed, ref)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func driverDoc(id primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ravi Kumar"},
		{Key: "email", Value: "ravi@example.com"},
		{Key: "phone", Value: "9876543210"},
		{Key: "isDeleted", Value: false},
	}
}

func logDoc(id, driverID primitive.ObjectID, bill string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "driverId", Value: driverID},
		{Key: "date", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "totalKm", Value: 100.0},
		{Key: "fuelCost", Value: 300.0},
		{Key: "otherExpenses", Value: 50.0},
		{Key: "cashCollected", Value: 800.0},
		{Key: "onlineCollected", Value: 200.0},
		{Key: "totalEarnings", Value: 650.0},
		{Key: "expenseBill", Value: bill},
	}
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestCreateDuplicateRemovesUploadedFile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate create", func(mt *mtest.T) {
		driverID := primitive.NewObjectID()
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		ns := mt.DB.Name() + ".drivers"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, driverDoc(driverID)),
			duplicateKeyResponse(),
		)

		caller := Caller{ID: driverID, Role: "driver"}
		_, err := svc.Create(context.Background(), caller, CreateLogInput{
			Date: "2024-01-01", TotalKm: 100, FuelCost: 300,
			OtherExpenses: 50, CashCollected: 800, OnlineCollected: 200,
		}, nil)

		if !apperror.IsKind(err, apperror.KindDuplicate) {
			mt.Fatalf("expected DuplicateLogError, got %v", err)
		}
		if len(bills.saved) != 1 {
			mt.Fatalf("expected one saved bill, got %d", len(bills.saved))
		}
		if len(bills.removed) != 1 || bills.removed[0] != bills.saved[0] {
			mt.Fatalf("duplicate create must delete the just-saved bill, removed=%v", bills.removed)
		}
	})
}

func TestCreateValidationFailsBeforeAnyWrite(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("negative amount", func(mt *mtest.T) {
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		caller := Caller{ID: primitive.NewObjectID(), Role: "driver"}
		_, err := svc.Create(context.Background(), caller, CreateLogInput{
			Date: "2024-01-01", TotalKm: -1,
		}, nil)

		if !apperror.IsKind(err, apperror.KindValidation) {
			mt.Fatalf("expected validation error, got %v", err)
		}
		if len(bills.saved) != 0 {
			mt.Fatalf("validation failure must not store a bill, saved=%v", bills.saved)
		}
	})
}

func TestUpdateFailureKeepsOldFile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("failed save", func(mt *mtest.T) {
		driverID := primitive.NewObjectID()
		logID := primitive.NewObjectID()
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		logNS := mt.DB.Name() + ".daily_logs"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, logNS, mtest.FirstBatch, logDoc(logID, driverID, "/uploads/expense-bills/old.jpg")),
			duplicateKeyResponse(),
		)

		caller := Caller{ID: driverID, Role: "driver"}
		newDate := "2024-01-05"
		_, err := svc.Update(context.Background(), caller, logID.Hex(),
			UpdateLogInput{Date: &newDate}, &multipart.FileHeader{Filename: "new.jpg"})

		if !apperror.IsKind(err, apperror.KindDuplicate) {
			mt.Fatalf("expected DuplicateLogError, got %v", err)
		}
		if len(bills.removed) != 1 || bills.removed[0] != bills.saved[0] {
			mt.Fatalf("failed update must delete the new bill only, removed=%v", bills.removed)
		}
		for _, ref := range bills.removed {
			if ref == "/uploads/expense-bills/old.jpg" {
				mt.Fatal("failed update must leave the old bill untouched")
			}
		}
	})
}

func TestUpdateSuccessRemovesOldFileAfterCommit(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replace bill", func(mt *mtest.T) {
		driverID := primitive.NewObjectID()
		logID := primitive.NewObjectID()
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		logNS := mt.DB.Name() + ".daily_logs"
		driverNS := mt.DB.Name() + ".drivers"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, logNS, mtest.FirstBatch, logDoc(logID, driverID, "/uploads/expense-bills/old.jpg")),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, driverNS, mtest.FirstBatch, driverDoc(driverID)),
		)

		caller := Caller{ID: driverID, Role: "driver"}
		km := 150.0
		updated, err := svc.Update(context.Background(), caller, logID.Hex(),
			UpdateLogInput{TotalKm: &km}, &multipart.FileHeader{Filename: "new.jpg"})
		if err != nil {
			mt.Fatalf("Update failed: %v", err)
		}

		if updated.ExpenseBill != bills.saved[0] {
			mt.Fatalf("record must reference the new bill, got %q", updated.ExpenseBill)
		}
		if len(bills.removed) != 1 || bills.removed[0] != "/uploads/expense-bills/old.jpg" {
			mt.Fatalf("old bill must be removed after commit, removed=%v", bills.removed)
		}
		// Earnings recomputed from the merged full field set.
		if updated.TotalEarnings != 650 {
			mt.Fatalf("unexpected recomputed earnings: %v", updated.TotalEarnings)
		}
		if updated.TotalKm != 150 {
			mt.Fatalf("merged field lost: %v", updated.TotalKm)
		}
	})
}

func TestUpdateForbiddenForOtherDriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("cross-driver update", func(mt *mtest.T) {
		owner := primitive.NewObjectID()
		intruder := primitive.NewObjectID()
		logID := primitive.NewObjectID()
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		logNS := mt.DB.Name() + ".daily_logs"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, logNS, mtest.FirstBatch, logDoc(logID, owner, "/uploads/expense-bills/old.jpg")),
		)

		caller := Caller{ID: intruder, Role: "driver"}
		km := 1.0
		_, err := svc.Update(context.Background(), caller, logID.Hex(), UpdateLogInput{TotalKm: &km}, nil)

		if !apperror.IsKind(err, apperror.KindForbidden) {
			mt.Fatalf("expected ForbiddenError, got %v", err)
		}
		if len(bills.saved) != 0 || len(bills.removed) != 0 {
			mt.Fatal("denied update must not touch bill storage")
		}
	})
}

func TestDeleteRemovesRecordAndFile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delete", func(mt *mtest.T) {
		driverID := primitive.NewObjectID()
		logID := primitive.NewObjectID()
		bills := &fakeBillStore{}
		svc := NewLogService(mt.DB, bills, quietLogger())

		logNS := mt.DB.Name() + ".daily_logs"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, logNS, mtest.FirstBatch, logDoc(logID, driverID, "/uploads/expense-bills/old.jpg")),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		caller := Caller{ID: driverID, Role: "driver"}
		if err := svc.Delete(context.Background(), caller, logID.Hex()); err != nil {
			mt.Fatalf("Delete failed: %v", err)
		}
		if len(bills.removed) != 1 || bills.removed[0] != "/uploads/expense-bills/old.jpg" {
			mt.Fatalf("delete must remove the bill, removed=%v", bills.removed)
		}
	})
}

func TestGetByIDNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing log", func(mt *mtest.T) {
		svc := NewLogService(mt.DB, &fakeBillStore{}, quietLogger())

		logNS := mt.DB.Name() + ".daily_logs"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, logNS, mtest.FirstBatch))

		caller := Caller{ID: primitive.NewObjectID(), Role: "admin"}
		_, err := svc.GetByID(context.Background(), caller, primitive.NewObjectID().Hex())
		if !apperror.IsKind(err, apperror.KindNotFound) {
			mt.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}
