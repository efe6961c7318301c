// server/internal/api/handlers/driver_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"fleetlog-api-server/internal/auth"
	"fleetlog-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DriverHandler struct {
	DB *mongo.Database
}

type CreateDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	LicenseNumber string `json:"licenseNumber" binding:"required"`
	Password      string `json:"password" binding:"required,min=6"`
}

type UpdateDriverRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"licenseNumber"`
	IsActive      *bool   `json:"isActive"`
}

func (h *DriverHandler) drivers() *mongo.Collection { return h.DB.Collection("drivers") }

// GetAllDrivers lists non-deleted accounts with optional search and
// sorting.
func (h *DriverHandler) GetAllDrivers(c *gin.Context) {
	query := bson.M{"isDeleted": false}

	if search := c.Query("search"); search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
			bson.M{"licenseNumber": pattern},
		}
	}

	sortBy := c.DefaultQuery("sortBy", "createdAt")
	sortOrder := -1
	if c.DefaultQuery("sortOrder", "desc") == "asc" {
		sortOrder = 1
	}

	cursor, err := h.drivers().Find(context.Background(), query,
		options.Find().SetSort(bson.D{{Key: sortBy, Value: sortOrder}}))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to query drivers"}})
		return
	}
	defer cursor.Close(context.Background())

	var drivers []models.Driver
	if err = cursor.All(context.Background(), &drivers); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to decode drivers"}})
		return
	}

	if drivers == nil {
		drivers = []models.Driver{}
	}

	c.JSON(http.StatusOK, drivers)
}

// GetDriverByID returns one profile. A driver may only read its own.
func (h *DriverHandler) GetDriverByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Invalid driver id"}})
		return
	}

	caller := callerFrom(c)
	if caller.Role == auth.RoleDriver && caller.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"kind": "FORBIDDEN", "message": "Access denied"}})
		return
	}

	var driver models.Driver
	err = h.drivers().FindOne(context.Background(), bson.M{"_id": id, "isDeleted": false}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "NOT_FOUND", "message": "Driver not found"}})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to retrieve driver"}})
		}
		return
	}

	c.JSON(http.StatusOK, driver)
}

// identifierTaken checks email/phone/license collisions among
// non-deleted accounts, optionally excluding one account.
func (h *DriverHandler) identifierTaken(ctx context.Context, exclude *primitive.ObjectID, email, phone, license *string) (bool, error) {
	var or bson.A
	if email != nil {
		or = append(or, bson.M{"email": *email})
	}
	if phone != nil {
		or = append(or, bson.M{"phone": *phone})
	}
	if license != nil {
		or = append(or, bson.M{"licenseNumber": *license})
	}
	if len(or) == 0 {
		return false, nil
	}

	query := bson.M{"isDeleted": false, "$or": or}
	if exclude != nil {
		query["_id"] = bson.M{"$ne": *exclude}
	}

	count, err := h.drivers().CountDocuments(ctx, query)
	return count > 0, err
}

// CreateDriver adds a new account with a hashed password.
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	taken, err := h.identifierTaken(context.Background(), nil, &req.Email, &req.Phone, &req.LicenseNumber)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to check for existing driver"}})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Driver with this email, phone number, or license number already exists"}})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to hash password"}})
		return
	}

	driver := models.Driver{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Password:      hashedPassword,
		IsActive:      true,
		IsDeleted:     false,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	result, err := h.drivers().InsertOne(context.Background(), driver)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Driver with this email, phone number, or license number already exists"}})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to create driver"}})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		driver.ID = oid
	}

	c.JSON(http.StatusCreated, driver)
}

// UpdateDriver applies a partial profile update. Passwords are not
// updatable here.
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Invalid driver id"}})
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	taken, err := h.identifierTaken(context.Background(), &id, req.Email, req.Phone, req.LicenseNumber)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to check for existing driver"}})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Driver with this email, phone number, or license number already exists"}})
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.LicenseNumber != nil {
		update["licenseNumber"] = *req.LicenseNumber
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}

	var driver models.Driver
	err = h.drivers().FindOneAndUpdate(
		context.Background(),
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "NOT_FOUND", "message": "Driver not found"}})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to update driver"}})
		}
		return
	}

	c.JSON(http.StatusOK, driver)
}

// DeleteDriver soft-deletes: the account is excluded from queries and
// its identifiers become reusable, but the record stays.
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Invalid driver id"}})
		return
	}

	var driver models.Driver
	err = h.drivers().FindOneAndUpdate(
		context.Background(),
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "isActive": false, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "NOT_FOUND", "message": "Driver not found"}})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"kind": "STORAGE", "message": "Failed to delete driver"}})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully", "driver": driver})
}
