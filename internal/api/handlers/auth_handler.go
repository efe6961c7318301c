// server/internal/api/handlers/auth_handler.go
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
)

type AuthHandler struct {
	DB  *mongo.Database
	JWT *auth.Manager
}

type AdminRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type DriverLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) tokenResponse(c *gin.Context, status int, token string, user gin.H) {
	c.JSON(status, gin.H{"token": token, "user": user})
}

// AdminRegister is the one-time bootstrap: it refuses once any admin
// account exists.
func (h *AuthHandler) AdminRegister(c *gin.Context) {
	var req AdminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	collection := h.DB.Collection("admins")

	count, err := collection.CountDocuments(context.Background(), bson.M{})
	if err != nil {
		respondError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Admin already exists"}})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	admin := models.Admin{
		Email:     req.Email,
		Name:      req.Name,
		Password:  hashedPassword,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	result, err := collection.InsertOne(context.Background(), admin)
	if err != nil {
		respondError(c, err)
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		admin.ID = oid
	}

	token, err := h.JWT.Generate(admin.ID.Hex(), auth.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusCreated, token, gin.H{
		"id":    admin.ID,
		"email": admin.Email,
		"name":  admin.Name,
		"role":  auth.RoleAdmin,
	})
}

// AdminLogin exchanges email+password for a bearer token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	var admin models.Admin
	err := h.DB.Collection("admins").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&admin)
	if err != nil || !auth.CheckPasswordHash(req.Password, admin.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "AUTH", "message": "Invalid credentials"}})
		return
	}

	token, err := h.JWT.Generate(admin.ID.Hex(), auth.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusOK, token, gin.H{
		"id":    admin.ID,
		"email": admin.Email,
		"name":  admin.Name,
		"role":  auth.RoleAdmin,
	})
}

// DriverLogin authenticates by phone number. Soft-deleted and
// deactivated accounts cannot log in.
func (h *AuthHandler) DriverLogin(c *gin.Context) {
	var req DriverLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	var driver models.Driver
	err := h.DB.Collection("drivers").FindOne(context.Background(), bson.M{
		"phone":     req.Phone,
		"isDeleted": false,
		"isActive":  true,
	}).Decode(&driver)
	if err != nil || !auth.CheckPasswordHash(req.Password, driver.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "AUTH", "message": "Invalid credentials or account disabled"}})
		return
	}

	token, err := h.JWT.Generate(driver.ID.Hex(), auth.RoleDriver)
	if err != nil {
		respondError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusOK, token, gin.H{
		"id":    driver.ID,
		"email": driver.Email,
		"name":  driver.Name,
		"phone": driver.Phone,
		"role":  auth.RoleDriver,
	})
}
