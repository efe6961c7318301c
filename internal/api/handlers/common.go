// server/internal/api/handlers/common.go
package handlers

import (
	"fleetlog-api-server/internal/apperror"
	"fleetlog-api-server/internal/api/middleware"
	"fleetlog-api-server/internal/service"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// callerFrom rebuilds the authenticated principal placed into the
// context by the Authenticate middleware.
func callerFrom(c *gin.Context) service.Caller {
	return service.Caller{
		ID:   c.MustGet(middleware.ContextUserID).(primitive.ObjectID),
		Role: c.MustGet(middleware.ContextRole).(string),
	}
}

// respondError maps a service error onto the taxonomy's status code and
// JSON shape. The cause is logged, never serialized.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, apperror.Payload(err))
}
