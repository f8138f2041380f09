package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"stampcard/internal/delivery/http/middleware"
	"stampcard/internal/delivery/http/response"
)

// getUserID extracts the authenticated user ID from the context
func getUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	return userID, nil
}
