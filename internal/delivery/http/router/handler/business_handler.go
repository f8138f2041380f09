package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"stampcard/internal/delivery/http/response"
	"stampcard/internal/usecase"
)

// BusinessHandlerParams holds dependencies for BusinessHandler, injected by Fx.
type BusinessHandlerParams struct {
	fx.In

	RewardUC       usecase.RewardUsecase
	StampUC        usecase.StampUsecase
	SubscriptionUC usecase.SubscriptionUsecase
	Logger         *slog.Logger
}

// BusinessHandler holds dependencies for business-facing loyalty handlers
type BusinessHandler struct {
	rewardUC       usecase.RewardUsecase
	stampUC        usecase.StampUsecase
	subscriptionUC usecase.SubscriptionUsecase
	logger         *slog.Logger
}

// NewBusinessHandler is the constructor for BusinessHandler
func NewBusinessHandler(params BusinessHandlerParams) *BusinessHandler {
	return &BusinessHandler{
		rewardUC:       params.RewardUC,
		stampUC:        params.StampUC,
		subscriptionUC: params.SubscriptionUC,
		logger:         params.Logger,
	}
}

// CreateRewardRequest represents the request body for creating a reward
type CreateRewardRequest struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
	RequiredStamps int    `json:"required_stamps" validate:"required,min=1"`
	ValidUntil     string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateRewardRequest represents the request body for patching a reward.
// Absent fields are left untouched.
type UpdateRewardRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	RequiredStamps *int    `json:"required_stamps" validate:"omitempty,min=1"`
	ValidUntil     *string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
}

// CreateReward creates a reward owned by the authenticated business
func (h *BusinessHandler) CreateReward(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req CreateRewardRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reward input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	reward, err := h.rewardUC.CreateReward(c.Request().Context(), userID, usecase.CreateRewardInput{
		Name:           req.Name,
		Description:    req.Description,
		RequiredStamps: req.RequiredStamps,
		ValidUntil:     req.ValidUntil,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, reward, "Reward created successfully")
}

// UpdateReward patches a reward owned by the authenticated business
func (h *BusinessHandler) UpdateReward(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid reward ID")
	}

	var req UpdateRewardRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reward input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	reward, err := h.rewardUC.UpdateReward(c.Request().Context(), userID, rewardID, usecase.UpdateRewardInput{
		Name:           req.Name,
		Description:    req.Description,
		RequiredStamps: req.RequiredStamps,
		ValidUntil:     req.ValidUntil,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, reward, "Reward updated successfully")
}

// DeleteReward removes a reward owned by the authenticated business
func (h *BusinessHandler) DeleteReward(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid reward ID")
	}

	if err := h.rewardUC.DeleteReward(c.Request().Context(), userID, rewardID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Reward deleted successfully"}, "Reward deleted successfully")
}

// ListRewards returns the rewards owned by the authenticated business
func (h *BusinessHandler) ListRewards(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	rewards, err := h.rewardUC.ListRewards(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, rewards, "Rewards retrieved successfully")
}

// StampHistory returns the business's recent grants, newest first
func (h *BusinessHandler) StampHistory(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return response.BadRequest(c, "INVALID_LIMIT", "Limit must be a positive integer")
		}
		limit = parsed
	}

	history, err := h.stampUC.BusinessHistory(c.Request().Context(), userID, limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, history, "Stamp history retrieved successfully")
}

// ListSubscribers returns the clients subscribed to the authenticated
// business
func (h *BusinessHandler) ListSubscribers(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	list, err := h.subscriptionUC.ListSubscribers(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, list, "Subscribers retrieved successfully")
}

// ListRedemptions returns redemptions recorded against the authenticated
// business, newest first
func (h *BusinessHandler) ListRedemptions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	redemptions, err := h.rewardUC.ListRedemptions(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, redemptions, "Redemptions retrieved successfully")
}
