package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"stampcard/internal/delivery/http/response"
	"stampcard/internal/usecase"
)

// ClientHandlerParams holds dependencies for ClientHandler, injected by Fx.
type ClientHandlerParams struct {
	fx.In

	RewardUC       usecase.RewardUsecase
	StampUC        usecase.StampUsecase
	SubscriptionUC usecase.SubscriptionUsecase
	Logger         *slog.Logger
}

// ClientHandler holds dependencies for client-facing loyalty handlers
type ClientHandler struct {
	rewardUC       usecase.RewardUsecase
	stampUC        usecase.StampUsecase
	subscriptionUC usecase.SubscriptionUsecase
	logger         *slog.Logger
}

// NewClientHandler is the constructor for ClientHandler
func NewClientHandler(params ClientHandlerParams) *ClientHandler {
	return &ClientHandler{
		rewardUC:       params.RewardUC,
		stampUC:        params.StampUC,
		subscriptionUC: params.SubscriptionUC,
		logger:         params.Logger,
	}
}

// RedeemRequest represents the request body for redeeming a reward
type RedeemRequest struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
	RewardID   string `json:"reward_id" validate:"required,uuid"`
}

// GetCard returns one card per subscribed business with stamp balances and
// per-reward progress
func (h *ClientHandler) GetCard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	card, err := h.rewardUC.AggregatedForClient(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, card, "Loyalty card retrieved successfully")
}

// Redeem spends stamps on a reward
func (h *ClientHandler) Redeem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req RedeemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redeem input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid business ID")
	}

	rewardID, err := uuid.Parse(req.RewardID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid reward ID")
	}

	card, err := h.rewardUC.Redeem(c.Request().Context(), userID, businessID, rewardID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, card, "Reward redeemed successfully")
}

// GetStamps returns the client's stamp balances grouped by business
func (h *ClientHandler) GetStamps(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	stamps, err := h.stampUC.ClientStamps(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, stamps, "Stamps retrieved successfully")
}

// ListSubscriptions returns the authenticated user's subscriptions from
// their side of the relation
func (h *ClientHandler) ListSubscriptions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	list, err := h.subscriptionUC.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, list, "Subscriptions retrieved successfully")
}
