package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"stampcard/internal/delivery/http/response"
	"stampcard/internal/usecase"
)

// ScanHandlerParams holds dependencies for ScanHandler, injected by Fx.
type ScanHandlerParams struct {
	fx.In

	ScanUC usecase.ScanUsecase
	Logger *slog.Logger
}

// ScanHandler holds dependencies for QR scanning handlers
type ScanHandler struct {
	scanUC usecase.ScanUsecase
	logger *slog.Logger
}

// NewScanHandler is the constructor for ScanHandler
func NewScanHandler(params ScanHandlerParams) *ScanHandler {
	return &ScanHandler{
		scanUC: params.ScanUC,
		logger: params.Logger,
	}
}

// ProcessScanRequest represents the request body for the unified scan action
type ProcessScanRequest struct {
	Text     string `json:"text" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

// PayloadRequest represents a request carrying raw scanned QR text
type PayloadRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// CodeRequest represents a request carrying a manually entered short code
type CodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// GrantPayloadRequest represents a stamp grant against scanned QR text
type GrantPayloadRequest struct {
	Payload  string `json:"payload" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

// GrantCodeRequest represents a stamp grant against a short code
type GrantCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

// ProcessScan decodes scanned QR text and dispatches on the scanner/owner
// role pair
func (h *ScanHandler) ProcessScan(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req ProcessScanRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid scan input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.scanUC.ProcessAction(c.Request().Context(), usecase.ProcessScanInput{
		ScannerID: userID,
		RawText:   req.Text,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Scan processed successfully")
}

// Subscribe links the scanner and the QR owner as client and business
func (h *ScanHandler) Subscribe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req PayloadRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscribe input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.scanUC.SubscribeFromPayload(c.Request().Context(), userID, req.Payload)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Subscribed successfully")
}

// SubscribeByCode subscribes via a manually entered short code
func (h *ScanHandler) SubscribeByCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req CodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscribe input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.scanUC.SubscribeByCode(c.Request().Context(), userID, req.Code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Subscribed successfully")
}

// GrantStamps grants stamps to the client identified by scanned QR text
func (h *ScanHandler) GrantStamps(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req GrantPayloadRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid grant input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.scanUC.GrantFromPayload(c.Request().Context(), userID, req.Payload, req.Quantity)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Stamps granted successfully")
}

// GrantStampsByCode grants stamps to the client owning a short code
func (h *ScanHandler) GrantStampsByCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req GrantCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid grant input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.scanUC.GrantByCode(c.Request().Context(), userID, req.Code, req.Quantity)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Stamps granted successfully")
}
