package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"stampcard/internal/delivery/http/response"
	"stampcard/internal/usecase"
)

// QRHandlerParams holds dependencies for QRHandler, injected by Fx.
type QRHandlerParams struct {
	fx.In

	QRUC   usecase.QRUsecase
	Logger *slog.Logger
}

// QRHandler holds dependencies for QR code handlers
type QRHandler struct {
	qrUC   usecase.QRUsecase
	logger *slog.Logger
}

// NewQRHandler is the constructor for QRHandler
func NewQRHandler(params QRHandlerParams) *QRHandler {
	return &QRHandler{
		qrUC:   params.QRUC,
		logger: params.Logger,
	}
}

// Generate issues a fresh QR code for the authenticated user, retiring the
// previous one
func (h *QRHandler) Generate(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	info, err := h.qrUC.Generate(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, info, "QR code generated successfully")
}

// GetOwn returns the authenticated user's current QR code, generating one on
// first access
func (h *QRHandler) GetOwn(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	info, err := h.qrUC.GetOwn(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, info, "QR code retrieved successfully")
}

// GetOwnImage renders the authenticated user's QR payload as a PNG image
func (h *QRHandler) GetOwnImage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	png, err := h.qrUC.RenderOwnPNG(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// ResolveCode looks up the public identity behind a short code
func (h *QRHandler) ResolveCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_CODE", "Code is required")
	}

	identity, err := h.qrUC.ResolveCode(c.Request().Context(), code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, identity, "Code resolved successfully")
}
