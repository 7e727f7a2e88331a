package payment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/httputil"
)

type Handler struct {
	bridge *Bridge
}

func NewHandler(bridge *Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// CreateOrder handles POST /wallet/deposit/orders.
func (h *Handler) CreateOrder(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	order, checkout, err := h.bridge.CreateOrder(c.Request().Context(), uid, req.Amount)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": order, "checkout": checkout})
}

// VerifyPayment handles POST /wallet/deposit/verify, the gateway callback
// relay. Settlement is idempotent: replaying a paid order returns the
// original transaction with an already_settled error envelope.
func (h *Handler) VerifyPayment(c echo.Context) error {
	var req struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
		Signature string `json:"signature"`
	}
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}

	t, err := h.bridge.VerifyAndSettle(c.Request().Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Code == apperr.CodeAlreadySettled {
			return c.JSON(http.StatusConflict, echo.Map{"error": ae, "transaction": t})
		}
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Payment verified successfully",
		"transaction": t,
	})
}

// Orders handles GET /wallet/deposit/orders.
func (h *Handler) Orders(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	orders, err := h.bridge.Orders(c.Request().Context(), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}
