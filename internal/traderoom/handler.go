package traderoom

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayaan09TTT/tradeforge/internal/account"
	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/httputil"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Create handles POST /rooms.
func (h *Handler) Create(c echo.Context) error {
	acct, ok := c.Get("account").(*account.Account)
	if !ok {
		return httputil.Error(c, apperr.New(apperr.CodeNotAuthenticated, "not authenticated"))
	}
	var req CreateInput
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	seller := Seller{ID: acct.ID, Name: acct.Name, Rating: acct.Rating}
	room, err := h.registry.Create(c.Request().Context(), seller, req)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /rooms with optional filters.
func (h *Handler) List(c echo.Context) error {
	f := Filters{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
		Sort:     c.QueryParam("sort"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = n
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = n
		}
	}
	rooms, err := h.registry.List(c.Request().Context(), f)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// Get handles GET /rooms/:id.
func (h *Handler) Get(c echo.Context) error {
	room, err := h.registry.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Update handles PATCH /rooms/:id.
func (h *Handler) Update(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req UpdateInput
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	room, err := h.registry.Update(c.Request().Context(), c.Param("id"), uid, req)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /rooms/:id.
func (h *Handler) Delete(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	if err := h.registry.Delete(c.Request().Context(), c.Param("id"), uid); err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Trade room deleted successfully"})
}

// PostMessage handles POST /rooms/:id/messages.
func (h *Handler) PostMessage(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	name, _ := c.Get("user_name").(string)
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	msg, err := h.registry.PostMessage(c.Request().Context(), c.Param("id"), uid, name, req.Content)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Purchase handles POST /rooms/:id/purchase.
func (h *Handler) Purchase(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	txn, err := h.registry.InitiatePurchase(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusCreated, txn)
}

// Deliver handles POST /rooms/:id/deliver.
func (h *Handler) Deliver(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	txn, err := h.registry.MarkDelivered(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

// Confirm handles POST /rooms/:id/confirm.
func (h *Handler) Confirm(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	txn, err := h.registry.ConfirmReceipt(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

// Dispute handles POST /rooms/:id/dispute.
func (h *Handler) Dispute(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	txn, err := h.registry.FileDispute(c.Request().Context(), c.Param("id"), uid, req.Reason)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, txn)
}

// Resolve handles POST /admin/rooms/:id/resolve.
func (h *Handler) Resolve(c echo.Context) error {
	var req struct {
		Resolution string `json:"resolution"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	room, err := h.registry.ResolveDispute(c.Request().Context(), c.Param("id"), req.Resolution)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, room)
}
