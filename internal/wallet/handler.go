package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/httputil"
)

type Handler struct {
	ledger      *Ledger
	withdrawMin int64
}

func NewHandler(ledger *Ledger, withdrawMin int64) *Handler {
	return &Handler{ledger: ledger, withdrawMin: withdrawMin}
}

// Balance handles GET /wallet/balance.
func (h *Handler) Balance(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	w, err := h.ledger.Account(c.Request().Context(), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": uid,
		"balance": w.Balance,
		"escrow":  w.Escrow,
	})
}

// Transactions handles GET /wallet/transactions.
func (h *Handler) Transactions(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	history, err := h.ledger.History(c.Request().Context(), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": history})
}

// Withdraw handles POST /wallet/withdraw.
func (h *Handler) Withdraw(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req struct {
		Amount        int64  `json:"amount"`
		UPIID         string `json:"upi_id"`
		AccountHolder string `json:"account_holder"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	if req.Amount < h.withdrawMin {
		return httputil.Error(c, apperr.Newf(apperr.CodeValidation,
			"minimum withdrawal is %d coins", h.withdrawMin).WithDetail("amount", "below minimum"))
	}
	if req.UPIID == "" || req.AccountHolder == "" {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "payout details are required").
			WithDetail("upi_id", "required").WithDetail("account_holder", "required"))
	}

	t, err := h.ledger.Withdraw(c.Request().Context(), uid, req.Amount,
		Payout{UPIID: req.UPIID, AccountHolder: req.AccountHolder})
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Withdrawal request submitted successfully",
		"transaction": t,
	})
}

// Transfer handles POST /wallet/transfer.
func (h *Handler) Transfer(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req struct {
		ToUserID    string `json:"to_user_id"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil || req.ToUserID == "" {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	t, err := h.ledger.Transfer(c.Request().Context(), uid, req.ToUserID, req.Amount, req.Description)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Transfer completed successfully",
		"transaction": t,
	})
}
