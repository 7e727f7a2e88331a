package account

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/httputil"
)

type Handler struct {
	dir *Directory
}

func NewHandler(dir *Directory) *Handler {
	return &Handler{dir: dir}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterInput
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	acct, token, err := h.dir.Register(c.Request().Context(), req)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": acct.Profile(), "token": token})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	acct, token, err := h.dir.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": acct.Profile(), "token": token})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c echo.Context) error {
	acct, ok := c.Get("account").(*Account)
	if !ok {
		return httputil.Error(c, apperr.New(apperr.CodeNotAuthenticated, "not authenticated"))
	}
	return c.JSON(http.StatusOK, acct.Profile())
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c echo.Context) error {
	token, _ := c.Get("token").(string)
	if err := h.dir.Logout(c.Request().Context(), token); err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// UpdateProfile handles PATCH /user/profile.
func (h *Handler) UpdateProfile(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req UpdateInput
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	acct, err := h.dir.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, acct.Profile())
}

// Verify handles POST /user/verify.
func (h *Handler) Verify(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	acct, err := h.dir.Verify(c.Request().Context(), uid)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification successful", "user": acct.Profile()})
}

// ChangePassword handles POST /user/password.
func (h *Handler) ChangePassword(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return httputil.Error(c, apperr.New(apperr.CodeValidation, "invalid request body"))
	}
	if err := h.dir.ChangePassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// PublicProfile handles GET /user/:id/profile.
func (h *Handler) PublicProfile(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	acct, err := h.dir.Get(c.Request().Context(), id)
	if err != nil {
		return httputil.Error(c, err)
	}
	return c.JSON(http.StatusOK, acct.PublicProfile())
}
