package handler

import (
	"context"  // context with cancellation for service calls
	"errors"   // errors.Is for mapping auth error kinds
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for service calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/identity-service/internal/auth"       // auth core
	"github.com/iliyamo/identity-service/internal/middleware" // context keys
	"github.com/iliyamo/identity-service/internal/model"      // identity row
)

// AuthHandler is the thin HTTP adapter over the auth core. Every security
// decision lives in the auth package; this layer only binds JSON, applies
// request timeouts and maps error kinds onto status codes.
type AuthHandler struct {
	Svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler { return &AuthHandler{Svc: svc} }

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"` // email address or username
	Password string `json:"password"`
}
type refreshReq struct {
	Refresh string `json:"refresh"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}
type pairResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(ident model.Identity) userPart {
	return userPart{
		ID:        ident.ID,
		Email:     ident.Email,
		Username:  ident.Username.String,
		FirstName: ident.FirstName.String,
		LastName:  ident.LastName.String,
		Role:      ident.Role,
	}
}

func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Login: exchange credentials for an access/refresh pair. The identifier
// may be an email or a username. Failures never reveal whether the
// account exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	pair, ident, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": auth.ValidationMessage(err)})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "No active account."})
	}

	return c.JSON(http.StatusOK, pairResp{
		User:    toUserPart(ident),
		Access:  tokenPart{Token: pair.Access, Expires: pair.AccessExp},
		Refresh: tokenPart{Token: pair.Refresh, Expires: pair.RefreshExp},
	})
}

// Refresh: rotate a refresh token into a new pair. A token that fails
// verification or no longer matches the persisted value is not
// acceptable; an unusable account is unauthorized.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "refresh required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	pair, ident, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrNoActiveAccount) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "No active account."})
		}
		return c.JSON(http.StatusNotAcceptable, echo.Map{"detail": "Token is invalid or expired."})
	}

	return c.JSON(http.StatusOK, pairResp{
		User:    toUserPart(ident),
		Access:  tokenPart{Token: pair.Access, Expires: pair.AccessExp},
		Refresh: tokenPart{Token: pair.Refresh, Expires: pair.RefreshExp},
	})
}

// ForgotPassword: start the recovery flow for an email address.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": auth.ValidationMessage(err)})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Password reset email sent."})
}

// ResetPassword: redeem a reset token. Every failure collapses into one
// generic message; the distinct causes are only logged server-side.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": auth.ValidationMessage(err)})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Password reset Successfully."})
}

// ChangePassword: replace the password of the authenticated identity
// (protected route; BearerAuth has already resolved the caller).
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	uid, _ := c.Get(middleware.UserIDKey).(string)

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, uid, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": auth.ValidationMessage(err)})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Unauthorized User."})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: return the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := c.Get(middleware.IdentityKey).(model.Identity)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Unauthorized User."})
	}
	return c.JSON(http.StatusOK, toUserPart(ident))
}
