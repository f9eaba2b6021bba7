package mockapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/deskhub/errors"
	"github.com/kbukum/deskhub/role"
	"github.com/kbukum/deskhub/server"
	"github.com/kbukum/deskhub/validation"
)

const accountContextKey = "mockapi.account"

// AccessCookie is the name of the access token cookie of r.
func AccessCookie(r role.Role) string { return r.String() + "_access" }

// RefreshCookie is the name of the refresh token cookie of r.
func RefreshCookie(r role.Role) string { return r.String() + "_refresh" }

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type blockRequest struct {
	Role  string `json:"role" validate:"required,role"`
	Email string `json:"email" validate:"required,email"`
}

func (a *API) fail(c *gin.Context, err error) {
	server.RespondWithError(c, err, a.cfg.EmitCodes)
}

func (a *API) setTokenCookies(c *gin.Context, r role.Role, pair TokenPair) {
	// Both cookies live as long as the refresh token so an expired access
	// token still reaches the server and is answered with "Token Expired".
	expires := expiry(pair.RefreshClaims)
	for name, value := range map[string]string{
		AccessCookie(r):  pair.Access,
		RefreshCookie(r): pair.Refresh,
	} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearTokenCookies(c *gin.Context, r role.Role) {
	for _, name := range []string{AccessCookie(r), RefreshCookie(r)} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.InvalidInput("body", "malformed JSON").WithCause(err)
	}
	return validation.Validate(dst)
}

func (a *API) login(r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			a.fail(c, err)
			return
		}

		key := r.String() + ":" + req.Email + ":" + c.ClientIP()
		if !a.limiter.Allow(key) {
			a.fail(c, apperrors.New(apperrors.ErrCodeRateLimited,
				"Too many login attempts. Please try again later.", http.StatusTooManyRequests))
			return
		}

		acct, err := a.accounts.Authenticate(r, req.Email, req.Password)
		if err != nil {
			a.log.Info("Login rejected", map[string]interface{}{
				"role": r.String(), "email": req.Email, "error": err.Error(),
			})
			a.fail(c, err)
			return
		}
		a.limiter.Reset(key)

		pair, err := a.tokens.issue(acct)
		if err != nil {
			a.fail(c, apperrors.Internal(err))
			return
		}
		a.setTokenCookies(c, r, pair)
		c.JSON(http.StatusOK, server.DataResponse{Success: true, Message: "Login successful", Data: acct})
	}
}

func (a *API) refresh(r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(RefreshCookie(r))
		if err != nil || token == "" {
			a.fail(c, apperrors.Unauthorized())
			return
		}
		claims, appErr := a.tokens.parse(token, r, KindRefresh)
		if appErr != nil {
			a.fail(c, appErr)
			return
		}
		acct, appErr := a.checkSession(c, r, claims)
		if appErr != nil {
			a.fail(c, appErr)
			return
		}

		pair, err := a.tokens.issue(acct)
		if err != nil {
			a.fail(c, apperrors.Internal(err))
			return
		}
		// Refresh tokens are single use.
		if err := a.blacklist.Add(c.Request.Context(), claims.ID, expiry(claims)); err != nil {
			a.fail(c, apperrors.Internal(err))
			return
		}
		a.setTokenCookies(c, r, pair)
		a.log.Debug("Tokens refreshed", map[string]interface{}{"role": r.String(), "account": acct.ID})
		server.RespondMessage(c, "Token refreshed")
	}
}

func (a *API) logout(r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		for kind, name := range map[string]string{KindAccess: AccessCookie(r), KindRefresh: RefreshCookie(r)} {
			token, err := c.Cookie(name)
			if err != nil || token == "" {
				continue
			}
			claims, appErr := a.tokens.parse(token, r, kind)
			if appErr != nil {
				continue
			}
			if err := a.blacklist.Add(c.Request.Context(), claims.ID, expiry(claims)); err != nil {
				a.fail(c, apperrors.Internal(err))
				return
			}
		}
		clearTokenCookies(c, r)
		server.RespondMessage(c, "Logged out")
	}
}

// checkSession applies the revocation and account checks shared by access
// and refresh tokens.
func (a *API) checkSession(c *gin.Context, r role.Role, claims *Claims) (Account, *apperrors.AppError) {
	revoked, err := a.blacklist.Contains(c.Request.Context(), claims.ID)
	if err != nil {
		return Account{}, apperrors.Internal(err)
	}
	if revoked {
		return Account{}, apperrors.TokenBlacklisted()
	}
	acct, ok := a.accounts.Lookup(r, claims.Email)
	if !ok || acct.ID != claims.Subject {
		return Account{}, apperrors.InvalidToken()
	}
	if acct.Blocked {
		return Account{}, apperrors.AccountBlocked()
	}
	return acct, nil
}

func (a *API) requireAccess(r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessCookie(r))
		if err != nil || token == "" {
			a.fail(c, apperrors.Unauthorized())
			return
		}
		claims, appErr := a.tokens.parse(token, r, KindAccess)
		if appErr != nil {
			a.fail(c, appErr)
			return
		}
		acct, appErr := a.checkSession(c, r, claims)
		if appErr != nil {
			a.fail(c, appErr)
			return
		}
		c.Set(accountContextKey, acct)
		c.Next()
	}
}

func currentAccount(c *gin.Context) Account {
	acct, _ := c.Get(accountContextKey)
	return acct.(Account)
}

func (a *API) profile(c *gin.Context) {
	server.RespondOK(c, currentAccount(c))
}

func (a *API) listBookings(c *gin.Context) {
	acct := currentAccount(c)
	server.RespondOK(c, a.bookingsFor(acct.ID, c.QueryArray("status")))
}

func (a *API) setBlocked(blocked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req blockRequest
		if err := bindJSON(c, &req); err != nil {
			a.fail(c, err)
			return
		}
		r, _ := role.Parse(req.Role)
		if err := a.accounts.SetBlocked(r, req.Email, blocked); err != nil {
			a.fail(c, err)
			return
		}
		a.log.Info("Account block state changed", map[string]interface{}{
			"role":    r.String(),
			"email":   req.Email,
			"blocked": blocked,
			"by":      currentAccount(c).Email,
		})
		if blocked {
			server.RespondMessage(c, "Account blocked")
			return
		}
		server.RespondMessage(c, "Account unblocked")
	}
}
