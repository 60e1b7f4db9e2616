package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Opts struct {
	Logger       *zap.Logger
	CookieName   string
	CookiePath   string
	CookieSecure bool
	RefreshTTL   time.Duration
}

type Controller struct {
	log          *zap.Logger
	uc           *Usecase
	cookieName   string
	cookiePath   string
	cookieSecure bool
	refreshTTL   time.Duration
}

func NewController(uc *Usecase, o Opts) *Controller {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if o.CookieName == "" {
		o.CookieName = "refreshToken"
	}
	if o.CookiePath == "" {
		o.CookiePath = "/"
	}
	return &Controller{
		log:          log,
		uc:           uc,
		cookieName:   o.CookieName,
		cookiePath:   o.CookiePath,
		cookieSecure: o.CookieSecure,
		refreshTTL:   o.RefreshTTL,
	}
}

func (c *Controller) CookieName() string { return c.cookieName }

func (c *Controller) Routes(r chi.Router) {
	r.Post("/sign-up", c.SignUp)
	r.Post("/login", c.Login)
	r.Post("/refresh", c.Refresh)
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *Controller) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSignUp(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c.log.Info("auth.sign-up", zap.String("username", req.Username))

	a, err := c.uc.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c.log.Info("auth.login", zap.String("subject", req.UsernameOrEmail))

	_, access, refresh, err := c.uc.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		c.mapErr(w, err)
		return
	}

	c.setRefreshCookie(w, refresh)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: access, Message: "Login successful"})
}

// Refresh exchanges the refresh cookie for a new access token without
// re-sending credentials.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		unauthorized(w, "invalid credentials")
		return
	}

	access, err := c.uc.RefreshAccess(r.Context(), cookie.Value)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

func validateSignUp(req signUpRequest) string {
	if len(req.Username) < 2 {
		return "username must be at least 2 characters long"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "invalid email address"
	}
	if len(req.Password) < 6 {
		return "password must be at least 6 characters long"
	}
	return ""
}

func (c *Controller) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    raw,
		Path:     c.cookiePath,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(c.refreshTTL.Seconds()),
	})
}

func (c *Controller) mapErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		unauthorized(w, err.Error())
	case errors.Is(err, ErrAccountExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		c.log.Error("auth: internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}
