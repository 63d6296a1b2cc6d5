package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/ayah-auth/internal/httputil"
	"github.com/tendant/ayah-auth/pkg/auth"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// Handler handles signup, login and password recovery endpoints.
type Handler struct {
	logger   *slog.Logger
	accounts *auth.AccountService
}

// NewHandler creates a new account handler.
func NewHandler(logger *slog.Logger, accounts *auth.AccountService) *Handler {
	return &Handler{logger: logger, accounts: accounts}
}

// SignupRequest represents a signup request.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts password recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest exchanges a mailed code for a reset token.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest sets a new password with a reset token.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
	ResetToken  string `json:"resetToken"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// ForgotPasswordResponse confirms that a code was sent.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// VerifyOTPResponse carries the reset token.
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.DisplayName(), Email: u.Email}
}

// Signup handles account registration.
// POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("user signed up", "user_id", res.User.ID)
	httputil.JSON(w, http.StatusCreated, AuthResponse{
		Message: "Signup successful",
		User:    newUserResponse(res.User),
		Token:   res.Token,
	})
}

// Login handles email and password login.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    newUserResponse(res.User),
		Token:   res.Token,
	})
}

// ForgotPassword mails a one-time code to the account.
// POST /auth/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ForgotPasswordResponse{
		Message: "OTP sent to your email",
		Email:   auth.NormalizeEmail(req.Email),
	})
}

// VerifyOTP exchanges a valid code for a reset token.
// POST /auth/verify-otp
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	token, err := h.accounts.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, VerifyOTPResponse{
		Message:    "OTP verified",
		ResetToken: token,
	})
}

// ResetPassword sets a new password. The caller must log in afterwards.
// POST /auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ResetToken); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, httputil.MessageResponse{Message: "Password reset successful"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httputil.Error(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrEmailInUse):
		httputil.Error(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, domain.ErrUserNotFound):
		httputil.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		httputil.Error(w, http.StatusBadRequest, "Incorrect password")
	case errors.Is(err, domain.ErrAccountLocked):
		httputil.Error(w, http.StatusLocked, "Account temporarily locked due to too many failed login attempts")
	case errors.Is(err, domain.ErrInvalidOrExpiredOTP):
		httputil.Error(w, http.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(err, domain.ErrInvalidOrExpiredResetToken):
		httputil.Error(w, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, domain.ErrTooManyAttempts):
		httputil.Error(w, http.StatusTooManyRequests, "Too many attempts, please try again later")
	case errors.Is(err, domain.ErrNotifierUnavailable):
		httputil.Error(w, http.StatusServiceUnavailable, "Email service not configured")
	default:
		h.logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		httputil.Error(w, http.StatusInternalServerError, "Server error")
	}
}
