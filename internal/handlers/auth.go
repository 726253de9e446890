package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/gearguard/gearguard/internal/apperr"
	"github.com/gearguard/gearguard/internal/auth"
	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		writeError(w, r, "login", apperr.Validationf("invalid JSON body"))
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		writeError(w, r, "login", apperr.Validationf("email and password are required"))
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if isNoDocuments(err) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		} else {
			writeError(w, r, "login", apperr.Internalf(err, "failed to load user"))
		}
		return
	}

	if !user.IsActive {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "account is deactivated"})
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeError(w, r, "login", apperr.Internalf(err, "failed to generate token"))
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		// Don't fail the login over a bookkeeping write.
		log.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// DemoLogin handles POST /api/auth/demo-login: logs in the seeded demo user
// for a role without a password.
func (h *AuthHandler) DemoLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, "demo_login", apperr.Validationf("invalid JSON body"))
		return
	}
	if !models.IsValidRole(body.Role) {
		writeError(w, r, "demo_login", apperr.Validationf("invalid role %q", body.Role))
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), "demo."+string(body.Role)+"@gearguard.com")
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "demo_login", apperr.NotFoundf("demo user not found, seed the database first"))
		} else {
			writeError(w, r, "demo_login", apperr.Internalf(err, "failed to load demo user"))
		}
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeError(w, r, "demo_login", apperr.Internalf(err, "failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		writeError(w, r, "register", apperr.Validationf("invalid JSON body"))
		return
	}

	if err := h.authService.ValidateName(registerReq.Name); err != nil {
		writeError(w, r, "register", apperr.Validationf("%s", err.Error()))
		return
	}
	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		writeError(w, r, "register", apperr.Validationf("%s", err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		writeError(w, r, "register", apperr.Validationf("%s", err.Error()))
		return
	}
	if registerReq.Role == "" {
		registerReq.Role = models.RoleEmployee
	}
	if !models.IsValidRole(registerReq.Role) {
		writeError(w, r, "register", apperr.Validationf("invalid role %q", registerReq.Role))
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "email already exists"})
		return
	} else if !isNoDocuments(err) {
		writeError(w, r, "register", apperr.Internalf(err, "failed to check existing email"))
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		writeError(w, r, "register", apperr.Internalf(err, "failed to create user"))
		return
	}

	user := models.User{
		Name:         registerReq.Name,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		TeamID:       registerReq.TeamID,
		Department:   registerReq.Department,
		Phone:        registerReq.Phone,
		IsActive:     true,
	}

	id, err := h.users.InsertUser(r.Context(), user)
	if err != nil {
		writeError(w, r, "register", apperr.Internalf(err, "failed to create user"))
		return
	}

	created, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "register", apperr.Internalf(err, "failed to load created user"))
		return
	}

	token, err := h.authService.GenerateToken(created)
	if err != nil {
		writeError(w, r, "register", apperr.Internalf(err, "failed to generate token"))
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: *created})
}

// Me handles GET /api/auth/me: the current user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, r, "me", err)
		return
	}

	user, err := h.users.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if isNoDocuments(err) {
			writeError(w, r, "me", apperr.NotFoundf("user not found"))
		} else {
			writeError(w, r, "me", apperr.Internalf(err, "failed to load user"))
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}
