package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
	"github.com/microgestion/gestion-api/services"
	"github.com/microgestion/gestion-api/utils"
)

type AuthHandler struct {
	DB    *sql.DB
	Email *services.EmailService
}

const cookieMaxAge = 24 * 60 * 60 // aligné sur la durée du token d'accès

func setAuthCookie(c *gin.Context, token string) {
	secure := os.Getenv("GIN_MODE") == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, cookieMaxAge, "/", "", secure, true)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var exists bool
	err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var userID string
	err = h.DB.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, req.Email, passwordHash, req.Name).Scan(&userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	if verifyToken, err := utils.GenerateVerificationToken(); err == nil {
		_, err = h.DB.Exec(`
			INSERT INTO email_verifications (user_id, token, expires_at)
			VALUES ($1, $2, $3)
		`, userID, verifyToken, time.Now().Add(48*time.Hour))
		if err == nil {
			go func() {
				if err := h.Email.SendVerification(req.Email, req.Name, verifyToken); err != nil {
					log.Printf("⚠️ Failed to send verification email: %v", err)
				}
			}()
		}
	}

	accessToken, err := utils.GenerateAccessToken(userID, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	_, err = h.DB.Exec(`
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, refreshToken, time.Now().Add(7*24*time.Hour))

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	utils.LogAuthAction("signup", req.Email, true)
	setAuthCookie(c, accessToken)

	user := models.User{
		ID:            userID,
		Email:         req.Email,
		Name:          req.Name,
		TOTPEnabled:   false,
		EmailVerified: false,
		CreatedAt:     time.Now(),
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	var passwordHash string
	var totpSecret sql.NullString

	err := h.DB.QueryRow(`
		SELECT id, email, password_hash, name, totp_secret, totp_enabled, email_verified, created_at, updated_at
		FROM users
		WHERE email = $1
	`, req.Email).Scan(&user.ID, &user.Email, &passwordHash, &user.Name, &totpSecret, &user.TOTPEnabled, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		utils.LogAuthAction("login", req.Email, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !utils.CheckPassword(req.Password, passwordHash) {
		utils.LogAuthAction("login", req.Email, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires_2fa": true})
			return
		}

		if totpSecret.Valid {
			secret := totpSecret.String
			// Les secrets sont chiffrés au repos ; les lignes antérieures au
			// chiffrement restent en clair.
			if decrypted, err := utils.Decrypt(secret); err == nil {
				secret = string(decrypted)
			}
			valid, err := utils.VerifyTOTP(secret, req.TOTPCode)
			if err != nil || !valid {
				utils.LogAuthAction("login_2fa", req.Email, false)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
				return
			}
		}
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	_, err = h.DB.Exec(`
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
	`, user.ID, refreshToken, time.Now().Add(7*24*time.Hour))

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	utils.LogAuthAction("login", req.Email, true)
	setAuthCookie(c, accessToken)

	c.JSON(http.StatusOK, models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie("refresh_token"); err == nil && refreshToken != "" {
		_, _ = h.DB.Exec("DELETE FROM sessions WHERE refresh_token = $1", refreshToken)
	}

	secure := os.Getenv("GIN_MODE") == "release"
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID, email string
	var expiresAt time.Time
	err := h.DB.QueryRow(`
		SELECT s.user_id, s.expires_at, u.email
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.refresh_token = $1
	`, req.RefreshToken).Scan(&userID, &expiresAt, &email)

	if err == sql.ErrNoRows || (err == nil && time.Now().After(expiresAt)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(userID, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	setAuthCookie(c, accessToken)
	c.JSON(http.StatusOK, gin.H{"token": accessToken})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}

	var userID string
	var expiresAt time.Time
	err := h.DB.QueryRow(`
		SELECT user_id, expires_at FROM email_verifications WHERE token = $1
	`, token).Scan(&userID, &expiresAt)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid verification token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if time.Now().After(expiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "Verification token expired"})
		return
	}

	_, err = h.DB.Exec("UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	_, _ = h.DB.Exec("DELETE FROM email_verifications WHERE user_id = $1", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}
