package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gilad-Weinberger/netta-nails/config"
	"github.com/Gilad-Weinberger/netta-nails/middleware"
	"github.com/Gilad-Weinberger/netta-nails/models"
	"github.com/Gilad-Weinberger/netta-nails/services"
	"github.com/Gilad-Weinberger/netta-nails/store"
)

// UserStore is the slice of the store the identity layer needs.
type UserStore interface {
	CreateUser(email, passwordHash, name, phone string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

type AuthHandler struct {
	store  UserStore
	config *config.Config
}

func NewAuthHandler(st UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		store:  st,
		config: cfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "כתובת אימייל לא תקינה או שדות חסרים",
		})
		return
	}

	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "הסיסמה חלשה מדי, אנא בחרי סיסמה חזקה יותר",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("failed to hash password")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה ביצירת החשבון",
		})
		return
	}

	phone := services.NormalizePhone(req.Phone, h.config.CountryCode)

	user, err := h.store.CreateUser(req.Email, string(hash), req.Name, phone)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, models.Response{
				Success: false,
				Error:   "כתובת האימייל כבר קיימת במערכת",
			})
			return
		}
		log.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה ביצירת החשבון",
		})
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		log.WithError(err).Error("failed to generate token")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה ביצירת החשבון",
		})
		return
	}

	h.setSessionCookie(c, token)
	user.PasswordHash = ""

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "ההרשמה הושלמה בהצלחה",
		Data: models.LoginResponse{
			Token: token,
			User:  user,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "כתובת אימייל לא תקינה או שדות חסרים",
		})
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Error:   "אימייל או סיסמה שגויים",
			})
			return
		}
		log.WithError(err).Error("failed to load user for login")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בהתחברות",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Error:   "אימייל או סיסמה שגויים",
		})
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		log.WithError(err).Error("failed to generate token")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בהתחברות",
		})
		return
	}

	h.setSessionCookie(c, token)
	user.PasswordHash = ""

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "ההתחברות הושלמה בהצלחה",
		Data: models.LoginResponse{
			Token: token,
			User:  user,
		},
	})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	uid := c.GetString("user_id")

	user, err := h.store.GetUserByID(uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Error:   "המשתמש לא נמצא",
			})
			return
		}
		log.WithError(err).WithField("uid", uid).Error("failed to load profile")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בטעינת הפרופיל",
		})
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    user,
	})
}

// Logout clears the session cookie. Tokens are stateless, so this is the
// whole teardown.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", h.secureCookies(), true)
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "ההתנתקות הושלמה בהצלחה",
	})
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := middleware.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Phone:  user.Phone,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie("token", token, 86400, "/", "", h.secureCookies(), true)
}

func (h *AuthHandler) secureCookies() bool {
	return h.config.Environment == "production"
}
