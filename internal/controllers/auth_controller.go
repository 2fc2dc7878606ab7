package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bus_service/internal/middleware"
)

// AdminRole is the role required for mutating endpoints.
const AdminRole = "admin"

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController issues tokens for the single configured administrator.
type AuthController struct {
	auth         *middleware.Auth
	adminUser    string
	passwordHash []byte
}

func NewAuthController(auth *middleware.Auth, adminUser, adminPasswordHash string) *AuthController {
	return &AuthController{auth: auth, adminUser: adminUser, passwordHash: []byte(adminPasswordHash)}
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (ac *AuthController) Login(c *gin.Context) {
	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindingError(err))
		return
	}

	if body.Username != ac.adminUser {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword(ac.passwordHash, []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := ac.auth.GenerateToken(body.Username, AdminRole)
	if err != nil {
		logrus.WithError(err).WithFields(requestFields(c)).Error("could not generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	logrus.WithFields(requestFields(c)).WithField("user", body.Username).Info("admin logged in")
	c.JSON(http.StatusOK, gin.H{"token": token, "role": AdminRole})
}

// Me echoes the identity carried by the caller's token.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subject": c.GetString("subject"), "role": c.GetString("role")})
}
