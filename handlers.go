package main

import (
	"net/http"
	"strconv"
	"time"

	"keuanganku/models"
	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/api/auth/register", registerHandler)
	r.POST("/api/auth/login", loginHandler)
	r.POST("/api/auth/refresh", refreshHandler)

	api := r.Group("/api")
	api.Use(jwtAuthMiddleware())

	api.POST("/auth/logout", logoutHandler)
	api.GET("/auth/me", meHandler)
	api.POST("/auth/change-password", changePasswordHandler)

	api.GET("/books", listBooksHandler)
	api.POST("/books", createBookHandler)
	api.GET("/books/:id", getBookHandler)
	api.PUT("/books/:id", updateBookHandler)
	api.DELETE("/books/:id", deleteBookHandler)

	api.GET("/wallets", listWalletsHandler)
	api.POST("/wallets", createWalletHandler)
	api.GET("/wallets/:id", getWalletHandler)
	api.PUT("/wallets/:id", updateWalletHandler)
	api.DELETE("/wallets/:id", deleteWalletHandler)

	api.GET("/categories", listCategoriesHandler)
	api.POST("/categories", createCategoryHandler)
	api.GET("/categories/:id", getCategoryHandler)
	api.PUT("/categories/:id", updateCategoryHandler)
	api.DELETE("/categories/:id", deleteCategoryHandler)

	api.GET("/transactions", listTransactionsHandler)
	api.POST("/transactions", createTransactionHandler)
	api.POST("/transactions/bulk-delete", bulkDeleteTransactionsHandler)
	api.GET("/transactions/:id", getTransactionHandler)
	api.PUT("/transactions/:id", updateTransactionHandler)
	api.PUT("/transactions/:id/receipt", uploadReceiptHandler)
	api.DELETE("/transactions/:id", deleteTransactionHandler)

	api.GET("/reports/summary", summaryHandler)
	api.GET("/reports/by-category", byCategoryHandler)
	api.GET("/reports/by-date", byDateHandler)

	api.GET("/user/profile", profileHandler)
	api.PUT("/user/profile", updateProfileHandler)
	api.GET("/user/statistics", statisticsHandler)
	api.GET("/user/preferences", getPreferencesHandler)
	api.PUT("/user/preferences", updatePreferencesHandler)
	api.POST("/user/photo", uploadPhotoHandler)
	api.DELETE("/user/photo", deletePhotoHandler)
	api.DELETE("/user/account", deleteAccountHandler)

	api.GET("/closings", listClosingsHandler)
	api.POST("/closings", createClosingHandler)
	api.GET("/closings/:id", getClosingHandler)
	api.PUT("/closings/:id", updateClosingHandler)
	api.DELETE("/closings/:id", deleteClosingHandler)

	api.GET("/memos", listMemosHandler)
	api.POST("/memos", createMemoHandler)
	api.GET("/memos/:id", getMemoHandler)
	api.PUT("/memos/:id", updateMemoHandler)
	api.DELETE("/memos/:id", deleteMemoHandler)

	api.GET("/tags", listTagsHandler)
	api.POST("/tags", createTagHandler)
	api.GET("/tags/:id", getTagHandler)
	api.PUT("/tags/:id", updateTagHandler)
	api.DELETE("/tags/:id", deleteTagHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid claims"})
			c.Abort()
			return
		}
		sub, ok := claims["sub"].(float64)
		if !ok || sub <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("userID", uint(sub))
		c.Next()
	}
}

// currentUserID returns the authenticated user id set by jwtAuthMiddleware.
func currentUserID(c *gin.Context) uint {
	v, _ := c.Get("userID")
	id, _ := v.(uint)
	return id
}

// currentUser loads the full user row for the authenticated request.
func currentUser(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := db.First(&user, currentUserID(c)).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// pathID parses the :id path segment.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps the ledger error taxonomy onto HTTP statuses. Everything
// else is an internal error; nothing here is fatal to the process.
func respondError(c *gin.Context, err error) {
	switch {
	case ledger.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case ledger.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Unauthorized"})
	case ledger.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case ledger.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

// issueAccessToken signs a short-lived JWT for the user.
func issueAccessToken(user *models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func registerHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	user, err := RegisterUser(req.Name, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}
	tokenString, err := issueAccessToken(user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create refresh token"})
		return
	}
	created(c, "User registered successfully", gin.H{
		"user":          user,
		"token":         tokenString,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
	})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return
	}
	tokenString, err := issueAccessToken(&user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create refresh token"})
		return
	}
	ok(c, gin.H{
		"user":          user,
		"token":         tokenString,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
	})
}

// refreshHandler exchanges a refresh token for a new access token and
// rotates the refresh token.
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	tokenString, err := issueAccessToken(&user, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate token"})
		return
	}
	// rotate: revoke the used token, hand out a fresh one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to rotate refresh token"})
		return
	}
	ok(c, gin.H{"token": tokenString, "refresh_token": newRT, "token_type": "Bearer"})
}

// logoutHandler revokes the presented refresh token.
func logoutHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to revoke token"})
		return
	}
	okMessage(c, "Logout successful")
}

func meHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	books, err := store.ListBooks(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Books = books
	ok(c, user)
}

func changePasswordHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.CurrentPassword)) != nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "current password is incorrect"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password too short (min 8)"})
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to hash password"})
		return
	}
	if err := db.Model(user).Update("hashed_password", hashed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update password"})
		return
	}
	// force re-login everywhere
	if err := revokeAllRefreshTokens(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to revoke sessions"})
		return
	}
	okMessage(c, "Password changed successfully. Please login again.")
}
