package main

import (
	"net/http"

	"keuanganku/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func profileHandler(c *gin.Context) {
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
	var defaultBook *models.Book
	for i := range books {
		if books[i].IsDefault {
			defaultBook = &books[i]
			break
		}
	}
	stats, err := store.Statistics(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{
		"user": user,
		"stats": gin.H{
			"total_books":        stats.TotalBooks,
			"total_transactions": stats.TotalTransactions,
			"default_book":       defaultBook,
		},
	})
}

func updateProfileHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name: required"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "email already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update profile"})
			return
		}
	}
	ok(c, user)
}

func statisticsHandler(c *gin.Context) {
	stats, err := store.Statistics(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, stats)
}

func getPreferencesHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	prefs := user.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	ok(c, gin.H{"preferences": prefs})
}

func updatePreferencesHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	var req struct {
		Currency             *string `json:"currency"`
		Language             *string `json:"language"`
		Theme                *string `json:"theme"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Theme != nil && *req.Theme != "light" && *req.Theme != "dark" && *req.Theme != "auto" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "theme must be light, dark or auto"})
		return
	}
	prefs := user.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	if req.Currency != nil {
		prefs["currency"] = *req.Currency
	}
	if req.Language != nil {
		prefs["language"] = *req.Language
	}
	if req.Theme != nil {
		prefs["theme"] = *req.Theme
	}
	if req.NotificationsEnabled != nil {
		prefs["notifications_enabled"] = *req.NotificationsEnabled
	}
	if err := db.Model(user).Update("preferences", prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update preferences"})
		return
	}
	ok(c, gin.H{"preferences": prefs})
}

// deleteAccountHandler removes the user after a password re-check. The
// cascade constraints take the books and everything under them along.
func deleteAccountHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)) != nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "incorrect password"})
		return
	}
	removeStoredImage(user.PhotoURL)
	if err := db.Delete(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete account"})
		return
	}
	okMessage(c, "Account deleted successfully")
}
