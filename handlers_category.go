package main

import (
	"net/http"

	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
)

func listCategoriesHandler(c *gin.Context) {
	categories, err := store.ListCategories(currentUserID(c), queryUint(c, "book_id"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, categories)
}

func createCategoryHandler(c *gin.Context) {
	var req struct {
		BookID    uint   `json:"book_id" binding:"required"`
		Name      string `json:"name" binding:"required"`
		Type      string `json:"type" binding:"required"`
		Color     string `json:"color"`
		Icon      string `json:"icon"`
		IsDefault bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	category, wasCreated, err := store.CreateCategory(currentUserID(c), ledger.CategoryInput{
		BookID:    req.BookID,
		Name:      req.Name,
		Type:      req.Type,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if !wasCreated {
		ok(c, category)
		return
	}
	created(c, "Category created successfully", category)
}

func getCategoryHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	category, err := store.GetCategory(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, category)
}

func updateCategoryHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		Name      *string `json:"name"`
		Type      *string `json:"type"`
		Color     *string `json:"color"`
		Icon      *string `json:"icon"`
		IsDefault *bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	category, err := store.UpdateCategory(currentUserID(c), id, ledger.CategoryPatch{
		Name:      req.Name,
		Type:      req.Type,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, category)
}

func deleteCategoryHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteCategory(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Category deleted successfully")
}
