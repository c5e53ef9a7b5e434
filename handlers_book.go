package main

import (
	"net/http"

	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
)

func listBooksHandler(c *gin.Context) {
	books, err := store.ListBooks(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, books)
}

func createBookHandler(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Color       string `json:"color"`
		IsDefault   bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	book, wasCreated, err := store.CreateBook(currentUserID(c), ledger.BookInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	// A retried create finds the earlier row and answers 200 instead of 201.
	if !wasCreated {
		ok(c, book)
		return
	}
	created(c, "Book created successfully", book)
}

func getBookHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	book, err := store.GetBook(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, book)
}

func updateBookHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
		Color       *string `json:"color"`
		IsDefault   *bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	book, err := store.UpdateBook(currentUserID(c), id, ledger.BookPatch{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, book)
}

func deleteBookHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteBook(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Book deleted successfully")
}
