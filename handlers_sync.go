package main

import (
	"net/http"

	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
)

// Handlers for the sync-oriented entities (book closings, memos, tags).
// Deletes answer success while only tombstoning the row; offline clients
// pick the tombstone up on their next pull.

func listClosingsHandler(c *gin.Context) {
	closings, err := store.ListClosings(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, closings)
}

func createClosingHandler(c *gin.Context) {
	var req struct {
		BookID       uint    `json:"book_id" binding:"required"`
		PeriodStart  int64   `json:"period_start" binding:"required"`
		PeriodEnd    int64   `json:"period_end" binding:"required"`
		PeriodLabel  string  `json:"period_label" binding:"required"`
		ClosedAt     int64   `json:"closed_at" binding:"required"`
		FinalBalance float64 `json:"final_balance"`
		IsVerified   bool    `json:"is_verified"`
		Notes        string  `json:"notes"`
		CreatedAtMs  *int64  `json:"created_at_ms"`
		UpdatedAtMs  *int64  `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	closing, err := store.CreateClosing(currentUserID(c), ledger.ClosingInput{
		BookID:       req.BookID,
		PeriodStart:  req.PeriodStart,
		PeriodEnd:    req.PeriodEnd,
		PeriodLabel:  req.PeriodLabel,
		ClosedAt:     req.ClosedAt,
		FinalBalance: req.FinalBalance,
		IsVerified:   req.IsVerified,
		Notes:        req.Notes,
		CreatedAtMs:  req.CreatedAtMs,
		UpdatedAtMs:  req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Book closing created successfully", closing)
}

func getClosingHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	closing, err := store.GetClosing(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, closing)
}

func updateClosingHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		PeriodStart  *int64   `json:"period_start"`
		PeriodEnd    *int64   `json:"period_end"`
		PeriodLabel  *string  `json:"period_label"`
		ClosedAt     *int64   `json:"closed_at"`
		FinalBalance *float64 `json:"final_balance"`
		IsVerified   *bool    `json:"is_verified"`
		Notes        *string  `json:"notes"`
		UpdatedAtMs  *int64   `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	closing, err := store.UpdateClosing(currentUserID(c), id, ledger.ClosingPatch{
		PeriodStart:  req.PeriodStart,
		PeriodEnd:    req.PeriodEnd,
		PeriodLabel:  req.PeriodLabel,
		ClosedAt:     req.ClosedAt,
		FinalBalance: req.FinalBalance,
		IsVerified:   req.IsVerified,
		Notes:        req.Notes,
		UpdatedAtMs:  req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, closing)
}

func deleteClosingHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteClosing(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Book closing marked as deleted")
}

func listMemosHandler(c *gin.Context) {
	memos, err := store.ListMemos(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, memos)
}

func createMemoHandler(c *gin.Context) {
	var req struct {
		BookID      uint   `json:"book_id" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Content     string `json:"content" binding:"required"`
		Tags        string `json:"tags"`
		Date        int64  `json:"date" binding:"required"`
		CreatedAtMs *int64 `json:"created_at_ms"`
		UpdatedAtMs *int64 `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	memo, err := store.CreateMemo(currentUserID(c), ledger.MemoInput{
		BookID:      req.BookID,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Date:        req.Date,
		CreatedAtMs: req.CreatedAtMs,
		UpdatedAtMs: req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Memo created successfully", memo)
}

func getMemoHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	memo, err := store.GetMemo(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, memo)
}

func updateMemoHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Tags        *string `json:"tags"`
		Date        *int64  `json:"date"`
		UpdatedAtMs *int64  `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	memo, err := store.UpdateMemo(currentUserID(c), id, ledger.MemoPatch{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Date:        req.Date,
		UpdatedAtMs: req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, memo)
}

func deleteMemoHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteMemo(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Memo marked as deleted")
}

func listTagsHandler(c *gin.Context) {
	tags, err := store.ListTags(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, tags)
}

func createTagHandler(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Color       int    `json:"color"`
		CreatedAtMs *int64 `json:"created_at_ms"`
		UpdatedAtMs *int64 `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	tag, err := store.CreateTag(currentUserID(c), ledger.TagInput{
		Name:        req.Name,
		Color:       req.Color,
		CreatedAtMs: req.CreatedAtMs,
		UpdatedAtMs: req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Tag created successfully", tag)
}

func getTagHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	tag, err := store.GetTag(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, tag)
}

func updateTagHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Color       *int    `json:"color"`
		UpdatedAtMs *int64  `json:"updated_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	tag, err := store.UpdateTag(currentUserID(c), id, ledger.TagPatch{
		Name:        req.Name,
		Color:       req.Color,
		UpdatedAtMs: req.UpdatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, tag)
}

func deleteTagHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteTag(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Tag marked as deleted")
}
