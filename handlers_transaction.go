package main

import (
	"net/http"
	"strconv"

	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
)

// filterFromQuery builds a transaction filter from the common query params.
func filterFromQuery(c *gin.Context) ledger.Filter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return ledger.Filter{
		BookID:     queryUint(c, "book_id"),
		WalletID:   queryUint(c, "wallet_id"),
		CategoryID: queryUint(c, "category_id"),
		Type:       c.Query("type"),
		StartMs:    queryInt64(c, "start_date"),
		EndMs:      queryInt64(c, "end_date"),
		Search:     c.Query("search"),
		Page:       page,
		PerPage:    perPage,
	}
}

func listTransactionsHandler(c *gin.Context) {
	f := filterFromQuery(c)
	ts, total, err := store.ListTransactions(currentUserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{
		"transactions": ts,
		"total":        total,
		"page":         f.Page,
		"per_page":     f.PerPage,
	})
}

func createTransactionHandler(c *gin.Context) {
	var req struct {
		BookID      uint   `json:"book_id" binding:"required"`
		WalletID    uint   `json:"wallet_id" binding:"required"`
		CategoryID  uint   `json:"category_id" binding:"required"`
		Type        string `json:"type" binding:"required"`
		Amount      int64  `json:"amount"`
		Note        string `json:"note"`
		CreatedAtMs int64  `json:"created_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	t, err := store.CreateTransaction(currentUserID(c), ledger.TransactionInput{
		BookID:      req.BookID,
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Note:        req.Note,
		CreatedAtMs: req.CreatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Transaction created successfully", t)
}

func getTransactionHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	t, err := store.GetTransaction(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, t)
}

func updateTransactionHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		WalletID    *uint   `json:"wallet_id"`
		CategoryID  *uint   `json:"category_id"`
		Type        *string `json:"type"`
		Amount      *int64  `json:"amount"`
		Note        *string `json:"note"`
		CreatedAtMs *int64  `json:"created_at_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	t, err := store.UpdateTransaction(currentUserID(c), id, ledger.TransactionPatch{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Note:        req.Note,
		CreatedAtMs: req.CreatedAtMs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, t)
}

func deleteTransactionHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteTransaction(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Transaction deleted successfully")
}

func bulkDeleteTransactionsHandler(c *gin.Context) {
	var req struct {
		TransactionIDs []uint `json:"transaction_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err := store.BulkDeleteTransactions(currentUserID(c), req.TransactionIDs); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Transactions deleted successfully")
}

func summaryHandler(c *gin.Context) {
	totals, err := store.Summary(currentUserID(c), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, totals)
}

func byCategoryHandler(c *gin.Context) {
	rows, err := store.ByCategory(currentUserID(c), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, rows)
}

func byDateHandler(c *gin.Context) {
	grouped, err := store.ByDate(currentUserID(c), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, grouped)
}
