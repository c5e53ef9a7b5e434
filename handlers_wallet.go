package main

import (
	"net/http"
	"strconv"

	"keuanganku/pkg/ledger"

	"github.com/gin-gonic/gin"
)

// queryUint parses an optional numeric query parameter; 0 means absent.
func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func queryInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func listWalletsHandler(c *gin.Context) {
	wallets, err := store.ListWallets(currentUserID(c), queryUint(c, "book_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, wallets)
}

func createWalletHandler(c *gin.Context) {
	var req struct {
		BookID         uint   `json:"book_id" binding:"required"`
		Name           string `json:"name" binding:"required"`
		Type           string `json:"type" binding:"required"`
		Icon           string `json:"icon"`
		Color          string `json:"color"`
		InitialBalance int64  `json:"initial_balance"`
		IsDefault      bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	wallet, wasCreated, err := store.CreateWallet(currentUserID(c), ledger.WalletInput{
		BookID:         req.BookID,
		Name:           req.Name,
		Type:           req.Type,
		Icon:           req.Icon,
		Color:          req.Color,
		InitialBalance: req.InitialBalance,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if !wasCreated {
		ok(c, wallet)
		return
	}
	created(c, "Wallet created successfully", wallet)
}

func getWalletHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	wallet, err := store.GetWallet(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, wallet)
}

func updateWalletHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req struct {
		Name           *string `json:"name"`
		Type           *string `json:"type"`
		Icon           *string `json:"icon"`
		Color          *string `json:"color"`
		InitialBalance *int64  `json:"initial_balance"`
		IsDefault      *bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	wallet, err := store.UpdateWallet(currentUserID(c), id, ledger.WalletPatch{
		Name:           req.Name,
		Type:           req.Type,
		Icon:           req.Icon,
		Color:          req.Color,
		InitialBalance: req.InitialBalance,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, wallet)
}

func deleteWalletHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := store.DeleteWallet(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, "Wallet deleted successfully")
}
