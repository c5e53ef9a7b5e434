package main

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"keuanganku/pkg/ledger"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds incoming image uploads.
const maxUploadBytes = 5 * 1024 * 1024

// maxImageWidth is the bound for the stored web derivative.
const maxImageWidth = 1280

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// saveUploadedImage stores an uploaded image under UPLOAD_BASE/<folder> and
// returns its public URL path. The file is downscaled to a bounded width;
// beyond that the stored bytes are opaque to the rest of the system.
func saveUploadedImage(c *gin.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxUploadBytes {
		return "", fmt.Errorf("file too large (max 5MB)")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %s", ext)
	}
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dir := filepath.Join(uploadBaseDir(), folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	full := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, full); err != nil {
		return "", err
	}
	shrinkImage(full)
	return "/public/" + folder + "/" + name, nil
}

// shrinkImage rewrites an image in place when it exceeds the web width
// bound. Failures are logged and ignored: the original upload stays usable.
func shrinkImage(path string) {
	img, err := imaging.Open(path)
	if err != nil {
		log.Printf("shrink skip %s: %v", path, err)
		return
	}
	if img.Bounds().Dx() <= maxImageWidth {
		return
	}
	resized := imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, path); err != nil {
		log.Printf("shrink save %s: %v", path, err)
	}
}

// removeStoredImage deletes the file behind a /public/... URL, if any.
func removeStoredImage(url string) {
	if url == "" || !strings.HasPrefix(url, "/public/") {
		return
	}
	rel := strings.TrimPrefix(url, "/public/")
	if err := os.Remove(filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		log.Printf("remove image %s: %v", url, err)
	}
}

// uploadPhotoHandler replaces the user's profile photo.
func uploadPhotoHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "photo missing"})
		return
	}
	url, err := saveUploadedImage(c, file, "profiles")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	removeStoredImage(user.PhotoURL)
	if err := db.Model(user).Update("photo_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save photo"})
		return
	}
	ok(c, gin.H{"photo_url": url})
}

func deletePhotoHandler(c *gin.Context) {
	user, okUser := currentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}
	if user.PhotoURL != "" {
		removeStoredImage(user.PhotoURL)
		if err := db.Model(user).Update("photo_url", "").Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete photo"})
			return
		}
	}
	okMessage(c, "Photo deleted successfully")
}

// uploadReceiptHandler attaches a receipt image to a transaction. The stored
// reference replaces any earlier one; the old file is removed.
func uploadReceiptHandler(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	userID := currentUserID(c)
	t, err := store.GetTransaction(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image missing"})
		return
	}
	url, err := saveUploadedImage(c, file, "transactions")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	removeStoredImage(t.ImageURL)
	updated, err := store.UpdateTransaction(userID, id, ledger.TransactionPatch{ImageURL: &url})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, updated)
}
