package handlers

import (
	"net/http"
	"os"
	"time"

	"loft_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

//
// 🟢 POST /api/images
//
// Upload d'une image produit dans MinIO
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}

	url, err := services.UploadFile(os.Getenv("MINIO_BUCKET"), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

//
// 🟢 GET /api/images/signed?path=...
//
// URL signée avec expiration pour servir une image du bucket
func SignedImageURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre path requis"})
		return
	}

	url, err := services.GenerateSignedURL(c.Request.Context(), path, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
