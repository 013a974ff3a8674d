package user

import (
	"errors"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/favorites"

	"github.com/gin-gonic/gin"
)

//
// 🟢 POST /api/favorites/:slug
//
// Bascule le favori : absent → ajouté, présent → retiré
func ToggleFavorite(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug requis"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	isFavorite, err := a.Favorites.Toggle(c.Request.Context(), userID, slug)
	if errors.Is(err, favorites.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur bascule favori"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": isFavorite})
}

//
// 🟢 GET /api/favorites
//
func ListFavorites(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	products, err := a.Favorites.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture favoris"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}
