package user

import (
	"context"
	"errors"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/cart"
	"loft_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// notifyCartChanged prévient les WebSockets ouverts de ce user
func notifyCartChanged(userID string) {
	database.Redis.Publish(context.Background(), "cart:"+userID, "updated")
}

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
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

	info, err := a.Cart.CartInfo(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":          info.Order,
		"items":          info.Lines,
		"total_price":    info.TotalPrice,
		"total_quantity": info.TotalQuantity,
	})
}

//
// 🟢 POST /api/cart/mutate
//
// Une action "add" incrémente la ligne d'une unité tant que le stock le
// permet, "delete" la décrémente et supprime la ligne à zéro.
func MutateCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	var input struct {
		Slug   string `json:"slug" binding:"required"`
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	outcome, err := a.Cart.MutateLine(c.Request.Context(), userID, input.Slug, cart.Action(input.Action))
	switch {
	case errors.Is(err, cart.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action inconnue"})
		return
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mutation panier"})
		return
	}

	notifyCartChanged(userID)

	info, err := a.Cart.CartInfo(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":        outcome.String(),
		"items":          info.Lines,
		"total_price":    info.TotalPrice,
		"total_quantity": info.TotalQuantity,
	})
}

//
// 🟢 DELETE /api/cart/line/:id
//
func RemoveCartLine(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ligne invalide"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = a.Cart.RemoveLine(c.Request.Context(), userID, gocql.UUID(lineID))
	if errors.Is(err, cart.ErrLineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression ligne"})
		return
	}

	notifyCartChanged(userID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
