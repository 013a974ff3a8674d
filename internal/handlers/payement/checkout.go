package payement

import (
	"errors"
	"log"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/checkout"
	"loft_back_end/internal/repository"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/checkout
//
// Récapitulatif avant paiement : panier + coordonnées client préremplies
func GetCheckoutSummary(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	info, err := a.Cart.CartInfo(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	if len(info.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	customer := gin.H{}
	if cust, err := a.Orders.Customers().FindByUser(ctx, userID); err == nil {
		customer = gin.H{
			"first_name": cust.FirstName,
			"last_name":  cust.LastName,
			"telegram":   cust.Telegram,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":          info.Lines,
		"total_price":    info.TotalPrice,
		"total_quantity": info.TotalQuantity,
		"customer":       customer,
	})
}

// SubmitCheckout valide le formulaire de livraison, attache l'adresse à
// la commande ouverte puis renvoie l'URL de la page de paiement hébergée
func SubmitCheckout(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	redirectURL, err := a.Checkout.Submit(c.Request.Context(), userID, form)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	case errors.Is(err, checkout.ErrInvalidForm):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, checkout.ErrPaymentGateway):
		log.Printf("❌ Passerelle de paiement indisponible: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Paiement momentanément indisponible"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur soumission checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect_url": redirectURL})
}
