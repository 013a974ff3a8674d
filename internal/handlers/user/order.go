package user

import (
	"net/http"

	"loft_back_end/internal/app"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/orders
//
// Historique des commandes payées du client, avec leurs lignes
func MyOrders(c *gin.Context) {
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

	ctx := c.Request.Context()
	orders, err := a.Cart.PaidOrders(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	results := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		lines, err := a.Cart.OrderLines(ctx, order.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture lignes"})
			return
		}

		var total float64
		for _, l := range lines {
			total += l.Total
		}

		results = append(results, gin.H{
			"order":       order,
			"items":       lines,
			"total_price": total,
		})
	}

	c.JSON(http.StatusOK, gin.H{"orders": results})
}
