package payement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"loft_back_end/internal/app"
	"loft_back_end/internal/cache"
	"loft_back_end/internal/cart"
	"loft_back_end/internal/database"
	"loft_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// PaymentSuccess est le retour navigateur après paiement : la commande
// est finalisée si le webhook ne l'a pas déjà fait
func PaymentSuccess(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orderID, err := uuid.Parse(c.Query("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// seule la commande du client authentifié peut être finalisée ici
	err = a.Cart.FinalizeCustomerPayment(c.Request.Context(), userID, gocql.UUID(orderID))
	switch {
	case errors.Is(err, cart.ErrAlreadyPaid):
		// Le webhook est passé avant nous, rien à refaire
		c.JSON(http.StatusOK, gin.H{"finalized": true})
		return
	case errors.Is(err, cart.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, cart.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande vide"})
		return
	case err != nil:
		log.Printf("❌ Finalisation échouée pour %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur finalisation commande"})
		return
	}

	// Le panier a changé d'état : les WebSockets doivent se rafraîchir
	database.Redis.Publish(context.Background(), "cart:"+userID, "updated")

	invalidateProductCaches(a, gocql.UUID(orderID))
	go sendOrderConfirmation(gocql.UUID(orderID))

	c.JSON(http.StatusOK, gin.H{"finalized": true})
}

// ✅ Webhook Stripe
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

// handleStripeEvent finalise la commande liée à la session payée.
// Rejouable sans effet : une commande déjà payée est ignorée.
func handleStripeEvent(event stripe.Event) {
	if event.Type != "checkout.session.completed" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Println("❌ Erreur décodage CheckoutSession:", err)
		return
	}

	rawOrderID := sess.Metadata["order_id"]
	if rawOrderID == "" {
		log.Println("⚠️ Métadonnées incomplètes : order_id manquant")
		return
	}

	orderID, err := gocql.ParseUUID(rawOrderID)
	if err != nil {
		log.Printf("❌ order_id invalide dans les métadonnées: %s", rawOrderID)
		return
	}

	a, err := app.Get()
	if err != nil {
		log.Println("❌ Conteneur indisponible:", err)
		return
	}

	err = a.Cart.FinalizePayment(context.Background(), orderID)
	if errors.Is(err, cart.ErrAlreadyPaid) {
		log.Println("🔁 Commande déjà enregistrée, on ignore.")
		return
	}
	if err != nil {
		log.Printf("❌ Finalisation webhook échouée pour %s: %v", orderID, err)
		return
	}
	log.Printf("✅ Commande %s finalisée via webhook", orderID)

	invalidateProductCaches(a, orderID)
	go sendOrderConfirmation(orderID)
}

// invalidateProductCaches retire du cache les fiches dont le stock vient de baisser
func invalidateProductCaches(a *app.Container, orderID gocql.UUID) {
	lines, err := a.Cart.OrderLines(context.Background(), orderID)
	if err != nil {
		return
	}
	for _, l := range lines {
		cache.InvalidateProductCache(l.Product.Slug)
	}
}

// sendOrderConfirmation envoie l'e-mail de confirmation avec le
// récapitulatif PDF en pièce jointe
func sendOrderConfirmation(orderID gocql.UUID) {
	a, err := app.Get()
	if err != nil {
		log.Println("❌ Conteneur indisponible:", err)
		return
	}

	ctx := context.Background()

	order, err := a.Orders.Orders().GetByID(ctx, orderID)
	if err != nil {
		log.Printf("❌ Commande introuvable pour l'e-mail: %s", orderID)
		return
	}

	customer, err := a.Orders.Customers().GetByID(ctx, order.CustomerID)
	if err != nil {
		log.Printf("❌ Client introuvable pour l'e-mail: %s", order.CustomerID)
		return
	}

	account, err := a.Accounts.Users().GetByID(ctx, customer.UserID)
	if err != nil {
		log.Printf("❌ Utilisateur introuvable pour l'e-mail: %s", customer.UserID)
		return
	}

	lines, err := a.Cart.OrderLines(ctx, orderID)
	if err != nil {
		log.Printf("❌ Lignes introuvables pour l'e-mail: %s", orderID)
		return
	}

	items := make([]utils.OrderEmailItem, 0, len(lines))
	var total float64
	for _, l := range lines {
		items = append(items, utils.OrderEmailItem{
			Title:     l.Product.Title,
			Quantity:  l.Line.Quantity,
			UnitPrice: l.Product.EffectivePrice(),
		})
		total += l.Total
	}

	html := utils.GenerateOrderConfirmationHTML(orderID.String(), items, total)

	var pdf []byte
	if qr, err := utils.GenerateOrderQR(orderID.String()); err == nil {
		pdf, err = utils.RenderOrderSummaryPDF(utils.GetFrontendOrderBaseURL(), orderID.String(), qr)
		if err != nil {
			log.Println("❌ Erreur génération PDF :", err)
			pdf = nil
		}
	}

	if err := utils.SendConfirmationEmail(account.Email, "Confirmation de votre commande LOFT", html, pdf); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation :", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", account.Email)
	}
}
