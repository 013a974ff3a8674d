package checkout

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
)

// StripeGateway : implémentation Checkout Session hébergée.
// Timeout explicite par tentative + une seule relance, réservée aux
// échecs transitoires.
type StripeGateway struct {
	Timeout time.Duration
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{Timeout: 10 * time.Second}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata: map[string]string{
			"order_id": req.OrderID,
		},
	}

	attempt := func() (*stripe.CheckoutSession, error) {
		actx, cancel := context.WithTimeout(ctx, g.Timeout)
		defer cancel()
		params.Context = actx
		return session.New(params)
	}

	sess, err := attempt()
	if err == nil {
		log.Printf("💳 Session Stripe créée : %s (%d %s)", sess.ID, req.UnitAmount, req.Currency)
		return sess.URL, nil
	}

	// un refus explicite (paramètres, authentification) rejouerait une
	// requête condamnée : seule une panne transitoire mérite une relance
	if !transientStripeFailure(err) {
		log.Printf("❌ Erreur Stripe: %v", err)
		return "", err
	}

	log.Printf("⚠️ Échec transitoire création session Stripe, nouvelle tentative : %v", err)
	sess, err = attempt()
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		return "", err
	}
	return sess.URL, nil
}

// transientStripeFailure : coupure réseau, timeout, surcharge (429) ou
// erreur serveur du prestataire (5xx)
func transientStripeFailure(err error) bool {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		return sErr.HTTPStatusCode >= http.StatusInternalServerError ||
			sErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nErr net.Error
	return errors.As(err, &nErr)
}
