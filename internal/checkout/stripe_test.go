package checkout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stripe/stripe-go/v83"
)

func TestTransientStripeFailure(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"refus carte (402)", &stripe.Error{HTTPStatusCode: 402}, false},
		{"paramètres invalides (400)", &stripe.Error{HTTPStatusCode: 400}, false},
		{"authentification (401)", &stripe.Error{HTTPStatusCode: 401}, false},
		{"surcharge (429)", &stripe.Error{HTTPStatusCode: 429}, true},
		{"erreur serveur (500)", &stripe.Error{HTTPStatusCode: 500}, true},
		{"indisponible (503)", &stripe.Error{HTTPStatusCode: 503}, true},
		{"timeout du contexte", context.DeadlineExceeded, true},
		{"timeout enveloppé", fmt.Errorf("appel stripe: %w", context.DeadlineExceeded), true},
		{"coupure réseau", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"erreur quelconque", errors.New("réponse inattendue"), false},
	}

	for _, tc := range cases {
		if got := transientStripeFailure(tc.err); got != tc.transient {
			t.Errorf("%s: attendu transient=%v, obtenu %v", tc.name, tc.transient, got)
		}
	}
}
