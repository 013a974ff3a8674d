package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Customer struct {
	ID        gocql.UUID `json:"id" db:"customer_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	FirstName string     `json:"first_name" db:"first_name"`
	LastName  string     `json:"last_name" db:"last_name"`
	Telegram  string     `json:"telegram" db:"telegram"`
}

// Order représente soit le panier ouvert du client (payment=false),
// soit une commande finalisée. Invariant : au plus une commande ouverte
// par client à la fois.
type Order struct {
	ID          gocql.UUID `json:"id" db:"order_id"`
	CustomerID  gocql.UUID `json:"customer_id" db:"customer_id"`
	Payment     bool       `json:"payment" db:"payment"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	Shipping    bool       `json:"shipping" db:"shipping"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// OrderLine lie un produit à une commande avec sa quantité.
// Une ligne n'est jamais persistée à quantité zéro ou négative.
type OrderLine struct {
	ID        gocql.UUID `json:"id" db:"line_id"`
	OrderID   gocql.UUID `json:"order_id" db:"order_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	AddedAt   time.Time  `json:"added_at" db:"added_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
