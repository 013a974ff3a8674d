package models

import (
	"time"

	"github.com/gocql/gocql"
)

// FavoriteProduct : association utilisateur × produit, sans quantité.
// L'existence de la ligne est le seul état (toggle on/off).
type FavoriteProduct struct {
	UserID    string     `json:"user_id" db:"user_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	AddedAt   time.Time  `json:"added_at" db:"added_at"`
}

type FavoriteList struct {
	UserID string    `json:"user_id"`
	Items  []Product `json:"items"`
}
