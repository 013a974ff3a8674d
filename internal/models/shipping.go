package models

import (
	"time"

	"github.com/gocql/gocql"
)

// ShippingAddress : une seule adresse par commande, créée à la soumission
// du checkout. La première écriture gagne, jamais écrasée ensuite.
type ShippingAddress struct {
	ID         gocql.UUID `json:"id" db:"address_id"`
	CustomerID gocql.UUID `json:"customer_id" db:"customer_id"`
	OrderID    gocql.UUID `json:"order_id" db:"order_id"`
	RegionID   gocql.UUID `json:"region_id" db:"region_id"`
	CityID     gocql.UUID `json:"city_id" db:"city_id"`
	Address    string     `json:"address" db:"address"`
	Phone      string     `json:"phone" db:"phone"`
	Comment    string     `json:"comment" db:"comment"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type Region struct {
	ID    gocql.UUID `json:"id" db:"region_id"`
	Title string     `json:"title" db:"title"`
}

type City struct {
	ID       gocql.UUID `json:"id" db:"city_id"`
	RegionID gocql.UUID `json:"region_id" db:"region_id"`
	Title    string     `json:"title" db:"title"`
}
