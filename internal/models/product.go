package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID  `json:"id" db:"product_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Price       float64     `json:"price" db:"price"`
	Quantity    int         `json:"quantity" db:"quantity"`
	Discount    int         `json:"discount" db:"discount"`
	ColorName   string      `json:"color_name" db:"color_name"`
	ColorCode   string      `json:"color_code" db:"color_code"`
	Width       string      `json:"width" db:"width"`
	Depth       string      `json:"depth" db:"depth"`
	Height      string      `json:"height" db:"height"`
	CategoryID  gocql.UUID  `json:"category_id" db:"category_id"`
	BrandID     *gocql.UUID `json:"brand_id,omitempty" db:"brand_id"`
	Slug        string      `json:"slug" db:"slug"`
	ImageURLs   []string    `json:"image_urls" db:"image_urls"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// EffectivePrice retourne le prix après remise, sans jamais modifier le
// produit stocké (la remise ne doit pas se cumuler d'un appel à l'autre).
func (p Product) EffectivePrice() float64 {
	if p.Discount > 0 {
		return p.Price - (p.Price * float64(p.Discount) / 100)
	}
	return p.Price
}

// FirstPhoto retourne la première image pour l'aperçu panier / favoris
func (p Product) FirstPhoto() string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	return ""
}

type Brand struct {
	ID    gocql.UUID `json:"id" db:"brand_id"`
	Title string     `json:"title" db:"title"`
}

type ProductImage struct {
	ID        gocql.UUID `json:"id" db:"image_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	URL       string     `json:"url" db:"url"`
}
