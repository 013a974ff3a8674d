package repository

import (
	"context"
	"errors"

	"loft_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ErrNotFound est renvoyée quand une entité n'existe pas
var ErrNotFound = errors.New("introuvable")

// ErrConflict est renvoyée quand une mise à jour concurrente a été perdue
var ErrConflict = errors.New("conflit de mise à jour concurrente")

// ProductFilter : prédicats de la page catégorie (sous-catégorie, couleur,
// marque, fourchette de prix, promos)
type ProductFilter struct {
	CategoryIDs  []gocql.UUID
	ColorName    string
	BrandID      *gocql.UUID
	PriceFrom    *float64
	PriceTill    *float64
	DiscountOnly bool
}

type ProductRepository interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByColor(ctx context.Context, colorCode string, categoryID gocql.UUID, brandID *gocql.UUID) (*models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	UpdateQuantity(ctx context.Context, id gocql.UUID, quantity int) error
}

type CategoryRepository interface {
	Roots(ctx context.Context) ([]models.Category, error)
	Subcategories(ctx context.Context, parentID gocql.UUID) ([]models.Category, error)
	GetByID(ctx context.Context, id gocql.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByTitle(ctx context.Context, title string) (*models.Category, error)
}

type BrandRepository interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Brand, error)
	GetByTitle(ctx context.Context, title string) (*models.Brand, error)
	List(ctx context.Context) ([]models.Brand, error)
}

// CustomerRepository : pas de get_or_create implicite, la composition
// find puis create est explicite dans le gestionnaire de panier
type CustomerRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
}

type OrderRepository interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error)
	FindOpenByCustomer(ctx context.Context, customerID gocql.UUID) (*models.Order, error)
	ListPaidByCustomer(ctx context.Context, customerID gocql.UUID) ([]models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
}

type OrderLineRepository interface {
	Find(ctx context.Context, orderID, productID gocql.UUID) (*models.OrderLine, error)
	GetByID(ctx context.Context, lineID gocql.UUID) (*models.OrderLine, error)
	ListByOrder(ctx context.Context, orderID gocql.UUID) ([]models.OrderLine, error)
	Save(ctx context.Context, l *models.OrderLine) error
	Delete(ctx context.Context, orderID, productID gocql.UUID) error
}

type ShippingAddressRepository interface {
	ExistsForOrder(ctx context.Context, orderID gocql.UUID) (bool, error)
	GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.ShippingAddress, error)
	Create(ctx context.Context, a *models.ShippingAddress) error
}

type FavoriteRepository interface {
	Exists(ctx context.Context, userID string, productID gocql.UUID) (bool, error)
	Add(ctx context.Context, f *models.FavoriteProduct) error
	Remove(ctx context.Context, userID string, productID gocql.UUID) error
	ListByUser(ctx context.Context, userID string) ([]gocql.UUID, error)
}

// GeoRepository : régions et villes pour le formulaire de livraison
type GeoRepository interface {
	Regions(ctx context.Context) ([]models.Region, error)
	CitiesByRegion(ctx context.Context, regionID gocql.UUID) ([]models.City, error)
	GetRegion(ctx context.Context, id gocql.UUID) (*models.Region, error)
	GetCity(ctx context.Context, id gocql.UUID) (*models.City, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email, provider string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

// TxManager : la finalisation du paiement (décrément des stocks + bascule
// du flag payment) doit être tout-ou-rien
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
