package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"loft_back_end/internal/cart"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"

	"github.com/gocql/gocql"
)

var (
	// ErrPaymentGateway : échec de création de session côté prestataire,
	// toujours distinct des erreurs de validation
	ErrPaymentGateway = errors.New("erreur passerelle de paiement")
	ErrEmptyCart      = errors.New("panier vide")
	ErrInvalidForm    = errors.New("formulaire invalide")
)

// SessionRequest : contrat de la passerelle de paiement hébergée.
// Montant en unités mineures, un seul article agrégé.
type SessionRequest struct {
	Currency    string
	Description string
	UnitAmount  int64
	Quantity    int64
	SuccessURL  string
	CancelURL   string
	OrderID     string
}

// PaymentGateway crée une session hébergée et renvoie l'URL de redirection
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (string, error)
}

// Form : soumission du checkout (coordonnées client + livraison).
// Les tags binding sont validés à la couche HTTP ; la cohérence
// région/ville est revérifiée ici.
type Form struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Telegram  string `json:"telegram"`
	RegionID  string `json:"region_id" binding:"required,uuid"`
	CityID    string `json:"city_id" binding:"required,uuid"`
	Address   string `json:"address" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Comment   string `json:"comment"`
}

type Service struct {
	cart      *cart.Manager
	customers repository.CustomerRepository
	addresses repository.ShippingAddressRepository
	geo       repository.GeoRepository
	gateway   PaymentGateway

	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

func NewService(
	cartManager *cart.Manager,
	customers repository.CustomerRepository,
	addresses repository.ShippingAddressRepository,
	geo repository.GeoRepository,
	gateway PaymentGateway,
) *Service {
	return &Service{
		cart:        cartManager,
		customers:   customers,
		addresses:   addresses,
		geo:         geo,
		gateway:     gateway,
		Currency:    "eur",
		Description: "Articles de la boutique LOFT",
	}
}

// Submit valide la soumission, met à jour les coordonnées du client,
// attache l'adresse de livraison (une seule par commande, la première
// écriture gagne) puis demande une session de paiement pour
// round(total) × 100 unités mineures. Retourne l'URL de redirection.
func (s *Service) Submit(ctx context.Context, userID string, form Form) (string, error) {
	info, err := s.cart.CartInfo(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(info.Lines) == 0 {
		return "", ErrEmptyCart
	}

	regionID, err := gocql.ParseUUID(form.RegionID)
	if err != nil {
		return "", fmt.Errorf("%w: region_id", ErrInvalidForm)
	}
	cityID, err := gocql.ParseUUID(form.CityID)
	if err != nil {
		return "", fmt.Errorf("%w: city_id", ErrInvalidForm)
	}

	if _, err := s.geo.GetRegion(ctx, regionID); err != nil {
		return "", fmt.Errorf("%w: région inconnue", ErrInvalidForm)
	}
	city, err := s.geo.GetCity(ctx, cityID)
	if err != nil {
		return "", fmt.Errorf("%w: ville inconnue", ErrInvalidForm)
	}
	if city.RegionID != regionID {
		return "", fmt.Errorf("%w: la ville n'appartient pas à la région", ErrInvalidForm)
	}

	// coordonnées d'affichage du client
	customer, err := s.customers.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	customer.FirstName = form.FirstName
	customer.LastName = form.LastName
	customer.Telegram = form.Telegram
	if err := s.customers.Update(ctx, customer); err != nil {
		return "", err
	}

	// une seule adresse par commande : jamais écrasée par une seconde
	// soumission
	exists, err := s.addresses.ExistsForOrder(ctx, info.Order.ID)
	if err != nil {
		return "", err
	}
	if !exists {
		address := &models.ShippingAddress{
			CustomerID: customer.ID,
			OrderID:    info.Order.ID,
			RegionID:   regionID,
			CityID:     cityID,
			Address:    form.Address,
			Phone:      form.Phone,
			Comment:    form.Comment,
		}
		err := s.addresses.Create(ctx, address)
		if err != nil && !errors.Is(err, repository.ErrConflict) {
			// la première écriture gagne : un conflit signifie qu'une
			// soumission concurrente a déjà posé l'adresse
			return "", err
		}
	}

	req := SessionRequest{
		Currency:    s.Currency,
		Description: s.Description,
		UnitAmount:  int64(math.Round(info.TotalPrice)) * 100,
		Quantity:    1,
		SuccessURL:  s.SuccessURL,
		CancelURL:   s.CancelURL,
		OrderID:     info.Order.ID.String(),
	}

	redirectURL, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	return redirectURL, nil
}
