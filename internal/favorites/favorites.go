package favorites

import (
	"context"
	"errors"
	"fmt"

	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
)

var ErrProductNotFound = errors.New("produit introuvable")

// Service : bascule et listing des favoris. Un toggle supprime
// l'association si elle existe, la crée sinon ; deux appels consécutifs
// ramènent à l'état initial.
type Service struct {
	favorites repository.FavoriteRepository
	products  repository.ProductRepository
}

func NewService(favorites repository.FavoriteRepository, products repository.ProductRepository) *Service {
	return &Service{favorites: favorites, products: products}
}

// Toggle retourne true si le produit est favori après l'appel
func (s *Service) Toggle(ctx context.Context, userID, productSlug string) (bool, error) {
	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%w: %s", ErrProductNotFound, productSlug)
		}
		return false, err
	}

	exists, err := s.favorites.Exists(ctx, userID, product.ID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.favorites.Remove(ctx, userID, product.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	fav := &models.FavoriteProduct{UserID: userID, ProductID: product.ID}
	if err := s.favorites.Add(ctx, fav); err != nil {
		return false, err
	}
	return true, nil
}

// List retourne les produits favoris de l'utilisateur
func (s *Service) List(ctx context.Context, userID string) ([]models.Product, error) {
	ids, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			// produit supprimé du catalogue entre temps : on l'ignore
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *product)
	}
	return out, nil
}
