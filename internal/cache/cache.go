package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"loft_back_end/internal/database"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
)

const (
	ProductCacheTTL = 10 * time.Minute
	CatalogCacheTTL = 30 * time.Minute
)

// GetProductBySlugFromCache récupère une fiche produit depuis Redis ou ScyllaDB
func GetProductBySlugFromCache(slug string) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + slug

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var p models.Product
		if json.Unmarshal([]byte(data), &p) == nil {
			return &p, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	catalog := repository.NewScyllaCatalog(session, os.Getenv("SCYLLA_KS_CATALOG_KEYSPACE"))
	p, err := catalog.Products().GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(p)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return p, nil
}

// InvalidateProductCache invalide la fiche d'un produit (stock ou prix modifié)
func InvalidateProductCache(slug string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "product:"+slug)
}

// GetRootCategoriesFromCache récupère l'arbre racine du catalogue
// depuis Redis ou ScyllaDB
func GetRootCategoriesFromCache() ([]models.Category, error) {
	ctx := context.Background()
	key := "catalog:roots"

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var categories []models.Category
		if json.Unmarshal([]byte(data), &categories) == nil {
			return categories, nil
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	catalog := repository.NewScyllaCatalog(session, os.Getenv("SCYLLA_KS_CATALOG_KEYSPACE"))
	categories, err := catalog.Categories().Roots(ctx)
	if err != nil {
		return nil, err
	}

	jsonData, _ := json.Marshal(categories)
	database.Redis.Set(ctx, key, jsonData, CatalogCacheTTL)

	return categories, nil
}

// InvalidateCatalogCache invalide l'arbre du catalogue
func InvalidateCatalogCache() {
	ctx := context.Background()
	database.Redis.Del(ctx, "catalog:roots")
}
