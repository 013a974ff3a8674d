package product

import (
	"net/http"
	"strconv"
	"strings"

	"loft_back_end/internal/app"
	"loft_back_end/internal/cache"
	"loft_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

//
// 🟢 GET /api/catalog
//
// Racines du catalogue (servies depuis le cache Redis)
func GetRootCategories(c *gin.Context) {
	categories, err := cache.GetRootCategoriesFromCache()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

//
// 🟢 GET /api/catalog/:slug
//
// Page catégorie : sous-catégories + produits filtrés.
// Filtres en query string : sub (ids répétables), color, brand,
// price_from, price_till, discount
func GetCategoryPage(c *gin.Context) {
	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	category, err := a.Catalog.Categories().GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	subcategories, err := a.Catalog.Categories().Subcategories(ctx, category.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture sous-catégories"})
		return
	}

	filter := repository.ProductFilter{}

	// Sous-catégories cochées, sinon toute la branche
	if subs := c.QueryArray("sub"); len(subs) > 0 {
		for _, raw := range subs {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "ID sous-catégorie invalide"})
				return
			}
			filter.CategoryIDs = append(filter.CategoryIDs, gocql.UUID(id))
		}
	} else {
		filter.CategoryIDs = append(filter.CategoryIDs, category.ID)
		for _, sub := range subcategories {
			filter.CategoryIDs = append(filter.CategoryIDs, sub.ID)
		}
	}

	filter.ColorName = c.Query("color")

	if brand := c.Query("brand"); brand != "" {
		id, err := uuid.Parse(brand)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
			return
		}
		brandID := gocql.UUID(id)
		filter.BrandID = &brandID
	}

	if raw := c.Query("price_from"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_from invalide"})
			return
		}
		filter.PriceFrom = &v
	}
	if raw := c.Query("price_till"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_till invalide"})
			return
		}
		filter.PriceTill = &v
	}

	filter.DiscountOnly = strings.EqualFold(c.Query("discount"), "true")

	products, err := a.Catalog.Products().List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":      category,
		"subcategories": subcategories,
		"products":      products,
	})
}

//
// 🟢 GET /api/sales
//
// Tous les produits en promotion
func GetSales(c *gin.Context) {
	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	products, err := a.Catalog.Products().List(c.Request.Context(), repository.ProductFilter{DiscountOnly: true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture promotions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

//
// 🟢 GET /api/brands
//
func GetBrands(c *gin.Context) {
	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	brands, err := a.Catalog.Brands().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}
