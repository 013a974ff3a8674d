package product

import (
	"net/http"
	"time"

	"loft_back_end/internal/app"
	"loft_back_end/internal/cache"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
	"loft_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const suggestionLimit = 8

//
// 🟢 GET /api/product/:slug
//
// Fiche produit : produit, prix effectif, suggestions de la même
// catégorie et déclinaisons de couleur
func GetProduct(c *gin.Context) {
	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	p, err := cache.GetProductBySlugFromCache(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Suggestions : même catégorie, le produit courant exclu
	sameCategory, err := a.Catalog.Products().List(ctx, repository.ProductFilter{
		CategoryIDs: []gocql.UUID{p.CategoryID},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture suggestions"})
		return
	}

	suggestions := make([]models.Product, 0, suggestionLimit)
	variants := []models.Product{}
	for _, other := range sameCategory {
		if other.ID == p.ID {
			continue
		}
		// même modèle dans une autre couleur : même marque, même titre
		if other.ColorCode != p.ColorCode && sameBrand(other.BrandID, p.BrandID) && other.Title == p.Title {
			variants = append(variants, other)
			continue
		}
		if len(suggestions) < suggestionLimit {
			suggestions = append(suggestions, other)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"product":         p,
		"effective_price": p.EffectivePrice(),
		"suggestions":     suggestions,
		"color_variants":  variants,
	})
}

func sameBrand(a, b *gocql.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

//
// 🟢 GET /api/product/color
//
// Déclinaison d'une couleur : ?code=...&category=...&brand=...
func GetProductByColor(c *gin.Context) {
	code := c.Query("code")
	rawCategory := c.Query("category")
	if code == "" || rawCategory == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code et category requis"})
		return
	}

	categoryID, err := uuid.Parse(rawCategory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var brandID *gocql.UUID
	if raw := c.Query("brand"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
			return
		}
		b := gocql.UUID(id)
		brandID = &b
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, err := a.Catalog.Products().GetByColor(c.Request.Context(), code, gocql.UUID(categoryID), brandID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Déclinaison introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// 🟢 GET /api/search?q=...
//
// Recherche plein texte via Elasticsearch
func Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []interface{}{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

//
// 🟢 POST /api/products
//
// Création d'un produit du catalogue (avec image optionnelle),
// indexé dans Elasticsearch dans la foulée
func CreateProduct(c *gin.Context) {
	var input struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Price       float64  `json:"price" binding:"required,gt=0"`
		Quantity    int      `json:"quantity" binding:"gte=0"`
		Discount    int      `json:"discount" binding:"gte=0,lte=100"`
		ColorName   string   `json:"color_name"`
		ColorCode   string   `json:"color_code"`
		Width       string   `json:"width"`
		Depth       string   `json:"depth"`
		Height      string   `json:"height"`
		CategoryID  string   `json:"category_id" binding:"required,uuid"`
		BrandID     string   `json:"brand_id"`
		Slug        string   `json:"slug" binding:"required"`
		ImageURLs   []string `json:"image_urls"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	if _, err := a.Catalog.Categories().GetByID(ctx, gocql.UUID(categoryID)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie inconnue"})
		return
	}

	p := models.Product{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Discount:    input.Discount,
		ColorName:   input.ColorName,
		ColorCode:   input.ColorCode,
		Width:       input.Width,
		Depth:       input.Depth,
		Height:      input.Height,
		CategoryID:  gocql.UUID(categoryID),
		Slug:        input.Slug,
		ImageURLs:   input.ImageURLs,
		CreatedAt:   time.Now(),
	}

	if input.BrandID != "" {
		brandID, err := uuid.Parse(input.BrandID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
			return
		}
		b := gocql.UUID(brandID)
		p.BrandID = &b
	}

	if err := a.Catalog.Products().Create(ctx, &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// Indexation et invalidation de cache hors du chemin de réponse
	go services.IndexProduct(p)
	cache.InvalidateCatalogCache()

	c.JSON(http.StatusCreated, gin.H{"product": p})
}
