package handlers

import (
	"net/http"

	"loft_back_end/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

//
// 🟢 GET /api/regions
//
func GetRegions(c *gin.Context) {
	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	regions, err := a.Catalog.Geo().Regions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture régions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

//
// 🟢 GET /api/regions/:id/cities
//
func GetCities(c *gin.Context) {
	regionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID région invalide"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cities, err := a.Catalog.Geo().CitiesByRegion(c.Request.Context(), gocql.UUID(regionID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture villes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
