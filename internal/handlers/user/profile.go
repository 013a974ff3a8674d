package user

import (
	"errors"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/profile
//
func GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	user, err := a.Accounts.Users().GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Le profil est optionnel : un compte neuf n'en a pas encore
	profile, err := a.Accounts.Profiles().Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = &models.Profile{UserID: userID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

//
// 🟢 PUT /api/profile
//
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		City      string `json:"city"`
		Street    string `json:"street"`
		Home      string `json:"home"`
		Flat      string `json:"flat"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	user, err := a.Accounts.Users().GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if err := a.Accounts.Users().Update(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour utilisateur"})
		return
	}

	profile := &models.Profile{
		UserID: userID,
		Phone:  input.Phone,
		City:   input.City,
		Street: input.Street,
		Home:   input.Home,
		Flat:   input.Flat,
	}
	if err := a.Accounts.Profiles().Upsert(ctx, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}
