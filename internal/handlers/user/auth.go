package user

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/auth"
	"loft_back_end/internal/cache"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
	"loft_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ================== AUTH LOCALE ==================

func CreateUser(c *gin.Context) {
	var input struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris pour un compte local ?
	ctx := c.Request.Context()
	if _, err := a.Accounts.Users().FindByEmail(ctx, input.Email, "local"); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     input.Email,
		Password:  hashedPassword,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Provider:  "local",
	}

	if err := a.Accounts.Users().Create(ctx, &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"userId":     user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	user, err := a.Accounts.Users().FindByEmail(c.Request.Context(), input.Email, "local")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	// Vérification rapide via cache, sinon Argon2
	valid, _ := cache.GetPasswordHashFromCache(input.Email, input.Password)
	if !valid {
		ok, err := utils.VerifyPassword(input.Password, user.Password)
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
			return
		}
		cache.SetPasswordHashInCache(input.Email, input.Password)
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"userId":     user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

// ================== AUTH GOOGLE (MOBILE) ==================

// GoogleTokenLogin échange un code d'autorisation Google côté mobile
// contre un JWT applicatif
func GoogleTokenLogin(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	provider := auth.Google()
	token, err := provider.Exchange(input.Code)
	if err != nil {
		log.Printf("❌ Échange code Google échoué: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code Google invalide"})
		return
	}

	client := provider.Config.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur récupération profil Google"})
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(body, &info); err != nil || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Profil Google invalide"})
		return
	}

	jwtToken, user, err := upsertOAuthUser(c, "google", info.ID, info.Email, info.GivenName, info.FamilyName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  jwtToken,
		"userId": user.ID,
		"email":  user.Email,
	})
}

// upsertOAuthUser retrouve ou crée le compte lié au provider social
func upsertOAuthUser(c *gin.Context, provider, providerID, email, firstName, lastName string) (string, *models.User, error) {
	a, err := app.Get()
	if err != nil {
		return "", nil, err
	}

	ctx := c.Request.Context()
	user, err := a.Accounts.Users().FindByEmail(ctx, email, provider)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{
			ID:         uuid.NewString(),
			Email:      email,
			FirstName:  firstName,
			LastName:   lastName,
			Provider:   provider,
			ProviderID: providerID,
		}
		if err := a.Accounts.Users().Create(ctx, user); err != nil {
			return "", nil, err
		}
	} else if err != nil {
		return "", nil, err
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
