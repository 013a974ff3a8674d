package handlers

import (
	"context"
	"errors"
	"net/http"

	"loft_back_end/internal/app"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
	"loft_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

type ctxKey string

const ProviderKey ctxKey = "provider"

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux social : le compte est retrouvé ou créé,
// puis un JWT applicatif est renvoyé
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := app.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	account, err := a.Accounts.Users().FindByEmail(ctx, gothUser.Email, provider)
	if errors.Is(err, repository.ErrNotFound) {
		account = &models.User{
			ID:         uuid.NewString(),
			Email:      gothUser.Email,
			FirstName:  gothUser.FirstName,
			LastName:   gothUser.LastName,
			Provider:   provider,
			ProviderID: gothUser.UserID,
		}
		if err := a.Accounts.Users().Create(ctx, account); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"userId":   account.ID,
		"email":    account.Email,
		"provider": provider,
	})
}
