package auth

import (
	"context"

	"loft_back_end/internal/config"

	"golang.org/x/oauth2"
)

// OAuthProvider : échange de code d'autorisation pour les clients
// mobiles, hors du flux web goth
type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
}

func Google() *OAuthProvider {
	return &OAuthProvider{Name: "google", Config: config.GoogleOAuthConfig}
}

func (p *OAuthProvider) GetAuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *OAuthProvider) Exchange(code string) (*oauth2.Token, error) {
	return p.Config.Exchange(context.Background(), code)
}
