package app

import (
	"fmt"
	"os"
	"sync"

	"loft_back_end/internal/cart"
	"loft_back_end/internal/checkout"
	"loft_back_end/internal/database"
	"loft_back_end/internal/favorites"
	"loft_back_end/internal/repository"
)

// Container regroupe les dépôts et services construits une seule fois
// sur les sessions ScyllaDB partagées. Le manager de panier doit être
// un singleton : ses verrous par client ne servent à rien s'il est
// reconstruit à chaque requête.
type Container struct {
	Catalog  *repository.ScyllaCatalog
	Orders   *repository.ScyllaOrders
	Accounts *repository.ScyllaUsers

	Cart      *cart.Manager
	Checkout  *checkout.Service
	Favorites *favorites.Service
}

var (
	once      sync.Once
	container *Container
	initErr   error
)

// Get retourne le conteneur applicatif, construit au premier appel
func Get() (*Container, error) {
	once.Do(build)
	return container, initErr
}

func build() {
	catalogSession, err := database.GetCatalogSession()
	if err != nil {
		initErr = fmt.Errorf("session catalogue: %v", err)
		return
	}
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		initErr = fmt.Errorf("session commandes: %v", err)
		return
	}
	usersSession, err := database.GetUsersSession()
	if err != nil {
		initErr = fmt.Errorf("session users: %v", err)
		return
	}

	catalog := repository.NewScyllaCatalog(catalogSession, os.Getenv("SCYLLA_KS_CATALOG_KEYSPACE"))
	orders := repository.NewScyllaOrders(ordersSession, os.Getenv("SCYLLA_KS_ORDERS_KEYSPACE"))
	accounts := repository.NewScyllaUsers(usersSession, os.Getenv("SCYLLA_KS_USERS_KEYSPACE"))

	cartManager := cart.NewManager(
		catalog.Products(),
		orders.Customers(),
		orders.Orders(),
		orders.Lines(),
		repository.NewScyllaTx(ordersSession),
	)

	checkoutService := checkout.NewService(
		cartManager,
		orders.Customers(),
		orders.Addresses(),
		catalog.Geo(),
		checkout.NewStripeGateway(),
	)
	frontURL := os.Getenv("FRONTEND_URL")
	if frontURL == "" {
		frontURL = "http://localhost:3000"
	}
	checkoutService.SuccessURL = frontURL + "/order/success"
	checkoutService.CancelURL = frontURL + "/order/cancel"

	container = &Container{
		Catalog:   catalog,
		Orders:    orders,
		Accounts:  accounts,
		Cart:      cartManager,
		Checkout:  checkoutService,
		Favorites: favorites.NewService(accounts.Favorites(), catalog.Products()),
	}
}
