package database

import (
	"log"

	"github.com/gocql/gocql"
)

// Requêtes chaudes des chemins login et panier. gocql prépare chaque
// chaîne à sa première exécution et met le statement en cache par
// session ; chaque getter rend donc un *gocql.Query neuf. Un Bind sur
// une requête partagée entre goroutines serait une course : les valeurs
// sont posées avant la copie faite par WithContext.
const (
	cqlGetUserByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"
	cqlGetUserByID    = "SELECT email, password, first_name, last_name, provider, provider_id, created_at, updated_at FROM users WHERE user_id = ?"

	cqlGetCustomerByUser       = "SELECT customer_id FROM customers_by_user WHERE user_id = ?"
	cqlGetOpenOrdersByCustomer = "SELECT order_id FROM orders_by_customer WHERE customer_id = ?"
)

// InitPreparedStatements vérifie au démarrage que les sessions des
// requêtes chaudes sont disponibles
func InitPreparedStatements() {
	if _, err := GetUsersSession(); err != nil {
		log.Printf("⚠️ Session users indisponible pour les requêtes préparées: %v", err)
		return
	}
	if _, err := GetOrdersSession(); err != nil {
		log.Printf("⚠️ Session commandes indisponible pour les requêtes préparées: %v", err)
		return
	}
	log.Println("✅ Prepared statements initialisés")
}

func GetPreparedGetUserByEmail() *gocql.Query {
	session, err := GetUsersSession()
	if err != nil {
		return nil
	}
	return session.Query(cqlGetUserByEmail)
}

func GetPreparedGetUserByID() *gocql.Query {
	session, err := GetUsersSession()
	if err != nil {
		return nil
	}
	return session.Query(cqlGetUserByID)
}

func GetPreparedGetCustomerByUser() *gocql.Query {
	session, err := GetOrdersSession()
	if err != nil {
		return nil
	}
	return session.Query(cqlGetCustomerByUser)
}

func GetPreparedGetOpenOrdersByCustomer() *gocql.Query {
	session, err := GetOrdersSession()
	if err != nil {
		return nil
	}
	return session.Query(cqlGetOpenOrdersByCustomer)
}
