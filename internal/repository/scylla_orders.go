package repository

import (
	"context"
	"time"

	"loft_back_end/internal/database"
	"loft_back_end/internal/models"

	"github.com/gocql/gocql"
)

type scyllaBatchKey struct{}

// batchFrom retourne le batch de la transaction en cours, ou nil hors
// transaction
func batchFrom(ctx context.Context) *gocql.Batch {
	if b, ok := ctx.Value(scyllaBatchKey{}).(*gocql.Batch); ok {
		return b
	}
	return nil
}

// ScyllaTx regroupe les écritures d'une finalisation de paiement dans
// un batch loggé : soit toutes les mutations (stocks + flag payment)
// sont appliquées, soit aucune. Les tables étant qualifiées par
// keyspace, un seul batch couvre catalogue et commandes.
type ScyllaTx struct {
	session *gocql.Session
}

func NewScyllaTx(session *gocql.Session) *ScyllaTx {
	return &ScyllaTx{session: session}
}

func (t *ScyllaTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	batch := t.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	if err := fn(context.WithValue(ctx, scyllaBatchKey{}, batch)); err != nil {
		return err
	}
	if len(batch.Entries) == 0 {
		return nil
	}
	return t.session.ExecuteBatch(batch)
}

// ScyllaOrders : clients, commandes, lignes et adresses de livraison
// sur le keyspace commandes
type ScyllaOrders struct {
	session *gocql.Session
	ks      string
}

func NewScyllaOrders(session *gocql.Session, keyspace string) *ScyllaOrders {
	return &ScyllaOrders{session: session, ks: keyspace}
}

func (s *ScyllaOrders) Customers() *ScyllaCustomers { return &ScyllaCustomers{s} }
func (s *ScyllaOrders) Orders() *ScyllaOrderRepo    { return &ScyllaOrderRepo{s} }
func (s *ScyllaOrders) Lines() *ScyllaOrderLines    { return &ScyllaOrderLines{s} }
func (s *ScyllaOrders) Addresses() *ScyllaAddresses { return &ScyllaAddresses{s} }

func (s *ScyllaOrders) table(name string) string {
	return s.ks + "." + name
}

// --- Clients ---

type ScyllaCustomers struct{ o *ScyllaOrders }

func (r *ScyllaCustomers) FindByUser(ctx context.Context, userID string) (*models.Customer, error) {
	var customerID gocql.UUID
	var err error
	if stmt := database.GetPreparedGetCustomerByUser(); stmt != nil {
		err = stmt.Bind(userID).WithContext(ctx).Scan(&customerID)
	} else {
		err = r.o.session.Query(
			"SELECT customer_id FROM "+r.o.table("customers_by_user")+" WHERE user_id = ?", userID,
		).WithContext(ctx).Scan(&customerID)
	}
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var c models.Customer
	err = r.o.session.Query(
		"SELECT customer_id, user_id, first_name, last_name, telegram FROM "+r.o.table("customers")+" WHERE customer_id = ?",
		customerID,
	).WithContext(ctx).Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Telegram)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ScyllaCustomers) GetByID(ctx context.Context, id gocql.UUID) (*models.Customer, error) {
	var c models.Customer
	err := r.o.session.Query(
		"SELECT customer_id, user_id, first_name, last_name, telegram FROM "+r.o.table("customers")+" WHERE customer_id = ?", id,
	).WithContext(ctx).Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Telegram)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ScyllaCustomers) Create(ctx context.Context, c *models.Customer) error {
	var zero gocql.UUID
	if c.ID == zero {
		c.ID = gocql.TimeUUID()
	}
	if err := r.o.session.Query(
		"INSERT INTO "+r.o.table("customers")+" (customer_id, user_id, first_name, last_name, telegram) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.FirstName, c.LastName, c.Telegram,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return r.o.session.Query(
		"INSERT INTO "+r.o.table("customers_by_user")+" (user_id, customer_id) VALUES (?, ?)",
		c.UserID, c.ID,
	).WithContext(ctx).Exec()
}

func (r *ScyllaCustomers) Update(ctx context.Context, c *models.Customer) error {
	return r.o.session.Query(
		"UPDATE "+r.o.table("customers")+" SET first_name = ?, last_name = ?, telegram = ? WHERE customer_id = ?",
		c.FirstName, c.LastName, c.Telegram, c.ID,
	).WithContext(ctx).Exec()
}

// --- Commandes ---

type ScyllaOrderRepo struct{ o *ScyllaOrders }

const orderColumns = "order_id, customer_id, payment, is_completed, shipping, created_at"

func (r *ScyllaOrderRepo) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.o.session.Query(
		"SELECT "+orderColumns+" FROM "+r.o.table("orders")+" WHERE order_id = ?", id,
	).WithContext(ctx).Scan(&ord.ID, &ord.CustomerID, &ord.Payment, &ord.IsCompleted, &ord.Shipping, &ord.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *ScyllaOrderRepo) listByCustomer(ctx context.Context, customerID gocql.UUID) ([]models.Order, error) {
	var iter *gocql.Iter
	if stmt := database.GetPreparedGetOpenOrdersByCustomer(); stmt != nil {
		iter = stmt.Bind(customerID).WithContext(ctx).Iter()
	} else {
		iter = r.o.session.Query(
			"SELECT order_id FROM "+r.o.table("orders_by_customer")+" WHERE customer_id = ?", customerID,
		).WithContext(ctx).Iter()
	}

	ids := []gocql.UUID{}
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	orders := []models.Order{}
	for _, id := range ids {
		ord, err := r.GetByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}
	return orders, nil
}

// FindOpenByCustomer retourne le panier ouvert du client (payment=false)
func (r *ScyllaOrderRepo) FindOpenByCustomer(ctx context.Context, customerID gocql.UUID) (*models.Order, error) {
	orders, err := r.listByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if !orders[i].Payment {
			return &orders[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *ScyllaOrderRepo) ListPaidByCustomer(ctx context.Context, customerID gocql.UUID) ([]models.Order, error) {
	orders, err := r.listByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	paid := []models.Order{}
	for _, ord := range orders {
		if ord.Payment {
			paid = append(paid, ord)
		}
	}
	return paid, nil
}

func (r *ScyllaOrderRepo) Create(ctx context.Context, ord *models.Order) error {
	var zero gocql.UUID
	if ord.ID == zero {
		ord.ID = gocql.TimeUUID()
	}
	if ord.CreatedAt.IsZero() {
		ord.CreatedAt = time.Now()
	}
	if err := r.o.session.Query(
		"INSERT INTO "+r.o.table("orders")+" ("+orderColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		ord.ID, ord.CustomerID, ord.Payment, ord.IsCompleted, ord.Shipping, ord.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return r.o.session.Query(
		"INSERT INTO "+r.o.table("orders_by_customer")+" (customer_id, order_id) VALUES (?, ?)",
		ord.CustomerID, ord.ID,
	).WithContext(ctx).Exec()
}

// Update écrit les flags de la commande. Dans une transaction de
// finalisation, l'écriture rejoint le batch
func (r *ScyllaOrderRepo) Update(ctx context.Context, ord *models.Order) error {
	stmt := "UPDATE " + r.o.table("orders") + " SET payment = ?, is_completed = ?, shipping = ? WHERE order_id = ?"
	if batch := batchFrom(ctx); batch != nil {
		batch.Query(stmt, ord.Payment, ord.IsCompleted, ord.Shipping, ord.ID)
		return nil
	}
	return r.o.session.Query(stmt, ord.Payment, ord.IsCompleted, ord.Shipping, ord.ID).WithContext(ctx).Exec()
}

// --- Lignes de commande ---

type ScyllaOrderLines struct{ o *ScyllaOrders }

const lineColumns = "order_id, product_id, line_id, quantity, added_at, updated_at"

func (r *ScyllaOrderLines) Find(ctx context.Context, orderID, productID gocql.UUID) (*models.OrderLine, error) {
	var l models.OrderLine
	err := r.o.session.Query(
		"SELECT "+lineColumns+" FROM "+r.o.table("order_lines")+" WHERE order_id = ? AND product_id = ?",
		orderID, productID,
	).WithContext(ctx).Scan(&l.OrderID, &l.ProductID, &l.ID, &l.Quantity, &l.AddedAt, &l.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ScyllaOrderLines) GetByID(ctx context.Context, lineID gocql.UUID) (*models.OrderLine, error) {
	var l models.OrderLine
	err := r.o.session.Query(
		"SELECT "+lineColumns+" FROM "+r.o.table("order_lines")+" WHERE line_id = ? ALLOW FILTERING", lineID,
	).WithContext(ctx).Scan(&l.OrderID, &l.ProductID, &l.ID, &l.Quantity, &l.AddedAt, &l.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ScyllaOrderLines) ListByOrder(ctx context.Context, orderID gocql.UUID) ([]models.OrderLine, error) {
	iter := r.o.session.Query(
		"SELECT "+lineColumns+" FROM "+r.o.table("order_lines")+" WHERE order_id = ?", orderID,
	).WithContext(ctx).Iter()

	lines := []models.OrderLine{}
	var l models.OrderLine
	for iter.Scan(&l.OrderID, &l.ProductID, &l.ID, &l.Quantity, &l.AddedAt, &l.UpdatedAt) {
		lines = append(lines, l)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *ScyllaOrderLines) Save(ctx context.Context, l *models.OrderLine) error {
	var zero gocql.UUID
	if l.ID == zero {
		l.ID = gocql.TimeUUID()
	}
	now := time.Now()
	if l.AddedAt.IsZero() {
		l.AddedAt = now
	}
	l.UpdatedAt = now
	return r.o.session.Query(
		"INSERT INTO "+r.o.table("order_lines")+" ("+lineColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		l.OrderID, l.ProductID, l.ID, l.Quantity, l.AddedAt, l.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaOrderLines) Delete(ctx context.Context, orderID, productID gocql.UUID) error {
	return r.o.session.Query(
		"DELETE FROM "+r.o.table("order_lines")+" WHERE order_id = ? AND product_id = ?",
		orderID, productID,
	).WithContext(ctx).Exec()
}

// --- Adresses de livraison ---

type ScyllaAddresses struct{ o *ScyllaOrders }

const addressColumns = "order_id, address_id, customer_id, region_id, city_id, address, phone, comment, created_at"

func (r *ScyllaAddresses) ExistsForOrder(ctx context.Context, orderID gocql.UUID) (bool, error) {
	var addressID gocql.UUID
	err := r.o.session.Query(
		"SELECT address_id FROM "+r.o.table("shipping_addresses")+" WHERE order_id = ?", orderID,
	).WithContext(ctx).Scan(&addressID)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ScyllaAddresses) GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.ShippingAddress, error) {
	var a models.ShippingAddress
	err := r.o.session.Query(
		"SELECT "+addressColumns+" FROM "+r.o.table("shipping_addresses")+" WHERE order_id = ?", orderID,
	).WithContext(ctx).Scan(&a.OrderID, &a.ID, &a.CustomerID, &a.RegionID, &a.CityID, &a.Address, &a.Phone, &a.Comment, &a.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create insère l'adresse en IF NOT EXISTS : la première écriture pour
// une commande gagne, les suivantes sont ignorées sans erreur
func (r *ScyllaAddresses) Create(ctx context.Context, a *models.ShippingAddress) error {
	var zero gocql.UUID
	if a.ID == zero {
		a.ID = gocql.TimeUUID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	previous := map[string]interface{}{}
	applied, err := r.o.session.Query(
		"INSERT INTO "+r.o.table("shipping_addresses")+" ("+addressColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS",
		a.OrderID, a.ID, a.CustomerID, a.RegionID, a.CityID, a.Address, a.Phone, a.Comment, a.CreatedAt,
	).WithContext(ctx).MapScanCAS(previous)
	if err != nil {
		return err
	}
	if !applied {
		// une adresse existe déjà pour cette commande
		return ErrConflict
	}
	return nil
}
