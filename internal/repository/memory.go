package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"loft_back_end/internal/models"

	"github.com/gocql/gocql"
)

// MemoryStore : état partagé des dépôts in-memory + TxManager.
// Utilisé par les tests et comme référence des sémantiques transactionnelles.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[gocql.UUID]models.Product
	categories map[gocql.UUID]models.Category
	brands     map[gocql.UUID]models.Brand
	customers  map[gocql.UUID]models.Customer
	orders     map[gocql.UUID]models.Order
	lines      map[gocql.UUID]models.OrderLine
	addresses  map[gocql.UUID]models.ShippingAddress
	favorites  map[string]map[gocql.UUID]models.FavoriteProduct
	regions    map[gocql.UUID]models.Region
	cities     map[gocql.UUID]models.City
	users      map[string]models.User
	profiles   map[string]models.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[gocql.UUID]models.Product),
		categories: make(map[gocql.UUID]models.Category),
		brands:     make(map[gocql.UUID]models.Brand),
		customers:  make(map[gocql.UUID]models.Customer),
		orders:     make(map[gocql.UUID]models.Order),
		lines:      make(map[gocql.UUID]models.OrderLine),
		addresses:  make(map[gocql.UUID]models.ShippingAddress),
		favorites:  make(map[string]map[gocql.UUID]models.FavoriteProduct),
		regions:    make(map[gocql.UUID]models.Region),
		cities:     make(map[gocql.UUID]models.City),
		users:      make(map[string]models.User),
		profiles:   make(map[string]models.Profile),
	}
}

// Accesseurs typés : une vue par dépôt sur le même état partagé
func (m *MemoryStore) Products() *MemoryProducts     { return &MemoryProducts{m} }
func (m *MemoryStore) Categories() *MemoryCategories { return &MemoryCategories{m} }
func (m *MemoryStore) Brands() *MemoryBrands         { return &MemoryBrands{m} }
func (m *MemoryStore) Customers() *MemoryCustomers   { return &MemoryCustomers{m} }
func (m *MemoryStore) Orders() *MemoryOrders         { return &MemoryOrders{m} }
func (m *MemoryStore) Lines() *MemoryLines           { return &MemoryLines{m} }
func (m *MemoryStore) Addresses() *MemoryAddresses   { return &MemoryAddresses{m} }
func (m *MemoryStore) Favorites() *MemoryFavorites   { return &MemoryFavorites{m} }
func (m *MemoryStore) Geo() *MemoryGeo               { return &MemoryGeo{m} }
func (m *MemoryStore) Users() *MemoryUsers           { return &MemoryUsers{m} }
func (m *MemoryStore) Profiles() *MemoryProfiles     { return &MemoryProfiles{m} }

// --- verrouillage sensible aux transactions ---
// Dans une transaction le verrou global est déjà pris : les helpers
// ne reverrouillent pas.

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, ok := ctx.Value(txKey{}).(bool)
	return ok && v
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Unlock()
	}
}

// WithTransaction exécute fn sous le verrou global d'écriture.
// En cas d'erreur, produits, commandes et lignes sont restaurés tels
// qu'avant l'appel : pas de décrément de stock partiel possible.
func (m *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	backupProducts := cloneMap(m.products)
	backupOrders := cloneMap(m.orders)
	backupLines := cloneMap(m.lines)

	err := fn(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		m.products = backupProducts
		m.orders = backupOrders
		m.lines = backupLines
	}
	return err
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// --- Produits ---

type MemoryProducts struct{ s *MemoryStore }

func (r *MemoryProducts) GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	p, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, p := range r.s.products {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryProducts) GetByColor(ctx context.Context, colorCode string, categoryID gocql.UUID, brandID *gocql.UUID) (*models.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, p := range r.s.products {
		if p.ColorCode != colorCode || p.CategoryID != categoryID {
			continue
		}
		if brandID != nil && (p.BrandID == nil || *p.BrandID != *brandID) {
			continue
		}
		cp := p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []models.Product
	for _, p := range r.s.products {
		if len(f.CategoryIDs) > 0 && !containsUUID(f.CategoryIDs, p.CategoryID) {
			continue
		}
		if f.ColorName != "" && p.ColorName != f.ColorName {
			continue
		}
		if f.BrandID != nil && (p.BrandID == nil || *p.BrandID != *f.BrandID) {
			continue
		}
		if f.PriceFrom != nil && p.Price < *f.PriceFrom {
			continue
		}
		if f.PriceTill != nil && p.Price > *f.PriceTill {
			continue
		}
		if f.DiscountOnly && p.Discount <= 0 {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryProducts) Create(ctx context.Context, p *models.Product) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *MemoryProducts) UpdateQuantity(ctx context.Context, id gocql.UUID, quantity int) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	p, ok := r.s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Quantity = quantity
	r.s.products[id] = p
	return nil
}

func containsUUID(ids []gocql.UUID, id gocql.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// --- Catégories ---

type MemoryCategories struct{ s *MemoryStore }

func (r *MemoryCategories) Roots(ctx context.Context) ([]models.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.Category
	for _, c := range r.s.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryCategories) Subcategories(ctx context.Context, parentID gocql.UUID) ([]models.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.Category
	for _, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryCategories) GetByID(ctx context.Context, id gocql.UUID) (*models.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	c, ok := r.s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCategories) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, c := range r.s.categories {
		if c.Slug == slug {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCategories) GetByTitle(ctx context.Context, title string) (*models.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, c := range r.s.categories {
		if c.Title == title {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCategories) Create(ctx context.Context, c *models.Category) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	r.s.categories[c.ID] = *c
	return nil
}

// --- Marques ---

type MemoryBrands struct{ s *MemoryStore }

func (r *MemoryBrands) GetByID(ctx context.Context, id gocql.UUID) (*models.Brand, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	b, ok := r.s.brands[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBrands) GetByTitle(ctx context.Context, title string) (*models.Brand, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, b := range r.s.brands {
		if b.Title == title {
			cp := b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryBrands) List(ctx context.Context) ([]models.Brand, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.Brand
	for _, b := range r.s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryBrands) Create(ctx context.Context, b *models.Brand) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if b.ID == (gocql.UUID{}) {
		b.ID = gocql.TimeUUID()
	}
	r.s.brands[b.ID] = *b
	return nil
}

// --- Clients ---

type MemoryCustomers struct{ s *MemoryStore }

func (r *MemoryCustomers) FindByUser(ctx context.Context, userID string) (*models.Customer, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, c := range r.s.customers {
		if c.UserID == userID {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCustomers) Create(ctx context.Context, c *models.Customer) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *MemoryCustomers) Update(ctx context.Context, c *models.Customer) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if _, ok := r.s.customers[c.ID]; !ok {
		return ErrNotFound
	}
	r.s.customers[c.ID] = *c
	return nil
}

// --- Commandes ---

type MemoryOrders struct{ s *MemoryStore }

func (r *MemoryOrders) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOrders) FindOpenByCustomer(ctx context.Context, customerID gocql.UUID) (*models.Order, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, o := range r.s.orders {
		if o.CustomerID == customerID && !o.Payment {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOrders) ListPaidByCustomer(ctx context.Context, customerID gocql.UUID) ([]models.Order, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID && o.Payment {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrders) Create(ctx context.Context, o *models.Order) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if o.ID == (gocql.UUID{}) {
		o.ID = gocql.TimeUUID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	r.s.orders[o.ID] = *o
	return nil
}

func (r *MemoryOrders) Update(ctx context.Context, o *models.Order) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if _, ok := r.s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	r.s.orders[o.ID] = *o
	return nil
}

// --- Lignes de commande ---

type MemoryLines struct{ s *MemoryStore }

func (r *MemoryLines) Find(ctx context.Context, orderID, productID gocql.UUID) (*models.OrderLine, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, l := range r.s.lines {
		if l.OrderID == orderID && l.ProductID == productID {
			cp := l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryLines) GetByID(ctx context.Context, lineID gocql.UUID) (*models.OrderLine, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	l, ok := r.s.lines[lineID]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (r *MemoryLines) ListByOrder(ctx context.Context, orderID gocql.UUID) ([]models.OrderLine, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.OrderLine
	for _, l := range r.s.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *MemoryLines) Save(ctx context.Context, l *models.OrderLine) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if l.ID == (gocql.UUID{}) {
		l.ID = gocql.TimeUUID()
		l.AddedAt = time.Now()
	}
	l.UpdatedAt = time.Now()
	r.s.lines[l.ID] = *l
	return nil
}

func (r *MemoryLines) Delete(ctx context.Context, orderID, productID gocql.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	for id, l := range r.s.lines {
		if l.OrderID == orderID && l.ProductID == productID {
			delete(r.s.lines, id)
			return nil
		}
	}
	return ErrNotFound
}

// --- Adresses de livraison ---

type MemoryAddresses struct{ s *MemoryStore }

func (r *MemoryAddresses) ExistsForOrder(ctx context.Context, orderID gocql.UUID) (bool, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, a := range r.s.addresses {
		if a.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryAddresses) GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.ShippingAddress, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, a := range r.s.addresses {
		if a.OrderID == orderID {
			cp := a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAddresses) Create(ctx context.Context, a *models.ShippingAddress) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	for _, existing := range r.s.addresses {
		if existing.OrderID == a.OrderID {
			return ErrConflict
		}
	}
	if a.ID == (gocql.UUID{}) {
		a.ID = gocql.TimeUUID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.s.addresses[a.ID] = *a
	return nil
}

// --- Favoris ---

type MemoryFavorites struct{ s *MemoryStore }

func (r *MemoryFavorites) Exists(ctx context.Context, userID string, productID gocql.UUID) (bool, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	_, ok := r.s.favorites[userID][productID]
	return ok, nil
}

func (r *MemoryFavorites) Add(ctx context.Context, f *models.FavoriteProduct) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if r.s.favorites[f.UserID] == nil {
		r.s.favorites[f.UserID] = make(map[gocql.UUID]models.FavoriteProduct)
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now()
	}
	r.s.favorites[f.UserID][f.ProductID] = *f
	return nil
}

func (r *MemoryFavorites) Remove(ctx context.Context, userID string, productID gocql.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if _, ok := r.s.favorites[userID][productID]; !ok {
		return ErrNotFound
	}
	delete(r.s.favorites[userID], productID)
	return nil
}

func (r *MemoryFavorites) ListByUser(ctx context.Context, userID string) ([]gocql.UUID, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	favs := r.s.favorites[userID]
	out := make([]gocql.UUID, 0, len(favs))
	for id := range favs {
		out = append(out, id)
	}
	return out, nil
}

// --- Régions et villes ---

type MemoryGeo struct{ s *MemoryStore }

func (r *MemoryGeo) Regions(ctx context.Context) ([]models.Region, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.Region
	for _, reg := range r.s.regions {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryGeo) CitiesByRegion(ctx context.Context, regionID gocql.UUID) ([]models.City, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	var out []models.City
	for _, c := range r.s.cities {
		if c.RegionID == regionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryGeo) GetRegion(ctx context.Context, id gocql.UUID) (*models.Region, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	reg, ok := r.s.regions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (r *MemoryGeo) GetCity(ctx context.Context, id gocql.UUID) (*models.City, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	c, ok := r.s.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryGeo) CreateRegion(ctx context.Context, reg *models.Region) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if reg.ID == (gocql.UUID{}) {
		reg.ID = gocql.TimeUUID()
	}
	r.s.regions[reg.ID] = *reg
	return nil
}

func (r *MemoryGeo) CreateCity(ctx context.Context, c *models.City) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	r.s.cities[c.ID] = *c
	return nil
}

// --- Utilisateurs et profils ---

type MemoryUsers struct{ s *MemoryStore }

func (r *MemoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) FindByEmail(ctx context.Context, email, provider string) (*models.User, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	for _, u := range r.s.users {
		if u.Email == email && u.Provider == provider {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	r.s.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) Update(ctx context.Context, u *models.User) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	if _, ok := r.s.users[u.ID]; !ok {
		return ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

type MemoryProfiles struct{ s *MemoryStore }

func (r *MemoryProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)
	r.s.profiles[p.UserID] = *p
	return nil
}
