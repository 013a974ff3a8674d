package repository

import (
	"context"
	"strings"

	"loft_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaCatalog : produits, catégories, marques et géographie sur le
// keyspace catalogue. Les filtres de la page catégorie sont appliqués
// côté Go après un scan de partition, le volume du catalogue reste
// faible.
type ScyllaCatalog struct {
	session *gocql.Session
	ks      string
}

func NewScyllaCatalog(session *gocql.Session, keyspace string) *ScyllaCatalog {
	return &ScyllaCatalog{session: session, ks: keyspace}
}

func (s *ScyllaCatalog) Products() *ScyllaProducts     { return &ScyllaProducts{s} }
func (s *ScyllaCatalog) Categories() *ScyllaCategories { return &ScyllaCategories{s} }
func (s *ScyllaCatalog) Brands() *ScyllaBrands         { return &ScyllaBrands{s} }
func (s *ScyllaCatalog) Geo() *ScyllaGeo               { return &ScyllaGeo{s} }

func (s *ScyllaCatalog) table(name string) string {
	return s.ks + "." + name
}

// --- Produits ---

type ScyllaProducts struct{ c *ScyllaCatalog }

const productColumns = "product_id, title, description, price, quantity, discount, color_name, color_code, width, depth, height, category_id, brand_id, slug, image_urls, created_at"

func productDest(p *models.Product, brandID *gocql.UUID) []interface{} {
	return []interface{}{
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity, &p.Discount,
		&p.ColorName, &p.ColorCode, &p.Width, &p.Depth, &p.Height,
		&p.CategoryID, brandID, &p.Slug, &p.ImageURLs, &p.CreatedAt,
	}
}

func withBrand(p models.Product, brandID gocql.UUID) models.Product {
	var zero gocql.UUID
	if brandID != zero {
		id := brandID
		p.BrandID = &id
	}
	return p
}

func (r *ScyllaProducts) GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	var p models.Product
	var brandID gocql.UUID
	err := r.c.session.Query(
		"SELECT "+productColumns+" FROM "+r.c.table("products")+" WHERE product_id = ?", id,
	).WithContext(ctx).Scan(productDest(&p, &brandID)...)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p = withBrand(p, brandID)
	return &p, nil
}

func (r *ScyllaProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var productID gocql.UUID
	err := r.c.session.Query(
		"SELECT product_id FROM "+r.c.table("products_by_slug")+" WHERE slug = ?", slug,
	).WithContext(ctx).Scan(&productID)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, productID)
}

// GetByColor retrouve la déclinaison d'une couleur dans la même
// catégorie (et même marque si renseignée), pour le sélecteur de
// couleur de la fiche produit
func (r *ScyllaProducts) GetByColor(ctx context.Context, colorCode string, categoryID gocql.UUID, brandID *gocql.UUID) (*models.Product, error) {
	iter := r.c.session.Query(
		"SELECT "+productColumns+" FROM "+r.c.table("products")+" WHERE category_id = ? ALLOW FILTERING", categoryID,
	).WithContext(ctx).Iter()

	for {
		var p models.Product
		var bid gocql.UUID
		if !iter.Scan(productDest(&p, &bid)...) {
			break
		}
		p = withBrand(p, bid)
		if p.ColorCode != colorCode {
			continue
		}
		if brandID != nil && (p.BrandID == nil || *p.BrandID != *brandID) {
			continue
		}
		iter.Close()
		return &p, nil
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func (r *ScyllaProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	iter := r.c.session.Query(
		"SELECT " + productColumns + " FROM " + r.c.table("products"),
	).WithContext(ctx).Iter()

	products := []models.Product{}
	for {
		var p models.Product
		var bid gocql.UUID
		if !iter.Scan(productDest(&p, &bid)...) {
			break
		}
		p = withBrand(p, bid)
		if !matchesFilter(p, f) {
			continue
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return products, nil
}

func matchesFilter(p models.Product, f ProductFilter) bool {
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if p.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ColorName != "" && !strings.EqualFold(p.ColorName, f.ColorName) {
		return false
	}
	if f.BrandID != nil && (p.BrandID == nil || *p.BrandID != *f.BrandID) {
		return false
	}
	if f.PriceFrom != nil && p.EffectivePrice() < *f.PriceFrom {
		return false
	}
	if f.PriceTill != nil && p.EffectivePrice() > *f.PriceTill {
		return false
	}
	if f.DiscountOnly && p.Discount <= 0 {
		return false
	}
	return true
}

func (r *ScyllaProducts) Create(ctx context.Context, p *models.Product) error {
	var zero gocql.UUID
	if p.ID == zero {
		p.ID = gocql.TimeUUID()
	}
	var brandID gocql.UUID
	if p.BrandID != nil {
		brandID = *p.BrandID
	}
	if err := r.c.session.Query(
		"INSERT INTO "+r.c.table("products")+" ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Description, p.Price, p.Quantity, p.Discount,
		p.ColorName, p.ColorCode, p.Width, p.Depth, p.Height,
		p.CategoryID, brandID, p.Slug, p.ImageURLs, p.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return r.c.session.Query(
		"INSERT INTO "+r.c.table("products_by_slug")+" (slug, product_id) VALUES (?, ?)",
		p.Slug, p.ID,
	).WithContext(ctx).Exec()
}

// UpdateQuantity écrit le stock restant. Dans une transaction de
// finalisation, l'écriture est ajoutée au batch au lieu d'être exécutée
func (r *ScyllaProducts) UpdateQuantity(ctx context.Context, id gocql.UUID, quantity int) error {
	stmt := "UPDATE " + r.c.table("products") + " SET quantity = ? WHERE product_id = ?"
	if batch := batchFrom(ctx); batch != nil {
		batch.Query(stmt, quantity, id)
		return nil
	}
	return r.c.session.Query(stmt, quantity, id).WithContext(ctx).Exec()
}

// --- Catégories ---

type ScyllaCategories struct{ c *ScyllaCatalog }

const categoryColumns = "category_id, title, icon_url, slug, parent_id"

func withParent(c models.Category, parentID gocql.UUID) models.Category {
	var zero gocql.UUID
	if parentID != zero {
		id := parentID
		c.ParentID = &id
	}
	return c
}

func (r *ScyllaCategories) list(ctx context.Context, keep func(models.Category) bool) ([]models.Category, error) {
	iter := r.c.session.Query(
		"SELECT " + categoryColumns + " FROM " + r.c.table("categories"),
	).WithContext(ctx).Iter()

	categories := []models.Category{}
	for {
		var cat models.Category
		var parentID gocql.UUID
		if !iter.Scan(&cat.ID, &cat.Title, &cat.IconURL, &cat.Slug, &parentID) {
			break
		}
		cat = withParent(cat, parentID)
		if keep(cat) {
			categories = append(categories, cat)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ScyllaCategories) Roots(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, func(c models.Category) bool { return c.ParentID == nil })
}

func (r *ScyllaCategories) Subcategories(ctx context.Context, parentID gocql.UUID) ([]models.Category, error) {
	return r.list(ctx, func(c models.Category) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	})
}

func (r *ScyllaCategories) get(ctx context.Context, where string, arg interface{}) (*models.Category, error) {
	var cat models.Category
	var parentID gocql.UUID
	err := r.c.session.Query(
		"SELECT "+categoryColumns+" FROM "+r.c.table("categories")+" "+where, arg,
	).WithContext(ctx).Scan(&cat.ID, &cat.Title, &cat.IconURL, &cat.Slug, &parentID)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cat = withParent(cat, parentID)
	return &cat, nil
}

func (r *ScyllaCategories) GetByID(ctx context.Context, id gocql.UUID) (*models.Category, error) {
	return r.get(ctx, "WHERE category_id = ?", id)
}

func (r *ScyllaCategories) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.get(ctx, "WHERE slug = ? ALLOW FILTERING", slug)
}

func (r *ScyllaCategories) GetByTitle(ctx context.Context, title string) (*models.Category, error) {
	return r.get(ctx, "WHERE title = ? ALLOW FILTERING", title)
}

// --- Marques ---

type ScyllaBrands struct{ c *ScyllaCatalog }

func (r *ScyllaBrands) GetByID(ctx context.Context, id gocql.UUID) (*models.Brand, error) {
	var b models.Brand
	err := r.c.session.Query(
		"SELECT brand_id, title FROM "+r.c.table("brands")+" WHERE brand_id = ?", id,
	).WithContext(ctx).Scan(&b.ID, &b.Title)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ScyllaBrands) GetByTitle(ctx context.Context, title string) (*models.Brand, error) {
	var b models.Brand
	err := r.c.session.Query(
		"SELECT brand_id, title FROM "+r.c.table("brands")+" WHERE title = ? ALLOW FILTERING", title,
	).WithContext(ctx).Scan(&b.ID, &b.Title)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ScyllaBrands) List(ctx context.Context) ([]models.Brand, error) {
	iter := r.c.session.Query(
		"SELECT brand_id, title FROM " + r.c.table("brands"),
	).WithContext(ctx).Iter()

	brands := []models.Brand{}
	var b models.Brand
	for iter.Scan(&b.ID, &b.Title) {
		brands = append(brands, b)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return brands, nil
}

// --- Géographie (formulaire de livraison) ---

type ScyllaGeo struct{ c *ScyllaCatalog }

func (r *ScyllaGeo) Regions(ctx context.Context) ([]models.Region, error) {
	iter := r.c.session.Query(
		"SELECT region_id, title FROM " + r.c.table("regions"),
	).WithContext(ctx).Iter()

	regions := []models.Region{}
	var reg models.Region
	for iter.Scan(&reg.ID, &reg.Title) {
		regions = append(regions, reg)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *ScyllaGeo) CitiesByRegion(ctx context.Context, regionID gocql.UUID) ([]models.City, error) {
	iter := r.c.session.Query(
		"SELECT city_id, region_id, title FROM "+r.c.table("cities")+" WHERE region_id = ?", regionID,
	).WithContext(ctx).Iter()

	cities := []models.City{}
	var city models.City
	for iter.Scan(&city.ID, &city.RegionID, &city.Title) {
		cities = append(cities, city)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *ScyllaGeo) GetRegion(ctx context.Context, id gocql.UUID) (*models.Region, error) {
	var reg models.Region
	err := r.c.session.Query(
		"SELECT region_id, title FROM "+r.c.table("regions")+" WHERE region_id = ?", id,
	).WithContext(ctx).Scan(&reg.ID, &reg.Title)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *ScyllaGeo) GetCity(ctx context.Context, id gocql.UUID) (*models.City, error) {
	var city models.City
	err := r.c.session.Query(
		"SELECT city_id, region_id, title FROM "+r.c.table("cities")+" WHERE city_id = ? ALLOW FILTERING", id,
	).WithContext(ctx).Scan(&city.ID, &city.RegionID, &city.Title)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}
