package repository

import (
	"context"
	"time"

	"loft_back_end/internal/database"
	"loft_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaUsers : comptes, profils et favoris sur le keyspace users.
// Les lectures chaudes (login, lookup par id) passent par les prepared
// statements initialisés au démarrage.
type ScyllaUsers struct {
	session *gocql.Session
	ks      string
}

func NewScyllaUsers(session *gocql.Session, keyspace string) *ScyllaUsers {
	return &ScyllaUsers{session: session, ks: keyspace}
}

func (s *ScyllaUsers) Users() *ScyllaUserRepo      { return &ScyllaUserRepo{s} }
func (s *ScyllaUsers) Profiles() *ScyllaProfiles   { return &ScyllaProfiles{s} }
func (s *ScyllaUsers) Favorites() *ScyllaFavorites { return &ScyllaFavorites{s} }

func (s *ScyllaUsers) table(name string) string {
	return s.ks + "." + name
}

// --- Utilisateurs ---

type ScyllaUserRepo struct{ u *ScyllaUsers }

func (r *ScyllaUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u := models.User{ID: id}
	var createdAt, updatedAt time.Time

	var err error
	if stmt := database.GetPreparedGetUserByID(); stmt != nil {
		err = stmt.Bind(id).WithContext(ctx).Scan(
			&u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.Provider, &u.ProviderID, &createdAt, &updatedAt)
	} else {
		err = r.u.session.Query(
			"SELECT email, password, first_name, last_name, provider, provider_id, created_at, updated_at FROM "+r.u.table("users")+" WHERE user_id = ?", id,
		).WithContext(ctx).Scan(
			&u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.Provider, &u.ProviderID, &createdAt, &updatedAt)
	}
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !createdAt.IsZero() {
		u.CreatedAt = &createdAt
	}
	if !updatedAt.IsZero() {
		u.UpdatedAt = &updatedAt
	}
	return &u, nil
}

func (r *ScyllaUserRepo) FindByEmail(ctx context.Context, email, provider string) (*models.User, error) {
	var userID string
	var err error
	if stmt := database.GetPreparedGetUserByEmail(); stmt != nil {
		err = stmt.Bind(email).WithContext(ctx).Scan(&userID)
	} else {
		err = r.u.session.Query(
			"SELECT user_id FROM "+r.u.table("users_by_email")+" WHERE email = ?", email,
		).WithContext(ctx).Scan(&userID)
	}
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if provider != "" && u.Provider != provider {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *ScyllaUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.CreatedAt == nil {
		u.CreatedAt = &now
	}
	u.UpdatedAt = &now

	if err := r.u.session.Query(
		"INSERT INTO "+r.u.table("users")+" (user_id, email, password, first_name, last_name, provider, provider_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Password, u.FirstName, u.LastName, u.Provider, u.ProviderID, u.CreatedAt, u.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return r.u.session.Query(
		"INSERT INTO "+r.u.table("users_by_email")+" (email, user_id) VALUES (?, ?)",
		u.Email, u.ID,
	).WithContext(ctx).Exec()
}

func (r *ScyllaUserRepo) Update(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.UpdatedAt = &now
	return r.u.session.Query(
		"UPDATE "+r.u.table("users")+" SET first_name = ?, last_name = ?, updated_at = ? WHERE user_id = ?",
		u.FirstName, u.LastName, u.UpdatedAt, u.ID,
	).WithContext(ctx).Exec()
}

// --- Profils ---

type ScyllaProfiles struct{ u *ScyllaUsers }

func (r *ScyllaProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.u.session.Query(
		"SELECT user_id, phone, city, street, home, flat FROM "+r.u.table("profiles")+" WHERE user_id = ?", userID,
	).WithContext(ctx).Scan(&p.UserID, &p.Phone, &p.City, &p.Street, &p.Home, &p.Flat)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ScyllaProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	return r.u.session.Query(
		"INSERT INTO "+r.u.table("profiles")+" (user_id, phone, city, street, home, flat) VALUES (?, ?, ?, ?, ?, ?)",
		p.UserID, p.Phone, p.City, p.Street, p.Home, p.Flat,
	).WithContext(ctx).Exec()
}

// --- Favoris ---

type ScyllaFavorites struct{ u *ScyllaUsers }

func (r *ScyllaFavorites) Exists(ctx context.Context, userID string, productID gocql.UUID) (bool, error) {
	var added time.Time
	err := r.u.session.Query(
		"SELECT added_at FROM "+r.u.table("favorites")+" WHERE user_id = ? AND product_id = ?",
		userID, productID,
	).WithContext(ctx).Scan(&added)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ScyllaFavorites) Add(ctx context.Context, f *models.FavoriteProduct) error {
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now()
	}
	return r.u.session.Query(
		"INSERT INTO "+r.u.table("favorites")+" (user_id, product_id, added_at) VALUES (?, ?, ?)",
		f.UserID, f.ProductID, f.AddedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaFavorites) Remove(ctx context.Context, userID string, productID gocql.UUID) error {
	return r.u.session.Query(
		"DELETE FROM "+r.u.table("favorites")+" WHERE user_id = ? AND product_id = ?",
		userID, productID,
	).WithContext(ctx).Exec()
}

func (r *ScyllaFavorites) ListByUser(ctx context.Context, userID string) ([]gocql.UUID, error) {
	iter := r.u.session.Query(
		"SELECT product_id FROM "+r.u.table("favorites")+" WHERE user_id = ?", userID,
	).WithContext(ctx).Iter()

	ids := []gocql.UUID{}
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}
