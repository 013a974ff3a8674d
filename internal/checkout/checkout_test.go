package checkout

import (
	"context"
	"errors"
	"testing"

	"loft_back_end/internal/cart"
	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"
)

type fakeGateway struct {
	calls    int
	lastReq  SessionRequest
	failWith error
}

func (f *fakeGateway) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.failWith != nil {
		return "", f.failWith
	}
	return "https://pay.example/session/42", nil
}

func setup(t *testing.T) (*Service, *cart.Manager, *repository.MemoryStore, *fakeGateway) {
	t.Helper()
	store := repository.NewMemoryStore()
	manager := cart.NewManager(store.Products(), store.Customers(), store.Orders(), store.Lines(), store)
	gw := &fakeGateway{}
	svc := NewService(manager, store.Customers(), store.Addresses(), store.Geo(), gw)
	svc.SuccessURL = "https://loft.example/success"
	svc.CancelURL = "https://loft.example/checkout"
	return svc, manager, store, gw
}

func seedGeo(t *testing.T, store *repository.MemoryStore) (region models.Region, city models.City) {
	t.Helper()
	ctx := context.Background()
	region = models.Region{Title: "Île-de-France"}
	if err := store.Geo().CreateRegion(ctx, &region); err != nil {
		t.Fatalf("seed région: %v", err)
	}
	city = models.City{Title: "Paris", RegionID: region.ID}
	if err := store.Geo().CreateCity(ctx, &city); err != nil {
		t.Fatalf("seed ville: %v", err)
	}
	return region, city
}

func fillCart(t *testing.T, manager *cart.Manager, store *repository.MemoryStore, price float64, discount, count int) {
	t.Helper()
	ctx := context.Background()
	p := &models.Product{Title: "Canapé", Slug: "canape", Price: price, Quantity: 10, Discount: discount}
	if err := store.Products().Create(ctx, p); err != nil {
		t.Fatalf("seed produit: %v", err)
	}
	for i := 0; i < count; i++ {
		if _, err := manager.MutateLine(ctx, "user-1", "canape", cart.ActionAdd); err != nil {
			t.Fatalf("ajout panier: %v", err)
		}
	}
}

func validForm(region models.Region, city models.City) Form {
	return Form{
		FirstName: "Jean",
		LastName:  "Dupont",
		Telegram:  "@jdupont",
		RegionID:  region.ID.String(),
		CityID:    city.ID.String(),
		Address:   "12 rue de la Paix",
		Phone:     "+33600000000",
	}
}

func TestSubmitCreatesSession(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, gw := setup(t)
	region, city := seedGeo(t, store)
	fillCart(t, manager, store, 199.90, 0, 2)

	url, err := svc.Submit(ctx, "user-1", validForm(region, city))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if url != "https://pay.example/session/42" {
		t.Fatalf("URL de redirection inattendue: %s", url)
	}

	// round(399.80) × 100 = 40000
	if gw.lastReq.UnitAmount != 40000 {
		t.Fatalf("montant attendu 40000 unités mineures, obtenu %d", gw.lastReq.UnitAmount)
	}
	if gw.lastReq.Quantity != 1 {
		t.Fatalf("un seul article agrégé attendu, obtenu %d", gw.lastReq.Quantity)
	}

	// coordonnées client mises à jour
	customer, err := store.Customers().FindByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if customer.FirstName != "Jean" || customer.LastName != "Dupont" {
		t.Fatalf("coordonnées client non mises à jour: %+v", customer)
	}
}

func TestSubmitOneAddressPerOrder(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, _ := setup(t)
	region, city := seedGeo(t, store)
	fillCart(t, manager, store, 100, 0, 1)

	form := validForm(region, city)
	if _, err := svc.Submit(ctx, "user-1", form); err != nil {
		t.Fatalf("première soumission: %v", err)
	}

	// seconde soumission avec une autre adresse : la première gagne
	form.Address = "99 avenue des Champs"
	if _, err := svc.Submit(ctx, "user-1", form); err != nil {
		t.Fatalf("seconde soumission: %v", err)
	}

	order, _ := manager.CurrentOrder(ctx, "user-1")
	addr, err := store.Addresses().GetByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("adresse: %v", err)
	}
	if addr.Address != "12 rue de la Paix" {
		t.Fatalf("l'adresse ne doit pas être écrasée, obtenu %q", addr.Address)
	}
}

func TestSubmitSurvivesAddressRace(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, _ := setup(t)
	region, city := seedGeo(t, store)
	fillCart(t, manager, store, 100, 0, 1)

	// une soumission concurrente a posé l'adresse entre le test
	// d'existence et l'écriture
	order, _ := manager.CurrentOrder(ctx, "user-1")
	customer, _ := store.Customers().FindByUser(ctx, "user-1")
	raced := &models.ShippingAddress{
		CustomerID: customer.ID,
		OrderID:    order.ID,
		RegionID:   region.ID,
		CityID:     city.ID,
		Address:    "7 quai de Valmy",
		Phone:      "+33611111111",
	}
	if err := store.Addresses().Create(ctx, raced); err != nil {
		t.Fatalf("adresse concurrente: %v", err)
	}
	if err := store.Addresses().Create(ctx, raced); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("attendu ErrConflict sur la seconde écriture, obtenu %v", err)
	}

	if _, err := svc.Submit(ctx, "user-1", validForm(region, city)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	addr, err := store.Addresses().GetByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("adresse: %v", err)
	}
	if addr.Address != "7 quai de Valmy" {
		t.Fatalf("la première écriture doit gagner, obtenu %q", addr.Address)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	ctx := context.Background()
	svc, _, store, gw := setup(t)
	region, city := seedGeo(t, store)

	_, err := svc.Submit(ctx, "user-1", validForm(region, city))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("attendu ErrEmptyCart, obtenu %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("la passerelle ne doit pas être appelée sur panier vide")
	}
}

func TestSubmitCityOutsideRegion(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, gw := setup(t)
	region, _ := seedGeo(t, store)
	otherRegion := models.Region{Title: "Bretagne"}
	store.Geo().CreateRegion(ctx, &otherRegion)
	strayCity := models.City{Title: "Rennes", RegionID: otherRegion.ID}
	store.Geo().CreateCity(ctx, &strayCity)
	fillCart(t, manager, store, 100, 0, 1)

	form := validForm(region, strayCity)
	_, err := svc.Submit(ctx, "user-1", form)
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("attendu ErrInvalidForm, obtenu %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("pas d'appel passerelle sur formulaire invalide")
	}
}

func TestSubmitGatewayFailure(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, gw := setup(t)
	region, city := seedGeo(t, store)
	fillCart(t, manager, store, 100, 0, 1)
	gw.failWith = errors.New("connexion refusée")

	_, err := svc.Submit(ctx, "user-1", validForm(region, city))
	if !errors.Is(err, ErrPaymentGateway) {
		t.Fatalf("attendu ErrPaymentGateway, obtenu %v", err)
	}
}

func TestSubmitDiscountedAmount(t *testing.T) {
	ctx := context.Background()
	svc, manager, store, gw := setup(t)
	region, city := seedGeo(t, store)
	// prix 20000, remise 10%, quantité 2 → total 36000 → 3600000 mineures
	fillCart(t, manager, store, 20000, 10, 2)

	if _, err := svc.Submit(ctx, "user-1", validForm(region, city)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gw.lastReq.UnitAmount != 3600000 {
		t.Fatalf("montant attendu 3600000, obtenu %d", gw.lastReq.UnitAmount)
	}
}
