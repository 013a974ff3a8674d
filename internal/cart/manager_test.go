package cart

import (
	"context"
	"errors"
	"testing"

	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"

	"github.com/gocql/gocql"
)

func setup(t *testing.T) (*Manager, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	m := NewManager(store.Products(), store.Customers(), store.Orders(), store.Lines(), store)
	return m, store
}

func seedProduct(t *testing.T, store *repository.MemoryStore, slug string, price float64, quantity, discount int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:      slug,
		Slug:       slug,
		Price:      price,
		Quantity:   quantity,
		Discount:   discount,
		CategoryID: gocql.TimeUUID(),
	}
	if err := store.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("seed produit: %v", err)
	}
	return p
}

func TestCurrentOrderIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t)

	o1, err := m.CurrentOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("premier appel: %v", err)
	}
	o2, err := m.CurrentOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("second appel: %v", err)
	}
	if o1.ID != o2.ID {
		t.Fatalf("commande ouverte non idempotente: %s != %s", o1.ID, o2.ID)
	}
	if o1.Payment {
		t.Fatal("une commande ouverte ne doit pas être payée")
	}
}

func TestAddRespectsStockCeiling(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "canape-loft", 100, 2, 0)

	outcomes := []MutationOutcome{}
	for i := 0; i < 3; i++ {
		out, err := m.MutateLine(ctx, "user-1", "canape-loft", ActionAdd)
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		outcomes = append(outcomes, out)
	}

	if outcomes[0] != MutationApplied || outcomes[1] != MutationApplied {
		t.Fatalf("deux premiers ajouts attendus applied, obtenu %v", outcomes)
	}
	if outcomes[2] != MutationUnchanged {
		t.Fatalf("troisième ajout attendu unchanged (plafond stock), obtenu %v", outcomes[2])
	}

	info, err := m.CartInfo(ctx, "user-1")
	if err != nil {
		t.Fatalf("cart info: %v", err)
	}
	if len(info.Lines) != 1 || info.Lines[0].Line.Quantity != 2 {
		t.Fatalf("quantité de ligne attendue 2, obtenu %+v", info.Lines)
	}
}

func TestAddOutOfStock(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "table-basse", 50, 0, 0)

	out, err := m.MutateLine(ctx, "user-1", "table-basse", ActionAdd)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if out != MutationUnchanged {
		t.Fatalf("attendu unchanged pour stock nul, obtenu %v", out)
	}

	info, _ := m.CartInfo(ctx, "user-1")
	if len(info.Lines) != 0 {
		t.Fatalf("aucune ligne ne doit exister, obtenu %d", len(info.Lines))
	}
}

func TestDeleteRemovesLineAtZero(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "fauteuil", 80, 5, 0)

	if _, err := m.MutateLine(ctx, "user-1", "fauteuil", ActionAdd); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := m.MutateLine(ctx, "user-1", "fauteuil", ActionDelete)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out != MutationRemoved {
		t.Fatalf("attendu removed à quantité 0, obtenu %v", out)
	}

	info, _ := m.CartInfo(ctx, "user-1")
	if len(info.Lines) != 0 {
		t.Fatal("les lignes à quantité zéro ne doivent jamais persister")
	}

	// delete sur une ligne inexistante : rien à faire, rien ne casse
	out, err = m.MutateLine(ctx, "user-1", "fauteuil", ActionDelete)
	if err != nil {
		t.Fatalf("delete sur ligne absente: %v", err)
	}
	if out != MutationUnchanged {
		t.Fatalf("attendu unchanged, obtenu %v", out)
	}
}

func TestInvalidAction(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "banc", 30, 3, 0)

	_, err := m.MutateLine(ctx, "user-1", "banc", Action("explode"))
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("attendu ErrInvalidAction, obtenu %v", err)
	}
}

func TestUnknownProduct(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t)

	_, err := m.MutateLine(ctx, "user-1", "fantome", ActionAdd)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("attendu ErrProductNotFound, obtenu %v", err)
	}
}

func TestDiscountLaw(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "lit-double", 20000, 10, 10)

	for i := 0; i < 2; i++ {
		if _, err := m.MutateLine(ctx, "user-1", "lit-double", ActionAdd); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	info, err := m.CartInfo(ctx, "user-1")
	if err != nil {
		t.Fatalf("cart info: %v", err)
	}
	if info.TotalPrice != 36000 {
		t.Fatalf("loi de remise violée: attendu 36000, obtenu %v", info.TotalPrice)
	}
	if info.TotalQuantity != 2 {
		t.Fatalf("quantité totale attendue 2, obtenu %d", info.TotalQuantity)
	}

	// le calcul est pur : un second appel ne cumule pas la remise
	info2, _ := m.CartInfo(ctx, "user-1")
	if info2.TotalPrice != 36000 {
		t.Fatalf("la remise s'est cumulée entre deux appels: %v", info2.TotalPrice)
	}
}

func TestTotalsMatchPersistedQuantities(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "etagere", 120, 4, 0)
	seedProduct(t, store, "bureau", 300, 2, 0)

	m.MutateLine(ctx, "user-1", "etagere", ActionAdd)
	m.MutateLine(ctx, "user-1", "etagere", ActionAdd)
	m.MutateLine(ctx, "user-1", "bureau", ActionAdd)

	order, _ := m.CurrentOrder(ctx, "user-1")
	price, qty, err := m.OrderTotals(ctx, order.ID)
	if err != nil {
		t.Fatalf("totaux: %v", err)
	}
	if qty != 3 {
		t.Fatalf("quantité totale attendue 3, obtenu %d", qty)
	}
	if price != 2*120+300 {
		t.Fatalf("prix total attendu 540, obtenu %v", price)
	}
}

func TestFinalizePayment(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	p := seedProduct(t, store, "commode", 150, 5, 0)

	for i := 0; i < 3; i++ {
		m.MutateLine(ctx, "user-1", "commode", ActionAdd)
	}
	order, _ := m.CurrentOrder(ctx, "user-1")

	if err := m.FinalizePayment(ctx, order.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Quantity != 2 {
		t.Fatalf("stock attendu 2 après finalisation, obtenu %d", after.Quantity)
	}
	paid, _ := store.Orders().GetByID(ctx, order.ID)
	if !paid.Payment {
		t.Fatal("le flag payment doit être à true après finalisation")
	}

	// double finalisation : refusée, stock intact
	err := m.FinalizePayment(ctx, order.ID)
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("attendu ErrAlreadyPaid, obtenu %v", err)
	}
	again, _ := store.Products().GetByID(ctx, p.ID)
	if again.Quantity != 2 {
		t.Fatalf("le stock ne doit pas changer sur double finalisation, obtenu %d", again.Quantity)
	}

	// le panier suivant est une nouvelle commande ouverte
	next, _ := m.CurrentOrder(ctx, "user-1")
	if next.ID == order.ID {
		t.Fatal("une nouvelle commande ouverte doit être créée après paiement")
	}
}

func TestFinalizeRejectsForeignOrder(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	p := seedProduct(t, store, "buffet", 300, 5, 0)

	m.MutateLine(ctx, "user-1", "buffet", ActionAdd)
	order, _ := m.CurrentOrder(ctx, "user-1")

	// un autre client authentifié connaît l'UUID de la commande
	if _, err := m.CurrentOrder(ctx, "user-2"); err != nil {
		t.Fatalf("client intrus: %v", err)
	}
	err := m.FinalizeCustomerPayment(ctx, "user-2", order.ID)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("attendu ErrOrderNotFound pour la commande d'autrui, obtenu %v", err)
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Quantity != 5 {
		t.Fatalf("le stock ne doit pas bouger, obtenu %d", after.Quantity)
	}
	o, _ := store.Orders().GetByID(ctx, order.ID)
	if o.Payment {
		t.Fatal("la commande d'autrui ne doit pas passer en payée")
	}

	// un utilisateur sans client connu est refusé de la même façon
	if err := m.FinalizeCustomerPayment(ctx, "user-3", order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("attendu ErrOrderNotFound sans client, obtenu %v", err)
	}

	// le propriétaire finalise normalement
	if err := m.FinalizeCustomerPayment(ctx, "user-1", order.ID); err != nil {
		t.Fatalf("finalisation propriétaire: %v", err)
	}
	paid, _ := store.Orders().GetByID(ctx, order.ID)
	if !paid.Payment {
		t.Fatal("le flag payment doit basculer pour le propriétaire")
	}
}

func TestFinalizeEmptyOrder(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t)

	order, _ := m.CurrentOrder(ctx, "user-1")
	err := m.FinalizePayment(ctx, order.ID)
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("attendu ErrEmptyOrder, obtenu %v", err)
	}
}

func TestFinalizeRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	p := seedProduct(t, store, "armoire", 400, 5, 0)

	for i := 0; i < 2; i++ {
		m.MutateLine(ctx, "user-1", "armoire", ActionAdd)
	}
	order, _ := m.CurrentOrder(ctx, "user-1")

	// ligne orpheline : son produit n'existe pas, la finalisation doit
	// échouer en milieu de boucle
	orphan := &models.OrderLine{OrderID: order.ID, ProductID: gocql.TimeUUID(), Quantity: 1}
	if err := store.Lines().Save(ctx, orphan); err != nil {
		t.Fatalf("seed ligne orpheline: %v", err)
	}

	if err := m.FinalizePayment(ctx, order.ID); err == nil {
		t.Fatal("la finalisation aurait dû échouer")
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Quantity != 5 {
		t.Fatalf("décrément partiel non annulé: stock %d au lieu de 5", after.Quantity)
	}
	o, _ := store.Orders().GetByID(ctx, order.ID)
	if o.Payment {
		t.Fatal("le flag payment ne doit pas basculer si la finalisation échoue")
	}
}

func TestRemoveLine(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	seedProduct(t, store, "tabouret", 25, 10, 0)

	for i := 0; i < 4; i++ {
		m.MutateLine(ctx, "user-1", "tabouret", ActionAdd)
	}
	info, _ := m.CartInfo(ctx, "user-1")
	if len(info.Lines) != 1 {
		t.Fatalf("une ligne attendue, obtenu %d", len(info.Lines))
	}

	if err := m.RemoveLine(ctx, "user-1", info.Lines[0].Line.ID); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	info, _ = m.CartInfo(ctx, "user-1")
	if len(info.Lines) != 0 {
		t.Fatal("la ligne aurait dû être supprimée entièrement")
	}
}
