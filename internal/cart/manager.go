package cart

import (
	"context"
	"errors"
	"fmt"

	"loft_back_end/internal/models"
	"loft_back_end/internal/repository"

	"github.com/gocql/gocql"
)

var (
	ErrProductNotFound = errors.New("produit introuvable")
	ErrOrderNotFound   = errors.New("commande introuvable")
	ErrLineNotFound    = errors.New("ligne de commande introuvable")
	ErrInvalidAction   = errors.New("action inconnue")
	ErrAlreadyPaid     = errors.New("commande déjà payée")
	ErrEmptyOrder      = errors.New("commande vide")
)

// Action : jeton d'action de mutation du panier (+1 / -1)
type Action string

const (
	ActionAdd    Action = "add"
	ActionDelete Action = "delete"
)

// MutationOutcome : résultat observable d'une mutation de ligne.
// Un incrément bloqué par le stock n'est pas une erreur mais il
// n'est plus silencieux non plus.
type MutationOutcome int

const (
	MutationApplied MutationOutcome = iota
	MutationUnchanged
	MutationRemoved
)

func (o MutationOutcome) String() string {
	switch o {
	case MutationApplied:
		return "applied"
	case MutationUnchanged:
		return "unchanged"
	case MutationRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// LineView : ligne du panier enrichie de son produit et de son total remisé
type LineView struct {
	Line    models.OrderLine `json:"line"`
	Product models.Product   `json:"product"`
	Total   float64          `json:"total"`
}

type CartInfo struct {
	Order         models.Order `json:"order"`
	Lines         []LineView   `json:"lines"`
	TotalPrice    float64      `json:"total_price"`
	TotalQuantity int          `json:"total_quantity"`
}

// Manager : source de vérité du panier courant et de l'arithmétique des
// totaux. Seul endroit qui mute Order/OrderLine/stock produit suite aux
// actions panier et checkout. Aucune résolution de session ambiante :
// l'identifiant utilisateur est passé à chaque opération.
type Manager struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	lines     repository.OrderLineRepository
	tx        repository.TxManager
	locks     *keyedMutex
}

func NewManager(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	lines repository.OrderLineRepository,
	tx repository.TxManager,
) *Manager {
	return &Manager{
		products:  products,
		customers: customers,
		orders:    orders,
		lines:     lines,
		tx:        tx,
		locks:     newKeyedMutex(),
	}
}

// resolveCustomer : find puis create explicite (pas de get_or_create ORM)
func (m *Manager) resolveCustomer(ctx context.Context, userID string) (*models.Customer, error) {
	customer, err := m.customers.FindByUser(ctx, userID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	customer = &models.Customer{UserID: userID}
	if err := m.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (m *Manager) resolveOpenOrder(ctx context.Context, customerID gocql.UUID) (*models.Order, error) {
	order, err := m.orders.FindOpenByCustomer(ctx, customerID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	order = &models.Order{CustomerID: customerID, Payment: false, Shipping: true}
	if err := m.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CurrentOrder retourne la commande ouverte (payment=false) du client,
// en créant le client et la commande au premier appel. Idempotent : tant
// que la commande n'est pas payée, chaque appel retourne la même.
func (m *Manager) CurrentOrder(ctx context.Context, userID string) (*models.Order, error) {
	customer, err := m.resolveCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	l := m.locks.lock(customer.ID.String())
	defer l.Unlock()

	return m.resolveOpenOrder(ctx, customer.ID)
}

// MutateLine applique une action (+1 / -1) sur la ligne (commande, produit).
// L'ajout n'est accepté que si le stock le permet ; le décrément est
// inconditionnel. Une quantité résultante ≤ 0 supprime la ligne : une
// ligne n'est jamais persistée à zéro.
func (m *Manager) MutateLine(ctx context.Context, userID, productSlug string, action Action) (MutationOutcome, error) {
	if action != ActionAdd && action != ActionDelete {
		return MutationUnchanged, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	product, err := m.products.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MutationUnchanged, fmt.Errorf("%w: %s", ErrProductNotFound, productSlug)
		}
		return MutationUnchanged, err
	}

	customer, err := m.resolveCustomer(ctx, userID)
	if err != nil {
		return MutationUnchanged, err
	}

	l := m.locks.lock(customer.ID.String())
	defer l.Unlock()

	order, err := m.resolveOpenOrder(ctx, customer.ID)
	if err != nil {
		return MutationUnchanged, err
	}

	line, err := m.lines.Find(ctx, order.ID, product.ID)
	existed := err == nil
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return MutationUnchanged, err
		}
		line = &models.OrderLine{OrderID: order.ID, ProductID: product.ID, Quantity: 0}
	}

	outcome := MutationApplied
	switch action {
	case ActionAdd:
		if product.Quantity > 0 && line.Quantity < product.Quantity {
			line.Quantity++
		} else {
			// stock épuisé ou plafond atteint : signalé, jamais fatal
			outcome = MutationUnchanged
		}
	case ActionDelete:
		line.Quantity--
	}

	if line.Quantity <= 0 {
		if existed {
			if err := m.lines.Delete(ctx, order.ID, product.ID); err != nil {
				return MutationUnchanged, err
			}
			return MutationRemoved, nil
		}
		return MutationUnchanged, nil
	}

	if outcome == MutationApplied {
		if err := m.lines.Save(ctx, line); err != nil {
			return MutationUnchanged, err
		}
	}
	return outcome, nil
}

// RemoveLine supprime une ligne entière de la commande ouverte du client
func (m *Manager) RemoveLine(ctx context.Context, userID string, lineID gocql.UUID) error {
	customer, err := m.resolveCustomer(ctx, userID)
	if err != nil {
		return err
	}

	l := m.locks.lock(customer.ID.String())
	defer l.Unlock()

	order, err := m.resolveOpenOrder(ctx, customer.ID)
	if err != nil {
		return err
	}

	line, err := m.lines.GetByID(ctx, lineID)
	if err != nil || line.OrderID != order.ID {
		return ErrLineNotFound
	}
	return m.lines.Delete(ctx, order.ID, line.ProductID)
}

// LineTotal : prix effectif (remise appliquée localement) × quantité.
// Calcul pur : le prix stocké du produit n'est jamais modifié, la remise
// ne se cumule donc pas d'un appel à l'autre.
func LineTotal(p models.Product, quantity int) float64 {
	return p.EffectivePrice() * float64(quantity)
}

// CartInfo retourne la commande ouverte du client avec ses lignes,
// produits et totaux
func (m *Manager) CartInfo(ctx context.Context, userID string) (*CartInfo, error) {
	order, err := m.CurrentOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := m.lines.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	info := &CartInfo{Order: *order, Lines: make([]LineView, 0, len(lines))}
	for _, line := range lines {
		product, err := m.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		total := LineTotal(*product, line.Quantity)
		info.Lines = append(info.Lines, LineView{Line: line, Product: *product, Total: total})
		info.TotalPrice += total
		info.TotalQuantity += line.Quantity
	}
	return info, nil
}

// OrderTotals recalcule (prix total, quantité totale) d'une commande.
// Cohérent par construction : la quantité totale est la somme des
// quantités persistées au moment de l'appel.
func (m *Manager) OrderTotals(ctx context.Context, orderID gocql.UUID) (float64, int, error) {
	lines, err := m.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, 0, err
	}

	var totalPrice float64
	var totalQuantity int
	for _, line := range lines {
		product, err := m.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return 0, 0, err
		}
		totalPrice += LineTotal(*product, line.Quantity)
		totalQuantity += line.Quantity
	}
	return totalPrice, totalQuantity, nil
}

// FinalizePayment bascule la commande en payée : chaque stock produit est
// décrémenté de la quantité de sa ligne puis payment passe à true, le tout
// dans une transaction : un échec en cours de boucle ne laisse aucun
// décrément partiel. Une commande déjà payée ou vide est refusée.
func (m *Manager) FinalizePayment(ctx context.Context, orderID gocql.UUID) error {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if order.Payment {
		return ErrAlreadyPaid
	}

	l := m.locks.lock(order.CustomerID.String())
	defer l.Unlock()

	return m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// relu sous verrou : un double callback de succès ne doit pas
		// décrémenter deux fois
		order, err := m.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Payment {
			return ErrAlreadyPaid
		}

		lines, err := m.lines.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyOrder
		}

		for _, line := range lines {
			product, err := m.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := m.products.UpdateQuantity(ctx, product.ID, product.Quantity-line.Quantity); err != nil {
				return err
			}
		}

		order.Payment = true
		return m.orders.Update(ctx, order)
	})
}

// FinalizeCustomerPayment finalise une commande après vérification
// qu'elle appartient au client de cet utilisateur. La commande d'un
// autre client est traitée comme introuvable : connaître un UUID de
// commande ne suffit pas à la finaliser.
func (m *Manager) FinalizeCustomerPayment(ctx context.Context, userID string, orderID gocql.UUID) error {
	customer, err := m.customers.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if order.CustomerID != customer.ID {
		return ErrOrderNotFound
	}
	return m.FinalizePayment(ctx, orderID)
}

// PaidOrders : historique des commandes payées du client (profil)
func (m *Manager) PaidOrders(ctx context.Context, userID string) ([]models.Order, error) {
	customer, err := m.customers.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m.orders.ListPaidByCustomer(ctx, customer.ID)
}

// OrderLines expose les lignes d'une commande (email de confirmation,
// page de succès)
func (m *Manager) OrderLines(ctx context.Context, orderID gocql.UUID) ([]LineView, error) {
	lines, err := m.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]LineView, 0, len(lines))
	for _, line := range lines {
		product, err := m.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, LineView{Line: line, Product: *product, Total: LineTotal(*product, line.Quantity)})
	}
	return out, nil
}
