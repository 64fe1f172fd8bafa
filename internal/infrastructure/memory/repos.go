package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/delivery"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// view acceso al estado del store. Dentro de una transacción el mutex ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ view }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) GetWithLots(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, nil
	}
	if c, ok := r.s.d.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	p.Lots = r.s.d.lotsOf(id)
	return &p, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) RecomputeLatestQuantity(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer r.lock()()
	if _, ok := r.s.d.products[id]; !ok {
		return 0, domain.ErrNotFound
	}
	return r.s.d.recompute(id), nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	defer r.lock()()
	all := make([]entity.Product, 0, len(r.s.d.products))
	for _, p := range r.s.d.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]*entity.Product, 0, end-offset)
	for _, p := range all[offset:end] {
		if c, ok := r.s.d.categories[p.CategoryID]; ok {
			p.Category = &c
		}
		out = append(out, &p)
	}
	return out, total, nil
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

// StockRepo implementa repository.StockRepository.
type StockRepo struct{ view }

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) ListAvailableForUpdate(ctx context.Context, productID string) ([]entity.StockLot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	var out []entity.StockLot
	for _, l := range r.s.d.lotsOf(productID) {
		if !l.Exhausted() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *StockRepo) UpdateQuantity(ctx context.Context, lotID string, expected, quantity int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if quantity < 0 {
		return fmt.Errorf("%w: cantidad negativa %d", domain.ErrInvalidInput, quantity)
	}
	defer r.lock()()
	l, ok := r.s.d.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Quantity != expected {
		return fmt.Errorf("%w: lote %s tiene %d, se esperaba %d", domain.ErrConflict, lotID, l.Quantity, expected)
	}
	l.Quantity = quantity
	r.s.d.lots[lotID] = l
	return nil
}

// ListByProduct devuelve todos los lotes del producto, agotados incluidos.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]entity.StockLot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	return r.s.d.lotsOf(productID), nil
}

// ── Órdenes ───────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ view }

var _ repository.OrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.lock()()
	if _, ok := r.s.d.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	o := *order
	o.Carts = nil
	o.DeliveryNote = nil
	r.s.d.orders[o.ID] = o
	return nil
}

func (r *OrderRepo) CreateCartLine(ctx context.Context, line *entity.CartLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.lock()()
	if _, ok := r.s.d.orders[line.OrderID]; !ok {
		return fmt.Errorf("carrito: orden %s: %w", line.OrderID, domain.ErrNotFound)
	}
	r.s.d.carts = append(r.s.d.carts, *line)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, nil
	}
	r.hydrate(&o)
	return &o, nil
}

func (r *OrderRepo) ListWithCarts(ctx context.Context) ([]*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	out := make([]*entity.Order, 0, len(r.s.d.orders))
	for _, o := range r.s.d.orders {
		o := o
		r.hydrate(&o)
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *OrderRepo) hydrate(o *entity.Order) {
	o.Carts = nil
	for _, c := range r.s.d.carts {
		if c.OrderID == o.ID {
			o.Carts = append(o.Carts, c)
		}
	}
	sort.SliceStable(o.Carts, func(i, j int) bool { return o.Carts[i].Position < o.Carts[j].Position })
	for _, n := range r.s.d.notes {
		if n.OrderID == o.ID {
			n := n
			o.DeliveryNote = &n
			break
		}
	}
}

// ── Salidas de stock ──────────────────────────────────────────────────────────

// StockOutRepo implementa repository.StockOutRepository.
type StockOutRepo struct{ view }

var _ repository.StockOutRepository = (*StockOutRepo)(nil)

func (r *StockOutRepo) Create(ctx context.Context, record *entity.StockOut) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.lock()()
	r.s.d.stockOuts = append(r.s.d.stockOuts, *record)
	return nil
}

func (r *StockOutRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	var out []*entity.StockOut
	for _, so := range r.s.d.stockOuts {
		if so.OrderID == orderID {
			so := so
			out = append(out, &so)
		}
	}
	return out, nil
}

// ── Remisiones ────────────────────────────────────────────────────────────────

// DeliveryNoteRepo implementa repository.DeliveryNoteRepository.
type DeliveryNoteRepo struct{ view }

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// LockReferences no hace nada: la transacción ya tiene el mutex del store.
func (r *DeliveryNoteRepo) LockReferences(ctx context.Context) error {
	return ctx.Err()
}

func (r *DeliveryNoteRepo) MaxSequence(ctx context.Context, prefix string) (*int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	var max *int64
	for _, n := range r.s.d.notes {
		if !strings.HasPrefix(n.ReferenceNumber, prefix) {
			continue
		}
		seq, err := delivery.ParseSequence(n.ReferenceNumber)
		if err != nil {
			continue
		}
		if max == nil || seq > *max {
			v := seq
			max = &v
		}
	}
	return max, nil
}

func (r *DeliveryNoteRepo) Create(ctx context.Context, note *entity.DeliveryNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.lock()()
	for _, n := range r.s.d.notes {
		if n.ReferenceNumber == note.ReferenceNumber {
			return fmt.Errorf("%w: remisión %s ya existe", domain.ErrConflict, note.ReferenceNumber)
		}
		if n.OrderID == note.OrderID {
			return fmt.Errorf("%w: la orden %s ya tiene remisión", domain.ErrConflict, note.OrderID)
		}
	}
	r.s.d.notes = append(r.s.d.notes, *note)
	return nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ view }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()
	for _, u := range r.s.d.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}
