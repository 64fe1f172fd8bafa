// Package memory implementa los repositorios sobre mapas en memoria.
// Se usa con DB_DRIVER=memory para desarrollo y en los tests de casos de uso.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// Store guarda todo el estado bajo un único mutex. Una transacción toma el mutex
// durante toda su ejecución, lo que equivale a bloquear todas las filas que toca.
type Store struct {
	mu sync.Mutex
	d  *data
}

type data struct {
	categories map[string]entity.Category
	products   map[string]entity.Product
	lots       map[string]entity.StockLot
	orders     map[string]entity.Order
	carts      []entity.CartLine
	stockOuts  []entity.StockOut
	notes      []entity.DeliveryNote
	users      map[string]entity.User
}

func newData() *data {
	return &data{
		categories: map[string]entity.Category{},
		products:   map[string]entity.Product{},
		lots:       map[string]entity.StockLot{},
		orders:     map[string]entity.Order{},
		users:      map[string]entity.User{},
	}
}

// clone copia el estado para poder restaurarlo si la transacción falla.
func (d *data) clone() *data {
	c := &data{
		categories: make(map[string]entity.Category, len(d.categories)),
		products:   make(map[string]entity.Product, len(d.products)),
		lots:       make(map[string]entity.StockLot, len(d.lots)),
		orders:     make(map[string]entity.Order, len(d.orders)),
		carts:      append([]entity.CartLine(nil), d.carts...),
		stockOuts:  append([]entity.StockOut(nil), d.stockOuts...),
		notes:      append([]entity.DeliveryNote(nil), d.notes...),
		users:      make(map[string]entity.User, len(d.users)),
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.lots {
		c.lots[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

// New crea un store vacío.
func New() *Store {
	return &Store{d: newData()}
}

// ── Transacciones ─────────────────────────────────────────────────────────────

// Run implementa application/inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) error) error {
	return s.inTx(ctx, func(v view) error {
		return fn(&ProductRepo{v}, &StockRepo{v})
	})
}

// RunOrder implementa application/orders.TxRunner.
func (s *Store) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	stockOutRepo repository.StockOutRepository,
	noteRepo repository.DeliveryNoteRepository,
) error) error {
	return s.inTx(ctx, func(v view) error {
		return fn(&ProductRepo{v}, &StockRepo{v}, &OrderRepo{v}, &StockOutRepo{v}, &DeliveryNoteRepo{v})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(v view) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	defer func() {
		if p := recover(); p != nil {
			s.d = snapshot
			panic(p)
		}
		if err != nil {
			s.d = snapshot
		}
	}()

	if err = fn(view{s: s, inTx: true}); err != nil {
		return err
	}
	// Un contexto cancelado durante la transacción equivale a rollback
	return ctx.Err()
}

// ── Repositorios fuera de transacción ─────────────────────────────────────────

func (s *Store) Products() *ProductRepo           { return &ProductRepo{view{s: s}} }
func (s *Store) Stocks() *StockRepo               { return &StockRepo{view{s: s}} }
func (s *Store) Orders() *OrderRepo               { return &OrderRepo{view{s: s}} }
func (s *Store) StockOuts() *StockOutRepo         { return &StockOutRepo{view{s: s}} }
func (s *Store) DeliveryNotes() *DeliveryNoteRepo { return &DeliveryNoteRepo{view{s: s}} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{view{s: s}} }

// ── Carga de datos ────────────────────────────────────────────────────────────

// AddCategory registra una categoría.
func (s *Store) AddCategory(c entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.categories[c.ID] = c
}

// AddProduct registra un producto. LatestQuantity se recalcula desde sus lotes.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Category = nil
	p.Lots = nil
	s.d.products[p.ID] = p
	s.d.recompute(p.ID)
}

// AddLot registra un lote y recalcula latest_quantity de su producto.
func (s *Store) AddLot(l entity.StockLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.products[l.ProductID]; !ok {
		return fmt.Errorf("memory: producto %s no existe", l.ProductID)
	}
	s.d.lots[l.ID] = l
	s.d.recompute(l.ProductID)
	return nil
}

// AddUser registra un usuario.
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.users[u.ID] = u
}

func (d *data) lotsOf(productID string) []entity.StockLot {
	var out []entity.StockLot
	for _, l := range d.lots {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (d *data) recompute(productID string) int64 {
	p, ok := d.products[productID]
	if !ok {
		return 0
	}
	p.LatestQuantity = inventory.SumQuantities(d.lotsOf(productID))
	d.products[productID] = p
	return p.LatestQuantity
}

// ── Datos de demostración ─────────────────────────────────────────────────────

// SeedID genera un ID estable a partir de un nombre, para que los datos de demo
// tengan siempre los mismos identificadores.
func SeedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("pedidos-api:"+name)).String()
}

type seedLot struct {
	qty   int64
	price int64
	age   time.Duration
}

type seedProduct struct {
	category, code, name string
	lots                 []seedLot
}

// NewSeeded crea un store con un usuario admin y un catálogo pequeño con lotes.
func NewSeeded(adminPassword string) (*Store, error) {
	if adminPassword == "" {
		return nil, fmt.Errorf("memory: contraseña de admin vacía")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("memory: hash de contraseña: %w", err)
	}

	s := New()
	now := time.Now().UTC()
	s.AddUser(entity.User{
		ID: SeedID("user:admin"), Username: "admin", Fullname: "Administrador",
		PasswordHash: string(hash), Role: entity.RoleAdmin, Status: "active",
		CreatedAt: now, UpdatedAt: now,
	})

	catalog := []seedProduct{
		{"ATK", "ATK-001", "Kertas HVS A4", []seedLot{{3, 52000, 72 * time.Hour}, {5, 54000, 24 * time.Hour}}},
		{"ATK", "ATK-002", "Pulpen Hitam", []seedLot{{120, 2500, 48 * time.Hour}}},
		{"Kebersihan", "KBR-001", "Sabun Cuci Tangan", []seedLot{{10, 18000, 96 * time.Hour}, {0, 17500, 200 * time.Hour}, {20, 19000, time.Hour}}},
	}

	for _, item := range catalog {
		catID := SeedID("category:" + item.category)
		s.AddCategory(entity.Category{ID: catID, Title: item.category, CreatedAt: now, UpdatedAt: now})
		productID := SeedID("product:" + item.code)
		s.AddProduct(entity.Product{
			ID: productID, CategoryID: catID, Name: item.name, Code: item.code,
			CreatedAt: now, UpdatedAt: now,
		})
		for i, l := range item.lots {
			if err := s.AddLot(entity.StockLot{
				ID:        SeedID(fmt.Sprintf("lot:%s:%d", item.code, i)),
				ProductID: productID,
				Quantity:  l.qty,
				Price:     decimal.NewFromInt(l.price),
				CreatedAt: now.Add(-l.age),
				UpdatedAt: now.Add(-l.age),
			}); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
