package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// Config parámetros del orquestador.
type Config struct {
	MaxAttempts     int            // intentos de la transacción ante domain.ErrConflict
	LineConcurrency int            // líneas preparadas en paralelo
	Location        *time.Location // zona para la etiqueta de mes y la fecha de la remisión
}

// LineError falla de una línea del pedido.
type LineError struct {
	Index     int
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (producto %s): %v", e.Index, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// CreateOrderUseCase crea un pedido: asigna stock por línea, registra salidas y carrito
// y emite la remisión, todo en una sola transacción.
type CreateOrderUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	allocator   StockAllocator
	refs        *ReferenceGenerator
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	allocator StockAllocator,
	refs *ReferenceGenerator,
	cfg Config,
	log *logger.Logger,
) *CreateOrderUseCase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LineConcurrency < 1 {
		cfg.LineConcurrency = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateOrderUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		allocator:   allocator,
		refs:        refs,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj; para tests.
func (uc *CreateOrderUseCase) WithClock(now func() time.Time) *CreateOrderUseCase {
	uc.now = now
	return uc
}

// preparedLine línea validada con la foto del producto tomada antes de la transacción.
type preparedLine struct {
	index    int
	line     dto.OrderLineRequest
	product  *entity.Product
	category string
	price    decimal.Decimal // precio del lote más reciente
}

// CreateOrder valida las líneas, prepara en paralelo la foto de cada producto y
// luego escribe todo en una transacción. Solo hay éxito después del commit.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, userID string, lines []dto.OrderLineRequest) (*dto.OrderResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: usuario vacío", domain.ErrInvalidInput)
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	prepared, err := uc.prepareLines(ctx, lines)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("pedido rechazado al preparar líneas")
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		result, err := uc.runOnce(ctx, userID, prepared)
		if err == nil {
			uc.log.Info().
				Str("order_id", result.OrderID).
				Str("reference_number", result.ReferenceNumber).
				Int("lines", len(prepared)).
				Msg("pedido creado")
			return result, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= uc.cfg.MaxAttempts {
			return nil, err
		}
		uc.log.Warn().Err(err).Int("attempt", attempt).Msg("conflicto al crear pedido, reintentando")
	}
}

func validateLines(lines []dto.OrderLineRequest) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: el pedido no tiene líneas", domain.ErrInvalidInput)
	}
	var errs []error
	for i, l := range lines {
		switch {
		case l.ProductID == "":
			errs = append(errs, &LineError{Index: i, Err: fmt.Errorf("%w: producto vacío", domain.ErrInvalidInput)})
		case l.Quantity <= 0:
			errs = append(errs, &LineError{Index: i, ProductID: l.ProductID,
				Err: fmt.Errorf("%w: cantidad %d", domain.ErrInvalidInput, l.Quantity)})
		}
	}
	return errors.Join(errs...)
}

// prepareLines carga cada producto con categoría y lotes en paralelo. Espera a que terminen
// todas las líneas y junta los errores de cada una; ninguna escritura ocurre si alguna falla.
func (uc *CreateOrderUseCase) prepareLines(ctx context.Context, lines []dto.OrderLineRequest) ([]preparedLine, error) {
	prepared := make([]preparedLine, len(lines))
	lineErrs := make([]error, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.LineConcurrency)
	for i, line := range lines {
		g.Go(func() error {
			p, err := uc.prepareLine(gctx, i, line)
			if err != nil {
				lineErrs[i] = &LineError{Index: i, ProductID: line.ProductID, Err: err}
				return nil
			}
			prepared[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(lineErrs...); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (uc *CreateOrderUseCase) prepareLine(ctx context.Context, i int, line dto.OrderLineRequest) (preparedLine, error) {
	product, err := uc.productRepo.GetWithLots(ctx, line.ProductID)
	if err != nil {
		return preparedLine{}, fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return preparedLine{}, domain.ErrNotFound
	}
	latest, ok := inventory.MostRecent(product.Lots)
	if !ok {
		return preparedLine{}, fmt.Errorf("%w: el producto no tiene lotes", domain.ErrInsufficientStock)
	}
	return preparedLine{
		index:    i,
		line:     line,
		product:  product,
		category: product.CategoryTitle(),
		price:    latest.Price,
	}, nil
}

func (uc *CreateOrderUseCase) runOnce(ctx context.Context, userID string, prepared []preparedLine) (*dto.OrderResult, error) {
	now := uc.now()
	local := now.In(uc.cfg.Location)
	order := &entity.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var referenceNumber string

	err := uc.txRunner.RunOrder(ctx, func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		stockOutRepo repository.StockOutRepository,
		noteRepo repository.DeliveryNoteRepository,
	) error {
		// 1) Orden
		if err := orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("crear orden: %w", err)
		}

		// 2) Asignación de stock en orden de producto: todos los pedidos bloquean
		// productos en la misma secuencia.
		for _, p := range byProduct(prepared) {
			if _, err := uc.allocator.AllocateInTx(ctx, productRepo, stockRepo, p.line.ProductID, p.line.Quantity); err != nil {
				return &LineError{Index: p.index, ProductID: p.line.ProductID, Err: err}
			}
		}

		// 3) Salida de stock y línea de carrito en el orden del request
		for _, p := range prepared {
			if err := stockOutRepo.Create(ctx, &entity.StockOut{
				ID:           uuid.New().String(),
				ProductID:    p.product.ID,
				OrderID:      order.ID,
				UserID:       userID,
				Price:        p.price,
				Quantity:     p.line.Quantity,
				Category:     p.category,
				CreatedMonth: entity.MonthLabel(local),
				CreatedAt:    now,
			}); err != nil {
				return &LineError{Index: p.index, ProductID: p.line.ProductID, Err: fmt.Errorf("salida de stock: %w", err)}
			}
			if err := orderRepo.CreateCartLine(ctx, &entity.CartLine{
				ID:              uuid.New().String(),
				OrderID:         order.ID,
				Position:        p.index,
				ProductName:     p.product.Name,
				ProductCode:     p.product.Code,
				ProductCategory: p.category,
				ProductQuantity: p.line.Quantity,
				CreatedAt:       now,
			}); err != nil {
				return &LineError{Index: p.index, ProductID: p.line.ProductID, Err: fmt.Errorf("carrito: %w", err)}
			}
		}

		// 4) Remisión con consecutivo
		ref, err := uc.refs.Next(ctx, noteRepo, now)
		if err != nil {
			return err
		}
		if err := noteRepo.Create(ctx, &entity.DeliveryNote{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			ReferenceNumber: ref,
			CreatedAt:       now,
		}); err != nil {
			return fmt.Errorf("crear remisión %s: %w", ref, err)
		}
		referenceNumber = ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.OrderResult{OrderID: order.ID, ReferenceNumber: referenceNumber}, nil
}

// byProduct devuelve las líneas ordenadas por producto y, dentro del mismo producto, por posición.
func byProduct(prepared []preparedLine) []preparedLine {
	out := make([]preparedLine, len(prepared))
	copy(out, prepared)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].line.ProductID < out[j].line.ProductID
	})
	return out
}
