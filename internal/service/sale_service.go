package service

import (
	"context"
	"fmt"
	"time"

	"stockpos/internal/config"
	"stockpos/internal/dto"
	"stockpos/internal/model"
	"stockpos/internal/repository"
	"stockpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Create(ctx context.Context, userID, storeID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	List(ctx context.Context, storeID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	inventory   InventoryService
	dispatcher  *worker.Dispatcher
	txTimeout   time.Duration
	defaultTax  string
}

func NewSaleService(
	repo repository.SaleRepository,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) SaleService {
	timeout := 15 * time.Second
	defaultTax := ""
	if cfg != nil {
		if cfg.SaleTxTimeoutSeconds > 0 {
			timeout = time.Duration(cfg.SaleTxTimeoutSeconds) * time.Second
		}
		defaultTax = cfg.DefaultTaxID
	}
	return &saleService{
		repo:        repo,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		inventory:   inventory,
		dispatcher:  dispatcher,
		txTimeout:   timeout,
		defaultTax:  defaultTax,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────
// One ACID transaction per sale:
//   1. Resolve and authorize every cart line (pre-flight, outside the TX)
//   2. Recompute totals and cash change
//   3. BEGIN TX: next invoice number, create sale+items, allocate and deduct
//      stock per line (ledger rows appended by the allocator)
//   4. COMMIT — sale, items, item updates and ledger rows become visible
//      atomically; any error before commit rolls back all of it
//   5. (async) best-effort receipt job

func (s *saleService) Create(ctx context.Context, userID, storeID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// 1. Resolve products and authorize access (no mutations yet).
	type resolvedLine struct {
		product  *model.Product
		quantity int
		price    decimal.Decimal
		subtotal decimal.Decimal
	}
	resolved := make([]resolvedLine, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, ErrProductNotFound
		}
		if !product.Active {
			return nil, fmt.Errorf("product %q is inactive and cannot be sold", product.Name)
		}
		ok, err := s.canSell(ctx, product, storeID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrProductNotOwned
		}

		price := item.Price
		if price.IsZero() {
			price = product.Price
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedLine{
			product:  product,
			quantity: item.Quantity,
			price:    price,
			subtotal: subtotal,
		})
	}

	// 2. The register's declared total must match what the lines add up to.
	if !req.Total.Equal(total) {
		return nil, ErrTotalMismatch
	}

	var cashReceived, change *decimal.Decimal
	if req.PaymentMethod == model.PaymentCash && req.CashReceived != nil {
		if req.CashReceived.LessThan(total) {
			return nil, ErrCashShort
		}
		c := req.CashReceived.Sub(total)
		cashReceived = req.CashReceived
		change = &c
	}

	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("store not found: %w", err)
	}
	taxID := store.TaxID
	if taxID == "" {
		taxID = s.defaultTax
	}

	// 3. ACID transaction with an extended timeout: a multi-line sale locks
	// one InventoryItem row per sellable room per line.
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var sale model.Sale
	txErr := runTx(txCtx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.storeRepo.NextInvoiceNumberTx(txCtx, tx, storeID)
		if err != nil {
			return err
		}
		invoice := fmt.Sprintf("%04d", num)

		sale = model.Sale{
			StoreID:       storeID,
			UserID:        userID,
			InvoiceNumber: invoice,
			Total:         total,
			PaymentMethod: req.PaymentMethod,
			CashReceived:  cashReceived,
			Change:        change,
			Status:        model.SaleCompleted,
			TaxID:         taxID,
		}
		for _, line := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: line.product.ID,
				Quantity:  line.quantity,
				UnitPrice: line.price,
				Subtotal:  line.subtotal,
			})
		}
		if err := s.repo.CreateTx(txCtx, tx, &sale); err != nil {
			return err
		}

		// Allocate and deduct per line. The allocator locks the sellable
		// rows itself and fails the whole sale on any shortfall, so the
		// pre-flight sum and the deduction can never disagree.
		for _, line := range resolved {
			if _, err := s.inventory.DeductForSaleTx(txCtx, tx, line.product, line.quantity, invoice); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 5. Best-effort receipt job (fire & forget).
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{SaleID: sale.ID.String()}
		if req.CustomerEmail != nil && *req.CustomerEmail != "" {
			payload.CustomerEmail = req.CustomerEmail
		}
		_ = s.dispatcher.EnqueueReceipt(ctx, payload)
	}

	resp := saleToPayload(&sale)
	for i, line := range resolved {
		resp.Items[i].Product = line.product.Name
	}
	return &dto.SaleResponse{Success: true, Sale: resp}, nil
}

// canSell implements the product access policy: a product is sellable from
// its own store, or from another store owned by the acting user (multi-store
// operator case).
func (s *saleService) canSell(ctx context.Context, p *model.Product, storeID, userID uuid.UUID) (bool, error) {
	if p.StoreID == storeID {
		return true, nil
	}
	return s.storeRepo.IsOwnedBy(ctx, p.StoreID, userID)
}

// List returns a paginated list of sales, filtered by date (default: today).
func (s *saleService) List(ctx context.Context, storeID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SalePayload, 0, len(sales))
	for _, sale := range sales {
		data = append(data, saleToPayload(&sale))
	}
	return &dto.SaleListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToPayload(s *model.Sale) dto.SalePayload {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return dto.SalePayload{
		ID:            s.ID.String(),
		InvoiceNumber: s.InvoiceNumber,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		CashReceived:  s.CashReceived,
		Change:        s.Change,
		Status:        s.Status,
		TaxID:         s.TaxID,
		Items:         items,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
