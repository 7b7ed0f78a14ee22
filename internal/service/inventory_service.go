package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockpos/internal/dto"
	"stockpos/internal/model"
	"stockpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomDeduction is one room-level deduction applied by the allocator for a
// single sale line.
type RoomDeduction struct {
	RoomID   uuid.UUID
	Quantity int
	UnitCost decimal.Decimal
}

// InventoryService owns every stock-affecting mutation: restocks with
// weighted-average costing, room-to-room transfers, manual adjustments, and
// the sale-time allocator. Each mutation updates the InventoryItem projection
// and appends to the ledger inside one transaction.
type InventoryService interface {
	Restock(ctx context.Context, storeID uuid.UUID, req dto.RestockRequest) (*dto.RestockResponse, error)
	Transfer(ctx context.Context, storeID uuid.UUID, req dto.TransferRequest) error
	Adjust(ctx context.Context, storeID uuid.UUID, req dto.AdjustRequest) (*dto.InventoryItemResponse, error)
	ListItems(ctx context.Context, storeID uuid.UUID, filter dto.InventoryFilter) (*dto.InventoryListResponse, error)
	ListLedger(ctx context.Context, storeID uuid.UUID, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
	// DeductForSaleTx allocates and deducts sellable stock for one sale line.
	// It runs inside the sale transaction and is authoritative: if the locked
	// rows cannot fully cover the request it returns InsufficientInventoryError
	// and the caller's transaction rolls back.
	DeductForSaleTx(ctx context.Context, tx *gorm.DB, product *model.Product, quantity int, invoiceNumber string) ([]RoomDeduction, error)
}

type inventoryService struct {
	repo        repository.InventoryRepository
	ledgerRepo  repository.LedgerRepository
	productRepo repository.ProductRepository
	roomRepo    repository.RoomRepository
}

func NewInventoryService(
	repo repository.InventoryRepository,
	ledgerRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
	roomRepo repository.RoomRepository,
) InventoryService {
	return &inventoryService{
		repo:        repo,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		roomRepo:    roomRepo,
	}
}

// applyRestock computes the new quantity and weighted-average cost after
// receiving qty units at unitCost into item. Pure — no side effects.
func applyRestock(item *model.InventoryItem, qty int, unitCost decimal.Decimal) (int, decimal.Decimal) {
	newQty := item.Quantity + qty
	if item.Quantity == 0 {
		return newQty, unitCost
	}
	held := item.AverageCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
	incoming := unitCost.Mul(decimal.NewFromInt(int64(qty)))
	avg := held.Add(incoming).Div(decimal.NewFromInt(int64(newQty))).Round(4)
	return newQty, avg
}

// ── Restock ──────────────────────────────────────────────────────────────────

func (s *inventoryService) Restock(ctx context.Context, storeID uuid.UUID, req dto.RestockRequest) (*dto.RestockResponse, error) {
	product, err := s.resolveProduct(ctx, storeID, req.ProductID)
	if err != nil {
		return nil, err
	}
	room, err := s.resolveRoom(ctx, storeID, req.RoomID)
	if err != nil {
		return nil, err
	}

	cost := decimal.Zero
	if req.Cost != nil {
		cost = *req.Cost
	}

	var supplierRef *uuid.UUID
	if req.SupplierID != nil {
		id, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier_id: %w", err)
		}
		supplierRef = &id
	}

	var snapshot model.InventoryItem
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		item, err := s.findOrCreateItemTx(ctx, tx, product, room)
		if err != nil {
			return err
		}

		newQty, newAvg := applyRestock(item, req.Quantity, cost)
		if err := s.repo.SetLevelsTx(ctx, tx, item.ID, newQty, newAvg); err != nil {
			return err
		}

		entry := &model.InventoryTransaction{
			Type:            model.LedgerRestock,
			ProductID:       product.ID,
			RoomID:          room.ID,
			StoreID:         storeID,
			InventoryItemID: item.ID,
			Quantity:        req.Quantity,
			UnitCost:        cost,
			SupplierRef:     supplierRef,
			InvoiceRef:      req.InvoiceNumber,
		}
		if err := s.ledgerRepo.CreateTx(ctx, tx, entry); err != nil {
			return err
		}

		snapshot = *item
		snapshot.Quantity = newQty
		snapshot.AverageCost = newAvg
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.RestockResponse{
		Success: true,
		Item: dto.InventoryItemResponse{
			ID:          snapshot.ID.String(),
			ProductID:   product.ID.String(),
			Product:     product.Name,
			RoomID:      room.ID.String(),
			Room:        room.Name,
			Quantity:    snapshot.Quantity,
			AverageCost: snapshot.AverageCost,
		},
	}, nil
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func (s *inventoryService) Transfer(ctx context.Context, storeID uuid.UUID, req dto.TransferRequest) error {
	if req.SourceRoomID == req.DestinationRoomID {
		return ErrSameRoom
	}
	product, err := s.resolveProduct(ctx, storeID, req.ProductID)
	if err != nil {
		return err
	}
	source, err := s.resolveRoom(ctx, storeID, req.SourceRoomID)
	if err != nil {
		return err
	}
	dest, err := s.resolveRoom(ctx, storeID, req.DestinationRoomID)
	if err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Lock the two items in room-id order so two opposite transfers of
		// the same product cannot deadlock.
		lockOrder := []*model.Room{source, dest}
		if dest.ID.String() < source.ID.String() {
			lockOrder[0], lockOrder[1] = dest, source
		}
		var srcItem, dstItem *model.InventoryItem
		for _, room := range lockOrder {
			item, err := s.repo.FindItemForUpdateTx(ctx, tx, product.ID, room.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if room.ID == source.ID {
				srcItem = item
			} else {
				dstItem = item
			}
		}

		if srcItem == nil {
			return ErrItemNotFound
		}
		if srcItem.Quantity < req.Quantity {
			return &InsufficientInventoryError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   req.Quantity,
				Available:   srcItem.Quantity,
			}
		}

		if dstItem == nil {
			var err error
			dstItem, err = s.findOrCreateItemTx(ctx, tx, product, dest)
			if err != nil {
				return err
			}
		}

		// Source keeps its average cost; destination blends the incoming
		// units at the source's cost basis.
		if err := s.repo.SetLevelsTx(ctx, tx, srcItem.ID, srcItem.Quantity-req.Quantity, srcItem.AverageCost); err != nil {
			return err
		}
		newQty, newAvg := applyRestock(dstItem, req.Quantity, srcItem.AverageCost)
		if err := s.repo.SetLevelsTx(ctx, tx, dstItem.ID, newQty, newAvg); err != nil {
			return err
		}

		// Two ledger rows with opposite signs sharing one correlation ref.
		ref := uuid.New()
		out := &model.InventoryTransaction{
			Type:            model.LedgerTransfer,
			ProductID:       product.ID,
			RoomID:          source.ID,
			StoreID:         storeID,
			InventoryItemID: srcItem.ID,
			Quantity:        -req.Quantity,
			UnitCost:        srcItem.AverageCost,
			TransferRef:     &ref,
			Note:            fmt.Sprintf("Transfer to %s", dest.Name),
		}
		if err := s.ledgerRepo.CreateTx(ctx, tx, out); err != nil {
			return err
		}
		in := &model.InventoryTransaction{
			Type:            model.LedgerTransfer,
			ProductID:       product.ID,
			RoomID:          dest.ID,
			StoreID:         storeID,
			InventoryItemID: dstItem.ID,
			Quantity:        req.Quantity,
			UnitCost:        srcItem.AverageCost,
			TransferRef:     &ref,
			Note:            fmt.Sprintf("Transfer from %s", source.Name),
		}
		return s.ledgerRepo.CreateTx(ctx, tx, in)
	})
}

// ── Adjust ───────────────────────────────────────────────────────────────────

func (s *inventoryService) Adjust(ctx context.Context, storeID uuid.UUID, req dto.AdjustRequest) (*dto.InventoryItemResponse, error) {
	product, err := s.resolveProduct(ctx, storeID, req.ProductID)
	if err != nil {
		return nil, err
	}
	room, err := s.resolveRoom(ctx, storeID, req.RoomID)
	if err != nil {
		return nil, err
	}

	var snapshot dto.InventoryItemResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		item, err := s.repo.FindItemForUpdateTx(ctx, tx, product.ID, room.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		newQty := item.Quantity + req.Delta
		if newQty < 0 {
			return ErrStockBelowZero
		}
		if err := s.repo.SetLevelsTx(ctx, tx, item.ID, newQty, item.AverageCost); err != nil {
			return err
		}

		entry := &model.InventoryTransaction{
			Type:            model.LedgerAdjustment,
			ProductID:       product.ID,
			RoomID:          room.ID,
			StoreID:         storeID,
			InventoryItemID: item.ID,
			Quantity:        req.Delta,
			UnitCost:        item.AverageCost,
			Note:            req.Reason,
		}
		if err := s.ledgerRepo.CreateTx(ctx, tx, entry); err != nil {
			return err
		}

		snapshot = dto.InventoryItemResponse{
			ID:          item.ID.String(),
			ProductID:   product.ID.String(),
			Product:     product.Name,
			RoomID:      room.ID.String(),
			Room:        room.Name,
			Quantity:    newQty,
			AverageCost: item.AverageCost,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &snapshot, nil
}

// ── Allocator ────────────────────────────────────────────────────────────────

func (s *inventoryService) DeductForSaleTx(ctx context.Context, tx *gorm.DB, product *model.Product, quantity int, invoiceNumber string) ([]RoomDeduction, error) {
	items, err := s.repo.SellableForUpdateTx(ctx, tx, product.StoreID, product.ID)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, item := range items {
		available += item.Quantity
	}
	if available < quantity {
		return nil, &InsufficientInventoryError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   available,
		}
	}

	// Largest-stock room first: the repo returns the rows quantity-descending,
	// which minimizes the number of rooms touched and ledger rows written.
	note := fmt.Sprintf("Sale %s", invoiceNumber)
	deductions := make([]RoomDeduction, 0, 1)
	remaining := quantity
	for i := range items {
		if remaining == 0 {
			break
		}
		take := remaining
		if items[i].Quantity < take {
			take = items[i].Quantity
		}
		if take == 0 {
			continue
		}

		if err := s.repo.AddQuantityTx(ctx, tx, items[i].ID, -take); err != nil {
			return nil, err
		}
		entry := &model.InventoryTransaction{
			Type:            model.LedgerSale,
			ProductID:       product.ID,
			RoomID:          items[i].RoomID,
			StoreID:         product.StoreID,
			InventoryItemID: items[i].ID,
			Quantity:        -take,
			UnitCost:        items[i].AverageCost,
			InvoiceRef:      &invoiceNumber,
			Note:            note,
		}
		if err := s.ledgerRepo.CreateTx(ctx, tx, entry); err != nil {
			return nil, err
		}

		deductions = append(deductions, RoomDeduction{
			RoomID:   items[i].RoomID,
			Quantity: take,
			UnitCost: items[i].AverageCost,
		})
		remaining -= take
	}

	if len(deductions) > 1 {
		log.Debug().
			Str("product", product.Name).
			Int("quantity", quantity).
			Int("rooms", len(deductions)).
			Msg("sale line split across rooms")
	}
	return deductions, nil
}

// ── Listing ──────────────────────────────────────────────────────────────────

func (s *inventoryService) ListItems(ctx context.Context, storeID uuid.UUID, filter dto.InventoryFilter) (*dto.InventoryListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	items, total, err := s.repo.List(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InventoryItemResponse, 0, len(items))
	for _, item := range items {
		resp := dto.InventoryItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			RoomID:      item.RoomID.String(),
			Quantity:    item.Quantity,
			AverageCost: item.AverageCost,
		}
		if item.Product != nil {
			resp.Product = item.Product.Name
		}
		if item.Room != nil {
			resp.Room = item.Room.Name
		}
		data = append(data, resp)
	}
	return &dto.InventoryListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) ListLedger(ctx context.Context, storeID uuid.UUID, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	entries, total, err := s.ledgerRepo.List(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := dto.LedgerEntryResponse{
			ID:         e.ID.String(),
			Type:       e.Type,
			ProductID:  e.ProductID.String(),
			RoomID:     e.RoomID.String(),
			Quantity:   e.Quantity,
			UnitCost:   e.UnitCost,
			InvoiceRef: e.InvoiceRef,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if e.Product != nil {
			resp.Product = e.Product.Name
		}
		if e.Room != nil {
			resp.Room = e.Room.Name
		}
		if e.SupplierRef != nil {
			ref := e.SupplierRef.String()
			resp.SupplierRef = &ref
		}
		if e.TransferRef != nil {
			ref := e.TransferRef.String()
			resp.TransferRef = &ref
		}
		data = append(data, resp)
	}
	return &dto.LedgerListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *inventoryService) resolveProduct(ctx context.Context, storeID uuid.UUID, rawID string) (*model.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if product.StoreID != storeID {
		return nil, ErrProductNotOwned
	}
	return product, nil
}

func (s *inventoryService) resolveRoom(ctx context.Context, storeID uuid.UUID, rawID string) (*model.Room, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid room_id: %w", err)
	}
	room, err := s.roomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if room.StoreID != storeID {
		return nil, ErrRoomNotOwned
	}
	return room, nil
}

// findOrCreateItemTx fetches the row-locked item for (product, room),
// creating a zero-quantity record on first restock into a room.
func (s *inventoryService) findOrCreateItemTx(ctx context.Context, tx *gorm.DB, product *model.Product, room *model.Room) (*model.InventoryItem, error) {
	item, err := s.repo.FindItemForUpdateTx(ctx, tx, product.ID, room.ID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	item = &model.InventoryItem{
		ProductID:   product.ID,
		RoomID:      room.ID,
		StoreID:     product.StoreID,
		Quantity:    0,
		AverageCost: decimal.Zero,
	}
	if err := s.repo.CreateTx(ctx, tx, item); err != nil {
		return nil, err
	}
	return item, nil
}
