package service_test

// In-memory repository stubs. Mutating Tx methods accept a nil *gorm.DB:
// runTx short-circuits to fn(nil) when the repo reports no database, so the
// services under test run their full transaction bodies against these maps.

import (
	"context"
	"errors"
	"sort"

	"stockpos/internal/dto"
	"stockpos/internal/model"
	"stockpos/internal/repository"
	"stockpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Product repo ─────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, storeID uuid.UUID, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.StoreID == storeID && p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, storeID uuid.UUID, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.StoreID == storeID && p.Active {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Room repo ────────────────────────────────────────────────────────────────

type stubRoomRepo struct {
	rooms map[uuid.UUID]*model.Room
}

func newStubRoomRepo() *stubRoomRepo {
	return &stubRoomRepo{rooms: make(map[uuid.UUID]*model.Room)}
}

func (r *stubRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *stubRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return room, nil
}

func (r *stubRoomRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]model.Room, error) {
	var out []model.Room
	for _, room := range r.rooms {
		if room.StoreID == storeID && room.Active {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *stubRoomRepo) Update(_ context.Context, room *model.Room) error {
	r.rooms[room.ID] = room
	return nil
}

func (r *stubRoomRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if room, ok := r.rooms[id]; ok {
		room.Active = false
	}
	return nil
}

var _ repository.RoomRepository = (*stubRoomRepo)(nil)

// ── Store repo ───────────────────────────────────────────────────────────────

type stubStoreRepo struct {
	stores map[uuid.UUID]*model.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (r *stubStoreRepo) Create(_ context.Context, s *model.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStoreRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Store, error) {
	var out []model.Store
	for _, s := range r.stores {
		if s.OwnerID == ownerID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) IsOwnedBy(_ context.Context, storeID, userID uuid.UUID) (bool, error) {
	s, ok := r.stores[storeID]
	return ok && s.Active && s.OwnerID == userID, nil
}

func (r *stubStoreRepo) NextInvoiceNumberTx(_ context.Context, _ *gorm.DB, storeID uuid.UUID) (int, error) {
	s, ok := r.stores[storeID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	s.InvoiceCounter++
	return s.InvoiceCounter, nil
}

func (r *stubStoreRepo) DB() *gorm.DB { return nil }

var _ repository.StoreRepository = (*stubStoreRepo)(nil)

// ── Inventory repo ───────────────────────────────────────────────────────────

// stubInventoryRepo shares the room map with stubRoomRepo so that
// SellableForUpdateTx can evaluate the for_sale flag like the SQL join does.
type stubInventoryRepo struct {
	items map[uuid.UUID]*model.InventoryItem
	rooms map[uuid.UUID]*model.Room
}

func newStubInventoryRepo(rooms *stubRoomRepo) *stubInventoryRepo {
	return &stubInventoryRepo{
		items: make(map[uuid.UUID]*model.InventoryItem),
		rooms: rooms.rooms,
	}
}

func (r *stubInventoryRepo) findByProductRoom(productID, roomID uuid.UUID) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.ProductID == productID && item.RoomID == roomID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInventoryRepo) FindItem(_ context.Context, productID, roomID uuid.UUID) (*model.InventoryItem, error) {
	return r.findByProductRoom(productID, roomID)
}

func (r *stubInventoryRepo) FindItemForUpdateTx(_ context.Context, _ *gorm.DB, productID, roomID uuid.UUID) (*model.InventoryItem, error) {
	return r.findByProductRoom(productID, roomID)
}

func (r *stubInventoryRepo) SellableForUpdateTx(_ context.Context, _ *gorm.DB, storeID, productID uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.StoreID != storeID || item.ProductID != productID {
			continue
		}
		room, ok := r.rooms[item.RoomID]
		if !ok || !room.ForSale || !room.Active {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out, nil
}

func (r *stubInventoryRepo) CreateTx(_ context.Context, _ *gorm.DB, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubInventoryRepo) SetLevelsTx(_ context.Context, _ *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	item.AverageCost = averageCost
	return nil
}

func (r *stubInventoryRepo) AddQuantityTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if item.Quantity+delta < 0 {
		return errors.New("check constraint violation: quantity would go negative")
	}
	item.Quantity += delta
	return nil
}

func (r *stubInventoryRepo) List(_ context.Context, storeID uuid.UUID, filter dto.InventoryFilter) ([]model.InventoryItem, int64, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.StoreID != storeID {
			continue
		}
		if filter.ProductID != "" && item.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.RoomID != "" && item.RoomID.String() != filter.RoomID {
			continue
		}
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── Ledger repo ──────────────────────────────────────────────────────────────

type stubLedgerRepo struct {
	entries []model.InventoryTransaction
}

func (r *stubLedgerRepo) CreateTx(_ context.Context, _ *gorm.DB, entry *model.InventoryTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubLedgerRepo) List(_ context.Context, storeID uuid.UUID, filter dto.LedgerFilter) ([]model.InventoryTransaction, int64, error) {
	var out []model.InventoryTransaction
	for _, e := range r.entries {
		if e.StoreID != storeID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.ProductID != "" && e.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.RoomID != "" && e.RoomID.String() != filter.RoomID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

// ofType filters captured entries by ledger type, in append order.
func (r *stubLedgerRepo) ofType(t string) []model.InventoryTransaction {
	var out []model.InventoryTransaction
	for _, e := range r.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

// ── Sale repo ────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	stored := *s
	r.sales[s.ID] = &stored
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, storeID uuid.UUID, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.StoreID == storeID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── User repo ────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
	}
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

// fixture wires one store (with owner) plus the full stub repo set and both
// inventory and sale services.
type fixture struct {
	products  *stubProductRepo
	rooms     *stubRoomRepo
	stores    *stubStoreRepo
	inventory *stubInventoryRepo
	ledger    *stubLedgerRepo
	sales     *stubSaleRepo

	inventorySvc service.InventoryService
	saleSvc      service.SaleService

	store   *model.Store
	ownerID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		products: newStubProductRepo(),
		rooms:    newStubRoomRepo(),
		stores:   newStubStoreRepo(),
		ledger:   &stubLedgerRepo{},
		sales:    newStubSaleRepo(),
		ownerID:  uuid.New(),
	}
	f.inventory = newStubInventoryRepo(f.rooms)

	f.store = &model.Store{
		ID:      uuid.New(),
		Name:    "Main Street",
		OwnerID: f.ownerID,
		TaxID:   "30-71234567-9",
		Active:  true,
	}
	f.stores.stores[f.store.ID] = f.store

	f.inventorySvc = service.NewInventoryService(f.inventory, f.ledger, f.products, f.rooms)
	f.saleSvc = service.NewSaleService(f.sales, f.stores, f.products, f.inventorySvc, nil, nil)
	return f
}

func (f *fixture) seedStore(name string, ownerID uuid.UUID) *model.Store {
	s := &model.Store{ID: uuid.New(), Name: name, OwnerID: ownerID, Active: true}
	f.stores.stores[s.ID] = s
	return s
}

func (f *fixture) seedProduct(store *model.Store, name, sku string, price float64) *model.Product {
	p := &model.Product{
		ID:      uuid.New(),
		StoreID: store.ID,
		SKU:     sku,
		Name:    name,
		Price:   decimal.NewFromFloat(price),
		Active:  true,
	}
	f.products.products[p.ID] = p
	return p
}

func (f *fixture) seedRoom(store *model.Store, name string, forSale bool) *model.Room {
	r := &model.Room{
		ID:      uuid.New(),
		StoreID: store.ID,
		Name:    name,
		ForSale: forSale,
		Active:  true,
	}
	f.rooms.rooms[r.ID] = r
	return r
}

func (f *fixture) seedItem(p *model.Product, room *model.Room, qty int, avgCost float64) *model.InventoryItem {
	item := &model.InventoryItem{
		ID:          uuid.New(),
		ProductID:   p.ID,
		RoomID:      room.ID,
		StoreID:     p.StoreID,
		Quantity:    qty,
		AverageCost: decimal.NewFromFloat(avgCost),
	}
	f.inventory.items[item.ID] = item
	return item
}

// itemOf returns the live stub row for (product, room); fails the lookup
// silently with a nil so callers can require.NotNil.
func (f *fixture) itemOf(p *model.Product, room *model.Room) *model.InventoryItem {
	item, err := f.inventory.findByProductRoom(p.ID, room.ID)
	if err != nil {
		return nil
	}
	return item
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
