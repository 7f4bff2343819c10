package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const pullPageSize = 500

// SyncRemote is the remote service as seen by the sync flow. *remote.Client
// satisfies it.
type SyncRemote interface {
	Configured() bool
	BaseURL() string
	SetBaseURL(raw string) error
	BreakerState() string
	Ping(ctx context.Context) error
	Push(ctx context.Context, req dto.SyncPushRequest) (*dto.SyncPushResponse, error)
	Pull(ctx context.Context, since time.Time) (*dto.SyncPullResponse, error)
}

type SyncService interface {
	// Device side.
	Sync(ctx context.Context) (*dto.SyncResultResponse, error)
	Reachable(ctx context.Context) bool
	Status(ctx context.Context) (*dto.SyncStatusResponse, error)
	RetryFailed(ctx context.Context) (int64, error)
	SetRemote(ctx context.Context, req dto.RemoteConfigRequest) error

	// Server side of /v1/sync.
	ApplyPush(ctx context.Context, req dto.SyncPushRequest) (*dto.SyncPushResponse, error)
	PullSince(ctx context.Context, since time.Time) (*dto.SyncPullResponse, error)
}

type SyncDeps struct {
	Queue         repository.SyncQueueRepository
	Products      repository.ProductRepository
	Variants      repository.VariantRepository
	Categories    repository.CategoryRepository
	Suppliers     repository.SupplierRepository
	Customers     repository.CustomerRepository
	Sales         repository.SaleRepository
	Expenses      repository.ExpenseRepository
	Notifications NotificationService
	Remote        SyncRemote
	Prefs         *infra.PrefStore
	DeviceID      string
	BatchSize     int
	MaxRetries    int
}

type syncService struct {
	SyncDeps
	now func() time.Time
}

func NewSyncService(deps SyncDeps) SyncService {
	if deps.BatchSize <= 0 {
		deps.BatchSize = 100
	}
	if deps.MaxRetries <= 0 {
		deps.MaxRetries = 3
	}
	return &syncService{SyncDeps: deps, now: time.Now}
}

// ── Device side ────────────────────────────────────────────────────────────

func (s *syncService) Reachable(ctx context.Context) bool {
	if s.Remote == nil || !s.Remote.Configured() {
		return false
	}
	return s.Remote.Ping(ctx) == nil
}

// Sync pushes one batch of pending entries and then pulls remote product
// changes. A push failure still lets the pull run.
func (s *syncService) Sync(ctx context.Context) (*dto.SyncResultResponse, error) {
	if s.Remote == nil || !s.Remote.Configured() {
		return nil, ErrOffline
	}
	res := &dto.SyncResultResponse{}

	pushErr := s.push(ctx, res)
	pullErr := s.pull(ctx, res)

	log.Info().
		Int("pushed", res.Pushed).Int("retrying", res.Retrying).Int("failed", res.Failed).
		Int("pulled", res.Pulled).Msg("sync cycle finished")

	if res.Failed > 0 && s.Notifications != nil {
		s.Notifications.Notify(ctx, model.ChannelSyncStatus, "Sync failures",
			fmt.Sprintf("%d change(s) reached the retry limit and need attention", res.Failed))
	}
	if err := errors.Join(pushErr, pullErr); err != nil {
		return res, fmt.Errorf("%w: %v", ErrOffline, err)
	}
	return res, nil
}

func (s *syncService) push(ctx context.Context, res *dto.SyncResultResponse) error {
	pending, err := s.Queue.ListPending(ctx, s.BatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	req := dto.SyncPushRequest{DeviceID: s.DeviceID, Entries: make([]dto.SyncEntry, len(pending))}
	byID := make(map[string]model.SyncQueueEntry, len(pending))
	for i, e := range pending {
		req.Entries[i] = dto.SyncEntry{
			ID:         e.ID.String(),
			EntityType: e.EntityType,
			EntityID:   e.EntityID.String(),
			Operation:  e.Operation,
			Payload:    json.RawMessage(e.Payload),
			CreatedAt:  formatTime(e.CreatedAt),
		}
		byID[e.ID.String()] = e
	}

	resp, err := s.Remote.Push(ctx, req)
	if err != nil {
		for _, e := range pending {
			s.failAttempt(ctx, e, err.Error(), res)
		}
		return err
	}

	var synced, products []uuid.UUID
	for _, id := range resp.Accepted {
		e, ok := byID[id]
		if !ok {
			continue
		}
		synced = append(synced, e.ID)
		if e.EntityType == model.EntityProduct {
			products = append(products, e.EntityID)
		}
	}
	if err := s.Queue.MarkSynced(ctx, synced, s.now().UTC()); err != nil {
		return err
	}
	if err := s.Products.MarkSyncStatus(ctx, products, model.SyncStatusSynced); err != nil {
		return err
	}
	res.Pushed += len(synced)

	for _, rej := range resp.Rejected {
		if e, ok := byID[rej.ID]; ok {
			s.failAttempt(ctx, e, rej.Error, res)
		}
	}
	return nil
}

func (s *syncService) failAttempt(ctx context.Context, e model.SyncQueueEntry, msg string, res *dto.SyncResultResponse) {
	if err := s.Queue.MarkFailedAttempt(ctx, e.ID, msg, s.MaxRetries); err != nil {
		log.Error().Err(err).Str("entry", e.ID.String()).Msg("sync: record failed attempt")
		return
	}
	if e.RetryCount+1 >= s.MaxRetries {
		res.Failed++
		if e.EntityType == model.EntityProduct {
			_ = s.Products.MarkSyncStatus(ctx, []uuid.UUID{e.EntityID}, model.SyncStatusFailed)
		}
		return
	}
	res.Retrying++
}

func (s *syncService) lastSyncAt() time.Time {
	raw, ok := s.Prefs.Get(infra.PrefsSession, infra.PrefLastSyncAt)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// pull applies remote product snapshots over the local rows. The remote
// copy wins; there is no merge.
func (s *syncService) pull(ctx context.Context, res *dto.SyncResultResponse) error {
	resp, err := s.Remote.Pull(ctx, s.lastSyncAt())
	if err != nil {
		return err
	}

	for _, pl := range resp.Products {
		p, variants, err := productFromPayload(pl)
		if err != nil {
			log.Warn().Err(err).Str("product", pl.ID).Msg("sync: skipping malformed product")
			continue
		}
		p.SyncStatus = model.SyncStatusSynced
		err = runTx(ctx, s.Products.DB(), func(tx *gorm.DB) error {
			if err := s.Products.ReplaceTx(tx, p); err != nil {
				return err
			}
			for i := range variants {
				if err := s.Variants.UpsertTx(tx, &variants[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("product", pl.ID).Msg("sync: pulled product not applied")
			continue
		}
		res.Pulled++
	}

	stamp := resp.ServerTime
	if _, err := time.Parse(timeLayout, stamp); err != nil {
		stamp = formatTime(s.now())
	}
	return s.Prefs.Set(infra.PrefsSession, infra.PrefLastSyncAt, stamp)
}

func (s *syncService) Status(ctx context.Context) (*dto.SyncStatusResponse, error) {
	pending, failed, err := s.Queue.Counts(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.SyncStatusResponse{Pending: pending, Failed: failed}
	if last, ok := s.Prefs.Get(infra.PrefsSession, infra.PrefLastSyncAt); ok {
		out.LastSyncAt = &last
	}
	if s.Remote != nil {
		out.RemoteURL = s.Remote.BaseURL()
		out.Breaker = s.Remote.BreakerState()
	}
	return out, nil
}

// RetryFailed puts entries that hit the retry ceiling back in the queue.
func (s *syncService) RetryFailed(ctx context.Context) (int64, error) {
	n, err := s.Queue.ResetFailed(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("entries", n).Msg("failed sync entries re-queued")
	return n, nil
}

func (s *syncService) SetRemote(_ context.Context, req dto.RemoteConfigRequest) error {
	if s.Remote == nil {
		return ErrUnsupported
	}
	return s.Remote.SetBaseURL(req.BaseURL)
}

// ── Server side ────────────────────────────────────────────────────────────

// ApplyPush records each entry in its own transaction so one bad entry does
// not reject the batch. Re-sent entries are applied idempotently.
func (s *syncService) ApplyPush(ctx context.Context, req dto.SyncPushRequest) (*dto.SyncPushResponse, error) {
	out := &dto.SyncPushResponse{Accepted: []string{}, Rejected: []dto.SyncRejection{}}
	for _, e := range req.Entries {
		err := runTx(ctx, s.Products.DB(), func(tx *gorm.DB) error {
			return s.applyEntry(tx, req.DeviceID, e)
		})
		if err != nil {
			log.Warn().Err(err).Str("device", req.DeviceID).Str("entity", e.EntityType).
				Str("entry", e.ID).Msg("sync entry rejected")
			out.Rejected = append(out.Rejected, dto.SyncRejection{ID: e.ID, Error: err.Error()})
			continue
		}
		out.Accepted = append(out.Accepted, e.ID)
	}
	return out, nil
}

func (s *syncService) applyEntry(tx *gorm.DB, deviceID string, e dto.SyncEntry) error {
	switch e.EntityType {
	case model.EntityProduct:
		var pl dto.ProductPayload
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		p, _, err := productFromPayload(pl)
		if err != nil {
			return err
		}
		if e.Operation == model.SyncDelete {
			p.Active = false
		}
		p.SyncStatus = model.SyncStatusSynced
		return s.Products.UpsertTx(tx, p)

	case model.EntityVariant:
		var pl dto.VariantPayload
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		v, err := variantFromPayload(pl)
		if err != nil {
			return err
		}
		if e.Operation == model.SyncDelete {
			v.Active = false
		}
		return s.Variants.UpsertTx(tx, v)

	case model.EntityCategory:
		var pl dto.CategoryResponse
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		id, err := uuid.Parse(pl.ID)
		if err != nil {
			return err
		}
		return s.Categories.UpsertTx(tx, &model.Category{
			ID: id, Name: pl.Name, Description: pl.Description,
			Active: pl.Active && e.Operation != model.SyncDelete,
		})

	case model.EntitySupplier:
		var pl dto.SupplierResponse
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		id, err := uuid.Parse(pl.ID)
		if err != nil {
			return err
		}
		return s.Suppliers.UpsertTx(tx, &model.Supplier{
			ID: id, Name: pl.Name, ContactName: pl.ContactName, Phone: pl.Phone,
			Email: pl.Email, Address: pl.Address,
			Active: pl.Active && e.Operation != model.SyncDelete,
		})

	case model.EntityCustomer:
		var pl dto.CustomerResponse
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		id, err := uuid.Parse(pl.ID)
		if err != nil {
			return err
		}
		return s.Customers.UpsertTx(tx, &model.Customer{
			ID: id, Name: pl.Name, Phone: pl.Phone, Email: pl.Email, TaxID: pl.TaxID,
			Address: pl.Address, Notes: pl.Notes,
			Active: pl.Active && e.Operation != model.SyncDelete,
		})

	case model.EntitySale:
		return s.applySale(tx, deviceID, e)

	case model.EntityExpense:
		var pl dto.ExpenseResponse
		if err := json.Unmarshal(e.Payload, &pl); err != nil {
			return err
		}
		ex, err := expenseFromPayload(pl)
		if err != nil {
			return err
		}
		if e.Operation == model.SyncDelete {
			return s.Expenses.DeleteTx(tx, ex.ID)
		}
		return s.Expenses.UpsertTx(tx, ex)
	}
	return fmt.Errorf("%w: entity type %q", ErrUnsupported, e.EntityType)
}

// applySale stores a sale once under the pushing device; later entries for
// the same sale only carry the cancellation.
func (s *syncService) applySale(tx *gorm.DB, deviceID string, e dto.SyncEntry) error {
	var pl dto.SaleResponse
	if err := json.Unmarshal(e.Payload, &pl); err != nil {
		return err
	}
	sale, err := saleFromPayload(pl)
	if err != nil {
		return err
	}
	sale.DeviceID = deviceID
	exists, err := s.Sales.ExistsTx(tx, sale.ID)
	if err != nil {
		return err
	}
	if !exists {
		return s.Sales.CreateTx(tx, sale)
	}
	if sale.Status == model.SaleCancelled {
		return s.Sales.UpdateCancellationTx(tx, sale)
	}
	return nil
}

func (s *syncService) PullSince(ctx context.Context, since time.Time) (*dto.SyncPullResponse, error) {
	serverTime := s.now().UTC()
	products, err := s.Products.UpdatedSince(ctx, since, pullPageSize)
	if err != nil {
		return nil, err
	}
	out := &dto.SyncPullResponse{Products: make([]dto.ProductPayload, len(products)), ServerTime: formatTime(serverTime)}
	for i := range products {
		out.Products[i] = productPayload(&products[i])
	}
	// A full page may leave rows behind; the client resumes from the last one.
	if len(products) == pullPageSize {
		out.ServerTime = formatTime(products[len(products)-1].UpdatedAt)
	}
	return out, nil
}

// ── Payload mapping ────────────────────────────────────────────────────────

func productFromPayload(pl dto.ProductPayload) (*model.Product, []model.ProductVariant, error) {
	id, err := uuid.Parse(pl.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("product id: %w", err)
	}
	categoryID, err := parseOptionalUUID(pl.CategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("category id: %w", err)
	}
	supplierID, err := parseOptionalUUID(pl.SupplierID)
	if err != nil {
		return nil, nil, fmt.Errorf("supplier id: %w", err)
	}
	updated, err := time.Parse(timeLayout, pl.UpdatedAt)
	if err != nil {
		updated = time.Now().UTC()
	}
	p := &model.Product{
		ID: id, Name: pl.Name, Description: pl.Description, Barcode: pl.Barcode,
		Identifier: pl.Identifier, Price: pl.Price, Cost: pl.Cost, Stock: pl.Stock,
		MinStock: pl.MinStock, Unit: pl.Unit, CategoryID: categoryID, SupplierID: supplierID,
		Active: pl.Active, UpdatedAt: updated,
	}
	if p.Unit == "" {
		p.Unit = "unit"
	}
	variants := make([]model.ProductVariant, 0, len(pl.Variants))
	for _, vp := range pl.Variants {
		v, err := variantFromPayload(vp)
		if err != nil {
			return nil, nil, err
		}
		variants = append(variants, *v)
	}
	return p, variants, nil
}

func variantFromPayload(pl dto.VariantPayload) (*model.ProductVariant, error) {
	id, err := uuid.Parse(pl.ID)
	if err != nil {
		return nil, fmt.Errorf("variant id: %w", err)
	}
	productID, err := uuid.Parse(pl.ProductID)
	if err != nil {
		return nil, fmt.Errorf("variant product id: %w", err)
	}
	return &model.ProductVariant{
		ID: id, ProductID: productID, Type: pl.Type, Label: pl.Label, Value: pl.Value,
		Barcode: pl.Barcode, Stock: pl.Stock, PriceDelta: pl.PriceDelta, Active: pl.Active,
	}, nil
}

func expenseFromPayload(pl dto.ExpenseResponse) (*model.Expense, error) {
	id, err := uuid.Parse(pl.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(pl.UserID)
	if err != nil {
		return nil, err
	}
	return &model.Expense{
		ID: id, Amount: pl.Amount, Category: pl.Category, Description: pl.Description,
		PaidInCash: pl.PaidInCash, SpentOn: pl.SpentOn, UserID: userID,
	}, nil
}

func saleFromPayload(pl dto.SaleResponse) (*model.Sale, error) {
	id, err := uuid.Parse(pl.ID)
	if err != nil {
		return nil, fmt.Errorf("sale id: %w", err)
	}
	userID, err := uuid.Parse(pl.UserID)
	if err != nil {
		return nil, fmt.Errorf("sale user id: %w", err)
	}
	customerID, err := parseOptionalUUID(pl.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("sale customer id: %w", err)
	}
	created, err := time.Parse(timeLayout, pl.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sale created_at: %w", err)
	}
	sale := &model.Sale{
		ID: id, InvoiceNumber: pl.InvoiceNumber, UserID: userID, CustomerID: customerID,
		Subtotal: pl.Subtotal, Discount: pl.Discount, TaxRate: pl.TaxRate, Tax: pl.Tax,
		Total: pl.Total, PaymentMethod: pl.PaymentMethod, AmountReceived: pl.AmountReceived,
		Change: pl.Change, Status: pl.Status, Notes: pl.Notes, CancelReason: pl.CancelReason,
		CreatedAt: created,
	}
	if pl.CancelledAt != nil {
		if t, err := time.Parse(timeLayout, *pl.CancelledAt); err == nil {
			sale.CancelledAt = &t
		}
	}
	for _, it := range pl.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("sale item product id: %w", err)
		}
		variantID, err := parseOptionalUUID(it.VariantID)
		if err != nil {
			return nil, fmt.Errorf("sale item variant id: %w", err)
		}
		sale.Items = append(sale.Items, model.SaleItem{
			SaleID: id, ProductID: productID, VariantID: variantID,
			ProductName: it.ProductName, VariantLabel: it.VariantLabel, Quantity: it.Quantity,
			UnitPrice: it.UnitPrice, PurchasePrice: it.PurchasePrice, Subtotal: it.Subtotal,
		})
	}
	return sale, nil
}
