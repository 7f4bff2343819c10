package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Checkout(ctx context.Context, sess session.Session, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, sess session.Session, id uuid.UUID, reason string) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// Receipt returns the receipt PDF path, rendering it when missing.
	Receipt(ctx context.Context, id uuid.UUID) (string, error)
	GenerateReceipt(ctx context.Context, id uuid.UUID) (string, error)
}

// SaleDeps groups the collaborators of the sale service.
type SaleDeps struct {
	Sales         repository.SaleRepository
	Cart          repository.CartRepository
	Products      repository.ProductRepository
	Variants      repository.VariantRepository
	Movements     repository.StockMovementRepository
	SyncQueue     repository.SyncQueueRepository
	Cash          repository.CashSummaryRepository
	Customers     repository.CustomerRepository
	Settings      SettingsService
	Notifications NotificationService
	Jobs          JobEnqueuer
	ReceiptDir    string
}

type saleService struct {
	SaleDeps
	now func() time.Time
}

func NewSaleService(deps SaleDeps) SaleService {
	return &saleService{SaleDeps: deps, now: time.Now}
}

// Totals is the arithmetic of a checkout. Total is always
// Subtotal - Discount + Tax and Change is never negative.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Received decimal.Decimal
	Change   decimal.Decimal
}

// ComputeTotals prices a checkout. rate is a percentage applied after the
// discount. For non-cash methods a zero amount received means "exact".
func ComputeTotals(subtotal, discount, rate decimal.Decimal, method string, received decimal.Decimal) (Totals, error) {
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return Totals{}, ErrInvalidDiscount
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return Totals{}, ErrInvalidTaxRate
	}
	base := subtotal.Sub(discount)
	tax := base.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	total := base.Add(tax)

	if method != model.PaymentCash && received.IsZero() {
		received = total
	}
	if received.LessThan(total) {
		return Totals{}, ErrInsufficientPayment
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		TaxRate:  rate,
		Tax:      tax,
		Total:    total,
		Received: received,
		Change:   decimal.Max(received.Sub(total), decimal.Zero),
	}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             s.ID.String(),
		InvoiceNumber:  s.InvoiceNumber,
		DeviceID:       s.DeviceID,
		UserID:         s.UserID.String(),
		CustomerID:     uuidString(s.CustomerID),
		Items:          make([]dto.SaleItemResponse, len(s.Items)),
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		TaxRate:        s.TaxRate,
		Tax:            s.Tax,
		Total:          s.Total,
		PaymentMethod:  s.PaymentMethod,
		AmountReceived: s.AmountReceived,
		Change:         s.Change,
		Status:         s.Status,
		Notes:          s.Notes,
		CancelledAt:    formatTimePtr(s.CancelledAt),
		CancelReason:   s.CancelReason,
		CreatedAt:      formatTime(s.CreatedAt),
	}
	for i, it := range s.Items {
		resp.Items[i] = dto.SaleItemResponse{
			ProductID:     it.ProductID.String(),
			VariantID:     uuidString(it.VariantID),
			ProductName:   it.ProductName,
			VariantLabel:  it.VariantLabel,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			PurchasePrice: it.PurchasePrice,
			Subtotal:      it.Subtotal,
		}
	}
	return resp
}

// checkoutLine is a cart line priced at checkout time.
type checkoutLine struct {
	item     model.CartItem
	info     lineInfo
	cost     decimal.Decimal
	subtotal decimal.Decimal
}

// ── Checkout ──────────────────────────────────────────────────────────────────
// Everything below runs in one transaction:
//   1. invoice number, sale row and one item per cart line
//   2. stock decrement per line (clamped at zero) with a sale movement
//   3. sync queue entries for the sale and touched stock
//   4. daily cash summary and cart clear
// Notifications and the receipt job run after commit and never fail the sale.

func (s *saleService) Checkout(ctx context.Context, sess session.Session, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	items, err := s.Cart.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]checkoutLine, 0, len(items))
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			return nil, ErrNotFound
		}
		info := describeLine(it.Product, it.Variant)
		if !info.active {
			return nil, fmt.Errorf("%w: %s", ErrInactiveProduct, info.name)
		}
		sub := info.unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(sub)
		lines = append(lines, checkoutLine{item: it, info: info, cost: it.Product.Cost, subtotal: sub})
	}

	rate := decimal.Zero
	if req.TaxRate != nil {
		rate = *req.TaxRate
	} else if s.Settings != nil {
		if rate, err = s.Settings.TaxRate(ctx); err != nil {
			return nil, err
		}
	}
	totals, err := ComputeTotals(subtotal, req.Discount, rate, req.PaymentMethod, req.AmountReceived)
	if err != nil {
		return nil, err
	}

	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customerID != nil && s.Customers != nil {
		if _, err := s.Customers.FindByID(ctx, *customerID); err != nil {
			return nil, notFound(err)
		}
	}

	now := s.now().UTC()
	sale := model.Sale{
		ID:             uuid.New(),
		UserID:         sess.UserID,
		CustomerID:     customerID,
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		TaxRate:        totals.TaxRate,
		Tax:            totals.Tax,
		Total:          totals.Total,
		PaymentMethod:  req.PaymentMethod,
		AmountReceived: totals.Received,
		Change:         totals.Change,
		Status:         model.SaleCompleted,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, l := range lines {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID:     l.item.ProductID,
			VariantID:     l.item.VariantID,
			ProductName:   l.info.name,
			VariantLabel:  l.info.variantLabel,
			Quantity:      l.item.Quantity,
			UnitPrice:     l.info.unitPrice,
			PurchasePrice: l.cost,
			Subtotal:      l.subtotal,
		})
	}

	var lowStock []string
	err = runTx(ctx, s.Sales.DB(), func(tx *gorm.DB) error {
		invoice, err := s.Sales.NextInvoiceNumberTx(tx, now)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = invoice
		if err := s.Sales.CreateTx(tx, &sale); err != nil {
			return err
		}

		reason := "sale " + invoice
		for _, l := range lines {
			crossed, err := s.applyStock(tx, sess, l.item.ProductID, l.item.VariantID, -l.item.Quantity, model.MovementSale, reason, &sale.ID)
			if err != nil {
				return err
			}
			if crossed {
				lowStock = append(lowStock, l.info.name)
			}
		}

		if err := enqueueSync(tx, s.SyncQueue, model.EntitySale, sale.ID, model.SyncCreate, saleToResponse(&sale)); err != nil {
			return err
		}
		if err := s.Cash.AddSaleTx(tx, businessDate(now), totals.Total, req.PaymentMethod == model.PaymentCash, 1); err != nil {
			return err
		}
		return s.Cart.ClearTx(tx, sess.UserID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("invoice", sale.InvoiceNumber).Str("total", sale.Total.String()).
		Str("user", sess.Username).Msg("sale completed")
	s.afterCheckout(ctx, &sale, lowStock)
	return saleToResponse(&sale), nil
}

func (s *saleService) afterCheckout(ctx context.Context, sale *model.Sale, lowStock []string) {
	if s.Notifications != nil {
		s.Notifications.Notify(ctx, model.ChannelSales, "Sale "+sale.InvoiceNumber,
			fmt.Sprintf("Total %s (%s), %d items", sale.Total.String(), sale.PaymentMethod, len(sale.Items)))
		for _, name := range lowStock {
			s.Notifications.Notify(ctx, model.ChannelStockAlerts, "Low stock", name+" reached its minimum stock")
		}
	}
	if s.Jobs != nil {
		if err := s.Jobs.Enqueue(ctx, JobReceipt, ReceiptJob{SaleID: sale.ID.String()}); err != nil {
			log.Warn().Err(err).Str("invoice", sale.InvoiceNumber).Msg("could not enqueue receipt job")
		}
	}
}

// applyStock moves stock of a product, or of one of its variants, by delta
// inside tx and writes the matching movement. Outgoing stock is clamped at
// zero, so the recorded quantity is the change actually applied. It reports
// whether a product dropped to or below its minimum with this change.
func (s *saleService) applyStock(tx *gorm.DB, sess session.Session, productID uuid.UUID, variantID *uuid.UUID, delta int, kind, reason string, ref *uuid.UUID) (bool, error) {
	_, crossed, err := moveStock(tx, stockRepos{s.Products, s.Variants, s.Movements, s.SyncQueue}, sess, productID, variantID, delta, kind, reason, ref)
	return crossed, err
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func (s *saleService) Cancel(ctx context.Context, sess session.Session, id uuid.UUID, reason string) (*dto.SaleResponse, error) {
	if !sess.IsOwner() {
		return nil, ErrForbidden
	}
	var sale *model.Sale
	err := runTx(ctx, s.Sales.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.Sales.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		if sale.Status == model.SaleCancelled {
			return ErrSaleAlreadyCancelled
		}

		why := "cancel " + sale.InvoiceNumber + ": " + reason
		for _, it := range sale.Items {
			if _, err := s.applyStock(tx, sess, it.ProductID, it.VariantID, it.Quantity, model.MovementReturn, why, &sale.ID); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		by := sess.UserID
		sale.Status = model.SaleCancelled
		sale.CancelledAt = &now
		sale.CancelledBy = &by
		sale.CancelReason = &reason
		if err := s.Sales.UpdateCancellationTx(tx, sale); err != nil {
			return err
		}
		if err := s.Cash.AddSaleTx(tx, businessDate(sale.CreatedAt), sale.Total.Neg(), sale.PaymentMethod == model.PaymentCash, -1); err != nil {
			return err
		}
		return enqueueSync(tx, s.SyncQueue, model.EntitySale, sale.ID, model.SyncUpdate, saleToResponse(sale))
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("invoice", sale.InvoiceNumber).Str("by", sess.Username).Msg("sale cancelled")
	if s.Notifications != nil {
		s.Notifications.Notify(ctx, model.ChannelSales, "Sale "+sale.InvoiceNumber+" cancelled", reason)
	}
	return saleToResponse(sale), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if err := checkDays(filter.From, filter.To); err != nil {
		return nil, err
	}
	sales, total, err := s.Sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = *saleToResponse(&sales[i])
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID) (string, error) {
	sale, err := s.Sales.FindByID(ctx, id)
	if err != nil {
		return "", notFound(err)
	}
	path := infra.ReceiptPath(s.ReceiptDir, sale.InvoiceNumber)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return s.render(ctx, sale)
}

func (s *saleService) GenerateReceipt(ctx context.Context, id uuid.UUID) (string, error) {
	sale, err := s.Sales.FindByID(ctx, id)
	if err != nil {
		return "", notFound(err)
	}
	return s.render(ctx, sale)
}

func (s *saleService) render(ctx context.Context, sale *model.Sale) (string, error) {
	header := infra.ReceiptHeader{StoreName: "Store", Currency: "PYG"}
	if s.Settings != nil {
		h, err := s.Settings.ReceiptHeader(ctx)
		if err != nil {
			return "", err
		}
		header = h
	}
	return infra.GenerateReceiptPDF(sale, header, s.ReceiptDir)
}
