package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/export"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 10

type ReportService interface {
	SalesStats(ctx context.Context, rng dto.ReportRange) (*dto.SalesStatsResponse, error)
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error)
	ListExports(ctx context.Context) ([]dto.ExportFile, error)
	ExportPath(name string) (string, error)
}

type reportService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	expenses repository.ExpenseRepository
	mailer   Mailer
	dir      string
	now      func() time.Time
}

func NewReportService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	expenses repository.ExpenseRepository,
	mailer Mailer,
	exportDir string,
) ReportService {
	return &reportService{
		sales: sales, products: products, expenses: expenses,
		mailer: mailer, dir: exportDir, now: time.Now,
	}
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDay("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.AddDate(0, 0, 1), nil
}

// SalesStats aggregates completed sales in [from, to] (inclusive days, UTC).
// Cancelled sales are only counted, never summed.
func (s *reportService) SalesStats(ctx context.Context, rng dto.ReportRange) (*dto.SalesStatsResponse, error) {
	start, end, err := parseRange(rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, rng.From, rng.To)
	if err != nil {
		return nil, err
	}

	out := &dto.SalesStatsResponse{
		From:            rng.From,
		To:              rng.To,
		Revenue:         decimal.Zero,
		Discounts:       decimal.Zero,
		Tax:             decimal.Zero,
		CostOfGoods:     decimal.Zero,
		AverageTicket:   decimal.Zero,
		ByPaymentMethod: map[string]decimal.Decimal{},
		Expenses:        decimal.Zero,
	}

	daily := map[string]*dto.DailySales{}
	top := map[string]*dto.TopProduct{}

	for _, sale := range sales {
		if sale.Status == model.SaleCancelled {
			out.CancelledCount++
			continue
		}
		out.SalesCount++
		out.Revenue = out.Revenue.Add(sale.Total)
		out.Discounts = out.Discounts.Add(sale.Discount)
		out.Tax = out.Tax.Add(sale.Tax)
		out.ByPaymentMethod[sale.PaymentMethod] = out.ByPaymentMethod[sale.PaymentMethod].Add(sale.Total)

		cost := decimal.Zero
		for _, it := range sale.Items {
			cost = cost.Add(it.PurchasePrice.Mul(decimal.NewFromInt(int64(it.Quantity))))

			key := it.ProductID.String()
			tp, ok := top[key]
			if !ok {
				tp = &dto.TopProduct{ProductID: key, Name: it.ProductName, Revenue: decimal.Zero}
				top[key] = tp
			}
			tp.Quantity += it.Quantity
			tp.Revenue = tp.Revenue.Add(it.Subtotal)
		}
		out.CostOfGoods = out.CostOfGoods.Add(cost)

		day := businessDate(sale.CreatedAt)
		d, ok := daily[day]
		if !ok {
			d = &dto.DailySales{Date: day, Revenue: decimal.Zero, Profit: decimal.Zero}
			daily[day] = d
		}
		d.Count++
		d.Revenue = d.Revenue.Add(sale.Total)
		d.Profit = d.Profit.Add(sale.Subtotal.Sub(sale.Discount).Sub(cost))
	}

	// Profit is measured before tax: tax is collected on behalf of the state.
	out.GrossProfit = out.Revenue.Sub(out.Tax).Sub(out.CostOfGoods)
	if out.SalesCount > 0 {
		out.AverageTicket = out.Revenue.Div(decimal.NewFromInt(int64(out.SalesCount))).Round(2)
	}
	for _, e := range expenses {
		out.Expenses = out.Expenses.Add(e.Amount)
	}
	out.NetProfit = out.GrossProfit.Sub(out.Expenses)

	out.Daily = make([]dto.DailySales, 0, len(daily))
	for _, d := range daily {
		out.Daily = append(out.Daily, *d)
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Date < out.Daily[j].Date })

	out.TopProducts = make([]dto.TopProduct, 0, len(top))
	for _, tp := range top {
		out.TopProducts = append(out.TopProducts, *tp)
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(out.TopProducts) > topProductsLimit {
		out.TopProducts = out.TopProducts[:topProductsLimit]
	}
	return out, nil
}

// ── Export ─────────────────────────────────────────────────────────────────

func (s *reportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	var table export.Table
	switch req.Kind {
	case export.KindSales:
		from, to := req.From, req.To
		if from == "" || to == "" {
			today := businessDate(s.now())
			if from == "" {
				from = today
			}
			if to == "" {
				to = today
			}
		}
		start, end, err := parseRange(from, to)
		if err != nil {
			return nil, err
		}
		sales, err := s.sales.ListBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		table = export.SalesTable(sales)
	case export.KindProducts:
		// Limit -1 disables pagination.
		products, _, err := s.products.List(ctx, dto.ProductFilter{Active: "all", Page: 1, Limit: -1})
		if err != nil {
			return nil, err
		}
		table = export.ProductsTable(products)
	default:
		return nil, fmt.Errorf("%w: export kind %q", ErrUnsupported, req.Kind)
	}

	path, err := export.WriteFile(s.dir, req.Kind, req.Format, table, s.now())
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", filepath.Base(path)).Int("rows", len(table.Rows)).Msg("report exported")

	if req.Email != "" && s.mailer != nil && s.mailer.Enabled() {
		subject := fmt.Sprintf("%s report %s", req.Kind, filepath.Base(path))
		if err := s.mailer.Send(req.Email, subject, "Report attached.", path); err != nil {
			log.Warn().Err(err).Str("to", req.Email).Msg("report email failed")
		}
	}
	return fileInfo(path)
}

func fileInfo(path string) (*dto.ExportFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &dto.ExportFile{
		Name:      info.Name(),
		Size:      info.Size(),
		CreatedAt: formatTime(info.ModTime()),
	}, nil
}

func (s *reportService) ListExports(_ context.Context) ([]dto.ExportFile, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []dto.ExportFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExportFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := fileInfo(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// ExportPath resolves a file name from ListExports to its path. Names with
// path separators are rejected.
func (s *reportService) ExportPath(name string) (string, error) {
	return safeFile(s.dir, name)
}

func safeFile(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}
