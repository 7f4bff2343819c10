package service

import (
	"context"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBarcode(t *testing.T, f *fixture, p *model.Product, code string) {
	t.Helper()
	require.NoError(t, f.db.Model(p).Update("barcode", code).Error)
}

func TestScan_DuplicateInsideWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Galletas", 700, 10)
	withBarcode(t, f, p, "7791234567890")

	svc := NewScanService(f.catalog, f.cart, scan.NewImageDecoder(), time.Minute)

	first, err := svc.Scan(ctx, f.clerk, dto.ScanRequest{Code: " 7791234567890 "})
	require.NoError(t, err)
	assert.Equal(t, ScanFound, first.Status)
	require.NotNil(t, first.Product)
	assert.Equal(t, p.ID.String(), first.Product.ID)
	assert.False(t, first.AddedToCart)

	second, err := svc.Scan(ctx, f.clerk, dto.ScanRequest{Code: "7791234567890"})
	require.NoError(t, err)
	assert.Equal(t, ScanDup, second.Status)

	// another user has an independent window
	other, err := svc.Scan(ctx, f.owner, dto.ScanRequest{Code: "7791234567890"})
	require.NoError(t, err)
	assert.Equal(t, ScanFound, other.Status)
}

func TestScan_UnknownCode(t *testing.T) {
	f := newFixture(t)
	svc := NewScanService(f.catalog, f.cart, scan.NewImageDecoder(), time.Minute)

	res, err := svc.Scan(context.Background(), f.clerk, dto.ScanRequest{Code: "0000"})
	require.NoError(t, err)
	assert.Equal(t, ScanNotFound, res.Status)
	assert.Empty(t, res.Error)
}

func TestScan_ContinuousAddsToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Yerba", 2500, 4)
	withBarcode(t, f, p, "7790001112223")

	svc := NewScanService(f.catalog, f.cart, scan.NewImageDecoder(), 0)

	res, err := svc.Scan(ctx, f.clerk, dto.ScanRequest{Code: "7790001112223", Mode: ScanModeContinuous})
	require.NoError(t, err)
	assert.True(t, res.AddedToCart)

	cart, err := f.cart.Get(ctx, f.clerk)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

// textDecoder treats the frame bytes as the decoded code.
type textDecoder struct{}

func (textDecoder) Decode(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", scan.ErrNoCode
	}
	return string(frame), nil
}

func TestScan_FrameResultsDrainPerUser(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Fideos", 1100, 6)
	withBarcode(t, f, p, "7795556667778")

	svc := NewScanService(f.catalog, f.cart, textDecoder{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	accepted := svc.SubmitFrame(ctx, f.clerk, ScanModeSingle, []byte("7795556667778"))
	assert.True(t, accepted.Accepted)

	var events []dto.ScanResponse
	require.Eventually(t, func() bool {
		events = append(events, svc.Events(f.clerk)...)
		return len(events) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, ScanFound, events[0].Status)
	assert.Empty(t, svc.Events(f.clerk))
	assert.Empty(t, svc.Events(f.owner))
}
