package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/scan"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ScanFound    = "found"
	ScanNotFound = "not_found"
	ScanDup      = "duplicate"

	ScanModeSingle     = "single"
	ScanModeContinuous = "continuous"

	maxScanEvents = 20
)

// ScanService resolves scanned codes to products. Text codes are resolved
// inline; camera frames go through the single-goroutine pipeline and their
// results are collected with Events.
type ScanService interface {
	Scan(ctx context.Context, sess session.Session, req dto.ScanRequest) (*dto.ScanResponse, error)
	SubmitFrame(ctx context.Context, sess session.Session, mode string, frame []byte) dto.FrameAccepted
	Events(sess session.Session) []dto.ScanResponse
	Run(ctx context.Context)
}

type scanService struct {
	products  ProductService
	cart      CartService
	debouncer *scan.Debouncer
	pipeline  *scan.Pipeline
	now       func() time.Time

	mu     sync.Mutex
	events map[string][]dto.ScanResponse
}

func NewScanService(products ProductService, cart CartService, decoder scan.Decoder, window time.Duration) ScanService {
	return &scanService{
		products:  products,
		cart:      cart,
		debouncer: scan.NewDebouncer(window),
		pipeline:  scan.NewPipeline(decoder),
		now:       time.Now,
		events:    map[string][]dto.ScanResponse{},
	}
}

func (s *scanService) Run(ctx context.Context) { s.pipeline.Run(ctx) }

func (s *scanService) Scan(ctx context.Context, sess session.Session, req dto.ScanRequest) (*dto.ScanResponse, error) {
	code, err := scan.NormalizeText(req.Code)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, sess, code, req.Mode), nil
}

// SubmitFrame queues a frame for decoding. The frame is analysed outside the
// request, so the session is kept but the request context is not.
func (s *scanService) SubmitFrame(_ context.Context, sess session.Session, mode string, frame []byte) dto.FrameAccepted {
	replaced := s.pipeline.Submit(scan.Frame{
		Data: frame,
		Done: func(code string, err error) {
			if err != nil {
				if !errors.Is(err, scan.ErrNoCode) {
					log.Debug().Err(err).Str("user", sess.Username).Msg("frame not decoded")
				}
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.push(sess, *s.resolve(session.WithSession(ctx, sess), sess, code, mode))
		},
	})
	return dto.FrameAccepted{Accepted: true, Replaced: replaced}
}

// Events drains the frame results collected for the session's user.
func (s *scanService) Events(sess session.Session) []dto.ScanResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sess.UserID.String()
	out := s.events[key]
	delete(s.events, key)
	if out == nil {
		out = []dto.ScanResponse{}
	}
	return out
}

func (s *scanService) push(sess session.Session, ev dto.ScanResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sess.UserID.String()
	list := append(s.events[key], ev)
	if len(list) > maxScanEvents {
		list = list[len(list)-maxScanEvents:]
	}
	s.events[key] = list
}

func (s *scanService) resolve(ctx context.Context, sess session.Session, code, mode string) *dto.ScanResponse {
	out := &dto.ScanResponse{Code: code, At: formatTime(s.now())}
	if !s.debouncer.Allow(sess.UserID.String(), code) {
		out.Status = ScanDup
		return out
	}

	p, v, err := s.products.Lookup(ctx, code)
	if err != nil {
		out.Status = ScanNotFound
		if !errors.Is(err, ErrNotFound) {
			out.Error = "lookup failed"
			log.Error().Err(err).Str("code", code).Msg("scan lookup failed")
		}
		return out
	}
	out.Status = ScanFound
	out.Product = productToResponse(p)
	if v != nil {
		id := v.ID.String()
		out.VariantID = &id
	}

	if mode == ScanModeContinuous {
		var variantID *uuid.UUID
		if v != nil {
			variantID = &v.ID
		}
		if _, err := s.cart.AddProduct(ctx, sess, p.ID, variantID, 1); err != nil {
			out.Error = err.Error()
		} else {
			out.AddedToCart = true
		}
	}
	return out
}
