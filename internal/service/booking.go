// Package service wires the schedule core to its backing store, the claim
// lock and the confirmation notifier.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/model"
	q "github.com/iliyamo/performance-signup/internal/queue"
	"github.com/iliyamo/performance-signup/internal/repository"
	"github.com/iliyamo/performance-signup/internal/schedule"
)

// ErrInvalidRegistration is returned when a required field is empty.
var ErrInvalidRegistration = errors.New("missing required fields")

// Table is the tabular schedule store.
type Table interface {
	ReadTable(ctx context.Context) ([]model.Row, error)
	WriteRow(ctx context.Context, line int, expect, values model.Row) error
	EnsureHeader(ctx context.Context) error
}

// Notifier delivers confirmation events.
type Notifier interface {
	Notify(ctx context.Context, event q.RegistrationConfirmedEvent) error
}

// Locker provides a cross-process critical section.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Options configures a BookingService.  Only Table is required.
type Options struct {
	Table    Table
	Parser   schedule.DateParser
	Notifier Notifier
	Locker   Locker
	Logger   *zap.Logger
	Now      func() time.Time
}

type BookingService struct {
	table    Table
	calc     schedule.Calculator
	notifier Notifier
	locker   Locker
	log      *zap.Logger
	now      func() time.Time
	sem      chan struct{}
}

func NewBookingService(opts Options) *BookingService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		table:    opts.Table,
		calc:     schedule.Calculator{Parser: opts.Parser, Logger: log},
		notifier: opts.Notifier,
		locker:   opts.Locker,
		log:      log,
		now:      now,
		sem:      make(chan struct{}, 1),
	}
}

// ListAvailable returns the bookable sessions as of now.  A store failure
// is logged and yields an empty list.
func (s *BookingService) ListAvailable(ctx context.Context) []schedule.BookableSession {
	rows, err := s.table.ReadTable(ctx)
	if err != nil {
		s.log.Error("read schedule failed", zap.Error(err))
		return []schedule.BookableSession{}
	}
	return s.calc.Compute(schedule.Normalize(rows), s.now())
}

// Overview returns every session, past and full ones included.
func (s *BookingService) Overview(ctx context.Context) ([]schedule.SessionOverview, error) {
	rows, err := s.table.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrBackingStoreUnavailable, err)
	}
	return s.calc.Overview(schedule.Normalize(rows), s.now()), nil
}

// Setup creates the schedule sheet or table with its header row.
func (s *BookingService) Setup(ctx context.Context) error {
	if err := s.table.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("%w: %v", schedule.ErrBackingStoreUnavailable, err)
	}
	return nil
}

// Claim books the first free slot of reg.Date.  The read-choose-write
// sequence runs under the local semaphore and, when configured, the
// distributed lock; the store additionally rejects the write if the row
// changed since it was read.
func (s *BookingService) Claim(ctx context.Context, reg model.Registration) (schedule.Claim, error) {
	reg = reg.Trimmed()
	if missing := reg.MissingFields(); len(missing) > 0 {
		return schedule.Claim{}, fmt.Errorf("%w: %s", ErrInvalidRegistration, strings.Join(missing, ", "))
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return schedule.Claim{}, fmt.Errorf("%w: %v", schedule.ErrBackingStoreUnavailable, ctx.Err())
	}
	claim, guest, err := s.claimLocked(ctx, reg)
	<-s.sem
	if err != nil {
		return schedule.Claim{}, err
	}

	s.log.Info("slot claimed",
		zap.String("date", reg.Date),
		zap.Int("line", claim.Line),
		zap.String("name", reg.Name),
	)
	s.notify(ctx, reg, claim, guest)
	return claim, nil
}

func (s *BookingService) claimLocked(ctx context.Context, reg model.Registration) (schedule.Claim, string, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			s.log.Warn("claim lock unavailable", zap.Error(err))
			return schedule.Claim{}, "", fmt.Errorf("%w: lock: %v", schedule.ErrBackingStoreUnavailable, err)
		}
		defer unlock()
	}

	rows, err := s.table.ReadTable(ctx)
	if err != nil {
		s.log.Error("read schedule failed", zap.Error(err))
		return schedule.Claim{}, "", fmt.Errorf("%w: %v", schedule.ErrBackingStoreUnavailable, err)
	}
	guest := guestFor(rows, reg.Date)

	claim, err := schedule.ClaimSlot(rows, reg)
	if err != nil {
		return schedule.Claim{}, "", err
	}

	if err := s.table.WriteRow(ctx, claim.Line, claim.Before, claim.After); err != nil {
		if errors.Is(err, repository.ErrRowChanged) || errors.Is(err, repository.ErrRowNotFound) {
			s.log.Info("slot changed before write", zap.Int("line", claim.Line))
			return schedule.Claim{}, "", schedule.ErrSlotAlreadyTaken
		}
		s.log.Error("write schedule row failed", zap.Int("line", claim.Line), zap.Error(err))
		return schedule.Claim{}, "", fmt.Errorf("%w: %v", schedule.ErrBackingStoreUnavailable, err)
	}
	return claim, guest, nil
}

// guestFor returns the guest artist of the session labelled label.
func guestFor(rows []model.Row, label string) string {
	for _, g := range schedule.Normalize(rows) {
		if g.RawDateLabel == label {
			return g.GuestArtist
		}
	}
	return ""
}

func (s *BookingService) notify(ctx context.Context, reg model.Registration, claim schedule.Claim, guest string) {
	if s.notifier == nil {
		return
	}
	now := s.now()
	ev := q.RegistrationConfirmedEvent{
		EventID:     uuid.NewString(),
		Date:        reg.Date,
		Line:        claim.Line,
		Name:        reg.Name,
		Email:       reg.Email,
		Instrument:  reg.Instrument,
		Piece:       reg.Piece,
		Duration:    reg.Duration,
		Remarks:     reg.Remarks,
		ConfirmedAt: now.UTC().Format(time.RFC3339),
	}
	if date, err := s.calc.Parser.Parse(reg.Date); err == nil {
		ev.Label = schedule.FormatLabel(date, reg.Date, guest)
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Warn("confirmation notification failed", zap.String("event_id", ev.EventID), zap.Error(err))
	}
}
