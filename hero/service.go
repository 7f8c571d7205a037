package hero

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/messages"
	"github.com/kbukum/heroes/validation"
)

const messagePrefix = "HeroService: "

// Service is the hero backend. It validates input, delegates to the store
// and records every operation in the message log.
type Service struct {
	store *Store
	log   *messages.Log
	lg    *logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.lg = l
		}
	}
}

// NewService creates a Service over store. A nil log gets a fresh one.
func NewService(store *Store, log *messages.Log, opts ...ServiceOption) *Service {
	if log == nil {
		log = messages.NewLog()
	}
	s := &Service{
		store: store,
		log:   log,
		lg:    logger.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lg = s.lg.WithComponent("hero")
	return s
}

// Messages returns the message log the service writes to.
func (s *Service) Messages() *messages.Log {
	return s.log
}

// Heroes returns every hero.
func (s *Service) Heroes(ctx context.Context) ([]Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heroes := s.store.List()
	s.record(ctx, "fetched heroes", logger.Fields(logger.FieldCount, len(heroes)))
	return heroes, nil
}

// Top returns the dashboard heroes.
func (s *Service) Top(ctx context.Context) ([]Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heroes := s.store.Top()
	s.record(ctx, "fetched heroes", logger.Fields(logger.FieldCount, len(heroes)))
	return heroes, nil
}

// Hero returns the hero with id.
func (s *Service) Hero(ctx context.Context, id int) (Hero, error) {
	if err := ctx.Err(); err != nil {
		return Hero{}, err
	}
	h, err := s.store.Get(id)
	if err != nil {
		s.fail(ctx, fmt.Sprintf("getHero id=%d", id), err)
		return Hero{}, err
	}
	s.record(ctx, fmt.Sprintf("fetched hero id=%d", id), logger.Fields(logger.FieldHeroID, id))
	return h, nil
}

// Add creates a hero named name. The name is trimmed and must not be blank.
func (s *Service) Add(ctx context.Context, name string) (Hero, error) {
	if err := ctx.Err(); err != nil {
		return Hero{}, err
	}
	candidate := Hero{Name: strings.TrimSpace(name)}
	if err := validation.Validate(candidate); err != nil {
		s.fail(ctx, "addHero", err)
		return Hero{}, err
	}
	h := s.store.Add(candidate.Name)
	s.record(ctx, fmt.Sprintf("added hero w/ id=%d", h.ID), logger.Fields(logger.FieldHeroID, h.ID))
	return h, nil
}

// Update renames an existing hero.
func (s *Service) Update(ctx context.Context, h Hero) (Hero, error) {
	if err := ctx.Err(); err != nil {
		return Hero{}, err
	}
	h.Name = strings.TrimSpace(h.Name)
	if err := validation.Validate(h); err != nil {
		s.fail(ctx, "updateHero", err)
		return Hero{}, err
	}
	if err := s.store.Update(h); err != nil {
		s.fail(ctx, fmt.Sprintf("updateHero id=%d", h.ID), err)
		return Hero{}, err
	}
	s.record(ctx, fmt.Sprintf("updated hero id=%d", h.ID), logger.Fields(logger.FieldHeroID, h.ID))
	return h, nil
}

// Delete removes the hero with id.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		s.fail(ctx, fmt.Sprintf("deleteHero id=%d", id), err)
		return err
	}
	s.record(ctx, fmt.Sprintf("deleted hero id=%d", id), logger.Fields(logger.FieldHeroID, id))
	return nil
}

// SearchHeroes returns the heroes whose name contains term. A blank term
// returns an empty result without touching the store or the message log.
func (s *Service) SearchHeroes(ctx context.Context, term string) ([]Hero, error) {
	if strings.TrimSpace(term) == "" {
		return []Hero{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heroes := s.store.Search(term)
	fields := logger.Fields(logger.FieldQuery, term, logger.FieldCount, len(heroes))
	if len(heroes) > 0 {
		s.record(ctx, fmt.Sprintf("found heroes matching %q", term), fields)
	} else {
		s.record(ctx, fmt.Sprintf("no heroes matching %q", term), fields)
	}
	return heroes, nil
}

func (s *Service) record(ctx context.Context, msg string, fields map[string]interface{}) {
	s.log.Add(messagePrefix + msg)
	s.lg.WithContext(ctx).Debug(msg, fields)
}

func (s *Service) fail(ctx context.Context, op string, err error) {
	s.log.Add(fmt.Sprintf("%s%s failed: %v", messagePrefix, op, err))
	s.lg.WithContext(ctx).Warn("hero operation failed", logger.ErrorFields(op, err))
}
