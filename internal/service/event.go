package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type eventService struct {
	events      repository.EventRepository
	players     repository.PlayerRepository
	evaluations repository.EvaluationRepository
	tx          repository.TxManager
	log         zerolog.Logger
}

func NewEventService(events repository.EventRepository, players repository.PlayerRepository, evaluations repository.EvaluationRepository, tx repository.TxManager, logger zerolog.Logger) EventService {
	l := logger.With().Str("module", "service").Str("component", "event").Logger()
	return &eventService{events: events, players: players, evaluations: evaluations, tx: tx, log: l}
}

func (s *eventService) CreateEvent(ctx context.Context, scope model.Scope, in CreateEventInput) (model.Event, error) {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return model.Event{}, err
	}

	eventType := strings.ToLower(strings.TrimSpace(in.Type))
	description := strings.TrimSpace(in.Description)
	condition := strings.ToLower(strings.TrimSpace(in.Condition))

	var ferrs []FieldError
	if scope.TeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "team_id", Message: "must be > 0"})
	}
	if !isValidEventType(eventType) {
		ferrs = append(ferrs, FieldError{Field: "type", Message: "must be one of match, training"})
	}
	if description == "" {
		ferrs = append(ferrs, FieldError{Field: "description", Message: "must not be empty"})
	} else if ln := len([]rune(description)); ln > 120 {
		ferrs = append(ferrs, FieldError{Field: "description", Message: "length must be <= 120"})
	}
	date, ok := parseEventDate(in.Date)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "date", Message: "must be a valid YYYY-MM-DD date"})
	}
	// Condition only means something for matches; training sessions carry none.
	switch eventType {
	case model.EventMatch:
		if !isValidCondition(condition) {
			ferrs = append(ferrs, FieldError{Field: "condition", Message: "must be one of home, away"})
		}
	case model.EventTraining:
		condition = ""
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("event validation failed")
		return model.Event{}, err
	}

	out, err := s.events.Create(ctx, model.Event{
		TeamID:      scope.TeamID,
		Type:        eventType,
		Description: description,
		Date:        date,
		Condition:   condition,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Str("type", eventType).Msg("create event failed")
		return model.Event{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("event_id", out.ID).Str("type", out.Type).Msg("event created")
	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, scope model.Scope, id int64) (model.Event, error) {
	if id <= 0 {
		return model.Event{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	if e.TeamID != scope.TeamID {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (s *eventService) ListEvents(ctx context.Context, scope model.Scope, eventType string, page repository.Page) (repository.PageResult[model.Event], error) {
	if scope.TeamID <= 0 {
		return repository.PageResult[model.Event]{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType != "" && !isValidEventType(eventType) {
		return repository.PageResult[model.Event]{}, NewInvalidInputError([]FieldError{{Field: "type", Message: "must be one of match, training"}})
	}
	p := normalizePage(page)
	res, err := s.events.ListByTeam(ctx, scope.TeamID, eventType, p)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Str("type", eventType).Msg("list events failed")
		return repository.PageResult[model.Event]{}, err
	}
	return res, nil
}

// SetCallUps replaces the event's call-up list wholesale and reconciles each
// player's call-up counter against the previous list: only actual additions
// and removals move a counter, so re-saving the same list is a no-op.
func (s *eventService) SetCallUps(ctx context.Context, scope model.Scope, eventID int64, playerIDs []int64) (model.Event, error) {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return model.Event{}, err
	}
	if eventID <= 0 {
		return model.Event{}, NewInvalidInputError([]FieldError{{Field: "event_id", Message: "must be > 0"}})
	}
	playerIDs = dedupeIDs(playerIDs)

	var out model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ev, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if ev.TeamID != scope.TeamID {
			return repository.ErrNotFound
		}
		if ev.Evaluated {
			return ErrEventLocked
		}

		// Every id must refer to a roster member of this team.
		for _, pid := range playerIDs {
			p, err := s.players.GetByID(ctx, pid)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewInvalidInputError([]FieldError{{Field: "player_ids", Message: "player does not exist"}})
				}
				return err
			}
			if p.TeamID != scope.TeamID {
				return NewInvalidInputError([]FieldError{{Field: "player_ids", Message: "player does not belong to this team"}})
			}
		}

		added, removed := diffIDs(ev.CallUps, playerIDs)
		if err := s.events.SetCallUps(ctx, eventID, playerIDs); err != nil {
			return err
		}
		for _, pid := range added {
			if err := s.players.AdjustCallUps(ctx, pid, 1); err != nil {
				return err
			}
		}
		for _, pid := range removed {
			if err := s.players.AdjustCallUps(ctx, pid, -1); err != nil {
				return err
			}
		}

		out, err = s.events.GetByID(ctx, eventID)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, ErrEventLocked) && !errors.Is(err, ErrInvalidInput) {
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("set call-ups failed")
		}
		return model.Event{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("event_id", eventID).Int("called_up", len(playerIDs)).Msg("call-ups saved")
	return out, nil
}

// DeleteEvent cascades: evaluations go first so an interrupted delete can
// never leave an evaluation pointing at a vanished event.
func (s *eventService) DeleteEvent(ctx context.Context, scope model.Scope, id int64) error {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return err
	}
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ev, err := s.events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ev.TeamID != scope.TeamID {
			return repository.ErrNotFound
		}
		n, err := s.evaluations.DeleteByEvent(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.events.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("event_id", id).Msg("delete event failed")
		}
		return err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("event_id", id).Int64("evaluations_removed", removed).Msg("event deleted")
	return nil
}

// dedupeIDs drops duplicates while preserving first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diffIDs compares the previous and next call-up lists and returns which
// players were added and which were removed.
func diffIDs(prev, next []int64) (added, removed []int64) {
	prevSet := make(map[int64]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[int64]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}
	for _, id := range next {
		if _, ok := prevSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if _, ok := nextSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
