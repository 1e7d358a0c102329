package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/healthdeck/healthdeck/internal/custconfig/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/healthdeck/healthdeck/internal/threshold"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("custconfig.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, key month.Key) (*domain.ConfigRecord, error) {
	record, err := s.repo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) Resolve(ctx context.Context, key month.Key) (*domain.ConfigRecord, error) {
	record, err := s.repo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}
	record, err = s.repo.Latest(ctx, s.db, key.Customer)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// structured payload slots validated on every upsert; one bad field rejects
// the whole request.
type structuredField struct {
	name  string
	raw   string
	notes bool
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) error {
	fields := []structuredField{
		{name: "thr_availability", raw: req.AvailabilityRules},
		{name: "thr_users", raw: req.UsersRules},
		{name: "thr_storage", raw: req.StorageRules},
		{name: "indicator_colors", raw: req.IndicatorColors},
		{name: "circle_colors", raw: req.CircleColors},
		{name: "notes_availability", raw: req.AvailabilityNotes, notes: true},
		{name: "notes_users", raw: req.UsersNotes, notes: true},
		{name: "notes_storage", raw: req.StorageNotes, notes: true},
	}

	normalized := make(map[string]datatypes.JSON, len(fields))
	for _, field := range fields {
		payload, err := s.validateField(field)
		if err != nil {
			return err
		}
		normalized[field.name] = payload
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.Get(ctx, tx, req.Key)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		uids := existing.UIDList()
		if uid := strings.TrimSpace(req.NewCustomerUID); uid != "" {
			uids = append(uids, uid)
		}
		uidPayload, err := json.Marshal(uids)
		if err != nil {
			return err
		}

		record := &domain.ConfigRecord{
			CustomerName:      req.Key.Customer,
			MonthYear:         req.Key.Month.Time(),
			CustomerFullName:  strings.TrimSpace(req.CustomerFullName),
			CSMPrimary:        strings.TrimSpace(req.CSMPrimary),
			CSMSecondary:      strings.TrimSpace(req.CSMSecondary),
			CustomerUIDs:      uidPayload,
			Environments:      req.Environments,
			WindowMonths:      req.WindowMonths,
			AvailabilityRules: normalized["thr_availability"],
			UsersRules:        normalized["thr_users"],
			StorageRules:      normalized["thr_storage"],
			IndicatorColors:   normalized["indicator_colors"],
			CircleColors:      normalized["circle_colors"],
			AvailabilityNotes: normalized["notes_availability"],
			UsersNotes:        normalized["notes_users"],
			StorageNotes:      normalized["notes_storage"],
			CustomerNote:      req.CustomerNote,
		}

		if err := s.repo.Update(ctx, tx, record); err != nil {
			return err
		}
		return s.repo.MirrorCSMs(ctx, tx, req.Key, record.CSMPrimary, record.CSMSecondary)
	})
}

// validateField normalizes the payload once, parses it strictly, and for
// note fields enforces the line limits. The re-marshalled canonical JSON is
// what gets persisted, never the raw input.
func (s *Service) validateField(field structuredField) (datatypes.JSON, error) {
	raw := threshold.Normalize(field.raw)

	if field.notes {
		notes, err := threshold.ParseNoteSet(raw)
		if err != nil {
			return nil, &domain.FieldError{Field: field.name, Message: "invalid JSON"}
		}
		if err := notes.Validate(); err != nil {
			return nil, &domain.FieldError{Field: field.name, Message: err.Error()}
		}
		payload, err := json.Marshal(notes)
		if err != nil {
			return nil, err
		}
		return payload, nil
	}

	if strings.HasPrefix(field.name, "thr_") {
		rules, err := threshold.ParseRuleSet(raw)
		if err != nil {
			return nil, &domain.FieldError{Field: field.name, Message: "invalid JSON"}
		}
		payload, err := json.Marshal(rules)
		if err != nil {
			return nil, err
		}
		return payload, nil
	}

	colors, err := threshold.ParseColorRules(raw)
	if err != nil {
		return nil, &domain.FieldError{Field: field.name, Message: "invalid JSON"}
	}
	payload, err := json.Marshal(colors)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
