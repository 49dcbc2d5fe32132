package materials

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store — операции хранилища над materials + material_history.
type Store interface {
	Insert(ctx context.Context, name string, value float64, unit string) (*Material, error)
	Get(ctx context.Context, id uuid.UUID) (*Material, error) // nil, nil — если записи нет
	UpdatePrice(ctx context.Context, id uuid.UUID, value float64, unit string, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context) ([]Material, error)

	InsertHistory(ctx context.Context, materialID uuid.UUID, value float64, unit string) (*HistoryEntry, error)
	ListHistory(ctx context.Context, materialID uuid.UUID) ([]HistoryEntry, error)
	DeleteHistoryFor(ctx context.Context, materialID uuid.UUID) error
	DeleteAllHistory(ctx context.Context) error
}

type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// UpdateResult сообщает, тронули ли мы хранилище.
type UpdateResult struct {
	Material *Material `json:"material"`
	Changed  bool      `json:"changed"`
}

func validateValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Field: "value", Reason: "must be a finite number"}
	}
	if value < 0 {
		return &ValidationError{Field: "value", Reason: "must not be negative"}
	}
	return nil
}

// Create заводит материал и пишет базовую запись истории с теми же value/unit.
// Если вставка истории не удалась, материал всё равно считается созданным —
// шаги независимы, транзакции нет.
func (s *Service) Create(ctx context.Context, name string, value float64, unit string) (*Material, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateValue(value); err != nil {
		return nil, err
	}

	m, err := s.store.Insert(ctx, name, value, unit)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.InsertHistory(ctx, m.ID, m.Value, m.Unit); err != nil {
		s.log.Error("baseline history insert failed", "material_id", m.ID, "err", err)
	}
	return m, nil
}

// UpdateWithHistory — четырёхшаговое обновление цены:
//  1. читаем текущие value/unit;
//  2. если не изменились — no-op, история не растёт;
//  3. обновляем строку материала и updated_at;
//  4. добавляем одну запись истории с новыми значениями.
//
// Чтение и запись не атомарны: параллельное обновление того же материала
// может потерять изменение или оставить лишнюю запись истории. Принято как есть.
func (s *Service) UpdateWithHistory(ctx context.Context, id uuid.UUID, newValue float64, newUnit string) (*UpdateResult, error) {
	if err := validateValue(newValue); err != nil {
		return nil, err
	}

	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrNotFound
	}

	if cur.Value == newValue && cur.Unit == newUnit {
		return &UpdateResult{Material: cur, Changed: false}, nil
	}

	updatedAt := s.now().UTC()
	if err := s.store.UpdatePrice(ctx, id, newValue, newUnit, updatedAt); err != nil {
		return nil, err
	}
	if _, err := s.store.InsertHistory(ctx, id, newValue, newUnit); err != nil {
		// Обновление уже зафиксировано; откатывать нечем.
		return nil, err
	}

	upd := *cur
	upd.Value = newValue
	upd.Unit = newUnit
	upd.UpdatedAt = &updatedAt
	return &UpdateResult{Material: &upd, Changed: true}, nil
}

// Delete удаляет материал вместе с его историей (сначала историю, потом строку).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteHistoryFor(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// DeleteAll — два независимых bulk-удаления: вся история, затем все материалы.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAllHistory(ctx); err != nil {
		return err
	}
	return s.store.DeleteAll(ctx)
}

func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Material, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Service) ListHistory(ctx context.Context, materialID uuid.UUID) ([]HistoryEntry, error) {
	return s.store.ListHistory(ctx, materialID)
}
