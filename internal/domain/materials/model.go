package materials

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Единицы, которые подсказывает клиент. Хранилище принимает любую строку.
var SuggestedUnits = []string{
	"pcs", "kg", "g", "ton",
	"mm", "cm", "m",
	"ltr", "ml", "m³",
	"bag", "box", "roll",
	"sheet", "pack",
}

type Material struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"` // хранится в нижнем регистре
	Value     float64    `json:"value"`
	Unit      string     `json:"unit"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"` // пусто до первого изменения цены
}

// HistoryEntry — запись журнала цен. Никогда не изменяется и не удаляется по одной.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	MaterialID uuid.UUID `json:"material_id"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	CreatedAt  time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("material not found")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
