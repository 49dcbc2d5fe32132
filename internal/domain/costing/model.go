package costing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LineItem — позиция состава: имя материала (свободный текст, слабая ссылка
// по имени, не foreign key), количество и единица измерения для отображения.
// JSON-ключи совпадают с форматом хранения: "unit" — это количество.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"unit"`
	InUnit   string  `json:"inUnit"`
}

type Entry struct {
	ID                 uuid.UUID  `json:"id"`
	ProductDescription string     `json:"product_description"`
	Packaging          string     `json:"packaging"`
	Materials          []LineItem `json:"materials"`
	Comments           string     `json:"comments"`
	ImageURL           *string    `json:"image_url,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Draft — изменяемые поля записи; при update заменяются целиком.
type Draft struct {
	ProductDescription string     `json:"product_description"`
	Packaging          string     `json:"packaging"`
	Materials          []LineItem `json:"materials"`
	Comments           string     `json:"comments"`
	ImageURL           *string    `json:"image_url"`
}

var ErrNotFound = errors.New("costing entry not found")

type Store interface {
	Insert(ctx context.Context, d Draft) (*Entry, error)
	Get(ctx context.Context, id uuid.UUID) (*Entry, error) // nil, nil — если записи нет
	Update(ctx context.Context, id uuid.UUID, d Draft) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Entry, error)
}
