package costing

import (
	"strings"

	"github.com/deepfsd/costing-sheet/internal/domain/materials"
)

// Калькулятор себестоимости. Чистые функции: позиции резолвятся по имени
// лениво, на момент чтения, против текущего списка материалов. Материал,
// переименованный или удалённый после сохранения записи, просто перестаёт
// резолвиться — это данные ("N/A"), а не ошибка.

// Resolve ищет материал по точному имени без учёта регистра.
func Resolve(name string, mats []materials.Material) (*materials.Material, bool) {
	want := strings.ToLower(name)
	for i := range mats {
		if strings.ToLower(mats[i].Name) == want {
			return &mats[i], true
		}
	}
	return nil, false
}

// LineCost — quantity * value. Округление здесь не применяется,
// до двух знаков цену доводит только слой отображения.
func LineCost(it LineItem, mats []materials.Material) (float64, bool) {
	m, ok := Resolve(it.Name, mats)
	if !ok {
		return 0, false
	}
	return it.Quantity * m.Value, true
}

// TotalCost — сумма стоимостей позиций; нерезолвящиеся позиции дают 0.
func TotalCost(e Entry, mats []materials.Material) float64 {
	var total float64
	for _, it := range e.Materials {
		if cost, ok := LineCost(it, mats); ok {
			total += cost
		}
	}
	return total
}

// PackagingCost — стоимость упаковки как lookup с количеством 1.
// Считается отдельно и никогда не складывается в TotalCost.
func PackagingCost(name string, mats []materials.Material) (float64, bool) {
	m, ok := Resolve(name, mats)
	if !ok {
		return 0, false
	}
	return m.Value, true
}

// Costed — запись с производными стоимостями. Ничего из этого не хранится:
// стоимость всегда отражает текущие цены материалов.
type Costed struct {
	Entry
	LineCosts     []*float64 `json:"line_costs"` // по индексу позиции; nil — не резолвится
	TotalCost     float64    `json:"total_cost"`
	PackagingCost *float64   `json:"packaging_cost,omitempty"`
}

func CostEntry(e Entry, mats []materials.Material) Costed {
	c := Costed{Entry: e, LineCosts: make([]*float64, len(e.Materials))}
	for i, it := range e.Materials {
		if cost, ok := LineCost(it, mats); ok {
			v := cost
			c.LineCosts[i] = &v
			c.TotalCost += cost
		}
	}
	if e.Packaging != "" {
		if cost, ok := PackagingCost(e.Packaging, mats); ok {
			c.PackagingCost = &cost
		}
	}
	return c
}
