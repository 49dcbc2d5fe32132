package importer

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xuri/excelize/v2"

	"github.com/deepfsd/costing-sheet/internal/domain/costing"
	"github.com/deepfsd/costing-sheet/internal/domain/materials"
)

// Импорт из Excel. Строки обрабатываются последовательно и независимо:
// ошибка одной строки не останавливает остальные и ничего не откатывает.
// Частичный успех — ожидаемое поведение, каждая строка отчитывается отдельно.

var importRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "costing_import_rows_total",
	Help: "Imported spreadsheet rows by sheet kind and outcome.",
}, []string{"kind", "outcome"})

type RowReport struct {
	Row   int    `json:"row"` // номер строки в файле, начиная с 1 (заголовок — строка 1)
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type CostingInserter interface {
	Insert(ctx context.Context, d costing.Draft) (*costing.Entry, error)
}

type MaterialCreator interface {
	Create(ctx context.Context, name string, value float64, unit string) (*materials.Material, error)
}

var (
	qtyPattern  = regexp.MustCompile(`[0-9.]+`)
	unitPattern = regexp.MustCompile(`[a-zA-Z]+`)
)

// parseMaterialsUsed разбирает ячейку вида "wood:2pcs, paper:1.5kg".
// Пара без распознаваемого количества деградирует до 0 / пустой единицы,
// строку целиком это не валит.
func parseMaterialsUsed(cell string) []costing.LineItem {
	var items []costing.LineItem
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, qtyUnit, _ := strings.Cut(part, ":")
		it := costing.LineItem{Name: strings.TrimSpace(name)}
		if q := qtyPattern.FindString(qtyUnit); q != "" {
			it.Quantity, _ = strconv.ParseFloat(q, 64)
		}
		it.InUnit = unitPattern.FindString(qtyUnit)
		items = append(items, it)
	}
	return items
}

// headerIndex строит мапу "заголовок в нижнем регистре" -> индекс колонки.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func lookup(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

func openRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}
	return rows, nil
}

// ImportCostings читает книгу с колонками Product Description / Packaging /
// Materials Used / Comments / Image URL и заводит запись на каждую строку.
func ImportCostings(ctx context.Context, store CostingInserter, r io.Reader) ([]RowReport, error) {
	rows, err := openRows(r)
	if err != nil {
		return nil, err
	}

	idx := headerIndex(rows[0])
	descCol := lookup(idx, "product description")
	packCol := lookup(idx, "packaging")
	matsCol := lookup(idx, "materials used")
	commCol := lookup(idx, "comments")
	imgCol := lookup(idx, "image url")
	if matsCol < 0 {
		return nil, fmt.Errorf("missing required column %q", "Materials Used")
	}

	reports := make([]RowReport, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rep := RowReport{Row: i + 1}

		matsCell := cellAt(rows[i], matsCol)
		if matsCell == "" {
			rep.Error = "empty Materials Used"
			importRows.WithLabelValues("costing", "failed").Inc()
			reports = append(reports, rep)
			continue
		}

		d := costing.Draft{
			ProductDescription: cellAt(rows[i], descCol),
			Packaging:          cellAt(rows[i], packCol),
			Materials:          parseMaterialsUsed(matsCell),
			Comments:           cellAt(rows[i], commCol),
		}
		if url := cellAt(rows[i], imgCol); url != "" {
			d.ImageURL = &url
		}

		if _, err := store.Insert(ctx, d); err != nil {
			rep.Error = err.Error()
			importRows.WithLabelValues("costing", "failed").Inc()
		} else {
			rep.OK = true
			importRows.WithLabelValues("costing", "ok").Inc()
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// ImportMaterials читает книгу с колонками Name / Unit / Cost Per Unit.
// Каждая строка проходит через сервис материалов, так что получает
// базовую запись истории, как и при ручном добавлении.
func ImportMaterials(ctx context.Context, creator MaterialCreator, r io.Reader) ([]RowReport, error) {
	rows, err := openRows(r)
	if err != nil {
		return nil, err
	}

	idx := headerIndex(rows[0])
	nameCol := lookup(idx, "name")
	unitCol := lookup(idx, "unit")
	valueCol := lookup(idx, "cost per unit", "value")
	if nameCol < 0 {
		return nil, fmt.Errorf("missing required column %q", "Name")
	}

	reports := make([]RowReport, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rep := RowReport{Row: i + 1}

		// Некорректная цена деградирует до 0, строку не валим.
		value, _ := strconv.ParseFloat(cellAt(rows[i], valueCol), 64)

		if _, err := creator.Create(ctx, cellAt(rows[i], nameCol), value, cellAt(rows[i], unitCol)); err != nil {
			rep.Error = err.Error()
			importRows.WithLabelValues("materials", "failed").Inc()
		} else {
			rep.OK = true
			importRows.WithLabelValues("materials", "ok").Inc()
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
