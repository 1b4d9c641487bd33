package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

const (
	SyncBatchSize  = 50
	csvFieldCount  = 7
	sentinelFoodID = "000000"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CatalogSyncService seeds the food catalog. Both ingress paths upsert by
// id inside one transaction, so replaying an input converges.
type CatalogSyncService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCatalogSyncService(db *gorm.DB, logger *slog.Logger) *CatalogSyncService {
	return &CatalogSyncService{db: db, logger: logger}
}

type CSVReport struct {
	Rows    int `json:"rows"`
	Parsed  int `json:"parsed"`
	Skipped int `json:"skipped"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncCSV reads "id,name,category,calories,protein,carbs,fat" rows after a
// header line. Rows with a missing or placeholder id, a blank name or
// category, the wrong field count, or unparsable numbers are skipped.
// Imported foods are published.
func (s *CatalogSyncService) SyncCSV(ctx context.Context, r io.Reader) (*CSVReport, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	report := &CSVReport{}
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		return nil, apperrors.NewValidationErrorf("malformed CSV header: %v", err)
	}

	var foods []domain.Food
	index := make(map[string]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewValidationErrorf("malformed CSV: %v", err)
		}
		report.Rows++

		food, ok := parseCSVRow(row)
		if !ok {
			report.Skipped++
			line, _ := reader.FieldPos(0)
			s.logger.DebugContext(ctx, "Skipping CSV row", "line", line)
			continue
		}
		report.Parsed++

		// Last occurrence of an id wins.
		if i, dup := index[food.ID]; dup {
			foods[i] = food
			continue
		}
		index[food.ID] = len(foods)
		foods = append(foods, food)
	}

	if len(foods) == 0 {
		return report, nil
	}

	ids := make([]string, len(foods))
	for i := range foods {
		ids[i] = foods[i].ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewFoodRepository(tx)
		existing, err := repo.ExistingIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if existing[id] {
				report.Updated++
			} else {
				report.Created++
			}
		}
		return repo.Upsert(ctx, foods, SyncBatchSize)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "CSV catalog sync completed",
		"rows", report.Rows, "parsed", report.Parsed, "skipped", report.Skipped,
		"created", report.Created, "updated", report.Updated)
	return report, nil
}

func parseCSVRow(row []string) (domain.Food, bool) {
	if len(row) != csvFieldCount {
		return domain.Food{}, false
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	id, name, category := row[0], normalizeName(row[1]), row[2]
	if id == "" || id == sentinelFoodID || name == "" || category == "" {
		return domain.Food{}, false
	}

	var nums [4]float64
	for i := range nums {
		v, err := strconv.ParseFloat(row[3+i], 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Food{}, false
		}
		nums[i] = v
	}

	return domain.Food{
		ID:              id,
		Name:            name,
		Category:        domain.NormalizeCategory(category),
		CaloriesPer100g: nums[0],
		ProteinPer100g:  nums[1],
		CarbsPer100g:    &nums[2],
		FatPer100g:      &nums[3],
		IsPublished:     true,
	}, true
}

// SyncRows upserts loosely shaped rows (see MapRow). Rows without id or
// name, or with unusable values, are skipped; duplicates by id keep the
// last occurrence. It returns the number of catalog rows written.
func (s *CatalogSyncService) SyncRows(ctx context.Context, rows []map[string]any) (int, error) {
	var foods []domain.Food
	index := make(map[string]int)
	for i, row := range rows {
		food, err := MapRow(row)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping sync row", "index", i, "error", err)
			continue
		}
		if j, dup := index[food.ID]; dup {
			foods[j] = food
			continue
		}
		index[food.ID] = len(foods)
		foods = append(foods, food)
	}

	if len(foods) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewFoodRepository(tx).Upsert(ctx, foods, SyncBatchSize)
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Catalog rows synced", "received", len(rows), "applied", len(foods))
	return len(foods), nil
}

var (
	idKeys          = []string{"id", "ID", "Id", "food_id", "foodId", "食品編號", "代碼"}
	nameKeys        = []string{"name", "Name", "名稱", "食品名稱", "Food Name", "food_name"}
	categoryKeys    = []string{"category", "Category", "分類", "類別"}
	brandKeys       = []string{"brand", "Brand", "品牌"}
	servingUnitKeys = []string{"serving_unit", "servingUnit", "單位"}
	servingSizeKeys = []string{"serving_size", "servingSize", "每份克數"}
	publishedKeys   = []string{"is_published", "isPublished", "published", "發布"}
	caloriesKeys    = []string{"calories", "caloriesPer100g", "calories_per_100g", "熱量"}
	proteinKeys     = []string{"protein", "proteinPer100g", "protein_per_100g", "蛋白質"}
	carbsKeys       = []string{"carbs", "carbsPer100g", "carbs_per_100g", "碳水化合物"}
	fatKeys         = []string{"fat", "fatPer100g", "fat_per_100g", "脂肪"}
)

// MapRow normalizes a loosely keyed row (english, camelCase, snake_case or
// zh-TW keys) into a catalog entry. id and name are required. Missing
// nutrients are zero, missing optional attributes nil, and the row is
// unpublished unless it says otherwise.
func MapRow(row map[string]any) (domain.Food, error) {
	id := stringValue(pick(row, idKeys))
	name := normalizeName(stringValue(pick(row, nameKeys)))
	if id == "" || name == "" {
		return domain.Food{}, apperrors.NewValidationError("id and name are required")
	}

	food := domain.Food{
		ID:          id,
		Name:        name,
		Category:    domain.NormalizeCategory(stringValue(pick(row, categoryKeys))),
		Brand:       optionalString(pick(row, brandKeys)),
		ServingUnit: optionalString(pick(row, servingUnitKeys)),
		IsPublished: boolValue(pick(row, publishedKeys)),
	}

	var err error
	if food.ServingSize, err = optionalNumber(pick(row, servingSizeKeys), "servingSize"); err != nil {
		return domain.Food{}, err
	}
	if food.CarbsPer100g, err = optionalNumber(pick(row, carbsKeys), "carbs"); err != nil {
		return domain.Food{}, err
	}
	if food.FatPer100g, err = optionalNumber(pick(row, fatKeys), "fat"); err != nil {
		return domain.Food{}, err
	}
	calories, err := optionalNumber(pick(row, caloriesKeys), "calories")
	if err != nil {
		return domain.Food{}, err
	}
	protein, err := optionalNumber(pick(row, proteinKeys), "protein")
	if err != nil {
		return domain.Food{}, err
	}
	if calories != nil {
		food.CaloriesPer100g = *calories
	}
	if protein != nil {
		food.ProteinPer100g = *protein
	}
	return food, nil
}

func pick(row map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func optionalString(v any) *string {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	return &s
}

func optionalNumber(v any, field string) (*float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, apperrors.NewValidationErrorf("%s is not a number", field)
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.NewValidationErrorf("%s is not a number", field)
		}
		f = n
	default:
		return nil, apperrors.NewValidationErrorf("%s has unsupported type %T", field, v)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.NewValidationErrorf("%s must be a non-negative number", field)
	}
	return &f, nil
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case int:
		return t == 1
	case json.Number:
		return t.String() == "1"
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1"
	default:
		return false
	}
}
