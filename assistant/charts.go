package assistant

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/gauss-analytics/gauss-assistant/models"
)

// Candidate column names probed when the representation decision carries
// no inline data. Keys are normalized to uppercase by the executor; the
// lowercase variants are kept as tolerance for rows built elsewhere.
var (
	categoryKeys = []string{"CATEGORY", "category", "NAME", "name"}
	valueKeys    = []string{"VALUE", "value", "COUNT", "count"}
)

const fallbackCategory = "Sin categoría"

// DeriveChartPoints builds {name, value} pairs from a result set by
// probing the candidate category and value columns. Rows with no
// matching candidate get the placeholder label and a zero value.
func DeriveChartPoints(rs *models.QueryResultSet) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		point := models.ChartPoint{Name: fallbackCategory}
		for _, key := range categoryKeys {
			if v, ok := row[key]; ok && v != nil {
				point.Name = toLabel(v)
				break
			}
		}
		for _, key := range valueKeys {
			if v, ok := row[key]; ok {
				if n, ok := toFloat(v); ok {
					point.Value = n
					break
				}
			}
		}
		points = append(points, point)
	}
	return points
}

// TableColumns returns the column order for a table payload: the result
// set's own order when present, otherwise the first row's keys sorted
// for determinism.
func TableColumns(rs *models.QueryResultSet) []string {
	if len(rs.Columns) > 0 {
		return rs.Columns
	}
	if len(rs.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rs.Rows[0]))
	for k := range rs.Rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func toLabel(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fallbackCategory
	}
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
