package assistant

import "strings"

// DataCommandPrefix is the explicit override that always routes a
// message into the data pipeline.
const DataCommandPrefix = "select ai"

// Keywords connoting a request for real data: quantity words, aggregate
// words, dataset-entity words, temporal-grouping words, and chart-request
// words. The scan is a best-effort heuristic; misroutes are corrected by
// the user via the "select ai" prefix, not by growing this list.
var dataKeywords = []string{
	// quantity
	"cuántos", "cuantos", "cuántas", "cuantas", "how many", "total",
	"número de", "numero de",
	// aggregates
	"promedio", "media", "suma de", "máximo", "maximo", "mínimo", "minimo",
	"porcentaje",
	// dataset entities
	"casos", "pacientes", "diagnóstico", "diagnostico", "ingresos",
	"estancia", "coste", "servicio", "comunidad", "reingreso",
	"severidad", "mortalidad",
	// temporal grouping
	"por mes", "por año", "por ano", "mensual", "anual", "tendencia",
	"evolución", "evolucion",
	// chart requests
	"gráfica", "grafica", "gráfico", "grafico", "chart", "visualiza",
	"distribución", "distribucion", "compara", "muéstrame", "muestrame",
}

// NeedsData reports whether the message should take the data path.
// Always true for the literal "select ai" command prefix.
func NeedsData(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, DataCommandPrefix) {
		return true
	}
	for _, kw := range dataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// StripDataCommand removes a leading "select ai" prefix, leaving the
// natural-language data request.
func StripDataCommand(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= len(DataCommandPrefix) &&
		strings.EqualFold(trimmed[:len(DataCommandPrefix)], DataCommandPrefix) {
		return strings.TrimSpace(trimmed[len(DataCommandPrefix):])
	}
	return trimmed
}
