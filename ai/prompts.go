package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gauss-analytics/gauss-assistant/models"
)

// ErrNoJSON means the model's response contained no extractable JSON
// object, or the object was missing required fields.
var ErrNoJSON = errors.New("no usable JSON object in model response")

// BuildSynthesisPrompt asks the model to turn a natural-language data
// request into a single read-only Oracle SELECT, as strict JSON.
func BuildSynthesisPrompt(request string) string {
	var b strings.Builder
	b.WriteString("El usuario quiere consultar datos reales de la tabla ENFERMEDADESMENTALESDIAGNOSTICO.\n\n")
	b.WriteString("PETICIÓN: ")
	b.WriteString(request)
	b.WriteString("\n\nGenera UNA consulta SQL de solo lectura (SELECT) para Oracle que responda la petición.\n")
	b.WriteString("Recuerda: columnas con espacios o tildes entre comillas dobles, por ejemplo \"Categoría\" o \"Estancia Días\".\n")
	b.WriteString("Cuando agrupes, usa alias CATEGORY para la etiqueta y VALUE para el número.\n")
	b.WriteString("Responde SOLO con este JSON, sin markdown ni texto adicional:\n")
	b.WriteString(`{"sqlQuery": "SELECT ...", "explanation": "breve explicación en español"}`)
	return b.String()
}

// BuildRepresentationPrompt asks the model to decide how to present an
// executed result set, given a sample of rows and the true total count.
func BuildRepresentationPrompt(request string, sample []map[string]any, totalRows int) string {
	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		sampleJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("La consulta del usuario fue: ")
	b.WriteString(request)
	b.WriteString(fmt.Sprintf("\n\nLa consulta SQL devolvió %d filas en total. Muestra (máximo 10 filas):\n", totalRows))
	b.Write(sampleJSON)
	b.WriteString("\n\nDecide la mejor forma de presentar estos resultados.\n")
	b.WriteString("Usa \"table\" para listados con varias columnas; usa una gráfica (bar, line, pie, area) para distribuciones, comparativas o tendencias.\n")
	b.WriteString("Responde SOLO con este JSON, sin markdown ni texto adicional:\n")
	b.WriteString(`{"type": "table" | "bar" | "line" | "pie" | "area", "title": "Título descriptivo", "data": [{"name": "string", "value": number}]}`)
	b.WriteString("\nEl campo data es opcional: si lo omites, se derivará de las filas reales.")
	return b.String()
}

// ExtractJSON finds the first {...} JSON object in the text, handling
// markdown code fences and surrounding narrative. Braces inside string
// literals do not count toward matching. Returns "" when none is found.
func ExtractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		start := idx + len("```")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			candidate := strings.TrimSpace(text[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i, ch := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// ParseSynthesis extracts a SQLSynthesisResult from the model's response.
// Returns ErrNoJSON when no JSON is found or sqlQuery is absent/empty.
func ParseSynthesis(response string) (*models.SQLSynthesisResult, error) {
	jsonStr := ExtractJSON(response)
	if jsonStr == "" {
		return nil, ErrNoJSON
	}

	var result models.SQLSynthesisResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if strings.TrimSpace(result.SQLQuery) == "" {
		return nil, ErrNoJSON
	}
	return &result, nil
}

var validRepresentationTypes = map[string]bool{
	"text":           true,
	"table":          true,
	models.ChartBar:  true,
	models.ChartLine: true,
	models.ChartPie:  true,
	models.ChartArea: true,
}

// ParseRepresentation extracts a RepresentationDecision from the model's
// response. Returns ErrNoJSON when no JSON is found or the type is not
// one of text|table|bar|line|pie|area; the caller falls back to a table
// view.
func ParseRepresentation(response string) (*models.RepresentationDecision, error) {
	jsonStr := ExtractJSON(response)
	if jsonStr == "" {
		return nil, ErrNoJSON
	}

	var decision models.RepresentationDecision
	if err := json.Unmarshal([]byte(jsonStr), &decision); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if !validRepresentationTypes[decision.Type] {
		return nil, fmt.Errorf("%w: unknown representation type %q", ErrNoJSON, decision.Type)
	}
	return &decision, nil
}
