// Package wordsamples corre la consulta de muestra: las tres primeras
// oraciones (orden alfabético) de cada palabra, en columnas sentence1..3.
package wordsamples

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Columns del resultado reformateado.
var Columns = []string{"word", "sentence1", "sentence2", "sentence3"}

// Row es una palabra con hasta tres oraciones ("" si faltan).
type Row struct {
	Word      string
	Sentences [3]string
}

// SQL devuelve la consulta para el dialecto del warehouse.
func SQL(d warehouse.Dialect, qualified string) string {
	agg := "ARRAY_AGG(sentence1 ORDER BY sentence1 LIMIT 3)"
	if d == warehouse.DialectPostgres {
		agg = "ARRAY_AGG(sentence1 ORDER BY sentence1)"
	}
	return fmt.Sprintf(`SELECT word, %s AS sentences
FROM (
    SELECT word, sentence1,
           ROW_NUMBER() OVER (PARTITION BY word ORDER BY sentence1) AS rn
    FROM %s
) ranked
WHERE rn <= 3
GROUP BY word
ORDER BY word`, agg, qualified)
}

// Run ejecuta la consulta sobre dataset.table y reformatea el resultado.
func Run(ctx context.Context, wh warehouse.Client, dataset, table string) ([]Row, error) {
	t, err := wh.Query(ctx, SQL(wh.Dialect(), wh.QualifiedName(dataset, table)))
	if err != nil {
		return nil, fmt.Errorf("wordsamples: %w", err)
	}
	return Reshape(t)
}

// Reshape parte la columna "sentences" en tres columnas.
func Reshape(t *warehouse.Table) ([]Row, error) {
	wordIdx, sentIdx := -1, -1
	for i, c := range t.Columns {
		switch c {
		case "word":
			wordIdx = i
		case "sentences":
			sentIdx = i
		}
	}
	if wordIdx < 0 || sentIdx < 0 {
		return nil, fmt.Errorf("wordsamples: unexpected columns %v", t.Columns)
	}

	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := Row{Word: str(r[wordIdx])}
		for i, s := range list(r[sentIdx]) {
			if i >= len(row.Sentences) {
				break
			}
			row.Sentences[i] = s
		}
		out = append(out, row)
	}
	return out, nil
}

func list(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			out[i] = str(e)
		}
		return out
	default:
		return []string{str(x)}
	}
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Render imprime las filas como tabla estilo psql.
func Render(w io.Writer, rows []Row) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		tw.Append([]string{r.Word, r.Sentences[0], r.Sentences[1], r.Sentences[2]})
	}
	tw.Render()
}
