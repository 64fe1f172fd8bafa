package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

// stockRow una fila del CSV: category;code;name;quantity;price;received_at
type stockRow struct {
	line       int
	category   string
	code       string
	name       string
	quantity   int64
	price      decimal.Decimal
	receivedAt time.Time
}

var receivedLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "02/01/2006"}

// decodeInput devuelve el contenido en UTF-8. Si no es UTF-8 válido se asume ISO-8859-1,
// que es como exportan las hojas de cálculo de bodega.
func decodeInput(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

// parseRows lee el CSV separado por ';'. La cabecera es opcional; las filas vacías se ignoran.
// Los errores de todas las filas se devuelven juntos.
func parseRows(r io.Reader) ([]stockRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows []stockRow
		errs []error
		line int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "category") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (stockRow, error) {
	if len(rec) != 6 {
		return stockRow{}, fmt.Errorf("línea %d: se esperaban 6 columnas, hay %d", line, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	row := stockRow{line: line, category: rec[0], code: rec[1], name: rec[2]}
	if row.category == "" || row.code == "" || row.name == "" {
		return stockRow{}, fmt.Errorf("línea %d: category, code y name son requeridos", line)
	}

	qty, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil || qty < 0 {
		return stockRow{}, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[3])
	}
	row.quantity = qty

	// Acepta coma decimal ("52000,50").
	price, err := decimal.NewFromString(strings.ReplaceAll(rec[4], ",", "."))
	if err != nil || price.IsNegative() {
		return stockRow{}, fmt.Errorf("línea %d: precio inválido %q", line, rec[4])
	}
	row.price = price.Round(2)

	for _, layout := range receivedLayouts {
		if t, err := time.Parse(layout, rec[5]); err == nil {
			row.receivedAt = t.UTC()
			break
		}
	}
	if row.receivedAt.IsZero() {
		return stockRow{}, fmt.Errorf("línea %d: fecha de recepción inválida %q", line, rec[5])
	}
	return row, nil
}

// writeSQL escribe un script idempotente: categorías, productos, lotes y latest_quantity recalculado.
// Los IDs son estables (derivados de título, código y fila) para que reejecutar no duplique lotes.
func writeSQL(w io.Writer, rows []stockRow, source string) error {
	if len(rows) == 0 {
		return errors.New("sin filas de stock")
	}
	var b strings.Builder

	b.WriteString("-- Stock inicial por lotes\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	b.WriteString("BEGIN;\n\n")

	categories := map[string]struct{}{}
	products := map[string]stockRow{}
	for _, r := range rows {
		categories[r.category] = struct{}{}
		if _, ok := products[r.code]; !ok {
			products[r.code] = r
		}
	}

	b.WriteString("-- 1. Categorías\n")
	for _, title := range sortedKeys(categories) {
		fmt.Fprintf(&b, "INSERT INTO categories (id, title) VALUES ('%s', '%s')\nON CONFLICT (title) DO NOTHING;\n",
			memory.SeedID("category:"+title), escapeSQL(title))
	}

	b.WriteString("\n-- 2. Productos\n")
	for _, code := range sortedKeys(products) {
		p := products[code]
		fmt.Fprintf(&b, "INSERT INTO products (id, category_id, name, code)\n")
		fmt.Fprintf(&b, "SELECT '%s', id, '%s', '%s' FROM categories WHERE title = '%s'\n",
			memory.SeedID("product:"+code), escapeSQL(p.name), escapeSQL(code), escapeSQL(p.category))
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now();\n")
	}

	b.WriteString("\n-- 3. Lotes\n")
	for _, r := range rows {
		ts := r.receivedAt.Format(time.RFC3339)
		fmt.Fprintf(&b, "INSERT INTO stocks (id, product_id, quantity, price, created_at, updated_at)\n")
		fmt.Fprintf(&b, "SELECT '%s', id, %d, %s, '%s', '%s' FROM products WHERE code = '%s'\n",
			memory.SeedID(fmt.Sprintf("lot:%s:%s:%d", r.code, ts, r.line)),
			r.quantity, r.price.StringFixed(2), ts, ts, escapeSQL(r.code))
		b.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	}

	b.WriteString("\n-- 4. Cantidad cacheada por producto\n")
	codes := sortedKeys(products)
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "'" + escapeSQL(c) + "'"
	}
	b.WriteString("UPDATE products p SET latest_quantity = COALESCE((SELECT SUM(s.quantity) FROM stocks s WHERE s.product_id = p.id), 0), updated_at = now()\n")
	fmt.Fprintf(&b, "WHERE p.code IN (%s);\n\n", strings.Join(quoted, ", "))
	b.WriteString("COMMIT;\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
