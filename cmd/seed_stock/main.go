// seed_stock genera un script SQL con el stock inicial (categorías, productos y lotes)
// a partir de un CSV separado por ';' exportado desde la hoja de bodega.
//
// Columnas: category;code;name;quantity;price;received_at
// Acepta UTF-8 o ISO-8859-1.
//
// Uso: go run ./cmd/seed_stock [ruta/stock.csv] [salida.sql]
// Por defecto lee stock.csv del directorio actual y escribe seeds/stock_seed.sql en la raíz del módulo.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	csvPath := "stock.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "seeds", "stock_seed.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRows(decodeInput(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV:\n%v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows, filepath.Base(csvPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d lotes\n", outPath, len(rows))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
