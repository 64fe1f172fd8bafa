package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

const sampleCSV = `category;code;name;quantity;price;received_at
ATK;ATK-001;Kertas HVS A4;3;52000;2024-01-10
ATK;ATK-001;Kertas HVS A4;5;54000,50;2024-01-12 08:30:00

Kebersihan;KBR-001;Sabun D'Lux;10;18000;2024-01-11T09:00:00Z
`

func TestParseRows_LeeFilasYCabecera(t *testing.T) {
	rows, err := parseRows(decodeInput([]byte(sampleCSV)))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ATK-001", rows[0].code)
	assert.Equal(t, int64(3), rows[0].quantity)
	assert.Equal(t, "54000.50", rows[1].price.StringFixed(2), "acepta coma decimal")
	assert.Equal(t, 8, rows[1].receivedAt.Hour())
	assert.Equal(t, "Sabun D'Lux", rows[2].name)
}

func TestDecodeInput_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Papelería;PAP-001;Cuadernos año;2;1500;2024-01-10\n")
	require.NoError(t, err)

	rows, err := parseRows(decodeInput([]byte(latin1)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Papelería", rows[0].category)
	assert.Equal(t, "Cuadernos año", rows[0].name)
}

func TestParseRows_JuntaErroresDeTodasLasFilas(t *testing.T) {
	in := "ATK;ATK-001;Kertas;-1;100;2024-01-10\n" +
		"ATK;ATK-002;Pulpen;4;gratis;2024-01-10\n" +
		"ATK;ATK-003;Lem;4;100;ayer\n" +
		"ATK;ATK-004;Solo cinco;4;100\n"

	_, err := parseRows(strings.NewReader(in))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"línea 1", "línea 2", "línea 3", "línea 4"} {
		assert.Contains(t, msg, want)
	}
}

func TestWriteSQL_IdempotenteYConIDsEstables(t *testing.T) {
	rows, err := parseRows(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeSQL(&b, rows, "stock.csv"))
	sql := b.String()

	assert.Contains(t, sql, "ON CONFLICT (title) DO NOTHING")
	assert.Contains(t, sql, "ON CONFLICT (code) DO UPDATE")
	assert.Contains(t, sql, memory.SeedID("product:ATK-001"), "mismos IDs que el store de demostración")
	assert.Contains(t, sql, "'Sabun D''Lux'", "escapa comillas simples")
	assert.Contains(t, sql, "54000.50")
	assert.Equal(t, 3, strings.Count(sql, "INSERT INTO stocks"))
	assert.Equal(t, 2, strings.Count(sql, "INSERT INTO products"), "un producto por código")
	assert.Contains(t, sql, "WHERE p.code IN ('ATK-001', 'KBR-001')")
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}

func TestWriteSQL_SinFilas(t *testing.T) {
	assert.Error(t, writeSQL(io.Discard, nil, "vacio.csv"))
}
