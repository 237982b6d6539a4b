package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Alumno", "Cobrado", "Pagado", "Saldo"},
		Rows: []map[string]string{
			{"Alumno": "Núñez, María", "Cobrado": "180.00", "Pagado": "150.00", "Saldo": "30.00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Contains(t, string(out), "Alumno;Cobrado;Pagado;Saldo")
	assert.Contains(t, string(out), "\nNúñez, María;180.00;150.00;30.00\n")
}

func TestCSVExporterQuotesSeparator(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Alumno", "Saldo"},
		Rows:    []map[string]string{{"Alumno": "Ruiz; Ana", "Saldo": "0.00"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\"Ruiz; Ana\";0.00\n")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Reporte de pagos")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestBadgeRendererRender(t *testing.T) {
	out, err := NewBadgeRenderer().Render(Badge{
		Title:    "Academia Sol",
		Holder:   "María Núñez",
		Subtitle: "Marinera - Nivel 1",
		Lines:    []string{"LUN,MIE 18:00-19:30"},
		Code:     "5d1c6a9e-3f7b-4c1e-9a55-6a2b0f0f1c11",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestBadgeRendererRequiresCode(t *testing.T) {
	_, err := NewBadgeRenderer().Render(Badge{Holder: "x"})
	assert.Error(t, err)
}
