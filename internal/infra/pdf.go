package infra

// Sale report for a lote, rendered with go-pdf/fpdf on A4:
//   - farm header and lote code
//   - arrival / sale dates
//   - cost breakdown, revenue, profit and margin
//   - one row per animal (ear tag, last weight, status)
//
// The output file is saved to storagePath/venda_{lote}_{venda}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// VendaReport carries the already-computed figures printed in the PDF.
type VendaReport struct {
	VendaID          string
	CodigoLote       string
	DataChegada      time.Time
	DataVenda        time.Time
	Cabecas          int
	PesoTotal        decimal.Decimal
	PesoMedio        decimal.Decimal
	Custo            decimal.Decimal
	GastoAlimentacao decimal.Decimal
	Valor            decimal.Decimal
	Lucro            decimal.Decimal
	Margem           decimal.Decimal
	Bois             []VendaReportBoi
}

// VendaReportBoi is one animal row of the report.
type VendaReportBoi struct {
	Brinco string
	Peso   decimal.Decimal
	Status string
}

// GenerateVendaPDF writes the sale report and returns the absolute file path.
func GenerateVendaPDF(r VendaReport, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("venda_%s_%s.pdf", sanitizeFileName(r.CodigoLote), r.VendaID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Relatório de Venda"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, tr("Lote "+r.CodigoLote), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	label := contentW * 0.45
	value := contentW * 0.55
	line := func(k, v string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(label, 6, tr(k), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(value, 6, tr(v), "", 1, "R", false, 0, "")
	}
	line("Chegada", r.DataChegada.Format("02/01/2006"))
	line("Venda", r.DataVenda.Format("02/01/2006"))
	line("Cabeças", fmt.Sprintf("%d", r.Cabecas))
	line("Peso total (kg)", r.PesoTotal.StringFixed(2))
	line("Peso médio (kg)", r.PesoMedio.StringFixed(2))

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	line("Custo de compra", "R$ "+r.Custo.StringFixed(2))
	line("Gasto com alimentação", "R$ "+r.GastoAlimentacao.StringFixed(2))
	line("Valor da venda", "R$ "+r.Valor.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(label, 8, "Lucro", "", 0, "L", false, 0, "")
	pdf.CellFormat(value, 8, tr("R$ "+r.Lucro.StringFixed(2)+"  ("+r.Margem.StringFixed(2)+"%)"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Animals ──────────────────────────────────────────────────────────────
	col1 := contentW * 0.40
	col2 := contentW * 0.30
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Brinco", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Peso (kg)", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "Status", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, b := range r.Bois {
		brinco := b.Brinco
		if brinco == "" {
			brinco = "-"
		}
		pdf.CellFormat(col1, 5, tr(brinco), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, b.Peso.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, b.Status, "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Gerado em "+time.Now().Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
