package infra

// pdf.go — boleto PDF generation using go-pdf/fpdf. The layout follows the
// usual boleto slip: cedente header, sacado block, due date and corrected
// value, linha digitável in monospace.
//
// The output file is saved to storagePath/boleto_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateBoletoPDF renders the boleto slip after a successful emission.
// Returns the absolute path to the generated file.
func GenerateBoletoPDF(boleto *model.Boleto, sacado, sacadoDocumento, cedenteCNPJ, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("boleto_%s.pdf", boleto.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Boleto de Cobrança", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 6, "Cedente CNPJ: "+cedenteCNPJ, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(4)

	// ── Sacado ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Sacado", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, sacado, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Documento: "+sacadoDocumento, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Valores ───────────────────────────────────────────────────────────────
	col := contentW / 2
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col, 6, "Vencimento", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col, 6, "Valor do Documento", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(col, 7, boleto.Vencimento.Format("02/01/2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(col, 7, "R$ "+boleto.ValorCorrigido.StringFixed(2), "", 1, "R", false, 0, "")

	if !boleto.PercentualCorrecao.IsZero() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW, 5, fmt.Sprintf(
			"Valor de face R$ %s corrigido em %s%%",
			boleto.ValorFace.StringFixed(2), boleto.PercentualCorrecao.StringFixed(4)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// ── Identificação bancária ───────────────────────────────────────────────
	if boleto.NossoNumero != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Nosso Número", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, *boleto.NossoNumero, "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
	if boleto.LinhaDigitavel != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Linha Digitável", "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "B", 11)
		pdf.CellFormat(contentW, 7, *boleto.LinhaDigitavel, "1", 1, "C", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Pagável em qualquer banco até o vencimento.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
