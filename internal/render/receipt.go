// Package render produces PDF receipts and certificates for workflow
// entities that reached a positive terminal state.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
)

// PDFReceiptRenderer writes one PDF per entity into outputDir.
type PDFReceiptRenderer struct {
	outputDir string
	orgName   string
}

func NewPDFReceiptRenderer(outputDir, orgName string) *PDFReceiptRenderer {
	return &PDFReceiptRenderer{
		outputDir: outputDir,
		orgName:   orgName,
	}
}

// Ensure PDFReceiptRenderer implements portssvc.ReceiptRenderer
var _ portssvc.ReceiptRenderer = (*PDFReceiptRenderer)(nil)

var receiptTitles = map[domain.EntityKind]string{
	domain.KindSupplyRequest:   "Supply Payment Receipt",
	domain.KindMaterialRequest: "Material Return Receipt",
	domain.KindDonation:        "Donation Receipt",
	domain.KindBooking:         "Service Completion Certificate",
	domain.KindDuty:            "Community Service Certificate",
}

// RenderReceipt writes the PDF and returns its path. The context is honored
// between sections so a cancelled render stops before touching the disk.
func (r *PDFReceiptRenderer) RenderReceipt(ctx context.Context, entity *domain.WorkflowEntity) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", apperrors.NewAppError(500, "failed to create receipt directory", err)
	}

	title, ok := receiptTitles[entity.Kind]
	if !ok {
		return "", fmt.Errorf("%w: no receipt layout for kind %s", apperrors.ErrValidation, entity.Kind)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, r.orgName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	writeRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	writeRow("Reference No.", entity.EntityID)
	writeRow("Date", time.Now().Format("2 January 2006"))
	writeRow("Status", string(entity.State))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch entity.Kind {
	case domain.KindSupplyRequest:
		writeRow("Material", entity.SubjectRef)
		writeRow("Quantity", fmt.Sprintf("%d", entity.Quantity))
		writeRow("Amount Paid", "KES "+entity.Amount.StringFixed(2))
		writeRow("M-PESA Code", entity.Reference)
	case domain.KindMaterialRequest:
		writeRow("Material", entity.SubjectRef)
		writeRow("Units Returned", fmt.Sprintf("%d", entity.QuantityReturned))
	case domain.KindDonation:
		writeRow("Amount", "KES "+entity.Amount.StringFixed(2))
		writeRow("M-PESA Code", entity.Reference)
	case domain.KindBooking:
		writeRow("Service", entity.Title)
		writeRow("Hours", fmt.Sprintf("%d", entity.Quantity))
		writeRow("Amount", "KES "+entity.Amount.StringFixed(2))
		writeRow("Payment Code", entity.Reference)
	case domain.KindDuty:
		writeRow("Duty", entity.Title)
		writeRow("Location", entity.SubjectRef)
		writeRow("Participants", fmt.Sprintf("%d", len(entity.Participants)))
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "This document was generated automatically and is valid without a signature.", "", 1, "C", false, 0, "")

	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(r.outputDir, entity.EntityID+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", apperrors.NewAppError(500, "failed to write receipt PDF", err)
	}
	return path, nil
}
