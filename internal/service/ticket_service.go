package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

const (
	qrImageSize    = 512
	ticketDateForm = "02/01/2006 15:04"
)

// ticketService implements TicketService
type ticketService struct {
	issuer string
}

// NewTicketService creates a new TicketService; issuer is printed in the header
func NewTicketService(issuer string) TicketService {
	if issuer == "" {
		issuer = "Event Ticketing"
	}
	return &ticketService{issuer: issuer}
}

// RenderTicket writes an A5 PDF with event data and the QR of the purchase
func (s *ticketService) RenderTicket(ctx context.Context, p *domain.PurchaseDetail, w io.Writer) error {
	_, span := telemetry.StartSpan(ctx, "service.ticket.render")
	defer span.End()

	payload, err := json.Marshal(domain.QRPayloadFor(&p.Purchase))
	if err != nil {
		return fmt.Errorf("failed to encode qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrImageSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to render qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Ticket %d", p.ID), true)
	pdf.SetCreator(s.issuer, true)
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, tr(s.issuer), "", 1, "C", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(p.EventTitle), "", "L", false)
	pdf.Ln(2)

	rows := [][2]string{
		{"Fecha", p.EventStartsAt.Format(ticketDateForm)},
		{"Lugar", p.EventLocation},
		{"Zona", p.ZoneName},
		{"Ubicación", domain.SeatLocation(p.RowNumber, p.SeatNumber)},
		{"Titular", p.UserName},
		{"Total", fmt.Sprintf("%.2f", p.TotalPrice)},
		{"Ticket", fmt.Sprintf("#%d", p.ID)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(r[1]), "", 1, "L", false, 0, "")
	}

	imageName := fmt.Sprintf("qr-%d", p.ID)
	pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pageW, _ := pdf.GetPageSize()
	const qrSide = 70.0
	pdf.ImageOptions(imageName, (pageW-qrSide)/2, pdf.GetY()+6, qrSide, qrSide, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	if err := pdf.Output(w); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to write ticket pdf: %w", err)
	}
	return nil
}
