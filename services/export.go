// Package services - registry exports. The dashboards export the in-memory
// athlete list as CSV or a landscape PDF table, and individual athletes as
// wallet-sized PDF identity cards carrying the portrait and a QR code.
// File: services/export.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"athproof/logger"
	"athproof/models"
)

// registry column layout shared by the CSV and PDF exports
var registryHeader = []string{"S/N", "REG ID", "FULL NAME", "SPORT", "GENDER", "DOB", "PHONE", "ADDRESS"}

func registryRow(index int, a models.Athlete) []string {
	return []string{
		fmt.Sprintf("%03d", index+1),
		a.AthleteID,
		strings.ToUpper(a.FullName()),
		strings.ToUpper(a.Sport),
		strings.ToUpper(a.Gender),
		a.DOB,
		a.ParentPhone,
		strings.ToUpper(a.HomeAddress),
	}
}

// RegistryCSV renders the full athlete registry as CSV.
func RegistryCSV(athletes []models.Athlete) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(registryHeader); err != nil {
		return nil, err
	}
	for i, a := range athletes {
		if err := w.Write(registryRow(i, a)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// RegistryPDF renders the full athlete registry as a landscape A4 table.
func RegistryPDF(athletes []models.Athlete) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "ATH-PROOF 2026 GENERAL REGISTRY")
	pdf.Ln(12)

	widths := []float64{12, 28, 60, 28, 20, 24, 32, 70}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(30, 58, 138)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range registryHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for i, a := range athletes {
		for j, cell := range registryRow(i, a) {
			pdf.CellFormat(widths[j], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render registry pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// IDCard renders a single athlete's accreditation card (standard ID-1 size,
// 53.9mm x 85.6mm portrait) with the portrait photo and a verification QR.
func IDCard(a models.Athlete, verifyURL string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 53.9, Ht: 85.6},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// header band
	pdf.SetFillColor(30, 58, 138)
	pdf.Rect(0, 0, 53.9, 22, "F")
	pdf.SetTextColor(250, 204, 21)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(0, 5)
	pdf.CellFormat(53.9, 6, "ATH-PROOF", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 5)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(53.9, 3, "OFFICIAL ACCREDITATION", "", 1, "C", false, 0, "")

	// portrait
	if a.Photo != "" {
		raw, err := DecodePhoto(a.Photo)
		if err != nil {
			logger.Warn.Printf("[IDCard] Skipping unreadable photo for %s: %v", a.AthleteID, err)
		} else {
			name := "portrait-" + a.AthleteID
			pdf.RegisterImageOptionsReader(name,
				fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(raw))
			pdf.ImageOptions(name, 14.95, 16, 24, 24, false,
				fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		}
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(0, 42)
	pdf.CellFormat(53.9, 5, strings.ToUpper(a.FullName()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(53.9, 4, a.Sport+"  |  "+a.Category, "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 7)
	pdf.CellFormat(53.9, 4, a.AthleteID, "", 1, "C", false, 0, "")

	// verification QR
	if verifyURL != "" {
		png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
		if err != nil {
			logger.Warn.Printf("[IDCard] QR generation failed for %s: %v", a.AthleteID, err)
		} else {
			name := "qr-" + a.AthleteID
			pdf.RegisterImageOptionsReader(name,
				fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
			pdf.ImageOptions(name, 18.95, 58, 16, 16, false,
				fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "", 4.5)
	pdf.SetXY(0, 79)
	pdf.CellFormat(53.9, 3,
		"Issued "+time.Now().UTC().Format("02 Jan 2006")+"  -  Valid for camp year "+strconv.Itoa(campYear),
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render id card: %w", err)
	}
	return buf.Bytes(), nil
}

const campYear = 2026
