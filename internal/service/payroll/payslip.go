package payroll

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	"github.com/jung-kurt/gofpdf"
)

// RenderPayslip lays out one payroll item on a single A4 page.
func RenderPayslip(run payroll.PayrollRun, item payroll.PayrollItem) ([]byte, error) {
	name := item.EmployeeID
	if item.EmployeeName != nil && *item.EmployeeName != "" {
		name = *item.EmployeeName
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		run.PeriodStart.Format(localtime.DateLayout), run.PeriodEnd.Format(localtime.DateLayout)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", run.Status))
	pdf.Ln(10)

	rows := [][2]string{
		{"Sessions", fmt.Sprintf("%d", item.SessionCount)},
		{"Worked", fmt.Sprintf("%d min", item.WorkedMinutes)},
		{"Breaks", fmt.Sprintf("%d min", item.BreakMinutes)},
		{"Payable", fmt.Sprintf("%d min", item.PayableMinutes)},
		{"Regular", fmt.Sprintf("%d min", item.RegularMinutes)},
		{"Overtime", fmt.Sprintf("%d min", item.OvertimeMinutes)},
		{"Late", fmt.Sprintf("%d min", item.LateMinutes)},
		{"Regular pay", item.RegularPay.StringFixed(2)},
		{"Overtime pay", item.OvertimePay.StringFixed(2)},
		{"Gross pay", item.GrossPay.StringFixed(2)},
		{"Late penalty", item.LatePenalty.StringFixed(2)},
	}
	for _, row := range rows {
		pdf.CellFormat(60, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, row[1], "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 9, "Final pay", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, item.FinalPay.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
