package payroll

import (
	"math"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/payroll"
)

// ComputePayrollItem applies a rule snapshot to one employee's minute totals for a period.
// Negative minutes are treated as zero and an unknown deduction mode behaves as NONE.
func ComputePayrollItem(totals payroll.MinuteTotals, rule payroll.PayrollRuleSnapshot) payroll.PayrollComputationResult {
	worked := max(0, totals.Worked)
	breaks := max(0, totals.Break)
	overtime := max(0, totals.Overtime)
	late := max(0, totals.Late)

	payable := worked
	switch rule.BreakDeductionMode {
	case payroll.BreakDeductionUnpaidAllBreaks:
		payable = max(0, worked-breaks)
	case payroll.BreakDeductionUnpaidOvertimeOnly:
		payable = max(0, worked-max(0, breaks-overtime))
	}

	regular := max(0, payable-overtime)

	regularPay := float64(regular) / 60 * rule.BaseHourlyRate
	overtimePay := float64(overtime) / 60 * rule.BaseHourlyRate * rule.OvertimeMultiplier
	gross := round2(regularPay + overtimePay)
	penalty := round2(float64(late) * rule.LatePenaltyPerMinute)

	return payroll.PayrollComputationResult{
		WorkedMinutes:   worked,
		BreakMinutes:    breaks,
		OvertimeMinutes: overtime,
		LateMinutes:     late,
		PayableMinutes:  payable,
		RegularMinutes:  regular,
		RegularPay:      regularPay,
		OvertimePay:     overtimePay,
		GrossPay:        gross,
		LatePenalty:     penalty,
		FinalPay:        round2(math.Max(0, gross-penalty)),
	}
}

// round2 rounds half up at the cent boundary.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
