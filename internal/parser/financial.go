package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"docaudit/internal/model"
)

// Anomaly codes reported on financial extractions.
const (
	AnomalyMissingTotal   = "missing_total"
	AnomalyTotalInferred  = "total_inferred"
	AnomalyNegativeAmount = "negative_amount"
	AnomalyTotalsMismatch = "totals_mismatch"
	AnomalyDueBeforeIssue = "due_before_issue"
)

var (
	invoiceKeys  = []string{"invoice_no", "invoice_number", "invoice", "invoice_id", "bill_no", "reference", "ref_no"}
	vendorKeys   = []string{"vendor", "supplier", "seller", "from", "company", "bill_from"}
	subtotalKeys = []string{"subtotal", "sub_total", "net_amount", "net"}
	taxKeys      = []string{"tax", "vat", "gst", "sales_tax", "tax_amount"}
	totalKeys    = []string{"total", "total_amount", "amount_due", "grand_total", "balance_due", "total_due", "total_amount_due"}
	currencyKeys = []string{"currency"}
	issueKeys    = []string{"invoice_date", "issue_date", "date_of_issue", "issued", "date"}
	dueKeys      = []string{"due_date", "payment_due", "due"}

	numberPattern   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	currencyCode    = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|IDR)\b`)
	currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP", "¥": "JPY"}

	dateLayouts = []string{"2006-01-02", "2/1/2006", "January 2, 2006", "Jan 2, 2006", "Jan. 2, 2006"}
)

// mismatchTolerance is the largest accepted gap between subtotal+tax and total.
var mismatchTolerance = decimal.NewFromFloat(0.01)

// ExtractFinancial derives invoice figures from parsed fields. Missing figures stay
// zero; every irregularity is recorded as an anomaly code.
func ExtractFinancial(r Result) model.FinancialExtraction {
	out := model.FinancialExtraction{
		InvoiceNumber: lookup(r.Fields, invoiceKeys),
		Vendor:        lookup(r.Fields, vendorKeys),
		Anomalies:     []string{},
	}

	var currency string
	subtotal, hasSubtotal := amountField(r.Fields, subtotalKeys, &currency)
	tax, hasTax := amountField(r.Fields, taxKeys, &currency)
	total, hasTotal := amountField(r.Fields, totalKeys, &currency)

	if !hasTotal {
		if largest, ok := largestAmount(r.Amounts, &currency); ok {
			total, hasTotal = largest, true
			out.Anomalies = append(out.Anomalies, AnomalyTotalInferred)
		} else {
			out.Anomalies = append(out.Anomalies, AnomalyMissingTotal)
		}
	}
	if c := lookup(r.Fields, currencyKeys); c != "" {
		currency = strings.ToUpper(c)
	}

	if subtotal.IsNegative() || tax.IsNegative() || total.IsNegative() {
		out.Anomalies = append(out.Anomalies, AnomalyNegativeAmount)
	}
	if hasTotal && hasSubtotal {
		expected := subtotal
		if hasTax {
			expected = expected.Add(tax)
		}
		if expected.Sub(total).Abs().GreaterThan(mismatchTolerance) {
			out.Anomalies = append(out.Anomalies, AnomalyTotalsMismatch)
		}
	}

	out.IssueDate = parseDate(lookup(r.Fields, issueKeys))
	out.DueDate = parseDate(lookup(r.Fields, dueKeys))
	if out.IssueDate != nil && out.DueDate != nil && out.DueDate.Before(*out.IssueDate) {
		out.Anomalies = append(out.Anomalies, AnomalyDueBeforeIssue)
	}

	out.Subtotal, out.Tax, out.Total = subtotal, tax, total
	out.Currency = currency
	out.Consistent = !hasAnomaly(out.Anomalies, AnomalyMissingTotal, AnomalyTotalsMismatch, AnomalyNegativeAmount)
	return out
}

func lookup(fields map[string]string, keys []string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func amountField(fields map[string]string, keys []string, currency *string) (decimal.Decimal, bool) {
	v := lookup(fields, keys)
	if v == "" {
		return decimal.Zero, false
	}
	return ParseAmount(v, currency)
}

func largestAmount(amounts []string, currency *string) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, a := range amounts {
		d, ok := ParseAmount(a, currency)
		if !ok {
			continue
		}
		if !found || d.GreaterThan(best) {
			best, found = d, true
		}
	}
	return best, found
}

// ParseAmount reads a money value such as "$1,200.50", "EUR 12.00" or "(45.00)".
// A detected currency is stored in currency when it is still empty.
func ParseAmount(s string, currency *string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	num := numberPattern.FindString(s)
	if num == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(num, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	idx := strings.Index(s, num)
	prefix := s[:idx]
	if strings.Contains(prefix, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")) {
		d = d.Neg()
	}
	if currency != nil && *currency == "" {
		if m := currencyCode.FindString(s); m != "" {
			*currency = m
		} else {
			for sym, code := range currencySymbols {
				if strings.Contains(s, sym) {
					*currency = code
					break
				}
			}
		}
	}
	return d, true
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	candidates := findOrdered(s, datePatterns...)
	candidates = append(candidates, strings.TrimSpace(s))
	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return &t
			}
		}
	}
	return nil
}

func hasAnomaly(anomalies []string, codes ...string) bool {
	for _, a := range anomalies {
		for _, c := range codes {
			if a == c {
				return true
			}
		}
	}
	return false
}
