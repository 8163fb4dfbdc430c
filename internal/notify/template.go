package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"slices"
	"strconv"
	"strings"

	"procurement/models"
)

const rfpEmailHTML = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4F46E5; color: white; padding: 20px; border-radius: 5px; }
    .content { padding: 20px; background-color: #f9f9f9; border-radius: 5px; margin-top: 20px; }
    .item { background-color: white; padding: 15px; margin: 10px 0; border-radius: 5px; }
    .footer { margin-top: 20px; font-size: 12px; color: #666; }
    table { width: 100%; border-collapse: collapse; margin: 10px 0; }
    th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
    th { background-color: #f0f0f0; font-weight: bold; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Request for Proposal</h1>
      <p>{{.RFP.Title}}</p>
    </div>
    <div class="content">
      <h2>Dear {{.VendorName}},</h2>
      <p>We are inviting you to submit a proposal for the following requirement:</p>
      <div class="item">
        <h3>Items Required:</h3>
        <table>
          <thead><tr><th>Item</th><th>Quantity</th><th>Specifications</th></tr></thead>
          <tbody>
          {{- range .RFP.Items}}
            <tr><td>{{.Name}}</td><td>{{number .Quantity}}</td><td>{{specs .Specifications}}</td></tr>
          {{- end}}
          </tbody>
        </table>
      </div>
      <div class="item">
        <h3>Budget:</h3>
        <p><strong>{{.RFP.Budget.Currency}} {{money .RFP.Budget.Amount}}</strong></p>
      </div>
      <div class="item">
        <h3>Timeline:</h3>
        <p><strong>Response Deadline:</strong> {{.RFP.Timeline.ResponseDeadline}}</p>
        <p><strong>Delivery Deadline:</strong> {{.RFP.Timeline.DeliveryDeadline}}</p>
      </div>
      <div class="item">
        <h3>Terms &amp; Requirements:</h3>
        <p><strong>Payment Terms:</strong> {{.RFP.Terms.PaymentTerms}}</p>
        <p><strong>Warranty:</strong> {{.RFP.Terms.Warranty}}</p>
        {{- if .RFP.Requirements}}
        <p><strong>Additional Requirements:</strong></p>
        <ul>
        {{- range .RFP.Requirements}}
          <li>{{.}}</li>
        {{- end}}
        </ul>
        {{- end}}
      </div>
      <p style="margin-top: 20px;">Please submit your proposal by replying to this email with your best offer including:</p>
      <ul>
        <li>Item-wise pricing</li>
        <li>Total cost</li>
        <li>Delivery timeline</li>
        <li>Payment terms</li>
        <li>Warranty details</li>
        <li>Any other relevant information</li>
      </ul>
    </div>
    <div class="footer">
      <p>This is an automated email from the RFP Management System.</p>
      <p>Please reply to this email with your proposal.</p>
    </div>
  </div>
</body>
</html>`

var rfpEmail = template.Must(template.New("rfp").Funcs(template.FuncMap{
	"number": formatNumber,
	"money":  formatMoney,
	"specs":  formatSpecs,
}).Parse(rfpEmailHTML))

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatMoney: 12500.5 -> "12,500.50", целые суммы без дробной части
func formatMoney(f float64) string {
	neg := f < 0
	f = math.Abs(f)
	whole := int64(f)
	cents := int64(math.Round((f - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if cents > 0 {
		fmt.Fprintf(&b, ".%02d", cents)
	}
	return b.String()
}

func formatSpecs(specs map[string]any) string {
	if len(specs) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, specs[k]))
	}
	return strings.Join(parts, ", ")
}

// RenderRFP возвращает тему и HTML-тело письма с приглашением
func RenderRFP(vendorName string, rfp *models.RFP) (subject, body string, err error) {
	var buf bytes.Buffer
	data := struct {
		VendorName string
		RFP        *models.RFP
	}{vendorName, rfp}
	if err := rfpEmail.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render rfp email: %w", err)
	}
	return "RFP: " + rfp.Title, buf.String(), nil
}
