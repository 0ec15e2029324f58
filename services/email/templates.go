package email

import (
	"bytes"
	"fmt"
	"html/template"

	"vorve-checkout-api/models"
)

// Templates go through html/template so customer-supplied text (names,
// project requests, contact messages) is escaped before it reaches a mailbox.

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Brand}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f8fafc; font-family: Arial, sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color: #f8fafc;">
        <tr>
            <td align="center" style="padding: 40px 20px;">
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="max-width: 600px; background-color: #ffffff; border-radius: 12px; box-shadow: 0 4px 6px -1px rgba(0, 0, 0, 0.1);">
                    <tr>
                        <td style="padding: 32px;">
                            {{template "content" .}}
                        </td>
                    </tr>
                </table>
                <p style="color: #9ca3af; font-size: 12px; text-align: center; margin-top: 16px;">
                    &copy; {{.Brand}}. All rights reserved.
                </p>
            </td>
        </tr>
    </table>
</body>
</html>{{end}}`

const confirmationContent = `{{define "content"}}
<h1 style="font-size: 24px; font-weight: 700; color: #1e293b; text-align: center; margin: 0 0 24px 0;">
    Thank You For Your Order, {{.CustomerName}}!
</h1>
<p style="font-size: 16px; color: #374151; line-height: 1.6; margin: 0 0 24px 0;">
    We've successfully received your project request. We're excited to get started!
</p>
<p style="font-size: 16px; color: #374151; line-height: 1.6; margin: 0 0 24px 0;">
    Your new website and brand assets will be delivered within <strong>4 business days</strong>.
    If we need any clarification on your project details or requests, we will reach out to you shortly.
</p>
{{if .TransactionID}}<p style="font-size: 14px; color: #6b7280; margin: 0 0 24px 0;">Order reference: {{.TransactionID}}</p>{{end}}
<p style="font-size: 16px; color: #374151; line-height: 1.6; margin: 0;">
    In the meantime, if you have any urgent questions, feel free to reply to this email or contact us through the website.
</p>
{{end}}`

const internalSaleContent = `{{define "content"}}
<h1 style="color: #4F46E5; margin: 0 0 20px 0;">New Payment Received!</h1>
<div style="background: #F9FAFB; border-radius: 8px; padding: 20px; margin: 20px 0;">
    <h2 style="margin: 0 0 12px 0;">Transaction Details</h2>
    <p><strong>Amount:</strong> {{.Symbol}}{{.Amount}} {{.Currency}}</p>
    <p><strong>Transaction ID:</strong> {{.TransactionID}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
</div>
<div style="background: #F9FAFB; border-radius: 8px; padding: 20px; margin: 20px 0;">
    <h2 style="margin: 0 0 12px 0;">Customer</h2>
    <p><strong>Name:</strong> {{.CustomerName}}</p>
    <p><strong>Email:</strong> {{if .CustomerEmail}}{{.CustomerEmail}}{{else}}not provided{{end}}</p>
    {{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
    {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
    {{if .Requests}}<p><strong>Requests:</strong></p><p style="white-space: pre-wrap;">{{.Requests}}</p>{{end}}
</div>
<div style="background: #EFF6FF; border-radius: 8px; padding: 20px; margin: 20px 0;">
    <h3 style="margin: 0 0 12px 0;">Next Steps:</h3>
    <ol>
        <li>Reach out to the customer within 24-48 hours</li>
        <li>Schedule the discovery call</li>
        <li>Begin the project workflow</li>
    </ol>
</div>
<p style="color: #6B7280; font-size: 14px; margin-top: 30px;">This is an automated notification from your payment integration.</p>
{{end}}`

const paymentFailedContent = `{{define "content"}}
<div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #DC2626; margin: 0; font-size: 24px;">Payment Issue Detected</h1>
    <p style="color: #6B7280; margin: 10px 0 0 0;">Don't worry - we can help resolve this quickly</p>
</div>
<div style="border-left: 4px solid #DC2626; padding: 0 0 0 20px; margin: 20px 0;">
    <h2 style="color: #111827; margin: 0 0 15px 0;">What Happened?</h2>
    <p style="color: #6B7280; line-height: 1.6;">
        Hi {{.CustomerName}}, we encountered an issue processing your payment for the Complete Solution Package.
        This could be due to insufficient funds, an expired card, or a temporary banking issue.
    </p>
</div>
<h2 style="color: #111827; margin: 0 0 15px 0;">How to Resolve:</h2>
<ol style="color: #6B7280; line-height: 1.8; padding-left: 20px;">
    <li>Check your payment method details</li>
    <li>Ensure sufficient funds are available</li>
    <li>Contact your bank if needed</li>
    <li>Try the payment again</li>
</ol>
<div style="text-align: center; margin: 30px 0;">
    <a href="{{.RetryURL}}" style="background: #4F46E5; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; display: inline-block;">
        Try Payment Again
    </a>
</div>
<p style="color: #6B7280; font-size: 14px; text-align: center;">Need help? Reply to this email and we'll sort it out.</p>
{{end}}`

const contactContent = `{{define "content"}}
<h1 style="color: #1e293b; font-size: 22px; margin: 0 0 24px 0;">New Contact Form Submission</h1>
<p><strong>Name:</strong> {{.CustomerName}}</p>
<p><strong>Email:</strong> {{.CustomerEmail}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap; background: #F9FAFB; border-radius: 8px; padding: 16px;">{{.Message}}</p>
{{end}}`

var templates = map[models.NotificationKind]*template.Template{
	models.NotificationConfirmation:  mustParse("confirmation", confirmationContent),
	models.NotificationInternalSale:  mustParse("internal_sale", internalSaleContent),
	models.NotificationPaymentFailed: mustParse("payment_failed", paymentFailedContent),
	models.NotificationContact:       mustParse("contact", contactContent),
}

func mustParse(name, content string) *template.Template {
	t := template.Must(template.New(name).Parse(layoutTemplate))
	return template.Must(t.Parse(content))
}

type renderData struct {
	models.TemplateData
	Brand  string
	Symbol string
}

// Render produces the subject and HTML body for a notification kind.
func Render(kind models.NotificationKind, brand, symbol string, data models.TemplateData) (string, string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", renderData{TemplateData: data, Brand: brand, Symbol: symbol}); err != nil {
		return "", "", fmt.Errorf("failed to render %s template: %w", kind, err)
	}
	return subjectFor(kind, brand, symbol, data), buf.String(), nil
}

func subjectFor(kind models.NotificationKind, brand, symbol string, data models.TemplateData) string {
	switch kind {
	case models.NotificationConfirmation:
		return fmt.Sprintf("Thank you for your order - %s", brand)
	case models.NotificationInternalSale:
		return fmt.Sprintf("New Payment Received - %s%s", symbol, data.Amount)
	case models.NotificationPaymentFailed:
		return "Payment Issue - Let's Get This Resolved"
	case models.NotificationContact:
		return fmt.Sprintf("New Contact Form Submission from %s", data.CustomerName)
	default:
		return brand
	}
}
