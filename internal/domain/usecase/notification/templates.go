package notification

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

var funcs = template.FuncMap{
	"yen": entity.FormatYen,
	"paymentLabel": func(t entity.PaymentMethodType) string {
		switch t {
		case entity.PaymentMethodCard:
			return "クレジットカード"
		case entity.PaymentMethodPayPay:
			return "PayPay"
		case entity.PaymentMethodLinePay:
			return "LINE Pay"
		case entity.PaymentMethodKonbini:
			return "コンビニ払い"
		default:
			return string(t)
		}
	},
	"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

const footer = `
━━━━━━━━━━━━━━━━━━━━━━━━
{{.Shop}}
{{.BaseURL}}
お問い合わせ: {{.BaseURL}}/contact.html
━━━━━━━━━━━━━━━━━━━━━━━━`

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Funcs(funcs).Parse(
	`{{with .Data}}{{.CustomerName}} 様

ご注文ありがとうございます。
ご注文を受け付けいたしました。

【注文番号】
{{.OrderID}}

【ご注文内容】
{{range .Items}}- {{.Name}} × {{.Quantity}}個 {{yen .Subtotal}}
{{end}}
【金額】
商品小計: {{yen .Amounts.Subtotal}}
送料: {{yen .Amounts.Shipping}}
消費税: {{yen .Amounts.Tax}}
-------------------------------
合計: {{yen .Amounts.Total}}

【お支払い方法】
{{paymentLabel .PaymentMethod}}{{if .AwaitingPayment}}（お支払い確認後に発送いたします）{{end}}
{{if .DeliveryDate}}
【配送予定日】
{{.DeliveryDate}} {{.DeliveryTimeSlot}}
{{end}}{{if .ShippingAddress}}
【お届け先】
{{.ShippingAddress}}
{{end}}
【キャンセルについて】
発送前までキャンセル可能です。
{{end}}` + footer))

var paymentFailureTemplate = template.Must(template.New("payment_failure").Funcs(funcs).Parse(
	`{{with .Data}}{{.CustomerName}} 様

お支払いの処理に失敗いたしました。

【注文番号】
{{.OrderID}}

【お支払い方法】
{{paymentLabel .PaymentMethod}}

【金額】
{{yen .Amount}}

【失敗理由】
{{.FailureReason}}

【対応方法】
以下のURLより、お支払い情報を再入力してください。
{{.RetryURL}}
{{end}}` + footer))

var shippingTemplate = template.Must(template.New("shipping_notification").Funcs(funcs).Parse(
	`{{with .Data}}{{.CustomerName}} 様

ご注文商品を発送いたしました。

【注文番号】
{{.OrderID}}

【配送業者】
{{.Carrier}}

【追跡番号】
{{.TrackingNumber}}

【発送日時】
{{datetime .ShippedAt}}
{{end}}` + footer))

var rollbackAlertTemplate = template.Must(template.New("rollback_failure_alert").Funcs(funcs).Parse(
	`{{with .Data}}Compensation failed and needs manual intervention.

Order:       {{.OrderID}}
Transaction: {{.TransactionID}}
Occurred at: {{datetime .OccurredAt}}
Reason:      {{.Reason}}

Completed steps:
{{range .Steps}}- {{.}}
{{end}}
Failures:
{{range .Failures}}- {{.}}
{{end}}{{end}}`))

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: render %s: %v", errs.ErrInternalServer, tmpl.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}
