package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/pkg/queue"
)

// SendFunc 与 smtp.SendMail 签名一致，测试中可替换
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg   *config.EmailConfig
	store config.StoreSettings
	send  SendFunc
}

func NewService(cfg *config.EmailConfig, store config.StoreSettings) *Service {
	return &Service{cfg: cfg, store: store, send: smtp.SendMail}
}

// WithSender 替换底层发送函数
func (s *Service) WithSender(fn SendFunc) *Service {
	s.send = fn
	return s
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">{{.Store}} 订单收据</h2>
        <p>{{.Job.CustomerName}}，您好：</p>
        <p>感谢购买，订单号 <strong>{{.Job.OrderID}}</strong> 已完成。</p>
        <table style="width: 100%; border-collapse: collapse;">
            {{range .Job.Lines}}<tr><td>{{.Name}} × {{.Quantity}}</td><td style="text-align: right;">{{.Price}}</td></tr>
            {{end}}
        </table>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p>小计：{{.Job.Subtotal}}</p>
        {{if .Job.CouponCode}}<p>优惠（{{.Job.CouponCode}}）：-{{.Job.Discount}}</p>{{end}}
        <p><strong>合计：{{.Job.Total}}</strong></p>
        <p style="color: #6b7280; font-size: 12px;">如有疑问请联系 {{.Support}}。此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`))

// SendReceipt 发送订单收据
func (s *Service) SendReceipt(job *queue.ReceiptJob) error {
	if job.CustomerEmail == "" {
		return fmt.Errorf("receipt %s has no recipient", job.OrderID)
	}

	var body bytes.Buffer
	err := receiptTmpl.Execute(&body, map[string]interface{}{
		"Store":   s.store.Name,
		"Support": s.store.SupportEmail,
		"Job":     job,
	})
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	subject := fmt.Sprintf("订单收据 %s - %s", job.OrderID, s.store.Name)
	return s.sendHTML(job.CustomerEmail, subject, body.String())
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
