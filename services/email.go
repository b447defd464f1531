package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/kr/text"
)

type EmailService struct {
	apiKey      string
	fromEmail   string
	frontendURL string
}

func NewEmailService(apiKey, fromEmail, frontendURL string) *EmailService {
	return &EmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
	}
}

// SendVerification envoie le lien de vérification d'adresse email.
func (s *EmailService) SendVerification(to, userName, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #10b981 0%%, #059669 100%%); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; }
        .button { display: inline-block; background: #10b981; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📋 Micro Gestion</h1>
        </div>
        <div class="content">
            <p>Bonjour %s,</p>
            <p>Veuillez vérifier votre adresse email pour activer votre compte Micro Gestion.</p>
            <a href="%s" class="button">Vérifier mon email</a>
            <p style="color: #6b7280; margin-top: 30px;">Si vous n'êtes pas à l'origine de cette inscription, ignorez simplement cet email.</p>
        </div>
    </div>
</body>
</html>
	`, userName, verifyURL)

	textBody := fmt.Sprintf(
		"Bonjour %s,\n\nVeuillez vérifier votre adresse email pour activer votre compte Micro Gestion : %s\n\nSi vous n'êtes pas à l'origine de cette inscription, ignorez simplement cet email.",
		userName, verifyURL)

	return s.send(to, "Vérifiez votre adresse email", htmlBody, textBody)
}

// SendInvoiceIssued prévient le client qu'une facture a été émise.
func (s *EmailService) SendInvoiceIssued(to, clientName, invoiceNumber string, totalTtc float64) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; }
        .amount { font-size: 24px; font-weight: bold; color: #1f2937; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📋 Facture %s</h1>
        </div>
        <div class="content">
            <p>Bonjour %s,</p>
            <p>Votre facture <strong>%s</strong> est disponible.</p>
            <p class="amount">Montant TTC : %.2f €</p>
        </div>
    </div>
</body>
</html>
	`, invoiceNumber, clientName, invoiceNumber, totalTtc)

	textBody := fmt.Sprintf(
		"Bonjour %s,\n\nVotre facture %s est disponible. Montant TTC : %.2f €.",
		clientName, invoiceNumber, totalTtc)

	return s.send(to, fmt.Sprintf("Votre facture %s", invoiceNumber), htmlBody, textBody)
}

func (s *EmailService) send(to, subject, htmlBody, textBody string) error {
	if s.apiKey == "" {
		log.Println("⚠️ RESEND_API_KEY not set, email not sent")
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("Micro Gestion <%s>", s.fromEmail),
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
		"text":    text.Wrap(textBody, 72),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}

	log.Printf("✅ Email sent to %s", to)
	return nil
}
