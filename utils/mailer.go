package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"teamhub/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	Year      int
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"team_invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .team-name { font-size: 20px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You have been invited to a team</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>{{.InviterName}} invited you to join:</p>

        <div class="team-name">{{.TeamName}}</div>

        <p>Open the app to see the team's channels and start collaborating.</p>
    </div>

    <div class="footer">
        <p>If you were not expecting this invite, you can safely ignore this email.</p>
        <p>&copy; {{.Year}} TeamHub. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// SendEmail renders the named template and delivers it over SMTP.
func SendEmail(data EmailData) error {
	tmplBody, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("unknown email template: %s", data.Template)
	}

	tmpl, err := template.New(data.Template).Parse(tmplBody)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(data.FromEmail, data.FromName))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)
	return d.DialAndSend(m)
}

// SendTeamInviteEmail sends the "you have been invited" notification.
// Callers treat failure as non-fatal; the socket notification is the
// primary channel.
func SendTeamInviteEmail(toEmail, inviterName, teamName string) error {
	year := time.Now().Year()
	return SendEmail(EmailData{
		Subject:   fmt.Sprintf("%s invited you to %s", inviterName, teamName),
		To:        []string{toEmail},
		Template:  "team_invite",
		FromName:  "TeamHub",
		FromEmail: config.AppConfig.FromEmail,
		Data: map[string]interface{}{
			"Subject":     fmt.Sprintf("%s invited you to %s", inviterName, teamName),
			"InviterName": inviterName,
			"TeamName":    teamName,
			"Year":        year,
		},
	})
}
