// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// WelcomeEmailData holds data for the post-registration welcome email.
type WelcomeEmailData struct {
	SiteName string
	Name     string
	LoginURL string
}

// BuildWelcomeEmail creates a welcome email with both HTML and text bodies.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Welcome to %s", data.SiteName),
		TextBody: buildWelcomeText(data),
		HTMLBody: buildWelcomeHTML(data),
	}
}

func buildWelcomeText(data WelcomeEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.Name))
	buf.WriteString(fmt.Sprintf("Your %s account is ready.\n\n", data.SiteName))
	buf.WriteString("Sign in here:\n")
	buf.WriteString(data.LoginURL + "\n\n")
	buf.WriteString("Join an organization with its code, scan a session QR, and your attendance is recorded.\n")
	return buf.String()
}

func buildWelcomeHTML(data WelcomeEmailData) string {
	tmpl := template.Must(template.New("welcome").Parse(welcomeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// RewardClaimEmailData holds data for the reward claim receipt email.
type RewardClaimEmailData struct {
	SiteName   string
	Name       string
	RewardName string
	Points     int64
	Balance    int64
}

// BuildRewardClaimEmail creates a claim receipt with both HTML and text bodies.
func BuildRewardClaimEmail(data RewardClaimEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("You claimed %s", data.RewardName),
		TextBody: buildRewardClaimText(data),
		HTMLBody: buildRewardClaimHTML(data),
	}
}

func buildRewardClaimText(data RewardClaimEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.Name))
	buf.WriteString(fmt.Sprintf("You claimed %s for %d points.\n\n", data.RewardName, data.Points))
	buf.WriteString(fmt.Sprintf("Remaining balance: %d points.\n\n", data.Balance))
	buf.WriteString("If you did not make this claim, contact your organization admin.\n")
	return buf.String()
}

func buildRewardClaimHTML(data RewardClaimEmailData) string {
	tmpl := template.Must(template.New("rewardclaim").Parse(rewardClaimHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const welcomeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.Name}}, your account is ready.
              </p>

              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280;">
                Join an organization with its code, scan a session QR, and your attendance is recorded.
              </p>

              <!-- Button -->
              <div style="text-align: center; margin-bottom: 24px;">
                <a href="{{.LoginURL}}" style="display: inline-block; background-color: #4f46e5; color: #ffffff; font-size: 16px; font-weight: 600; text-decoration: none; padding: 12px 32px; border-radius: 6px;">Sign in</a>
              </div>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 0 32px 32px; text-align: center;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af;">
                If you did not create this account, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const rewardClaimHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Reward Claimed</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.Name}}, you claimed:
              </p>

              <!-- Reward Box -->
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 20px; font-weight: 700; color: #1f2937;">{{.RewardName}}</span>
                <p style="margin: 8px 0 0; font-size: 14px; color: #6b7280;">{{.Points}} points</p>
              </div>

              <p style="margin: 0; font-size: 14px; color: #6b7280; text-align: center;">
                Remaining balance: {{.Balance}} points
              </p>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 0 32px 32px; text-align: center;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af;">
                If you did not make this claim, contact your organization admin.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
