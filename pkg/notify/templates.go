package notify

const emailTemplates = `
{{define "verification"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome {{.Name}}!</h2>
  <p style="color: #666; line-height: 1.5;">
    Please verify your email address by clicking the link below:
  </p>
  <div style="margin: 20px 0;">
    <a href="{{.Link}}" style="background-color: #0070f3; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">
      Verify Email
    </a>
  </div>
  <p style="color: #666; line-height: 1.5;">
    This link will expire in {{.ExpiresIn}}.
  </p>
  <p style="color: #999; font-size: 0.9em;">
    If you didn't create an account, you can safely ignore this email.
  </p>
</div>
{{end}}

{{define "welcome"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome {{.Name}}!</h2>
  <p style="color: #666; line-height: 1.5;">
    Thank you for verifying your email address. Your account is now active.
  </p>
  <p style="color: #666; line-height: 1.5;">
    You can now sign in to your account:
  </p>
  <div style="margin: 20px 0;">
    <a href="{{.Link}}" style="background-color: #0070f3; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">
      Sign In
    </a>
  </div>
</div>
{{end}}
`

type verificationData struct {
	Name      string
	Link      string
	ExpiresIn string
}

type welcomeData struct {
	Name string
	Link string
}
