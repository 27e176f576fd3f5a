package handlers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var verificationSuccessPage = template.Must(template.New("verification-success").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Email Verified</title></head>
<body style="font-family: Arial, sans-serif; max-width: 480px; margin: 80px auto; text-align: center;">
  <h2>Email Verified Successfully!</h2>
  <p>Your email has been verified and your account is now active.</p>
  <p><a href="{{.SignInURL}}">Sign In</a></p>
</body>
</html>
`))

// PageHandler serves the static pages the verification flow lands on.
type PageHandler struct {
	signInURL string
}

func NewPageHandler(signInURL string) *PageHandler { return &PageHandler{signInURL: signInURL} }

func (h *PageHandler) VerificationSuccess(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return verificationSuccessPage.Execute(c.Response().BodyWriter(), struct{ SignInURL string }{h.signInURL})
}
