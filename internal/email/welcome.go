package email

import "fmt"

// WelcomeMailer arma y envía el correo de bienvenida tras el registro.
type WelcomeMailer struct {
	Sender  Sender
	BaseURL string
}

// SendWelcome envía el correo de bienvenida. El envío es best-effort: el
// registro no falla si el correo no sale.
func (w *WelcomeMailer) SendWelcome(to, name string) error {
	subject := "Welcome to Quicklendar"
	text := fmt.Sprintf(
		"Hi %s,\n\nYour Quicklendar account is ready. Browse upcoming contests at %s.\n",
		name, w.BaseURL,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your Quicklendar account is ready. Browse upcoming contests at <a href="%s">%s</a>.</p>`,
		name, w.BaseURL, w.BaseURL,
	)
	return w.Sender.Send(to, subject, html, text)
}
