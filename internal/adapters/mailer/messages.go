// Package mailer sends the lead welcome and sales alert emails.
package mailer

import (
	"fmt"

	"satn_chatbot/internal/domain"
)

const senderName = "S A Thomson Nerys & Co."

type message struct {
	Subject string
	Body    string
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func welcomeMessage(l domain.Lead) message {
	phone := "not provided"
	if l.Phone != nil && *l.Phone != "" {
		phone = *l.Phone
	}
	return message{
		Subject: "Thank you for contacting S A Thomson Nerys & Co.",
		Body: fmt.Sprintf(`Hi %s,

Thank you for reaching out to S A Thomson Nerys & Co. via our website assistant.

One of our advisers will review your enquiry and contact you shortly.

Details we received:
- Email: %s
- Phone: %s
- Source: %s

Kind regards,
S A Thomson Nerys & Co.
`, orDefault(l.DisplayName(), "there"), l.Email, phone, l.Source),
	}
}

func salesMessage(c domain.Contact) message {
	return message{
		Subject: "New SA Thomson Nerys website chat lead",
		Body: fmt.Sprintf(`New website chat lead captured.

Name:  %s
Email: %s
Phone: %s
Source: %s

You can now follow up with this contact.
`, orDefault(c.Name, "N/A"), c.Email, orDefault(c.Phone, "N/A"), orDefault(c.Source, "Neryx AI Assistant")),
	}
}
