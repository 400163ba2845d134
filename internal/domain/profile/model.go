package profile

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// SettingsKey is the settings row holding the practitioner profile.
const SettingsKey = "profile"

// DefaultRegion is used to parse numbers typed without a country code.
const DefaultRegion = "BR"

// Profile holds the practitioner data printed on documents plus the UI
// preferences that drive the document lifecycle.
type Profile struct {
	Name           string `json:"name"`
	CRO            string `json:"cro"`
	Title          string `json:"title"`
	Spec           string `json:"spec"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	WhatsApp       string `json:"whatsapp"`
	WhatsAppMsg    string `json:"whatsappMsg"`
	ShowPhoneInPDF bool   `json:"showPhoneInPdf"`
	EnableTrash    bool   `json:"enableTrash"`
}

// Snapshot is the frozen subset of the profile copied onto every document.
type Snapshot struct {
	Name           string `json:"name"`
	CRO            string `json:"cro"`
	Title          string `json:"title"`
	Spec           string `json:"spec"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	ShowPhoneInPDF bool   `json:"showPhoneInPdf"`
	EnableTrash    bool   `json:"enableTrash"`
}

// Defaults returns the profile used before the practitioner fills in theirs.
func Defaults() Profile {
	return Profile{
		Title:          "Cirurgião-Dentista",
		WhatsAppMsg:    "Olá! Gostaria de mais informações.",
		ShowPhoneInPDF: true,
		EnableTrash:    true,
	}
}

func (p Profile) Snapshot() Snapshot {
	return Snapshot{
		Name:           p.Name,
		CRO:            p.CRO,
		Title:          p.Title,
		Spec:           p.Spec,
		Address:        p.Address,
		Phone:          p.Phone,
		ShowPhoneInPDF: p.ShowPhoneInPDF,
		EnableTrash:    p.EnableTrash,
	}
}

func (p *Profile) trim() {
	p.Name = strings.TrimSpace(p.Name)
	p.CRO = strings.TrimSpace(p.CRO)
	p.Title = strings.TrimSpace(p.Title)
	p.Spec = strings.TrimSpace(p.Spec)
	p.Address = strings.TrimSpace(p.Address)
	p.Phone = strings.TrimSpace(p.Phone)
	p.WhatsApp = strings.TrimSpace(p.WhatsApp)
	p.WhatsAppMsg = strings.TrimSpace(p.WhatsAppMsg)
}

// WhatsAppDigits returns the international number without "+" or
// separators, or "" when no number is configured.
func (p Profile) WhatsAppDigits() string {
	if p.WhatsApp == "" {
		return ""
	}
	if num, err := phonenumbers.Parse(p.WhatsApp, DefaultRegion); err == nil && phonenumbers.IsValidNumber(num) {
		return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
	}
	return digitsOnly(p.WhatsApp)
}

// WhatsAppLink builds the click-to-chat link, "" when no number is configured.
func (p Profile) WhatsAppLink() string {
	num := p.WhatsAppDigits()
	if num == "" {
		return ""
	}
	link := "https://wa.me/" + num
	if p.WhatsAppMsg != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(p.WhatsAppMsg), "+", "%20")
	}
	return link
}

// Greeting is the welcome line shown by the UI.
func (p Profile) Greeting() string {
	first, _, _ := strings.Cut(strings.TrimSpace(p.Name), " ")
	if first == "" {
		return "Bem-vindo"
	}
	return "Bem-vindo, Dr. " + first
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validWhatsApp(s string) bool {
	num, err := phonenumbers.Parse(s, DefaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}
