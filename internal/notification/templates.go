package notification

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var messageIDs = map[Kind]struct{ subject, body string }{
	KindSubmitted: {"EmailSubmittedSubject", "EmailSubmittedBody"},
	KindApproved:  {"EmailApprovedSubject", "EmailApprovedBody"},
	KindRejected:  {"EmailRejectedSubject", "EmailRejectedBody"},
	KindCancelled: {"EmailCancelledSubject", "EmailCancelledBody"},
	KindAccrued:   {"EmailAccruedSubject", "EmailAccruedBody"},
}

// Renderer localizes email subjects and bodies. Unknown locales fall back
// to the default locale, then to English.
type Renderer struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

func NewRenderer(defaultLocale string) (*Renderer, error) {
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
	}
	return &Renderer{bundle: bundle, defaultLocale: defaultLocale}, nil
}

func (r *Renderer) Render(locale string, kind Kind, p events.LeaveLifecycleEvent) (subject, body string, err error) {
	ids, ok := messageIDs[kind]
	if !ok {
		return "", "", fmt.Errorf("no email template for kind %s", kind)
	}

	loc := i18n.NewLocalizer(r.bundle, locale, r.defaultLocale)
	data := templateData(p)

	subject, err = loc.Localize(&i18n.LocalizeConfig{MessageID: ids.subject, TemplateData: data})
	if err != nil {
		return "", "", err
	}
	body, err = loc.Localize(&i18n.LocalizeConfig{MessageID: ids.body, TemplateData: data})
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func templateData(p events.LeaveLifecycleEvent) map[string]any {
	discarded := p.Discarded
	if discarded == "0.00" {
		discarded = ""
	}
	return map[string]any{
		"EmployeeName": p.EmployeeName,
		"ManagerName":  p.ManagerName,
		"LeaveType":    cases.Title(language.English).String(p.LeaveType),
		"StartDate":    p.StartDate,
		"EndDate":      p.EndDate,
		"TotalDays":    p.TotalDays,
		"Reason":       p.Reason,
		"Comment":      p.Comment,
		"MonthKey":     p.MonthKey,
		"Credited":     p.Credited,
		"Discarded":    discarded,
		"Available":    p.Available,
	}
}
