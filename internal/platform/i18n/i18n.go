package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	defaultLocale = "en"
)

// Init loads the embedded locale files and sets the default locale.
func Init(locale string) {
	mu.Lock()
	defer mu.Unlock()
	if locale != "" {
		defaultLocale = locale
	}

	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error("i18n locales dir unreadable", "err", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			slog.Error("i18n locale file unreadable", "file", entry.Name(), "err", err)
			continue
		}
		bundle.MustParseMessageFileBytes(data, entry.Name())
	}
}

// T renders the message with the given id in the requested locale, falling
// back to the default locale and finally to the id itself.
func T(locale, messageID string, data map[string]any) string {
	mu.RLock()
	b, def := bundle, defaultLocale
	mu.RUnlock()
	if b == nil {
		return messageID
	}
	if locale == "" {
		locale = def
	}
	localizer := i18n.NewLocalizer(b, locale, def)
	out, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil {
		return messageID
	}
	return out
}
