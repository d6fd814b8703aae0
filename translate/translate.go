// Package translate localizes the user-visible messages of synvm.
// Messages are keyed by their en-US format string.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	tag     language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("synvm: locale: %v", err)
	}

	SetLanguage(locales...)
}

// SetLanguage selects the best supported language for the given BCP 47
// locales, in order of preference. With no usable locale, en-US is used.
func SetLanguage(locales ...string) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	tag = message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)
}

// Language returns the language messages are formatted in.
func Language() language.Tag {
	return tag
}

// From formats an en-US Sprintf() key for the current language.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
