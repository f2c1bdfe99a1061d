package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported locales for user-facing messages. The storefront is Swedish
// first; everything falls back to English.
const (
	LocaleSwedish = "sv"
	LocaleEnglish = "en"
)

var printers = map[string]*message.Printer{
	LocaleSwedish: message.NewPrinter(language.Swedish),
	LocaleEnglish: message.NewPrinter(language.English),
}

var catalog = map[string]map[string]string{
	"order_received": {
		LocaleSwedish: "Beställning mottagen! Vi kontaktar dig inom kort.",
		LocaleEnglish: "Order received! We will contact you shortly.",
	},
	"order_failed": {
		LocaleSwedish: "Kunde inte spara beställningen. Försök igen.",
		LocaleEnglish: "Could not save the order. Please try again.",
	},
	"newsletter_subscribed": {
		LocaleSwedish: "Tack för din prenumeration!",
		LocaleEnglish: "Thank you for subscribing!",
	},
	"newsletter_failed": {
		LocaleSwedish: "Kunde inte registrera prenumeration",
		LocaleEnglish: "Could not register the subscription",
	},
	"invalid_email": {
		LocaleSwedish: "Ogiltig e-postadress",
		LocaleEnglish: "Invalid email address",
	},
	"price_failed": {
		LocaleSwedish: "Kunde inte uppskatta pris. Försök igen.",
		LocaleEnglish: "Could not estimate the price. Please try again.",
	},
	"generation_failed": {
		LocaleSwedish: "Kunde inte generera bilden. Försök igen senare.",
		LocaleEnglish: "Could not generate the image. Please try again later.",
	},
	"service_unconfigured": {
		LocaleSwedish: "Tjänsten är inte konfigurerad",
		LocaleEnglish: "The service is not configured",
	},
}

// T resolves a catalog key for a locale, falling back to English and then
// to the key itself so a missing translation never renders blank.
func T(locale, key string) string {
	if entry, ok := catalog[key]; ok {
		if msg, ok := entry[normalize(locale)]; ok {
			return msg
		}
		if msg, ok := entry[LocaleEnglish]; ok {
			return msg
		}
	}
	return key
}

// FormatSEK renders a whole-SEK price with locale-appropriate digit
// grouping, e.g. "3 495 kr" in Swedish.
func FormatSEK(locale string, price int) string {
	printer, ok := printers[normalize(locale)]
	if !ok {
		printer = printers[LocaleEnglish]
	}
	return printer.Sprintf("%d kr", price)
}

func normalize(locale string) string {
	if locale == LocaleSwedish {
		return LocaleSwedish
	}
	return LocaleEnglish
}
