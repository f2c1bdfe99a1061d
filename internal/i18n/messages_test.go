package i18n

import (
	"strings"
	"testing"
)

func TestTSwedishAndFallback(t *testing.T) {
	if got := T(LocaleSwedish, "order_received"); !strings.Contains(got, "Beställning") {
		t.Fatalf("unexpected Swedish message: %q", got)
	}
	if got := T("de", "order_received"); !strings.Contains(got, "Order received") {
		t.Fatalf("unknown locale should fall back to English, got %q", got)
	}
	if got := T(LocaleEnglish, "no_such_key"); got != "no_such_key" {
		t.Fatalf("missing key should echo the key, got %q", got)
	}
}

func TestFormatSEKGroupsDigits(t *testing.T) {
	sv := FormatSEK(LocaleSwedish, 3495)
	if !strings.HasSuffix(sv, " kr") {
		t.Fatalf("missing currency suffix: %q", sv)
	}
	digits := strings.TrimSuffix(sv, " kr")
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, digits)
	if cleaned != "3495" {
		t.Fatalf("digits lost in formatting: %q", sv)
	}
	if len(digits) == len(cleaned) {
		t.Fatalf("expected a grouping separator in %q", sv)
	}

	en := FormatSEK(LocaleEnglish, 3495)
	if !strings.Contains(en, "3,495") {
		t.Fatalf("unexpected English grouping: %q", en)
	}
}
