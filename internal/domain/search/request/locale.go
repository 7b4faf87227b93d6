package request

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/gana36/YELPB/internal/domain"
)

// DefaultLocale is used when the caller sends none.
const DefaultLocale = "en_US"

// NormalizeLocale converts a BCP 47 tag or underscore locale ("en-us",
// "fr_CA", "de") into the language_COUNTRY form the sources expect.
// A missing region is inferred from the language.
func NormalizeLocale(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", domain.InvalidArgument("locale %q", s)
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	if base.String() == "und" || region.String() == "ZZ" {
		return "", domain.InvalidArgument("locale %q", s)
	}
	return base.String() + "_" + region.String(), nil
}
