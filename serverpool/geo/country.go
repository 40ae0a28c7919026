package geo

import (
	"strings"

	"github.com/biter777/countries"
)

// UnknownCode is used when a display name cannot be resolved.
const UnknownCode = "--"

// Display names used on the server list page that the countries database does
// not resolve under that exact spelling.
var aliases = map[string]string{
	"russia":      "RU",
	"south korea": "KR",
	"usa":         "US",
}

// Code resolves a country display name to its ISO-3166 alpha-2 code,
// returning UnknownCode when the name cannot be matched.
func Code(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownCode
	}
	if code, ok := aliases[strings.ToLower(name)]; ok {
		return code
	}
	country := countries.ByName(name)
	if country == countries.Unknown {
		return UnknownCode
	}
	return country.Alpha2()
}
