package domain

import (
	"net/url"
	"unicode/utf8"
)

// Profile holds the optional, user-editable details shown on the profile page.
type Profile struct {
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	AvatarURL string `json:"avatar_url"`
}

var profileLimits = []struct {
	field string
	max   int
	value func(Profile) string
}{
	{"full_name", 150, func(p Profile) string { return p.FullName }},
	{"bio", 2000, func(p Profile) string { return p.Bio }},
	{"location", 100, func(p Profile) string { return p.Location }},
	{"avatar_url", 500, func(p Profile) string { return p.AvatarURL }},
}

// Validate enforces field lengths and that AvatarURL, when set, is an
// absolute http or https URL.
func (p Profile) Validate() error {
	for _, l := range profileLimits {
		if utf8.RuneCountInString(l.value(p)) > l.max {
			return NewValidationError(l.field, ErrFieldTooLong)
		}
	}
	if p.AvatarURL != "" {
		u, err := url.Parse(p.AvatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("avatar_url", ErrInvalidAvatarURL)
		}
	}
	return nil
}
