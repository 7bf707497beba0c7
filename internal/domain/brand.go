package domain

// BrandSettings is the brand profile a session may reference.
type BrandSettings struct {
	ID           string
	UserID       string
	Name         string
	Voice        string
	LogoKey      string
	LogoPosition LogoPosition
	Avoid        []string
	ResourceKeys []string
}
