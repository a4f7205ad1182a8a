package competition

import (
	"strings"

	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
)

// Competition is a league or cup as published by the data provider.
type Competition struct {
	ID         string
	ExternalID string
	Name       string
	Code       string
	Type       string
	Emblem     string
	Plan       string
}

// Addressable reports whether per-competition endpoints can be called for c.
func (c Competition) Addressable() bool {
	return strings.TrimSpace(c.Code) != ""
}

func (c Competition) Fields() naturalkey.Fields {
	return naturalkey.Fields{
		"name":   c.Name,
		"code":   nullableString(c.Code),
		"type":   c.Type,
		"emblem": c.Emblem,
		"plan":   c.Plan,
	}
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
