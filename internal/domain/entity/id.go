package entity

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/gana36/YELPB/internal/domain/business"
)

// idNamespace scopes derived business ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gana36/YELPB/business"))

// DeriveID returns the source id, else the alias, else a UUIDv5 over the
// case-folded name and coordinates. The same input always yields the same id.
func DeriveID(c Candidate, name string, coords *business.Coordinates) string {
	if id, ok := c.Identifier("id"); ok {
		return id
	}
	if alias, ok := c.String("alias"); ok {
		return alias
	}

	var sb strings.Builder
	sb.WriteString(cases.Fold().String(strings.TrimSpace(name))) // Caser is stateful, not shared
	if coords != nil {
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatFloat(coords.Latitude, 'f', 6, 64))
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatFloat(coords.Longitude, 'f', 6, 64))
	}
	return uuid.NewSHA1(idNamespace, []byte(sb.String())).String()
}
