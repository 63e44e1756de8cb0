// Package records flattens categories with differing schemas into uniform
// lead records for export.
package records

import (
	"strings"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/identity"
)

// Lead is one row in a schema shared by every category.
type Lead struct {
	Category         string            `json:"category" yaml:"category"`
	Origin           int               `json:"origin" yaml:"origin"`
	CompanyName      string            `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	CEO              string            `json:"ceo,omitempty" yaml:"ceo,omitempty"`
	CEOEmail         string            `json:"ceo_email,omitempty" yaml:"ceo_email,omitempty"`
	LinkedIn         string            `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	CEOLinkedIn      string            `json:"ceo_linkedin,omitempty" yaml:"ceo_linkedin,omitempty"`
	COOCFOLinkedIn   string            `json:"coo_cfo_linkedin,omitempty" yaml:"coo_cfo_linkedin,omitempty"`
	LinkedInRequest  string            `json:"linkedin_request,omitempty" yaml:"linkedin_request,omitempty"`
	Website          string            `json:"website,omitempty" yaml:"website,omitempty"`
	Industry         string            `json:"industry,omitempty" yaml:"industry,omitempty"`
	LinkedInAccepted bool              `json:"linkedin_accepted" yaml:"linkedin_accepted"`
	Accepted         bool              `json:"accepted" yaml:"accepted"`
	Raw              map[string]string `json:"raw_data" yaml:"raw_data"`
}

// FromWorkbook converts every category in workbook order.
func FromWorkbook(wb *categories.Workbook) []Lead {
	var out []Lead
	for _, c := range wb.All() {
		out = append(out, FromCategory(c)...)
	}
	return out
}

// FromCategory converts each row of c. Roster rows count as accepted.
func FromCategory(c *categories.Category) []Lead {
	out := make([]Lead, 0, c.Len())
	for i, row := range c.Rows {
		l := Lead{
			Category: c.Name,
			Origin:   row.Origin,
			Raw:      make(map[string]string),
		}
		for col, column := range c.Schema {
			v := strings.TrimSpace(row.Cell(col))
			switch column.Role {
			case identity.RoleDerivedAcceptance:
				l.LinkedInAccepted = categories.IsAffirmative(v)
				continue
			case identity.RoleAcceptance:
				l.Accepted = categories.IsAffirmative(v)
				continue
			case identity.RoleIdentity:
				assignIdentity(&l, column.Name, v)
			default:
				assignData(&l, column.Name, v)
			}
			l.Raw[column.Name] = v
		}
		if c.Roster {
			l.LinkedInAccepted = c.Accepted(i)
		}
		out = append(out, l)
	}
	return out
}

func assignIdentity(l *Lead, header, v string) {
	key := identity.Normalize(v)
	if key == "" {
		return
	}
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "coo") || strings.Contains(h, "cfo"):
		setOnce(&l.COOCFOLinkedIn, key)
	case strings.Contains(h, "ceo"):
		setOnce(&l.CEOLinkedIn, key)
	}
	setOnce(&l.LinkedIn, key)
}

func assignData(l *Lead, header, v string) {
	if v == "" {
		return
	}
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case strings.Contains(h, "company name"), strings.Contains(h, "organization name"), h == "company", h == "fund":
		setOnce(&l.CompanyName, v)
	case h == "ceo", h == "ceo name":
		setOnce(&l.CEO, v)
	case strings.Contains(h, "ceo email"):
		setOnce(&l.CEOEmail, v)
	case strings.Contains(h, "linkedin") && strings.Contains(h, "request"):
		setOnce(&l.LinkedInRequest, v)
	case strings.Contains(h, "website"):
		setOnce(&l.Website, v)
	case h == "industry":
		setOnce(&l.Industry, v)
	}
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
