// Package schema defines the fixed shape of a client record and validates
// candidate records before they may be persisted.
//
// The column list here is the single source for the backing file header, the
// validator, and any presentation layer that offers choices for enum fields.
package schema

import "slices"

// Kind classifies how a column's value is produced and checked.
type Kind int

const (
	// KindText is free text. Required text columns must be non-empty.
	KindText Kind = iota + 1

	// KindEnum must be one of the column's Allowed values.
	KindEnum

	// KindTimestamp is stamped by the store at append time.
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column names, in file order.
const (
	ColTimestamp        = "Timestamp"
	ColName             = "Name"
	ColEmail            = "Email"
	ColPhone            = "Phone"
	ColCompanyName      = "Company Name"
	ColIndustryCategory = "Industry Category"
	ColCompanySize      = "Company Size"
	ColRevenue          = "Revenue"
	ColLeadSource       = "Lead Source"
	ColSalesRep         = "Sales Rep"
	ColLeadStatus       = "Lead Status"
	ColNotes            = "Notes"
)

// Lead status values.
const (
	StatusNewLead      = "New Lead"
	StatusContacted    = "Contacted"
	StatusQualified    = "Qualified"
	StatusProposalSent = "Proposal Sent"
	StatusNegotiation  = "Negotiation"
	StatusClosedWon    = "Closed Won"
	StatusClosedLost   = "Closed Lost"
)

// TimestampLayout is the format of the Timestamp column (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// Column describes one field of a client record.
type Column struct {
	Name        string   // Name is the header text in the backing file.
	Kind        Kind     // Kind decides how the value is validated.
	Required    bool     // Required columns must be non-empty.
	Allowed     []string // Allowed is the closed set for enum columns, in display order.
	Label       string   // Label is a human prompt for form-style input.
	Placeholder string   // Placeholder is an example value for text input.
}

var columns = []Column{
	{Name: ColTimestamp, Kind: KindTimestamp},
	{Name: ColName, Kind: KindText, Required: true, Label: "Client Name", Placeholder: "John Doe"},
	{Name: ColEmail, Kind: KindText, Required: true, Label: "Email", Placeholder: "john@example.com"},
	{Name: ColPhone, Kind: KindText, Required: true, Label: "Phone", Placeholder: "+1 (555) 123-4567"},
	{Name: ColCompanyName, Kind: KindText, Required: true, Label: "Company Name", Placeholder: "Acme Corp"},
	{
		Name: ColIndustryCategory, Kind: KindEnum, Required: true, Label: "Industry Category",
		Allowed: []string{
			"Technology", "Finance", "Healthcare", "Manufacturing",
			"Retail", "Education", "Real Estate", "Consulting", "Other",
		},
	},
	{
		Name: ColCompanySize, Kind: KindEnum, Required: true, Label: "Company Size",
		Allowed: []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"},
	},
	{
		Name: ColRevenue, Kind: KindEnum, Required: true, Label: "Annual Revenue",
		Allowed: []string{
			"< $100K", "$100K-$500K", "$500K-$1M", "$1M-$5M",
			"$5M-$10M", "$10M-$50M", "$50M+",
		},
	},
	{
		Name: ColLeadSource, Kind: KindEnum, Required: true, Label: "Lead Source",
		Allowed: []string{
			"Website", "Referral", "Cold Call", "Email Campaign",
			"Social Media", "Trade Show", "Partner", "Other",
		},
	},
	{Name: ColSalesRep, Kind: KindText, Required: true, Label: "Sales Rep", Placeholder: "Jane Smith"},
	{
		Name: ColLeadStatus, Kind: KindEnum, Required: true, Label: "Lead Status",
		Allowed: []string{
			StatusNewLead, StatusContacted, StatusQualified, StatusProposalSent,
			StatusNegotiation, StatusClosedWon, StatusClosedLost,
		},
	},
	{Name: ColNotes, Kind: KindText, Label: "Notes", Placeholder: "Additional info..."},
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c.Name] = i
	}

	return m
}()

// Columns returns the record columns in file order. The result is a copy.
func Columns() []Column {
	out := make([]Column, len(columns))
	for i, c := range columns {
		c.Allowed = slices.Clone(c.Allowed)
		out[i] = c
	}

	return out
}

// Header returns the column names in file order.
func Header() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}

	return out
}

// Lookup returns the column with the given header name.
func Lookup(name string) (Column, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return Column{}, false
	}

	c := columns[i]
	c.Allowed = slices.Clone(c.Allowed)

	return c, true
}

// IsAllowed reports whether value is a member of the closed set of the enum
// column name. It returns false for unknown or non-enum columns.
func IsAllowed(name, value string) bool {
	i, ok := columnIndex[name]
	if !ok || columns[i].Kind != KindEnum {
		return false
	}

	return slices.Contains(columns[i].Allowed, value)
}

// RequiredColumns returns the names of columns a candidate must fill in.
func RequiredColumns() []string {
	var out []string

	for _, c := range columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}

	return out
}

// EnumColumns returns the enum columns in file order.
func EnumColumns() []Column {
	var out []Column

	for _, c := range Columns() {
		if c.Kind == KindEnum {
			out = append(out, c)
		}
	}

	return out
}

// IsHeader reports whether names is exactly the canonical header.
func IsHeader(names []string) bool {
	return slices.Equal(names, Header())
}
