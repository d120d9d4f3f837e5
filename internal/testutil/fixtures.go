package testutil

import "github.com/calvinalkan/crm/internal/schema"

// ValidRecord returns a record that passes validation. Timestamp is empty.
func ValidRecord() schema.Record {
	return schema.Record{
		Name:             "Ada Lovelace",
		Email:            "ada@example.com",
		Phone:            "+1 555 0100",
		CompanyName:      "Analytical Engines",
		IndustryCategory: "Technology",
		CompanySize:      "11-50",
		Revenue:          "$1M-$5M",
		LeadSource:       "Referral",
		SalesRep:         "Jane Smith",
		LeadStatus:       schema.StatusQualified,
		Notes:            "met at conference",
	}
}
