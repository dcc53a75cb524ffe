package extract

type Category string

const (
	CategoryID      Category = "id"
	CategoryAddress Category = "address"
	CategoryDOB     Category = "dob"
)

type DocumentType struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	Enabled        bool     `json:"enabled"`
	DisabledReason string   `json:"disabledReason,omitempty"`
	Variant        string   `json:"variant"`
}

type CategoryInfo struct {
	ID          Category       `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Documents   []DocumentType `json:"documents"`
}

var categories = []CategoryInfo{
	{ID: CategoryID, Label: "Identity Proof", Description: "Government-issued photo ID"},
	{ID: CategoryAddress, Label: "Address Proof", Description: "Proof of residential address"},
	{ID: CategoryDOB, Label: "DOB Proof", Description: "Date of birth verification"},
}

var documents = []DocumentType{
	{
		ID: "passport", Name: "Passport", Category: CategoryID,
		Description:  "International travel document with photo",
		Requirements: []string{"Photo page clearly visible", "All corners in frame", "No glare or shadows"},
		Enabled:      true,
	},
	{
		ID: "aadhaar-card", Name: "Aadhaar Card", Category: CategoryID,
		Description:  "Generic 12-digit identification card",
		Requirements: []string{"Front and back required", "12-digit UID visible", "QR code clear (if present)"},
		Enabled:      true,
	},
	{
		ID: "pan-card", Name: "PAN Card", Category: CategoryID,
		Description:  "Permanent Account Number card",
		Requirements: []string{"PAN number clearly visible", "Name and DOB readable", "Signature visible"},
		Enabled:      true,
	},
	{
		ID: "drivers-license", Name: "Driver's License", Category: CategoryID,
		Description:  "Valid driving license with photo",
		Requirements: []string{"Photo clearly visible", "License number readable", "Valid expiry date"},
		Enabled:      true,
	},
	{
		ID: "voter-id", Name: "Voter ID", Category: CategoryID,
		Description:    "Electoral identification card",
		Requirements:   []string{"Photo visible", "ID number readable"},
		DisabledReason: "Not available for your region",
	},
	{
		ID: "utility-bill", Name: "Utility Bill", Category: CategoryAddress,
		Description:  "Electricity, gas, or water bill",
		Requirements: []string{"Within last 3 months", "Full name visible", "Complete address shown"},
		Enabled:      true,
	},
	{
		ID: "bank-statement", Name: "Bank Statement", Category: CategoryAddress,
		Description:  "Recent bank account statement",
		Requirements: []string{"Within last 3 months", "Bank letterhead visible", "Address on statement"},
		Enabled:      true,
	},
	{
		ID: "tax-document", Name: "Tax Document", Category: CategoryAddress,
		Description:  "Government tax correspondence",
		Requirements: []string{"Current tax year", "Official letterhead", "Full address visible"},
		Enabled:      true,
	},
	{
		ID: "rental-agreement", Name: "Rental Agreement", Category: CategoryAddress,
		Description:    "Valid lease or rental contract",
		Requirements:   []string{"Current agreement", "Both parties signed", "Property address visible"},
		DisabledReason: "Profile shows property ownership",
	},
	{
		ID: "birth-certificate", Name: "Birth Certificate", Category: CategoryDOB,
		Description:  "Official birth registration document",
		Requirements: []string{"Official seal visible", "Full name matches", "Date clearly shown"},
		Enabled:      true,
	},
	{
		ID: "passport-dob", Name: "Passport (DOB page)", Category: CategoryDOB,
		Description:  "Passport showing date of birth",
		Requirements: []string{"Bio data page", "DOB clearly visible", "Not expired"},
		Enabled:      true,
	},
	{
		ID: "school-certificate", Name: "School Certificate", Category: CategoryDOB,
		Description:    "Educational certificate with DOB",
		Requirements:   []string{"Official certificate", "DOB printed", "Institution name visible"},
		DisabledReason: "Age verified through other documents",
	},
}

// Catalog returns the document types grouped by category, each annotated
// with the variant that extracts it. The result is a fresh copy.
func Catalog() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	for i, c := range categories {
		c.Documents = []DocumentType{}
		for _, d := range documents {
			if d.Category == c.ID {
				c.Documents = append(c.Documents, withVariant(d))
			}
		}
		out[i] = c
	}
	return out
}

// Lookup finds a document type by id.
func Lookup(id string) (DocumentType, bool) {
	for _, d := range documents {
		if d.ID == id {
			return withVariant(d), true
		}
	}
	return DocumentType{}, false
}

func withVariant(d DocumentType) DocumentType {
	d.Requirements = append([]string(nil), d.Requirements...)
	d.Variant = defaultRegistry.Lookup(d.ID).Name()
	return d
}
