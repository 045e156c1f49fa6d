package catalog

import "fmt"

// ToolID identifies a generation tool
type ToolID string

const (
	ToolDashboard       ToolID = "DASHBOARD"
	ToolLogoGenerator   ToolID = "LOGO_GENERATOR"
	ToolSocialMedia     ToolID = "SOCIAL_MEDIA"
	ToolProductDesc     ToolID = "PRODUCT_DESC"
	ToolAdCreator       ToolID = "AD_CREATOR"
	ToolWebCopy         ToolID = "WEB_COPY"
	ToolBrandKit        ToolID = "BRAND_KIT"
	ToolVideoScript     ToolID = "VIDEO_SCRIPT"
	ToolBusinessTools   ToolID = "BUSINESS_TOOLS"
	ToolSloganGenerator ToolID = "SLOGAN_GENERATOR"
)

// Tier is a subscription level
type Tier string

const (
	TierFree     Tier = "FREE"
	TierStarter  Tier = "STARTER"
	TierCreator  Tier = "CREATOR"
	TierBusiness Tier = "BUSINESS"
)

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierStarter, TierCreator, TierBusiness:
		return true
	}
	return false
}

// Paid reports whether the tier came from a purchase
func (t Tier) Paid() bool {
	return t.Valid() && t != TierFree
}

// Plan is a purchasable credit pack
type Plan struct {
	ID       Tier     `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	PriceUSD string   `json:"price_usd" yaml:"price_usd"`
	Credits  int      `json:"credits" yaml:"credits"`
	Features []string `json:"features" yaml:"features"`
	Popular  bool     `json:"popular,omitempty" yaml:"popular"`
}

// Validate checks a plan loaded from configuration
func (p Plan) Validate() error {
	if !p.ID.Paid() {
		return fmt.Errorf("plan %q: id must be a paid tier", p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("plan %q: name is required", p.ID)
	}
	if p.Credits <= 0 {
		return fmt.Errorf("plan %q: credits must be positive", p.ID)
	}
	return nil
}

// FieldType is the input control a tool form field renders as
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldFile     FieldType = "file"
	FieldCheckbox FieldType = "checkbox"
)

// Concept is a semantic key remembered across tools
type Concept string

const (
	ConceptBusinessName   Concept = "businessName"
	ConceptIndustry       Concept = "industry"
	ConceptTargetAudience Concept = "targetAudience"
)

// Concepts lists every remembered concept
var Concepts = []Concept{ConceptBusinessName, ConceptIndustry, ConceptTargetAudience}

// FieldConcept ties a submitted field name to the concept it is remembered as
type FieldConcept struct {
	Field   string
	Concept Concept
}

// conceptAliases are remembered from any tool's submission, declared or not.
// Order is precedence: audience beats targetUser.
var conceptAliases = []FieldConcept{
	{"businessName", ConceptBusinessName},
	{"industry", ConceptIndustry},
	{"audience", ConceptTargetAudience},
	{"targetUser", ConceptTargetAudience},
}

// Field describes one form input of a tool
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	// Concept, when set, ties the field to client memory: submitted values
	// are remembered under it and later used to prefill the field.
	Concept Concept `json:"concept,omitempty"`
}

// Tool is a generation tool offered on the dashboard
type Tool struct {
	ID          ToolID  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Fields      []Field `json:"fields"`
}

// Field returns the named field
func (t Tool) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ConceptFields maps each field name with a concept to that concept
func (t Tool) ConceptFields() map[string]Concept {
	out := make(map[string]Concept)
	for _, f := range t.Fields {
		if f.Concept != "" {
			out[f.Name] = f.Concept
		}
	}
	return out
}

// MemoryFields lists the submitted field names client memory reads for this
// tool: its own concept fields in form order, then the catalog-wide aliases.
// The first non-blank value per concept wins.
func (t Tool) MemoryFields() []FieldConcept {
	var out []FieldConcept
	seen := make(map[string]bool)
	for _, f := range t.Fields {
		if f.Concept != "" {
			out = append(out, FieldConcept{Field: f.Name, Concept: f.Concept})
			seen[f.Name] = true
		}
	}
	for _, a := range conceptAliases {
		if !seen[a.Field] {
			out = append(out, a)
		}
	}
	return out
}

// Costs is the credit price table
type Costs struct {
	Default        int            `json:"default" yaml:"default"`
	ImageSurcharge int            `json:"image_surcharge" yaml:"image_surcharge"`
	ChatMessage    int            `json:"chat_message" yaml:"chat_message"`
	Tools          map[ToolID]int `json:"tools" yaml:"tools"`
}

// CompanyInfo holds contact and payment details shown to users
type CompanyInfo struct {
	Name         string `json:"name"`
	ShortName    string `json:"short_name"`
	Phone        string `json:"phone"`
	WhatsApp     string `json:"whatsapp"`
	WhatsAppLink string `json:"whatsapp_link"`
	Email        string `json:"email"`
	MpesaTill    string `json:"mpesa_till"`
	Brand        string `json:"brand"`
}

// Inspiration is the dashboard feed content
type Inspiration struct {
	Quotes        []string `json:"quotes"`
	MarketingTips []string `json:"marketing_tips"`
	DesignIdeas   []string `json:"design_ideas"`
}

// LegalDocument names a legal page
type LegalDocument string

const (
	LegalPrivacy  LegalDocument = "PRIVACY"
	LegalTerms    LegalDocument = "TERMS"
	LegalRefund   LegalDocument = "REFUND"
	LegalCookies  LegalDocument = "COOKIES"
	LegalUserData LegalDocument = "USER_DATA"
)
