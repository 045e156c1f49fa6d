package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Plans(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Len(t, c.Plans, 3)

	tests := []struct {
		id      Tier
		name    string
		price   string
		credits int
		popular bool
	}{
		{TierStarter, "Starter Pack", "$1.00", 120, false},
		{TierCreator, "Creator Pack", "$3.00", 400, true},
		{TierBusiness, "Business Pack", "$5.00", 1000, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			p, err := c.Plan(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.price, p.PriceUSD)
			assert.Equal(t, tt.credits, p.Credits)
			assert.Equal(t, tt.popular, p.Popular)
			assert.Len(t, p.Features, 4)
		})
	}

	_, err := c.Plan(TierFree)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestDefault_ToolsHaveCosts(t *testing.T) {
	c := Default()
	require.Len(t, c.Tools, 9)
	for _, tool := range c.Tools {
		_, ok := c.Costs.Tools[tool.ID]
		assert.True(t, ok, "tool %s has no cost", tool.ID)
		assert.NotEmpty(t, tool.Fields, "tool %s has no fields", tool.ID)
	}

	_, err := c.Tool(ToolDashboard)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, "AI Logo Generator", c.ToolName(ToolLogoGenerator))
	assert.Equal(t, "MYSTERY", c.ToolName("MYSTERY"))
}

func TestTool_ConceptFields(t *testing.T) {
	c := Default()

	logo, err := c.Tool(ToolLogoGenerator)
	require.NoError(t, err)
	assert.Equal(t, map[string]Concept{
		"businessName": ConceptBusinessName,
		"industry":     ConceptIndustry,
	}, logo.ConceptFields())

	social, _ := c.Tool(ToolSocialMedia)
	assert.Equal(t, map[string]Concept{"audience": ConceptTargetAudience}, social.ConceptFields())

	product, _ := c.Tool(ToolProductDesc)
	assert.Equal(t, map[string]Concept{"targetUser": ConceptTargetAudience}, product.ConceptFields())

	ad, _ := c.Tool(ToolAdCreator)
	assert.Empty(t, ad.ConceptFields())

	f, ok := logo.Field("generateVisual")
	require.True(t, ok)
	assert.Equal(t, FieldCheckbox, f.Type)
	_, ok = logo.Field("nope")
	assert.False(t, ok)
}

func TestTier(t *testing.T) {
	assert.True(t, TierFree.Valid())
	assert.False(t, TierFree.Paid())
	assert.True(t, TierBusiness.Paid())
	assert.False(t, Tier("GOLD").Valid())
}

func TestCatalog_Validate(t *testing.T) {
	c := Default()
	c.Plans = append(c.Plans, c.Plans[0])
	assert.ErrorContains(t, c.Validate(), "defined twice")

	c = Default()
	c.Costs.Tools[ToolBrandKit] = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Plans[0].ID = TierFree
	assert.Error(t, c.Validate())
}

func TestHolder_Set(t *testing.T) {
	h := NewHolder(Default())
	assert.Len(t, h.Current().Plans, 3)

	bad := Default()
	bad.Plans = nil
	assert.Error(t, h.Set(bad))
	assert.Len(t, h.Current().Plans, 3)

	assert.Error(t, h.Set(nil))

	next := Default()
	next.Plans = next.Plans[:1]
	require.NoError(t, h.Set(next))
	assert.Len(t, h.Current().Plans, 1)
}

func TestLegal(t *testing.T) {
	company := DefaultCompany()
	now := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	privacy, err := Legal(LegalPrivacy, company, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(privacy, "## Privacy Policy\n**Last Updated: 3/9/2025**"))
	assert.Contains(t, privacy, "samonyadigital@gmail.com")

	refund, err := Legal(LegalRefund, company, now)
	require.NoError(t, err)
	assert.Contains(t, refund, "contact support at 0113558668.")

	for _, doc := range LegalDocuments {
		text, err := Legal(doc, company, now)
		require.NoError(t, err, doc)
		assert.True(t, strings.HasPrefix(text, "## "), doc)
	}

	_, err = Legal("EULA", company, now)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestSystemInstruction(t *testing.T) {
	text := SystemInstruction(DefaultCompany())
	assert.True(t, strings.HasPrefix(text, "You are SAMN AI"))
	assert.Contains(t, text, "upgrade via M-Pesa 0113558668.")
	assert.Contains(t, text, "- Email: samonyadigital@gmail.com")
}

func TestTool_MemoryFields(t *testing.T) {
	c := Default()

	social, err := c.Tool(ToolSocialMedia)
	require.NoError(t, err)
	assert.Equal(t, []FieldConcept{
		{"audience", ConceptTargetAudience},
		{"businessName", ConceptBusinessName},
		{"industry", ConceptIndustry},
		{"targetUser", ConceptTargetAudience},
	}, social.MemoryFields())

	// a tool without concept fields still remembers the shared names
	ad, err := c.Tool(ToolAdCreator)
	require.NoError(t, err)
	assert.Len(t, ad.MemoryFields(), 4)
}
