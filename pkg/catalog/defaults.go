package catalog

// Welcome grant for a freshly logged-in user
const (
	WelcomeCredits     = 6
	WelcomeDescription = "Welcome Bonus"
	WelcomeTxID        = "init"
)

func defaultPlans() []Plan {
	return []Plan{
		{
			ID:       TierStarter,
			Name:     "Starter Pack",
			PriceUSD: "$1.00",
			Credits:  120,
			Features: []string{"120 Credits", "Downloads Enabled", "No Watermark", "Basic Support"},
		},
		{
			ID:       TierCreator,
			Name:     "Creator Pack",
			PriceUSD: "$3.00",
			Credits:  400,
			Popular:  true,
			Features: []string{"400 Credits", "Unlimited Downloads", "Brand Kit Generation", "Standard Support"},
		},
		{
			ID:       TierBusiness,
			Name:     "Business Pack",
			PriceUSD: "$5.00",
			Credits:  1000,
			Features: []string{"1000 Credits", "Full Access", "Priority SAMN AI Support", "Video Script Generator"},
		},
	}
}

func defaultCosts() Costs {
	return Costs{
		Default:        2,
		ImageSurcharge: 2,
		ChatMessage:    1,
		Tools: map[ToolID]int{
			ToolLogoGenerator:   5,
			ToolSocialMedia:     3,
			ToolProductDesc:     2,
			ToolAdCreator:       3,
			ToolWebCopy:         2,
			ToolBrandKit:        10,
			ToolVideoScript:     7,
			ToolBusinessTools:   2,
			ToolSloganGenerator: 2,
		},
	}
}

// shared field definitions
var (
	businessNameField = func(placeholder string) Field {
		return Field{Name: "businessName", Label: "Business Name", Type: FieldText, Placeholder: placeholder, Concept: ConceptBusinessName}
	}
	industryField = func(placeholder string) Field {
		return Field{Name: "industry", Label: "Industry", Type: FieldText, Placeholder: placeholder, Concept: ConceptIndustry}
	}
)

func defaultTools() []Tool {
	return []Tool{
		{
			ID:          ToolLogoGenerator,
			Name:        "AI Logo Generator",
			Description: "Create professional brand logos & concepts (5 Credits).",
			Icon:        "🎨",
			Fields: []Field{
				businessNameField("e.g. Nairobi Coffees"),
				industryField("e.g. Hospitality"),
				{Name: "style", Label: "Style Preference", Type: FieldSelect, Options: []string{"Modern & Minimal", "Bold & African", "Classic & Elegant", "Fun & Playful"}},
				{Name: "description", Label: "Brief Description", Type: FieldTextarea, Placeholder: "Describe what you do..."},
				{Name: "existingLogo", Label: "Refine Existing Logo (Optional)", Type: FieldFile},
				{Name: "generateVisual", Label: "Generate Visual AI Logo Image (+2 Credits)", Type: FieldCheckbox},
			},
		},
		{
			ID:          ToolSocialMedia,
			Name:        "Social Media Factory",
			Description: "Generate posts, captions & calendars (3 Credits).",
			Icon:        "📱",
			Fields: []Field{
				{Name: "product", Label: "Product/Service", Type: FieldText, Placeholder: "e.g. Handmade Soap"},
				{Name: "platform", Label: "Platform", Type: FieldSelect, Options: []string{"Instagram", "Facebook", "TikTok", "LinkedIn"}},
				{Name: "tone", Label: "Tone", Type: FieldSelect, Options: []string{"Professional", "Funny", "Inspirational", "Urgent/Sales"}},
				{Name: "audience", Label: "Target Audience", Type: FieldText, Placeholder: "e.g. Young moms in Nairobi", Concept: ConceptTargetAudience},
			},
		},
		{
			ID:          ToolProductDesc,
			Name:        "Product Description",
			Description: "SEO-rich descriptions that sell (2 Credits).",
			Icon:        "🛍️",
			Fields: []Field{
				{Name: "productName", Label: "Product Name", Type: FieldText, Placeholder: "e.g. Organic Shea Butter"},
				{Name: "features", Label: "Key Features", Type: FieldTextarea, Placeholder: "List features separated by commas..."},
				{Name: "targetUser", Label: "Ideal Customer", Type: FieldText, Placeholder: "e.g. People with dry skin", Concept: ConceptTargetAudience},
			},
		},
		{
			ID:          ToolAdCreator,
			Name:        "AI Ad Creator",
			Description: "High-conversion ads for all platforms (3 Credits).",
			Icon:        "📢",
			Fields: []Field{
				{Name: "product", Label: "Product/Offer", Type: FieldText, Placeholder: "e.g. 50% Off Sneakers"},
				{Name: "platform", Label: "Ad Platform", Type: FieldSelect, Options: []string{"Facebook Ads", "Google Ads", "Instagram Stories"}},
				{Name: "goal", Label: "Campaign Goal", Type: FieldSelect, Options: []string{"Sales", "Brand Awareness", "Lead Generation"}},
			},
		},
		{
			ID:          ToolWebCopy,
			Name:        "Website Text Generator",
			Description: "Full content for your business website (2 Credits).",
			Icon:        "💻",
			Fields: []Field{
				{Name: "businessDetails", Label: "About Business", Type: FieldTextarea, Placeholder: "What do you do?"},
				{Name: "sections", Label: "Required Sections", Type: FieldText, Placeholder: "e.g. Homepage, About Us, Services"},
			},
		},
		{
			ID:          ToolBrandKit,
			Name:        "Brand Kit Generator",
			Description: "Complete visual identity & personality (10 Credits).",
			Icon:        "✨",
			Fields: []Field{
				businessNameField("Your Brand Name"),
				industryField("e.g. Fashion"),
				{Name: "vibe", Label: "Brand Vibe", Type: FieldSelect, Options: []string{"Luxury", "Eco-Friendly", "Tech/Modern", "Community-Focused"}},
			},
		},
		{
			ID:          ToolVideoScript,
			Name:        "Video Script Writer",
			Description: "Scripts for TikTok, Reels & YouTube (7 Credits).",
			Icon:        "🎬",
			Fields: []Field{
				{Name: "topic", Label: "Video Topic", Type: FieldText, Placeholder: "e.g. How to use our product"},
				{Name: "platform", Label: "Platform", Type: FieldSelect, Options: []string{"TikTok (Short)", "Instagram Reel", "YouTube (Long)"}},
				{Name: "tone", Label: "Tone", Type: FieldSelect, Options: []string{"Educational", "Entertaining", "Viral/Trendy"}},
			},
		},
		{
			ID:          ToolSloganGenerator,
			Name:        "AI Slogan Generator",
			Description: "Generate catchy slogans & taglines (2 Credits).",
			Icon:        "✍️",
			Fields: []Field{
				businessNameField("e.g. Nairobi Eats"),
				industryField("e.g. Restaurant"),
				{Name: "valueProp", Label: "Key Value (Optional)", Type: FieldText, Placeholder: "e.g. Fast delivery, affordable"},
				{Name: "tone", Label: "Tone", Type: FieldSelect, Options: []string{"Professional", "Funny/Witty", "Inspirational", "Short & Punchy"}},
			},
		},
		{
			ID:          ToolBusinessTools,
			Name:        "Business Name Generator",
			Description: "Creative names for startups & brands (2 Credits).",
			Icon:        "🚀",
			Fields: []Field{
				{Name: "keywords", Label: "Keywords", Type: FieldText, Placeholder: "e.g. coffee, fast, delivery"},
				{Name: "type", Label: "Generator Type", Type: FieldSelect, Options: []string{"Business Name", "Startup Idea"}},
			},
		},
	}
}
