package catalog

import (
	"fmt"
	"time"
)

// ChatPrefix opens every assistant reply
const ChatPrefix = "🔷 **SAMN AI:** "

// DefaultCompany returns the marketplace contact details
func DefaultCompany() CompanyInfo {
	return CompanyInfo{
		Name:         "Samonya AI Business Builder Marketplace",
		ShortName:    "Samonya AIMS Market",
		Phone:        "0113558668",
		WhatsApp:     "0113558668",
		WhatsAppLink: "https://wa.me/254113558668",
		Email:        "samonyadigital@gmail.com",
		MpesaTill:    "0113558668",
		Brand:        "Samonya Digital Universe",
	}
}

// SystemInstruction is the persona given to the chat assistant
func SystemInstruction(c CompanyInfo) string {
	return fmt.Sprintf(`You are SAMN AI, the core intelligence of the SAMONYA AI BUSINESS BUILDER MARKETPLACE.
Your goal is to help small businesses in Kenya, Africa, and globally.

CRITICAL RULES:
1. Always start your response with "🔷 **SAMN AI:**".
2. Enforce credit checks. If user has no credits, politely ask them to upgrade via M-Pesa %s.
3. Personality: Friendly, Business-Smart, Solution-Focused, Kenyan/African Context.
4. Support English and Swahili.
5. If user asks for Downloads/Export, tell them: "Please select your preferred format (MP3, PDF, TXT) using the download button. Note: Free tier users must upgrade to download."
6. If user says "Insights Mode", provide a detailed strategic breakdown of their business needs including marketing strategy, content plan, and ad recommendations.

PRICING REFERENCE:
- Free Tier: 6 Credits (No downloads)
- Starter: $1 (120 Credits)
- Creator: $3 (400 Credits)
- Business: $5 (1000 Credits)

CONTACTS:
- WhatsApp/M-Pesa: %s
- Email: %s`, c.MpesaTill, c.WhatsApp, c.Email)
}

// WelcomeMessage is the first entry of every chat history
const WelcomeMessage = `Welcome to **Samonya AI Business Builder Marketplace** powered by **SAMN AI**.

Login to begin. Free tier includes **6 credits**.

Upgrade from only **$1** to unlock downloads.`

// DefaultInspiration returns the dashboard feed
func DefaultInspiration() Inspiration {
	return Inspiration{
		Quotes: []string{
			"Success is not final; failure is not fatal: It is the courage to continue that counts.",
			"The way to get started is to quit talking and begin doing.",
			"Opportunities don't happen. You create them.",
			"Don't be afraid to give up the good to go for the great.",
		},
		MarketingTips: []string{
			"Consistency is key. Post at least 3 times a week to keep your audience engaged.",
			"Use video content! Reels and TikToks get 10x more engagement than static images.",
			"Always include a Call to Action (CTA) in every post.",
			"Engage with your followers in the first 30 minutes after posting.",
		},
		DesignIdeas: []string{
			"Try using contrasting colors (like Orange and Blue) to make your CTA pop.",
			"Use whitespace effectively to make your text readable.",
			"Stick to 2-3 fonts maximum for your brand identity.",
			"Ensure your logo is scalable - it should look good on a business card and a billboard.",
		},
	}
}

// LegalDocuments lists every published legal page
var LegalDocuments = []LegalDocument{LegalPrivacy, LegalTerms, LegalRefund, LegalCookies, LegalUserData}

// Legal renders a legal document. The privacy policy is stamped with now.
func Legal(doc LegalDocument, c CompanyInfo, now time.Time) (string, error) {
	switch doc {
	case LegalPrivacy:
		return fmt.Sprintf("## Privacy Policy\n**Last Updated: %s**\n\n"+
			"1. **Introduction**: %s respects your privacy. This policy explains how we handle your data.\n"+
			"2. **Data Collection**: We collect name, email, phone number, and transaction history to provide our services.\n"+
			"3. **Usage**: Data is used for account management, credit tracking, and service improvement.\n"+
			"4. **Third Parties**: We do not sell your data. Payments are processed via secure M-Pesa/Stripe integrations.\n"+
			"5. **Contact**: For data concerns, email %s.",
			now.Format("1/2/2006"), c.ShortName, c.Email), nil
	case LegalTerms:
		return fmt.Sprintf("## Terms of Service\n"+
			"1. **Acceptance**: By using %s, you agree to these terms.\n"+
			"2. **Credits**: Credits are non-refundable once purchased.\n"+
			"3. **Usage**: You may use generated content for commercial purposes if you have a paid subscription.\n"+
			"4. **Free Tier**: Content generated on the Free Tier is for personal/draft use only and includes watermarks.\n"+
			"5. **Account Termination**: We reserve the right to terminate accounts for abuse.",
			c.ShortName), nil
	case LegalRefund:
		return fmt.Sprintf("## Refund Policy\n"+
			"1. **Digital Goods**: Credits are digital goods and are generally non-refundable.\n"+
			"2. **Exceptions**: If a technical error prevents credit delivery after payment, contact support at %s.\n"+
			"3. **Process**: Refunds are processed within 5-7 business days upon verification.",
			c.WhatsApp), nil
	case LegalCookies:
		return "## Cookies Policy\nWe use essential cookies to maintain your login session and track credit usage. " +
			"By using our site, you consent to these cookies.", nil
	case LegalUserData:
		return "## User Data Policy\nYour business data (brand names, ideas) entered into our AI tools is processed securely. " +
			"We save your client profile to improve your future generations. You can request data deletion by contacting support.", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
}
