package generation

import (
	"fmt"
	"strings"
)

// Input is one submitted form value. Inputs keep the tool's field order so
// prompts are stable.
type Input struct {
	Key   string
	Value string
}

// Request is everything a generator needs for one tool run
type Request struct {
	ToolName   string
	Inputs     []Input
	Attachment string // data URI, optional
	Visual     bool
}

// SystemPrompt is the persona for tool generation
const SystemPrompt = "You are a specialized business content generator for Samonya AIMS Market."

const (
	attachmentNote = "\n\nNOTE: The user has attached an image (e.g., an existing logo). Use it for context, refinement, or inspiration as requested."
	visualNote     = "\n\nCRITICAL: You MUST generate a high-quality visual image based on the requirements. Return the image in the response."
)

// BuildPrompt renders the user prompt for req
func BuildPrompt(req Request) string {
	lines := make([]string, len(req.Inputs))
	for i, in := range req.Inputs {
		lines[i] = fmt.Sprintf("- %s: %s", in.Key, in.Value)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACT AS THE %s MODULE FOR SAMONYA AI BUSINESS BUILDER.\n\n", strings.ToUpper(req.ToolName))
	b.WriteString("USER INPUTS:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- Generate business-ready, professional output.\n")
	b.WriteString("- Format with Markdown (Headers, Bullet points, Bold text).\n")
	b.WriteString("- Do NOT output code blocks unless specifically requested.\n")
	b.WriteString("- Be creative and specific to the Kenyan/African market if applicable based on inputs.\n")
	b.WriteString("- Structure the response clearly.")

	if req.Attachment != "" {
		b.WriteString(attachmentNote)
	}
	if req.Visual {
		b.WriteString(visualNote)
	}
	return b.String()
}

// maxImagePromptLen keeps image prompts inside the API limit
const maxImagePromptLen = 1000

// BuildImagePrompt renders a short prompt for the image model
func BuildImagePrompt(req Request) string {
	parts := make([]string, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		if in.Value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", in.Key, in.Value))
	}
	prompt := fmt.Sprintf("High-quality %s visual for a Kenyan/African small business. %s.",
		strings.ToLower(req.ToolName), strings.Join(parts, "; "))
	if len(prompt) > maxImagePromptLen {
		prompt = prompt[:maxImagePromptLen]
	}
	return prompt
}
