// Package generation produces tool content from a language model.
//
// Generator is the collaborator the orchestrator calls once credits have
// been debited. OpenAIGenerator talks to the OpenAI API; OfflineGenerator
// returns canned markdown for local development and tests.
//
// Generated images travel inside the text result as sentinel lines:
//
//	IMAGE_BASE64:data:image/png;base64,iVBORw0...
//
// SplitContent separates those lines from the prose.
package generation
