// Package chat runs the SAMN AI assistant conversation. Every message sent
// to the model costs credits, charged before the model is called.
package chat
