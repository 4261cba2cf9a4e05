package chat

import (
	"strings"

	"medibook/models"
)

const systemPrompt = `You are a medical assistant for question-answering tasks. ` +
	`Use the retrieved context below to answer the question. If you don't know ` +
	`the answer, say that you don't know. Keep the answer concise, at most three ` +
	`sentences. If the user wants to book an appointment, tell them you can ` +
	`collect their details right here in the chat.`

const historyWindow = 6

// buildPrompt assembles the generator prompt: instructions, retrieved
// passages, a window of recent conversation and the new user message.
func buildPrompt(passages []models.Passage, history []models.Turn, userMsg string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nContext:\n")

	if len(passages) == 0 {
		sb.WriteString("(no relevant passages found)\n")
	}
	for _, p := range passages {
		if p.Source != "" {
			sb.WriteString("[Source: ")
			sb.WriteString(p.Source)
			sb.WriteString("]\n")
		}
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	if len(recent) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, t := range recent {
			sb.WriteString(t.Role)
			sb.WriteString(": ")
			sb.WriteString(t.Text)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nuser: ")
	sb.WriteString(userMsg)
	sb.WriteString("\nassistant:")
	return sb.String()
}

// clarificationSentence asks the user to repeat fields that were
// mentioned but failed validation.
func clarificationSentence(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	readable := make([]string, len(fields))
	for i, f := range fields {
		readable[i] = strings.ReplaceAll(f, "_", " ")
	}
	return "I couldn't make out your " + strings.Join(readable, ", ") +
		" - could you repeat that?"
}
