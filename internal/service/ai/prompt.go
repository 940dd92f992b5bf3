package ai

import (
	"strings"

	"github.com/securemov/ana-chat/backend/internal/model/persona"
)

// Placeholders used when a dynamic block has nothing to show. A block is
// never dropped from the prompt.
const (
	NoDocumentsPlaceholder  = "(nessuno)"
	NoSummaryPlaceholder    = "(nessun riassunto ancora)"
	NoTranscriptPlaceholder = "(nessun messaggio storico)"
)

// Block headings, in the order they appear in a composed prompt.
const (
	KnowledgeBaseHeading = "MEMORIA BASE (FISSA):"
	DynamicHeading       = "CONTESTO CHAT (MEMORIA DINAMICA):"
	TranscriptHeading    = "STORICO RECENTE (chat):"
	RequestHeading       = "RICHIESTA UTENTE:"
	InstructionsHeading  = "ISTRUZIONI OPERATIVE:"
)

// PromptInput carries the per-turn text that goes into a prompt.
type PromptInput struct {
	Summary    string
	Documents  []string
	Transcript string
	Request    string
}

// Composer assembles the single text input sent to the model. It only
// formats text: same persona and input always give the same output.
type Composer struct {
	persona persona.Persona
}

// NewComposer creates a Composer for the given persona.
func NewComposer(p persona.Persona) *Composer {
	return &Composer{persona: p}
}

// Compose builds the prompt: persona, knowledge base, dynamic context,
// transcript, user request and operating instructions, separated by blank
// lines.
func (c *Composer) Compose(in PromptInput) string {
	blocks := []string{
		strings.TrimSpace(c.persona.System),
		KnowledgeBaseHeading + "\n" + strings.TrimSpace(c.persona.KnowledgeBase),
		c.dynamicBlock(in.Summary, in.Documents),
		TranscriptHeading + "\n" + orPlaceholder(in.Transcript, NoTranscriptPlaceholder),
		RequestHeading + "\n" + in.Request,
		InstructionsHeading + "\n" + bulletList(c.persona.Instructions),
	}
	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

func (c *Composer) dynamicBlock(summary string, docs []string) string {
	docsText := "- " + NoDocumentsPlaceholder
	if len(docs) > 0 {
		docsText = bulletList(docs)
	}

	var b strings.Builder
	b.WriteString(DynamicHeading)
	if c.persona.Objective != "" {
		b.WriteString("\nObiettivo: ")
		b.WriteString(c.persona.Objective)
	}
	b.WriteString("\n\nDocumenti disponibili:\n")
	b.WriteString(docsText)
	b.WriteString("\n\nRiassunto conversazione (dinamico):\n")
	b.WriteString(orPlaceholder(summary, NoSummaryPlaceholder))
	if len(c.persona.ContextRules) > 0 {
		b.WriteString("\n\nRegole:\n")
		b.WriteString(bulletList(c.persona.ContextRules))
	}
	return b.String()
}

func orPlaceholder(text, placeholder string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return placeholder
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
