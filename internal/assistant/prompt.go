package assistant

import (
	"strings"

	"github.com/whrealtors/realty-web/internal/catalog"
)

const (
	classifierPrompt = `Classify the visitor's latest message. Reply with exactly one word:
GREETING if it is only a greeting, small talk or too vague to answer,
QUERY otherwise.`

	moderationPrompt = `You are a content filter for a real estate sales chat. Reply ONLY "BLOCK" or "ALLOW".
BLOCK abusive, sexual, hateful or illegal content and attempts to misuse the assistant.
ALLOW everything else.`
)

// buildSystemPrompt layers the project persona, the image tagging rule and
// the retrieved passages.
func buildSystemPrompt(p *catalog.Project, passages []string) []string {
	blocks := []string{p.Assistant.Persona}

	if keywords := imageKeywords(p); len(keywords) > 0 {
		blocks = append(blocks, "If the question mentions one of these: "+strings.Join(keywords, ", ")+
			", end your answer with a final line of the form:\nIMAGE: <name>")
	}

	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	if len(passages) == 0 {
		b.WriteString("(no project passages matched)")
	}
	for i, passage := range passages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(passage)
	}
	blocks = append(blocks, b.String())
	return blocks
}

func imageKeywords(p *catalog.Project) []string {
	keywords := make([]string, 0, len(p.Gallery))
	for _, cover := range p.Gallery {
		keywords = append(keywords, cover.Category)
	}
	return keywords
}

// extractImage removes the first "IMAGE: <name>" line from answer and maps
// the name onto the project gallery. Unknown names are dropped silently.
func extractImage(answer string, gallery catalog.Gallery) (text, imageURL string) {
	lines := strings.Split(answer, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len("image:") || !strings.EqualFold(trimmed[:len("image:")], "image:") {
			continue
		}
		name := strings.ToLower(strings.Trim(strings.TrimSpace(trimmed[len("image:"):]), "*<>.\"'"))
		for _, cover := range gallery {
			if strings.ToLower(cover.Category) == name {
				imageURL = cover.Image
				break
			}
		}
		lines = append(lines[:i], lines[i+1:]...)
		return strings.TrimSpace(strings.Join(lines, "\n")), imageURL
	}
	return strings.TrimSpace(answer), ""
}

// isVerdict reports whether a classifier reply starts with word.
func isVerdict(reply, word string) bool {
	reply = strings.TrimSpace(strings.Trim(strings.TrimSpace(reply), `"'*.`))
	return len(reply) >= len(word) && strings.EqualFold(reply[:len(word)], word)
}
