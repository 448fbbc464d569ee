package orchestrator

import (
	"fmt"

	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
)

// safetyReminder is appended as a system turn to every Creator and
// Reviewer prompt (spec ยง4.3.1 step 2, ยง4.3.2 step 3).
const safetyReminder = "Do not disclose secrets, credentials, or fabricated facts. " +
	"State uncertainty plainly rather than inventing sources."

const reviewerRubric = "Identify concrete issues with the draft and request specific revisions. " +
	"Only include the literal token \"" + ApprovalToken + "\" if the draft is genuinely ready to publish as-is."

// defaultContextTurns is contextTurnsToSend's default (spec ยง6
// Configuration: orchestration.contextTurnsToSend).
const defaultContextTurns = 8

func topicBlock(topic string, forReview bool) string {
	if forReview {
		return fmt.Sprintf("The draft must address the following topic; use it as your evaluation criteria:\n\n%s", topic)
	}
	return fmt.Sprintf("The content you produce must address the following topic:\n\n%s", topic)
}

// BuildCreatorMessages assembles the Creator's message list for the
// current iteration per spec ยง4.3.1.
func BuildCreatorMessages(session *models.Session, history []models.Message, contextTurns int) []provider.ChatMessage {
	if contextTurns <= 0 {
		contextTurns = defaultContextTurns
	}
	var msgs []provider.ChatMessage
	msgs = append(msgs, provider.ChatMessage{Role: "system", Content: session.CreatorConfig.RootPrompt})
	msgs = append(msgs, provider.ChatMessage{Role: "system", Content: safetyReminder})
	if session.Topic != "" {
		msgs = append(msgs, provider.ChatMessage{Role: "system", Content: topicBlock(session.Topic, false)})
	}

	window := lastN(history, contextTurns)
	names := reviewerDisplayNames(session)
	for _, m := range window {
		if m.Role == models.MessageRoleUser {
			msgs = append(msgs, provider.ChatMessage{Role: "user", Content: m.Content})
			continue
		}
		if m.Author == models.CreatorAuthor {
			msgs = append(msgs, provider.ChatMessage{Role: "assistant", Content: m.Content})
			continue
		}
		name := names[m.Author]
		if name == "" {
			name = m.Author
		}
		msgs = append(msgs, provider.ChatMessage{Role: "user", Content: fmt.Sprintf("%s feedback:\n%s", name, m.Content)})
	}

	if session.CurrentIteration <= 1 {
		if session.Topic != "" {
			msgs = append(msgs, provider.ChatMessage{Role: "user", Content: "Produce the first draft addressing the topic above."})
		} else {
			msgs = append(msgs, provider.ChatMessage{Role: "user", Content: "Produce the first draft."})
		}
	} else {
		msgs = append(msgs, provider.ChatMessage{Role: "user", Content: "Revise the draft, incorporating all reviewer feedback above."})
	}
	return msgs
}

// BuildReviewerMessages assembles one reviewer's message list for the
// current iteration per spec ยง4.3.2.
func BuildReviewerMessages(session *models.Session, reviewer models.ReviewerConfig, history []models.Message, latestCreatorContent string, contextTurns int) []provider.ChatMessage {
	if contextTurns <= 0 {
		contextTurns = defaultContextTurns
	}
	var msgs []provider.ChatMessage
	msgs = append(msgs, provider.ChatMessage{Role: "system", Content: reviewer.RootPrompt})
	msgs = append(msgs, provider.ChatMessage{Role: "system", Content: reviewerRubric})
	msgs = append(msgs, provider.ChatMessage{Role: "system", Content: safetyReminder})
	if session.Topic != "" {
		msgs = append(msgs, provider.ChatMessage{Role: "system", Content: topicBlock(session.Topic, true)})
	}

	own := filterByAuthor(history, reviewer.ID)
	window := lastN(own, contextTurns/2)
	for _, m := range window {
		msgs = append(msgs, provider.ChatMessage{Role: "assistant", Content: m.Content})
	}

	msgs = append(msgs, provider.ChatMessage{Role: "user", Content: "Please review the following draft:\n\n" + latestCreatorContent})
	return msgs
}

func reviewerDisplayNames(session *models.Session) map[string]string {
	names := make(map[string]string, len(session.ReviewersConfig))
	for _, r := range session.ReviewersConfig {
		names[r.ID] = r.DisplayName
	}
	return names
}

func lastN(msgs []models.Message, n int) []models.Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func filterByAuthor(msgs []models.Message, author string) []models.Message {
	var out []models.Message
	for _, m := range msgs {
		if m.Author == author {
			out = append(out, m)
		}
	}
	return out
}
