package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole mirrors the chat-completions role vocabulary.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// CreatorAuthor is the fixed author id for the Creator persona; all
// other author ids are reviewer ids.
const CreatorAuthor = "Creator"

// Message is one append-only turn produced during an iteration.
type Message struct {
	ID                 uuid.UUID   `json:"id"`
	SessionID          uuid.UUID   `json:"sessionId"`
	Role               MessageRole `json:"role"`
	Author             string      `json:"author"`
	Iteration          int         `json:"iteration"`
	Content            string      `json:"content"`
	ModelUsed          string      `json:"modelUsed"`
	ReviewerDisplayName string     `json:"reviewerDisplayName,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// ReviewerSummary is the per-reviewer outcome of one iteration,
// embedded in a FeedbackRound.
type ReviewerSummary struct {
	ReviewerID   string `json:"reviewerId"`
	ReviewerName string `json:"reviewerName"`
	Feedback     string `json:"feedback"`
	Approved     bool   `json:"approved"`
}

// FeedbackRound is the durable record of one completed iteration: the
// Creator's draft plus every reviewer's verdict.
type FeedbackRound struct {
	ID                 uuid.UUID         `json:"id"`
	SessionID          uuid.UUID         `json:"sessionId"`
	Iteration          int               `json:"iteration"`
	DraftContent       string            `json:"draftContent"`
	UserFeedback       string            `json:"userFeedback,omitempty"`
	UserFeedbackAt     *time.Time        `json:"userFeedbackAt,omitempty"`
	AllReviewersApproved bool            `json:"allReviewersApproved"`
	ReviewerSummaries  []ReviewerSummary `json:"reviewerSummaries"`
	CreatedAt          time.Time         `json:"createdAt"`
}
