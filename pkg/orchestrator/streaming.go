package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
)

// streamPersonaTurn drives one Creator-or-Reviewer streaming call to
// completion: it publishes MessageStarted, forwards every token delta
// as MessageChunk, accumulates the full text, applies the degenerate-
// loop guard, and publishes MessageCompleted with whatever text was
// actually produced (truncated, if a loop was detected).
//
// Grounded on this corpus's stream-collection idiom: accumulate into a
// strings.Builder, dispatch on chunk kind, forward deltas to a
// publisher in real time rather than only at the end.
func streamPersonaTurn(ctx context.Context, hub *events.Hub, router *provider.Router, userEmail string, sessionID uuid.UUID, personaID string, iteration int, req provider.CompletionRequest) (content string, err error) {
	messageID := uuid.New()
	hub.Publish(ctx, sessionID, models.EventMessageStarted, events.MessageStartedPayload{
		SessionID: sessionID, MessageID: messageID, PersonaID: personaID, Iteration: iteration,
	})

	chunks, err := router.StreamCompletion(ctx, userEmail, req)
	if err != nil {
		return "", fmt.Errorf("starting stream for %s: %w", personaID, err)
	}

	var buf strings.Builder
	sinceLastCheck := 0
	canceled := false
	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()

readLoop:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				break readLoop
			}
			switch chunk.Kind {
			case provider.ChunkKindToken:
				buf.WriteString(chunk.Text)
				sinceLastCheck += len(chunk.Text)
				hub.Publish(ctx, sessionID, models.EventMessageChunk, events.MessageChunkPayload{
					SessionID: sessionID, MessageID: messageID, Delta: chunk.Text,
				})
				if sinceLastCheck >= loopCheckInterval && buf.Len() >= loopMinPatternLen*(loopMinRepeats+1) {
					sinceLastCheck = 0
					if detected, truncateAt := detectTextLoop(buf.String()); detected {
						truncated := buf.String()[:truncateAt]
						buf.Reset()
						buf.WriteString(truncated)
						canceled = true
						cancelStream()
					}
				}
			case provider.ChunkKindError:
				return "", fmt.Errorf("streaming %s: %w", personaID, chunk.Err)
			case provider.ChunkKindFinishReason, provider.ChunkKindUsage:
				// no-op for the deliberation loop; usage is not persisted per-message.
			}
		case <-streamCtx.Done():
			if canceled {
				break readLoop
			}
			return buf.String(), ctx.Err()
		}
	}

	final := buf.String()
	hub.Publish(ctx, sessionID, models.EventMessageCompleted, events.MessageCompletedPayload{
		SessionID: sessionID, MessageID: messageID, Content: final,
	})
	return final, nil
}
