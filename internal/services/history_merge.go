package services

import (
	"time"

	"pressroom_ai_go_backend/internal/models"
)

// MergeConversationHistory reconciles the client-submitted history with the
// store-persisted history into one bounded sequence.
//
// Store history is ground truth for anything already committed and seeds the
// result verbatim. Client entries are appended only when their timestamp is
// absent from the store set (retried submissions carry a timestamp the store
// already has). A client entry whose content equals the last merged entry is
// skipped; this guard intentionally checks only the immediate neighbor, it is
// a cheap double-submission guard and not a full dedup. Entries without a
// timestamp get the wall-clock time at merge time. The result keeps the last
// maxMerged entries, dropping from the front.
func MergeConversationHistory(clientHistory, storeHistory []models.Message, maxMerged int) []models.Message {
	merged := make([]models.Message, 0, len(storeHistory)+len(clientHistory))

	storeTimestamps := make(map[string]struct{}, len(storeHistory))
	for _, msg := range storeHistory {
		merged = append(merged, models.Message{
			Role:      roleOf(msg),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
		if msg.Timestamp != "" {
			storeTimestamps[msg.Timestamp] = struct{}{}
		}
	}

	for _, msg := range clientHistory {
		if msg.Timestamp != "" {
			if _, seen := storeTimestamps[msg.Timestamp]; seen {
				continue
			}
		}
		if len(merged) > 0 && merged[len(merged)-1].Content == msg.Content {
			continue
		}
		timestamp := msg.Timestamp
		if timestamp == "" {
			timestamp = NowTimestamp()
		}
		merged = append(merged, models.Message{
			Role:      roleOf(msg),
			Content:   msg.Content,
			Timestamp: timestamp,
		})
	}

	if maxMerged > 0 && len(merged) > maxMerged {
		merged = merged[len(merged)-maxMerged:]
	}
	return merged
}

// NowTimestamp returns the canonical message timestamp format (UTC, ISO-8601).
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func roleOf(msg models.Message) string {
	if msg.Role != "" {
		return msg.Role
	}
	if msg.Type != "" {
		return msg.Type
	}
	return "user"
}
