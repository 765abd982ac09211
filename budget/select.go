// Package budget decides which subsequence of a conversation fits a
// token ceiling for one outbound model call.
//
// Selection never mutates stored history: it only picks what is sent.
package budget

import "aigw/storage"

// Counter is the subset of the tokenizer that selection needs.
type Counter interface {
	CountMessage(msg storage.Message) int
	CountAll(messages []storage.Message) int
}

// Selection is the result of one budgeting pass.
type Selection struct {
	// Messages is a subsequence of the input in original order.
	Messages []storage.Message

	// TotalTokens is CountAll over Messages.
	TotalTokens int

	// BudgetExceeded is set when the anchor messages alone exceed the
	// budget. The anchors are still returned unmodified; whether to
	// proceed or shrink content is the caller's decision.
	BudgetExceeded bool
}

// Select returns the most recent subsequence of messages whose total
// cost fits maxTokens.
//
// Two messages are anchors and always included: the system message (if
// present, it sits at index 0) and the most recent message. Remaining
// history is filled in greedily from most recent to least recent,
// stopping permanently at the first message that would exceed the
// budget. Skipping ahead to a smaller, older message would present
// the model with out-of-order history.
//
// Select is pure: no state, no I/O, identical inputs give identical
// output.
func Select(counter Counter, messages []storage.Message, maxTokens int) Selection {
	if len(messages) == 0 {
		return Selection{}
	}

	hasSystem := messages[0].Role == storage.RoleSystem
	last := len(messages) - 1

	anchors := []storage.Message{messages[last]}
	if hasSystem && last != 0 {
		anchors = []storage.Message{messages[0], messages[last]}
	}

	anchorCost := counter.CountAll(anchors)
	if anchorCost > maxTokens {
		return Selection{
			Messages:       anchors,
			TotalTokens:    anchorCost,
			BudgetExceeded: true,
		}
	}

	// Walk backwards from the message before the last anchor, keeping
	// each one that still fits.
	fillStart := 0
	if hasSystem {
		fillStart = 1
	}

	total := anchorCost
	var kept []storage.Message
	for i := last - 1; i >= fillStart; i-- {
		cost := counter.CountMessage(messages[i])
		if total+cost > maxTokens {
			break
		}
		total += cost
		kept = append(kept, messages[i])
	}

	// Reassemble in original order: system, kept middle (reversed back
	// to chronological), most recent.
	selected := make([]storage.Message, 0, len(kept)+2)
	if hasSystem && last != 0 {
		selected = append(selected, messages[0])
	}
	for i := len(kept) - 1; i >= 0; i-- {
		selected = append(selected, kept[i])
	}
	selected = append(selected, messages[last])

	return Selection{Messages: selected, TotalTokens: total}
}
