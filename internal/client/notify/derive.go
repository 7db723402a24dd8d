// Package notify derives the transient notification feed from the current
// inbox and memo snapshots. Derivation is a pure function: it never touches
// the mirror or the network, and identical snapshots always produce an
// identical, identically-ordered list.
package notify

import (
	"sort"

	"github.com/fmchong/intramail/internal/client/models"
)

const (
	titleUrgent       = "Urgent Message"
	titleConfidential = "Confidential Message"
	titleActionNeeded = "Action Required"
)

// Derive recomputes the notification list for accountID from in-hand
// snapshots. Rules, applied independently and then merged:
//
//  1. unread inbox messages of Urgent or Confidential priority addressed to
//     the account, keyed by message id;
//  2. memos requiring acknowledgment where the account is absent from the
//     acknowledgment set, keyed by memo id.
//
// The merged list is sorted newest first; ties keep stable input order.
func Derive(inbox, memos []models.Message, accountID string) []models.Notification {
	var result []models.Notification

	for _, m := range inbox {
		if m.IsRead || (m.Priority != models.PriorityUrgent && m.Priority != models.PriorityConfidential) {
			continue
		}
		if !addressed(m, accountID) {
			continue
		}
		title := titleUrgent
		if m.Priority == models.PriorityConfidential {
			title = titleConfidential
		}
		result = append(result, models.Notification{
			ID:          "notif_" + m.ID,
			Title:       title,
			Message:     m.Subject,
			Type:        models.NotifyMessage,
			ReferenceID: m.ID,
			Timestamp:   m.CreatedAt,
		})
	}

	for _, m := range memos {
		if !m.RequiresAcknowledgement || m.Acknowledged(accountID) {
			continue
		}
		result = append(result, models.Notification{
			ID:          "notif_" + m.ID,
			Title:       titleActionNeeded,
			Message:     "Please acknowledge circular: " + m.Subject,
			Type:        models.NotifyMemo,
			ReferenceID: m.ID,
			Timestamp:   m.CreatedAt,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

// addressed expands broadcast aliases without knowing the account's
// department: the inbox snapshot is already scoped to the account, so any
// department alias present in it targets this account.
func addressed(m models.Message, accountID string) bool {
	for _, r := range m.RecipientIDs {
		if r == accountID || r == models.BroadcastAllStaff {
			return true
		}
		if len(r) > len(models.DeptAliasPrefix) && r[:len(models.DeptAliasPrefix)] == models.DeptAliasPrefix {
			return true
		}
	}
	return false
}
