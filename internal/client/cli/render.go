package cli

import (
	"fmt"
	"strings"

	"github.com/fmchong/intramail/internal/client/models"
)

func formatMessageLine(m models.Message) string {
	marker := " "
	if !m.IsRead {
		marker = "*"
	}
	extra := ""
	if m.Priority == models.PriorityUrgent || m.Priority == models.PriorityConfidential {
		extra = " [" + string(m.Priority) + "]"
	}
	if m.RequiresAcknowledgement {
		extra += fmt.Sprintf(" (ack: %d)", len(m.AcknowledgedBy))
	}
	return fmt.Sprintf("%s %-10s %s  %s%s",
		marker, m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.Subject, extra)
}

func formatMessage(m models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", m.SenderID)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(m.RecipientIDs, ", "))
	fmt.Fprintf(&b, "Date: %s\n", m.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	if m.Priority != models.PriorityNormal && m.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", m.Priority)
	}
	b.WriteString("\n" + m.Body + "\n")
	for _, att := range m.Attachments {
		fmt.Fprintf(&b, "\n[attachment] %s (%s) %s", att.Name, att.Size, att.URL)
	}
	return b.String()
}
