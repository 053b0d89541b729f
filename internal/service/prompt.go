package service

import (
	"fmt"
	"strings"

	"skillboard/internal/models"
)

// BuildAssistantPrompt asks for a roadmap and appends the matching association rules
func BuildAssistantPrompt(query string, rows []models.Rule) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a roadmap for %s", strings.TrimSpace(query)))

	if len(rows) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\nConsider the following skill association rules from our job market data:\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  - %s => %s (support %.2f, confidence %.2f, lift %.2f)\n",
			models.DisplaySet(r.Antecedents), models.DisplaySet(r.Consequents),
			r.Support, r.Confidence, r.Lift))
	}
	sb.WriteString("\nUse these associations to recommend which skills to learn next and in what order.")
	return sb.String()
}
