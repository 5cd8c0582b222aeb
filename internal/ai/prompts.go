package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/xelth-com/eckassets/internal/models"
)

// AssetContext is everything the prompts know about an asset
type AssetContext struct {
	Asset          models.Asset
	ComplaintCount int64
	Maintenance    []models.MaintenanceSchedule // newest first, at most 5
	History        []models.AssetHistory        // newest first, at most 10
	AgeYears       int
}

const suggestionsInstruction = `Respond in Bahasa Indonesia with ONLY a JSON object of exactly this shape:
{
  "feasibility": "is the asset still fit for use, and why",
  "maintenancePrediction": "when and what maintenance is likely needed next",
  "replacementRecommendation": "whether and when the asset should be replaced"
}`

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func writeAssetBlock(sb *strings.Builder, c AssetContext) {
	a := c.Asset
	fmt.Fprintf(sb, "ASSET\n")
	fmt.Fprintf(sb, "- Name: %s\n", a.Name)
	fmt.Fprintf(sb, "- Category: %s\n", a.Category)
	fmt.Fprintf(sb, "- Condition: %s\n", a.Condition)
	fmt.Fprintf(sb, "- Owner: %s\n", a.Owner)
	fmt.Fprintf(sb, "- Description: %s\n", deref(a.Description))
	fmt.Fprintf(sb, "- Registered: %s (age %d years)\n", day(a.CreatedAt), c.AgeYears)
	fmt.Fprintf(sb, "- Complaints filed: %d\n", c.ComplaintCount)
}

func writeMaintenanceBlock(sb *strings.Builder, c AssetContext) {
	fmt.Fprintf(sb, "\nRECENT MAINTENANCE (%d)\n", len(c.Maintenance))
	if len(c.Maintenance) == 0 {
		sb.WriteString("- none recorded\n")
	}
	for _, m := range c.Maintenance {
		status := "planned"
		if m.IsCompleted {
			status = "completed"
			if m.CompletedAt != nil {
				status += " " + day(*m.CompletedAt)
			}
		}
		fmt.Fprintf(sb, "- %s: %s [%s] %s\n", day(m.ScheduledDate), m.Title, status, deref(m.Description))
	}
}

func writeHistoryBlock(sb *strings.Builder, c AssetContext) {
	fmt.Fprintf(sb, "\nRECENT HISTORY (%d)\n", len(c.History))
	if len(c.History) == 0 {
		sb.WriteString("- none recorded\n")
	}
	for _, h := range c.History {
		fmt.Fprintf(sb, "- %s %s: %s -> %s %s\n", day(h.CreatedAt), h.ChangeType, deref(h.OldValue), deref(h.NewValue), deref(h.Description))
	}
}

// SuggestionsPrompt asks for the combined three-field JSON answer.
func SuggestionsPrompt(c AssetContext) string {
	var sb strings.Builder
	sb.WriteString("You are an IT asset management assistant for an office inventory.\n")
	sb.WriteString("Assess the asset below.\n\n")
	writeAssetBlock(&sb, c)
	writeMaintenanceBlock(&sb, c)
	writeHistoryBlock(&sb, c)
	sb.WriteString("\n")
	sb.WriteString(suggestionsInstruction)
	return sb.String()
}

// ConditionPrompt asks for a free-text assessment of the current condition.
func ConditionPrompt(c AssetContext) string {
	var sb strings.Builder
	sb.WriteString("You are an IT asset management assistant.\n")
	sb.WriteString("Analyse the current condition of this asset and whether it is still fit for use.\n\n")
	writeAssetBlock(&sb, c)
	writeHistoryBlock(&sb, c)
	sb.WriteString("\nAnswer briefly in Bahasa Indonesia.")
	return sb.String()
}

// MaintenancePrompt asks when the next maintenance is due.
func MaintenancePrompt(c AssetContext) string {
	var sb strings.Builder
	sb.WriteString("You are an IT asset management assistant.\n")
	sb.WriteString("Predict when this asset will next need maintenance and what should be done.\n\n")
	writeAssetBlock(&sb, c)
	writeMaintenanceBlock(&sb, c)
	sb.WriteString("\nAnswer briefly in Bahasa Indonesia.")
	return sb.String()
}

// ReplacementPrompt asks whether the asset should be replaced.
func ReplacementPrompt(c AssetContext) string {
	var sb strings.Builder
	sb.WriteString("You are an IT asset management assistant.\n")
	sb.WriteString("Recommend whether this asset should be replaced, and when.\n\n")
	writeAssetBlock(&sb, c)
	writeMaintenanceBlock(&sb, c)
	sb.WriteString("\nAnswer briefly in Bahasa Indonesia.")
	return sb.String()
}
