package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank lines only", "  \n\n  ", ""},
		{"heading", "## Launch plan overview for the spring release", "Launch plan overview for the spring release"},
		{"bullets", "- first item\n• second item\n* third item", "first item\nsecond item\nthird item"},
		{"short label dropped", "Summary:\nThe team ships in May.", "The team ships in May."},
		{"long line ending with colon kept", "These are the items the team agreed to deliver:", "These are the items the team agreed to deliver:"},
		{"questions dropped", "Would you like more detail?\nBudget is fixed.", "Budget is fixed."},
		{"strong", "The **deadline** is __firm__.", "The deadline is firm."},
		{"emphasis", "Use *three* _phases_.", "Use three phases."},
		{"label after heading strip", "### Key points:\nScope is frozen.", "Scope is frozen."},
		{"mixed", "# Summary\n\n- **Goal**: launch\n\n\n- Risks: low\nAnything else?", "Summary\nGoal: launch\nRisks: low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
