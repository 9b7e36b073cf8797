package tui

// Layout rows around the card
const (
	HeaderHeight = 2 // Tabs + blank line
	FooterHeight = 3 // Counts, status, help
	NudgeCols    = 4 // Card offset while a decision animates
	MinBodyRows  = 3
)

// bodyHeight returns the rows available for the card
func (m Model) bodyHeight() int {
	return max(MinBodyRows, m.Height-HeaderHeight-FooterHeight)
}
