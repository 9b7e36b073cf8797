package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
	"github.com/mmcdole/culler/internal/tui/styles"
)

// renderScreen draws tabs, the card and the footer
func (m Model) renderScreen() string {
	header := m.renderHeader()
	body := lipgloss.Place(m.Width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.renderBody())
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
}

// renderHeader draws the photo/video tabs and the trash button
func (m Model) renderHeader() string {
	var tabs []string
	for _, kind := range domain.Kinds() {
		label := strings.ToUpper(kind.Plural()[:1]) + kind.Plural()[1:]
		if v := m.Views[kind]; v.State != review.StateUninitialized {
			label = fmt.Sprintf("%s %d", label, v.Remaining+boolInt(v.Current != nil))
		}
		style := styles.InactiveTabStyle
		if kind == m.Active {
			style = styles.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	right := m.renderTrashButton()
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderTrashButton() string {
	v := m.current()
	switch {
	case v.Flushing:
		return styles.TrashStyle.Render(m.Spinner.View() + " emptying trash")
	case v.Trash > 0:
		return styles.TrashStyle.Render(fmt.Sprintf("🗑 %d  x to empty", v.Trash))
	default:
		return styles.TrashEmptyStyle.Render("🗑 0")
	}
}

// renderBody draws the current card or a status line
func (m Model) renderBody() string {
	v := m.current()

	if m.Denied != nil {
		return lipgloss.JoinVertical(lipgloss.Center,
			styles.ErrorStyle.Render(StatusDenied),
			styles.DimStyle.Render(m.Denied.Error()),
		)
	}

	switch v.State {
	case review.StateUninitialized, review.StateLoading:
		return m.Spinner.View() + " " + styles.SubtitleStyle.Render(v.Status)
	case review.StateEmpty:
		return styles.TitleStyle.Render(v.Status)
	}

	if v.Loading() {
		return m.Spinner.View() + " " + styles.DimStyle.Render("Loading "+v.Current.GetKind().String()+"...")
	}

	return m.renderCard(v)
}

// renderCard draws the rendition with its caption, shifted and tinted while
// a decision animates.
func (m Model) renderCard(v review.View) string {
	style := styles.CardStyle
	var badge string
	switch m.Nudge.Dir {
	case -1:
		style = styles.CardDeleteStyle.MarginRight(2 * NudgeCols)
		badge = styles.DeleteBadge.Render("✗ DELETE")
	case 1:
		style = styles.CardKeepStyle.MarginLeft(2 * NudgeCols)
		badge = styles.KeepBadge.Render("✓ KEEP")
	}

	lines := []string{v.Rendition.Art, styles.SubtitleStyle.Render(v.Rendition.Caption)}
	if v.IsVideo() {
		hint := "▶ p to play"
		if v.Stream != nil {
			hint = "▶ playing in external player"
		}
		lines = append(lines, styles.AccentStyle.Render(hint))
	}

	card := style.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	if badge == "" {
		return card
	}
	return lipgloss.JoinVertical(lipgloss.Center, badge, card)
}

// renderFooter draws counts, the status message and short help
func (m Model) renderFooter() string {
	v := m.current()

	counts := styles.DimStyle.Render(fmt.Sprintf("%d left · %d reviewed", v.Remaining, v.Seen))

	status := ""
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		status = styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	case m.StatusMsg != "":
		status = styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	case v.Err != nil:
		status = styles.ErrorStyle.Render(styles.Truncate(v.Err.Error(), m.Width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, counts, status, m.Help.ShortHelpView(Keys.ShortHelp()))
}

// renderHelp draws the full key reference
func (m Model) renderHelp() string {
	title := styles.ModalTitleStyle.Render("Keys")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.Help.FullHelpView(Keys.FullHelp()))
}

// renderConfirmFlush asks before the irreversible delete
func (m Model) renderConfirmFlush() string {
	v := m.current()
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("Delete %d %s?", v.Trash, noun(m.Active, v.Trash)))
	body := "Files are removed from the library. This cannot be undone."
	prompt := styles.AccentStyle.Render("y") + " delete   " + styles.DimStyle.Render("n/esc") + " cancel"
	return lipgloss.JoinVertical(lipgloss.Left, title, body, "", prompt)
}

// renderModal centers content in a bordered box
func (m Model) renderModal(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(content))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
