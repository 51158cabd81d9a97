package bot

import (
	"fmt"
	"strings"

	"github.com/example/wordbot/pkg/models"
)

const helpText = "👋 Welcome to wordbot!\n\n" +
	"I keep your vocabulary fresh with spaced repetition.\n\n" +
	"🔸 Review:\n" +
	"/review - Start a review session\n" +
	"/stats - Show your progress\n\n" +
	"📚 Words:\n" +
	"/words [letter|page] - Browse the word list\n" +
	"/search <prefix> - Find a word\n" +
	"/add <id> - Start learning a word\n\n" +
	"⚙️ Settings:\n" +
	"/daily <5-50> - New words per session\n" +
	"/interval <2-8> - Hours between reminder checks\n" +
	"/remind - Check for due words now"

// maxListed keeps word lists inside one Telegram message
const maxListed = 50

func formatCard(item models.ReviewItem, reveal bool, completed, total int) string {
	var sb strings.Builder
	sb.WriteString("📝 " + item.Text)
	if item.Pronunciation != "" {
		sb.WriteString("  " + item.Pronunciation)
	}
	if reveal {
		sb.WriteString("\n\n" + item.Definition)
	}
	if total > 0 {
		sb.WriteString("\n\n" + formatProgress(completed, total))
	}
	return sb.String()
}

// formatProgress renders completed/total. completed can pass total when
// forgotten words come back, the bar is capped.
func formatProgress(completed, total int) string {
	const width = 10
	filled := 0
	if total > 0 {
		filled = completed * width / total
	}
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("%s %d/%d", strings.Repeat("▓", filled)+strings.Repeat("░", width-filled), completed, total)
}

func formatComplete(completed int) string {
	return fmt.Sprintf("🎉 Session complete! You reviewed %s.", pluralWords(completed))
}

func formatStats(stats models.DashboardStats) string {
	return fmt.Sprintf("📊 Your progress\n\n"+
		"Words in list: %d\n"+
		"Learning: %d\n"+
		"Mastered: %d\n"+
		"Due now: %d",
		stats.TotalMaster, stats.TotalLearning, stats.Mastered, stats.DueToday)
}

func formatReminder(dueCount int) string {
	return fmt.Sprintf("⏰ You have %s to review!", pluralWords(dueCount))
}

func formatWordList(title string, words []models.MasterWord) string {
	if len(words) == 0 {
		return title + "\n\nNo words found."
	}
	var sb strings.Builder
	sb.WriteString(title + "\n")
	for i, w := range words {
		if i == maxListed {
			fmt.Fprintf(&sb, "\n…and %d more", len(words)-maxListed)
			break
		}
		fmt.Fprintf(&sb, "\n%d. %s - %s", w.ID, w.Text, w.Definition)
	}
	return sb.String()
}

func pluralWords(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}
