package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

const helpText = `Commands:
/profile - Your level, XP and stats
/goals - Your goals
/goal <n> <progress> - Set progress of goal n (0-100)
/goal <n> pause|resume - Pause or resume goal n
/quests - Today's daily quests
/done <n> - Complete quest n
/achievements - Unlocked achievements
/setup - Set your name and focus areas
/export - Download your progress as a spreadsheet
/import - Upload goals from a spreadsheet

Anything else you write goes to the Shadow Monarch.`

const newHunterText = "Welcome, future hunter. I'm the Shadow Monarch, and I'm here to help you level up in real life. " +
	"Just like the System guided my growth from the weakest E-rank, I'll help you become stronger every day. " +
	"Use /setup so I can understand your situation, or simply tell me what you want to improve."

// welcomeText greets a hunter on /start. lastLogin is the login before this one.
func welcomeText(p *models.UserProfile, s leveling.Summary, created bool, lastLogin, now time.Time) string {
	if created || (len(p.Goals) == 0 && len(p.DailyQuests) == 0) {
		return newHunterText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome back, %s! ", p.DisplayName())
	switch days := int(now.Sub(lastLogin).Hours() / 24); {
	case days <= 0:
		fmt.Fprintf(&b, "Good to see you again today. You're currently Level %d with %d XP.", s.Level, s.Experience)
	case days == 1:
		fmt.Fprintf(&b, "I see you were here yesterday. You're Level %d. Let's continue building your strength.", s.Level)
	default:
		fmt.Fprintf(&b, "It's been %d days since our last session. You're Level %d. Ready to get back on track?", days, s.Level)
	}
	if s.ActiveGoals > 0 {
		fmt.Fprintf(&b, " You have %d active goals we're working on.", s.ActiveGoals)
	}
	b.WriteString(" How can I help you level up today?")
	return b.String()
}

// progressBar renders the share of the current level already earned
func progressBar(experience int) string {
	const cells = 10
	within := leveling.XPPerLevel - leveling.ToNextLevel(experience)
	filled := within * cells / leveling.XPPerLevel
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", cells-filled) + "]"
}

func formatProfile(p *models.UserProfile, s leveling.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚔️ Hunter %s\n", p.DisplayName())
	fmt.Fprintf(&b, "Level %d · %d XP (%d to next level)\n", s.Level, s.Experience, s.ExperienceToNext)
	fmt.Fprintf(&b, "%s\n", progressBar(s.Experience))
	fmt.Fprintf(&b, "STR %d · END %d · AGI %d · INT %d · WIL %d\n",
		p.Strength, p.Endurance, p.Agility, p.Intelligence, p.Willpower)
	fmt.Fprintf(&b, "Goals: %d active, %d completed\n", s.ActiveGoals, s.CompletedGoals)
	fmt.Fprintf(&b, "Quests: %d/%d completed today\n", s.CompletedToday, s.TotalQuests)
	fmt.Fprintf(&b, "Achievements: %d\n", s.Achievements)
	fmt.Fprintf(&b, "Day %d of your journey", s.DaysSinceStart)
	return b.String()
}

func formatGoals(goals []models.Goal) string {
	if len(goals) == 0 {
		return "No goals yet. Tell me what you want to achieve and I'll suggest some."
	}
	var b strings.Builder
	b.WriteString("🎯 Goals\n")
	for i, g := range goals {
		fmt.Fprintf(&b, "%d. [%s] %s: %d%%", i+1, g.Category, g.Title, g.Progress)
		if g.Status != models.GoalActive {
			fmt.Fprintf(&b, " (%s)", g.Status)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUpdate one with /goal <n> <progress>")
	return b.String()
}

func formatQuests(quests []models.DailyQuest) string {
	if len(quests) == 0 {
		return "No daily quests yet. Ask me for a daily habit to build."
	}
	var b strings.Builder
	b.WriteString("⚡ Daily quests\n")
	for i, q := range quests {
		mark := "⬜"
		if q.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%d. %s %s (+%d XP", i+1, mark, q.Title, q.ExperienceReward)
		if q.Streak > 0 {
			fmt.Fprintf(&b, ", streak %d", q.Streak)
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAchievements(list []models.Achievement) string {
	if len(list) == 0 {
		return "No achievements yet. Keep leveling."
	}
	var b strings.Builder
	b.WriteString("🏆 Achievements\n")
	for _, a := range list {
		fmt.Fprintf(&b, "%s %s (%s)\n", a.Icon, a.Title, a.UnlockedAt.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatOutcome summarizes what a reply changed. It is empty when nothing changed.
func formatOutcome(o *ledger.Outcome) string {
	if o == nil {
		return ""
	}
	var lines []string
	for _, g := range o.CreatedGoals {
		lines = append(lines, "🎯 New goal: "+g.Title)
	}
	for _, q := range o.CreatedQuests {
		lines = append(lines, "⚡ New daily quest: "+q.Title)
	}
	if o.XPAwarded > 0 {
		lines = append(lines, fmt.Sprintf("+%d XP · Level %d (%d XP)", o.XPAwarded, o.After.Level, o.After.Experience))
	}
	return strings.Join(lines, "\n")
}

func formatCompletion(c *ledger.QuestCompletion) string {
	if c.AlreadyCompleted {
		return fmt.Sprintf("\"%s\" is already completed today.", c.Quest.Title)
	}
	return fmt.Sprintf("✅ Quest complete: %s\n+%d XP · streak %d · Level %d (%d XP)",
		c.Quest.Title, c.Reward, c.Quest.Streak, c.After.Level, c.After.Experience)
}

func levelUpText(level int) string {
	return fmt.Sprintf("🔥 LEVEL UP! You reached Level %d. The System acknowledges your growth.", level)
}

// levelUpAchievement is recorded once per level reached
func levelUpAchievement(level int) (title, description, icon string) {
	return fmt.Sprintf("Level %d Reached", level), fmt.Sprintf("Reached level %d through consistent effort", level), "⚔️"
}

func reminderText(p *models.UserProfile, open int) string {
	noun := "quests"
	if open == 1 {
		noun = "quest"
	}
	return fmt.Sprintf("%s, you still have %d daily %s open today. A hunter who skips training falls behind. Use /quests to finish them.",
		p.DisplayName(), open, noun)
}

func formatImport(created, skipped int, errs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📥 Imported %d goals, skipped %d duplicates.", created, skipped)
	if len(errs) > 0 {
		fmt.Fprintf(&b, "\n%d rows had problems:", len(errs))
		for i, e := range errs {
			if i == 5 {
				fmt.Fprintf(&b, "\n…and %d more", len(errs)-5)
				break
			}
			b.WriteString("\n" + e)
		}
	}
	return b.String()
}
