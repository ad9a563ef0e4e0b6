package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

// Sheet names of an exported workbook
const (
	SheetProfile      = "Profile"
	SheetGoals        = "Goals"
	SheetQuests       = "Quests"
	SheetAchievements = "Achievements"
)

const timeLayout = "2006-01-02 15:04"

var (
	goalHeader        = []interface{}{"Title", "Category", "Status", "Progress", "Target date", "Created"}
	questHeader       = []interface{}{"Title", "Difficulty", "Reward XP", "Completed", "Streak", "Last completed"}
	achievementHeader = []interface{}{"Title", "Description", "Icon", "Unlocked"}
)

// Export writes p as an xlsx workbook with one sheet per collection
func Export(w io.Writer, p *models.UserProfile, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the profile sheet
	f.SetSheetName("Sheet1", SheetProfile)
	s := leveling.Summarize(p, now)
	profileRows := [][]interface{}{
		{"Name", p.DisplayName()},
		{"Level", s.Level},
		{"Experience", s.Experience},
		{"XP to next level", s.ExperienceToNext},
		{"Active goals", s.ActiveGoals},
		{"Completed goals", s.CompletedGoals},
		{"Daily quests", s.TotalQuests},
		{"Completed today", s.CompletedToday},
		{"Achievements", s.Achievements},
		{"Days on journey", s.DaysSinceStart},
		{"Strength", p.Strength},
		{"Endurance", p.Endurance},
		{"Agility", p.Agility},
		{"Intelligence", p.Intelligence},
		{"Willpower", p.Willpower},
	}
	if err := writeRows(f, SheetProfile, profileRows); err != nil {
		return err
	}

	goals := [][]interface{}{goalHeader}
	for _, g := range p.Goals {
		goals = append(goals, []interface{}{
			g.Title, string(g.Category), string(g.Status), g.Progress, formatTime(g.TargetDate), g.CreatedAt.Format(timeLayout),
		})
	}
	if err := writeSheet(f, SheetGoals, goals); err != nil {
		return err
	}

	quests := [][]interface{}{questHeader}
	for _, q := range p.DailyQuests {
		quests = append(quests, []interface{}{
			q.Title, string(q.Difficulty), q.ExperienceReward, yesNo(q.Completed), q.Streak, formatTime(q.LastCompleted),
		})
	}
	if err := writeSheet(f, SheetQuests, quests); err != nil {
		return err
	}

	achievements := [][]interface{}{achievementHeader}
	for _, a := range p.Achievements {
		achievements = append(achievements, []interface{}{a.Title, a.Description, a.Icon, a.UnlockedAt.Format(timeLayout)})
	}
	if err := writeSheet(f, SheetAchievements, achievements); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
