package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/monarchbot/internal/excel"
	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

// Constants for callback data
const (
	callbackShowQuests   = "show_quests"
	callbackShowProfile  = "show_profile"
	callbackQuestDone    = "quest_done:"
	callbackSetupArea    = "setup_area:"
	callbackSetupDone    = "setup_done"
	callbackCancelAction = "cancel_action"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(ctx, message)
	case "help":
		b.reply(message.Chat.ID, helpText)
	case "profile":
		err = b.handleProfile(ctx, message.Chat.ID, message.From)
	case "goals":
		err = b.handleGoals(ctx, message)
	case "goal":
		err = b.handleGoalProgress(ctx, message)
	case "quests":
		err = b.handleQuests(ctx, message.Chat.ID, message.From)
	case "done":
		err = b.handleDone(ctx, message)
	case "achievements":
		err = b.handleAchievements(ctx, message)
	case "setup":
		err = b.handleSetup(ctx, message)
	case "export":
		err = b.handleExport(ctx, message)
	case "import":
		b.setState(message.From.ID, &UserState{State: stateAwaitingImport})
		b.reply(message.Chat.ID, "Send me an .xlsx or .csv file. Columns: title, category, description, target date (YYYY-MM-DD). The first row is treated as a header.")
	case "cancel":
		b.clearState(message.From.ID)
		b.reply(message.Chat.ID, "Cancelled.")
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
	return err
}

func (b *Bot) profileFor(ctx context.Context, from *tgbotapi.User) (*models.UserProfile, bool, error) {
	p, created, err := b.store.Resolve(ctx, ExternalID(from.ID), from.FirstName)
	if err != nil {
		return nil, false, fmt.Errorf("resolve profile: %w", err)
	}
	return p, created, nil
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	p, created, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	now := b.now()
	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText(p, leveling.Summarize(p, now), created, p.LastLogin, now))
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	b.send(msg)
	return nil
}

func mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "⚔️ Profile", CallbackData: callbackShowProfile},
			{Text: "⚡ Quests", CallbackData: callbackShowQuests},
		},
	}
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	p, _, err := b.profileFor(ctx, from)
	if err != nil {
		return err
	}
	b.reply(chatID, formatProfile(p, leveling.Summarize(p, b.now())))
	return nil
}

func (b *Bot) handleGoals(ctx context.Context, message *tgbotapi.Message) error {
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	b.reply(message.Chat.ID, formatGoals(p.Goals))
	return nil
}

func (b *Bot) handleAchievements(ctx context.Context, message *tgbotapi.Message) error {
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	b.reply(message.Chat.ID, formatAchievements(p.Achievements))
	return nil
}

var goalStatusWords = map[string]models.GoalStatus{
	"pause":  models.GoalPaused,
	"resume": models.GoalActive,
}

// handleGoalProgress handles "/goal <n> <progress>" and "/goal <n> pause|resume"
func (b *Bot) handleGoalProgress(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		b.reply(message.Chat.ID, "Usage: /goal <n> <progress> or /goal <n> pause|resume, for example /goal 1 50")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		b.reply(message.Chat.ID, "The goal number must be a number.")
		return nil
	}
	status, byStatus := goalStatusWords[strings.ToLower(args[1])]
	progress, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
	if !byStatus && err != nil {
		b.reply(message.Chat.ID, "Progress must be a number, or one of pause and resume.")
		return nil
	}

	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	if n < 1 || n > len(p.Goals) {
		b.reply(message.Chat.ID, fmt.Sprintf("There is no goal %d. Use /goals to see the list.", n))
		return nil
	}

	var g *models.Goal
	if byStatus {
		g, err = b.store.SetGoalStatus(ctx, p.ID, p.Goals[n-1].ID, status)
	} else {
		g, err = b.store.UpdateGoalProgress(ctx, p.ID, p.Goals[n-1].ID, progress)
	}
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if g.Status == models.GoalPaused {
		b.reply(message.Chat.ID, fmt.Sprintf("⏸ Paused: %s", g.Title))
		return nil
	}
	if g.Status == models.GoalCompleted {
		b.reply(message.Chat.ID, fmt.Sprintf("🏁 Goal conquered: %s. Set your sights on the next one.", g.Title))
		return nil
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🎯 %s: %d%%", g.Title, g.Progress))
	return nil
}

func (b *Bot) handleQuests(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	p, _, err := b.profileFor(ctx, from)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, formatQuests(p.DailyQuests))
	var rows [][]MenuButton
	for i, q := range p.DailyQuests {
		if q.Completed {
			continue
		}
		rows = append(rows, []MenuButton{{
			Text:         fmt.Sprintf("✅ %d. %s", i+1, truncate(q.Title, 40)),
			CallbackData: callbackQuestDone + q.ID,
		}})
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = createKeyboard(rows)
	}
	b.send(msg)
	return nil
}

// handleDone handles "/done <n>"
func (b *Bot) handleDone(ctx context.Context, message *tgbotapi.Message) error {
	n, err := strconv.Atoi(strings.TrimSpace(message.CommandArguments()))
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /done <n>, where n is the quest number from /quests")
		return nil
	}
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	if n < 1 || n > len(p.DailyQuests) {
		b.reply(message.Chat.ID, fmt.Sprintf("There is no quest %d. Use /quests to see the list.", n))
		return nil
	}
	return b.completeQuest(ctx, message.Chat.ID, p.ID, p.DailyQuests[n-1].ID)
}

func (b *Bot) completeQuest(ctx context.Context, chatID int64, userID, questID string) error {
	res, err := b.ledger.CompleteQuest(ctx, userID, questID)
	if errors.Is(err, models.ErrQuestNotFound) {
		b.reply(chatID, "That quest no longer exists.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("complete quest: %w", err)
	}
	b.reply(chatID, formatCompletion(res))
	if res.LeveledUp() {
		b.celebrate(ctx, chatID, userID, res.After.Level)
	}
	return nil
}

// celebrate announces a level up and records its achievement
func (b *Bot) celebrate(ctx context.Context, chatID int64, userID string, level int) {
	title, description, icon := levelUpAchievement(level)
	if _, err := b.store.AddAchievement(ctx, userID, title, description, icon); err != nil {
		b.log.Error("add achievement failed", "user_id", userID, "level", level, "error", err)
	}
	b.reply(chatID, levelUpText(level))
}

func (b *Bot) handleSetup(ctx context.Context, message *tgbotapi.Message) error {
	if _, _, err := b.profileFor(ctx, message.From); err != nil {
		return err
	}
	if name := strings.TrimSpace(message.CommandArguments()); name != "" {
		st := &UserState{State: stateChoosingAreas, Name: name, Areas: map[string]bool{}}
		b.setState(message.From.ID, st)
		b.sendAreaPicker(message.Chat.ID, st)
		return nil
	}
	b.setState(message.From.ID, &UserState{State: stateAwaitingName})
	b.reply(message.Chat.ID, "What should I call you, hunter?")
	return nil
}

func (b *Bot) sendAreaPicker(chatID int64, st *UserState) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s, which areas do you want to grow in? Pick any, then press Done.", st.Name))
	msg.ReplyMarkup = areaKeyboard(st.Areas)
	b.send(msg)
}

func areaKeyboard(selected map[string]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]MenuButton
	for _, a := range ledger.SetupAreas {
		label := a.Title
		if selected[a.Key] {
			label = "✅ " + label
		}
		rows = append(rows, []MenuButton{{Text: label, CallbackData: callbackSetupArea + a.Key}})
	}
	rows = append(rows, []MenuButton{
		{Text: "Done", CallbackData: callbackSetupDone},
		{Text: "Cancel", CallbackData: callbackCancelAction},
	})
	return createKeyboard(rows)
}

// toggleArea flips one area of a pending setup and returns a copy of the selection
func (b *Bot) toggleArea(userID int64, key string) (map[string]bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.userStates[userID]
	if !ok || st.State != stateChoosingAreas {
		return nil, false
	}
	st.Areas[key] = !st.Areas[key]
	st.Timestamp = b.now()
	out := make(map[string]bool, len(st.Areas))
	for k, v := range st.Areas {
		out[k] = v
	}
	return out, true
}

func (b *Bot) finishSetup(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	st, ok := b.state(from.ID)
	if !ok || st.State != stateChoosingAreas {
		b.reply(chatID, "No setup in progress. Use /setup to start.")
		return nil
	}
	b.clearState(from.ID)

	p, _, err := b.profileFor(ctx, from)
	if err != nil {
		return err
	}
	var areas []ledger.SetupArea
	for _, a := range ledger.SetupAreas {
		if st.Areas[a.Key] {
			areas = append(areas, a)
		}
	}
	o, err := b.ledger.CompleteSetup(ctx, p.ID, st.Name, areas)
	if err != nil {
		return fmt.Errorf("complete setup: %w", err)
	}

	text := fmt.Sprintf("Profile set, %s. Your journey begins.", st.Name)
	if status := formatOutcome(o); status != "" {
		text += "\n" + status
	}
	b.reply(chatID, text)
	if o.LeveledUp() {
		b.celebrate(ctx, chatID, p.ID, o.After.Level)
	}
	return nil
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) error {
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := excel.Export(&buf, p, b.now()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("hunter-%s.xlsx", b.now().Format("2006-01-02")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Your progress report"
	b.send(doc)
	return nil
}

// handleMessage routes plain messages: pending setup or import input first, chat otherwise
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if st, ok := b.state(message.From.ID); ok {
		switch st.State {
		case stateAwaitingName:
			name := strings.TrimSpace(message.Text)
			if name == "" {
				b.reply(message.Chat.ID, "Send me your name as text.")
				return
			}
			next := &UserState{State: stateChoosingAreas, Name: name, Areas: map[string]bool{}}
			b.setState(message.From.ID, next)
			b.sendAreaPicker(message.Chat.ID, next)
			return
		case stateAwaitingImport:
			if message.Document == nil {
				b.reply(message.Chat.ID, "Please send the goal list as a file, or /cancel.")
				return
			}
			b.clearState(message.From.ID)
			if err := b.importGoals(ctx, message); err != nil {
				b.log.Error("import failed", "user_id", message.From.ID, "error", err)
				b.reply(message.Chat.ID, "I couldn't read that file. Make sure it is an .xlsx or .csv goal list.")
			}
			return
		}
	}

	if strings.TrimSpace(message.Text) == "" {
		return
	}
	if err := b.handleChat(ctx, message); err != nil {
		b.log.Error("chat failed", "user_id", message.From.ID, "error", err)
		b.reply(message.Chat.ID, "Failed to reach the Shadow Monarch. Please try again.")
	}
}

// handleChat sends the coach reply first, then applies it to the profile
func (b *Bot) handleChat(ctx context.Context, message *tgbotapi.Message) error {
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}
	log := b.log.With("user_id", p.ID)

	history, err := b.store.RecentConversations(ctx, p.ID, b.config.HistoryLimit)
	if err != nil {
		log.Warn("load history failed", "error", err)
		history = nil
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		log.Debug("send typing failed", "error", err)
	}
	reply := b.coach.Reply(ctx, p, leveling.Summarize(p, b.now()), history, message.Text)
	b.reply(message.Chat.ID, reply)

	if err := b.store.SaveConversation(ctx, p.ID, message.Text, reply); err != nil {
		log.Warn("save conversation failed", "error", err)
	}

	o, err := b.ledger.ProcessReply(ctx, p.ID, reply)
	if err != nil {
		log.Error("process reply failed", "error", err)
		if ledger.IsProfileNotFound(err) {
			b.reply(message.Chat.ID, "I can't find your hunter profile, so nothing from this reply was recorded. Use /start to create one.")
		}
		return nil
	}
	if status := formatOutcome(o); status != "" {
		b.reply(message.Chat.ID, status)
	}
	if o.LeveledUp() {
		b.celebrate(ctx, message.Chat.ID, p.ID, o.After.Level)
	}
	return nil
}

func (b *Bot) importGoals(ctx context.Context, message *tgbotapi.Message) error {
	doc := message.Document
	if int64(doc.FileSize) > b.config.MaxImportBytes {
		b.reply(message.Chat.ID, "That file is too large.")
		return nil
	}
	p, _, err := b.profileFor(ctx, message.From)
	if err != nil {
		return err
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return fmt.Errorf("get file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.config.MaxImportBytes))
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	res, err := excel.ImportGoals(ctx, bytes.NewReader(data), excel.FormatFromName(doc.FileName), excel.DefaultImportConfig(), p, b.store)
	if err != nil {
		return err
	}
	b.log.Info("goals imported", "user_id", p.ID, "created", res.Created, "skipped", res.Skipped, "errors", len(res.Errors))
	b.reply(message.Chat.ID, formatImport(res.Created, res.Skipped, res.Errors))
	return nil
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.From == nil || callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Debug("answer callback failed", "error", err)
	}

	chatID := callback.Message.Chat.ID
	var err error
	switch data := callback.Data; {
	case data == callbackShowQuests:
		err = b.handleQuests(ctx, chatID, callback.From)
	case data == callbackShowProfile:
		err = b.handleProfile(ctx, chatID, callback.From)
	case strings.HasPrefix(data, callbackQuestDone):
		var p *models.UserProfile
		if p, _, err = b.profileFor(ctx, callback.From); err == nil {
			err = b.completeQuest(ctx, chatID, p.ID, strings.TrimPrefix(data, callbackQuestDone))
		}
	case strings.HasPrefix(data, callbackSetupArea):
		selected, ok := b.toggleArea(callback.From.ID, strings.TrimPrefix(data, callbackSetupArea))
		if !ok {
			b.reply(chatID, "No setup in progress. Use /setup to start.")
			return
		}
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, areaKeyboard(selected))
		if _, err := b.api.Request(edit); err != nil {
			b.log.Debug("edit keyboard failed", "error", err)
		}
	case data == callbackSetupDone:
		err = b.finishSetup(ctx, chatID, callback.From)
	case data == callbackCancelAction:
		b.clearState(callback.From.ID)
		b.reply(chatID, "Cancelled.")
	}
	if err != nil {
		b.log.Error("callback failed", "data", callback.Data, "error", err)
		b.reply(chatID, "Something went wrong in the System. Please try again.")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
