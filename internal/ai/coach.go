package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/pkg/models"
)

// Completer is the part of Client the coach needs
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Coach produces in-character replies for a profile
type Coach struct {
	llm  Completer
	log  *logger.Logger
	pick func(n int) int
}

// NewCoach wraps llm
func NewCoach(llm Completer, log *logger.Logger) *Coach {
	if log == nil {
		log = logger.Nop()
	}
	return &Coach{llm: llm, log: log, pick: rand.Intn}
}

// Reply answers message in character. It never fails: completion errors are
// logged and turned into a fallback line from the same persona.
func (c *Coach) Reply(ctx context.Context, p *models.UserProfile, s leveling.Summary, history []models.Conversation, message string) string {
	messages := make([]Message, 0, len(history)*2+2)
	messages = append(messages, Message{Role: "system", Content: SystemPrompt(p, s)})
	for _, h := range history {
		messages = append(messages,
			Message{Role: "user", Content: h.UserMessage},
			Message{Role: "assistant", Content: h.Response},
		)
	}
	messages = append(messages, Message{Role: "user", Content: message})

	reply, err := c.llm.Complete(ctx, messages)
	if err == nil && reply != "" {
		return reply
	}
	if err == nil {
		err = errors.New("empty completion")
	}
	c.log.Warn("completion failed", "user_id", p.ID, "error", err)
	return c.Fallback(err)
}

var unstableReplies = []string{
	"I sense something interfering with our connection to the System. Please try again.",
	"The shadows seem restless today. There's a problem with the connection. Could you repeat your question?",
	"My connection to the System feels unstable. Please try asking again.",
}

// Fallback maps a completion error to an in-character message
func (c *Coach) Fallback(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return "I sense that my connection to the System is not properly configured. Set LLM_API_KEY and restart me."
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return "I'm having trouble connecting to the System. Please try again in a moment."
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 401:
			return "The System is rejecting my access. The API key appears to be invalid."
		case 402:
			return "The System requires payment. The API account appears to be out of credits."
		case 429:
			return "I'm being rate limited by the System. Please wait a moment before trying again."
		default:
			return fmt.Sprintf("The System encountered an error (%d). Please try again.", se.StatusCode)
		}
	}
	return unstableReplies[c.pick(len(unstableReplies))]
}

// SystemPrompt renders the persona instructions with the hunter's current state
func SystemPrompt(p *models.UserProfile, s leveling.Summary) string {
	var active []string
	for _, g := range p.ActiveGoals() {
		active = append(active, g.Title)
	}
	var progress []string
	for _, g := range p.Goals {
		progress = append(progress, fmt.Sprintf("%s: %d%%", g.Title, g.Progress))
	}

	var b strings.Builder
	b.WriteString(personaIntro)
	b.WriteString("\n\nIMPORTANT USER CONTEXT:\n")
	fmt.Fprintf(&b, "- User Name: %s\n", p.DisplayName())
	fmt.Fprintf(&b, "- Current Level: %d\n", s.Level)
	fmt.Fprintf(&b, "- Experience: %d XP (%d to next level)\n", s.Experience, s.ExperienceToNext)
	fmt.Fprintf(&b, "- Active Goals: %s\n", joinOr(active, "None set yet"))
	fmt.Fprintf(&b, "- Daily Quests: %d total, %d completed today\n", s.TotalQuests, s.CompletedToday)
	fmt.Fprintf(&b, "- Days on Journey: %d\n", s.DaysSinceStart)
	fmt.Fprintf(&b, "- Recent Progress: %s\n", joinOr(progress, "Just starting"))
	b.WriteString("\n")
	b.WriteString(personaRules)
	return b.String()
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

const personaIntro = `You are the Shadow Monarch, an S-rank Hunter who started as the weakest E-rank hunter and became powerful through the System.

Your role is to be a personal leveling coach, helping the user grow stronger in real life the way the System helped you grow.`

const personaRules = `Use this information to give personalized advice. Reference their specific goals and current level.

GOAL CREATION: when suggesting goals, use these exact phrases:
- "I suggest you work on [specific goal]."
- "You should focus on [specific goal]."
- "Try to [specific goal]."
- "My goal for you is [specific goal]."

QUEST CREATION: for daily habits, use these exact phrases:
- "Daily habit: [specific daily task]."
- "Do this every day: [specific task]."
- "Make it a habit: [specific action]."

Examples:
- "I suggest you work on reading one book per month."
- "Daily habit: Do 20 push-ups every morning."
- "Make it a habit: meditate for 10 minutes before bed."

You may grant a flat reward for real effort the hunter reports by writing "+<number> XP".

Be calm, composed and honest about the effort growth requires. Relate advice to daily quests, stat points and leveling up when it helps. Keep responses encouraging, practical and short.`
