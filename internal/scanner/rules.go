package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind says what a rule extracts.
type Kind int

const (
	KindGoal Kind = iota
	KindQuest
)

func (k Kind) String() string {
	switch k {
	case KindGoal:
		return "goal"
	case KindQuest:
		return "quest"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DefaultTerminators end a captured phrase.
const DefaultTerminators = ".!?"

// Rule is one trigger-phrase pattern group.
//
// A rule matches a trigger phrase followed by one or more colons or whitespace,
// then captures MinCapture..MaxCapture non-terminator runes up to a terminator.
// The trimmed capture is kept only when its length lies strictly between
// MinKeep and MaxKeep.
type Rule struct {
	ID          string
	Kind        Kind
	Triggers    []string
	MinCapture  int
	MaxCapture  int
	MinKeep     int
	MaxKeep     int
	Terminators string
}

// Compile builds the case-insensitive matcher for r.
func (r Rule) Compile() (*regexp.Regexp, error) {
	if len(r.Triggers) == 0 {
		return nil, fmt.Errorf("rule %q: no triggers", r.ID)
	}
	if r.MinCapture < 1 || r.MaxCapture < r.MinCapture {
		return nil, fmt.Errorf("rule %q: invalid capture bounds %d..%d", r.ID, r.MinCapture, r.MaxCapture)
	}
	terms := r.Terminators
	if terms == "" {
		terms = DefaultTerminators
	}

	alts := make([]string, len(r.Triggers))
	for i, t := range r.Triggers {
		alts[i] = regexp.QuoteMeta(t)
	}
	class := regexp.QuoteMeta(terms)
	expr := fmt.Sprintf(`(?i)(?:%s)[:\s]+([^%s]{%d,%d})[%s]`,
		strings.Join(alts, "|"), class, r.MinCapture, r.MaxCapture, class)

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.ID, err)
	}
	return re, nil
}

// DefaultRules is the ordered rule set used for coach replies.
var DefaultRules = []Rule{
	{
		ID:   "advisory",
		Kind: KindGoal,
		Triggers: []string{
			"goal", "suggest", "should", "try to", "work on", "focus on",
			"aim to", "improve", "develop", "build", "strengthen",
		},
		MinCapture: 10, MaxCapture: 100, MinKeep: 5, MaxKeep: 100,
	},
	{
		ID:         "directive",
		Kind:       KindGoal,
		Triggers:   []string{"let's", "you need to", "you could", "consider", "start"},
		MinCapture: 10, MaxCapture: 80, MinKeep: 5, MaxKeep: 100,
	},
	{
		ID:         "recommendation",
		Kind:       KindGoal,
		Triggers:   []string{"I recommend", "my advice is"},
		MinCapture: 10, MaxCapture: 80, MinKeep: 5, MaxKeep: 100,
	},
	{
		ID:         "habit",
		Kind:       KindQuest,
		Triggers:   []string{"daily", "every day", "each day", "habit"},
		MinCapture: 10, MaxCapture: 80, MinKeep: 5, MaxKeep: 80,
	},
	{
		ID:         "routine",
		Kind:       KindQuest,
		Triggers:   []string{"do this", "make it a", "try to do"},
		MinCapture: 10, MaxCapture: 80, MinKeep: 5, MaxKeep: 80,
	},
}
