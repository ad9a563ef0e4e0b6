// Package scanner pulls goal and daily quest suggestions out of coach replies.
package scanner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

var xpMarker = regexp.MustCompile(`(?i)\+(\d+)\s*XP`)

// Candidate is an extracted goal suggestion that has not been persisted.
type Candidate struct {
	Rule     string
	Text     string
	Category models.GoalCategory
}

// QuestCandidate is an extracted daily quest suggestion that has not been persisted.
type QuestCandidate struct {
	Rule             string
	Text             string
	Category         string
	Difficulty       models.QuestDifficulty
	ExperienceReward int
}

// Result is everything found in one reply.
type Result struct {
	Goals    []Candidate
	Quests   []QuestCandidate
	XPReward int // from the first "+N XP" marker, 0 when absent
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Goals) == 0 && len(r.Quests) == 0 && r.XPReward == 0
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Scanner applies a rule table to text. It is safe for concurrent use.
type Scanner struct {
	rules      []compiledRule
	byID       map[string]int
	categories []CategoryKeywords
}

// New compiles the rules. A nil categories table uses DefaultCategories.
func New(rules []Rule, categories []CategoryKeywords) (*Scanner, error) {
	if categories == nil {
		categories = DefaultCategories
	}
	s := &Scanner{
		byID:       make(map[string]int, len(rules)),
		categories: categories,
	}
	for _, r := range rules {
		if _, dup := s.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		re, err := r.Compile()
		if err != nil {
			return nil, err
		}
		s.byID[r.ID] = len(s.rules)
		s.rules = append(s.rules, compiledRule{Rule: r, re: re})
	}
	return s, nil
}

// Default returns a scanner over DefaultRules and DefaultCategories.
func Default() *Scanner {
	s, err := New(DefaultRules, DefaultCategories)
	if err != nil {
		panic(err)
	}
	return s
}

// Rule returns the rule registered under id.
func (s *Scanner) Rule(id string) (Rule, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i].Rule, true
}

// Scan extracts candidates from text. It is a pure function of text.
// Overlapping suggestions from different rules are all returned.
func (s *Scanner) Scan(text string) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		return res
	}

	for _, r := range s.rules {
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			phrase, ok := keep(m[1], r.MinKeep, r.MaxKeep)
			if !ok {
				continue
			}
			switch r.Kind {
			case KindGoal:
				res.Goals = append(res.Goals, Candidate{
					Rule:     r.ID,
					Text:     capitalize(phrase),
					Category: Classify(phrase, s.categories),
				})
			case KindQuest:
				res.Quests = append(res.Quests, QuestCandidate{
					Rule:             r.ID,
					Text:             capitalize(phrase),
					Category:         leveling.SuggestedQuestCategory,
					Difficulty:       leveling.SuggestedQuestDifficulty,
					ExperienceReward: leveling.SuggestedQuestXP,
				})
			}
		}
	}

	res.XPReward = ExtractXP(text)
	return res
}

// ExtractXP returns the amount of the first "+N XP" marker in text, or 0.
func ExtractXP(text string) int {
	m := xpMarker.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func keep(raw string, minKeep, maxKeep int) (string, bool) {
	phrase := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(phrase)
	if n <= minKeep || n >= maxKeep {
		return "", false
	}
	return phrase, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
