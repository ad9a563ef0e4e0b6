package models

import "time"

// Stats are the hunter attributes shown on the profile. The ledger never changes them.
type Stats struct {
	Strength     int `json:"strength" db:"strength"`
	Endurance    int `json:"endurance" db:"endurance"`
	Agility      int `json:"agility" db:"agility"`
	Intelligence int `json:"intelligence" db:"intelligence"`
	Willpower    int `json:"willpower" db:"willpower"`
}

// UserProfile is the persisted game state of a single user
type UserProfile struct {
	ID             string    `json:"id" db:"id"`
	ExternalID     string    `json:"-" db:"external_id"` // Opaque identity key, e.g. "tg:12345"
	Name           string    `json:"name" db:"name"`
	Level          int       `json:"level" db:"level"`
	Experience     int       `json:"experience" db:"experience"`
	Stats          `json:"stats"`
	SetupCompleted bool      `json:"setupCompleted" db:"setup_completed"`
	LastLogin      time.Time `json:"lastLogin" db:"last_login"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`

	Goals        []Goal        `json:"goals" db:"-"`
	DailyQuests  []DailyQuest  `json:"dailyQuests" db:"-"`
	Achievements []Achievement `json:"achievements" db:"-"`
}

// DisplayName returns the name to address the user by
func (p *UserProfile) DisplayName() string {
	if p.Name == "" {
		return "Hunter"
	}
	return p.Name
}

// ActiveGoals returns goals with status active, in profile order
func (p *UserProfile) ActiveGoals() []Goal {
	var active []Goal
	for _, g := range p.Goals {
		if g.Status == GoalActive {
			active = append(active, g)
		}
	}
	return active
}

// DefaultStats returns the attribute values a new profile starts with
func DefaultStats() Stats {
	return Stats{
		Strength:     10,
		Endurance:    10,
		Agility:      10,
		Intelligence: 10,
		Willpower:    10,
	}
}
