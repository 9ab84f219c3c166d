package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Answers holds free-form quiz answers keyed by question (q1..q15).
type Answers map[string]string

// Value implements the driver.Valuer interface for Answers
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for Answers
func (a *Answers) Scan(value interface{}) error {
	if value == nil {
		*a = Answers{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

type Participant struct {
	ID                 int64     `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	Name               string    `json:"name" db:"name"`
	StudentID          string    `json:"student_id" db:"student_id"`
	Role               string    `json:"role" db:"role"`
	PreferredLanguage  string    `json:"preferred_language" db:"preferred_language"`
	IDE                string    `json:"ide" db:"ide"`
	ThemePreference    string    `json:"theme_preference" db:"theme_preference"`
	ApproachScore      int       `json:"approach_score" db:"approach_score"`
	ExperienceLevel    string    `json:"experience_level" db:"experience_level"`
	Frameworks         []string  `json:"frameworks" db:"frameworks"`
	OS                 string    `json:"os" db:"os"`
	AvailabilityHours  int       `json:"availability_hours" db:"availability_hours"`
	CommitmentType     string    `json:"commitment_type" db:"commitment_type"`
	CommunicationStyle string    `json:"communication_style" db:"communication_style"`
	CollaborationStyle string    `json:"collaboration_style" db:"collaboration_style"`
	Answers            Answers   `json:"answers" db:"answers"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

const RoleDuo = "duo"

// NormalizeEmail is the canonical form used for every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Merge copies every non-empty field of src onto p. Identity and timestamps are kept.
func (p *Participant) Merge(src *Participant) {
	mergeString(&p.Name, src.Name)
	mergeString(&p.StudentID, src.StudentID)
	mergeString(&p.Role, src.Role)
	mergeString(&p.PreferredLanguage, src.PreferredLanguage)
	mergeString(&p.IDE, src.IDE)
	mergeString(&p.ThemePreference, src.ThemePreference)
	mergeString(&p.ExperienceLevel, src.ExperienceLevel)
	mergeString(&p.OS, src.OS)
	mergeString(&p.CommitmentType, src.CommitmentType)
	mergeString(&p.CommunicationStyle, src.CommunicationStyle)
	mergeString(&p.CollaborationStyle, src.CollaborationStyle)
	if src.ApproachScore != 0 {
		p.ApproachScore = src.ApproachScore
	}
	if src.AvailabilityHours != 0 {
		p.AvailabilityHours = src.AvailabilityHours
	}
	if len(src.Frameworks) > 0 {
		p.Frameworks = append([]string(nil), src.Frameworks...)
	}
	if len(src.Answers) > 0 {
		if p.Answers == nil {
			p.Answers = Answers{}
		}
		for k, v := range src.Answers {
			if v != "" {
				p.Answers[k] = v
			}
		}
	}
}

// Clone returns a deep copy so callers can't alias store internals.
func (p *Participant) Clone() *Participant {
	c := *p
	if p.Frameworks != nil {
		c.Frameworks = append([]string(nil), p.Frameworks...)
	}
	if p.Answers != nil {
		c.Answers = make(Answers, len(p.Answers))
		for k, v := range p.Answers {
			c.Answers[k] = v
		}
	}
	return &c
}

// RoleDisplay returns the human label for the participant's role.
func (p *Participant) RoleDisplay() string {
	switch p.Role {
	case "":
		return "Developer"
	case "fullstack":
		return "Full Stack"
	case "aiml":
		return "AI / ML"
	}
	r, size := utf8.DecodeRuneInString(p.Role)
	return string(unicode.ToUpper(r)) + p.Role[size:]
}

// ThemeDisplay returns the human label for the theme preference.
func (p *Participant) ThemeDisplay() string {
	if p.ThemePreference == "dark" {
		return "Dark Mode"
	}
	return "Light Mode"
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
