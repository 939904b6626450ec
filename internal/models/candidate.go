package models

import (
	"fmt"
	"strings"
)

// CandidateProfile represents the intake form data for one candidate.
// It is created once at intake submission and never mutated afterwards.
type CandidateProfile struct {
	FullName          string   `json:"fullName" db:"full_name"`
	Email             string   `json:"email" db:"email"`
	Phone             string   `json:"phone" db:"phone"`
	YearsOfExperience int      `json:"yearsOfExperience" db:"years_of_experience"`
	DesiredPosition   string   `json:"desiredPosition" db:"desired_position"`
	Location          string   `json:"location" db:"location"`
	TechStack         []string `json:"techStack" db:"tech_stack"`
}

// Validate checks the intake fields required before a session may start.
func (p *CandidateProfile) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if p.YearsOfExperience < 0 {
		return fmt.Errorf("years of experience must be non-negative")
	}
	if strings.TrimSpace(p.DesiredPosition) == "" {
		return fmt.Errorf("desired position is required")
	}
	if len(p.TechStack) == 0 {
		return fmt.Errorf("tech stack must not be empty")
	}
	return nil
}

// Anonymized returns a copy with PII fields masked. Reports and archive
// rows use this copy; the in-session profile keeps the original values.
func (p *CandidateProfile) Anonymized() CandidateProfile {
	out := *p
	out.FullName = maskName(p.FullName)
	out.Email = maskEmail(p.Email)
	out.Phone = maskPhone(p.Phone)
	return out
}

func maskName(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		if len(part) > 1 {
			parts[i] = part[:1] + strings.Repeat("*", len(part)-1)
		}
	}
	return strings.Join(parts, " ")
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return "***"
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}

func maskPhone(phone string) string {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= 2 {
		return "***"
	}
	// Keep the last two digits visible.
	var b strings.Builder
	seen := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			seen++
			if seen > digits-2 {
				b.WriteRune(r)
			} else {
				b.WriteRune('*')
			}
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
