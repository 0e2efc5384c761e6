package models

import (
	"encoding/json"
	"time"
)

// DailyUserCount is an append-only per-day bucket of distinct user ids.
// Users is a JSON array column; UserCount is always the set size, so
// re-tracking the same user on the same day is a no-op.
type DailyUserCount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	UserCount int       `gorm:"not null;default:0" json:"userCount"`
	Users     string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UserSet decodes the Users column. A missing or corrupt column reads
// as an empty set rather than failing the request.
func (d *DailyUserCount) UserSet() []string {
	if d.Users == "" {
		return nil
	}
	var users []string
	if err := json.Unmarshal([]byte(d.Users), &users); err != nil {
		return nil
	}
	return users
}

// AddUser unions userID into the bucket and recomputes UserCount.
// Returns false when the user was already present.
func (d *DailyUserCount) AddUser(userID string) bool {
	users := d.UserSet()
	for _, u := range users {
		if u == userID {
			return false
		}
	}
	users = append(users, userID)
	raw, err := json.Marshal(users)
	if err != nil {
		return false
	}
	d.Users = string(raw)
	d.UserCount = len(users)
	return true
}

// DayOf normalizes t to local midnight to align with the DATE column.
func DayOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
