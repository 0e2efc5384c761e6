package models

import (
	"testing"
	"time"
)

func TestAddUserIsSetUnion(t *testing.T) {
	var bucket DailyUserCount

	if !bucket.AddUser("auth0|a") {
		t.Error("first add should report a change")
	}
	if bucket.AddUser("auth0|a") {
		t.Error("repeat add should be a no-op")
	}
	if !bucket.AddUser("auth0|b") {
		t.Error("distinct add should report a change")
	}
	if bucket.UserCount != 2 {
		t.Errorf("count = %d, want 2", bucket.UserCount)
	}
	if got := bucket.UserSet(); len(got) != 2 {
		t.Errorf("set = %v", got)
	}
}

func TestUserSetToleratesCorruptColumn(t *testing.T) {
	bucket := DailyUserCount{Users: "not-json"}
	if got := bucket.UserSet(); got != nil {
		t.Errorf("set = %v, want nil", got)
	}
	if !bucket.AddUser("auth0|a") || bucket.UserCount != 1 {
		t.Error("corrupt column should reset to a fresh set")
	}
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 59, 59, 0, time.Local)
	day := DayOf(ts)
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 {
		t.Errorf("day = %v, want midnight", day)
	}
	if day.Year() != 2025 || day.Month() != 3 || day.Day() != 14 {
		t.Errorf("day = %v", day)
	}
	if !DayOf(day).Equal(day) {
		t.Error("DayOf must be idempotent")
	}
}
