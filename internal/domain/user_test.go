package domain

import (
	"testing"
	"time"
)

func TestIsBanned(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		ban  BanState
		want bool
	}{
		{"no ban", BanState{}, false},
		{"permanent", BanState{Active: true}, true},
		{"active until future", BanState{Active: true, Until: &future}, true},
		{"expired", BanState{Active: true, Until: &past}, false},
		{"inactive with until", BanState{Until: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Ban: tt.ban}
			if got := u.IsBanned(now); got != tt.want {
				t.Fatalf("IsBanned = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsMuted(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		mute MuteState
		want bool
	}{
		{"no mute", MuteState{}, false},
		{"active", MuteState{Until: &future}, true},
		{"expired", MuteState{Until: &past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Mute: tt.mute}
			if got := u.IsMuted(now); got != tt.want {
				t.Fatalf("IsMuted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"abc", "scout_1", "A1_b2_C3", "aaaaaaaaaaaaaaaaaaaa"}
	for _, name := range valid {
		if !ValidUsername(name) {
			t.Errorf("ValidUsername(%q) = false, want true", name)
		}
	}
	invalid := []string{"", "ab", "aaaaaaaaaaaaaaaaaaaaa", "has space", "кириллица", "dash-name", "dot.name"}
	for _, name := range invalid {
		if ValidUsername(name) {
			t.Errorf("ValidUsername(%q) = true, want false", name)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "scout_1"},
		{RoleModerator, "scout_1 (Moderator)"},
		{RoleAdmin, "scout_1 (Administrator)"},
	}
	for _, tt := range tests {
		u := &User{Username: "scout_1", Role: tt.role}
		if got := u.DisplayName(); got != tt.want {
			t.Errorf("DisplayName for %s = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestRoleIsStaff(t *testing.T) {
	if RoleUser.IsStaff() {
		t.Error("user must not be staff")
	}
	if !RoleModerator.IsStaff() || !RoleAdmin.IsStaff() {
		t.Error("moderator and admin are staff")
	}
	if RoleSystem.IsStaff() {
		t.Error("system sentinel is not staff")
	}
}

func TestValidFaction(t *testing.T) {
	if !ValidFaction(FactionHanza) || !ValidFaction(FactionPolis) || !ValidFaction(FactionNone) {
		t.Error("known factions must validate")
	}
	if ValidFaction("atlantis") || ValidFaction("") {
		t.Error("unknown factions must not validate")
	}
}
