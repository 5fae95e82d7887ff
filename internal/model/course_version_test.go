package model

import "testing"

func TestVersionStatusTransitions(t *testing.T) {
	cases := []struct {
		from    VersionStatus
		to      VersionStatus
		allowed bool
	}{
		{VersionDraft, VersionPublished, true},
		{VersionDraft, VersionArchived, true},
		{VersionPublished, VersionArchived, true},
		{VersionPublished, VersionDraft, false},
		{VersionPublished, VersionPublished, false},
		{VersionArchived, VersionDraft, false},
		{VersionArchived, VersionPublished, false},
		{VersionArchived, VersionArchived, false},
		{VersionDraft, VersionDraft, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestVersionStatusValid(t *testing.T) {
	for _, s := range []VersionStatus{VersionDraft, VersionPublished, VersionArchived} {
		if !s.Valid() {
			t.Errorf("expected %s to be a valid status", s)
		}
	}
	if VersionStatus("deleted").Valid() {
		t.Error("unknown status should not be valid")
	}
}
