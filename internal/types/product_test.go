package types

import "testing"

func TestReactionAllowed(t *testing.T) {
	for _, emoji := range AllowedReactions {
		if !ReactionAllowed(emoji) {
			t.Fatalf("expected %q to be allowed", emoji)
		}
	}
	for _, emoji := range []string{"", "🍕", "heart", "❤"} {
		if ReactionAllowed(emoji) {
			t.Fatalf("expected %q to be rejected", emoji)
		}
	}
}

func TestProductPriorityValid(t *testing.T) {
	for _, p := range []ProductPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("expected priority %q to be valid", p)
		}
	}
	if ProductPriority("urgent").Valid() {
		t.Fatalf("expected unknown priority to be invalid")
	}
}

func TestProductStatusValid(t *testing.T) {
	for _, s := range []ProductStatus{StatusWanted, StatusPurchased, StatusUnavailable} {
		if !s.Valid() {
			t.Fatalf("expected status %q to be valid", s)
		}
	}
	if ProductStatus("gone").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}

func TestCollaboratorRoleValid(t *testing.T) {
	for _, r := range []CollaboratorRole{RoleViewer, RoleEditor, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("expected role %q to be valid", r)
		}
	}
	if CollaboratorRole("owner").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}
