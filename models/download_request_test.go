package models

import "testing"

func TestRequestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	if !StatusApproved.Terminal() {
		t.Fatalf("approved must be terminal")
	}
	if !StatusRejected.Terminal() {
		t.Fatalf("rejected must be terminal")
	}
}

func TestRequestStatusValid(t *testing.T) {
	for _, status := range []RequestStatus{StatusPending, StatusApproved, StatusRejected} {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if RequestStatus("archived").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}
