package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusOpen, JobStatusInProgress, true},
		{JobStatusOpen, JobStatusCancelled, true},
		{JobStatusOpen, JobStatusCompleted, false},
		{JobStatusInProgress, JobStatusInProgress, true},
		{JobStatusInProgress, JobStatusCompleted, true},
		{JobStatusInProgress, JobStatusOpen, false},
		{JobStatusInProgress, JobStatusCancelled, false},
		{JobStatusCompleted, JobStatusInProgress, false},
		{JobStatusCompleted, JobStatusOpen, false},
		{JobStatusCancelled, JobStatusOpen, false},
		{JobStatusCancelled, JobStatusInProgress, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNoJobTransitionReturnsToOpen(t *testing.T) {
	for _, from := range []JobStatus{JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled} {
		if from.CanTransitionTo(JobStatusOpen) {
			t.Fatalf("%s must not transition back to open", from)
		}
	}
}

func TestContractStatusTransitions(t *testing.T) {
	if !ContractActive.CanTransitionTo(ContractCompleted) || !ContractActive.CanTransitionTo(ContractTerminated) {
		t.Fatalf("active contracts must be completable and terminable")
	}
	if ContractCompleted.CanTransitionTo(ContractTerminated) || ContractTerminated.CanTransitionTo(ContractActive) {
		t.Fatalf("finished contracts must be terminal")
	}
}

func TestReviewStatusDecision(t *testing.T) {
	if ReviewPending.Decision() {
		t.Fatalf("pending is not a decision")
	}
	if !ReviewAccepted.Decision() || !ReviewRejected.Decision() {
		t.Fatalf("accepted and rejected are decisions")
	}
	if ReviewStatus("maybe").Decision() {
		t.Fatalf("unknown status is not a decision")
	}
}

func TestContractParties(t *testing.T) {
	client, freelancer, stranger := uuid.New(), uuid.New(), uuid.New()
	c := Contract{ClientID: client, FreelancerID: freelancer}
	if !c.HasParty(client) || !c.HasParty(freelancer) || c.HasParty(stranger) {
		t.Fatalf("HasParty mismatch")
	}
	if c.Counterpart(client) != freelancer || c.Counterpart(freelancer) != client {
		t.Fatalf("Counterpart mismatch")
	}
	if c.Counterpart(stranger) != uuid.Nil {
		t.Fatalf("stranger has no counterpart")
	}
}

func TestFindColumnMismatchesSorted(t *testing.T) {
	got := findColumnMismatches([]string{"id", "zeta", "rate", "alpha"}, []string{"id", "rate"})
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Fatalf("findColumnMismatches = %v", got)
	}
}
