package models

// Role is the single authoritative account type of a user.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFreelancer
}

// JobStatus moves open -> in_progress -> completed, with cancelled reachable
// only from open.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusInProgress, JobStatusCompleted},
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a job may move from s to next.
// in_progress -> in_progress is allowed so that accepting a second
// application on a running job is a no-op rather than an error.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// ReviewStatus is shared by applications, inquiries and submissions:
// pending is the only state with outgoing transitions.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// Decision reports whether s is a valid target of a review.
func (s ReviewStatus) Decision() bool {
	return s == ReviewAccepted || s == ReviewRejected
}

func (s ReviewStatus) Terminal() bool {
	return s == ReviewAccepted || s == ReviewRejected
}

type ContractStatus string

const (
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
)

func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	return s == ContractActive && (next == ContractCompleted || next == ContractTerminated)
}

type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

func (b BudgetType) Valid() bool {
	return b == BudgetFixed || b == BudgetHourly
}

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceEntry, ExperienceIntermediate, ExperienceExpert:
		return true
	}
	return false
}
