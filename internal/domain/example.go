package domain

// DemoExample is a real request paired with a precomputed model answer.
type DemoExample struct {
	ID               int
	ResidentPriority string
	ResidentCategory string
	Comment          string
	AIPriority       string
	AICategory       string
	SuggestedActions string
}

// Ticket returns the resident side of the example.
func (e DemoExample) Ticket() Ticket {
	return Ticket{
		ID:       e.ID,
		Priority: e.ResidentPriority,
		Category: e.ResidentCategory,
		Comment:  e.Comment,
	}
}

// ServiceRequest is a dataset row used by the batch labeler.
type ServiceRequest struct {
	ID        int
	Priority  string
	Category  string
	Comment   string
	StartedAt string
}
