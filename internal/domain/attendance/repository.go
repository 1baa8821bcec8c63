package attendance

import "context"

// DutySessionRepository defines data access for duty sessions.
// All methods include companyID parameter to prevent cross-company data access.
type DutySessionRepository interface {
	// CreateIfNoneOpen inserts the session unless the employee already has an open one,
	// in which case it returns ErrAlreadyOnDuty.
	CreateIfNoneOpen(ctx context.Context, session DutySession) (DutySession, error)

	// GetOpenSession returns ErrNotOnDuty when the employee has no open session.
	GetOpenSession(ctx context.Context, employeeID string, companyID string) (DutySession, error)

	// Close persists the punch-off fields of an open session.
	Close(ctx context.Context, session DutySession) error

	List(ctx context.Context, companyID string, filter DutySessionFilter) ([]DutySession, int64, error)

	// ListOpen returns every open session across companies, oldest shift date first.
	ListOpen(ctx context.Context) ([]DutySession, error)
}

type BreakSessionRepository interface {
	// CreateIfNoneOpen returns ErrBreakAlreadyOpen when the duty session already has an open break.
	CreateIfNoneOpen(ctx context.Context, b BreakSession) (BreakSession, error)

	// GetOpenBreak returns ErrNoOpenBreak when the duty session has no open break.
	GetOpenBreak(ctx context.Context, dutySessionID string, companyID string) (BreakSession, error)

	Close(ctx context.Context, b BreakSession) error
}

type BreakPolicyRepository interface {
	Create(ctx context.Context, policy BreakPolicy) (BreakPolicy, error)
	GetByID(ctx context.Context, id string, companyID string) (BreakPolicy, error)
	List(ctx context.Context, companyID string) ([]BreakPolicy, error)
}
