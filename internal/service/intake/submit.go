package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// Outcome is the user-facing result of a submission.
type Outcome struct {
	Written int
	Message string
	Err     error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Submit ingests every row of the form as the current user. Rows are kept
// after a successful submission; call Reset to start over.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Outcome{Message: "Still saving the previous submission.", Err: ErrSubmitInProgress}
	}
	f.submitting = true
	lines := make([]domain.InventoryLine, len(f.rows))
	for i, r := range f.rows {
		lines[i] = r.line
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if f.deps.Inventory == nil {
		return failure(domain.ErrBackendUnavailable)
	}

	userID, ok := f.currentUser(ctx)
	if !ok {
		return failure(domain.ErrAuthRequired)
	}

	res, err := f.deps.Inventory.Ingest(ctx, userID, lines)
	if err != nil {
		f.log.WarnContext(ctx, "submit failed", "error", err.Error())
		return failure(err)
	}

	switch n := res.Written(); n {
	case 0:
		return Outcome{Message: "Nothing to save."}
	case 1:
		return Outcome{Written: 1, Message: "Saved 1 item."}
	default:
		return Outcome{Written: n, Message: fmt.Sprintf("Saved %d items.", n)}
	}
}

func failure(err error) Outcome {
	return Outcome{Message: Describe(err), Err: err}
}

// Describe turns an ingestion error into a short message for the user.
func Describe(err error) string {
	var lineErr *domain.LineError
	prefix := ""
	if errors.As(err, &lineErr) {
		prefix = fmt.Sprintf("Line %d: ", lineErr.Index+1)
	}

	var (
		verr   *domain.ValidationError
		remote *domain.RemoteError
	)
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "Sign in to save your inventory."
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "Inventory storage is not available."
	case errors.Is(err, domain.ErrEmptyName):
		return prefix + "an ingredient name is required."
	case errors.As(err, &verr):
		return prefix + verr.Error()
	case errors.As(err, &remote):
		return prefix + "saving failed: " + remote.Err.Error() + ". Nothing was saved."
	}
	return prefix + "saving failed. Nothing was saved."
}
