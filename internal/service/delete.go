package service

import (
	"context"

	"github.com/sift-cli/sift/internal/domain"
)

// DeleteDeclined removes every declined item from the drive and, only after
// the remote calls have succeeded, clears the corresponding local marks.
// The destructive confirmation lives in the UI; by the time this runs the
// user has already said yes. Returns the number of items deleted.
func DeleteDeclined(ctx context.Context, sess *Session) (int, error) {
	state := sess.State()
	ids := state.IDsMarked(domain.MarkDecline)
	if len(ids) == 0 {
		return 0, nil
	}

	if err := sess.repo.DeleteItems(ctx, ids); err != nil {
		// Marks stay in place: nothing was confirmed deleted
		return 0, err
	}

	// Reload before mutating so marks set while the deletes were in flight
	// are not lost.
	state = sess.State()
	for _, id := range ids {
		delete(state.Marks, id)
		delete(state.SoftTouched, id)
	}
	if err := sess.store.Save(sess.folder.ID, state); err != nil {
		return len(ids), err
	}

	return len(ids), nil
}
