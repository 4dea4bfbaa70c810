package syncer

import (
	"context"

	authdomain "smartrfq/internal/auth/domain"
	"smartrfq/internal/store"
)

type UserAPI interface {
	SyncUser(ctx context.Context) (*authdomain.User, error)
}

type UserSync struct {
	hook
	api   UserAPI
	store *store.UserStore
	// OnOrg receives the organization of every reconciled user. The
	// workspace wires it to the tenant invalidator.
	OnOrg func(orgID string)
}

func NewUserSync(api UserAPI, st *store.UserStore, deps Deps) *UserSync {
	return &UserSync{hook: newHook("user", deps), api: api, store: st}
}

// Reconcile mirrors the identity user into the backend once per session.
// Later calls return the mirrored user without a network call.
func (s *UserSync) Reconcile(ctx context.Context) (*authdomain.User, error) {
	if !s.store.MarkReconciled() {
		if u, ok := s.store.User(); ok {
			s.cacheHit()
			return &u, nil
		}
		return nil, ErrInProgress
	}

	s.store.SetLoading(true)
	done := s.fetchStarted()
	u, err := s.api.SyncUser(ctx)
	done()
	if err != nil {
		s.store.ClearReconciled()
		return nil, s.fail(s.store.SetError, "Failed to sync user", err)
	}
	// A tenant change resets every store, this one included, so the user is
	// recorded after the org has been observed.
	if s.OnOrg != nil {
		s.OnOrg(u.OrgID)
	}
	s.store.SetUser(*u)
	s.store.MarkReconciled()
	return u, nil
}
