package api

import (
	"context"
	"errors"

	"vendzone/internal/engine"
)

// persist writes every changed record. It keeps going after a failure so one
// bad record does not strand the rest.
func (s *Server) persist(ctx context.Context, ch engine.Changes) error {
	var errs []error
	for _, z := range ch.Zones {
		if err := s.Store.SaveZone(ctx, z); err != nil {
			errs = append(errs, err)
		}
	}
	for _, v := range ch.Vendors {
		if err := s.Store.SaveVendor(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range ch.Reports {
		if err := s.Store.SaveReport(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("persist changes failed", "err", err,
			"zones", len(ch.Zones), "vendors", len(ch.Vendors), "reports", len(ch.Reports))
	}
	return err
}

// apply runs one engine mutation, persists what it touched and publishes the
// change events. The engine error, if any, comes back untouched.
func (s *Server) apply(ctx context.Context, op func() (engine.Changes, error)) error {
	s.writeMu.Lock()
	ch, err := op()
	if err != nil {
		s.writeMu.Unlock()
		return err
	}
	perr := s.persist(ctx, ch)
	s.writeMu.Unlock()

	s.publishChanges(ch)
	s.observe()
	if perr != nil {
		return errPersist{perr}
	}
	return nil
}

type errPersist struct{ err error }

func (e errPersist) Error() string { return "persist: " + e.err.Error() }
func (e errPersist) Unwrap() error { return e.err }
