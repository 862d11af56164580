package engine

import (
	"fmt"
	"strings"

	"vendzone/internal/model"
)

type reportLog struct {
	byID  map[string]*model.HygieneReport
	order []string
}

func newReportLog() *reportLog { return &reportLog{byID: map[string]*model.HygieneReport{}} }

func (l *reportLog) get(id string) *model.HygieneReport { return l.byID[id] }

func (l *reportLog) insert(r model.HygieneReport) *model.HygieneReport {
	p := &r
	l.byID[r.ID] = p
	l.order = append(l.order, r.ID)
	return p
}

func validateReport(r model.HygieneReport) error {
	if !r.IssueType.Valid() {
		return validationf("invalid issue_type %q", r.IssueType)
	}
	if strings.TrimSpace(r.Description) == "" {
		return validationf("description is required")
	}
	if !r.Severity.Valid() {
		return validationf("invalid severity %q", r.Severity)
	}
	if !pointOf(r.Latitude, r.Longitude).Valid() {
		return validationf("invalid location (%v, %v)", r.Latitude, r.Longitude)
	}
	return nil
}

// Submit files a new hygiene report in status open. When the report names a
// vendor, that vendor must exist and its complaint count goes up by one.
func (e *Engine) Submit(r model.HygieneReport) (model.HygieneReport, Changes, error) {
	if err := validateReport(r); err != nil {
		return model.HygieneReport{}, Changes{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var vendor *model.Vendor
	if r.VendorID != "" {
		if vendor = e.vendors.get(r.VendorID); vendor == nil {
			return model.HygieneReport{}, Changes{}, notFound("vendor", r.VendorID)
		}
	}
	if r.ID == "" {
		r.ID = e.newID()
	} else if e.reports.get(r.ID) != nil {
		return model.HygieneReport{}, Changes{}, validationf("report id %q already exists", r.ID)
	}

	now := e.now().UTC()
	r.Status = model.ReportOpen
	r.ResolvedDate = nil
	r.CreatedDate, r.UpdatedDate = now, now

	cs := newChangeSet()
	p := e.reports.insert(copyReport(r))
	cs.report(p.ID)
	if vendor != nil {
		e.bumpComplaints(vendor, cs)
	}
	e.logger.Debug("report submitted", "report_id", p.ID, "vendor_id", p.VendorID, "severity", p.Severity)
	return copyReport(*p), e.collect(cs), nil
}

// Transition moves a report along its lifecycle:
//
//	open → investigating | resolved | dismissed
//	investigating → resolved | dismissed
//
// Moving to resolved stamps resolved_date with today's UTC date; any other
// move clears it. Anything else fails with ErrInvalidTransition.
func (e *Engine) Transition(id string, to model.ReportStatus) (model.HygieneReport, Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.reports.get(id)
	if r == nil {
		return model.HygieneReport{}, Changes{}, notFound("report", id)
	}
	if !CanTransition(r.Status, to) {
		return model.HygieneReport{}, Changes{}, fmt.Errorf("%w: report %s cannot move from %s to %q", ErrInvalidTransition, id, r.Status, to)
	}
	e.setStatus(r, to)
	cs := newChangeSet()
	cs.report(id)
	return copyReport(*r), e.collect(cs), nil
}

// Reopen is the administrator escape hatch that returns a report to open
// from any other status.
func (e *Engine) Reopen(id string) (model.HygieneReport, Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.reports.get(id)
	if r == nil {
		return model.HygieneReport{}, Changes{}, notFound("report", id)
	}
	if r.Status == model.ReportOpen {
		return model.HygieneReport{}, Changes{}, fmt.Errorf("%w: report %s is already open", ErrInvalidTransition, id)
	}
	e.setStatus(r, model.ReportOpen)
	cs := newChangeSet()
	cs.report(id)
	e.logger.Info("report reopened", "report_id", id)
	return copyReport(*r), e.collect(cs), nil
}

func (e *Engine) setStatus(r *model.HygieneReport, to model.ReportStatus) {
	r.Status = to
	r.ResolvedDate = nil
	if to == model.ReportResolved {
		d := e.today()
		r.ResolvedDate = &d
	}
	r.UpdatedDate = e.now().UTC()
}

func (e *Engine) GetReport(id string) (model.HygieneReport, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := e.reports.get(id)
	if r == nil {
		return model.HygieneReport{}, notFound("report", id)
	}
	return copyReport(*r), nil
}

// ListReports returns every report, newest first.
func (e *Engine) ListReports() []model.HygieneReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reportsNewestFirst(func(model.HygieneReport) bool { return true })
}

// reportsNewestFirst walks the log backwards. Caller holds e.mu.
func (e *Engine) reportsNewestFirst(keep func(model.HygieneReport) bool) []model.HygieneReport {
	out := []model.HygieneReport{}
	for i := len(e.reports.order) - 1; i >= 0; i-- {
		r := e.reports.byID[e.reports.order[i]]
		if keep(*r) {
			out = append(out, copyReport(*r))
		}
	}
	return out
}

// ReportFilter selects reports by exact field match; zero fields match anything.
type ReportFilter struct {
	Status    model.ReportStatus
	Severity  model.Severity
	IssueType model.IssueType
	VendorID  string
}

func (f ReportFilter) match(r model.HygieneReport) bool {
	return (f.Status == "" || r.Status == f.Status) &&
		(f.Severity == "" || r.Severity == f.Severity) &&
		(f.IssueType == "" || r.IssueType == f.IssueType) &&
		(f.VendorID == "" || r.VendorID == f.VendorID)
}

// FilterReports returns matching reports, newest first.
func (e *Engine) FilterReports(f ReportFilter) []model.HygieneReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reportsNewestFirst(f.match)
}
