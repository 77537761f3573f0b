package telemetry

import "sync"

// Report is a single call recorded by RecorderAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// RecorderAPI is an API implementation that keeps every report in memory, it is meant
// to be used by tests that need to assert a component reported (or did not report) something.
type RecorderAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *RecorderAPI) record(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
}

func (r *RecorderAPI) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *RecorderAPI) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *RecorderAPI) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *RecorderAPI) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns a copy of the reports of a given kind ("broken", "warning", "debug", "count").
func (r *RecorderAPI) Reports(kind string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if rep.Kind == kind {
			out = append(out, rep)
		}
	}
	return out
}
