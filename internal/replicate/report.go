package replicate

import (
	"errors"
	"time"

	"dbmirror/internal/schema"
)

// Kind names the failure class of a per-table outcome.
type Kind string

const (
	KindOK                Kind = "OK"
	KindTranslationFailed Kind = "TranslationFailed"
	KindRemoteUnreachable Kind = "RemoteUnreachable"
	KindRemoteDDLFailed   Kind = "RemoteDDLFailed"
	KindRemoteCopyFailed  Kind = "RemoteCopyFailed"
	KindNameCollision     Kind = "NameCollision"
	KindSkipped           Kind = "Skipped"
	KindSourceReadFailed  Kind = "SourceReadFailed"
)

// ErrSkipped marks tables never attempted because an earlier failure stopped
// the run (stop_on_error) or the run deadline expired.
var ErrSkipped = errors.New("skipped")

// Outcome is one table's result in the run report.
type Outcome struct {
	Table    string
	Target   string
	Rows     int64
	Duration time.Duration
	Err      error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

func (o Outcome) Kind() Kind {
	switch {
	case o.Err == nil:
		return KindOK
	case errors.Is(o.Err, ErrNameCollision):
		return KindNameCollision
	case errors.Is(o.Err, ErrSkipped):
		return KindSkipped
	case errors.Is(o.Err, schema.ErrNoColumns):
		return KindTranslationFailed
	case errors.Is(o.Err, ErrRemoteUnreachable):
		return KindRemoteUnreachable
	case errors.Is(o.Err, ErrRemoteDDLFailed):
		return KindRemoteDDLFailed
	case errors.Is(o.Err, ErrRemoteCopyFailed):
		return KindRemoteCopyFailed
	default:
		return KindSourceReadFailed
	}
}

// Report collects per-table outcomes in enumeration order.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r *Report) RowsCopied() int64 {
	var total int64
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			total += o.Rows
		}
	}
	return total
}

func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}
