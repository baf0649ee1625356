package querylog

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/krew-solutions/evita-client-go/evita/disposable"
	"github.com/krew-solutions/evita-client-go/evita/session"
)

const statementLoggerID = "querylog.statements"

// LogQueries logs every statement run through observable: completed ones at
// debug level, failed ones at error level. Dispose the result to stop.
func LogQueries(logger log.Logger, observable session.Observable) disposable.Disposable {
	return observable.OnQueryEnded().Attach(func(e session.QueryEndedEvent) {
		if e.Err != nil {
			level.Error(logger).Log("msg", "statement failed", "query", e.Query, "params", len(e.Params), "duration", e.ResponseTime, "err", e.Err)
			return
		}
		level.Debug(logger).Log("msg", "statement", "query", e.Query, "params", len(e.Params), "duration", e.ResponseTime)
	}, statementLoggerID)
}
