package result

type Result struct {
	rowsAffected int64
}

func NewResult(rowsAffected int64) Result {
	return Result{rowsAffected: rowsAffected}
}

func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
