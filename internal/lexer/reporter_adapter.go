package lexer

import "surge/internal/diag"

// ReporterAdapter adapts a diag.Bag for use as the lexer's diag.Reporter.
type ReporterAdapter struct {
	Bag *diag.Bag
}

// Reporter returns a diag.Reporter that forwards diagnostics into the bag.
func (r *ReporterAdapter) Reporter() diag.Reporter {
	return &diag.BagReporter{Bag: r.Bag}
}
