package ports

import (
	"clusterperm/domain/field"
)

// GroupReader loads one group of observations from an external data source
// (spreadsheet, CSV). Rows are observations, columns are flattened locations.
type GroupReader interface {
	ReadGroup(source string) (*field.Group, error)
}
