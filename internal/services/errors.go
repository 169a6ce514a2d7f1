package services

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource is matched by every *DataSourceError.
	ErrDataSource = errors.New("data source error")

	// ErrMissingDateColumn is the cause reported when the source has no Date column.
	ErrMissingDateColumn = errors.New("source must contain a Date column")

	// ErrInvalidParameter marks a query parameter with no sane default.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DataSourceError is returned by the dataset load when the source is missing,
// unreadable or lacks the date column. It is fatal for every query.
type DataSourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
