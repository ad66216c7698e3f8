package costs

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidFile marks uploads that cannot be turned into a cost total.
	ErrInvalidFile = errors.New("invalid cost file")
	// ErrNoValueColumn is returned when no header matches ValueKeywords with numeric content.
	// It is also marked as ErrInvalidFile.
	ErrNoValueColumn = errors.New("no value column found")
)

func invalidFile(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrInvalidFile)
}

func invalidFilef(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidFile)
}
