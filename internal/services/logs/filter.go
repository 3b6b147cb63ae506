package logssvc

import (
	"strings"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

// entryFilter combines the level threshold, source prefix, and optional
// CEL expression of one session.
type entryFilter struct {
	minRank int
	prefix  string
	cel     celFilter
}

func newEntryFilter(opts TailOptions) (entryFilter, error) {
	cf, err := newCELFilter(opts.Filter)
	if err != nil {
		return entryFilter{}, err
	}
	return entryFilter{
		// Unknown or empty names rank 0: no threshold.
		minRank: logbuf.LevelRank(strings.ToUpper(strings.TrimSpace(opts.MinLevel))),
		prefix:  opts.SourcePrefix,
		cel:     cf,
	}, nil
}

func (f entryFilter) pass(e logbuf.Entry) bool {
	if logbuf.LevelRank(e.Level) < f.minRank {
		return false
	}
	if f.prefix != "" && !strings.HasPrefix(e.LoggerName, f.prefix) {
		return false
	}
	return f.cel.Eval(e)
}

// CheckFilter validates a CEL filter expression without running a
// session, so transports can reject bad input before committing to a
// stream response.
func CheckFilter(expr string) error {
	_, err := newCELFilter(expr)
	return err
}
