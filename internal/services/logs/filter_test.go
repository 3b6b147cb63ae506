package logssvc

import (
	"testing"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

func TestFilterUnknownMinLevelMeansNoThreshold(t *testing.T) {
	f, err := newEntryFilter(TailOptions{MinLevel: "VERBOSE"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !f.pass(logbuf.Entry{Level: logbuf.LevelDebug}) {
		t.Fatalf("unknown threshold must pass everything")
	}
}

func TestFilterMinLevelCaseInsensitive(t *testing.T) {
	f, err := newEntryFilter(TailOptions{MinLevel: "warning"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.pass(logbuf.Entry{Level: logbuf.LevelInfo}) {
		t.Fatalf("INFO must not pass a WARNING threshold")
	}
	if !f.pass(logbuf.Entry{Level: logbuf.LevelCritical}) {
		t.Fatalf("CRITICAL must pass a WARNING threshold")
	}
}

func TestFilterUnknownEntryLevelRanksLowest(t *testing.T) {
	f, err := newEntryFilter(TailOptions{MinLevel: "DEBUG"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.pass(logbuf.Entry{Level: "TRACE"}) {
		t.Fatalf("unrecognized entry level must rank below every threshold")
	}
}
