package domain

import (
	"testing"
	"time"
)

func TestFetchRecordFreshness(t *testing.T) {
	t.Parallel()

	created := time.Unix(1_700_000_000, 0).UTC()
	rec := FetchRecord{ID: "f1", StoreID: "st-1", Created: created}

	if got := rec.Expires(); !got.Equal(created.Add(FreshnessTTL)) {
		t.Fatalf("Expires = %v", got)
	}

	if !rec.FreshAt(created) {
		t.Error("record must be fresh at its own creation instant")
	}
	if !rec.FreshAt(created.Add(FreshnessTTL - time.Second)) {
		t.Error("record must be fresh just inside the window")
	}
	// The window is half-open: at exactly Created+TTL the record is stale.
	if rec.FreshAt(rec.Expires()) {
		t.Error("record must be stale at its expiry instant")
	}
	if rec.FreshAt(created.Add(time.Hour)) {
		t.Error("record must be stale past the window")
	}
}
