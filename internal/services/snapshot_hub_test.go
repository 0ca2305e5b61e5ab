package services

import (
	"testing"

	"finanzas/internal/core"
)

func TestSnapshotHub_VersionBumpsOnReplace(t *testing.T) {
	hub := NewSnapshotHub()
	if hub.Version() != 0 {
		t.Errorf("initial version = %d, want 0", hub.Version())
	}

	hub.SetRecords([]core.Transaction{{ID: "a"}})
	hub.SetRecords([]core.Transaction{{ID: "a"}, {ID: "b"}})

	if hub.Version() != 2 {
		t.Errorf("version = %d, want 2", hub.Version())
	}
	if len(hub.Records()) != 2 {
		t.Errorf("got %d records, want 2", len(hub.Records()))
	}
}

func TestSnapshotHub_RecordsAreCopies(t *testing.T) {
	hub := NewSnapshotHub()
	source := []core.Transaction{{ID: "a", Description: "uno"}}
	hub.SetRecords(source)

	source[0].Description = "mutated"
	if hub.Records()[0].Description != "uno" {
		t.Error("hub should not share backing array with caller input")
	}

	out := hub.Records()
	out[0].Description = "mutated"
	if hub.Records()[0].Description != "uno" {
		t.Error("hub should not share backing array with returned slice")
	}
}
