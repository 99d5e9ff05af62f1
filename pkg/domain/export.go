package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// ExportVersion is the interchange document version emitted and accepted.
const ExportVersion = "1.0"

// ExportDocument is the self-contained interchange format: both persistence
// buckets plus versioning metadata. Importing a document fully replaces the
// persisted state; there is no merge or deduplication.
type ExportDocument struct {
	Version         string                 `json:"version"`
	ExportDate      time.Time              `json:"export_date"`
	Projects        []Project              `json:"projects"`
	EvictionArchive []EvictionArchiveEntry `json:"eviction_archive"`
}

// NewExportDocument wraps a snapshot in the interchange envelope.
func NewExportDocument(snapshot Snapshot, now time.Time) ExportDocument {
	return ExportDocument{
		Version:         ExportVersion,
		ExportDate:      now.UTC(),
		Projects:        snapshot.Projects,
		EvictionArchive: snapshot.Archive,
	}
}

// Snapshot converts the document back into the persisted representation. A
// missing archive defaults to empty.
func (d ExportDocument) Snapshot() Snapshot {
	archive := d.EvictionArchive
	if archive == nil {
		archive = []EvictionArchiveEntry{}
	}
	return Snapshot{Projects: d.Projects, Archive: archive}
}

// ParseExportDocument validates and decodes an interchange document.
// Validation is structural: projects must be present and be a JSON array;
// eviction_archive is optional. Any failure returns InvalidImportError and
// the caller's existing state must be left untouched.
func ParseExportDocument(data []byte) (ExportDocument, error) {
	var probe struct {
		Projects        json.RawMessage `json:"projects"`
		EvictionArchive json.RawMessage `json:"eviction_archive"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ExportDocument{}, InvalidImportError{Reason: "not a JSON object"}
	}
	if len(probe.Projects) == 0 {
		return ExportDocument{}, InvalidImportError{Reason: "projects field missing"}
	}
	if !isJSONArray(probe.Projects) {
		return ExportDocument{}, InvalidImportError{Reason: "projects is not an array"}
	}
	if len(probe.EvictionArchive) > 0 && !isJSONArray(probe.EvictionArchive) {
		return ExportDocument{}, InvalidImportError{Reason: "eviction_archive is not an array"}
	}
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportDocument{}, InvalidImportError{Reason: err.Error()}
	}
	if doc.EvictionArchive == nil {
		doc.EvictionArchive = []EvictionArchiveEntry{}
	}
	return doc, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
