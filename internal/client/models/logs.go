package models

import "encoding/json"

// TailRow is one raw event row, newest first in a tail listing. Args is kept
// as raw JSON since the console only prints it.
type TailRow struct {
	TS      string
	Tag     string
	Origin  string
	Session *int64
	Args    json.RawMessage
}

// ExportFile describes a finished export saved on disk.
type ExportFile struct {
	Name  string
	Path  string
	Bytes int64
}
