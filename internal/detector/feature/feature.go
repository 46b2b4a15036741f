// Package feature defines the numeric feature schema shared by training and
// serving, and the vectorizer that maps events onto it.
package feature

import (
	"github.com/turtacn/ueba/internal/domain/models"
)

// SchemaVersion identifies the feature schema. Training embeds it in every
// model artifact; serving refuses to load an artifact built against a
// different version.
const SchemaVersion = "v1"

// columns is the fixed, ordered feature schema. The order must match the
// matrix the isolation forest was trained on exactly.
var columns = []string{
	"logon_count",
	"failed_login_count",
	"external_ip_count",
	"late_night_login_count",
	"file_access_count",
	"total_file_size",
	"avg_file_size",
	"max_file_size",
	"sensitive_folder_access_count",
	"usb_copy_count",
	"email_count",
	"total_email_size",
	"avg_email_size",
	"email_with_attachment_count",
	"external_email_count",
	"web_visit_count",
	"suspicious_domain_count",
	"usb_connect_count",
	"total_bytes_out",
	"avg_bytes_out",
	"max_bytes_out",
	"total_bytes_in",
	"avg_bytes_in",
	"large_upload_count",
	"lateral_movement_count",
	"process_count",
	"scripting_tool_count",
	"high_integrity_count",
}

// baselineColumns is the subset compared against per-user baselines.
var baselineColumns = []string{
	"logon_count",
	"file_access_count",
	"total_bytes_out",
}

// Columns returns a copy of the ordered feature schema.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// BaselineColumns returns a copy of the baseline comparison subset.
func BaselineColumns() []string {
	out := make([]string, len(baselineColumns))
	copy(out, baselineColumns)
	return out
}

// Dim returns the schema length.
func Dim() int {
	return len(columns)
}

// Vectorize maps an event onto the feature schema. Entry i is the event's
// value for column i, or 0 when the field is absent or not numeric. The
// result always has length Dim(), whatever the event carries.
func Vectorize(e *models.Event) []float64 {
	vec := make([]float64, len(columns))
	for i, name := range columns {
		if v, ok := e.Numeric(name); ok {
			vec[i] = v
		}
	}
	return vec
}
