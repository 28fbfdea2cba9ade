// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Entry is one audit record: who did what to which row, and whether scope
// let them. Denied attempts are recorded too; they are the interesting ones.
type Entry struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	UserID        uint            `json:"user_id"`
	Role          string          `json:"role"`
	InstituteID   *uint           `json:"institute_id,omitempty"`
	ZoneID        *uint           `json:"zone_id,omitempty"`
	Action        string          `json:"action"`
	Resource      string          `json:"resource"`
	ResourceID    uint            `json:"resource_id,omitempty"`
	AccessGranted bool            `json:"access_granted"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
