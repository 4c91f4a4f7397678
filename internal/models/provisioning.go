package models

import "time"

// ProvisioningReport aggregates one run of the invitation loop. Superseded
// counts invitations sent to accounts that were linked before they were stamped.
type ProvisioningReport struct {
	Attempted      int       `json:"attempted"`
	Invited        int       `json:"invited"`
	Superseded     int       `json:"superseded"`
	Failed         int       `json:"failed"`
	FailureSamples []string  `json:"failure_samples"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
