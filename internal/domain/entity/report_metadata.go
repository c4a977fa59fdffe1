package entity

import (
	"fmt"
	"time"
)

// ReportMetadata describes a report and where its content can be downloaded from.
type ReportMetadata struct {
	ID          string      `json:"id"`
	Scope       ReportScope `json:"scope"`
	DownloadURL string      `json:"downloadUrl"`
}

// ReportScope is the account, region and time window a report covers.
type ReportScope struct {
	AWS             ReportScopeAWS `json:"aws"`
	StartTime       time.Time      `json:"startTime"`
	DurationSeconds int            `json:"durationSeconds"`
}

// ReportScopeAWS identifies the AWS account and region of a report.
type ReportScopeAWS struct {
	AccountID string `json:"accountId"`
	Region    string `json:"region"`
}

// Duration returns the scope's time window length.
func (s ReportScope) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// EndTime returns the exclusive end of the scope's time window.
func (s ReportScope) EndTime() time.Time {
	return s.StartTime.Add(s.Duration())
}

// DedupKey identifies reports that cover the same account, region and start time.
func (s ReportScope) DedupKey() string {
	return fmt.Sprintf("%s-%s-%d", s.AWS.AccountID, s.AWS.Region, s.StartTime.UnixMilli())
}

// ScopedReport pairs report content with the scope it was generated for.
type ScopedReport struct {
	Report *Report
	Scope  ReportScope
}
