package models

import "time"

// Project lifecycle states. Transitions only move forward:
// draft -> quoted -> submitted -> in_progress -> completed.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusQuoted     = "quoted"
	ProjectStatusSubmitted  = "submitted"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
)

// Project is a translation job: the customer's source spreadsheet, the
// chosen target languages, the word-count-based quote, and, once work is
// done, the translated deliverable.
//
// The file metadata columns are the durable copy of what the vault returns
// at save time; the vault itself keeps no index, only the opaque handles
// resolve to files on disk.
type Project struct {
	ID          string
	UserID      string
	Name        string
	SourceLang  string
	TargetLangs []string
	WordCount   int64
	PriceCents  int64
	Status      string

	OriginalHandle string
	OriginalName   string
	OriginalMime   string
	OriginalSize   int64

	DeliverableHandle string
	DeliverableName   string
	DeliverableMime   string
	DeliverableSize   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOriginal reports whether a source document has been attached.
func (p *Project) HasOriginal() bool { return p.OriginalHandle != "" }

// HasDeliverable reports whether a translated document has been uploaded.
func (p *Project) HasDeliverable() bool { return p.DeliverableHandle != "" }
