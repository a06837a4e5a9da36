package services

import (
	"context"
	"fmt"
	"time"

	"choretracker/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HistoryExporter receives the snapshot of a closed week after it has been
// committed to the store.
type HistoryExporter interface {
	ExportHistory(ctx context.Context, weekEnding time.Time, rows []model.ProgressHistory) error
}

const (
	weeksCollection   = "Weeks"
	entriesCollection = "Entries"
)

type FirestoreExporter struct {
	client *firestore.Client
}

func NewFirestoreExporter(client *firestore.Client) *FirestoreExporter {
	return &FirestoreExporter{client: client}
}

type weekDoc struct {
	WeekEnding time.Time `firestore:"weekending"`
	Entries    int       `firestore:"entries"`
	Completed  int       `firestore:"completed"`
	ExportedAt time.Time `firestore:"exportedat"`
}

type entryDoc struct {
	TaskID      string     `firestore:"taskid"`
	TaskName    string     `firestore:"taskname"`
	UserID      string     `firestore:"userid"`
	Username    string     `firestore:"username"`
	Day         string     `firestore:"day"`
	Completed   bool       `firestore:"completed"`
	CompletedAt *time.Time `firestore:"completedat"`
	ArchivedAt  time.Time  `firestore:"archivedat"`
}

// ExportHistory writes Weeks/{yyyy-mm-dd} and one Entries document per row.
// Document ids are derived from the row key so running it twice for the same
// week overwrites instead of duplicating.
func (e *FirestoreExporter) ExportHistory(ctx context.Context, weekEnding time.Time, rows []model.ProgressHistory) error {
	weekID := weekEnding.Format("2006-01-02")
	weekRef := e.client.Collection(weeksCollection).Doc(weekID)

	summary := weekDoc{WeekEnding: weekEnding, Entries: len(rows), ExportedAt: time.Now().UTC()}
	for _, r := range rows {
		if r.Completed {
			summary.Completed++
		}
	}

	if _, err := weekRef.Create(ctx, summary); err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("create week %s: %w", weekID, err)
		}
		if _, err := weekRef.Set(ctx, summary); err != nil {
			return fmt.Errorf("overwrite week %s: %w", weekID, err)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	bw := e.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(rows))
	for _, r := range rows {
		docID := fmt.Sprintf("%s_%s_%s", r.TaskID, r.UserID, r.Day)
		job, err := bw.Set(weekRef.Collection(entriesCollection).Doc(docID), entryDoc{
			TaskID:      r.TaskID,
			TaskName:    r.TaskName,
			UserID:      r.UserID,
			Username:    r.Username,
			Day:         string(r.Day),
			Completed:   r.Completed,
			CompletedAt: r.CompletedAt,
			ArchivedAt:  r.ArchivedAt,
		})
		if err != nil {
			bw.End()
			return fmt.Errorf("queue entry %s: %w", docID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("write week %s entries: %w", weekID, err)
		}
	}
	return nil
}
