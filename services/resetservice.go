package services

import (
	"context"
	"time"

	"choretracker/model"

	"gorm.io/gorm"
)

type ResetSummary struct {
	WeekEnding    time.Time               `json:"weekEnding"`
	Archived      int                     `json:"archived"` // rows added or merged
	EntriesReset  int64                   `json:"entriesReset"`
	TasksReopened int64                   `json:"tasksReopened"`
	Snapshot      []model.ProgressHistory `json:"-"`
}

type historyKey struct {
	taskID string
	userID string
	day    model.Weekday
}

// ResetWeek closes the week that ends on the local date of now. Every
// progress row is archived into progress_history and then all completion
// flags (progress rows, assignments, task aggregates) are cleared with bulk
// updates, all in one transaction.
//
// A second reset with the same week ending merges into the existing snapshot:
// rows not archived yet are added and a completion recorded since is kept,
// but an archived completion is never turned back into a pending row.
func ResetWeek(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location) (*ResetSummary, error) {
	summary := &ResetSummary{WeekEnding: model.DateOf(now.In(loc))}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Task rows are locked first, in id order, as MarkComplete does.
		var taskIDs []string
		if err := lockForUpdate(tx).Model(&model.Task{}).Order("id").Pluck("id", &taskIDs).Error; err != nil {
			return storeFailure("lock tasks", err)
		}

		var rows []model.ProgressRow
		if err := progressRows(tx).Scan(&rows).Error; err != nil {
			return storeFailure("snapshot progress", err)
		}
		sortProgressRows(rows)

		var archived []model.ProgressHistory
		if err := tx.Where("week_ending = ?", summary.WeekEnding).Find(&archived).Error; err != nil {
			return storeFailure("load snapshot", err)
		}
		existing := make(map[historyKey]model.ProgressHistory, len(archived))
		for _, h := range archived {
			existing[historyKey{h.TaskID, h.UserID, h.Day}] = h
		}

		archivedAt := now.UTC()
		inserts := make([]model.ProgressHistory, 0, len(rows))
		for _, r := range rows {
			prev, ok := existing[historyKey{r.TaskID, r.UserID, r.Day}]
			if !ok {
				inserts = append(inserts, model.ProgressHistory{
					WeekEnding:  summary.WeekEnding,
					TaskID:      r.TaskID,
					TaskName:    r.TaskName,
					UserID:      r.UserID,
					Username:    r.Username,
					Day:         r.Day,
					Completed:   r.Completed,
					CompletedAt: r.CompletedAt,
					ArchivedAt:  archivedAt,
				})
				continue
			}
			if r.Completed && !prev.Completed {
				err := tx.Model(&model.ProgressHistory{}).Where("id = ?", prev.ID).
					Updates(map[string]any{"completed": true, "completed_at": r.CompletedAt}).Error
				if err != nil {
					return storeFailure("merge snapshot", err)
				}
				summary.Archived++
			}
		}
		if len(inserts) > 0 {
			if err := tx.CreateInBatches(&inserts, 200).Error; err != nil {
				return storeFailure("archive progress", err)
			}
		}
		summary.Archived += len(inserts)

		res := tx.Model(&model.ProgressEntry{}).
			Where("completed = ?", true).
			Updates(map[string]any{"completed": false, "completed_at": nil})
		if res.Error != nil {
			return storeFailure("reset progress", res.Error)
		}
		summary.EntriesReset = res.RowsAffected

		if err := tx.Model(&model.Assignment{}).Where("completed = ?", true).Update("completed", false).Error; err != nil {
			return storeFailure("reset assignments", err)
		}

		// A task whose assignees have no progress rows stays vacuously complete.
		res = tx.Model(&model.Task{}).
			Where("completed = ? AND EXISTS (SELECT 1 FROM task_progress WHERE task_progress.task_id = tasks.id)", true).
			Update("completed", false)
		if res.Error != nil {
			return storeFailure("reset tasks", res.Error)
		}
		summary.TasksReopened = res.RowsAffected

		// the export always carries the whole week so it overwrites with merged rows
		err := tx.Where("week_ending = ?", summary.WeekEnding).
			Order("username").Order("task_name").Order("id").
			Find(&summary.Snapshot).Error
		if err != nil {
			return storeFailure("load snapshot", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// History returns archived rows, optionally restricted to one week ending date.
func History(ctx context.Context, db *gorm.DB, weekEnding *time.Time) ([]model.ProgressHistory, error) {
	query := db.WithContext(ctx).Order("week_ending DESC").Order("username").Order("task_name").Order("id")
	if weekEnding != nil {
		query = query.Where("week_ending = ?", model.DateOf(*weekEnding))
	}

	rows := []model.ProgressHistory{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeFailure("get history", err)
	}
	return rows, nil
}
