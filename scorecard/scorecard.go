// Package scorecard summarises a company's progress for the customer portal.
package scorecard

import (
	"cloud.google.com/go/civil"

	"clementus360/coaching-portal/types"
)

type Progress struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Percent int `json:"percent"`
}

func (p *Progress) add(done bool) {
	p.Total++
	if done {
		p.Done++
	}
}

func (p *Progress) finish() {
	if p.Total > 0 {
		p.Percent = p.Done * 100 / p.Total
	}
}

type TagProgress struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Progress
}

type SessionSummary struct {
	Total       int `json:"total"`
	BookingOpen int `json:"booking_open"`
	Booked      int `json:"booked"`
	Completed   int `json:"completed"`
	Canceled    int `json:"canceled"`
}

type MaterialSummary struct {
	Total    int `json:"total"`
	Uploaded int `json:"uploaded"`
	Pending  int `json:"pending"`
}

type Scorecard struct {
	CompanyID    string          `json:"company_id"`
	Tasks        Progress        `json:"tasks"`
	Subtasks     Progress        `json:"subtasks"`
	ByTag        []TagProgress   `json:"by_tag"`
	Overdue      int             `json:"overdue"`
	NextDeadline *civil.Date     `json:"next_deadline"`
	Sessions     SessionSummary  `json:"sessions"`
	Materials    MaterialSummary `json:"materials"`
	// Overall weighs every task and subtask equally.
	Overall int `json:"overall"`
}

// Compute builds the scorecard as of today. Tasks must carry their subtasks.
// Untagged tasks are not listed in ByTag.
func Compute(companyID string, tasks []types.Task, sessions []types.Session, materials []types.Material, tags []types.TaskTag, today civil.Date) Scorecard {
	sc := Scorecard{CompanyID: companyID, ByTag: []TagProgress{}}

	byTag := make(map[string]*Progress)
	for _, task := range tasks {
		done := task.Status == types.TaskStatusDone
		sc.Tasks.add(done)

		if task.TagID != nil {
			p, ok := byTag[*task.TagID]
			if !ok {
				p = &Progress{}
				byTag[*task.TagID] = p
			}
			p.add(done)
		}

		for _, sub := range task.Subtasks {
			sc.Subtasks.add(sub.IsDone)
		}

		if done || task.Deadline == nil {
			continue
		}
		if task.Deadline.Before(today) {
			sc.Overdue++
		} else if sc.NextDeadline == nil || task.Deadline.Before(*sc.NextDeadline) {
			d := *task.Deadline
			sc.NextDeadline = &d
		}
	}

	for _, tag := range tags {
		p, ok := byTag[tag.ID]
		if !ok {
			continue
		}
		p.finish()
		sc.ByTag = append(sc.ByTag, TagProgress{TagID: tag.ID, Name: tag.Name, Color: tag.Color, Progress: *p})
	}

	for _, s := range sessions {
		sc.Sessions.Total++
		switch s.Status {
		case types.SessionBookingOpen:
			sc.Sessions.BookingOpen++
		case types.SessionBooked:
			sc.Sessions.Booked++
		case types.SessionCompleted:
			sc.Sessions.Completed++
		case types.SessionCanceled:
			sc.Sessions.Canceled++
		}
	}

	for _, m := range materials {
		sc.Materials.Total++
		if m.IsPlaceholder {
			sc.Materials.Pending++
		} else {
			sc.Materials.Uploaded++
		}
	}

	overall := Progress{Total: sc.Tasks.Total + sc.Subtasks.Total, Done: sc.Tasks.Done + sc.Subtasks.Done}
	overall.finish()
	sc.Overall = overall.Percent

	sc.Tasks.finish()
	sc.Subtasks.finish()
	return sc
}
