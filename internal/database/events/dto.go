package events

import (
	"sort"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

type eventDTO struct {
	ID           string
	UID          string `db:"uid"`
	CalendarID   string
	RecurrenceID *time.Time
	StartAt      time.Time
	EndAt        time.Time
	RRule        string `db:"rrule"`
	Exdate       []time.Time
	Sequence     int
	Summary      string
	Description  string
	Location     string
	Status       string
	DeletedAt    *time.Time
}

func mapToMaster(dto *eventDTO) *model.MasterEvent {
	exDates := make(map[int64]struct{}, len(dto.Exdate))
	for _, e := range dto.Exdate {
		exDates[e.Unix()] = struct{}{}
	}

	return &model.MasterEvent{
		ID:           dto.ID,
		UID:          dto.UID,
		CalendarID:   dto.CalendarID,
		From:         dto.StartAt.UTC().Truncate(time.Second),
		To:           dto.EndAt.UTC().Truncate(time.Second),
		RRule:        dto.RRule,
		ExDates:      exDates,
		Sequence:     dto.Sequence,
		DeletedAt:    dto.DeletedAt,
		EventContent: mapToContent(dto),
	}
}

func mapToException(dto *eventDTO) *model.ExceptionEvent {
	var recurrenceID time.Time
	if dto.RecurrenceID != nil {
		recurrenceID = dto.RecurrenceID.UTC().Truncate(time.Second)
	}

	return &model.ExceptionEvent{
		ID:           dto.ID,
		UID:          dto.UID,
		CalendarID:   dto.CalendarID,
		RecurrenceID: recurrenceID,
		From:         dto.StartAt.UTC().Truncate(time.Second),
		To:           dto.EndAt.UTC().Truncate(time.Second),
		Sequence:     dto.Sequence,
		EventContent: mapToContent(dto),
	}
}

func mapToContent(dto *eventDTO) model.EventContent {
	return model.EventContent{
		Summary:     dto.Summary,
		Description: dto.Description,
		Location:    dto.Location,
		Status:      model.EventStatus(dto.Status),
	}
}

// exDateList returns the exclusions in ascending order so that the stored
// array is stable across rewrites.
func exDateList(exDates map[int64]struct{}) []time.Time {
	res := make([]time.Time, 0, len(exDates))
	for e := range exDates {
		res = append(res, time.Unix(e, 0).UTC())
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Before(res[j])
	})
	return res
}
