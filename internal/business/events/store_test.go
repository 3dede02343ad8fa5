package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

var errNoSQL = errors.New("memory store does not run SQL")

// memStore implements every repository the service uses. Transactions
// snapshot it on begin and restore it on rollback.
type memStore struct {
	masters    map[string]*model.MasterEvent
	exceptions map[string]*model.ExceptionEvent
	attendees  map[string]*model.Attendee
	calendars  map[string]*model.Calendar

	failures map[string]error
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		masters:    map[string]*model.MasterEvent{},
		exceptions: map[string]*model.ExceptionEvent{},
		attendees:  map[string]*model.Attendee{},
		calendars:  map[string]*model.Calendar{},
		failures:   map[string]error{},
	}
}

func (s *memStore) failOn(method string, err error) {
	s.failures[method] = err
}

func (s *memStore) fail(method string) error {
	return s.failures[method]
}

func cloneMaster(m *model.MasterEvent) *model.MasterEvent {
	c := *m
	c.ExDates = make(map[int64]struct{}, len(m.ExDates))
	for e := range m.ExDates {
		c.ExDates[e] = struct{}{}
	}
	if m.DeletedAt != nil {
		at := *m.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func cloneException(e *model.ExceptionEvent) *model.ExceptionEvent {
	c := *e
	return &c
}

func cloneAttendee(a *model.Attendee) *model.Attendee {
	c := *a
	return &c
}

type memSnapshot struct {
	masters    map[string]*model.MasterEvent
	exceptions map[string]*model.ExceptionEvent
	attendees  map[string]*model.Attendee
	calendars  map[string]*model.Calendar
}

func (s *memStore) snapshot() *memSnapshot {
	snap := &memSnapshot{
		masters:    make(map[string]*model.MasterEvent, len(s.masters)),
		exceptions: make(map[string]*model.ExceptionEvent, len(s.exceptions)),
		attendees:  make(map[string]*model.Attendee, len(s.attendees)),
		calendars:  make(map[string]*model.Calendar, len(s.calendars)),
	}
	for id, m := range s.masters {
		snap.masters[id] = cloneMaster(m)
	}
	for id, e := range s.exceptions {
		snap.exceptions[id] = cloneException(e)
	}
	for id, a := range s.attendees {
		snap.attendees[id] = cloneAttendee(a)
	}
	for id, c := range s.calendars {
		cc := *c
		snap.calendars[id] = &cc
	}
	return snap
}

func (s *memStore) restore(snap *memSnapshot) {
	s.masters = snap.masters
	s.exceptions = snap.exceptions
	s.attendees = snap.attendees
	s.calendars = snap.calendars
}

// noSQL is the Queryable part of memDB and memTx. Repositories of the
// memory store ignore the handle they are given.
type noSQL struct{}

func (noSQL) Exec(context.Context, database.Sqlizer) (pgconn.CommandTag, error) {
	return nil, errNoSQL
}

func (noSQL) Get(context.Context, interface{}, database.Sqlizer) error {
	return errNoSQL
}

func (noSQL) Select(context.Context, interface{}, database.Sqlizer) error {
	return errNoSQL
}

// memDB satisfies database.PGX on top of memStore.
type memDB struct {
	noSQL
	store *memStore
}

func (d *memDB) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	if err := d.store.fail("BeginTx"); err != nil {
		return nil, err
	}
	return &memTx{store: d.store, snap: d.store.snapshot()}, nil
}

type memTx struct {
	noSQL
	store *memStore
	snap  *memSnapshot
	done  bool
}

func (t *memTx) Commit(context.Context) error {
	if err := t.store.fail("Commit"); err != nil {
		return err
	}
	t.done = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if !t.done {
		t.store.restore(t.snap)
		t.done = true
	}
	return nil
}

func (s *memStore) CreateMaster(_ context.Context, _ database.Queryable, m *model.MasterEvent) error {
	if err := s.fail("CreateMaster"); err != nil {
		return err
	}
	if _, ok := s.masters[m.ID]; ok {
		return model.ErrAlreadyExists
	}
	s.masters[m.ID] = cloneMaster(m)
	return nil
}

func (s *memStore) CreateException(_ context.Context, _ database.Queryable, e *model.ExceptionEvent) error {
	if err := s.fail("CreateException"); err != nil {
		return err
	}
	for _, existing := range s.exceptions {
		if existing.UID == e.UID && existing.RecurrenceID.Equal(e.RecurrenceID) {
			return model.ErrAlreadyExists
		}
	}
	s.exceptions[e.ID] = cloneException(e)
	return nil
}

func (s *memStore) GetMaster(_ context.Context, _ database.Queryable, id string, _ bool) (*model.MasterEvent, error) {
	if err := s.fail("GetMaster"); err != nil {
		return nil, err
	}
	m, ok := s.masters[id]
	if !ok || m.DeletedAt != nil {
		return nil, model.ErrNotFound
	}
	return cloneMaster(m), nil
}

func (s *memStore) GetMasterByUID(_ context.Context, _ database.Queryable, uid string, _ bool) (*model.MasterEvent, error) {
	for _, m := range s.masters {
		if m.UID == uid {
			return cloneMaster(m), nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memStore) GetException(_ context.Context, _ database.Queryable, id string) (*model.ExceptionEvent, error) {
	e, ok := s.exceptions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneException(e), nil
}

func (s *memStore) GetExceptionByInstant(_ context.Context, _ database.Queryable, uid string, instant time.Time) (*model.ExceptionEvent, error) {
	for _, e := range s.exceptions {
		if e.UID == uid && e.RecurrenceID.Equal(instant) {
			return cloneException(e), nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memStore) GetMasters(_ context.Context, _ database.Queryable, filter model.EventsFilter) ([]*model.MasterEvent, error) {
	var res []*model.MasterEvent
	for _, m := range s.masters {
		if m.DeletedAt != nil {
			continue
		}
		if filter.CalendarID != "" && m.CalendarID != filter.CalendarID {
			continue
		}
		if filter.AttendeeUserID != "" && !s.invited(m.UID, filter.AttendeeUserID) {
			continue
		}
		if !filter.To.IsZero() {
			if !m.From.Before(filter.To) {
				continue
			}
			if !m.Recurring() && !m.To.After(filter.From) && m.From.Before(filter.From) {
				continue
			}
		}
		res = append(res, cloneMaster(m))
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].From.Before(res[j].From)
	})
	return res, nil
}

func (s *memStore) invited(uid, userID string) bool {
	for _, a := range s.attendees {
		if a.UID == uid && a.UserID == userID && a.Status != model.AttendeeStatusDeclined {
			return true
		}
	}
	return false
}

func (s *memStore) GetExceptions(_ context.Context, _ database.Queryable, uids []string) ([]*model.ExceptionEvent, error) {
	wanted := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		wanted[uid] = struct{}{}
	}

	var res []*model.ExceptionEvent
	for _, e := range s.exceptions {
		if _, ok := wanted[e.UID]; ok {
			res = append(res, cloneException(e))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].RecurrenceID.Before(res[j].RecurrenceID)
	})
	return res, nil
}

func (s *memStore) GetExceptionsInWindow(_ context.Context, _ database.Queryable, filter model.EventsFilter) ([]*model.ExceptionEvent, error) {
	if err := s.fail("GetExceptionsInWindow"); err != nil {
		return nil, err
	}

	w := model.Window{From: filter.From, To: filter.To}

	var res []*model.ExceptionEvent
	for _, e := range s.exceptions {
		var master *model.MasterEvent
		for _, m := range s.masters {
			if m.UID == e.UID {
				master = m
			}
		}
		if master == nil || master.DeletedAt != nil {
			continue
		}
		if filter.CalendarID != "" && master.CalendarID != filter.CalendarID {
			continue
		}
		if filter.AttendeeUserID != "" && !s.invited(e.UID, filter.AttendeeUserID) {
			continue
		}
		if !w.Overlaps(e.From, e.To) {
			continue
		}
		res = append(res, cloneException(e))
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].From.Before(res[j].From)
	})
	return res, nil
}

func (s *memStore) UpdateMaster(_ context.Context, _ database.Queryable, m *model.MasterEvent) error {
	if err := s.fail("UpdateMaster"); err != nil {
		return err
	}
	if _, ok := s.masters[m.ID]; !ok {
		return model.ErrNotFound
	}
	s.masters[m.ID] = cloneMaster(m)
	return nil
}

func (s *memStore) UpdateException(_ context.Context, _ database.Queryable, e *model.ExceptionEvent) error {
	if err := s.fail("UpdateException"); err != nil {
		return err
	}
	if _, ok := s.exceptions[e.ID]; !ok {
		return model.ErrNotFound
	}
	s.exceptions[e.ID] = cloneException(e)
	return nil
}

func (s *memStore) ReparentExceptions(_ context.Context, _ database.Queryable, uid string, from time.Time, newUID string, shift time.Duration) (int64, error) {
	if err := s.fail("ReparentExceptions"); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range s.exceptions {
		if e.UID == uid && !e.RecurrenceID.Before(from) {
			e.UID = newUID
			e.RecurrenceID = e.RecurrenceID.Add(shift)
			e.Sequence++
			n++
		}
	}
	// (uid, recurrence_id) is unique once the statement is done; rows may
	// pass over each other while it runs.
	if err := s.checkExceptionKeys(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *memStore) checkExceptionKeys() error {
	seen := make(map[string]struct{}, len(s.exceptions))
	for _, e := range s.exceptions {
		key := fmt.Sprintf("%s/%d", e.UID, e.RecurrenceID.Unix())
		if _, ok := seen[key]; ok {
			return fmt.Errorf("exception %s: %w", key, model.ErrAlreadyExists)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (s *memStore) SoftDeleteMaster(_ context.Context, _ database.Queryable, id string, at time.Time) error {
	if err := s.fail("SoftDeleteMaster"); err != nil {
		return err
	}
	m, ok := s.masters[id]
	if !ok || m.DeletedAt != nil {
		return model.ErrNotFound
	}
	m.DeletedAt = &at
	m.Sequence++
	return nil
}

func (s *memStore) DeleteException(_ context.Context, _ database.Queryable, id string) error {
	if err := s.fail("DeleteException"); err != nil {
		return err
	}
	if _, ok := s.exceptions[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.exceptions, id)
	return nil
}

func (s *memStore) DeleteExceptionsFrom(_ context.Context, _ database.Queryable, uid string, from time.Time) (int64, error) {
	if err := s.fail("DeleteExceptionsFrom"); err != nil {
		return 0, err
	}
	var n int64
	for id, e := range s.exceptions {
		if e.UID == uid && !e.RecurrenceID.Before(from) {
			delete(s.exceptions, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateAttendee(_ context.Context, _ database.Queryable, a *model.Attendee) error {
	if err := s.fail("CreateAttendee"); err != nil {
		return err
	}
	s.attendees[a.ID] = cloneAttendee(a)
	return nil
}

func (s *memStore) CopyAttendees(_ context.Context, _ database.Queryable, fromUID, toUID string) (int64, error) {
	if err := s.fail("CopyAttendees"); err != nil {
		return 0, err
	}
	var copies []*model.Attendee
	for _, a := range s.attendees {
		if a.UID == fromUID {
			s.seq++
			c := cloneAttendee(a)
			c.ID = fmt.Sprintf("copy-%d", s.seq)
			c.UID = toUID
			copies = append(copies, c)
		}
	}
	for _, c := range copies {
		s.attendees[c.ID] = c
	}
	return int64(len(copies)), nil
}

func (s *memStore) GetAttendees(ctx context.Context, q database.Queryable, uid string) ([]*model.Attendee, error) {
	return s.GetAttendeesBySeries(ctx, q, []string{uid})
}

func (s *memStore) GetAttendeesBySeries(_ context.Context, _ database.Queryable, uids []string) ([]*model.Attendee, error) {
	var res []*model.Attendee
	for _, a := range s.attendees {
		for _, uid := range uids {
			if a.UID == uid {
				res = append(res, cloneAttendee(a))
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Email < res[j].Email
	})
	return res, nil
}

func (s *memStore) GetAttendee(_ context.Context, _ database.Queryable, uid, id string) (*model.Attendee, error) {
	a, ok := s.attendees[id]
	if !ok || a.UID != uid {
		return nil, model.ErrNotFound
	}
	return cloneAttendee(a), nil
}

func (s *memStore) UpdateAttendeeStatus(_ context.Context, _ database.Queryable, uid, id string, status model.AttendeeStatus) error {
	a, ok := s.attendees[id]
	if !ok || a.UID != uid {
		return model.ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *memStore) DeleteAttendee(_ context.Context, _ database.Queryable, uid, id string) error {
	a, ok := s.attendees[id]
	if !ok || a.UID != uid {
		return model.ErrNotFound
	}
	delete(s.attendees, id)
	return nil
}

func (s *memStore) GetCalendarByOwner(_ context.Context, _ database.Queryable, ownerID string) (*model.Calendar, error) {
	for _, c := range s.calendars {
		if c.OwnerID == ownerID {
			cc := *c
			return &cc, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memStore) CreateCalendar(_ context.Context, _ database.Queryable, c *model.Calendar) error {
	cc := *c
	s.calendars[c.ID] = &cc
	return nil
}

// helpers for assertions

func (s *memStore) seriesMasters() []*model.MasterEvent {
	var res []*model.MasterEvent
	for _, m := range s.masters {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].From.Before(res[j].From)
	})
	return res
}

func (s *memStore) exceptionsOf(uid string) []*model.ExceptionEvent {
	var res []*model.ExceptionEvent
	for _, e := range s.exceptions {
		if e.UID == uid {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].RecurrenceID.Before(res[j].RecurrenceID)
	})
	return res
}

func (s *memStore) attendeesOf(uid string) []*model.Attendee {
	var res []*model.Attendee
	for _, a := range s.attendees {
		if a.UID == uid {
			res = append(res, a)
		}
	}
	return res
}
