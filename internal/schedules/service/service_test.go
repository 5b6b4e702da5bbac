package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	scheduleerrors "salonbook/internal/schedules/errors"
	"salonbook/internal/schedules/validator"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                log,
		ReadTimeout:        5 * time.Second,
		SlotIntervalMin:    30,
		AdvanceBookingDays: 30,
	}
}

type publishedEvent struct {
	eventType string
	evt       model.AvailabilityEvent
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *mockPublisher) Publish(_ context.Context, eventType string, evt model.AvailabilityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, evt})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

// --- working hours ---

type mockWorkingHoursRepo struct {
	mu        sync.Mutex
	rows      map[string]*model.WorkingHours
	nextID    int
	countFunc func(ctx context.Context) (int64, error)
	findAll   func(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, error)
}

func newMockWorkingHoursRepo(rows ...*model.WorkingHours) *mockWorkingHoursRepo {
	r := &mockWorkingHoursRepo{rows: map[string]*model.WorkingHours{}}
	for _, wh := range rows {
		r.rows[wh.ID] = wh
	}
	return r
}

func (r *mockWorkingHoursRepo) Create(_ context.Context, wh *model.WorkingHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	wh.ID = fmt.Sprintf("wh-%d", r.nextID)
	cp := *wh
	r.rows[wh.ID] = &cp
	return nil
}

func (r *mockWorkingHoursRepo) FindByID(_ context.Context, id string) (*model.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.rows[id]
	if !ok {
		return nil, scheduleerrors.ErrWorkingHoursNotFound
	}
	cp := *wh
	return &cp, nil
}

func (r *mockWorkingHoursRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, error) {
	if r.findAll != nil {
		return r.findAll(ctx, limit, offset)
	}
	return nil, nil
}

func (r *mockWorkingHoursRepo) Count(ctx context.Context) (int64, error) {
	if r.countFunc != nil {
		return r.countFunc(ctx)
	}
	return int64(len(r.rows)), nil
}

func (r *mockWorkingHoursRepo) FindByTechnician(_ context.Context, technicianID string) ([]*model.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.WorkingHours
	for _, wh := range r.rows {
		if wh.TechnicianID == technicianID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (r *mockWorkingHoursRepo) FindActive(_ context.Context, technicianID string, dayOfWeek int) ([]*model.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.WorkingHours
	for _, wh := range r.rows {
		if wh.TechnicianID == technicianID && wh.DayOfWeek == dayOfWeek && wh.IsActive {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (r *mockWorkingHoursRepo) Update(_ context.Context, id string, wh *model.WorkingHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return scheduleerrors.ErrWorkingHoursNotFound
	}
	cp := *wh
	r.rows[id] = &cp
	return nil
}

func (r *mockWorkingHoursRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return scheduleerrors.ErrWorkingHoursNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *mockWorkingHoursRepo) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func newWorkingHoursService(repo *mockWorkingHoursRepo) (WorkingHoursService, *mockPublisher) {
	cfg := testConfig()
	pub := &mockPublisher{}
	return NewWorkingHoursService(repo, validator.NewScheduleValidator(cfg.Log), pub, cfg), pub
}

func mondayRow(id string, active bool) *model.WorkingHours {
	return &model.WorkingHours{
		ID:           id,
		TechnicianID: "tech-1",
		DayOfWeek:    1,
		StartTime:    "09:00",
		EndTime:      "17:00",
		IsActive:     active,
	}
}

func TestWorkingHours_Create(t *testing.T) {
	repo := newMockWorkingHoursRepo()
	svc, pub := newWorkingHoursService(repo)

	wh := &model.WorkingHours{TechnicianID: " tech-1 ", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "17:30:00", IsActive: true}
	if err := svc.Create(context.Background(), wh); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if wh.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if wh.TechnicianID != "tech-1" || wh.StartTime != "09:00" || wh.EndTime != "17:30" {
		t.Errorf("row not normalized: %+v", wh)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.EventWorkingHoursChanged || pub.events[0].evt.TechnicianID != "tech-1" {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestWorkingHours_CreateRejectsSecondActiveRow(t *testing.T) {
	repo := newMockWorkingHoursRepo(mondayRow("existing", true))
	svc, pub := newWorkingHoursService(repo)

	err := svc.Create(context.Background(), mondayRow("", true))

	assertCode(t, err, apperrors.CodeConflict)
	if len(repo.rows) != 1 {
		t.Error("second active row must not be stored")
	}
	if len(pub.events) != 0 {
		t.Error("no event expected on conflict")
	}
}

func TestWorkingHours_CreateInactiveAlongsideActive(t *testing.T) {
	repo := newMockWorkingHoursRepo(mondayRow("existing", true))
	svc, _ := newWorkingHoursService(repo)

	if err := svc.Create(context.Background(), mondayRow("", false)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(repo.rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(repo.rows))
	}
}

func TestWorkingHours_CreateInvalid(t *testing.T) {
	svc, pub := newWorkingHoursService(newMockWorkingHoursRepo())

	wh := mondayRow("", true)
	wh.EndTime = "08:00"
	err := svc.Create(context.Background(), wh)

	assertCode(t, err, apperrors.CodeValidation)
	if len(pub.events) != 0 {
		t.Error("no event expected for invalid input")
	}
}

func TestWorkingHours_Update(t *testing.T) {
	active := true
	tests := []struct {
		name     string
		rows     []*model.WorkingHours
		id       string
		updates  model.WorkingHoursUpdate
		wantCode string
	}{
		{
			name:    "change own window",
			rows:    []*model.WorkingHours{mondayRow("a", true)},
			id:      "a",
			updates: model.WorkingHoursUpdate{StartTime: "10:00"},
		},
		{
			name:     "activate while another row is active",
			rows:     []*model.WorkingHours{mondayRow("a", true), mondayRow("b", false)},
			id:       "b",
			updates:  model.WorkingHoursUpdate{IsActive: &active},
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "inverted window",
			rows:     []*model.WorkingHours{mondayRow("a", true)},
			id:       "a",
			updates:  model.WorkingHoursUpdate{EndTime: "08:30"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "malformed time",
			rows:     []*model.WorkingHours{mondayRow("a", true)},
			id:       "a",
			updates:  model.WorkingHoursUpdate{StartTime: "nine"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "missing row",
			rows:     nil,
			id:       "zzz",
			updates:  model.WorkingHoursUpdate{StartTime: "10:00"},
			wantCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockWorkingHoursRepo(tt.rows...)
			svc, pub := newWorkingHoursService(repo)

			got, err := svc.Update(context.Background(), tt.id, &tt.updates)

			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				if len(pub.events) != 0 {
					t.Error("no event expected on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got.StartTime != "10:00" || repo.rows[tt.id].StartTime != "10:00" {
				t.Errorf("update not applied: %+v", got)
			}
			if len(pub.events) != 1 {
				t.Errorf("expected one event, got %d", len(pub.events))
			}
		})
	}
}

func TestWorkingHours_Delete(t *testing.T) {
	repo := newMockWorkingHoursRepo(mondayRow("a", true))
	svc, pub := newWorkingHoursService(repo)

	if err := svc.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].evt.TechnicianID != "tech-1" {
		t.Errorf("unexpected events %+v", pub.events)
	}

	assertCode(t, svc.Delete(context.Background(), "a"), apperrors.CodeNotFound)
}

func TestWorkingHours_GetAll_RaceCondition(t *testing.T) {
	repo := newMockWorkingHoursRepo()
	repo.countFunc = func(ctx context.Context) (int64, error) {
		time.Sleep(10 * time.Millisecond)
		return 50, nil
	}
	repo.findAll = func(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, error) {
		time.Sleep(10 * time.Millisecond)
		return []*model.WorkingHours{mondayRow("1", true)}, nil
	}
	svc, _ := newWorkingHoursService(repo)

	// Run with -race to catch unsynchronized writes from the two goroutines.
	for i := 0; i < 20; i++ {
		rows, count, err := svc.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 50 || len(rows) != 1 {
			t.Fatalf("iteration %d: got %d rows, count %d", i, len(rows), count)
		}
	}
}

func TestWorkingHours_GetAll_CountFailure(t *testing.T) {
	repo := newMockWorkingHoursRepo()
	repo.countFunc = func(ctx context.Context) (int64, error) { return 0, fmt.Errorf("connection reset") }
	svc, _ := newWorkingHoursService(repo)

	_, _, err := svc.GetAll(context.Background(), 10, 0)

	assertCode(t, err, apperrors.CodeInternal)
}

// --- blackouts ---

type mockBlackoutRepo struct {
	rows   map[string]*model.BlackoutPeriod
	nextID int
	lastTo *time.Time
}

func newMockBlackoutRepo(rows ...*model.BlackoutPeriod) *mockBlackoutRepo {
	r := &mockBlackoutRepo{rows: map[string]*model.BlackoutPeriod{}}
	for _, p := range rows {
		r.rows[p.ID] = p
	}
	return r
}

func (r *mockBlackoutRepo) Create(_ context.Context, p *model.BlackoutPeriod) error {
	r.nextID++
	p.ID = fmt.Sprintf("bo-%d", r.nextID)
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *mockBlackoutRepo) FindByID(_ context.Context, id string) (*model.BlackoutPeriod, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, scheduleerrors.ErrBlackoutNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockBlackoutRepo) FindAll(context.Context, int, int64) ([]*model.BlackoutPeriod, error) {
	return nil, nil
}

func (r *mockBlackoutRepo) Count(context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *mockBlackoutRepo) FindByTechnician(_ context.Context, technicianID string, from, to *time.Time) ([]*model.BlackoutPeriod, error) {
	r.lastTo = to
	var out []*model.BlackoutPeriod
	for _, p := range r.rows {
		if p.TechnicianID == technicianID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockBlackoutRepo) Update(_ context.Context, id string, p *model.BlackoutPeriod) error {
	if _, ok := r.rows[id]; !ok {
		return scheduleerrors.ErrBlackoutNotFound
	}
	cp := *p
	r.rows[id] = &cp
	return nil
}

func (r *mockBlackoutRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return scheduleerrors.ErrBlackoutNotFound
	}
	delete(r.rows, id)
	return nil
}

func newBlackoutService(repo *mockBlackoutRepo) (BlackoutService, *mockPublisher) {
	cfg := testConfig()
	pub := &mockPublisher{}
	return NewBlackoutService(repo, validator.NewScheduleValidator(cfg.Log), pub, cfg), pub
}

var june3 = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

func TestBlackout_Create(t *testing.T) {
	svc, pub := newBlackoutService(newMockBlackoutRepo())

	p := &model.BlackoutPeriod{
		TechnicianID: "tech-1",
		Start:        june3,
		End:          june3.Add(48 * time.Hour),
		Title:        "  Trade   show ",
		PeriodType:   " Event ",
	}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Title != "Trade show" || p.PeriodType != "event" {
		t.Errorf("not sanitized: %q %q", p.Title, p.PeriodType)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	e := pub.events[0]
	if e.eventType != model.EventBlackoutChanged || !e.evt.Start.Equal(p.Start) || !e.evt.End.Equal(p.End) {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestBlackout_CreateRejectsInvertedRange(t *testing.T) {
	svc, pub := newBlackoutService(newMockBlackoutRepo())

	err := svc.Create(context.Background(), &model.BlackoutPeriod{
		TechnicianID: "tech-1",
		Start:        june3,
		End:          june3.Add(-time.Hour),
		Title:        "Backwards",
	})

	assertCode(t, err, apperrors.CodeValidation)
	if len(pub.events) != 0 {
		t.Error("no event expected")
	}
}

func TestBlackout_UpdatePublishesUnionOfRanges(t *testing.T) {
	repo := newMockBlackoutRepo(&model.BlackoutPeriod{
		ID:           "bo",
		TechnicianID: "tech-1",
		Start:        june3,
		End:          june3.Add(2 * time.Hour),
		Title:        "Dentist",
	})
	svc, pub := newBlackoutService(repo)

	newStart := june3.Add(24 * time.Hour)
	newEnd := newStart.Add(time.Hour)
	got, err := svc.Update(context.Background(), "bo", &model.BlackoutPeriodUpdate{Start: &newStart, End: &newEnd})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !got.Start.Equal(newStart) {
		t.Errorf("start = %v", got.Start)
	}

	e := pub.events[0].evt
	if !e.Start.Equal(june3) || !e.End.Equal(newEnd) {
		t.Errorf("event range = %v - %v, want %v - %v", e.Start, e.End, june3, newEnd)
	}
}

func TestBlackout_UpdateEndBeforeStart(t *testing.T) {
	repo := newMockBlackoutRepo(&model.BlackoutPeriod{
		ID:           "bo",
		TechnicianID: "tech-1",
		Start:        june3,
		End:          june3.Add(2 * time.Hour),
		Title:        "Dentist",
	})
	svc, _ := newBlackoutService(repo)

	end := june3.Add(-time.Minute)
	_, err := svc.Update(context.Background(), "bo", &model.BlackoutPeriodUpdate{End: &end})

	assertCode(t, err, apperrors.CodeValidation)
}

func TestBlackout_GetByTechnician(t *testing.T) {
	repo := newMockBlackoutRepo()
	svc, _ := newBlackoutService(repo)

	from := june3
	to := june3.Add(-time.Hour)
	_, err := svc.GetByTechnician(context.Background(), "tech-1", &from, &to)
	assertCode(t, err, apperrors.CodeInvalidInput)

	_, err = svc.GetByTechnician(context.Background(), "", nil, nil)
	assertCode(t, err, apperrors.CodeInvalidInput)

	got, err := svc.GetByTechnician(context.Background(), "tech-1", &from, nil)
	if err != nil || got == nil || repo.lastTo != nil {
		t.Errorf("open-ended search: got %v, err %v, to %v", got, err, repo.lastTo)
	}
}

// --- settings ---

type mockSettingsRepo struct {
	stored *model.BusinessSettings
	saves  int
}

func (r *mockSettingsRepo) Get(context.Context) (*model.BusinessSettings, error) {
	if r.stored == nil {
		return nil, nil
	}
	cp := *r.stored
	return &cp, nil
}

func (r *mockSettingsRepo) Save(_ context.Context, s *model.BusinessSettings) error {
	r.saves++
	cp := *s
	r.stored = &cp
	return nil
}

func newSettingsService(repo *mockSettingsRepo) (SettingsService, *mockPublisher) {
	cfg := testConfig()
	pub := &mockPublisher{}
	return NewSettingsService(repo, validator.NewScheduleValidator(cfg.Log), pub, cfg), pub
}

func TestSettings_GetDefaults(t *testing.T) {
	svc, _ := newSettingsService(&mockSettingsRepo{})

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SlotDuration != 30 || got.AdvanceBookingDays != 30 || !got.IsAcceptingBookings {
		t.Errorf("unexpected defaults %+v", got)
	}
}

func TestSettings_Update(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc, pub := newSettingsService(repo)

	tech := "tech-9"
	interval := 15
	closed := false
	got, err := svc.Update(context.Background(), &model.BusinessSettingsUpdate{
		TechnicianID:        &tech,
		SlotDuration:        &interval,
		IsAcceptingBookings: &closed,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got.TechnicianID != "tech-9" || got.SlotDuration != 15 || got.IsAcceptingBookings || got.AdvanceBookingDays != 30 {
		t.Errorf("unexpected merged settings %+v", got)
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d", repo.saves)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.EventSettingsChanged {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestSettings_UpdateInvalid(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc, pub := newSettingsService(repo)

	interval := 2
	_, err := svc.Update(context.Background(), &model.BusinessSettingsUpdate{SlotDuration: &interval})

	assertCode(t, err, apperrors.CodeValidation)
	if repo.saves != 0 || len(pub.events) != 0 {
		t.Error("invalid settings must not be saved or published")
	}
}
