package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/models"
	"github.com/noah-isme/samms-api/internal/repository"
)

type memorySaver struct {
	mu    sync.Mutex
	saves int
	err   error
}

func (s *memorySaver) Save(_ context.Context, _ *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.err
}

func (s *memorySaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// newSeededStore wraps the default seed: teacher1, s1..s3 bound to stu_1..stu_3
// (Alice Johnson and Bob Smith in 10A, Carlos Lee in 10B).
func newSeededStore(t *testing.T) (*datastore.DataStore, *memorySaver) {
	t.Helper()
	saver := &memorySaver{}
	return datastore.New(repository.DefaultStore(), saver, zerolog.Nop()), saver
}

func newTestRecordService(store *datastore.DataStore) *recordService {
	svc := NewRecordService(store, NewValidator(), zerolog.Nop()).(*recordService)
	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("id-%03d", counter)
	}
	return svc
}

func floatPointer(v float64) *float64 {
	return &v
}

func snapshot(store *datastore.DataStore) models.Store {
	var copied models.Store
	store.View(func(db *models.Store) {
		copied = *db
		copied.Users = append([]models.User(nil), db.Users...)
		copied.Students = append([]models.Student(nil), db.Students...)
		copied.Assessments = append([]models.Assessment(nil), db.Assessments...)
		copied.Marks = append([]models.Mark(nil), db.Marks...)
		copied.Attendance = append([]models.AttendanceRecord(nil), db.Attendance...)
	})
	return copied
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
