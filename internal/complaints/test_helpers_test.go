package complaints

import (
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

func newTestService(t *testing.T, ids []string) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:complaints_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Complaint{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	generator := &staticIDGenerator{ids: ids}
	clock := func() time.Time { return time.Unix(1700000600, 0).UTC() }

	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock,
		IDProvider: generator,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	return service, db
}

func mustComplaintID(t *testing.T, value string) ComplaintID {
	t.Helper()
	id, err := NewComplaintID(value)
	if err != nil {
		t.Fatalf("unexpected complaint id error: %v", err)
	}
	return id
}

func statusPtr(status Status) *Status {
	return &status
}

func stringPtr(value string) *string {
	return &value
}

func seedComplaint(t *testing.T, db *gorm.DB, record Complaint) {
	t.Helper()
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("failed to seed complaint: %v", err)
	}
}
