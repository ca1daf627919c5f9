package erp

import (
	"context"
	"strings"
	"time"

	errx "github.com/erpbot/server/internal/core/error"
)

const (
	ToDoOpen   = "Open"
	ToDoClosed = "Closed"
)

// CreateToDo inserts an open ToDo. date may be nil.
func (s *Store) CreateToDo(ctx context.Context, description string, date *time.Time) (*ToDo, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errx.Validationf("description is mandatory")
	}
	td := &ToDo{
		Name:        newDocName("TODO"),
		Description: description,
		Status:      ToDoOpen,
	}
	if date != nil {
		d := truncateDay(*date)
		td.Date = &d
	}
	if err := s.db.WithContext(ctx).Create(td).Error; err != nil {
		return nil, dbErr("create todo", err)
	}
	return td, nil
}
