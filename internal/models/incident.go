package models

import (
	"errors"
	"time"
)

// Status - статус обработки инцидента
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

var (
	// ErrIncidentNotFound возвращается хранилищем, если инцидента с таким id нет
	ErrIncidentNotFound = errors.New("incident not found")
	// ErrValidation - обязательное поле отсутствует или пустое
	ErrValidation = errors.New("validation failed")
	// ErrInvalidStatus - статус вне допустимого перечня
	ErrInvalidStatus = errors.New("invalid status")
)

// Statuses возвращает все допустимые статусы
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}
}

// Valid проверяет, что статус входит в перечень
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Incident - обращение гражданина с фотографией и описанием проблемы
type Incident struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Details    string    `json:"details"`
	Address    string    `json:"address"`
	Landmark   string    `json:"landmark"`
	ImageURL   string    `json:"imageUrl"`
	Status     Status    `json:"status"`
	AdminNotes string    `json:"adminNotes"`
	CreatedAt  time.Time `json:"createdAt"`
}
