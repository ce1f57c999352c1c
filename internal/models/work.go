package models

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "Baja"
	PriorityMedium   Priority = "Media"
	PriorityHigh     Priority = "Alta"
	PriorityCritical Priority = "Crítica"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

type Status string

const (
	StatusQuote           Status = "Cotización"
	StatusPendingApproval Status = "Pendiente Aprobación"
	StatusBuyingMaterials Status = "Compra Materiales"
	StatusInProgress      Status = "En curso"
	StatusFinished        Status = "Finalizado"
	StatusCanceled        Status = "Cancelado"
)

// Statuses returns the labels in the order the staff app presents them.
func Statuses() []Status {
	return []Status{
		StatusQuote,
		StatusPendingApproval,
		StatusBuyingMaterials,
		StatusInProgress,
		StatusFinished,
		StatusCanceled,
	}
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Closed reports whether the status ends the active pipeline for display purposes.
// Nothing prevents a closed work from being reopened.
func (s Status) Closed() bool {
	return s == StatusFinished || s == StatusCanceled
}

type Work struct {
	ID                   int64       `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Measures             string      `json:"measures"`
	Category             *Category   `json:"category"`
	Priority             Priority    `json:"priority"`
	Status               Status      `json:"status"`
	EndDate              *time.Time  `json:"endDate"`
	CreateAt             time.Time   `json:"createAt"`
	Price                float64     `json:"price"`
	FinalPrice           *float64    `json:"finalPrice"`
	MarketingTitle       *string     `json:"marketingTitle,omitempty"`
	MarketingDescription *string     `json:"marketingDescription,omitempty"`
	Images               []WorkImage `json:"images"`
}

// CategoryID returns 0 when the work has no category.
func (w Work) CategoryID() int64 {
	if w.Category == nil {
		return 0
	}
	return w.Category.ID
}

// WorkPatch is a partial update; nil fields are left untouched.
type WorkPatch struct {
	Title                *string    `json:"title,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Measures             *string    `json:"measures,omitempty"`
	CategoryID           *int64     `json:"categoryId,omitempty"`
	Priority             *Priority  `json:"priority,omitempty"`
	Status               *Status    `json:"status,omitempty"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	Price                *float64   `json:"price,omitempty"`
	FinalPrice           *float64   `json:"finalPrice,omitempty"`
	MarketingTitle       *string    `json:"marketingTitle,omitempty"`
	MarketingDescription *string    `json:"marketingDescription,omitempty"`
}

func (p WorkPatch) Empty() bool {
	return p == WorkPatch{}
}

// WorkInput is the body of a create request. Empty priority and status take
// the server defaults.
type WorkInput struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Measures             string     `json:"measures"`
	CategoryID           *int64     `json:"categoryId"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	EndDate              *time.Time `json:"endDate"`
	Price                float64    `json:"price"`
	FinalPrice           *float64   `json:"finalPrice"`
	MarketingTitle       *string    `json:"marketingTitle"`
	MarketingDescription *string    `json:"marketingDescription"`
}
