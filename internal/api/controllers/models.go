package controllers

import "github.com/datallboy/gofetch/internal/domain"

type EnqueueRequest struct {
	URLs []string `json:"urls"`
}

// EnqueueResponse reports rejected entries by position, never by URL.
type EnqueueResponse struct {
	Accepted int   `json:"accepted"`
	Rejected []int `json:"rejected"`
	Pending  int   `json:"pending"`
}

type QueueStatus struct {
	Pending int `json:"pending"`
}

type HistoryResponse struct {
	Items  []*domain.TransferRecord `json:"items"`
	Totals map[domain.Outcome]int   `json:"totals"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
