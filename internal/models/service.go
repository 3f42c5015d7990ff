package models

import (
	"strconv"
	"strings"
)

// Service is an offering a provider can be booked for.
type Service struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CreatedAt   string `json:"createdAt"`
}

func (s *Service) GetID() string   { return s.ID }
func (s *Service) SetID(id string) { s.ID = id }

// Amount extracts the numeric part of the free-form price string.
// "$75" and "75.50 USD" both parse; ok is false when nothing numeric is found.
func (s *Service) Amount() (float64, bool) {
	var b strings.Builder
	for _, r := range s.Price {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
			continue
		}
		if r == ',' {
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
