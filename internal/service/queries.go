package service

import (
	"sort"
	"time"

	"schedly/internal/models"
)

// FilterAll selects every appointment in FilterByStatus.
const FilterAll = "all"

// FilterByStatus returns the appointments whose status equals filter, or a
// copy of all of them for FilterAll or an empty filter.
func FilterByStatus(appointments []*models.Appointment, filter string) []*models.Appointment {
	out := make([]*models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if filter == "" || filter == FilterAll || string(a.Status) == filter {
			out = append(out, a)
		}
	}
	return out
}

// SortChronological orders appointments by date and time, earliest first.
// Appointments whose date or time cannot be parsed keep their relative
// order after all others. The input slice is not modified.
func SortChronological(appointments []*models.Appointment) []*models.Appointment {
	type keyed struct {
		a  *models.Appointment
		at time.Time
		ok bool
	}
	items := make([]keyed, len(appointments))
	for i, a := range appointments {
		at, err := a.StartsAt(time.UTC)
		items[i] = keyed{a: a, at: at, ok: err == nil}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].ok && items[i].at.Before(items[j].at)
	})

	out := make([]*models.Appointment, len(items))
	for i, item := range items {
		out[i] = item.a
	}
	return out
}

// ResolveService finds the service an appointment points at. A nil result
// means the service was deleted and should be shown as unavailable.
func ResolveService(services []*models.Service, serviceID string) *models.Service {
	for _, s := range services {
		if s.ID == serviceID {
			return s
		}
	}
	return nil
}
