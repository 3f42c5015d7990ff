package service

import "schedly/internal/models"

// Summary holds the dashboard figures.
type Summary struct {
	Services        int
	Appointments    int
	PendingPayments int
	Revenue         float64
	ByStatus        map[models.AppointmentStatus]int
}

// Summarize computes the dashboard. Revenue sums the price of every paid
// appointment whose service still exists and has a numeric price.
func Summarize(services []*models.Service, appointments []*models.Appointment) Summary {
	sum := Summary{
		Services:     len(services),
		Appointments: len(appointments),
		ByStatus:     make(map[models.AppointmentStatus]int),
	}

	for _, a := range appointments {
		sum.ByStatus[a.Status]++
		switch a.PaymentStatus {
		case models.PaymentPending:
			sum.PendingPayments++
		case models.PaymentPaid:
			svc := ResolveService(services, a.ServiceID)
			if svc == nil {
				continue
			}
			if amount, ok := svc.Amount(); ok {
				sum.Revenue += amount
			}
		}
	}
	return sum
}
