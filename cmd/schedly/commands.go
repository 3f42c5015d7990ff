package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"schedly/internal/export"
	"schedly/internal/models"
	"schedly/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/gosuri/uitable"
	"github.com/juju/gnuflag"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"signup":             {"create an account and log in", cmdSignup},
	"login":              {"log in", cmdLogin},
	"logout":             {"end the session", cmdLogout},
	"whoami":             {"show the logged-in user", cmdWhoami},
	"settings":           {"update PayPal handle or password", cmdSettings},
	"services":           {"list your services", cmdServices},
	"service":            {"show one service", cmdService},
	"save-service":       {"create or update a service", cmdSaveService},
	"delete-service":     {"delete a service", cmdDeleteService},
	"appointments":       {"list your appointments", cmdAppointments},
	"appointment":        {"show one appointment", cmdAppointment},
	"save-appointment":   {"create or update an appointment", cmdSaveAppointment},
	"delete-appointment": {"delete an appointment", cmdDeleteAppointment},
	"book":               {"book a service as a customer", cmdBook},
	"status":             {"set an appointment's status", cmdStatus},
	"pay-cash":           {"record a cash payment", cmdPayCash},
	"paypal-link":        {"print the PayPal payment link", cmdPayPalLink},
	"confirm-paypal":     {"record a PayPal payment", cmdConfirmPayPal},
	"dashboard":          {"show totals and revenue", cmdDashboard},
	"calendar":           {"show a month of appointments", cmdCalendar},
	"export":             {"write appointments to an .xlsx file", cmdExport},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: schedly <command> [flags]")
	fmt.Fprintln(w)
	table := uitable.New()
	for _, name := range names {
		table.AddRow("  "+name, commands[name].summary)
	}
	fmt.Fprintln(w, table)
}

type flagSet struct {
	*gnuflag.FlagSet
	name string
}

func newFlagSet(a *app, name string) *flagSet {
	fs := gnuflag.NewFlagSet(name, gnuflag.ContinueOnError)
	fs.SetOutput(a.out)
	return &flagSet{FlagSet: fs, name: name}
}

// parse parses flags and checks the number of positional arguments.
func parse(fs *flagSet, args []string, positional ...string) ([]string, error) {
	if err := fs.Parse(true, args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) != len(positional) {
		return nil, fmt.Errorf("usage: schedly %s [flags] %s", fs.name, strings.Join(positional, " "))
	}
	return rest, nil
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	return &o.value
}

func credentialFlags(fs *flagSet) (*string, *string) {
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("SCHEDLY_PASSWORD"), "account password (default $SCHEDLY_PASSWORD)")
	return email, password
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "signup")
	email, password := credentialFlags(fs)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	s, err := a.auth.Signup(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s\n", s.User.Email)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email, password := credentialFlags(fs)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	s, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", s.User.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if _, err := parse(newFlagSet(a, "logout"), args); err != nil {
		return err
	}
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	if _, err := parse(newFlagSet(a, "whoami"), args); err != nil {
		return err
	}
	s := a.auth.Current(ctx)
	if !s.Authenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	table := uitable.New()
	table.AddRow("ID:", s.User.ID)
	table.AddRow("Email:", s.User.Email)
	table.AddRow("PayPal:", valueOr(s.User.PayPalHandle, "not set"))
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdSettings(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "settings")
	var handle optionalString
	fs.Var(&handle, "paypal", "PayPal.me handle; empty clears it, omitted keeps it")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "repeat the new password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if _, err := a.auth.UpdateSettings(ctx, handle.ptr(), *password, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Settings saved successfully!")
	return nil
}

// requireSession resolves the logged-in user.
func requireSession(ctx context.Context, a *app) (service.Session, error) {
	s := a.auth.Current(ctx)
	if !s.Authenticated() {
		return s, errors.New("not logged in")
	}
	return s, nil
}

func cmdServices(ctx context.Context, a *app, args []string) error {
	if _, err := parse(newFlagSet(a, "services"), args); err != nil {
		return err
	}
	services, err := a.gw.ListServices(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		fmt.Fprintln(a.out, "No services yet")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("ID", "TITLE", "PRICE", "CREATED", "BOOKING LINK")
	for _, s := range services {
		table.AddRow(s.ID, s.Title, s.Price, a.ago(s.CreatedAt), service.BookingLink(a.cfg.API.BaseURL, s.ID))
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdService(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "service"), args, "<id>")
	if err != nil {
		return err
	}
	s, err := a.gw.GetService(ctx, rest[0])
	if err != nil {
		return err
	}
	if s == nil {
		return service.ErrServiceNotFound
	}

	table := uitable.New()
	table.Wrap = true
	table.MaxColWidth = 60
	table.AddRow("ID:", s.ID)
	table.AddRow("Title:", s.Title)
	table.AddRow("Description:", s.Description)
	table.AddRow("Price:", s.Price)
	table.AddRow("Created:", a.ago(s.CreatedAt))
	table.AddRow("Booking link:", service.BookingLink(a.cfg.API.BaseURL, s.ID))
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdSaveService(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "save-service")
	id := fs.String("id", "", "service to update; empty creates a new one")
	title := fs.String("title", "", "title")
	description := fs.String("description", "", "description")
	price := fs.String("price", "", "display price, e.g. $75")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	sess, err := requireSession(ctx, a)
	if err != nil {
		return err
	}

	svc := &models.Service{ID: *id}
	if *id != "" {
		existing, err := a.gw.GetService(ctx, *id)
		if err != nil {
			return err
		}
		if existing != nil {
			svc = existing
		}
	}
	setIf(&svc.Title, *title)
	setIf(&svc.Description, *description)
	setIf(&svc.Price, *price)

	saved, err := a.catalog.Save(ctx, sess, svc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved service %s\n", saved.ID)
	return nil
}

func cmdDeleteService(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "delete-service"), args, "<id>")
	if err != nil {
		return err
	}
	if err := a.gw.DeleteService(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted service %s\n", rest[0])
	return nil
}

func cmdAppointments(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "appointments")
	status := fs.String("status", service.FilterAll, "all, scheduled, completed or cancelled")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *status != service.FilterAll && !models.AppointmentStatus(*status).Valid() {
		return fmt.Errorf("unknown status %q", *status)
	}

	appointments, err := a.gw.ListAppointments(ctx)
	if err != nil {
		return err
	}
	services, err := a.gw.ListServices(ctx)
	if err != nil {
		return err
	}

	list := service.SortChronological(service.FilterByStatus(appointments, *status))
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No appointments")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "DATE", "TIME", "SERVICE", "CUSTOMER", "STATUS", "PAYMENT")
	for _, appt := range list {
		table.AddRow(appt.ID, appt.Date, appt.Time, serviceTitle(services, appt.ServiceID), appt.CustomerName, appt.Status, appt.PaymentStatus)
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdAppointment(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "appointment"), args, "<id>")
	if err != nil {
		return err
	}
	appt, err := a.gw.GetAppointment(ctx, rest[0])
	if err != nil {
		return err
	}
	if appt == nil {
		return service.ErrAppointmentNotFound
	}

	title := "service unavailable"
	if svc, err := a.gw.GetService(ctx, appt.ServiceID); err == nil && svc != nil {
		title = svc.Title
	}

	table := uitable.New()
	table.Wrap = true
	table.MaxColWidth = 60
	table.AddRow("ID:", appt.ID)
	table.AddRow("Service:", title)
	table.AddRow("Customer:", appt.CustomerName)
	table.AddRow("Phone:", appt.CustomerPhone)
	table.AddRow("Email:", appt.CustomerEmail)
	table.AddRow("When:", appt.Date+" "+appt.Time)
	table.AddRow("Status:", appt.Status)
	table.AddRow("Payment:", paymentLabel(appt))
	table.AddRow("Notes:", appt.Notes)
	if !appt.IsPaid() {
		table.AddRow("Payment link:", service.PaymentLink(a.cfg.API.BaseURL, appt.ID))
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdSaveAppointment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "save-appointment")
	id := fs.String("id", "", "appointment to update; empty creates a new one")
	serviceID := fs.String("service", "", "service ID")
	name := fs.String("name", "", "customer name")
	phone := fs.String("phone", "", "customer phone")
	email := fs.String("email", "", "customer email")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	clock := fs.String("time", "", "time, HH:MM")
	status := fs.String("status", "", "scheduled, completed or cancelled")
	payment := fs.String("payment", "", "pending or paid")
	method := fs.String("method", "", "cash, paypal or stripe")
	notes := fs.String("notes", "", "notes")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	sess, err := requireSession(ctx, a)
	if err != nil {
		return err
	}

	appt := &models.Appointment{ID: *id}
	if *id != "" {
		existing, err := a.gw.GetAppointment(ctx, *id)
		if err != nil {
			return err
		}
		if existing != nil {
			appt = existing
		}
	}
	setIf(&appt.ServiceID, *serviceID)
	setIf(&appt.CustomerName, *name)
	setIf(&appt.CustomerPhone, *phone)
	setIf(&appt.CustomerEmail, *email)
	setIf(&appt.Date, *date)
	setIf(&appt.Time, *clock)
	setIf(&appt.Notes, *notes)
	if *status != "" {
		appt.Status = models.AppointmentStatus(*status)
	}
	if *payment != "" {
		appt.PaymentStatus = models.PaymentStatus(*payment)
	}
	if *method != "" {
		appt.PaymentMethod = models.PaymentMethod(*method)
	}

	saved, err := a.booking.Schedule(ctx, sess, appt)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved appointment %s\n", saved.ID)
	return nil
}

func cmdDeleteAppointment(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "delete-appointment"), args, "<id>")
	if err != nil {
		return err
	}
	if err := a.gw.DeleteAppointment(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted appointment %s\n", rest[0])
	return nil
}

func cmdBook(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "book")
	var req service.BookingRequest
	fs.StringVar(&req.CustomerName, "name", "", "your name")
	fs.StringVar(&req.CustomerPhone, "phone", "", "your phone")
	fs.StringVar(&req.CustomerEmail, "email", "", "your email")
	fs.StringVar(&req.Date, "date", "", "date, YYYY-MM-DD")
	fs.StringVar(&req.Time, "time", "", "time, HH:MM")
	fs.StringVar(&req.Notes, "notes", "", "notes for the provider")
	rest, err := parse(fs, args, "<service-id>")
	if err != nil {
		return err
	}

	appt, err := a.booking.Book(ctx, rest[0], req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Booking Confirmed")
	fmt.Fprintf(a.out, "Appointment %s on %s at %s\n", appt.ID, appt.Date, appt.Time)
	fmt.Fprintf(a.out, "Pay at %s\n", service.PaymentLink(a.cfg.API.BaseURL, appt.ID))
	return nil
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "status"), args, "<id>", "<status>")
	if err != nil {
		return err
	}
	appt, err := a.booking.SetStatus(ctx, rest[0], models.AppointmentStatus(rest[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Appointment %s is %s\n", appt.ID, appt.Status)
	return nil
}

func cmdPayCash(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "pay-cash"), args, "<id>")
	if err != nil {
		return err
	}
	if _, err := a.payments.PayCash(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Payment marked as cash. Thank you!")
	return nil
}

func cmdPayPalLink(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "paypal-link"), args, "<id>")
	if err != nil {
		return err
	}
	link, err := a.payments.PayPalLink(ctx, rest[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, link)
	fmt.Fprintf(a.out, "After paying, run: schedly confirm-paypal %s\n", rest[0])
	return nil
}

func cmdConfirmPayPal(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet(a, "confirm-paypal"), args, "<id>")
	if err != nil {
		return err
	}
	if _, err := a.payments.ConfirmPayPal(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Payment Confirmed")
	return nil
}

func cmdDashboard(ctx context.Context, a *app, args []string) error {
	if _, err := parse(newFlagSet(a, "dashboard"), args); err != nil {
		return err
	}
	sess, err := requireSession(ctx, a)
	if err != nil {
		return err
	}
	services, err := a.gw.ListServices(ctx)
	if err != nil {
		return err
	}
	appointments, err := a.gw.ListAppointments(ctx)
	if err != nil {
		return err
	}

	sum := service.Summarize(services, appointments)
	table := uitable.New()
	table.AddRow("Account:", sess.User.Email)
	table.AddRow("Services:", sum.Services)
	table.AddRow("Appointments:", sum.Appointments)
	table.AddRow("Scheduled:", sum.ByStatus[models.StatusScheduled])
	table.AddRow("Pending payments:", sum.PendingPayments)
	table.AddRow("Total revenue:", "$"+humanize.CommafWithDigits(sum.Revenue, 2))
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdCalendar(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "calendar")
	month := fs.String("month", a.now().Format("2006-01"), "month to show, YYYY-MM")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	first, err := time.Parse("2006-01", *month)
	if err != nil {
		return fmt.Errorf("month must be YYYY-MM: %w", err)
	}

	appointments, err := a.gw.ListAppointments(ctx)
	if err != nil {
		return err
	}
	view := service.MonthGrid(first.Year(), first.Month(), appointments)

	fmt.Fprintf(a.out, "%s %d\n", view.Month, view.Year)
	table := uitable.New()
	table.AddRow("Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun")
	for _, week := range view.Weeks {
		row := make([]interface{}, 0, len(week))
		for _, cell := range week {
			switch {
			case cell.Day == 0:
				row = append(row, "")
			case cell.Count > 0:
				row = append(row, fmt.Sprintf("%d(%d)", cell.Day, cell.Count))
			default:
				row = append(row, cell.Day)
			}
		}
		table.AddRow(row...)
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export")
	path := fs.String("out", "", "output file (default <exports.path>/appointments_<time>.xlsx)")
	status := fs.String("status", service.FilterAll, "only export appointments with this status")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		*path = filepath.Join(a.cfg.Exports.Path, export.FileName(a.now()))
	}

	appointments, err := a.gw.ListAppointments(ctx)
	if err != nil {
		return err
	}
	services, err := a.gw.ListServices(ctx)
	if err != nil {
		return err
	}
	list := service.SortChronological(service.FilterByStatus(appointments, *status))

	if err := export.AppointmentsWorkbook(*path, list, services); err != nil {
		return err
	}
	a.logger.Info().Str("file_path", *path).Int("rows", len(list)).Msg("Excel file created")
	fmt.Fprintf(a.out, "Exported %s to %s\n", english.Plural(len(list), "appointment", ""), *path)
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func serviceTitle(services []*models.Service, id string) string {
	if s := service.ResolveService(services, id); s != nil {
		return s.Title
	}
	return "service unavailable"
}

func paymentLabel(appt *models.Appointment) string {
	if appt.PaymentMethod == models.PaymentMethodNone {
		return string(appt.PaymentStatus)
	}
	return fmt.Sprintf("%s (%s)", appt.PaymentStatus, appt.PaymentMethod)
}

// ago renders an RFC3339 timestamp relative to now.
func (a *app) ago(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, a.now(), "ago", "from now")
}
