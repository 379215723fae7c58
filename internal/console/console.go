// Package console is the effect layer of the EMS console. It owns one of
// each core component, mounts views on navigation and turns backend
// outcomes into notifications.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/api"
	"github.com/umardevX/ems-console/internal/editor"
	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/forms"
	"github.com/umardevX/ems-console/internal/grid"
	"github.com/umardevX/ems-console/internal/keychain"
	"github.com/umardevX/ems-console/internal/router"
	"github.com/umardevX/ems-console/internal/session"
)

// ErrNotSignedIn is returned when a protected action is attempted without a
// valid session
var ErrNotSignedIn = errors.New("not signed in")

// Options configures a Console
type Options struct {
	ServerURL string
	Timeout   time.Duration
	Keychain  keychain.Keychain
	Out       io.Writer
	Notifier  Notifier
	Logger    zerolog.Logger
	PageSize  int
	// Transport and Clock are for tests
	Transport http.RoundTripper
	Clock     func() time.Time
}

// Console wires the session gate, router, HTTP adapter, repository, editor
// dialog and grid together
type Console struct {
	out    io.Writer
	log    zerolog.Logger
	notify Notifier

	store     *session.Store
	validator *session.Validator
	router    *router.Router
	client    *api.Client
	repo      *employee.Repository
	dialog    *editor.Dialog
	cursor    *grid.Cursor

	mu      sync.Mutex
	current router.Resolution
}

// New builds a console from opts
func New(opts Options) *Console {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Notifier == nil {
		opts.Notifier = NewWriterNotifier(opts.Out)
	}
	if opts.Keychain == nil {
		opts.Keychain = keychain.NewMemoryKeychain()
	}

	c := &Console{
		out:    opts.Out,
		log:    opts.Logger,
		notify: opts.Notifier,
		store:  session.NewStore(opts.Keychain),
		dialog: editor.New(),
		cursor: grid.NewCursor(),
	}
	if grid.ValidPageSize(opts.PageSize) {
		c.cursor.PageSize = opts.PageSize
	}

	c.validator = session.NewValidator(c.store, c.log)
	if opts.Clock != nil {
		c.validator.WithClock(opts.Clock)
	}
	c.router = router.New(router.Guard{IsAuthenticated: c.validator.IsValid}, c.log)

	clientOpts := []api.Option{
		api.WithTimeout(opts.Timeout),
		api.WithTokenSource(c.store),
		api.WithUnauthorizedHandler(c.handleUnauthorized),
		api.WithLogger(c.log),
	}
	if opts.Transport != nil {
		clientOpts = append(clientOpts, api.WithTransport(opts.Transport))
	}
	c.client = api.NewClient(opts.ServerURL, clientOpts...)

	c.repo = employee.NewRepository(c.client, c.log)
	c.repo.OnChange(c.cursor.Clamp)
	return c
}

// Session exposes the token store
func (c *Console) Session() *session.Store { return c.store }

// Router exposes the router
func (c *Console) Router() *router.Router { return c.router }

// Client exposes the HTTP adapter
func (c *Console) Client() *api.Client { return c.client }

// Repository exposes the employee repository
func (c *Console) Repository() *employee.Repository { return c.repo }

// Dialog exposes the editor dialog
func (c *Console) Dialog() *editor.Dialog { return c.dialog }

// Cursor exposes the grid cursor
func (c *Console) Cursor() *grid.Cursor { return c.cursor }

// Current returns the last resolved navigation
func (c *Console) Current() router.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Console) setCurrent(res router.Resolution) {
	c.mu.Lock()
	c.current = res
	c.mu.Unlock()
}

// Open navigates to p and mounts the resulting view
func (c *Console) Open(ctx context.Context, p string) (router.Resolution, error) {
	res, err := c.router.Navigate(p)
	if err != nil {
		return res, err
	}
	c.setCurrent(res)
	return res, c.mount(ctx, res)
}

// Status reports the session verdict and claims
func (c *Console) Status() (session.Verdict, *session.Claims) {
	return c.validator.Check()
}

func (c *Console) mount(ctx context.Context, res router.Resolution) error {
	if res.Redirected && res.View == router.ViewSignIn && res.Requested != router.PathSignIn {
		fmt.Fprintln(c.out, MsgNotSignedIn)
		return nil
	}

	switch res.View {
	case router.ViewSignIn:
		fmt.Fprintln(c.out, "Sign in with: ems signin --email <email>")
		fmt.Fprintln(c.out, "No account yet? ems signup --username <name> --email <email>")
	case router.ViewSignUp:
		fmt.Fprintln(c.out, "Create an account with: ems signup --username <name> --email <email>")
	case router.ViewDashboard:
		c.renderDashboard()
	case router.ViewEmployees:
		return c.mountEmployees(ctx)
	case router.ViewHelp:
		c.renderHelp()
	case router.ViewNotFound:
		fmt.Fprintln(c.out, "404")
		fmt.Fprintln(c.out, "Oops! page not found!")
		fmt.Fprintln(c.out, "Sorry, we couldn't find the page you're looking for.")
	}
	return nil
}

func (c *Console) mountEmployees(ctx context.Context) error {
	err := c.repo.List(ctx)
	if err != nil && c.Current().View != router.ViewEmployees {
		// The 401 handler navigated away
		return err
	}
	grid.Render(c.out, c.cursor, c.repo.Items())
	return err
}

func (c *Console) renderDashboard() {
	fmt.Fprintln(c.out, "EMS")
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %-10s %s\n", "Employees", router.PathEmployees)
	fmt.Fprintf(c.out, "  %-10s %s\n", "Help", router.PathHelp)
}

func (c *Console) renderHelp() {
	fmt.Fprintln(c.out, "Help / Support")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "  ems employees list [--page N --page-size 5|10|25|50]")
	fmt.Fprintln(c.out, "  ems employees add --first-name ... --last-name ... --date-of-birth YYYY-MM-DD --hire-date YYYY-MM-DD")
	fmt.Fprintln(c.out, "  ems employees edit <id> --position ...")
	fmt.Fprintln(c.out, "  ems employees delete <id>")
	fmt.Fprintln(c.out, "  ems employees export --format csv|xlsx --output <file>")
	fmt.Fprintln(c.out, "  ems signout")
}

// handleUnauthorized runs when an authenticated request is rejected with
// 401: the session is dropped and the user is sent to sign-in
func (c *Console) handleUnauthorized(req *http.Request) {
	c.log.Warn().Str("path", req.URL.Path).Msg("session rejected by server")
	if err := c.store.Clear(); err != nil {
		c.log.Error().Err(err).Msg("failed to clear session")
	}
	res, err := c.router.Replace(router.PathSignIn)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to redirect to sign-in")
		return
	}
	c.setCurrent(res)
	c.notify.Notify(Notification{Level: LevelError, Message: MsgSessionExpired})
}

// SignIn validates the form, exchanges the credentials for a token and, on
// success, stores it and opens the employees page
func (c *Console) SignIn(ctx context.Context, email, password string) error {
	if err := forms.ValidateSignIn(email, password); err != nil {
		return err
	}

	token, err := c.client.SignIn(ctx, email, password)
	if err != nil {
		c.log.Error().Err(err).Msg("sign-in failed")
		c.notify.Notify(Notification{Level: LevelError, Message: failureMessage(err, MsgSignInFailed)})
		return err
	}

	if err := c.store.Set(token); err != nil {
		c.notify.Notify(Notification{Level: LevelError, Message: MsgUnexpected})
		return fmt.Errorf("failed to store session: %w", err)
	}
	c.notify.Notify(Notification{Level: LevelSuccess, Message: MsgSignInOK})

	_, err = c.Open(ctx, router.PathEmployees)
	return err
}

// SignUp validates the form and registers the account. The user still has
// to sign in afterwards.
func (c *Console) SignUp(ctx context.Context, username, email, password string) error {
	if err := forms.ValidateSignUp(username, email, password); err != nil {
		return err
	}

	if _, err := c.client.SignUp(ctx, username, email, password); err != nil {
		c.log.Error().Err(err).Msg("sign-up failed")
		c.notify.Notify(Notification{Level: LevelError, Message: failureMessage(err, MsgSignUpFailed)})
		return err
	}
	c.notify.Notify(Notification{Level: LevelSuccess, Message: MsgSignUpOK})

	_, err := c.Open(ctx, router.PathDashboard)
	return err
}

// failureMessage maps an unexpected 2xx to the generic message
func failureMessage(err error, fallback string) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Code >= 200 && se.Code <= 299 {
		return MsgUnexpected
	}
	return fallback
}

// SignOut clears the session and returns to sign-in
func (c *Console) SignOut() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	res, err := c.router.Replace(router.PathSignIn)
	if err != nil {
		return err
	}
	c.setCurrent(res)
	c.notify.Notify(Notification{Level: LevelSuccess, Message: MsgSignedOut})
	return nil
}

// enterEmployees navigates to the employees page without rendering it and
// loads the list
func (c *Console) enterEmployees(ctx context.Context) error {
	res, err := c.router.Navigate(router.PathEmployees)
	if err != nil {
		return err
	}
	c.setCurrent(res)
	if res.View != router.ViewEmployees {
		return ErrNotSignedIn
	}
	if err := c.repo.List(ctx); err != nil {
		if c.Current().View != router.ViewEmployees {
			return fmt.Errorf("%w: %w", ErrNotSignedIn, err)
		}
		return err
	}
	return nil
}

// ListEmployees opens the employees page at the given page and size.
// page is 1-based; zero keeps the current page.
func (c *Console) ListEmployees(ctx context.Context, page, pageSize int) error {
	if err := c.enterEmployees(ctx); err != nil {
		return err
	}
	if pageSize != 0 {
		if err := c.cursor.SetPageSize(pageSize); err != nil {
			return err
		}
	}
	if page != 0 {
		if err := c.cursor.SetPage(page-1, c.repo.Len()); err != nil {
			return err
		}
	}
	grid.Render(c.out, c.cursor, c.repo.Items())
	return nil
}

// AddEmployee opens the dialog for a new record, applies fields and
// confirms
func (c *Console) AddEmployee(ctx context.Context, fields map[string]string) error {
	if err := c.enterEmployees(ctx); err != nil {
		return err
	}
	c.dialog.OpenForCreate()
	return c.confirm(ctx, fields, "Employee added")
}

// EditEmployee opens the dialog on record id, applies fields and confirms
func (c *Console) EditEmployee(ctx context.Context, id int64, fields map[string]string) error {
	if err := c.enterEmployees(ctx); err != nil {
		return err
	}
	src, ok := c.repo.Find(id)
	if !ok {
		return fmt.Errorf("employee %d not found", id)
	}
	c.dialog.OpenForEdit(src)
	return c.confirm(ctx, fields, "Employee updated")
}

func (c *Console) confirm(ctx context.Context, fields map[string]string, okMsg string) error {
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	for _, f := range names {
		if err := c.dialog.Set(f, fields[f]); err != nil {
			c.dialog.Cancel()
			return err
		}
	}

	if err := c.dialog.Confirm(ctx, c.repo); err != nil {
		c.notify.Notify(Notification{Level: LevelError, Message: err.Error()})
		return err
	}
	c.notify.Notify(Notification{Level: LevelSuccess, Message: okMsg})
	grid.Render(c.out, c.cursor, c.repo.Items())
	return nil
}

// DeleteEmployee removes record id
func (c *Console) DeleteEmployee(ctx context.Context, id int64) error {
	if err := c.enterEmployees(ctx); err != nil {
		return err
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		c.notify.Notify(Notification{Level: LevelError, Message: err.Error()})
		return err
	}
	c.notify.Notify(Notification{Level: LevelSuccess, Message: "Employee deleted"})
	grid.Render(c.out, c.cursor, c.repo.Items())
	return nil
}

// ExportEmployees writes the whole list to w in format
func (c *Console) ExportEmployees(ctx context.Context, w io.Writer, format string) error {
	if err := c.enterEmployees(ctx); err != nil {
		return err
	}
	return grid.Export(w, strings.ToLower(format), c.repo.Items())
}
