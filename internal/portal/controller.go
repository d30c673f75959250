// Package portal wires the upload form, the submissions table and the row
// actions to the backend. Every operation reports its outcome as a notice
// and keeps the loading overlay up only while it talks to the network.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/csg33k/code-portal/internal/domain"
	"github.com/csg33k/code-portal/internal/ports"
	"github.com/csg33k/code-portal/internal/ui"
)

const (
	msgSelectFile     = "Please select a file to upload"
	msgProjectName    = "Please enter a project name"
	msgUnreadableFile = "Could not read the selected file"
	msgSubmitted      = "File submitted successfully"
	msgSubmitFailed   = "Submission failed, please check your network connection"
	msgListFailed     = "Failed to load submissions, please check your network connection"
	msgDownloadFailed = "Download failed"
	msgLoginFailed    = "Login failed, please check your network connection"
	msgEditorFailed   = "Could not open the editor"
	msgExportFailed   = "Export failed"
)

// DefaultDownloadSettle is used when Options.DownloadSettle is not positive.
const DefaultDownloadSettle = time.Second

// Options tunes a Controller.
type Options struct {
	UI ui.Options
	// DownloadSettle keeps the overlay up after a successful download.
	DownloadSettle time.Duration
	// Exporters maps a lower-case file extension (".html") to its writer.
	Exporters map[string]ports.TableExporter
}

// Controller runs the portal operations against one backend session.
type Controller struct {
	api       ports.SubmissionAPI
	surface   ports.Surface
	nav       ports.Navigator
	store     ports.DownloadStore
	presenter *ui.Presenter
	opts      Options

	boot sync.Once

	mu   sync.Mutex
	form domain.UploadForm
}

// New returns a Controller drawing on s and reporting through its presenter.
func New(api ports.SubmissionAPI, s ports.Surface, nav ports.Navigator, store ports.DownloadStore, opts Options) *Controller {
	if opts.DownloadSettle <= 0 {
		opts.DownloadSettle = DefaultDownloadSettle
	}
	return &Controller{
		api:       api,
		surface:   s,
		nav:       nav,
		store:     store,
		presenter: ui.NewPresenter(s, opts.UI),
		opts:      opts,
	}
}

func (c *Controller) Presenter() *ui.Presenter { return c.presenter }

// Bootstrap runs the page start-up sequence. Only the first call does anything.
func (c *Controller) Bootstrap(ctx context.Context) error {
	var err error
	c.boot.Do(func() {
		c.checkLoginStatus()
		err = c.LoadSubmissions(ctx)
		c.surface.SetFileLabel(domain.FileLabelPlaceholder)
	})
	return err
}

// checkLoginStatus is a placeholder: the backend has no status endpoint and
// redirects unauthenticated calls to /login on its own.
func (c *Controller) checkLoginStatus() {
	slog.Debug("checking login status")
}

// SelectFile records the chosen file and mirrors its name into the label.
// An empty path clears the selection.
func (c *Controller) SelectFile(path string) error {
	if path == "" {
		c.setFile("", domain.FileLabelPlaceholder)
		return nil
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
	}
	if err != nil {
		slog.Error("select file", "path", path, "err", err)
		c.setFile("", domain.FileLabelPlaceholder)
		c.presenter.Notify(msgUnreadableFile, domain.NoticeError)
		return err
	}
	c.setFile(path, filepath.Base(path))
	return nil
}

func (c *Controller) setFile(path, label string) {
	c.mu.Lock()
	c.form.FilePath = path
	c.mu.Unlock()
	c.surface.SetFileLabel(label)
}

func (c *Controller) SetProjectName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.ProjectName = name
}

// Form returns a copy of the upload form.
func (c *Controller) Form() domain.UploadForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) resetForm() {
	c.mu.Lock()
	c.form = domain.UploadForm{}
	c.mu.Unlock()
	c.surface.SetFileLabel(domain.FileLabelPlaceholder)
}

// Submit uploads the selected file. Validation failures never reach the network.
func (c *Controller) Submit(ctx context.Context) error {
	form := c.Form()
	if form.FilePath == "" {
		c.presenter.Notify(msgSelectFile, domain.NoticeError)
		return errors.New("no file selected")
	}
	if strings.TrimSpace(form.ProjectName) == "" {
		c.presenter.Notify(msgProjectName, domain.NoticeError)
		return errors.New("project name is empty")
	}
	f, err := os.Open(form.FilePath)
	if err != nil {
		slog.Error("open upload", "path", form.FilePath, "err", err)
		c.presenter.Notify(msgUnreadableFile, domain.NoticeError)
		return err
	}
	defer f.Close()

	c.presenter.ShowLoading()
	defer c.presenter.HideLoading()

	err = c.api.Submit(ctx, domain.Upload{
		Filename:    filepath.Base(form.FilePath),
		Content:     f,
		ProjectName: form.ProjectName,
	})
	if err != nil {
		c.fail("submit", err, msgSubmitFailed)
		return err
	}
	c.presenter.Notify(msgSubmitted, domain.NoticeSuccess)
	c.resetForm()
	return c.LoadSubmissions(ctx)
}

// LoadSubmissions fetches the list and redraws the table.
func (c *Controller) LoadSubmissions(ctx context.Context) error {
	c.presenter.ShowLoading()
	defer c.presenter.HideLoading()

	subs, err := c.api.ListSubmissions(ctx)
	if err != nil {
		c.fail("list submissions", err, msgListFailed)
		return err
	}
	c.Render(subs)
	return nil
}

// Render replaces the table body with subs, in the order given.
func (c *Controller) Render(subs []domain.Submission) {
	c.surface.RenderTable(domain.NewSubmissionTable(subs))
}

func (c *Controller) View(id int64) error {
	return c.openEditor(id, domain.ModeView)
}

func (c *Controller) Edit(id int64) error {
	return c.openEditor(id, domain.ModeEdit)
}

func (c *Controller) openEditor(id int64, mode domain.EditorMode) error {
	if err := c.nav.Open(c.api.EditorURL(id, mode)); err != nil {
		slog.Error("open editor", "id", id, "mode", mode, "err", err)
		c.presenter.Notify(msgEditorFailed, domain.NoticeError)
		return err
	}
	return nil
}

// Download saves submission id into the download store. On success the
// overlay stays up for DownloadSettle; on failure it is hidden at once.
func (c *Controller) Download(ctx context.Context, id int64) error {
	c.presenter.ShowLoading()

	dl, err := c.api.Download(ctx, id)
	if err != nil {
		c.downloadFailed(id, err)
		return err
	}
	defer dl.Body.Close()

	location, err := c.store.Save(ctx, dl.Filename, dl.Body)
	if err != nil {
		c.downloadFailed(id, err)
		return err
	}
	slog.Info("downloaded submission", "id", id, "location", location)
	c.presenter.Notify("Downloaded to "+location, domain.NoticeSuccess)
	c.presenter.HideLoadingAfter(c.opts.DownloadSettle)
	return nil
}

func (c *Controller) downloadFailed(id int64, err error) {
	slog.Error("download", "id", id, "err", err)
	msg := msgDownloadFailed
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		msg += ": " + apiErr.Message
	}
	c.presenter.Notify(msg, domain.NoticeError)
	c.presenter.HideLoading()
}

// Logout ends the session and follows the backend redirect. Transport
// failures are logged without a notice.
func (c *Controller) Logout(ctx context.Context) error {
	c.presenter.ShowLoading()
	defer c.presenter.HideLoading()

	target, err := c.api.Logout(ctx)
	if err != nil {
		slog.Error("logout", "err", err)
		return err
	}
	if target == "" {
		return nil
	}
	c.resetForm()
	if err := c.nav.Navigate(target); err != nil {
		slog.Error("navigate after logout", "target", target, "err", err)
		return err
	}
	return nil
}

// Login signs in and reloads the list under the new session.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := c.signIn(ctx, username, password); err != nil {
		return err
	}
	return c.LoadSubmissions(ctx)
}

func (c *Controller) signIn(ctx context.Context, username, password string) error {
	c.presenter.ShowLoading()
	defer c.presenter.HideLoading()

	if err := c.api.Login(ctx, username, password); err != nil {
		c.fail("login", err, msgLoginFailed)
		return err
	}
	c.presenter.Notify("Signed in as "+username, domain.NoticeSuccess)
	return nil
}

// Start signs in when username is set and then bootstraps the page, so the
// first list fetch already carries the session.
func (c *Controller) Start(ctx context.Context, username, password string) error {
	if username != "" {
		if err := c.signIn(ctx, username, password); err != nil {
			slog.Warn("auto login failed", "user", username, "err", err)
		}
	}
	return c.Bootstrap(ctx)
}

// ExportFormats lists the extensions Export understands.
func (c *Controller) ExportFormats() []string {
	exts := make([]string, 0, len(c.opts.Exporters))
	for ext := range c.opts.Exporters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Export writes a fresh copy of the submissions table to path. The format
// follows the file extension.
func (c *Controller) Export(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	exp, ok := c.opts.Exporters[ext]
	if !ok {
		c.presenter.Notify(fmt.Sprintf("Unsupported export format %q, use one of %s", ext, strings.Join(c.ExportFormats(), ", ")), domain.NoticeError)
		return fmt.Errorf("no exporter for %q", ext)
	}

	c.presenter.ShowLoading()
	defer c.presenter.HideLoading()

	subs, err := c.api.ListSubmissions(ctx)
	if err != nil {
		c.fail("export", err, msgListFailed)
		return err
	}
	t := domain.NewSubmissionTable(subs)
	if err := writeExport(ctx, exp, t, path); err != nil {
		slog.Error("export", "path", path, "err", err)
		c.presenter.Notify(msgExportFailed, domain.NoticeError)
		return err
	}
	c.presenter.Notify(fmt.Sprintf("Exported %d submissions to %s", len(t.Rows), path), domain.NoticeSuccess)
	return nil
}

func writeExport(ctx context.Context, exp ports.TableExporter, t domain.SubmissionTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exp.Export(ctx, t, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// fail reports err: the server's own message for application failures,
// generic otherwise. Transport failures are logged.
func (c *Controller) fail(op string, err error, generic string) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		slog.Warn(op+" rejected", "message", apiErr.Message)
		c.presenter.Notify(apiErr.Message, domain.NoticeError)
		return
	}
	slog.Error(op, "err", err)
	c.presenter.Notify(generic, domain.NoticeError)
}

// Close cancels pending notice and overlay timers.
func (c *Controller) Close() {
	c.presenter.Close()
}
