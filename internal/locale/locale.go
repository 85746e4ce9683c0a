// Package locale loads the label and message catalogs used for sheet headers
// and chat replies.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"taskbot/internal/service"
)

// Default is the catalog used when no locale is configured.
const Default = "en"

//go:embed locales/*.yaml
var files embed.FS

// Catalog holds every user-visible string for one language.
type Catalog struct {
	Name       string   `yaml:"-"`
	Headers    Headers  `yaml:"headers"`
	Status     Statuses `yaml:"status"`
	DateLayout string   `yaml:"date_layout"`
	Labels     Labels   `yaml:"labels"`
	Messages   Messages `yaml:"messages"`
}

// Headers are the sheet column titles, in column order.
type Headers struct {
	Name     string `yaml:"name"`
	Note     string `yaml:"note"`
	DueDate  string `yaml:"due_date"`
	Assignee string `yaml:"assignee"`
	Status   string `yaml:"status"`
}

// Statuses are the values written to the status column.
type Statuses struct {
	Pending string `yaml:"pending"`
	Done    string `yaml:"done"`
}

// Labels prefix task fields in rendered replies.
type Labels struct {
	Note     string `yaml:"note"`
	DueDate  string `yaml:"due_date"`
	Assignee string `yaml:"assignee"`
}

// Messages are chat replies. Completed and NotFound take the task name,
// TodayTitle takes the formatted current date.
type Messages struct {
	Help           string `yaml:"help"`
	AddUsage       string `yaml:"add_usage"`
	AddFieldCount  string `yaml:"add_field_count"`
	InvalidDate    string `yaml:"invalid_date"`
	Added          string `yaml:"added"`
	CompleteUsage  string `yaml:"complete_usage"`
	Completed      string `yaml:"completed"`
	NotFound       string `yaml:"not_found"`
	ListTitle      string `yaml:"list_title"`
	ListEmpty      string `yaml:"list_empty"`
	TodayTitle     string `yaml:"today_title"`
	TodayEmpty     string `yaml:"today_empty"`
	RemoteError    string `yaml:"remote_error"`
	Failure        string `yaml:"failure"`
	UnknownCommand string `yaml:"unknown_command"`
}

// Load returns the embedded catalog for name (case-insensitive).
// An empty name selects Default.
func Load(name string) (*Catalog, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}

	data, err := files.ReadFile(path.Join("locales", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unknown locale %q (available: %s)", name, strings.Join(Available(), ", "))
		}
		return nil, err
	}

	return parse(name, data)
}

// Available returns the names of the embedded catalogs, sorted.
func Available() []string {
	entries, err := files.ReadDir("locales")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func parse(name string, data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid locale %s: %w", name, err)
	}
	c.Name = name
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid locale %s: %w", name, err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	required := map[string]string{
		"headers.name":             c.Headers.Name,
		"headers.note":             c.Headers.Note,
		"headers.due_date":         c.Headers.DueDate,
		"headers.assignee":         c.Headers.Assignee,
		"headers.status":           c.Headers.Status,
		"status.pending":           c.Status.Pending,
		"status.done":              c.Status.Done,
		"date_layout":              c.DateLayout,
		"labels.note":              c.Labels.Note,
		"labels.due_date":          c.Labels.DueDate,
		"labels.assignee":          c.Labels.Assignee,
		"messages.help":            c.Messages.Help,
		"messages.add_usage":       c.Messages.AddUsage,
		"messages.add_field_count": c.Messages.AddFieldCount,
		"messages.invalid_date":    c.Messages.InvalidDate,
		"messages.added":           c.Messages.Added,
		"messages.complete_usage":  c.Messages.CompleteUsage,
		"messages.completed":       c.Messages.Completed,
		"messages.not_found":       c.Messages.NotFound,
		"messages.list_title":      c.Messages.ListTitle,
		"messages.list_empty":      c.Messages.ListEmpty,
		"messages.today_title":     c.Messages.TodayTitle,
		"messages.today_empty":     c.Messages.TodayEmpty,
		"messages.remote_error":    c.Messages.RemoteError,
		"messages.failure":         c.Messages.Failure,
		"messages.unknown_command": c.Messages.UnknownCommand,
	}
	var missing []string
	for key, v := range required {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing keys: %s", strings.Join(missing, ", "))
	}
	if c.Status.Pending == c.Status.Done {
		return errors.New("status labels must differ")
	}
	return nil
}

// Schema returns the sheet schema for this catalog.
func (c *Catalog) Schema() service.Schema {
	return service.Schema{
		Headers: [service.NumColumns]string{
			c.Headers.Name,
			c.Headers.Note,
			c.Headers.DueDate,
			c.Headers.Assignee,
			c.Headers.Status,
		},
		Pending: c.Status.Pending,
		Done:    c.Status.Done,
	}
}
