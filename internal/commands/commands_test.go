package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"taskbot/internal/commands"
	"taskbot/internal/exitcode"
	"taskbot/internal/locale"
	"taskbot/internal/service"
	"taskbot/internal/taskstore"
	"taskbot/internal/testutil"
)

var fixedNow = time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)

// newEnv builds an Env over sheet using the given locale and a fixed clock.
func newEnv(t *testing.T, sheet *testutil.FakeSheet, lang string) *commands.Env {
	t.Helper()
	cat, err := locale.Load(lang)
	if err != nil {
		t.Fatalf("load locale: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := taskstore.New(sheet, cat.Schema(),
		taskstore.WithClock(func() time.Time { return fixedNow }),
		taskstore.WithLocation(time.UTC),
		taskstore.WithLogger(logger),
	)
	return &commands.Env{Store: store, Catalog: cat, Logger: logger}
}

// newSheet returns a sheet holding the English header row.
func newSheet(t *testing.T) *testutil.FakeSheet {
	t.Helper()
	cat, err := locale.Load("en")
	if err != nil {
		t.Fatalf("load locale: %v", err)
	}
	return testutil.NewFakeSheetWithSchema(cat.Schema())
}

// runCommand is a helper to run a command against env.
func runCommand(t *testing.T, cmd commands.Command, env *commands.Env, args string) (stdout string, code int) {
	t.Helper()
	var out bytes.Buffer
	code = cmd.Run(context.Background(), env, args, &out)
	return out.String(), code
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	env := newEnv(t, newSheet(t), "en")

	stdout, code := runCommand(t, &commands.HelpCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "/add Name; Note; DueDate; Person") {
		t.Errorf("help output should describe add, got %q", stdout)
	}
}

func TestHelpCommand_Turkish(t *testing.T) {
	env := newEnv(t, newSheet(t), "tr")

	stdout, _ := runCommand(t, &commands.HelpCmd{}, env, "")

	if !strings.Contains(stdout, "/ekle GörevAdı; GörevNotu; SonTarih; İlgiliKişi") {
		t.Errorf("expected Turkish help, got %q", stdout)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	sheet := newSheet(t)
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.AddCmd{}, env, "Demo; Note; 25.12.2024; Alice")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "✅ Task added successfully!\n\n<b>Demo</b>\n📝 Note: Note\n📅 Due Date: 2024-12-25\n👤 Related Person: Alice\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	grid := sheet.Grid()
	if len(grid) != 2 {
		t.Fatalf("expected header + 1 task, got %d rows", len(grid))
	}
	want := []string{"Demo", "Note", "2024-12-25", "Alice", "Pending"}
	if strings.Join(grid[1], "|") != strings.Join(want, "|") {
		t.Errorf("expected row %v, got %v", want, grid[1])
	}
}

func TestAddCommand_NoArgs(t *testing.T) {
	sheet := newSheet(t)
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.AddCmd{}, env, "   ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stdout, "❌ Wrong format!") {
		t.Errorf("expected usage error, got %q", stdout)
	}
	if sheet.Mutations != 0 {
		t.Errorf("expected no mutations, got %d", sheet.Mutations)
	}
}

func TestAddCommand_ThreeFieldsDoesNotWrite(t *testing.T) {
	sheet := newSheet(t)
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.AddCmd{}, env, "A;B;C")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stdout, "❌ Missing information!") {
		t.Errorf("expected field count error, got %q", stdout)
	}
	if sheet.Mutations != 0 {
		t.Errorf("expected no mutations, got %d", sheet.Mutations)
	}
	if len(sheet.Grid()) != 1 {
		t.Errorf("expected only the header row, got %v", sheet.Grid())
	}
}

func TestAddCommand_InvalidDate(t *testing.T) {
	sheet := newSheet(t)
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.AddCmd{}, env, "Demo; Note; 12/25/2024; Alice")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "❌ Invalid date format. Use YYYY-MM-DD or DD.MM.YYYY.\n" {
		t.Errorf("unexpected reply %q", stdout)
	}
	if sheet.Mutations != 0 {
		t.Errorf("expected no mutations, got %d", sheet.Mutations)
	}
}

func TestAddCommand_RemoteError(t *testing.T) {
	sheet := newSheet(t)
	sheet.AppendRowErr = testutil.ErrInjected
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.AddCmd{}, env, "Demo; Note; 2024-12-25; Alice")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stdout, "could not be reached") {
		t.Errorf("expected remote error reply, got %q", stdout)
	}
}

func TestParseAddArgs(t *testing.T) {
	in, err := commands.ParseAddArgs(" Demo ;  ; 2024-12-25 ;Alice Smith ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Demo" || in.Note != "" || in.DueDate != "2024-12-25" || in.Assignee != "Alice Smith" {
		t.Errorf("unexpected fields: %+v", in)
	}

	for _, args := range []string{"", "A;B;C", "A;B;C;D;E"} {
		_, err := commands.ParseAddArgs(args)
		if !errors.Is(err, service.ErrInvalidArgumentCount) {
			t.Errorf("ParseAddArgs(%q): expected ErrInvalidArgumentCount, got %v", args, err)
		}
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "Demo", "Note", "2024-12-25", "Alice", "Pending")
	sheet.SetRow(3, "Old", "", "2024-12-01", "Bob", "Done")
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.ListCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.GoldenString(t, "list_one", stdout)
}

func TestListCommand_Empty(t *testing.T) {
	env := newEnv(t, newSheet(t), "en")

	stdout, code := runCommand(t, &commands.ListCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "📋 No pending tasks.\n" {
		t.Errorf("unexpected reply %q", stdout)
	}
}

func TestListCommand_RemoteError(t *testing.T) {
	sheet := newSheet(t)
	sheet.RowsErr = testutil.ErrInjected
	env := newEnv(t, sheet, "en")

	_, code := runCommand(t, &commands.ListCmd{}, env, "")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
}

func TestListCommand_RemoteErrorLoggedOnce(t *testing.T) {
	sheet := newSheet(t)
	sheet.RowsErr = testutil.ErrInjected
	cat, err := locale.Load("en")
	if err != nil {
		t.Fatalf("load locale: %v", err)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	store := taskstore.New(sheet, cat.Schema(),
		taskstore.WithClock(func() time.Time { return fixedNow }),
		taskstore.WithLocation(time.UTC),
		taskstore.WithLogger(logger),
	)
	env := &commands.Env{Store: store, Catalog: cat, Logger: logger}

	runCommand(t, &commands.ListCmd{}, env, "")

	if n := strings.Count(logs.String(), "connection reset"); n != 1 {
		t.Errorf("expected the failure logged once, got %d times:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "remote store unavailable") {
		t.Errorf("expected command-level warning, got:\n%s", logs.String())
	}
}

// Tests for today command
func TestTodayCommand(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "Demo", "Note", "25.12.2024", "Alice", "Pending")
	sheet.SetRow(3, "Later", "", "2024-12-26", "Bob", "Pending")
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.TodayCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "📅 <b>Today's Tasks (2024-12-25):</b>\n\n<b>1. Demo</b>\n📝 Note: Note\n👤 Related Person: Alice\n─────────────\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestTodayCommand_TurkishDateLayout(t *testing.T) {
	cat, _ := locale.Load("tr")
	sheet := testutil.NewFakeSheetWithSchema(cat.Schema())
	sheet.SetRow(2, "Proje sunumu", "Sunum", "2024-12-25", "Ahmet Bey", "Bekliyor")
	env := newEnv(t, sheet, "tr")

	stdout, _ := runCommand(t, &commands.TodayCmd{}, env, "")

	if !strings.HasPrefix(stdout, "📅 <b>Bugünkü Görevler (25.12.2024):</b>\n") {
		t.Errorf("unexpected header in %q", stdout)
	}
}

func TestTodayCommand_Empty(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "Later", "", "2024-12-26", "Bob", "Pending")
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.TodayCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "📅 No tasks for today.\n" {
		t.Errorf("unexpected reply %q", stdout)
	}
}

// Tests for complete command
func TestCompleteCommand_Success(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "Project demo", "Note", "2024-12-25", "Alice", "Pending")
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.CompleteCmd{}, env, "project DEMO")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "✅ Task 'Project demo' marked as done!\n" {
		t.Errorf("unexpected reply %q", stdout)
	}
	if cell := sheet.Cell(2, service.ColStatus); cell != "Done" {
		t.Errorf("expected Done, got %q", cell)
	}
}

func TestCompleteCommand_SecondTimeNotFound(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "Demo", "Note", "2024-12-25", "Alice", "Pending")
	env := newEnv(t, sheet, "en")

	if _, code := runCommand(t, &commands.CompleteCmd{}, env, "demo"); code != exitcode.Success {
		t.Fatalf("expected first complete to succeed, got %d", code)
	}
	stdout, code := runCommand(t, &commands.CompleteCmd{}, env, "Demo")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "❌ No pending task named 'Demo' was found.\n" {
		t.Errorf("unexpected reply %q", stdout)
	}
}

func TestCompleteCommand_NoName(t *testing.T) {
	env := newEnv(t, newSheet(t), "en")

	stdout, code := runCommand(t, &commands.CompleteCmd{}, env, "")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stdout, "❌ No task name given!") {
		t.Errorf("unexpected reply %q", stdout)
	}
}

func TestCompleteCommand_EscapesName(t *testing.T) {
	env := newEnv(t, newSheet(t), "en")

	stdout, _ := runCommand(t, &commands.CompleteCmd{}, env, "<R&D>")

	if !strings.Contains(stdout, "'&lt;R&amp;D&gt;'") {
		t.Errorf("expected escaped name, got %q", stdout)
	}
}

func TestListCommand_NamesWithMarkupCharacters(t *testing.T) {
	sheet := newSheet(t)
	sheet.SetRow(2, "fix_login", "see `auth.go`", "2024-12-25", "Bob", "Pending")
	sheet.SetRow(3, "2*2=4", "", "2024-12-25", "Tom & Jerry", "Pending")
	env := newEnv(t, sheet, "en")

	stdout, code := runCommand(t, &commands.ListCmd{}, env, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"<b>1. fix_login</b>", "see `auth.go`", "<b>2. 2*2=4</b>", "Tom &amp; Jerry"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
}

// Tests for the registry
func TestDefaultRegistry_Aliases(t *testing.T) {
	tests := map[string]string{
		"start":   "help",
		"yardim":  "help",
		"ekle":    "add",
		"liste":   "list",
		"bugun":   "today",
		"tamamla": "complete",
		"done":    "complete",
		"ADD":     "add",
	}
	for alias, name := range tests {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q resolved to %q, want %q", alias, cmd.Name(), name)
		}
	}
}

func TestDefaultRegistry_All(t *testing.T) {
	var names []string
	for _, cmd := range commands.DefaultRegistry.All() {
		names = append(names, cmd.Name())
	}
	if got := strings.Join(names, ","); got != "add,complete,help,list,today" {
		t.Errorf("unexpected commands %q", got)
	}
}

func TestRegistry_DuplicateAlias(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.CompleteCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&commands.CompleteCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

// namedCmd is a no-op command with configurable names.
type namedCmd struct {
	name    string
	aliases []string
}

func (c *namedCmd) Name() string      { return c.name }
func (c *namedCmd) Aliases() []string { return c.aliases }
func (c *namedCmd) Synopsis() string  { return "test" }
func (c *namedCmd) Run(ctx context.Context, env *commands.Env, args string, out io.Writer) int {
	return exitcode.Success
}

func TestRegistry_RejectsBadNames(t *testing.T) {
	tests := []*namedCmd{
		{name: "with space"},
		{name: ""},
		{name: "görev"},
		{name: "ok", aliases: []string{"OK"}},
		{name: "ok", aliases: []string{"x", "x"}},
	}
	for _, cmd := range tests {
		r := commands.NewRegistry()
		if err := r.Register(cmd); err == nil {
			t.Errorf("expected %q %v to be rejected", cmd.name, cmd.aliases)
		}
	}
}

func TestRegistry_FailedRegisterLeavesNoTrace(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&namedCmd{name: "list"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&namedCmd{name: "show", aliases: []string{"list"}}); err == nil {
		t.Fatal("expected alias clash")
	}
	if _, ok := r.Find("show"); ok {
		t.Error("expected rejected command to be absent")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected one command, got %d", len(r.All()))
	}
}
