package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"duties/internal/commands"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
	"duties/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	var backend service.Service
	if svc != nil {
		backend = svc
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, backend, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// seeded returns a backend with two lists and a duty in each.
// Newest entries come first, as the API returns them.
func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddList("l1", "Groceries")
	svc.AddList("l2", "Travel bag")
	svc.AddDuty("l1", "d1", "Buy milk")
	svc.AddDuty("l1", "d2", "Buy eggs")
	svc.AddDuty("l2", "d3", "Pack socks")
	return svc
}

func expectCode(t *testing.T, want, got int, stderr string) {
	t.Helper()
	if got != want {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", want, got, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "duties 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "duties "+cmd.Name()) {
			t.Errorf("help output should mention %q", cmd.Name())
		}
	}
}

// Tests for lists command
func TestListsCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListsCmd{}, seeded(), nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	expected := "  Groceries\n  Travel bag\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListsCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListsCmd{}, testutil.NewFakeService(), nil, false)

	expectCode(t, exitcode.Success, code, "")
	if stdout != "no lists found\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListsCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = service.NewNetworkError(503, "Service unavailable", nil)

	stdout, stderr, code := runCommand(t, &commands.ListsCmd{}, svc, nil, false)

	expectCode(t, exitcode.BackendError, code, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: backend error: Service unavailable\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListsCommand_AuthError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = service.NewNetworkError(401, "token expired", nil)

	_, stderr, code := runCommand(t, &commands.ListsCmd{}, svc, nil, false)

	expectCode(t, exitcode.AuthError, code, stderr)
	if stderr != "error: token expired\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for list command
func TestListCommand_AllDuties(t *testing.T) {
	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	expected := "   1  [ ] Buy milk  @Groceries\n   2  [ ] Buy eggs  @Groceries\n   3  [ ] Pack socks  @Travel bag\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_SpecificList(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetListName("groceries")
	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	testutil.GoldenString(t, "list_groceries", stdout)
}

func TestListCommand_ListNameArgument(t *testing.T) {
	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, seeded(), []string{"Travel", "bag"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	if !strings.Contains(stdout, "   1  [ ] Pack socks\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_Where(t *testing.T) {
	svc := seeded()
	svc.AddDutyWithStatus("l1", "d4", "Buy bread", service.StatusDone)

	cmd := &commands.ListCmd{}
	cmd.SetListName("Groceries")
	cmd.SetWhere(`status != "done" && name contains "milk"`)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	expected := "------------\nGroceries\n------------\n   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_WhereKeepsPositions(t *testing.T) {
	svc := seeded()
	cmd := &commands.ListCmd{}
	cmd.SetWhere(`list_id == "l2"`)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "   3  [ ] Pack socks  @Travel bag\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_InvalidWhere(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetWhere(`status ==`)
	svc := seeded()
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if !strings.HasPrefix(stderr, "error: invalid filter:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("expected no backend calls, got %d", svc.TotalCalls())
	}
}

func TestListCommand_ListNotFound(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetListName("NonExistent")
	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: list NonExistent: not found\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)

	expectCode(t, exitcode.Success, code, "")
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

// Tests for add command
func TestAddCommand_ToList(t *testing.T) {
	svc := seeded()
	cmd := &commands.AddCmd{}
	cmd.SetListName("Travel bag")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Pack", "charger"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if svc.Calls("CreateDuty") != 1 {
		t.Fatalf("expected one CreateDuty call, got %d", svc.Calls("CreateDuty"))
	}

	lists := &commands.ListCmd{}
	lists.SetListName("Travel bag")
	stdout, _, _ = runCommand(t, lists, svc, nil, false)
	if !strings.Contains(stdout, "   1  [ ] Pack charger\n") {
		t.Errorf("new duty should be listed first, got %q", stdout)
	}
}

func TestAddCommand_BlankNameNeverReachesBackend(t *testing.T) {
	svc := seeded()
	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"   "}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: name is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("CreateDuty") != 0 {
		t.Error("blank name must not reach the backend")
	}
}

func TestAddCommand_TooLong(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{strings.Repeat("a", 256)}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: name must be at most 255 characters\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_NoName(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AddCmd{}, seeded(), nil, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: name required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for advance command
func TestAdvanceCommand_Cycles(t *testing.T) {
	svc := seeded()
	want := []string{"[~] in_progress\n", "[x] done\n", "[ ] pending\n"}
	for _, expected := range want {
		cmd := &commands.AdvanceCmd{}
		cmd.SetListName("Groceries")
		stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

		expectCode(t, exitcode.Success, code, stderr)
		if stdout != expected {
			t.Errorf("expected %q, got %q", expected, stdout)
		}
	}
}

func TestAdvanceCommand_ByID(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.AdvanceCmd{}, svc, []string{"id:d3"}, true)

	expectCode(t, exitcode.Success, code, stderr)
	d, _ := svc.Duty("d3")
	if d.Status != service.StatusInProgress {
		t.Errorf("expected in_progress, got %q", d.Status)
	}
}

func TestAdvanceCommand_OutOfRange(t *testing.T) {
	svc := seeded()
	cmd := &commands.AdvanceCmd{}
	cmd.SetListName("Groceries")
	_, stderr, code := runCommand(t, cmd, svc, []string{"9"}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: duty number out of range: 9\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("UpdateDuty") != 0 {
		t.Error("out of range reference must not reach the backend")
	}
}

func TestAdvanceCommand_BackendFailure(t *testing.T) {
	svc := seeded()
	svc.UpdateDutyErr = service.NewNetworkError(500, "Database is locked", nil)

	_, stderr, code := runCommand(t, &commands.AdvanceCmd{}, svc, []string{"1"}, false)

	expectCode(t, exitcode.BackendError, code, stderr)
	if stderr != "error: backend error: Database is locked\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	d, _ := svc.Duty("d1")
	if d.Status != service.StatusPending {
		t.Errorf("backend state should be unchanged, got %q", d.Status)
	}
}

func TestAdvanceCommand_RefRequired(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AdvanceCmd{}, seeded(), nil, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: duty reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rename command
func TestRenameCommand(t *testing.T) {
	svc := seeded()
	cmd := &commands.RenameCmd{}
	cmd.SetListName("Groceries")
	cmd.SetTo("Buy oat milk")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	d, _ := svc.Duty("d1")
	if d.Name != "Buy oat milk" {
		t.Errorf("expected rename, got %q", d.Name)
	}
}

func TestRenameCommand_MissingTo(t *testing.T) {
	svc := seeded()
	cmd := &commands.RenameCmd{}
	cmd.SetTo("")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if svc.Calls("UpdateDuty") != 0 {
		t.Error("blank name must not reach the backend")
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := seeded()
	cmd := &commands.RmCmd{}
	cmd.SetListName("Travel bag")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if _, ok := svc.Duty("d3"); ok {
		t.Error("duty should be deleted")
	}
}

func TestRmCommand_InvalidRef(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, seeded(), []string{"abc"}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: invalid duty reference: abc\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for list management commands
func TestCreateListCommand(t *testing.T) {
	svc := seeded()
	stdout, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"Work"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if svc.Calls("CreateList") != 1 {
		t.Errorf("expected one CreateList call, got %d", svc.Calls("CreateList"))
	}
}

func TestRenameListCommand(t *testing.T) {
	svc := seeded()
	cmd := &commands.RenameListCmd{}
	cmd.SetTo("Shopping")
	_, stderr, code := runCommand(t, cmd, svc, []string{"Groceries"}, true)

	expectCode(t, exitcode.Success, code, stderr)
	list, err := svc.GetList(context.Background(), "l1")
	if err != nil {
		t.Fatal(err)
	}
	if list.Name != "Shopping" {
		t.Errorf("expected rename, got %q", list.Name)
	}
}

func TestRmListCommand_NotEmpty(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.RmListCmd{}, svc, []string{"Groceries"}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: list not empty (use --force)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("DeleteList") != 0 {
		t.Error("non-empty list must not be deleted without --force")
	}
}

func TestRmListCommand_Force(t *testing.T) {
	svc := seeded()
	cmd := &commands.RmListCmd{}
	cmd.SetForce(true)
	_, stderr, code := runCommand(t, cmd, svc, []string{"Groceries"}, false)

	expectCode(t, exitcode.Success, code, stderr)
	if _, ok := svc.Duty("d1"); ok {
		t.Error("duties of the deleted list should be gone")
	}
}

func TestRmListCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmListCmd{}, seeded(), []string{"Nope"}, false)

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: list Nope: not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegistry_DuplicateAlias(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatal(err)
	}
	err := r.Register(&commands.AddCmd{})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected duplicate error, got %v", err)
	}
	if _, ok := r.Find("create"); !ok {
		t.Error("alias should resolve")
	}
}

func TestUsageError(t *testing.T) {
	var ue *commands.UsageError
	_, err := commands.CompileFilter("name ==")
	if !errors.As(err, &ue) {
		t.Errorf("expected UsageError, got %T", err)
	}
}
