package commands_test

import (
	"strings"
	"testing"

	"duties/internal/commands"
	"duties/internal/exitcode"
	"duties/internal/service"
)

func runShell(t *testing.T, script string, listName string) (stdout, stderr string, svcCalls func(string) int) {
	t.Helper()
	svc := seeded()
	cmd := &commands.ShellCmd{In: strings.NewReader(script)}
	cmd.SetListName(listName)

	stdout, stderr, code := runCommand(t, cmd, svc, nil, true)
	expectCode(t, exitcode.Success, code, stderr)
	return stdout, stderr, svc.Calls
}

func TestShell_UseAndList(t *testing.T) {
	stdout, stderr, _ := runShell(t, "use travel bag\nquit\n", "")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "------------\nTravel bag\n------------\n   1  [ ] Pack socks\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestShell_SelectionPersistsAcrossCommands(t *testing.T) {
	script := strings.Join([]string{
		"use Groceries",
		"add Buy bread",
		"advance 1",
		"lists",
	}, "\n")
	stdout, stderr, calls := runShell(t, script, "")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "   1  [ ] Buy bread\n") {
		t.Errorf("new duty should be shown, got %q", stdout)
	}
	if !strings.Contains(stdout, "[~] Buy bread\n") {
		t.Errorf("advance should act on the new duty, got %q", stdout)
	}
	if !strings.Contains(stdout, "* Groceries\n  Travel bag\n") {
		t.Errorf("active list should be marked, got %q", stdout)
	}
	if calls("CreateDuty") != 1 || calls("UpdateDuty") != 1 {
		t.Errorf("unexpected backend calls: create=%d update=%d", calls("CreateDuty"), calls("UpdateDuty"))
	}
}

func TestShell_ErrorsDoNotEndSession(t *testing.T) {
	script := strings.Join([]string{
		"frobnicate",
		"add    ",
		"rm 99",
		"renamelist Shopping",
		"ls",
	}, "\n")
	stdout, stderr, calls := runShell(t, script, "")

	for _, want := range []string{
		"error: unknown command: frobnicate (try help)\n",
		"error: name is required\n",
		"error: duty number out of range: 99\n",
		"error: no list selected\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in stderr, got %q", want, stderr)
		}
	}
	if calls("CreateDuty") != 0 || calls("DeleteDuty") != 0 || calls("UpdateList") != 0 {
		t.Error("failed commands must not reach the backend")
	}
	if !strings.Contains(stdout, "Pack socks") {
		t.Errorf("ls should still run, got %q", stdout)
	}
}

func TestShell_NewListBecomesActive(t *testing.T) {
	script := "newlist Work\nadd Write report\nls status == \"pending\"\n"
	stdout, stderr, _ := runShell(t, script, "")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "------------\nWork\n------------\n   1  [ ] Write report\n") {
		t.Errorf("expected Work listing, got %q", stdout)
	}
}

func TestShell_RmListClearsSelection(t *testing.T) {
	script := "rmlist\nls\n"
	stdout, stderr, calls := runShell(t, script, "Groceries")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if calls("DeleteList") != 1 {
		t.Fatalf("expected one DeleteList call, got %d", calls("DeleteList"))
	}
	if strings.Contains(stdout, "Buy milk") {
		t.Errorf("duties of the deleted list should be gone, got %q", stdout)
	}
	if !strings.Contains(stdout, "   1  [ ] Pack socks  @Travel bag\n") {
		t.Errorf("expected all duties after selection cleared, got %q", stdout)
	}
}

func TestShell_RmListWithoutSelection(t *testing.T) {
	script := "rmlist Travel bag\nls\nadvance 3\n"
	stdout, stderr, calls := runShell(t, script, "")

	if calls("DeleteList") != 1 {
		t.Fatalf("expected one DeleteList call, got %d", calls("DeleteList"))
	}
	if calls("ListDuties") != 2 {
		t.Errorf("expected duties to be re-fetched after the delete, got %d fetches", calls("ListDuties"))
	}
	if strings.Contains(stdout, "Pack socks") {
		t.Errorf("duty of the deleted list still shown: %q", stdout)
	}
	if !strings.Contains(stdout, "Buy milk  @Groceries\n") {
		t.Errorf("other duties should remain, got %q", stdout)
	}
	if stderr != "error: duty number out of range: 3\n" {
		t.Errorf("deleted duty should not be addressable, got stderr %q", stderr)
	}
	if calls("UpdateDuty") != 0 {
		t.Error("advance must not reach the backend")
	}
}

func TestShell_RenameByID(t *testing.T) {
	stdout, stderr, _ := runShell(t, "rename id:d3 Pack wool socks\nls\n", "Travel bag")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "   1  [ ] Pack wool socks\n") {
		t.Errorf("expected renamed duty, got %q", stdout)
	}
}

func TestShell_Prompt(t *testing.T) {
	svc := seeded()
	cmd := &commands.ShellCmd{In: strings.NewReader("use Groceries\n")}
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, exitcode.Success, code, "")
	if !strings.HasPrefix(stdout, "duties> ") {
		t.Errorf("expected initial prompt, got %q", stdout)
	}
	if !strings.HasSuffix(stdout, "duties:Groceries> ") {
		t.Errorf("expected list prompt, got %q", stdout)
	}
}

func TestShell_AdvanceFailureRollsBack(t *testing.T) {
	svc := seeded()
	svc.UpdateDutyErr = service.NewNetworkError(500, "Database is locked", nil)
	cmd := &commands.ShellCmd{In: strings.NewReader("advance 1\nls\n")}
	cmd.SetListName("Groceries")

	stdout, stderr, code := runCommand(t, cmd, svc, nil, true)

	expectCode(t, exitcode.Success, code, stderr)
	if stderr != "error: backend error: Database is locked\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if !strings.Contains(stdout, "   1  [ ] Buy milk\n") {
		t.Errorf("duty should be back to pending, got %q", stdout)
	}
}
