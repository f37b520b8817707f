package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	var s service.Service
	if svc != nil {
		s = svc
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, s, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func newPostsCmd(query string, page int) *commands.PostsCmd {
	cmd := &commands.PostsCmd{}
	cmd.SetQuery(query)
	cmd.SetPage(page)
	return cmd
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskflow 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "taskflow posts", "TASKFLOW_STORE"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", true)
	svc.AddTask("Write report", false)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_all", stdout)
}

func TestListCommand_Filter(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", true)
	svc.AddTask("Write report", false)

	tests := []struct {
		filter string
		want   string
	}{
		{"active", "   1  [ ] Buy milk\n   3  [ ] Write report\n"},
		{"completed", "   2  [x] Walk dog\n"},
		{"done", "   2  [x] Walk dog\n"},
		{"all", "   1  [ ] Buy milk\n   2  [x] Walk dog\n   3  [ ] Write report\n"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			cmd := &commands.ListCmd{}
			cmd.SetFilter(tt.filter)
			stdout, _, code := runCommand(t, cmd, svc, nil, false)
			if code != exitcode.Success {
				t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService(nil)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected no output with quiet, got %q", stdout)
	}
}

func TestListCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService(nil)

	cmd := &commands.ListCmd{}
	cmd.SetFilter("someday")
	_, stderr, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid filter: someday\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}

	_, stderr, code = runCommand(t, &commands.ListCmd{}, svc, []string{"extra"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: extra\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	all := svc.Tasks().All()
	if len(all) != 1 || all[0].Title != "Buy milk" || all[0].Completed {
		t.Errorf("unexpected tasks %+v", all)
	}

	// The record reaches the slot
	raw, ok := svc.KV.Raw("tasks")
	if !ok || !strings.Contains(raw, `"title":"Buy milk"`) {
		t.Errorf("slot not written: %q", raw)
	}
}

func TestAddCommand_BlankTitleIsSilent(t *testing.T) {
	svc := testutil.NewFakeService(nil)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"   "}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got stdout=%q stderr=%q", stdout, stderr)
	}
	if n := len(svc.Tasks().All()); n != 0 {
		t.Errorf("expected no tasks, got %d", n)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService(nil)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for toggle command
func TestToggleCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", false)

	stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"2"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok: completed\n" {
		t.Errorf("expected 'ok: completed', got %q", stdout)
	}

	// By id, flips back
	stdout, _, _ = runCommand(t, &commands.ToggleCmd{}, svc, []string{"t2"}, false)
	if stdout != "ok: active\n" {
		t.Errorf("expected 'ok: active', got %q", stdout)
	}

	if svc.Tasks().Stats().Completed != 0 {
		t.Error("expected no completed tasks after two toggles")
	}
}

func TestToggleCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", false)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", nil, "error: task reference required\n"},
		{"too many", []string{"1", "2"}, "error: too many task references: 1 2\n"},
		{"out of range", []string{"5"}, "error: task number out of range: 5\n"},
		{"unknown id", []string{"zzz"}, "error: task not found: zzz\n"},
		{"ambiguous", []string{"t"}, "error: ambiguous task reference: t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, tt.args, false)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	svc.AddTask("c", false)

	stdout, _, code := runCommand(t, &commands.RmCmd{}, svc, []string{"2"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	var titles []string
	for _, task := range svc.Tasks().All() {
		titles = append(titles, task.Title)
	}
	if got := strings.Join(titles, ","); got != "a,c" {
		t.Errorf("expected a,c remaining, got %s", got)
	}

	_, _, code = runCommand(t, &commands.RmCmd{}, svc, []string{"t2"}, false)
	if code != exitcode.UserError {
		t.Errorf("removing a deleted task: expected exit code %d, got %d", exitcode.UserError, code)
	}
}

// Tests for clear command
func TestClearCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("a", false)
	svc.AddTask("b", true)

	_, stderr, code := runCommand(t, &commands.ClearCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: refusing to delete 2 tasks (use --force)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if n := len(svc.Tasks().All()); n != 2 {
		t.Fatalf("expected tasks untouched, got %d", n)
	}

	cmd := &commands.ClearCmd{}
	cmd.SetForce(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if n := len(svc.Tasks().All()); n != 0 {
		t.Errorf("expected empty list, got %d", n)
	}
	if _, ok := svc.KV.Raw("tasks"); ok {
		t.Error("expected slot to be removed")
	}

	// Nothing to confirm on an empty list
	_, _, code = runCommand(t, &commands.ClearCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d on empty list, got %d", exitcode.Success, code)
	}
}

// Tests for stats command
func TestStatsCommand(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("a", false)
	svc.AddTask("b", true)
	svc.AddTask("c", false)

	stdout, _, code := runCommand(t, &commands.StatsCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "Total:      3\n" +
		"Active:     2\n" +
		"Completed:  1\n" +
		"Progress:    33% [######--------------]\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestStatsCommand_Empty(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.StatsCmd{}, testutil.NewFakeService(nil), nil, false)
	want := "Total:      0\nActive:     0\nCompleted:  0\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestStatsCommand_UnexpectedArgument(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.StatsCmd{}, testutil.NewFakeService(nil), []string{"all"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: unexpected argument: all\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for posts command
func TestPostsCommand_FirstPage(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(20))

	stdout, stderr, code := runCommand(t, newPostsCmd("", 1), svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	testutil.GoldenString(t, "posts_page1", stdout)
}

func TestPostsCommand_LastPage(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(20))

	stdout, _, code := runCommand(t, newPostsCmd("", 3), svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.GoldenString(t, "posts_page3", stdout)
}

func TestPostsCommand_PageClamped(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(20))

	stdout, _, code := runCommand(t, newPostsCmd("", 50), svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "Showing 2 of 20 posts\nPage 3 of 3\n") {
		t.Errorf("expected clamp to last page, got %q", stdout)
	}
}

func TestPostsCommand_Search(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(20))

	// "post 1" matches 1 and 10-19
	stdout, _, code := runCommand(t, newPostsCmd("POST 1", 1), svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "Showing 9 of 11 posts\nPage 1 of 2\n") {
		t.Errorf("unexpected summary in %q", stdout)
	}

	// Positional words form the query
	stdout, _, _ = runCommand(t, newPostsCmd("", 1), svc, []string{"body", "of", "post", "20"}, false)
	if !strings.HasPrefix(stdout, "Showing 1 of 1 posts\nPage 1 of 1\n") {
		t.Errorf("unexpected summary in %q", stdout)
	}
	if strings.Contains(stdout, "<") || strings.Contains(stdout, ">") {
		t.Errorf("single page should have no navigation, got %q", stdout)
	}
}

func TestPostsCommand_NoMatches(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(20))

	stdout, _, code := runCommand(t, newPostsCmd("nothing like this", 1), svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "Showing 0 of 0 posts\nNo posts found matching your search.\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestPostsCommand_FetchError(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(3))
	svc.Source.Errs = []error{&service.FetchError{StatusCode: 500}}

	stdout, stderr, code := runCommand(t, newPostsCmd("", 1), svc, nil, false)
	if code != exitcode.FetchError {
		t.Errorf("expected exit code %d, got %d", exitcode.FetchError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: HTTP error! status: 500\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Posts().State() != service.Failed {
		t.Errorf("expected failed state, got %s", svc.Posts().State())
	}
}

func TestPostsCommand_Retries(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(3))
	svc.Source.Errs = []error{
		&service.FetchError{StatusCode: 503},
		&service.FetchError{StatusCode: 502},
	}

	cmd := newPostsCmd("", 1)
	cmd.SetRetries(2)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if !strings.HasPrefix(stdout, "Showing 3 of 3 posts\n") {
		t.Errorf("unexpected output %q", stdout)
	}
	if got := svc.Source.Calls(); got != 3 {
		t.Errorf("expected 3 fetches, got %d", got)
	}
}

func TestPostsCommand_BadFlags(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(3))

	_, stderr, code := runCommand(t, newPostsCmd("", 0), svc, nil, false)
	if code != exitcode.UserError || stderr != "error: invalid page number: 0\n" {
		t.Errorf("page 0: code=%d stderr=%q", code, stderr)
	}

	_, stderr, code = runCommand(t, newPostsCmd("x", 1), svc, []string{"y"}, false)
	if code != exitcode.UserError || stderr != "error: cannot use both --query and positional query\n" {
		t.Errorf("query conflict: code=%d stderr=%q", code, stderr)
	}

	if calls := svc.Source.Calls(); calls != 0 {
		t.Errorf("expected no fetch on bad flags, got %d", calls)
	}
}

// Tests for export command
func TestExportCommand_JSON(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", true)

	stdout, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	testutil.GoldenString(t, "export_json", stdout)
}

func TestExportCommand_CSVFile(t *testing.T) {
	svc := testutil.NewFakeService(nil)
	svc.AddTask("Buy milk", false)

	path := filepath.Join(t.TempDir(), "tasks.csv")
	cmd := &commands.ExportCmd{}
	cmd.SetFormat("csv")
	cmd.SetOutput(path)

	stdout, _, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "wrote "+path+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,title,completed,created_at\nt1,Buy milk,false,2024-01-02T04:04:05Z\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	cmd := &commands.ExportCmd{}
	cmd.SetFormat("xml")

	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(nil), nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "xml") || !strings.Contains(stderr, "json, csv, pdf") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for the registry
func TestRegistry_Find(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"list", "list"},
		{"ls", "list"},
		{"LS", "list"},
		{"create", "add"},
		{"done", "toggle"},
		{"delete", "rm"},
		{"browse", "posts"},
		{"serve", "serve"},
	}
	for _, tt := range tests {
		cmd, ok := commands.DefaultRegistry.Find(tt.name)
		if !ok {
			t.Errorf("Find(%q): not found", tt.name)
			continue
		}
		if cmd.Name() != tt.want {
			t.Errorf("Find(%q) = %s, want %s", tt.name, cmd.Name(), tt.want)
		}
	}

	if _, ok := commands.DefaultRegistry.Find("login"); ok {
		t.Error("Find(login) should fail")
	}
}

// Tests for serve command
func TestServeCommand_StopsOnCancel(t *testing.T) {
	svc := testutil.NewFakeService(testutil.MakePosts(3))
	cmd := &commands.ServeCmd{}
	cmd.SetAddr("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir(), ListenAddr: ":8080"}
	code := cmd.Run(ctx, cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "listening on 127.0.0.1:0\n" {
		t.Errorf("unexpected stdout %q", outBuf.String())
	}
}
