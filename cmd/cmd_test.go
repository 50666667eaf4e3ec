package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Yates-Labs/sitcom/internal/archive"
	"github.com/Yates-Labs/sitcom/internal/cast"
	"github.com/Yates-Labs/sitcom/internal/config"
	"github.com/Yates-Labs/sitcom/internal/narrative"
	"github.com/Yates-Labs/sitcom/internal/script"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"user abort", ErrUserAbort, ExitOK},
		{"wrapped abort", fmt.Errorf("prompt: %w", ErrUserAbort), ExitOK},
		{"invalid config", fmt.Errorf("%w: bad", config.ErrInvalid), ExitInvalid},
		{"missing topic", fmt.Errorf("%w: %w", narrative.ErrGenerationFailed, narrative.ErrMissingTopic), ExitInvalid},
		{"credential", fmt.Errorf("%w: gone", config.ErrCredential), ExitIO},
		{"roster", fmt.Errorf("%w: gone", cast.ErrRoster), ExitIO},
		{"archived run", fmt.Errorf("%w: abc", archive.ErrNotFound), ExitIO},
		{"api", fmt.Errorf("%w: %w", narrative.ErrGenerationFailed, narrative.ErrLLMFailed), ExitAPI},
		{"empty reply", fmt.Errorf("%w: %w", narrative.ErrGenerationFailed, narrative.ErrEmptyResponse), ExitAPI},
		{"parse", &script.ParseError{Key: "conversation", Index: -1, Reason: "not valid JSON"}, ExitParse},
		{"missing field", fmt.Errorf("x: %w", script.ErrMissingField), ExitParse},
		{"unresolved speaker", &cast.UnresolvedSpeakerError{Speaker: "Dean", Index: 4}, ExitUnresolvedSpeaker},
		{"unknown", errors.New("something else"), ExitInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	var buf bytes.Buffer
	if code := handleError(&buf, ErrUserAbort); code != ExitOK {
		t.Errorf("expected ExitOK, got %d", code)
	}
	if buf.Len() != 0 {
		t.Errorf("abort must not print an error, got %q", buf.String())
	}

	code := handleError(&buf, fmt.Errorf("%w: gone", config.ErrCredential))
	if code != ExitIO {
		t.Errorf("expected ExitIO, got %d", code)
	}
	if !strings.Contains(buf.String(), "credential unavailable") {
		t.Errorf("expected error message, got %q", buf.String())
	}
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     string
		want    string
		wantErr error
	}{
		{"answer", "the parking lot\n", "", "the parking lot", nil},
		{"trimmed", "   coffee  \n", "", "coffee", nil},
		{"default", "\n", "resources/api_key.txt", "resources/api_key.txt", nil},
		{"exit", "exit\n", "", "", ErrUserAbort},
		{"exit any case", "  EXIT \n", "x", "", ErrUserAbort},
		{"no newline", "last line", "", "last line", nil},
		{"end of input", "", "x", "", ErrUserAbort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := ask(bufio.NewReader(strings.NewReader(tt.input)), &out, "Topic", tt.def)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if !strings.Contains(out.String(), "Topic") {
				t.Errorf("question not printed: %q", out.String())
			}
		})
	}
}

func TestExportName(t *testing.T) {
	if got := exportName("out.json", 0, 1); got != "out.json" {
		t.Errorf("single take: %q", got)
	}
	if got := exportName("out.json", 1, 3); got != "out-2.json" {
		t.Errorf("numbered take: %q", got)
	}
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	outputTable(&buf, []archive.Entry{
		{ID: "0123456789abcdef", Prompt: "the broken elevator", Model: "mock", Lines: 8, CreatedAt: time.Now()},
	})

	out := buf.String()
	for _, want := range []string{"RUN", "PROMPT", "01234567", "the broken elevator", "1 runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Error("expected the short run id")
	}
}

const rosterJSON = `{"characters":[
	{"name":"Dr. Babcock","description":"a professor who loves his Mac"},
	{"name":"Prof. Hake","description":"a physicist who explains everything with springs"}
]}`

// writeProject creates a roster and a config using the mock provider.
func writeProject(t *testing.T) (configFile, archiveDir string) {
	t.Helper()
	dir := t.TempDir()

	roster := filepath.Join(dir, "character_desc.json")
	if err := os.WriteFile(roster, []byte(rosterJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	archiveDir = filepath.Join(dir, "runs")
	configFile = filepath.Join(dir, "sitcom.yaml")
	content := fmt.Sprintf(`provider: mock
roster: %q
archive_dir: %q
log_file: %q
takes_interval: 0s
playback:
  slide_duration: 1ms
`, roster, archiveDir, filepath.Join(dir, "sitcom.log"))
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configFile, archiveDir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGenerateHistoryReplay(t *testing.T) {
	configFile, archiveDir := writeProject(t)

	out, err := runCommand(t, "generate", "--config", configFile, "--prompt", "the broken elevator", "--takes", "2")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dr. Babcock") || !strings.Contains(out, "the broken elevator") {
		t.Errorf("unexpected generate output:\n%s", out)
	}

	entries, err := archive.Open(archiveDir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 archived runs, got %d", len(entries))
	}

	out, err = runCommand(t, "history", "--config", configFile)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, shortID(entries[0].ID)) || !strings.Contains(out, "2 runs") {
		t.Errorf("unexpected history output:\n%s", out)
	}

	out, err = runCommand(t, "replay", "--config", configFile, "--headless", entries[0].ID)
	if err != nil {
		t.Fatalf("replay failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Prof. Hake") || !strings.Contains(out, "fin") {
		t.Errorf("unexpected replay output:\n%s", out)
	}
	// roster entries without images are shown as placeholder cards
	if !strings.Contains(out, "╭") {
		t.Errorf("expected portraits in headless output:\n%s", out)
	}
}

func TestReplay_UnknownRun(t *testing.T) {
	configFile, _ := writeProject(t)

	_, err := runCommand(t, "replay", "--config", configFile, "--headless", "no-such-run")
	if ExitCode(err) != ExitIO {
		t.Errorf("expected an IO error, got %v", err)
	}
}

func TestReplay_UnresolvedSpeaker(t *testing.T) {
	configFile, _ := writeProject(t)

	path := filepath.Join(t.TempDir(), "script.json")
	content := `{"conversation":[{"speaker":"Dr. Babcock","speech":"Hi."},{"speaker":"The Dean","speech":"Meeting."}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCommand(t, "replay", "--config", configFile, "--headless", "--unknown-speaker", "fail", path)
	if ExitCode(err) != ExitUnresolvedSpeaker {
		t.Errorf("expected unresolved speaker, got %v", err)
	}
}

func TestPlay_ExitAtPrompt(t *testing.T) {
	configFile, archiveDir := writeProject(t)

	rootCmd.SetIn(strings.NewReader("exit\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	_, err := runCommand(t, "play", "--config", configFile, "--headless")
	if !errors.Is(err, ErrUserAbort) {
		t.Fatalf("expected ErrUserAbort, got %v", err)
	}

	if _, err := os.Stat(archiveDir); !os.IsNotExist(err) {
		t.Error("nothing should be generated after exit")
	}
}

func TestConfigCommand(t *testing.T) {
	configFile, archiveDir := writeProject(t)

	out, err := runCommand(t, "config", "--config", configFile)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"# loaded from " + configFile, "provider: mock", "slide_duration: 1ms", archiveDir} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistory_Empty(t *testing.T) {
	configFile, archiveDir := writeProject(t)

	out, err := runCommand(t, "history", "--config", configFile)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No archived runs in "+archiveDir) {
		t.Errorf("unexpected history output:\n%s", out)
	}
}
