// repl.go - Plain line-based REPL for terminals where the TUI is
// unwanted or unavailable (dumb terminals, scripts, screen readers).
//
// The REPL drives the same store and session as the TUI; only the
// presentation differs. Replies stream to stdout as raw text and, on a
// real terminal, finalized markdown replies get a highlighted re-render.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/multichat-tui/internal/config"
	"github.com/jeranaias/multichat-tui/internal/ollama"
	"github.com/jeranaias/multichat-tui/internal/session"
	"github.com/jeranaias/multichat-tui/internal/store"
	"github.com/jeranaias/multichat-tui/internal/ui/components"
	"github.com/jeranaias/multichat-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner-backed input reader with persistent history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads prompt history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	dir := filepath.Dir(c.historyFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the plain-text chat loop.
type REPL struct {
	store   *store.Store
	session *session.Session
	client  *ollama.Client
	input   *ChatCLI
	isTTY   bool
	md      *components.Markdown
}

// NewREPL creates a REPL over an existing store and session.
func NewREPL(st *store.Store, sess *session.Session, client *ollama.Client) *REPL {
	return &REPL{
		store:   st,
		session: sess,
		client:  client,
		input:   NewChatCLI(),
		isTTY:   term.IsTerminal(int(os.Stdout.Fd())),
		md:      components.NewMarkdown(80),
	}
}

// fragmentPrinter streams reply fragments straight to stdout.
type fragmentPrinter struct{}

func (fragmentPrinter) Fragment(conversationID, messageID, fragment string) {
	fmt.Print(fragment)
}

func (fragmentPrinter) CycleEnd(conversationID, messageID string, stats *ollama.StreamStats, err error) {
	fmt.Println()
	if err == nil && stats != nil {
		fmt.Println(infoStyle.Render(stats.Format()))
	}
}

// Run executes the REPL until the user quits. Ctrl+C during a stream
// cancels that stream; at the prompt it exits.
func (r *REPL) Run(ctx context.Context) error {
	defer r.input.Close()

	r.session.SetObserver(fragmentPrinter{})

	if r.store.Len() == 0 {
		r.store.Create()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			r.session.Cancel(r.store.ActiveID())
		}
	}()

	fmt.Println(infoStyle.Render("multichat - model " + r.session.Model() + ", /help for commands"))

	for {
		active, _ := r.store.Active()
		input, err := r.input.ReadInput(promptStyle.Render(active.Title + "> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF both exit cleanly.
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := r.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("error:")+" "+err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if err := r.send(ctx, input); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error:")+" "+describeError(err, r.session.Model()))
		}
	}
}

// send runs one blocking send cycle against the active conversation.
func (r *REPL) send(ctx context.Context, text string) error {
	if err := r.session.SendToActive(ctx, text); err != nil {
		return err
	}

	// On a real terminal, re-render markdown-looking replies highlighted.
	if r.isTTY {
		if conv, ok := r.store.Get(r.store.ActiveID()); ok {
			if last, ok := conv.LastMessage(); ok && strings.Contains(last.Content, "```") {
				fmt.Println(infoStyle.Render("rendered:"))
				fmt.Println(r.md.Render(last.Content))
			}
		}
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand executes one /command. Returns true when the REPL
// should exit.
func (r *REPL) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		r.printHelp()

	case "/new", "/n":
		r.store.Create()
		active, _ := r.store.Active()
		fmt.Println(infoStyle.Render("switched to " + active.Title))

	case "/list", "/ls":
		r.printList()

	case "/switch", "/s":
		return false, r.switchTo(arg)

	case "/delete", "/d":
		return false, r.deleteConversation(arg)

	case "/model":
		return false, r.modelCommand(ctx, arg)

	case "/models":
		return false, r.listModels(ctx)

	default:
		return false, fmt.Errorf("unknown command %s, try /help", cmd)
	}
	return false, nil
}

func (r *REPL) printHelp() {
	cmds := [][2]string{
		{"/new", "create a conversation and switch to it"},
		{"/list", "list conversations"},
		{"/switch N", "switch to conversation number N"},
		{"/delete [N]", "delete conversation (active if N omitted)"},
		{"/model [NAME]", "show or switch the model"},
		{"/models", "list locally available models"},
		{"/quit", "exit"},
	}
	for _, c := range cmds {
		fmt.Printf("  %s  %s\n", commandStyle.Render(fmt.Sprintf("%-14s", c[0])), c[1])
	}
}

func (r *REPL) printList() {
	convs := r.store.Conversations()
	if len(convs) == 0 {
		fmt.Println(infoStyle.Render("no conversations yet, /new to start one"))
		return
	}
	activeID := r.store.ActiveID()
	for i, c := range convs {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %2d. %s (%d messages)", marker, i+1, c.Title, len(c.Messages))
		if c.Streaming {
			line += " " + warningStyle.Render("[streaming]")
		}
		fmt.Println(line)
	}
}

// switchTo selects a conversation by its 1-based list number.
func (r *REPL) switchTo(arg string) error {
	convs := r.store.Conversations()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(convs) {
		return fmt.Errorf("usage: /switch N (1-%d)", len(convs))
	}
	r.store.Select(convs[n-1].ID)
	fmt.Println(infoStyle.Render("switched to " + convs[n-1].Title))
	return nil
}

// deleteConversation removes a conversation by number, or the active one.
// Any in-flight cycle for it is cancelled first.
func (r *REPL) deleteConversation(arg string) error {
	convs := r.store.Conversations()
	if len(convs) == 0 {
		return errors.New("nothing to delete")
	}

	id := r.store.ActiveID()
	title := ""
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(convs) {
			return fmt.Errorf("usage: /delete [N] (1-%d)", len(convs))
		}
		id = convs[n-1].ID
		title = convs[n-1].Title
	} else {
		for _, c := range convs {
			if c.ID == id {
				title = c.Title
			}
		}
	}

	r.session.Cancel(id)
	r.store.Delete(id)
	fmt.Println(infoStyle.Render("deleted " + title))
	return nil
}

// modelCommand shows or switches the session model.
func (r *REPL) modelCommand(ctx context.Context, arg string) error {
	if arg == "" {
		fmt.Println(infoStyle.Render("model: " + r.session.Model()))
		return nil
	}

	// Warn when the requested model is not pulled locally; switching is
	// still allowed since the list can be stale.
	if models, err := r.client.ListModels(ctx); err == nil {
		found := false
		for _, m := range models {
			if m.Name == arg {
				found = true
				break
			}
		}
		if !found {
			fmt.Println(warningStyle.Render("model not in local list, pull it with: ollama pull " + arg))
		}
	}

	r.session.SetModel(arg)
	fmt.Println(infoStyle.Render("model set to " + arg))
	return nil
}

func (r *REPL) listModels(ctx context.Context) error {
	models, err := r.client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println(infoStyle.Render("no local models, pull one with: ollama pull llama3.2"))
		return nil
	}
	current := r.session.Model()
	for _, m := range models {
		marker := " "
		if m.Name == current {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, m.Name)
	}
	return nil
}

// describeError maps transport errors to actionable hints.
func describeError(err error, modelName string) string {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return "empty input"
	case ollama.IsModelNotFound(err):
		return "model not found, pull it with: ollama pull " + modelName
	case ollama.IsNotRunning(err):
		return "Ollama is not running. Start it with: ollama serve"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return err.Error()
	}
}
