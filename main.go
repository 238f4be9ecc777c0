// suji - a terminal medical assistant chat client.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/suji-tui/internal/chat"
	"github.com/jeranaias/suji-tui/internal/config"
	"github.com/jeranaias/suji-tui/internal/gemini"
	"github.com/jeranaias/suji-tui/internal/local"
	"github.com/jeranaias/suji-tui/internal/model"
	"github.com/jeranaias/suji-tui/internal/openai"
	"github.com/jeranaias/suji-tui/internal/prompt"
	"github.com/jeranaias/suji-tui/internal/router"
	"github.com/jeranaias/suji-tui/internal/store"
	"github.com/jeranaias/suji-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	emergencyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	triageStyles   = map[prompt.TriageStatus]lipgloss.Style{
		prompt.TriageGreen:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40")),
		prompt.TriageYellow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		prompt.TriageRed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

// =============================================================================
// APP
// =============================================================================

type app struct {
	cfg        *config.Config
	store      *store.Store
	engine     *local.Engine
	controller *chat.Controller
	renderer   *glamour.TermRenderer
	line       *liner.State
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("suji %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`suji - terminal medical assistant chat

Usage:
  suji            start the interactive chat
  suji version    print version information

In chat, type your question and press enter. Type /help for commands.`)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	localStore, err := store.NewLocalStore(cfg.DataDir)
	if err != nil {
		return err
	}
	var remote *store.RemoteStore
	if cfg.Remote.Enabled {
		remote = store.NewRemoteStore(cfg.Remote.Addr, cfg.Remote.Password, cfg.Remote.DB)
		defer remote.Close()
	}
	st := store.New(localStore, remote)

	engine := local.NewEngine(cfg.CacheDir, local.WithModelID(cfg.Local.ModelID))
	defer engine.Close()

	orch := router.New(
		gemini.NewClient(cfg.Gemini.APIKey),
		openai.NewClient(cfg.OpenAI.APIKey),
		engine,
		router.WithKeys(cfg.Gemini.APIKey, cfg.OpenAI.APIKey),
		router.WithLanguageResolver(store.ResolveLanguage),
	)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	a := &app{
		cfg:        cfg,
		store:      st,
		engine:     engine,
		controller: chat.NewController(st, orch),
		renderer:   renderer,
		line:       line,
	}
	return a.repl()
}

// =============================================================================
// REPL
// =============================================================================

func (a *app) repl() error {
	fmt.Println(titleStyle.Render("Hello, I'm Dr. Suji Chat 🩺"))
	fmt.Println(statusStyle.Render("Ask anything about symptoms, diseases, diet plans, or mental health."))
	fmt.Println(statusStyle.Render(prompt.DisclaimerText))
	fmt.Println(statusStyle.Render("Type /help for commands."))
	fmt.Println()

	for {
		input, err := a.line.Prompt("you> ")
		if err != nil {
			// Ctrl-C at the prompt or Ctrl-D both end the session.
			fmt.Println()
			fmt.Println(statusStyle.Render("Goodbye."))
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		a.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := a.handleCommand(input); quit {
				return nil
			}
			continue
		}

		a.send(input)
	}
}

// send runs one conversation turn with cancellation on Ctrl-C.
func (a *app) send(text string) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer func() {
		signal.Stop(sigCh)
		cancel()
	}()

	final, err := a.controller.Send(ctx, text, chat.Callbacks{
		OnEmergency: func() {
			fmt.Println(emergencyStyle.Render("🚨 If this is an emergency, call your local emergency number now."))
		},
		OnLocalProgress: func(ev local.ProgressEvent) {
			fmt.Printf("\r%-60s", statusStyle.Render(ev.String()))
			if ev.Stage == local.StageDone {
				fmt.Println()
			}
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println()
			fmt.Println(statusStyle.Render("(canceled)"))
			return
		}
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		return
	}

	a.printResponse(final.Content)
}

// printResponse renders a model reply: triage badge first, then the
// markdown body.
func (a *app) printResponse(content string) {
	status, clean := prompt.ParseTriage(content)
	if style, ok := triageStyles[status]; ok {
		fmt.Println(style.Render("[" + string(status) + "]"))
	}

	rendered, err := a.renderer.Render(clean)
	if err != nil {
		fmt.Println(clean)
		return
	}
	fmt.Print(rendered)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (a *app) handleCommand(input string) (quit bool) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]
	ctx := context.Background()

	switch cmd {
	case "/quit", "/exit":
		fmt.Println(statusStyle.Render("Goodbye."))
		return true

	case "/help":
		a.printHelp()

	case "/new":
		if err := a.controller.StartNew(ctx); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(statusStyle.Render("Started: " + model.DefaultSessionTitle))

	case "/history":
		a.printHistory(ctx)

	case "/open":
		a.openSession(ctx, args)

	case "/delete":
		a.deleteSession(ctx, args)

	case "/clear":
		if err := a.store.DeleteAllSessions(ctx); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(statusStyle.Render("All consultations deleted."))

	case "/settings":
		a.printSettings()

	case "/provider":
		a.setProvider(args)

	case "/model":
		a.setModel(args)

	case "/language":
		a.setLanguage(args)

	case "/install":
		a.installModel(ctx)

	case "/uninstall":
		if err := a.engine.Cache().DeleteModel(); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			break
		}
		fmt.Println(statusStyle.Render("Offline model data deleted."))

	case "/storage":
		usage := a.engine.Cache().StorageUsage()
		installed := "NOT INSTALLED"
		if a.engine.Cache().HasModel() {
			installed = "INSTALLED"
		}
		fmt.Println(statusStyle.Render(fmt.Sprintf("Offline model: %s (%.1f MB)", installed, float64(usage)/(1024*1024))))

	case "/suggest":
		p := prompt.StarterPrompts[rand.Intn(len(prompt.StarterPrompts))]
		fmt.Println(statusStyle.Render("Did you know? Try asking:"))
		fmt.Println("  " + p)

	default:
		fmt.Println(errorStyle.Render("Unknown command. Type /help for commands."))
	}
	return false
}

func (a *app) printHelp() {
	fmt.Println(`Commands:
  /new                start a new consultation
  /history            list past consultations
  /open <n>           open consultation n from /history
  /delete <n>         delete consultation n from /history
  /clear              delete all consultations
  /settings           show current settings
  /provider <p>       set provider: gemini, openai or local
  /model <id>         set preferred model
  /language <code>    set response language (BCP-47 code, or auto)
  /install            download the offline model
  /uninstall          delete the offline model
  /storage            show offline model storage usage
  /suggest            suggest a health question
  /quit               exit`)
}

func (a *app) printHistory(ctx context.Context) {
	sessions, err := a.store.GetSessions(ctx)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	if len(sessions) == 0 {
		fmt.Println(statusStyle.Render("No consultations yet."))
		return
	}
	for i, sess := range sessions {
		title := util.TruncateRunes(sess.Title, 50)
		fmt.Printf("  %2d. %s %s\n", i+1, title, statusStyle.Render(fmt.Sprintf("(%d messages)", len(sess.Messages))))
	}
}

// nthSession resolves a 1-based /history index argument.
func (a *app) nthSession(ctx context.Context, args []string) (model.ChatSession, bool) {
	if len(args) != 1 {
		fmt.Println(errorStyle.Render("Usage: give the consultation number from /history."))
		return model.ChatSession{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Println(errorStyle.Render("Not a valid consultation number."))
		return model.ChatSession{}, false
	}
	sessions, err := a.store.GetSessions(ctx)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return model.ChatSession{}, false
	}
	if n > len(sessions) {
		fmt.Println(errorStyle.Render("No such consultation."))
		return model.ChatSession{}, false
	}
	return sessions[n-1], true
}

func (a *app) openSession(ctx context.Context, args []string) {
	sess, ok := a.nthSession(ctx, args)
	if !ok {
		return
	}
	if err := a.controller.Load(ctx, sess.ID); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(titleStyle.Render(sess.Title))
	for _, msg := range a.controller.Session().Messages {
		if msg.Role == model.RoleUser {
			fmt.Println("you> " + msg.Content)
		} else {
			a.printResponse(msg.Content)
		}
	}
}

func (a *app) deleteSession(ctx context.Context, args []string) {
	sess, ok := a.nthSession(ctx, args)
	if !ok {
		return
	}
	if err := a.store.DeleteSession(ctx, sess.ID); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(statusStyle.Render("Deleted: " + sess.Title))
}

// =============================================================================
// SETTINGS COMMANDS
// =============================================================================

func (a *app) printSettings() {
	s := a.store.GetSettings()
	resolved := store.ResolveLanguage(s.Language)
	lang := s.Language
	if lang != resolved {
		lang = fmt.Sprintf("%s (%s)", s.Language, resolved)
	}
	fmt.Println(statusStyle.Render(fmt.Sprintf(`Provider:  %s
Model:     %s
Language:  %s
Theme:     %s
Senior:    %v
Voice:     %v`, s.Provider, s.PreferredModel, lang, s.Theme, s.IsSeniorMode, s.UseVoiceOutput)))
}

// setProvider switches backend. Provider and preferred model are always
// written together so nothing downstream has to reconcile them.
func (a *app) setProvider(args []string) {
	if len(args) != 1 {
		fmt.Println(errorStyle.Render("Usage: /provider <gemini|openai|local>"))
		return
	}
	s := a.store.GetSettings()
	switch model.Provider(args[0]) {
	case model.ProviderGemini:
		s.Provider = model.ProviderGemini
		s.PreferredModel = model.ModelGeminiFlash
	case model.ProviderOpenAI:
		s.Provider = model.ProviderOpenAI
		s.PreferredModel = model.ModelGPT4Turbo
	case model.ProviderLocal:
		s.Provider = model.ProviderLocal
		s.PreferredModel = model.ModelLocalChat
	default:
		fmt.Println(errorStyle.Render("Unknown provider. Use gemini, openai or local."))
		return
	}
	if err := a.store.SaveSettings(s); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(statusStyle.Render(fmt.Sprintf("Provider set to %s (%s).", s.Provider, s.PreferredModel)))
}

func (a *app) setModel(args []string) {
	if len(args) != 1 {
		fmt.Println(errorStyle.Render("Usage: /model <model-id>"))
		return
	}
	s := a.store.GetSettings()
	s.PreferredModel = args[0]
	// A GPT model routes through OpenAI regardless of provider, so keep
	// the pair consistent up front.
	if strings.HasPrefix(args[0], "gpt") {
		s.Provider = model.ProviderOpenAI
	}
	if err := a.store.SaveSettings(s); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(statusStyle.Render("Model set to " + s.PreferredModel + "."))
}

func (a *app) setLanguage(args []string) {
	if len(args) != 1 {
		fmt.Println(errorStyle.Render("Usage: /language <code|auto>"))
		return
	}
	code := args[0]
	if code != "auto" {
		found := false
		for _, lang := range model.SupportedLanguages {
			if lang.Code == code {
				found = true
				break
			}
		}
		if !found {
			fmt.Println(errorStyle.Render("Unsupported language code."))
			return
		}
	}
	s := a.store.GetSettings()
	s.Language = code
	if err := a.store.SaveSettings(s); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(statusStyle.Render("Language set to " + code + "."))
}

func (a *app) installModel(ctx context.Context) {
	if a.engine.Cache().HasModel() {
		fmt.Println(statusStyle.Render("Offline model already installed."))
		return
	}
	fmt.Println(statusStyle.Render(fmt.Sprintf("Downloading %s to %s", a.cfg.Local.ModelID, filepath.Clean(a.cfg.CacheDir))))
	err := a.engine.Initialize(ctx, func(ev local.ProgressEvent) {
		fmt.Printf("\r%-60s", ev.String())
		if ev.Stage == local.StageDone {
			fmt.Println()
		}
	})
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(statusStyle.Render("Offline Ready! The model has been verified and stored locally."))
}
