// Package tui is the terminal rendition of the companion: four tabs over the same services
// the HTTP API uses.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	"github.com/zhouzirui/mindbff/backend/internal/model/journal"
	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	chatService "github.com/zhouzirui/mindbff/backend/internal/service/chat"
	journalService "github.com/zhouzirui/mindbff/backend/internal/service/journal"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
	progressService "github.com/zhouzirui/mindbff/backend/internal/service/progress"
	voiceService "github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/internal/shell"
)

// Deps are the services the terminal shell drives.
type Deps struct {
	Settings  *settings.Handle
	Navigator *shell.Navigator
	Chat      *chatService.Service
	Journal   *journalService.Analyzer
	Mood      *moodService.Recorder
	Progress  *progressService.Builder
	Voice     *voiceService.Session
	Durable   bool
	Now       func() time.Time
}

type (
	chatReplyMsg struct {
		reply chat.Message
		err   error
	}
	analyzedMsg struct {
		summary string
		err     error
	}
	journalSavedMsg struct {
		entry journal.Entry
		err   error
	}
	moodSavedMsg struct {
		record mood.Record
		err    error
	}
	weekMsg struct {
		samples []mood.Sample
		sample  bool
	}
	progressMsg struct {
		report progressService.Report
		err    error
	}
	voiceToggledMsg struct{ err error }
	voiceSnapshotMsg voiceService.Snapshot
)

// Model is the bubbletea model of the companion.
type Model struct {
	deps    Deps
	session *chatService.Session

	width, height int

	input    textinput.Model
	history  viewport.Model
	spinner  spinner.Model
	thinking bool
	outgoing string

	journal   textarea.Model
	analyzing bool
	renderer  *glamour.TermRenderer

	moodCursor mood.Level
	week       []mood.Sample
	weekSample bool

	report progressService.Report

	voice   voiceService.Snapshot
	updates chan voiceService.Snapshot
	unsub   func()

	status string
	err    string
}

// New creates the model and opens a chat session seeded with the greeting.
func New(deps Deps) (Model, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	info, err := deps.Chat.CreateSession(context.Background())
	if err != nil {
		return Model{}, err
	}
	session, err := deps.Chat.GetSession(context.Background(), info.ID)
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 72
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "How are you feeling today? What's on your mind?"
	ta.SetWidth(72)
	ta.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(76, 14)

	// insights often come back as light markdown
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)

	m := Model{
		deps:       deps,
		session:    session,
		input:      ti,
		history:    vp,
		spinner:    sp,
		journal:    ta,
		renderer:   renderer,
		moodCursor: mood.Neutral,
		updates:    make(chan voiceService.Snapshot, 16),
	}
	if deps.Voice != nil {
		m.voice = deps.Voice.Snapshot()
		updates := m.updates
		m.unsub = deps.Voice.Subscribe(func(snap voiceService.Snapshot) {
			select {
			case updates <- snap:
			default:
			}
		})
	}
	m.refreshHistory()
	return m, nil
}

// Close detaches from the voice session.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForVoice())
}

func (m Model) waitForVoice() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return voiceSnapshotMsg(<-updates)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := max(msg.Width-4, 20)
		m.input.Width = w - 4
		m.journal.SetWidth(w)
		m.history.Width = w
		m.history.Height = max(msg.Height-12, 5)
		m.refreshHistory()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			return m.switchTab(1)
		case tea.KeyShiftTab:
			return m.switchTab(-1)
		}
		return m.updateScreen(msg)

	case chatReplyMsg:
		m.thinking = false
		m.outgoing = ""
		if msg.err != nil && !errors.Is(msg.err, chatService.ErrBusy) {
			m.err = msg.err.Error()
		}
		m.refreshHistory()
		return m, nil

	case analyzedMsg:
		m.analyzing = false
		m.setError(msg.err)
		return m, nil

	case journalSavedMsg:
		if m.setError(msg.err) {
			return m, nil
		}
		m.journal.Reset()
		m.status = "Journal entry kept for this session only"
		if m.deps.Durable {
			m.status = "Journal entry saved on this device"
		}
		return m, nil

	case moodSavedMsg:
		if m.setError(msg.err) {
			return m, nil
		}
		m.status = "Mood saved: " + msg.record.Level.Info().Emoji + " " + msg.record.Level.String()
		return m, m.loadWeek()

	case weekMsg:
		m.week, m.weekSample = msg.samples, msg.sample
		return m, nil

	case progressMsg:
		if !m.setError(msg.err) {
			m.report = msg.report
		}
		return m, nil

	case voiceToggledMsg:
		if msg.err != nil && errors.Is(msg.err, voiceService.ErrMissingCredential) {
			m.err = "Add your ElevenLabs key with `mindbff keys set` to use the voice companion"
		}
		if m.deps.Voice != nil {
			m.voice = m.deps.Voice.Snapshot()
		}
		return m, nil

	case voiceSnapshotMsg:
		m.voice = voiceService.Snapshot(msg)
		return m, m.waitForVoice()

	case spinner.TickMsg:
		if !m.thinking && !m.analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateScreen(msg)
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	dest := m.deps.Navigator.Next(delta)
	m.err, m.status = "", ""
	m.input.Blur()
	m.journal.Blur()

	switch dest {
	case shell.Talk:
		return m, m.input.Focus()
	case shell.Journal:
		return m, m.journal.Focus()
	case shell.Mood:
		return m, m.loadWeek()
	case shell.Progress:
		return m, m.loadProgress()
	}
	return m, nil
}

func (m Model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.deps.Navigator.Active() {
	case shell.Journal:
		return m.updateJournal(msg)
	case shell.Mood:
		return m.updateMood(msg)
	case shell.Progress:
		return m, nil
	default:
		return m.updateTalk(msg)
	}
}

func (m Model) updateTalk(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlT:
			return m, m.toggleVoice()
		case tea.KeyEnter:
			text := m.input.Value()
			if m.thinking || isBlank(text) {
				return m, nil
			}
			m.input.SetValue("")
			m.thinking = true
			m.outgoing = text
			m.err = ""
			m.refreshHistory()
			return m, tea.Batch(m.send(text), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	// letters belong to the input; only paging reaches the transcript
	if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyPgUp || key.Type == tea.KeyPgDown) {
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateJournal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlR:
			text := m.journal.Value()
			if m.analyzing || isBlank(text) {
				return m, nil
			}
			m.analyzing = true
			m.err = ""
			return m, tea.Batch(m.analyze(text), m.spinner.Tick)
		case tea.KeyCtrlS:
			text := m.journal.Value()
			if isBlank(text) {
				return m, nil
			}
			m.deps.Journal.Draft(text)
			return m, m.saveJournal()
		}
	}

	var cmd tea.Cmd
	m.journal, cmd = m.journal.Update(msg)
	return m, cmd
}

func (m Model) updateMood(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyLeft:
		if m.moodCursor > mood.Sad {
			m.moodCursor--
		}
	case tea.KeyRight:
		if m.moodCursor < mood.Great {
			m.moodCursor++
		}
	case tea.KeyEnter:
		if err := m.deps.Mood.Select(m.moodCursor); m.setError(err) {
			return m, nil
		}
		return m, m.submitMood()
	case tea.KeyRunes:
		if string(key.Runes) == "s" {
			return m, m.loadSample()
		}
	}
	return m, nil
}

func (m Model) send(text string) tea.Cmd {
	session := m.session
	chatKey := m.deps.Settings.Keys().ChatKey
	return func() tea.Msg {
		reply, err := session.Send(context.Background(), chatKey, text)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (m Model) analyze(text string) tea.Cmd {
	analyzer := m.deps.Journal
	chatKey := m.deps.Settings.Keys().ChatKey
	return func() tea.Msg {
		summary, err := analyzer.Analyze(context.Background(), text, chatKey)
		return analyzedMsg{summary: summary, err: err}
	}
}

func (m Model) saveJournal() tea.Cmd {
	analyzer, now := m.deps.Journal, m.deps.Now
	return func() tea.Msg {
		entry, err := analyzer.Save(context.Background(), now())
		return journalSavedMsg{entry: entry, err: err}
	}
}

func (m Model) submitMood() tea.Cmd {
	recorder, now := m.deps.Mood, m.deps.Now
	return func() tea.Msg {
		record, err := recorder.Submit(context.Background(), now())
		return moodSavedMsg{record: record, err: err}
	}
}

func (m Model) loadWeek() tea.Cmd {
	recorder, now := m.deps.Mood, m.deps.Now
	return func() tea.Msg {
		samples, err := recorder.Week(context.Background(), now())
		if err != nil || !hasData(samples) {
			return weekMsg{samples: moodService.SampleWeek(), sample: true}
		}
		return weekMsg{samples: samples}
	}
}

func (m Model) loadSample() tea.Cmd {
	return func() tea.Msg {
		return weekMsg{samples: moodService.SampleWeek(), sample: true}
	}
}

func (m Model) loadProgress() tea.Cmd {
	builder, now := m.deps.Progress, m.deps.Now
	return func() tea.Msg {
		report, err := builder.Build(context.Background(), now())
		return progressMsg{report: report, err: err}
	}
}

func (m Model) toggleVoice() tea.Cmd {
	voice := m.deps.Voice
	if voice == nil {
		return nil
	}
	voiceKey := m.deps.Settings.Keys().VoiceKey
	return func() tea.Msg {
		return voiceToggledMsg{err: voice.Toggle(context.Background(), voiceKey)}
	}
}

// setError records err for display and reports whether there was one.
func (m *Model) setError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, journalService.ErrMissingCredential):
		m.err = "Add your OpenAI key with `mindbff keys set` to analyze entries"
	default:
		m.err = err.Error()
	}
	return true
}

func (m *Model) refreshHistory() {
	transcript := m.session.Transcript()
	// Send has not run yet, show the turn until the reply comes back.
	if m.outgoing != "" && !m.session.Pending() {
		transcript = append(transcript, chat.Message{Role: chat.RoleUser, Content: m.outgoing, Timestamp: m.deps.Now()})
	}
	m.history.SetContent(renderTranscript(transcript, m.history.Width))
	m.history.GotoBottom()
}
