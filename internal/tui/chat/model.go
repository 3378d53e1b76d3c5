// Package chat implements the terminal chat view: an input field, a Say
// button and a scrolling conversation log backed by the chatbot endpoint.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	chatModel "github.com/zhouzirui/mathtutor-chat/internal/model/chat"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	headerHeight = 2
	inputHeight  = 3
	footerHeight = 1
)

// Sender 向聊天接口发送一条用户输入。
type Sender interface {
	Send(ctx context.Context, text string) (chatModel.Reply, error)
}

// Options 配置聊天界面。
type Options struct {
	// Endpoint 仅用于标题栏展示。
	Endpoint string
	// Supersede 为 true 时，新的提交会取消尚未完成的上一条请求，其回复被丢弃。
	Supersede bool
	// Timeout 为 0 表示不限时。
	Timeout time.Duration
	Logger  *zap.Logger
}

type focusArea int

const (
	focusInput focusArea = iota
	focusButton
)

// Model is the bubbletea model of the chat view.
type Model struct {
	sender Sender
	opts   Options
	logger *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	styles   Styles
	focus    focusArea

	log []chatModel.Message

	ctx    context.Context
	stop   context.CancelFunc
	seq    uint64
	cancel context.CancelFunc

	width  int
	height int
}

// New builds a chat view that sends through sender.
func New(sender Sender, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "Ask me something..."
	input.Prompt = "> "
	input.Focus()

	ctx, stop := context.WithCancel(context.Background())

	m := Model{
		sender:   sender,
		opts:     opts,
		logger:   logger,
		input:    input,
		viewport: viewport.New(defaultWidth, defaultHeight-headerHeight-inputHeight-footerHeight),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
		focus:    focusInput,
		ctx:      ctx,
		stop:     stop,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.updateDimensions()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case replyMsg:
		m.handleReply(msg)
		return m, nil
	case failedMsg:
		m.handleFailure(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Submit echoes text into the log and returns the command that sends it.
// The echo stays regardless of how the request ends.
func (m *Model) Submit(text string) tea.Cmd {
	m.appendMessage(chatModel.SenderUser, text)

	if m.opts.Supersede && m.cancel != nil {
		m.cancel()
	}

	m.seq++
	seq := m.seq

	var ctx context.Context
	var cancel context.CancelFunc
	if m.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(m.ctx)
	}
	m.cancel = cancel

	sender := m.sender
	return func() tea.Msg {
		defer cancel()
		reply, err := sender.Send(ctx, text)
		if err != nil {
			return failedMsg{seq: seq, text: text, err: err}
		}
		return replyMsg{seq: seq, text: reply.Text.String()}
	}
}

// Messages returns a copy of the conversation log.
func (m Model) Messages() []chatModel.Message {
	out := make([]chatModel.Message, len(m.log))
	copy(out, m.log)
	return out
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.input.Value()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Say):
		return m, m.Submit(m.input.Value())
	case key.Matches(msg, m.keys.SwitchFocus):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusButton {
		if key.Matches(msg, m.keys.Press) {
			return m, m.Submit(m.input.Value())
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Send) {
		return m, m.Submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleReply(msg replyMsg) {
	if m.opts.Supersede && msg.seq != m.seq {
		m.logger.Debug("dropping superseded reply", zap.Uint64("seq", msg.seq))
		return
	}

	m.appendMessage(chatModel.SenderBot, msg.text)
	m.input.Reset()
	m.viewport.GotoBottom()
}

func (m *Model) handleFailure(msg failedMsg) {
	if m.opts.Supersede && msg.seq != m.seq && errors.Is(msg.err, context.Canceled) {
		m.logger.Debug("superseded request cancelled", zap.Uint64("seq", msg.seq))
		return
	}

	m.logger.Error("chat request failed",
		zap.Uint64("seq", msg.seq),
		zap.String("text", msg.text),
		zap.String("endpoint", m.opts.Endpoint),
		zap.Error(msg.err),
	)
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusButton
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) appendMessage(sender chatModel.Sender, text string) {
	m.log = append(m.log, chatModel.Message{
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	})
	m.viewport.SetContent(m.renderLog())
}

func (m *Model) updateDimensions() {
	height := m.height - headerHeight - inputHeight - footerHeight
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.input.Width = max(m.width-buttonWidth-lipglossFrame, 1)
	m.help.Width = m.width
	m.viewport.SetContent(m.renderLog())
}
