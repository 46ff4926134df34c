package tui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"syogi/pkg/syogi"
)

type mode int

const (
	modeNormal mode = iota
	modeInput
)

const helpText = "s 77 select | m 76 [+|=] move | d P 55 drop | y/n promote | c cancel | u r first last | usi 7g7f | new [handicap] [side] | games | switch ID | kif [file] | save | q"

type Model struct {
	opts    Options
	manager *syogi.Manager
	session *syogi.Session
	logger  *zap.Logger

	// pending is set while a promotable move waits for y/n.
	pending bool
	over    bool

	m        mode
	input    textinput.Model
	logLines []string

	width  int
	height int
}

func NewModel(opts Options, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "command..."
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 60

	m := Model{
		opts:    opts,
		manager: syogi.NewManager(logger),
		logger:  logger,
		m:       modeNormal,
		input:   ti,
	}
	if err := m.newGame(opts.Handicap, opts.Side); err != nil {
		return Model{}, err
	}
	m.appendLog("ready (press i to input command, ? for help)")
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = min(80, max(30, m.width-4))
		return m, nil

	case tea.KeyMsg:
		switch m.m {
		case modeNormal:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "?":
				m.appendLog(helpText)
				return m, nil
			case "i", "enter", ":":
				m.m = modeInput
				m.input.SetValue("")
				m.input.Focus()
				return m, nil
			}
			return m, nil

		case modeInput:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.m = modeNormal
				m.input.Blur()
				return m, nil
			case "enter":
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if line == "q" || line == "quit" {
					return m, tea.Quit
				}
				if line != "" {
					m.execCommand(line)
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) engine() *syogi.Engine {
	return m.session.Engine()
}

func (m *Model) newGame(h syogi.Handicap, side syogi.Side) error {
	s, err := m.manager.NewGame(h, side)
	if err != nil {
		return err
	}
	m.session = s
	m.pending = false
	m.over = false
	return nil
}

func (m *Model) execCommand(line string) {
	m.appendLog("> " + line)
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	defer func() {
		_ = m.manager.Touch(m.session.ID)
	}()

	if m.pending {
		switch parts[0] {
		case "y", "yes":
			if err := m.engine().Promote(); err != nil {
				m.appendLog(fmt.Sprintf("promote failed: %v", err))
			}
			m.pending = false
			m.finishTurn()
		case "n", "no":
			m.pending = false
			m.finishTurn()
		default:
			m.appendLog("promote? answer y or n")
		}
		return
	}

	switch parts[0] {
	case "?", "help":
		m.appendLog(helpText)
	case "s", "select":
		m.cmdSelect(parts[1:])
	case "m", "move":
		m.cmdMove(parts[1:])
	case "d", "drop":
		m.cmdDrop(parts[1:])
	case "c", "cancel":
		m.engine().Cancel()
	case "u", "undo":
		if !m.engine().Undo() {
			m.appendLog("nothing to undo")
		}
		m.over = false
	case "r", "redo":
		if !m.engine().Redo() {
			m.appendLog("nothing to redo")
		}
		m.reportStatus()
	case "first":
		m.appendLog(fmt.Sprintf("undid %d moves", m.engine().ToStart()))
		m.over = false
	case "last":
		m.appendLog(fmt.Sprintf("redid %d moves", m.engine().ToEnd()))
		m.reportStatus()
	case "usi":
		m.cmdUSI(parts[1:])
	case "new":
		m.cmdNew(parts[1:])
	case "games":
		for _, s := range m.manager.List() {
			marker := " "
			if s.ID == m.session.ID {
				marker = "*"
			}
			m.appendLog(fmt.Sprintf("%s %s ply=%d %s", marker, s.ID, s.Engine().Ply(), s.Engine().Handicap()))
		}
	case "switch":
		m.cmdSwitch(parts[1:])
	case "kif":
		m.cmdKIF(parts[1:])
	case "save":
		m.cmdSave()
	default:
		m.appendLog(fmt.Sprintf("unknown command: %s", parts[0]))
	}
}

func (m *Model) cmdSelect(args []string) {
	if len(args) != 1 {
		m.appendLog("usage: s 77")
		return
	}
	sq, err := parseSquare(args[0])
	if err != nil {
		m.appendLog(err.Error())
		return
	}
	n := m.engine().SelectAndHint(sq.X, sq.Y)
	m.appendLog(fmt.Sprintf("%s: %d moves", sq, n))
}

func (m *Model) cmdMove(args []string) {
	if m.over {
		m.appendLog("game is over: undo or start a new game")
		return
	}
	if len(args) == 0 || len(args) > 2 {
		m.appendLog("usage: m 76 [+|=]")
		return
	}
	target := args[0]
	flag := ""
	if len(args) == 2 {
		flag = args[1]
	} else if strings.HasSuffix(target, "+") || strings.HasSuffix(target, "=") {
		flag = target[len(target)-1:]
		target = target[:len(target)-1]
	}
	sq, err := parseSquare(target)
	if err != nil {
		m.appendLog(err.Error())
		return
	}
	e := m.engine()
	if err := e.Move(sq.X, sq.Y, flag == "+"); err != nil {
		m.appendLog(fmt.Sprintf("move failed: %v", err))
		return
	}
	if e.IsCompulsionEvolution() {
		m.appendLog("promoted (compulsory)")
	} else if flag == "" && e.IsEvolution(sq.X, sq.Y) {
		m.pending = true
		m.appendLog("promote? (y/n)")
		return
	}
	m.finishTurn()
}

func (m *Model) cmdDrop(args []string) {
	if m.over {
		m.appendLog("game is over: undo or start a new game")
		return
	}
	if len(args) != 2 {
		m.appendLog("usage: d P 55")
		return
	}
	kind, err := syogi.ParseHandKind(args[0])
	if err != nil {
		m.appendLog(err.Error())
		return
	}
	sq, err := parseSquare(args[1])
	if err != nil {
		m.appendLog(err.Error())
		return
	}
	e := m.engine()
	if e.SelectHand(kind, e.CurrentTurn()) == 0 {
		m.appendLog(fmt.Sprintf("cannot drop %s", kind))
		return
	}
	if err := e.Move(sq.X, sq.Y, false); err != nil {
		e.Cancel()
		m.appendLog(fmt.Sprintf("drop failed: %v", err))
		return
	}
	m.finishTurn()
}

func (m *Model) cmdUSI(args []string) {
	if m.over {
		m.appendLog("game is over: undo or start a new game")
		return
	}
	if len(args) != 1 {
		m.appendLog("usage: usi 7g7f")
		return
	}
	ended, err := m.engine().PlayUSI(args[0])
	if err != nil {
		m.appendLog(fmt.Sprintf("usi failed: %v", err))
		return
	}
	m.over = ended
	m.reportStatus()
}

func (m *Model) cmdNew(args []string) {
	h, side := m.opts.Handicap, m.opts.Side
	var err error
	if len(args) > 0 {
		if h, err = syogi.ParseHandicap(args[0]); err != nil {
			m.appendLog(err.Error())
			return
		}
	}
	if len(args) > 1 {
		if side, err = syogi.ParseSide(args[1]); err != nil {
			m.appendLog(err.Error())
			return
		}
	}
	if err := m.newGame(h, side); err != nil {
		m.appendLog(fmt.Sprintf("new game failed: %v", err))
		return
	}
	m.appendLog(fmt.Sprintf("new game %s (%s)", m.session.ID, h.KIFName()))
}

func (m *Model) cmdSwitch(args []string) {
	if len(args) != 1 {
		m.appendLog("usage: switch ID")
		return
	}
	for _, s := range m.manager.List() {
		if strings.HasPrefix(s.ID, args[0]) {
			m.session = s
			m.pending = false
			m.over = false
			if outcome, _ := s.Engine().Result(m.opts.TryRule); outcome != syogi.InProgress {
				m.over = true
			}
			m.appendLog("switched to " + s.ID)
			return
		}
	}
	m.appendLog(fmt.Sprintf("switch: %v", syogi.ErrGameNotFound))
}

func (m *Model) cmdKIF(args []string) {
	opts := syogi.KIFOptions{StartTime: m.session.CreatedAt}
	if len(args) == 0 {
		m.appendLog("KIF preview:")
		for _, ln := range m.engine().KIFLines(opts) {
			m.appendLog("  " + ln)
		}
		return
	}
	var buf bytes.Buffer
	if err := m.engine().WriteKIF(&buf, opts); err != nil {
		m.appendLog(fmt.Sprintf("kif failed: %v", err))
		return
	}
	if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
		m.appendLog(fmt.Sprintf("kif failed: %v", err))
		return
	}
	m.appendLog("wrote " + args[0])
}

func (m *Model) cmdSave() {
	if m.opts.Archive == "" {
		m.appendLog("no archive path configured")
		return
	}
	sessions := m.manager.List()
	records := make(chan syogi.GameRecord, len(sessions))
	for _, s := range sessions {
		records <- s.Engine().Record(s.ID, m.opts.TryRule)
	}
	close(records)
	if err := syogi.WriteArchive(m.opts.Archive, records, 1); err != nil {
		m.appendLog(fmt.Sprintf("save failed: %v", err))
		return
	}
	m.logger.Info("archive written", zap.String("path", m.opts.Archive), zap.Int("games", len(sessions)))
	m.appendLog(fmt.Sprintf("saved %d games to %s", len(sessions), m.opts.Archive))
}

// finishTurn hands the turn over and reports what the move brought about.
func (m *Model) finishTurn() {
	m.over = m.engine().IsGameEnd()
	m.reportStatus()
}

func (m *Model) reportStatus() {
	e := m.engine()
	if moves := e.Moves(); len(moves) > 0 {
		m.appendLog(fmt.Sprintf("%d: %s", len(moves), moves[len(moves)-1].USI()))
	}
	if e.IsRepetitionMove() {
		m.over = true
	}
	if m.opts.TryRule && e.IsTryKing() {
		m.over = true
	}
	if outcome, reason := e.Result(m.opts.TryRule); outcome != syogi.InProgress {
		m.over = true
		m.appendLog(fmt.Sprintf("game over: %s (%s)", outcome, reason))
		return
	}
	if e.InCheck(e.CurrentTurn()) {
		m.appendLog("王手")
	}
}

func (m *Model) appendLog(s string) {
	m.logLines = append(m.logLines, s)
	if len(m.logLines) > 200 {
		m.logLines = m.logLines[len(m.logLines)-200:]
	}
}

var errSquare = errors.New("square must look like 77 or 7g")

// parseSquare reads a square as file and rank digits ("76") or in USI form
// ("7f").
func parseSquare(text string) (syogi.Square, error) {
	if len(text) != 2 || text[0] < '1' || text[0] > '9' {
		return syogi.Square{}, fmt.Errorf("%w: %q", errSquare, text)
	}
	file := int(text[0] - '0')
	var rank int
	switch r := text[1]; {
	case r >= '1' && r <= '9':
		rank = int(r - '0')
	case r >= 'a' && r <= 'i':
		rank = int(r-'a') + 1
	default:
		return syogi.Square{}, fmt.Errorf("%w: %q", errSquare, text)
	}
	return syogi.Square{X: file - 1, Y: rank - 1}, nil
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	e := m.session.Engine()
	status := "PLAY"
	if m.over {
		status = "OVER"
	}
	turn := "☗ 先手"
	if e.CurrentTurn() == syogi.White {
		turn = "☖ 後手"
	}
	header := titleStyle.Render(fmt.Sprintf("syogi  [%s]  %s  ply:%d  game:%s  %s",
		status, turn, e.Ply(), shortID(m.session.ID), m.session.UpdatedAt.Format(time.Kitchen)))

	board := boxStyle.Render(RenderBoard(e))

	logHeight := max(5, m.height-18)
	logStart := max(0, len(m.logLines)-logHeight)
	logBody := strings.Join(m.logLines[logStart:], "\n")
	logBox := boxStyle.Width(max(20, m.width-40)).Height(logHeight).Render(logBody)

	var inputLine string
	if m.m == modeInput {
		inputLine = m.input.View()
	} else {
		inputLine = "press i to enter command, ? for help, q to quit"
	}
	inputBox := boxStyle.Width(max(20, m.width-2)).Render(inputLine)

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, board, logBox) + "\n" + inputBox + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
