// Package console is a line-oriented terminal front end for the chat controller.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mentorai/tutor/chat"
	"mentorai/tutor/notify"
	"mentorai/tutor/types"
)

const helpText = `Commands:
  /new              start a new chat
  /list             list chats
  /select <n|id>    switch to a chat
  /show             print the current chat
  /delete [n|id]    delete a chat (default: current)
  /rename <title>   rename the current chat
  /clear            delete every chat
  /help             show this help
  /quit             exit
Anything else is sent to the tutor.`

type styles struct {
	header    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	content   lipgloss.Style
	meta      lipgloss.Style
	active    lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		content:   r.NewStyle().PaddingLeft(2),
		meta:      r.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		active:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warning:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		info:      r.NewStyle().Foreground(lipgloss.Color("62")),
	}
}

// Console reads intents from a line stream and renders controller state.
type Console struct {
	ctrl    *chat.Controller
	notices *notify.Buffer
	out     io.Writer
	st      styles
}

func New(ctrl *chat.Controller, notices *notify.Buffer, out io.Writer) *Console {
	if notices == nil {
		notices = notify.NewBuffer(0)
	}
	return &Console{
		ctrl:    ctrl,
		notices: notices,
		out:     out,
		st:      newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run processes lines from in until EOF, /quit or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.println(c.st.header.Render("MentorAI") + " " + c.st.meta.Render("type /help for commands"))
	c.flushNotices()
	if v := c.ctrl.View(); v.Active != nil {
		c.printTranscript(*v.Active)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			c.println("")
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			if quit := c.command(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		} else {
			c.send(ctx, line)
		}
		c.flushNotices()
	}
}

func (c *Console) send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.println(c.st.meta.Render("AI is thinking..."))
	res, err := c.ctrl.SendMessage(ctx, text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		c.println(c.st.meta.Render("Still waiting for the previous reply."))
		return
	case err != nil:
		c.println(c.st.warning.Render("Error: ") + err.Error())
		return
	}
	if res.Stored {
		c.printMessage(res.Reply)
	}
}

func (c *Console) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		c.println(helpText)
	case "/new":
		c.ctrl.NewChat(ctx)
		c.println(c.st.info.Render("Started a new chat."))
	case "/list":
		c.printList()
	case "/select":
		id, ok := c.resolve(arg)
		if !ok {
			c.println(c.st.warning.Render("No such chat: ") + arg)
			return false
		}
		c.ctrl.SelectSession(id)
		if v := c.ctrl.View(); v.Active != nil {
			c.printTranscript(*v.Active)
		}
	case "/show":
		v := c.ctrl.View()
		if v.Active == nil {
			c.println(c.st.meta.Render("No active chat. Type a message to start one."))
			return false
		}
		c.printTranscript(*v.Active)
	case "/delete":
		id := c.ctrl.View().ActiveID
		if arg != "" {
			var ok bool
			if id, ok = c.resolve(arg); !ok {
				c.println(c.st.warning.Render("No such chat: ") + arg)
				return false
			}
		}
		if id == "" || !c.ctrl.DeleteSession(ctx, id) {
			c.println(c.st.meta.Render("Nothing to delete."))
		}
	case "/rename":
		id := c.ctrl.View().ActiveID
		if id == "" || !c.ctrl.RenameSession(ctx, id, arg) {
			c.println(c.st.meta.Render("Usage: /rename <title> with an active chat"))
		}
	case "/clear":
		c.ctrl.ClearAll(ctx)
	default:
		c.println(c.st.warning.Render("Unknown command: ") + name + " " + c.st.meta.Render("(try /help)"))
	}
	return false
}

// resolve accepts a 1-based list position or a session id.
func (c *Console) resolve(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	all := c.ctrl.View().Sessions
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(all) {
		return all[n-1].ID, true
	}
	for _, s := range all {
		if s.ID == arg {
			return s.ID, true
		}
	}
	return "", false
}

func (c *Console) printList() {
	v := c.ctrl.View()
	if len(v.Sessions) == 0 {
		c.println(c.st.meta.Render("No chats yet."))
		return
	}
	c.println(c.st.header.Render(fmt.Sprintf("%d chat(s)", len(v.Sessions))))
	for i, s := range v.Sessions {
		marker := "  "
		if s.Active {
			marker = c.st.active.Render("* ")
		}
		line := fmt.Sprintf("%s%2d. %s %s", marker, i+1, s.Title,
			c.st.meta.Render(fmt.Sprintf("(%d messages, %s)", s.MessageCount, s.CreatedAt.Local().Format("Jan 02 15:04"))))
		if s.Busy {
			line += " " + c.st.meta.Render("[waiting]")
		}
		c.println(line)
	}
}

func (c *Console) printTranscript(s types.ChatSession) {
	c.println(c.st.header.Render(s.Title))
	if len(s.Messages) == 0 {
		c.println(c.st.meta.Render("Ask me anything to get started."))
		return
	}
	for _, m := range s.Messages {
		c.printMessage(m)
	}
}

func (c *Console) printMessage(m types.Message) {
	label := c.st.user.Render("You")
	if m.Role == types.RoleAssistant {
		label = c.st.assistant.Render("MentorAI")
	}
	c.println(label)
	c.println(c.st.content.Render(m.Content))
}

func (c *Console) flushNotices() {
	for _, n := range c.notices.Drain() {
		style := c.st.info
		if n.Variant == notify.VariantDestructive {
			style = c.st.warning
		}
		c.println(style.Render(n.Title) + " " + n.Description)
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
