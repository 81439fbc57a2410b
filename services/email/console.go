package emailsvc

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
)

// ConsoleService writes MIME messages to an io.Writer instead of sending them.
type ConsoleService struct {
	from            mail.Address
	subjPrefix      string
	frontendBaseURL string
	strict          bool
	out             io.Writer
	logger          core.Logger
	sync            bool

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

func NewConsoleService(conf *core.Config, logger core.Logger) *ConsoleService {
	return &ConsoleService{
		from:            conf.DefaultFromEmail(),
		subjPrefix:      "[" + conf.AppName + "] ",
		frontendBaseURL: conf.FrontendBaseURL,
		strict:          conf.Debug || conf.TestMode,
		out:             os.Stdout,
		logger:          logger,
	}
}

// NewSyncConsoleService writes messages to `out` before SendMessages returns; for short-lived processes.
func NewSyncConsoleService(out io.Writer, conf *core.Config, logger core.Logger) *ConsoleService {
	svc := NewConsoleService(conf, logger)
	svc.out = out
	svc.sync = true
	return svc
}

// NewConsoleServiceMock sends synchronously, discards output and records sent messages.
func NewConsoleServiceMock(conf *core.Config, logger core.Logger) *ConsoleService {
	return NewSyncConsoleService(io.Discard, conf, logger)
}

func (svc *ConsoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.sendMessage(msg)
		} else {
			go svc.sendMessage(msg)
		}
	}
}

// SentMessages returns a copy of the messages sent so far.
func (svc *ConsoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func (svc *ConsoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.frontendBaseURL, svc.strict); err != nil {
		svc.logger.Error("rendering email", errors.WithStack(err))
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	if err := svc.write(*msg); err != nil {
		svc.logger.Error("writing email", err)
		return
	}

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

func (svc *ConsoleService) write(msg core.EmailMessage) error {
	body := new(strings.Builder)
	altW := multipart.NewWriter(body)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		_, _ = fmt.Fprintf(body, "BCC: %s\r\n", joinAddresses(msg.Bcc))
	}
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", altW.Boundary())

	w, err := altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return errors.Wrap(err, "creating text/plain part")
	}
	_, _ = fmt.Fprintf(w, "%s\r\n", msg.TextContent)

	if msg.HTMLContent != "" {
		w, err = altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}})
		if err != nil {
			return errors.Wrap(err, "creating text/html part")
		}
		_, _ = fmt.Fprintf(w, "%s\r\n", msg.HTMLContent)
	}
	if err = altW.Close(); err != nil {
		return errors.Wrap(err, "closing multipart writer")
	}

	_, err = io.WriteString(svc.out, body.String()+"\n")
	return err
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
