package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"aidhub/internal/metrics"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const smtpTimeout = 30 * time.Second

type dialer interface {
	DialAndSend(ctx context.Context, m ...*gomail.Message) error
}

// smtpDialer opens one SMTP session per call. The connection deadline follows
// ctx, so a stalled server releases the session when the budget runs out.
type smtpDialer struct {
	host     string
	port     int
	username string
	password string
}

func (d *smtpDialer) DialAndSend(ctx context.Context, m ...*gomail.Message) error {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(d.host, strconv.Itoa(d.port)))
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(smtpTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	tlsConfig := &tls.Config{ServerName: d.host}
	if d.port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, d.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && d.port != 465 {
		if err := c.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if d.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", d.username, d.password, d.host)); err != nil {
				return err
			}
		}
	}

	if err := gomail.Send(&smtpSession{client: c}, m...); err != nil {
		return err
	}
	return c.Quit()
}

type smtpSession struct {
	client *smtp.Client
}

func (s *smtpSession) Send(from string, to []string, msg io.WriterTo) error {
	if err := s.client.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := s.client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Sender delivers plaintext mail over SMTP. Without an SMTP host it only logs.
type Sender struct {
	dialer dialer
	from   string
	logger logrus.FieldLogger
}

func NewSender(config *types.Config, logger logrus.FieldLogger) *Sender {
	s := &Sender{from: config.MailFrom, logger: logger}
	if config.SMTPHost != "" {
		s.dialer = &smtpDialer{
			host:     config.SMTPHost,
			port:     config.SMTPPort,
			username: config.SMTPUser,
			password: config.SMTPPassword,
		}
	}
	return s
}

// Send delivers emails in one SMTP session. The session is torn down when ctx is done.
func (s *Sender) Send(ctx context.Context, emails ...Email) error {
	if len(emails) == 0 {
		return nil
	}

	if s.dialer == nil {
		for _, e := range emails {
			s.logger.WithFields(logrus.Fields{"to": e.To, "subject": e.Subject}).Info("mail disabled, skipping email")
		}
		return nil
	}

	messages := make([]*gomail.Message, 0, len(emails))
	for _, e := range emails {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", e.To)
		m.SetHeader("Subject", e.Subject)
		m.SetBody("text/plain", e.Body)
		messages = append(messages, m)
	}

	if err := s.dialer.DialAndSend(ctx, messages...); err != nil {
		if ctx.Err() != nil || errors.Is(err, os.ErrDeadlineExceeded) {
			return types.NewError(types.KindExternal, "mail.Send", "timed out sending email", err)
		}
		return types.NewError(types.KindExternal, "mail.Send", "failed to send email", err)
	}
	return nil
}

// NotifyMatch mails both parties of a match. Failures are logged, never returned:
// a committed match stands whether or not mail goes out.
func (s *Sender) NotifyMatch(ctx context.Context, notice MatchNotice) {
	emails, err := MatchEmails(notice)
	if err != nil {
		s.logger.WithError(err).Error("error rendering donation emails")
		return
	}

	if err := s.Send(ctx, emails...); err != nil {
		metrics.MailFailuresTotal.Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"donor":     notice.DonorEmail,
			"recipient": notice.RecipientEmail,
		}).Error("error sending donation emails")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"donor":     notice.DonorEmail,
		"recipient": notice.RecipientEmail,
	}).Info("donation emails sent")
}
