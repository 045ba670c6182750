package jobqueue

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const notBeforeHeader = "Job-Not-Before"

type NATSConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	ConsumerName    string
	MaxReconnects   int
	ReconnectWait   time.Duration
	DuplicateWindow time.Duration
	MaxDeliver      int
	RetryDelay      time.Duration
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:             nats.DefaultURL,
		StreamName:      "JOBS",
		SubjectPrefix:   "jobs",
		ConsumerName:    "prediction-league-jobs",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		DuplicateWindow: 10 * time.Minute,
		MaxDeliver:      5,
		RetryDelay:      30 * time.Second,
	}
}

func (c NATSConfig) normalize() NATSConfig {
	d := DefaultNATSConfig()
	if strings.TrimSpace(c.URL) == "" {
		c.URL = d.URL
	}
	if strings.TrimSpace(c.StreamName) == "" {
		c.StreamName = d.StreamName
	}
	c.SubjectPrefix = strings.Trim(strings.TrimSpace(c.SubjectPrefix), ".")
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = d.SubjectPrefix
	}
	if strings.TrimSpace(c.ConsumerName) == "" {
		c.ConsumerName = d.ConsumerName
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = d.MaxReconnects
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = d.ReconnectWait
	}
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = d.DuplicateWindow
	}
	if c.MaxDeliver <= 0 {
		c.MaxDeliver = d.MaxDeliver
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	return c
}

func (c NATSConfig) subject(job string) string {
	return c.SubjectPrefix + "." + job
}

func (c NATSConfig) jobName(subject string) string {
	name, ok := strings.CutPrefix(subject, c.SubjectPrefix+".")
	if !ok {
		return ""
	}
	return name
}

// ConnectNATS opens a connection and makes sure the job stream exists.
func ConnectNATS(ctx context.Context, cfg NATSConfig, logger *logging.Logger) (*nats.Conn, jetstream.JetStream, error) {
	cfg = cfg.normalize()
	if logger == nil {
		logger = logging.Default()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("prediction-league"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
	)
	if err != nil {
		return nil, nil, crerr.Wrapf(err, "connect to nats url=%s", cfg.URL)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, crerr.Wrap(err, "create jetstream context")
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.SubjectPrefix + ".>"},
		Retention:  jetstream.WorkQueuePolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: cfg.DuplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, nil, crerr.Wrapf(err, "ensure stream=%s", cfg.StreamName)
	}
	return nc, js, nil
}

// NATSPublisher publishes jobs to <prefix>.<job>. JetStream drops repeats of
// the same deduplication ID inside the stream's duplicate window.
type NATSPublisher struct {
	js     jetstream.JetStream
	cfg    NATSConfig
	clock  clockwork.Clock
	logger *logging.Logger
}

func NewNATSPublisher(js jetstream.JetStream, cfg NATSConfig, clock clockwork.Clock, logger *logging.Logger) *NATSPublisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NATSPublisher{js: js, cfg: cfg.normalize(), clock: clock, logger: logger.Named("nats")}
}

var _ usecase.JobQueue = (*NATSPublisher)(nil)

func (p *NATSPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	msg, err := p.buildMsg(path, payload, delay)
	if err != nil {
		return err
	}

	var opts []jetstream.PublishOpt
	opts = append(opts, jetstream.WithExpectStream(p.cfg.StreamName))
	if id := strings.TrimSpace(deduplicationID); id != "" {
		opts = append(opts, jetstream.WithMsgID(id))
	}

	ack, err := p.js.PublishMsg(ctx, msg, opts...)
	if err != nil {
		return crerr.WithSecondaryError(crerr.Wrapf(usecase.ErrDependencyUnavailable, "publish job subject=%s", msg.Subject), err)
	}
	p.logger.InfoContext(ctx, "job published", "subject", msg.Subject, "sequence", ack.Sequence, "duplicate", ack.Duplicate)
	return nil
}

func (p *NATSPublisher) buildMsg(path string, payload any, delay time.Duration) (*nats.Msg, error) {
	name := usecase.JobNameFromPath(path)
	if name == "" {
		return nil, crerr.Wrapf(ErrUnknownJob, "path=%q", path)
	}
	body, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}

	msg := nats.NewMsg(p.cfg.subject(name))
	msg.Data = body
	if delay > 0 {
		msg.Header.Set(notBeforeHeader, p.clock.Now().Add(delay).UTC().Format(time.RFC3339Nano))
	}
	return msg, nil
}

// jobMessage is the part of jetstream.Msg the subscriber needs.
type jobMessage interface {
	Subject() string
	Data() []byte
	Headers() nats.Header
	Ack() error
	NakWithDelay(delay time.Duration) error
	Term() error
}

// NATSSubscriber consumes the job stream with a durable consumer and hands
// each message to the dispatcher.
type NATSSubscriber struct {
	js         jetstream.JetStream
	dispatcher *Dispatcher
	cfg        NATSConfig
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewNATSSubscriber(js jetstream.JetStream, dispatcher *Dispatcher, cfg NATSConfig, clock clockwork.Clock, logger *logging.Logger) *NATSSubscriber {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NATSSubscriber{
		js:         js,
		dispatcher: dispatcher,
		cfg:        cfg.normalize(),
		clock:      clock,
		logger:     logger.Named("nats"),
	}
}

// Run consumes until ctx is cancelled.
func (s *NATSSubscriber) Run(ctx context.Context) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: s.cfg.SubjectPrefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    s.cfg.MaxDeliver,
		AckWait:       5 * time.Minute,
	})
	if err != nil {
		return crerr.Wrapf(err, "ensure consumer=%s", s.cfg.ConsumerName)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		s.handle(ctx, msg)
	})
	if err != nil {
		return crerr.Wrap(err, "start job consumer")
	}
	s.logger.Info("job subscriber started", "stream", s.cfg.StreamName, "consumer", s.cfg.ConsumerName, "jobs", s.dispatcher.Jobs())

	<-ctx.Done()
	cc.Stop()
	s.logger.Info("job subscriber stopped")
	return nil
}

func (s *NATSSubscriber) handle(ctx context.Context, msg jobMessage) {
	name := s.cfg.jobName(msg.Subject())

	if raw := msg.Headers().Get(notBeforeHeader); raw != "" {
		notBefore, err := time.Parse(time.RFC3339Nano, raw)
		if err == nil {
			if wait := notBefore.Sub(s.clock.Now()); wait > 0 {
				_ = msg.NakWithDelay(wait)
				return
			}
		}
	}

	err := s.dispatcher.DispatchJob(ctx, name, msg.Data())
	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			s.logger.WarnContext(ctx, "ack job", "job", name, "error", ackErr)
		}
	case IsPermanent(err):
		s.logger.ErrorContext(ctx, "dropping job", "job", name, "error", err)
		_ = msg.Term()
	default:
		_ = msg.NakWithDelay(s.cfg.RetryDelay)
	}
}
