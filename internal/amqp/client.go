package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"revenueqa/internal/log"
)

// DirectReplyTo is RabbitMQ's pseudo-queue for RPC replies.
const DirectReplyTo = "amq.rabbitmq.reply-to"

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	defaultTimeout = 10 * time.Second
)

var (
	ErrCircuitOpen    = errors.New("circuit breaker is open")
	ErrNotConnected   = errors.New("AMQP connection is not open")
	ErrConsumerClosed = errors.New("message channel closed")
)

// Handler answers one question. Returning an error requeues the delivery
// once; a second failure is replied to with the error text.
type Handler func(ctx context.Context, msg *QuestionMessage) (*AnswerMessage, error)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(channel); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func (c *Client) setup(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// reconnect dials again with exponential backoff until it succeeds or ctx
// is done.
func (c *Client) reconnect(ctx context.Context) error {
	_ = c.closeConn()
	for attempt := 0; ; attempt++ {
		err := c.connect()
		if err == nil {
			c.logger.InfoContext(ctx, "Reconnected to AMQP broker", "attempt", attempt+1)
			return nil
		}
		wait := exponentialBackoff(attempt)
		c.logger.WarnContext(ctx, "AMQP reconnect failed",
			log.FieldError, err,
			"attempt", attempt+1,
			"retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Ask publishes a question and waits for the worker's reply. Without a
// deadline on ctx the wait is bounded by a default timeout.
func (c *Client) Ask(ctx context.Context, question string) (*AnswerMessage, error) {
	if c.isCircuitOpen() {
		return nil, fmt.Errorf("ask: %w", ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || conn.IsClosed() {
		c.recordFailure()
		return nil, ErrNotConnected
	}

	// Direct reply-to requires consuming and publishing on the same channel.
	ch, err := conn.Channel()
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("open reply channel: %w", err)
	}
	defer ch.Close()

	replies, err := ch.Consume(DirectReplyTo, "", true, false, false, false, nil)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("consume replies: %w", err)
	}

	msg := NewQuestionMessage(question)
	body, err := msg.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	correlationID := uuid.NewString()

	err = ch.PublishWithContext(ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			ReplyTo:       DirectReplyTo,
			Timestamp:     time.Now(),
			Body:          body,
		})
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("publish question: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published question",
		"id", msg.ID,
		"correlation_id", correlationID,
		"queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case d, ok := <-replies:
			if !ok {
				return nil, ErrConsumerClosed
			}
			if d.CorrelationId != correlationID {
				continue
			}
			return AnswerMessageFromJSON(d.Body)
		}
	}
}

// Run consumes questions until ctx is done, reconnecting when the broker
// connection drops.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	for {
		err := c.ConsumeQuestions(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrConsumerClosed) && !isConnectionError(err) {
			return err
		}
		c.logger.WarnContext(ctx, "AMQP consumer interrupted, reconnecting", log.FieldError, err)
		if err := c.reconnect(ctx); err != nil {
			return err
		}
	}
}

// ConsumeQuestions consumes the question queue and replies to each delivery
// that carries a ReplyTo.
func (c *Client) ConsumeQuestions(ctx context.Context, handler Handler) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return ErrNotConnected
	}

	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming questions", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			if err := c.handleDelivery(ctx, channel, d, handler); err != nil && isConnectionError(err) {
				return err
			}
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, pub publisher, d amqp091.Delivery, handler Handler) error {
	msg, err := QuestionMessageFromJSON(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to unmarshal message", log.FieldError, err)
		return d.Nack(false, false)
	}

	answer, err := handler(ctx, msg)
	if err != nil {
		if !d.Redelivered {
			c.logger.WarnContext(ctx, "Failed to answer question, requeueing",
				log.FieldError, err,
				"id", msg.ID)
			return d.Nack(false, true)
		}
		c.logger.ErrorContext(ctx, "Failed to answer redelivered question",
			log.FieldError, err,
			"id", msg.ID)
		answer = &AnswerMessage{ID: msg.ID, Question: msg.Question, Error: err.Error(), Timestamp: time.Now()}
	}

	if d.ReplyTo != "" {
		if err := c.reply(ctx, pub, d, answer); err != nil {
			_ = d.Nack(false, true)
			return err
		}
	}

	c.logger.InfoContext(ctx, "Question processed",
		"id", msg.ID,
		"replied", d.ReplyTo != "")
	return d.Ack(false)
}

func (c *Client) reply(ctx context.Context, pub publisher, d amqp091.Delivery, answer *AnswerMessage) error {
	body, err := answer.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = pub.PublishWithContext(ctx,
		"",        // default exchange
		d.ReplyTo, // routing key
		false,     // mandatory
		false,     // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Timestamp:     time.Now(),
			Body:          body,
		})
	if err != nil {
		return fmt.Errorf("publish answer: %w", err)
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) closeConn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) Close() error {
	return c.closeConn()
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, ErrNotConnected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
