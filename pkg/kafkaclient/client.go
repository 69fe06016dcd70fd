// Package kafkaclient wraps segmentio/kafka-go for the two streams the hike
// session uses: location fixes coming in and arrival notifications going out.
package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config names the broker, topic and consumer group to read from.
type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

// KafkaConsumer runs a read loop that forwards messages to a channel. Offsets
// are committed manually by the caller once a message has been handled.
type KafkaConsumer struct {
	reader KafkaReader
	// closed to ask the read loop to exit
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	// messages read from the broker, closed when the loop exits
	messageChan chan kafka.Message
	backoff     time.Duration
}

func NewKafkaConsumer(cfg Config) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Broker},
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		// FetchMessage never commits; CommitOffset does, synchronously.
		CommitInterval: 0,
		// Location fixes are tiny, so do not wait to fill a large batch.
		MinBytes: 1,
		MaxBytes: 1e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newConsumer(reader)
}

func newConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
		backoff:     time.Second,
	}
}

func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the consumption loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		log.Println("Starting Kafka consumer loop...")
		for {
			select {
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer loop.")
				return
			case <-kc.doneChan:
				log.Println("Shutdown signal received, stopping consumer loop.")
				return
			default:
			}

			// FetchMessage leaves the offset uncommitted even in a consumer group.
			msg, err := kc.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				log.Printf("Error reading message: %v", err)
				// back off to avoid a tight error loop
				select {
				case <-time.After(kc.backoff):
				case <-ctx.Done():
					return
				case <-kc.doneChan:
					return
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer before sending message.")
				return
			case <-kc.doneChan:
				log.Println("Shutdown signal received, stopping consumer before sending message.")
				return
			}
		}
	}()
}

// Stop shuts the consumer down and closes the reader. It is safe to call more
// than once.
func (kc *KafkaConsumer) Stop() {
	kc.stopOnce.Do(func() {
		log.Println("Attempting to stop Kafka consumer...")
		close(kc.doneChan)
		if err := kc.reader.Close(); err != nil {
			log.Printf("Failed to close Kafka reader: %v", err)
		}
		kc.wg.Wait()
		log.Println("Kafka consumer stopped gracefully.")
	})
}
