// score-producer publishes randomized score submissions to the ingestion
// topic for load testing. Player ids must already exist in the API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
)

// ScoreSubmission mirrors the consumer's expected message format
type ScoreSubmission struct {
	PlayerID      string  `json:"playerId"`
	Score         int64   `json:"score"`
	BlocksCleared int64   `json:"blocksCleared"`
	Level         int     `json:"level"`
	GameDuration  float64 `json:"gameDuration"`
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "blockblast-scores", "Kafka topic")
	playerIDs := flag.String("players", "", "Comma-separated player ids to submit scores for (required)")
	rate := flag.Int("rate", 50, "Submissions per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	players := strings.Split(*playerIDs, ",")
	if *playerIDs == "" || len(players) == 0 {
		log.Fatal("at least one player id is required (-players)")
	}

	fmt.Printf("producing to %s on %s: %d players, %d/sec\n", *topic, *brokers, len(players), *rate)

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(strings.Split(*brokers, ","), config)
	if err != nil {
		log.Fatalf("failed to create producer: %v", err)
	}
	defer producer.Close()

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("producer error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sendSubmission := func() {
		level := 1 + rand.Intn(20)
		submission := ScoreSubmission{
			PlayerID:      players[rand.Intn(len(players))],
			Score:         int64(rand.Intn(10000)),
			BlocksCleared: int64(rand.Intn(200)),
			Level:         level,
			GameDuration:  30 + rand.Float64()*570,
		}

		data, err := json.Marshal(submission)
		if err != nil {
			log.Printf("failed to marshal submission: %v", err)
			return
		}

		producer.Input() <- &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(submission.PlayerID),
			Value: sarama.ByteEncoder(data),
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	start := time.Now()

loop:
	for {
		select {
		case <-ticker.C:
			sendSubmission()
		case <-deadline:
			break loop
		case <-sigChan:
			break loop
		}
	}

	producer.AsyncClose()
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("done in %s: %d delivered, %d failed\n",
		elapsed.Round(time.Second),
		atomic.LoadInt64(&successCount),
		atomic.LoadInt64(&errorCount),
	)
}
