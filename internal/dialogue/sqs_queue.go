package dialogue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSQueue implements queueClient over AWS/LocalStack SQS. Turn payloads are
// carried as JSON message bodies; decoding happens here so the dispatcher
// only ever sees typed turns.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("dialogue: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("dialogue: SQS queueURL cannot be empty")
	}
	return &SQSQueue{
		client:   client,
		queueURL: queueURL,
	}
}

// Send encodes the turn and publishes it to the queue.
func (q *SQSQueue) Send(ctx context.Context, payload turnPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dialogue: failed to encode turn payload: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("dialogue: failed to send SQS message: %w", err)
	}
	return nil
}

// Receive long-polls the queue and decodes each message body into a turn.
// Bodies that do not decode are deleted in place rather than redelivered
// forever; only well-formed turns reach the dispatcher.
func (q *SQSQueue) Receive(ctx context.Context, maxTurns int, waitSeconds int) ([]queuedTurn, error) {
	output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxTurns),
		WaitTimeSeconds:     int32(waitSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("dialogue: failed to receive SQS messages: %w", err)
	}

	turns := make([]queuedTurn, 0, len(output.Messages))
	for _, msg := range output.Messages {
		var payload turnPayload
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &payload); err != nil {
			_ = q.Delete(ctx, aws.ToString(msg.ReceiptHandle))
			continue
		}
		turns = append(turns, queuedTurn{
			Payload:       payload,
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}

	return turns, nil
}

// Delete acknowledges a processed turn.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}

	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("dialogue: failed to delete SQS message: %w", err)
	}
	return nil
}
