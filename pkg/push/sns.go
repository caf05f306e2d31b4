package push

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Message is a broadcast payload fanned out to every subscriber of a topic.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Publisher sends broadcast messages to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topicARN string, msg Message) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher broadcasts messages through an AWS SNS topic.
type SNSPublisher struct {
	client snsAPI
}

// NewSNSPublisher builds a publisher using the default AWS credential chain.
func NewSNSPublisher(ctx context.Context, region string) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg)}, nil
}

// Publish sends the message to the topic. The title travels as the SNS
// subject, the body as the message, and Data entries as message attributes.
func (p *SNSPublisher) Publish(ctx context.Context, topicARN string, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"title": msg.Title,
		"body":  msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	attrs := make(map[string]types.MessageAttributeValue, len(msg.Data))
	for k, v := range msg.Data {
		attrs[k] = types.MessageAttributeValue{
			DataType:    strPtr("String"),
			StringValue: strPtr(v),
		}
	}

	input := &sns.PublishInput{
		TopicArn:          strPtr(topicARN),
		Subject:           strPtr(msg.Title),
		Message:           strPtr(string(payload)),
		MessageAttributes: attrs,
	}
	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish to topic: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
